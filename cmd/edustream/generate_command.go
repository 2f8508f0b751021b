package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"edustream/internal/api"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var category string
	var description string
	var contentType string
	var fromFile string

	cmd := &cobra.Command{
		Use:   "generate [topic]",
		Short: "Request content generation",
		Long: `Request generation of one content item, or several with --file.
The file lists one topic per line; blank lines and # comments are skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.client()
			out := cmd.OutOrStdout()

			if fromFile != "" {
				topics, err := readTopics(fromFile)
				if err != nil {
					return err
				}
				reqs := make([]api.GenerateRequest, 0, len(topics))
				for _, topic := range topics {
					reqs = append(reqs, api.GenerateRequest{
						Topic:       topic,
						Category:    category,
						ContentType: contentType,
					})
				}
				items, err := client.GenerateBatch(cmd.Context(), reqs)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Accepted %d generation requests\n", len(items))
				for _, item := range items {
					fmt.Fprintf(out, "  #%d %s\n", item.ID, item.TopicName)
				}
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("a topic argument or --file is required")
			}
			item, err := client.Generate(cmd.Context(), api.GenerateRequest{
				Topic:       args[0],
				Category:    category,
				Description: description,
				ContentType: contentType,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Accepted #%d %s (%s)\n", item.ID, item.TopicName, item.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Topic category (e.g. statics)")
	cmd.Flags().StringVar(&description, "description", "", "Free-text notes for the script stage")
	cmd.Flags().StringVar(&contentType, "type", "", "Content type: problem or concept")
	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "File with one topic per line")
	return cmd
}

func readTopics(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open topics file: %w", err)
	}
	defer f.Close()

	var topics []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		topics = append(topics, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read topics file: %w", err)
	}
	if len(topics) == 0 {
		return nil, fmt.Errorf("topics file %s contains no topics", path)
	}
	return topics, nil
}
