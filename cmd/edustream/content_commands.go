package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"edustream/internal/api"
)

func newContentCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Inspect and manage content items",
	}
	cmd.AddCommand(newContentListCommand(ctx))
	cmd.AddCommand(newContentShowCommand(ctx))
	cmd.AddCommand(newContentDeleteCommand(ctx))
	cmd.AddCommand(newContentRetryCommand(ctx))
	return cmd
}

func newContentListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List content items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := ctx.client().ListContent(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No content items found")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					strconv.FormatInt(item.ID, 10),
					item.TopicName,
					item.Category,
					item.ContentType,
					item.Status,
					item.CreatedAt,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Topic", "Category", "Type", "Status", "Created"},
				rows,
				0,
			))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (repeatable)")
	return cmd
}

func newContentShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one content item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			item, err := ctx.client().GetContent(cmd.Context(), id)
			if err != nil {
				return err
			}
			printContentItem(cmd, item)
			return nil
		},
	}
}

func newContentDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a content item and its schedule entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			if err := ctx.client().DeleteContent(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d\n", id)
			return nil
		},
	}
}

func newContentRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <id>",
		Short: "Restart generation for a failed item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			item, err := ctx.client().RetryContent(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Retrying #%d %s (%s)\n", item.ID, item.TopicName, item.Status)
			return nil
		},
	}
}

func printContentItem(cmd *cobra.Command, item *api.ContentItem) {
	rows := [][]string{
		{"ID", strconv.FormatInt(item.ID, 10)},
		{"Topic", item.TopicName},
		{"Category", item.Category},
		{"Type", item.ContentType},
		{"Status", item.Status},
	}
	if item.TemplateID != "" {
		rows = append(rows, []string{"Template", item.TemplateID})
	}
	if item.DiagramPath != "" {
		rows = append(rows, []string{"Diagram", item.DiagramPath})
	}
	if item.ErrorMessage != "" {
		rows = append(rows, []string{"Error", item.ErrorMessage})
	}
	rows = append(rows,
		[]string{"Created", item.CreatedAt},
		[]string{"Updated", item.UpdatedAt},
	)
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Field", "Value"},
		rows,
	))
}

func parseItemID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid content id %q", raw)
	}
	return id, nil
}
