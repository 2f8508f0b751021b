package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"edustream/internal/api"
)

func newPublishCommand(ctx *commandContext) *cobra.Command {
	var (
		platform string
		caption  string
		hashtags []string
	)

	cmd := &cobra.Command{
		Use:   "publish <id>",
		Short: "Publish one item immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			record, err := ctx.client().Publish(cmd.Context(), api.PublishRequest{
				ContentID: id,
				Platform:  platform,
				Caption:   caption,
				Hashtags:  hashtags,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if record.PlatformPostID != "" {
				fmt.Fprintf(out, "Published #%d on %s (post %s)\n", id, record.Platform, record.PlatformPostID)
			} else {
				fmt.Fprintf(out, "Published #%d on %s\n", id, record.Platform)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "twitter", "Target platform")
	cmd.Flags().StringVar(&caption, "caption", "", "Replace the generated caption text")
	cmd.Flags().StringSliceVar(&hashtags, "hashtag", nil, "Replace the generated hashtags (repeatable)")
	return cmd
}
