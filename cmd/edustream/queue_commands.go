package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"edustream/internal/api"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Manage the publish queue",
	}
	cmd.AddCommand(newQueueAddCommand(ctx))
	cmd.AddCommand(newQueueAllCommand(ctx))
	cmd.AddCommand(newQueueStatusCommand(ctx))
	cmd.AddCommand(newQueueIntervalCommand(ctx))
	return cmd
}

func newQueueAddCommand(ctx *commandContext) *cobra.Command {
	var platform string
	var at string

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Schedule one ready item for publishing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			if at != "" {
				if _, err := time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("invalid --at value %q: expected RFC 3339 timestamp", at)
				}
			}
			entry, err := ctx.client().Queue(cmd.Context(), api.QueueRequest{
				ContentID:   id,
				Platform:    platform,
				ScheduledAt: at,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queued #%d on %s at %s\n",
				entry.ContentID, entry.Platform, entry.ScheduledAt.Local().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "twitter", "Target platform")
	cmd.Flags().StringVar(&at, "at", "", "Publish time (RFC 3339); empty means the next free slot")
	return cmd
}

func newQueueAllCommand(ctx *commandContext) *cobra.Command {
	var platform string

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Schedule every ready item for publishing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := ctx.client().QueueAll(cmd.Context(), platform)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No ready items to queue")
				return nil
			}
			fmt.Fprintf(out, "Queued %d items on %s\n", len(entries), platform)
			for _, entry := range entries {
				fmt.Fprintf(out, "  #%d at %s\n", entry.ContentID, entry.ScheduledAt.Local().Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "twitter", "Target platform")
	return cmd
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pending publish queue entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := ctx.client().QueueStatus(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Publish interval: %d minutes\n", status.IntervalMinutes)
			if len(status.Pending) == 0 {
				fmt.Fprintln(out, "Publish queue is empty")
				return nil
			}
			rows := make([][]string, 0, len(status.Pending))
			for _, entry := range status.Pending {
				due := ""
				if status.NextDue != nil && status.NextDue.ID == entry.ID {
					due = "next"
				}
				rows = append(rows, []string{
					strconv.FormatInt(entry.ContentID, 10),
					entry.Platform,
					entry.ScheduledAt.Local().Format("2006-01-02 15:04"),
					due,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Content", "Platform", "Scheduled", ""},
				rows,
				0,
			))
			return nil
		},
	}
}

func newQueueIntervalCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "interval [minutes]",
		Short: "Show or set the publish spacing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.client()
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				minutes, err := client.Interval(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Publish interval: %d minutes\n", minutes)
				return nil
			}
			minutes, err := strconv.Atoi(args[0])
			if err != nil || minutes <= 0 {
				return fmt.Errorf("invalid interval %q: expected a positive number of minutes", args[0])
			}
			if err := client.SetInterval(cmd.Context(), minutes); err != nil {
				return err
			}
			fmt.Fprintf(out, "Publish interval set to %d minutes\n", minutes)
			return nil
		},
	}
}
