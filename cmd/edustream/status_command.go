package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.client()
			status, err := client.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("daemon is not reachable at %s: %w", ctx.address(), err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon running (pid %d)\n", status.PID)
			fmt.Fprintf(out, "Database: %s\n", status.DBPath)

			if len(status.ItemCounts) > 0 {
				statuses := make([]string, 0, len(status.ItemCounts))
				for name := range status.ItemCounts {
					statuses = append(statuses, name)
				}
				sort.Strings(statuses)
				rows := make([][]string, 0, len(statuses))
				for _, name := range statuses {
					rows = append(rows, []string{name, strconv.Itoa(status.ItemCounts[name])})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Status", "Items"},
					rows,
					1,
				))
			}

			if len(status.Stages) > 0 {
				rows := make([][]string, 0, len(status.Stages))
				for _, st := range status.Stages {
					ready := "ready"
					if !st.Ready {
						ready = "unavailable"
					}
					rows = append(rows, []string{st.Name, ready, st.Detail})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Stage", "State", "Detail"},
					rows,
				))
			}

			platforms, err := client.Platforms(cmd.Context())
			if err != nil {
				return err
			}
			configured := strings.Join(platforms.Configured, ", ")
			if configured == "" {
				configured = "none"
			}
			fmt.Fprintf(out, "Platforms configured: %s\n", configured)
			return nil
		},
	}
}
