package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show publish attempts for one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			records, err := ctx.client().History(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintf(out, "No publish attempts recorded for #%d\n", id)
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				detail := record.PlatformPostID
				if record.ErrorMessage != "" {
					detail = record.ErrorMessage
				}
				rows = append(rows, []string{
					record.CreatedAt,
					record.Platform,
					record.Status,
					detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Attempted", "Platform", "Status", "Detail"},
				rows,
			))
			return nil
		},
	}
}
