package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogsCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logs <job-id>",
		Short: "Print the retained output of a job's stage tools",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			logs, err := client.Logs(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, line := range logs.Lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}
