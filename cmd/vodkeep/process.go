package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProcessCommand(opts *cliOptions) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "process <url>",
		Short: "Submit a video URL for processing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			ack, err := client.Submit(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job %s accepted\n", ack.JobID)

			if watch {
				return watchJob(cmd, client, ack.JobID, defaultPollInterval, defaultPollAttempts)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "follow it with: vodkeep watch %s\n", ack.JobID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "poll the job until it finishes")
	return cmd
}
