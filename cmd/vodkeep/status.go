package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vodkeep/internal/api"
)

func newStatusCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the current state of one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			snapshot, err := client.Job(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printSnapshot(cmd, snapshot)
			return nil
		},
	}
}

func printSnapshot(cmd *cobra.Command, s api.JobSnapshot) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "job:     %s\n", s.ID)
	fmt.Fprintf(out, "url:     %s\n", s.SourceURL)
	fmt.Fprintf(out, "status:  %s\n", s.Status)
	fmt.Fprintf(out, "stage:   %d (%s)\n", s.CurrentStage, s.StageLabel)
	fmt.Fprintf(out, "started: %s\n", s.StartedAt)
	if s.CompletedAt != "" {
		fmt.Fprintf(out, "ended:   %s\n", s.CompletedAt)
	}
	if s.Error != "" {
		fmt.Fprintf(out, "error:   %s\n", s.Error)
	}
	if s.Result != nil {
		fmt.Fprintf(out, "output:  %s\n", s.Result.OutputDir)
		if s.Result.UploadURL != "" {
			fmt.Fprintf(out, "upload:  %s\n", s.Result.UploadURL)
		}
		if s.Result.ArchiveURL != "" {
			fmt.Fprintf(out, "archive: %s\n", s.Result.ArchiveURL)
		}
		for _, warning := range s.Result.Warnings {
			fmt.Fprintf(out, "warning: %s\n", warning)
		}
	}
}
