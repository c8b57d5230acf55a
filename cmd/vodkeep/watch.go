package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vodkeep/internal/apiclient"
)

// Polling defaults: every 5 seconds for up to an hour.
const (
	defaultPollInterval = 5 * time.Second
	defaultPollAttempts = 720
)

func newWatchCommand(opts *cliOptions) *cobra.Command {
	var (
		interval time.Duration
		attempts int
	)

	cmd := &cobra.Command{
		Use:   "watch <job-id>",
		Short: "Poll a job until it reaches a terminal state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			return watchJob(cmd, client, args[0], interval, attempts)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", defaultPollInterval, "polling interval")
	cmd.Flags().IntVar(&attempts, "max-attempts", defaultPollAttempts, "give up after this many polls")
	return cmd
}

// watchJob polls until the job is terminal, printing stage transitions
// as they happen. The attempt bound keeps a wedged daemon from pinning
// the terminal forever.
func watchJob(cmd *cobra.Command, client *apiclient.Client, jobID string, interval time.Duration, attempts int) error {
	out := cmd.OutOrStdout()
	lastLabel := ""

	for attempt := 0; attempt < attempts; attempt++ {
		snapshot, err := client.Job(cmd.Context(), jobID)
		if err != nil {
			return err
		}

		if snapshot.StageLabel != lastLabel {
			lastLabel = snapshot.StageLabel
			fmt.Fprintf(out, "[stage %d/5] %s\n", snapshot.CurrentStage, snapshot.StageLabel)
		}

		switch snapshot.Status {
		case "completed":
			printSnapshot(cmd, snapshot)
			return nil
		case "failed":
			printSnapshot(cmd, snapshot)
			return fmt.Errorf("job %s failed", jobID)
		}

		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("job %s still not finished after %d polls", jobID, attempts)
}
