package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"vodkeep/internal/api"
)

func newJobsCommand(opts *cliOptions) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List processing jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			list, err := client.Jobs(cmd.Context(), status)
			if err != nil {
				return err
			}
			renderJobsTable(cmd, list.Jobs)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending, running, completed, failed)")
	return cmd
}

func renderJobsTable(cmd *cobra.Command, snapshots []api.JobSnapshot) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"ID", "STATUS", "STAGE", "PROGRESS", "STARTED", "DETAIL"})

	for _, s := range snapshots {
		detail := s.Error
		if detail == "" && s.Result != nil && s.Result.UploadURL != "" {
			detail = s.Result.UploadURL
		}
		t.AppendRow(table.Row{s.ID, s.Status, s.CurrentStage, s.StageLabel, s.StartedAt, detail})
	}

	style := table.StyleLight
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		style = table.StyleDefault
		style.Options.DrawBorder = false
		style.Options.SeparateColumns = false
	}
	t.SetStyle(style)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "DETAIL", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})
	t.Render()
}
