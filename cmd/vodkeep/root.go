package main

import (
	"github.com/spf13/cobra"

	"vodkeep/internal/apiclient"
	"vodkeep/internal/config"
	"vodkeep/internal/version"
)

type cliOptions struct {
	configPath string
	apiBind    string
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "vodkeep",
		Short:         "Submit videos to the vodkeep daemon and inspect processing jobs",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&opts.apiBind, "api", "", "daemon API address (overrides config)")

	root.AddCommand(
		newProcessCommand(opts),
		newStatusCommand(opts),
		newJobsCommand(opts),
		newLogsCommand(opts),
		newWatchCommand(opts),
		newConfigCommand(opts),
	)
	return root
}

// client resolves the daemon address from the --api flag or the config
// file and returns an API client for it.
func (o *cliOptions) client() (*apiclient.Client, error) {
	if o.apiBind != "" {
		return apiclient.New(o.apiBind), nil
	}
	cfg, _, _, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	return apiclient.New(cfg.Paths.APIBind), nil
}
