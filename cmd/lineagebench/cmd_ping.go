package main

import (
	"github.com/spboyer/lineagebench/internal/projectconfig"
	"github.com/spboyer/lineagebench/internal/utils"
	"github.com/spf13/cobra"
)

func newPingCommand() *cobra.Command {
	return newPingCommandWith(&runOptions{newClient: newClient})
}

func newPingCommandWith(opts *runOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Send one trivial request to check service connectivity",
		Long: `Ping sends a single short request to the first model of --model and
prints the reply. It is equivalent to "run --ping".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.ping = true
			return runCommandE(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.model, "model", projectconfig.DefaultModel, "Comma-separated list of model aliases or IDs; the first is pinged")
	f.StringVar(&opts.engine, "engine", projectconfig.DefaultEngine, "Service engine: openai or mock")
	f.StringVar(&opts.logLevel, "loglevel", projectconfig.DefaultLogLevel, "Log level (DEBUG, INFO, WARNING, ERROR, CRITICAL)")
	f.BoolVar(&opts.logFile, "logfile", true, "Append logs to <output>/"+utils.LogFileName)
	f.StringVar(&opts.envFile, "env-file", projectconfig.DefaultEnvFile, "Dotenv file with service settings")

	return cmd
}
