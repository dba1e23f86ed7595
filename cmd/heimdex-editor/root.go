package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-editor/internal/config"
)

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "heimdex-editor",
		Short: "Local video clip editor",
		Long: `heimdex-editor runs the clip editing API and, optionally, a local media
backend that stores uploads, extracts thumbnails and trims exported clips.

  heimdex-editor backend   start the media backend
  heimdex-editor serve     start the editor API against a backend`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (overrides "+config.EnvConfigFile+")")

	load := func() (*config.EnvConfig, error) {
		cfg, err := config.NewFromFile(configPath(cfgFile))
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}

	root.AddCommand(newServeCmd(load), newBackendCmd(load), newVersionCmd())
	return root
}

// configPath prefers the flag, then the environment.
func configPath(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(config.EnvConfigFile)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "heimdex-editor %s (commit %s, built %s)\n",
				config.Version, config.GitCommit, config.BuildTime)
		},
	}
}
