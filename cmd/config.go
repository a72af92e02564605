package cmd

import (
	"fmt"

	"github.com/brogergvhs/mandl/internal/config"
	"github.com/brogergvhs/mandl/internal/settings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the host config (engine, output, include patterns) merged with flags",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, used, err := config.LoadMerged(config.Options{
			IgnoreConfig: flagIgnoreConfig,
			Debug:        flagDebug,
			Scope:        flagScope,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Loaded config from:\n  %s\n\n", used)
		cfg.Print()
		fmt.Printf("\nSettings scope %q is stored in:\n  %s\n", cfg.Scope, settings.ScopePath(cfg.Scope))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
