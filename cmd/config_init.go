package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/brogergvhs/mandl/internal/config"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the default config",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.Path()

		if _, err := os.Stat(path); err == nil {
			fmt.Println("Configuration already exists at:")
			fmt.Println("  ", path)
			fmt.Println("Use `mandl config reset` to recreate it.")
			return nil
		}

		def := config.DefaultConfig()

		fmt.Println("Configuration file will be saved at:")
		fmt.Println("  ", path)
		fmt.Println()

		fmt.Println("Default configuration:")
		def.Print()
		fmt.Println()

		confirm := promptui.Prompt{
			Label:     "Create config",
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) {
				fmt.Println("Aborted.")
				return nil
			}
			return err
		}

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		if err := config.SaveYAML(def, path); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}

		fmt.Println("Config created at:", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}
