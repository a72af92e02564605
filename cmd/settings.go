package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/brogergvhs/mandl/internal/config"
	"github.com/brogergvhs/mandl/internal/settings"
	"github.com/brogergvhs/mandl/internal/ui"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show the persisted download and scroll settings of the current scope",
	RunE:  runSettingsList,
}

func openLiveSettings() (*settings.Live, *settings.Store, error) {
	cfg, _, err := config.LoadMerged(config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		Scope:        flagScope,
	})
	if err != nil {
		return nil, nil, err
	}

	store, err := settings.OpenScope(cfg.Scope)
	if err != nil {
		return nil, nil, err
	}

	return settings.Load(store, ui.NewLogger(cfg.Debug)), store, nil
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	live, store, err := openLiveSettings()
	if err != nil {
		return err
	}

	fmt.Printf("Settings file:\n  %s\n\n", store.Path())

	cur := live.Snapshot()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tALIAS\tRAW\tVALUE")
	for _, f := range settings.Fields {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%q\t%s\n", f.Key, f.Alias, live.Raw(f.Key), f.Value(cur))
	}

	return w.Flush()
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key|alias>",
	Short: "Print one setting as stored",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := settings.Lookup(args[0])
		if err != nil {
			return err
		}

		live, _, err := openLiveSettings()
		if err != nil {
			return err
		}

		fmt.Println(live.Raw(f.Key))
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key|alias> <value>",
	Short: "Store a setting. The text is kept as typed; numeric settings read anything else as 0",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		live, _, err := openLiveSettings()
		if err != nil {
			return err
		}

		if err := live.Set(args[0], args[1]); err != nil {
			return err
		}

		f, _ := settings.Lookup(args[0])
		fmt.Printf("%s = %q (%s)\n", f.Key, live.Raw(f.Key), f.Value(live.Snapshot()))
		return nil
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget every stored setting of the current scope",
	RunE: func(cmd *cobra.Command, args []string) error {
		live, store, err := openLiveSettings()
		if err != nil {
			return err
		}

		if err := live.Reset(); err != nil {
			return err
		}

		fmt.Printf("Reset settings: %s\n", store.Path())
		return nil
	},
}

var settingsScopesCmd = &cobra.Command{
	Use:   "scopes",
	Short: "List the settings scopes that have a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := os.ReadDir(settings.SettingsDir())
		if os.IsNotExist(err) {
			fmt.Println("No settings stored yet.")
			return nil
		}
		if err != nil {
			return err
		}

		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || filepath.Ext(name) != ".yaml" {
				continue
			}
			fmt.Println(strings.TrimSuffix(name, ".yaml"))
		}

		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	settingsCmd.AddCommand(settingsScopesCmd)
	rootCmd.AddCommand(settingsCmd)
}
