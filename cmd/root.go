package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagIgnoreConfig bool
	flagDebug        bool
	flagScope        string
)

var rootCmd = &cobra.Command{
	Use:   "mandl",
	Short: "Comic reader page image downloader",
	Long: "mandl opens a comic reader page, finds the page images with a per-site selector\n" +
		"and downloads them one by one on a fixed delay.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagIgnoreConfig, "ignore-config", false, "ignore config and use only CLI flags")
	rootCmd.PersistentFlags().StringVar(&flagScope, "scope", "", "settings scope to read and write (default from config, else \"mandl\")")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
