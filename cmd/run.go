package cmd

import (
	"context"
	"fmt"

	"github.com/brogergvhs/mandl/internal/ui"
	"github.com/brogergvhs/mandl/internal/util"

	"github.com/spf13/cobra"
)

func init() {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Open a reader page and drive it from the ManDL settings panel",
		RunE:  runInteractive,
	}

	addPageFlags(runCmd)

	rootCmd.AddCommand(runCmd)
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	cfg, usedPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	if usedPath != "" {
		fmt.Printf("Config file: %s\n", usedPath)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	util.SetupInterruptHandler(cancel, cfg.Output)

	// bars would fight the menu for the terminal
	o, err := openSession(ctx, cfg, flagURL, logSvc, nil)
	if err != nil {
		return err
	}

	panel := ui.NewPanel(o.session.Settings(), ui.Actions{
		AutoScroll: func() { o.session.AutoScroll() },
		Download: func() {
			if _, err := o.session.Download(); err != nil {
				logSvc.Errorf("Download failed: %v", err)
			}
		},
	}, logSvc)

	runErr := panel.Run(ui.TerminalPrompter{})

	if err := o.session.Close(); err != nil {
		logSvc.Debugf("close page: %v", err)
	}
	o.host.Wait()

	return runErr
}
