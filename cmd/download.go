package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brogergvhs/mandl/internal/ui"
	"github.com/brogergvhs/mandl/internal/util"

	"github.com/spf13/cobra"
)

var (
	flagScrollFor  time.Duration
	flagNoProgress bool
)

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Open a reader page, download its images once and exit. Uses the selected config, overwritten by CLI flags",
		RunE:  runDownload,
	}

	addPageFlags(downloadCmd)
	downloadCmd.Flags().DurationVar(&flagScrollFor, "scroll-for", 0, "auto-scroll for this long before scraping (e.g. 20s)")
	downloadCmd.Flags().BoolVar(&flagNoProgress, "no-progress", false, "hide per-file progress bars")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, _ []string) error {
	cfg, usedPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	if usedPath != "" {
		fmt.Printf("Config file: %s\n", usedPath)
	}

	fmt.Println("Full config:")
	cfg.Print()
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	util.SetupInterruptHandler(cancel, cfg.Output)

	var pm *ui.MPBProgressManager
	if !flagNoProgress {
		pm = ui.NewProgressManager(os.Stderr)
	}

	o, err := openSession(ctx, cfg, flagURL, logSvc, pm)
	if err != nil {
		return err
	}

	start := time.Now()

	if flagScrollFor > 0 {
		o.session.AutoScroll()
		select {
		case <-time.After(flagScrollFor):
		case <-ctx.Done():
		}
	}

	batch, err := o.session.Download()
	if err != nil {
		_ = o.session.Close()
		return err
	}

	select {
	case <-batch.Done():
	case <-ctx.Done():
		logSvc.Warnf("Session interrupted before all %d images were requested", len(batch.Entries()))
	}

	// in-flight transfers finish before the page goes away
	o.host.Wait()
	if err := o.session.Close(); err != nil {
		logSvc.Debugf("close page: %v", err)
	}
	if pm != nil {
		pm.Close()
	}

	stats := o.host.Stats()
	elapsed := time.Since(start)

	fmt.Println()
	fmt.Println("Download Summary:")
	fmt.Printf("Images:   %d\n", stats.Saved)
	fmt.Printf("Failed:   %d\n", stats.Failed)
	fmt.Printf("Data:     %s (%s)\n", util.Human(stats.Bytes), util.Rate(stats.Bytes, elapsed))
	fmt.Printf("Time:     %s\n", elapsed.Round(time.Second))
	fmt.Println("\nAll done.")

	return nil
}
