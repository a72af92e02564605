package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/brogergvhs/mandl/internal/config"
	"github.com/brogergvhs/mandl/internal/downloader"
	"github.com/brogergvhs/mandl/internal/page"
	"github.com/brogergvhs/mandl/internal/providers"
	"github.com/brogergvhs/mandl/internal/settings"
	"github.com/brogergvhs/mandl/internal/ui"

	"github.com/spf13/cobra"
)

var flagHTMLFile string

var selectorCmd = &cobra.Command{
	Use:   "selector <url>",
	Short: "Show which image selector a page URL resolves to and whether the page is included",
	Args:  cobra.ExactArgs(1),
	RunE:  runSelector,
}

func init() {
	selectorCmd.Flags().StringVar(&flagHTMLFile, "html", "", "saved copy of the page; list the images and file names a download would use")
	rootCmd.AddCommand(selectorCmd)
}

func runSelector(cmd *cobra.Command, args []string) error {
	pageURL := args[0]

	cfg, _, err := config.LoadMerged(config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		Scope:        flagScope,
	})
	if err != nil {
		return err
	}
	logSvc := ui.NewLogger(cfg.Debug)

	matcher, err := providers.NewMatcher(cfg.Include)
	if err != nil {
		return err
	}

	rule := providers.Resolve(pageURL, logSvc)

	fmt.Printf("Page:     %s\n", pageURL)
	fmt.Printf("Site:     %s\n", rule.Name)
	fmt.Printf("Selector: %s\n", rule.Selector)

	if err := matcher.Check(pageURL); errors.Is(err, providers.ErrPageNotIncluded) {
		fmt.Printf("Included: no (patterns: %s)\n", strings.Join(cfg.Include, ", "))
	} else {
		fmt.Println("Included: yes")
	}

	if flagHTMLFile == "" {
		return nil
	}

	raw, err := os.ReadFile(flagHTMLFile)
	if err != nil {
		return err
	}

	doc, err := page.NewStatic(pageURL, string(raw)).Document(cmd.Context())
	if err != nil {
		return err
	}

	store, err := settings.OpenScope(cfg.Scope)
	if err != nil {
		return err
	}
	s := settings.Load(store, logSvc).Snapshot()

	plan := downloader.BuildPlan(providers.Select(doc, rule, pageURL), s)

	fmt.Printf("\n%d images:\n", len(plan))
	for _, e := range plan {
		mark := ""
		if e.Skip {
			mark = " (skipped)"
		}
		fmt.Printf("%4d) %-16s +%-8v %s%s\n", e.Index, e.Filename, e.Delay, e.Source, mark)
	}

	return nil
}
