package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brogergvhs/mandl/internal/config"
	"github.com/brogergvhs/mandl/internal/downloader"
	"github.com/brogergvhs/mandl/internal/page"
	"github.com/brogergvhs/mandl/internal/providers"
	"github.com/brogergvhs/mandl/internal/session"
	"github.com/brogergvhs/mandl/internal/settings"
	"github.com/brogergvhs/mandl/internal/ui"
	"github.com/brogergvhs/mandl/internal/util"

	"github.com/spf13/cobra"
)

var (
	// page
	flagURL     string
	flagEngine  string
	flagInclude []string
	flagBrowser string

	// runtime
	flagOutput   string
	flagHeadless bool

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
)

func addPageFlags(c *cobra.Command) {
	// page
	c.Flags().StringVar(&flagURL, "url", "", "comic reader page URL")
	c.Flags().StringVar(&flagEngine, "engine", "", "page host: chromedp, rod or http")
	c.Flags().StringSliceVar(&flagInclude, "include", nil, "extra allowed page URL glob (repeatable)")
	c.Flags().StringVar(&flagBrowser, "browser", "", "path to the Chrome/Chromium binary")

	// runtime
	c.Flags().StringVar(&flagOutput, "output", "", "folder to save images into")
	c.Flags().BoolVar(&flagHeadless, "headless", false, "run the browser without a window")

	// headers/auth
	c.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	c.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	c.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
}

func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	opts := config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		Output:       flagOutput,
		Engine:       flagEngine,
		Scope:        flagScope,
		Include:      flagInclude,
		Cookie:       flagCookie,
		CookieFile:   flagCookieFile,
		UserAgent:    flagUserAgent,
		BrowserPath:  flagBrowser,
	}

	if f := cmd.Flags().Lookup("headless"); f != nil && f.Changed {
		opts.Headless = &flagHeadless
	}

	return config.LoadMerged(opts)
}

type opened struct {
	session *session.Session
	host    *downloader.HTTPHost
}

// openSession checks the page against the include list, opens it in the
// configured engine and wires the drivers to it.
func openSession(ctx context.Context, cfg *config.Config, url string, log *ui.Logger, progress *ui.MPBProgressManager) (*opened, error) {
	if url == "" {
		return nil, fmt.Errorf("missing --url")
	}

	matcher, err := providers.NewMatcher(cfg.Include)
	if err != nil {
		return nil, err
	}
	if err := matcher.Check(url); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return nil, fmt.Errorf("cannot create output folder: %w", err)
	}

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:          60 * time.Second,
		UserAgent:        util.PickUserAgent(cfg.UserAgent),
		Cookie:           cfg.Cookie,
		CookieFile:       cfg.CookieFile,
		CloudflareBypass: cfg.CloudflareBypass,
		DebugLogger:      log,
	})
	if err != nil {
		return nil, err
	}

	store, err := settings.OpenScope(cfg.Scope)
	if err != nil {
		return nil, err
	}
	log.Debugf("Settings file: %s", store.Path())

	p, err := page.Open(ctx, cfg.Engine, url, page.Options{
		Headless:    cfg.Headless,
		UserAgent:   cfg.UserAgent,
		BrowserPath: cfg.BrowserPath,
		UserDataDir: cfg.UserDataDir,
		NoSandbox:   cfg.NoSandbox,
		Client:      client,
		Log:         log,
	})
	if err != nil {
		return nil, err
	}

	host := downloader.NewHTTPHost(client, downloader.HostOptions{
		OutputDir: cfg.Output,
		Referer:   p.URL(),
		Progress:  progress,
		Log:       log,
	})

	sess := session.New(ctx, session.Options{
		Page:     p,
		Settings: settings.Load(store, log),
		Host:     host,
		Log:      log,
	})

	log.Infof("ManDL - Ready! (%s)", p.URL())
	return &opened{session: sess, host: host}, nil
}
