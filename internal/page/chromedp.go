package page

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// Chromedp is a Chrome tab driven over the DevTools protocol.
type Chromedp struct {
	url string

	tabCtx      context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc

	// chromedp runs actions on a tab one at a time
	mu sync.Mutex
}

func OpenChromedp(ctx context.Context, url string, opts Options) (*Chromedp, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.BrowserPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.BrowserPath))
	}
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
	}
	if opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	p := &Chromedp{
		url:         url,
		tabCtx:      tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
	}

	if opts.Log != nil {
		opts.Log.Debugf("Launching Chrome (headless=%t) for %s", opts.Headless, url)
	}

	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("navigate to %s: %w", url, err)
	}

	var current string
	if err := chromedp.Run(tabCtx, chromedp.Location(&current)); err == nil && current != "" {
		p.url = current
	}

	return p, nil
}

func (p *Chromedp) URL() string {
	return p.url
}

func (p *Chromedp) Document(ctx context.Context) (*goquery.Document, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("snapshot DOM: %w", err)
	}

	return parseHTML(html)
}

func (p *Chromedp) ScrollBy(ctx context.Context, pixels int) error {
	return p.run(ctx, chromedp.Evaluate(scrollScript(pixels), nil))
}

func (p *Chromedp) Close() error {
	p.cancelTab()
	p.cancelAlloc()

	return nil
}

func (p *Chromedp) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.tabCtx.Err(); err != nil {
		return ErrClosed
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// bounded per call
	runCtx, cancel := context.WithTimeout(p.tabCtx, 30*time.Second)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}
