package page

import (
	"context"
	"fmt"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Rod is a Chrome tab driven by go-rod, opened through go-rod/stealth so the
// reader sites see an ordinary browser.
type Rod struct {
	url string

	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page

	mu     sync.Mutex
	closed bool
}

func OpenRod(ctx context.Context, url string, opts Options) (*Rod, error) {
	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		NoSandbox(opts.NoSandbox).
		Set("disable-blink-features", "AutomationControlled")
	if opts.BrowserPath != "" {
		l = l.Bin(opts.BrowserPath)
	}
	if opts.UserDataDir != "" {
		l = l.UserDataDir(opts.UserDataDir)
	}

	if opts.Log != nil {
		opts.Log.Debugf("Launching Chrome via rod (headless=%t) for %s", opts.Headless, url)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	p := &Rod{url: url, launcher: l, browser: browser}

	tab, err := stealth.Page(browser)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("open tab: %w", err)
	}
	p.page = tab

	if opts.UserAgent != "" {
		if err := tab.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("set user agent: %w", err)
		}
	}

	if err := tab.Navigate(url); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := tab.WaitLoad(); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("wait for %s: %w", url, err)
	}

	if info, err := tab.Info(); err == nil && info.URL != "" {
		p.url = info.URL
	}

	return p, nil
}

func (p *Rod) URL() string {
	return p.url
}

func (p *Rod) Document(ctx context.Context) (*goquery.Document, error) {
	tab, err := p.tab(ctx)
	if err != nil {
		return nil, err
	}

	html, err := tab.HTML()
	if err != nil {
		return nil, fmt.Errorf("snapshot DOM: %w", err)
	}

	return parseHTML(html)
}

func (p *Rod) ScrollBy(ctx context.Context, pixels int) error {
	tab, err := p.tab(ctx)
	if err != nil {
		return err
	}

	_, err = tab.Eval(`(px) => window.scrollBy(0, px)`, pixels)
	return err
}

func (p *Rod) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	err := p.browser.Close()
	p.launcher.Kill()

	return err
}

func (p *Rod) tab(ctx context.Context) (*rod.Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}

	return p.page.Context(ctx), nil
}
