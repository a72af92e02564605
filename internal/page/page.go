// Package page hosts the comic reader page: it supplies the live document
// for selector queries and the viewport for auto-scroll. Engines are a
// Chrome tab driven by chromedp or go-rod, or a plain HTTP fetch.
package page

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var ErrClosed = errors.New("page closed")

type Page interface {
	URL() string
	// Document snapshots the current DOM.
	Document(ctx context.Context) (*goquery.Document, error)
	ScrollBy(ctx context.Context, pixels int) error
	Close() error
}

type Options struct {
	Headless    bool
	UserAgent   string
	BrowserPath string
	UserDataDir string
	NoSandbox   bool
	// Client is used by the http engine.
	Client *http.Client
	Log    interface {
		Debugf(string, ...any)
	}
}

// Open navigates a new page of the named engine to url.
func Open(ctx context.Context, engine, url string, opts Options) (Page, error) {
	var (
		p   Page
		err error
	)

	switch engine {
	case "chromedp":
		p, err = OpenChromedp(ctx, url, opts)
	case "rod":
		p, err = OpenRod(ctx, url, opts)
	case "http":
		p, err = OpenHTTP(ctx, url, opts)
	default:
		return nil, fmt.Errorf("unknown engine %q", engine)
	}

	if err != nil {
		return nil, err
	}

	return p, nil
}

func parseHTML(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page HTML: %w", err)
	}

	return doc, nil
}

func scrollScript(pixels int) string {
	return fmt.Sprintf("window.scrollBy(0, %d)", pixels)
}
