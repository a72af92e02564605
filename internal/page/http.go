package page

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Static is a page fetched once over HTTP. It has no viewport, so scrolling
// is a no-op and lazily loaded images never appear.
type Static struct {
	url  string
	html string

	mu     sync.Mutex
	closed bool
}

func OpenHTTP(ctx context.Context, url string, opts Options) (*Static, error) {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}

	if opts.Log != nil {
		opts.Log.Debugf("Fetched %s (%d bytes)", url, len(body))
	}

	return &Static{url: resp.Request.URL.String(), html: string(body)}, nil
}

// NewStatic wraps already fetched HTML.
func NewStatic(url, html string) *Static {
	return &Static{url: url, html: html}
}

func (s *Static) URL() string {
	return s.url
}

func (s *Static) Document(ctx context.Context) (*goquery.Document, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	return parseHTML(s.html)
}

func (s *Static) ScrollBy(ctx context.Context, _ int) error {
	return s.check(ctx)
}

func (s *Static) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	return nil
}

func (s *Static) check(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	return ctx.Err()
}
