// Package session ties one open reader page to the settings, the drivers
// and everything they have started. Closing a session is the equivalent of
// navigating away: every scroller stops and unfired downloads are dropped.
package session

import (
	"context"
	"sync"

	"github.com/brogergvhs/mandl/internal/downloader"
	"github.com/brogergvhs/mandl/internal/page"
	"github.com/brogergvhs/mandl/internal/schedule"
	"github.com/brogergvhs/mandl/internal/scroll"
	"github.com/brogergvhs/mandl/internal/settings"
)

type Logger interface {
	Debugf(string, ...any)
	Infof(string, ...any)
	Warnf(string, ...any)
	Errorf(string, ...any)
}

type Session struct {
	ctx    context.Context
	cancel context.CancelFunc

	page   page.Page
	live   *settings.Live
	driver *downloader.Driver
	clock  schedule.Clock
	log    Logger

	mu        sync.Mutex
	scrollers []*scroll.Scroller
	batches   []*downloader.Batch
}

type Options struct {
	Page     page.Page
	Settings *settings.Live
	Host     downloader.Host
	Clock    schedule.Clock
	Log      Logger
}

func New(ctx context.Context, opts Options) *Session {
	clock := opts.Clock
	if clock == nil {
		clock = schedule.Real{}
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Session{
		ctx:    ctx,
		cancel: cancel,
		page:   opts.Page,
		live:   opts.Settings,
		driver: downloader.NewDriver(clock, opts.Host, opts.Log),
		clock:  clock,
		log:    opts.Log,
	}
}

func (s *Session) Settings() *settings.Live {
	return s.live
}

func (s *Session) Context() context.Context {
	return s.ctx
}

// AutoScroll starts another scroller with the current settings.
func (s *Session) AutoScroll() *scroll.Scroller {
	sc := scroll.Start(s.ctx, s.page, s.live.Snapshot(), s.clock, s.log)

	s.mu.Lock()
	s.scrollers = append(s.scrollers, sc)
	s.mu.Unlock()

	return sc
}

// Download scrapes the page and schedules a new batch with the current
// settings.
func (s *Session) Download() (*downloader.Batch, error) {
	b, err := s.driver.DownloadAll(s.ctx, s.page, s.live.Snapshot())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.batches = append(s.batches, b)
	s.mu.Unlock()

	return b, nil
}

// Close ends the session and the page.
func (s *Session) Close() error {
	s.cancel()

	s.mu.Lock()
	scrollers, batches := s.scrollers, s.batches
	s.scrollers, s.batches = nil, nil
	s.mu.Unlock()

	for _, b := range batches {
		b.Stop()
	}
	for _, sc := range scrollers {
		sc.Stop()
	}

	return s.page.Close()
}
