package downloader

import (
	"context"
	"fmt"
	"sync"

	"github.com/brogergvhs/mandl/internal/providers"
	"github.com/brogergvhs/mandl/internal/schedule"
	"github.com/brogergvhs/mandl/internal/settings"

	"github.com/PuerkitoBio/goquery"
)

// Host performs the actual transfer. It is fire-and-forget: the driver never
// learns whether a download worked.
type Host interface {
	RequestDownload(ctx context.Context, sourceURL, filename string)
}

// Document is the part of a page the driver reads.
type Document interface {
	URL() string
	Document(ctx context.Context) (*goquery.Document, error)
}

type Logger interface {
	Infof(string, ...any)
	Warnf(string, ...any)
}

type Driver struct {
	clock schedule.Clock
	host  Host
	log   Logger
}

func NewDriver(clock schedule.Clock, host Host, log Logger) *Driver {
	return &Driver{clock: clock, host: host, log: log}
}

// DownloadAll scrapes the live document and schedules one action per
// matched image. Each call is independent; overlapping calls produce
// overlapping batches.
func (d *Driver) DownloadAll(ctx context.Context, page Document, s settings.Settings) (*Batch, error) {
	d.log.Infof("Download with configurations...")
	d.log.Infof("File name prefix: %s", s.FilePrefix)
	d.log.Infof("File extension: %s", s.FileExtension)
	d.log.Infof("Skip first N pages: %d", s.SkipCount)
	d.log.Infof("MS between file downloads: %v", s.DownloadDelay())

	doc, err := page.Document(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}

	pageURL := page.URL()
	imgs := providers.Select(doc, providers.Resolve(pageURL, d.log), pageURL)
	d.log.Infof("imagesToDownload count: %d", len(imgs))

	return d.Schedule(ctx, BuildPlan(imgs, s)), nil
}

// Schedule arms one timer per entry, measured from now.
func (d *Driver) Schedule(ctx context.Context, plan []Entry) *Batch {
	b := &Batch{
		entries: plan,
		done:    make(chan struct{}),
	}

	b.wg.Add(len(plan))
	b.timers = make([]schedule.Timer, 0, len(plan))

	b.mu.Lock()
	for _, e := range plan {
		e := e // per-iteration copy; go.mod targets go1.21 loop semantics
		t := d.clock.AfterFunc(e.Delay, func() {
			defer b.wg.Done()
			d.fire(ctx, e)
		})
		b.timers = append(b.timers, t)
	}
	b.mu.Unlock()

	go func() {
		b.wg.Wait()
		close(b.done)
	}()

	return b
}

func (d *Driver) fire(ctx context.Context, e Entry) {
	if ctx.Err() != nil {
		return
	}

	if e.Skip {
		d.log.Infof("Skipping image with src: %s", e.Source)
		return
	}

	d.host.RequestDownload(ctx, e.Source, e.Filename)
}

// Batch is the set of timers armed by one DownloadAll call.
type Batch struct {
	entries []Entry

	mu     sync.Mutex
	timers []schedule.Timer
	wg     sync.WaitGroup
	done   chan struct{}
}

func (b *Batch) Entries() []Entry {
	return b.entries
}

// Done is closed once every entry has fired or been stopped.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

func (b *Batch) Wait() {
	<-b.done
}

// Stop discards the entries that have not fired yet.
func (b *Batch) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, t := range b.timers {
		if t.Stop() {
			b.wg.Done()
		}
	}
	b.timers = nil
}
