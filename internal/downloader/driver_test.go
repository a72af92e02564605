package downloader

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brogergvhs/mandl/internal/schedule"
	"github.com/brogergvhs/mandl/internal/settings"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	at       time.Duration
	source   string
	filename string
}

type fakeHost struct {
	mu    sync.Mutex
	clock *schedule.Fake
	start time.Time
	calls []call
}

func (h *fakeHost) RequestDownload(_ context.Context, src, filename string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, call{at: h.clock.Now().Sub(h.start), source: src, filename: filename})
}

type fakeLog struct {
	mu    sync.Mutex
	infos []string
	warns []string
}

func (l *fakeLog) Infof(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}

func (l *fakeLog) Warnf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}

func (l *fakeLog) count(prefix string) int {
	n := 0
	for _, s := range l.infos {
		if strings.HasPrefix(s, prefix) {
			n++
		}
	}
	return n
}

type fakePage struct {
	url  string
	html string
}

func (p fakePage) URL() string { return p.url }

func (p fakePage) Document(context.Context) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(p.html))
}

func kuaikanPage(n int) fakePage {
	var b strings.Builder
	b.WriteString(`<div class="comicDetails">`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<img src="https://f2.kkmh.com/image/%d.jpg">`, i)
	}
	b.WriteString(`</div>`)

	return fakePage{url: "https://www.kuaikanmanhua.com/web/comic/1/", html: b.String()}
}

func newTestDriver() (*Driver, *schedule.Fake, *fakeHost, *fakeLog) {
	clock := schedule.NewFake()
	host := &fakeHost{clock: clock, start: clock.Now()}
	log := &fakeLog{}
	return NewDriver(clock, host, log), clock, host, log
}

func TestDownloadAllStaggersByBaseDelay(t *testing.T) {
	d, clock, host, log := newTestDriver()

	b, err := d.DownloadAll(context.Background(), kuaikanPage(3), settings.Defaults())
	require.NoError(t, err)
	assert.Empty(t, host.calls)

	clock.Advance(time.Second)
	b.Wait()

	require.Len(t, host.calls, 3)
	assert.Equal(t, []call{
		{200 * time.Millisecond, "https://f2.kkmh.com/image/0.jpg", "image000.jpg"},
		{400 * time.Millisecond, "https://f2.kkmh.com/image/1.jpg", "image001.jpg"},
		{600 * time.Millisecond, "https://f2.kkmh.com/image/2.jpg", "image002.jpg"},
	}, host.calls)
	assert.Equal(t, 1, log.count("imagesToDownload count: 3"))
	assert.Empty(t, log.warns)
}

func TestDownloadAllSkipsLeadingImages(t *testing.T) {
	d, clock, host, log := newTestDriver()
	s := settings.Defaults()
	s.SkipCount = 2
	s.FilePrefix = "ch7_"
	s.FileExtension = ".webp"

	b, err := d.DownloadAll(context.Background(), kuaikanPage(5), s)
	require.NoError(t, err)

	clock.Advance(5 * 200 * time.Millisecond)
	b.Wait()

	require.Len(t, host.calls, 3)
	for i, c := range host.calls {
		assert.Equal(t, fmt.Sprintf("ch7_%03d.webp", i+2), c.filename)
	}
	assert.Equal(t, 2, log.count("Skipping image with src:"))
}

func TestDownloadAllUnknownSiteWarnsAndSchedulesNothing(t *testing.T) {
	d, clock, host, log := newTestDriver()
	page := fakePage{url: "https://example.com/reader", html: `<img src="https://example.com/1.jpg">`}

	b, err := d.DownloadAll(context.Background(), page, settings.Defaults())
	require.NoError(t, err)

	clock.Advance(time.Second)
	b.Wait()

	assert.Empty(t, host.calls)
	assert.Len(t, log.warns, 1)
}

func TestOverlappingBatchesAreIndependent(t *testing.T) {
	d, clock, host, _ := newTestDriver()
	ctx := context.Background()

	b1, err := d.DownloadAll(ctx, kuaikanPage(2), settings.Defaults())
	require.NoError(t, err)
	clock.Advance(100 * time.Millisecond)
	b2, err := d.DownloadAll(ctx, kuaikanPage(2), settings.Defaults())
	require.NoError(t, err)

	clock.Advance(time.Second)
	b1.Wait()
	b2.Wait()

	var at []time.Duration
	for _, c := range host.calls {
		at = append(at, c.at)
	}
	assert.Equal(t, []time.Duration{200, 300, 400, 500}, scaleMs(at))
}

func scaleMs(ds []time.Duration) []time.Duration {
	out := make([]time.Duration, len(ds))
	for i, d := range ds {
		out[i] = d / time.Millisecond
	}
	return out
}

func TestBatchStopDiscardsPendingEntries(t *testing.T) {
	d, clock, host, _ := newTestDriver()

	b, err := d.DownloadAll(context.Background(), kuaikanPage(4), settings.Defaults())
	require.NoError(t, err)

	clock.Advance(450 * time.Millisecond)
	b.Stop()
	clock.Advance(time.Second)

	select {
	case <-b.Done():
	case <-time.After(time.Second):
		t.Fatal("batch did not finish after Stop")
	}
	assert.Len(t, host.calls, 2)
	assert.Zero(t, clock.Pending())
}

func TestCancelledContextSuppressesDownloads(t *testing.T) {
	d, clock, host, _ := newTestDriver()
	ctx, cancel := context.WithCancel(context.Background())

	b, err := d.DownloadAll(ctx, kuaikanPage(2), settings.Defaults())
	require.NoError(t, err)
	cancel()

	clock.Advance(time.Second)
	b.Wait()
	assert.Empty(t, host.calls)
}

func TestDownloadAllZeroDelayFiresImmediately(t *testing.T) {
	d, clock, host, _ := newTestDriver()
	s := settings.Defaults()
	s.DownloadDelayMs = 0

	b, err := d.DownloadAll(context.Background(), kuaikanPage(3), s)
	require.NoError(t, err)

	clock.Advance(0)
	b.Wait()
	assert.Len(t, host.calls, 3)
}
