package downloader

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brogergvhs/mandl/internal/ui"
	"github.com/brogergvhs/mandl/internal/util"
)

type hostLogger interface {
	Debugf(string, ...any)
	Infof(string, ...any)
	Errorf(string, ...any)
}

// HTTPHost saves images under OutputDir. Transfers run in the background;
// failures are logged and otherwise dropped.
type HTTPHost struct {
	client    *http.Client
	outputDir string
	referer   string
	progress  *ui.MPBProgressManager
	log       hostLogger

	wg sync.WaitGroup

	saved  atomic.Int64
	failed atomic.Int64
	bytes  atomic.Int64
}

// Stats is a running tally of finished transfers.
type Stats struct {
	Saved  int64
	Failed int64
	Bytes  int64
}

type HostOptions struct {
	OutputDir string
	// Referer is sent with every image request; comic CDNs check it.
	Referer string
	// Progress is optional.
	Progress *ui.MPBProgressManager
	Log      hostLogger
}

func NewHTTPHost(c *http.Client, opts HostOptions) *HTTPHost {
	return &HTTPHost{
		client:    c,
		outputDir: opts.OutputDir,
		referer:   opts.Referer,
		progress:  opts.Progress,
		log:       opts.Log,
	}
}

func (h *HTTPHost) RequestDownload(ctx context.Context, sourceURL, filename string) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		dest := filepath.Join(h.outputDir, filepath.FromSlash(filename))
		ph := h.progress.Register(filename)

		n, err := h.download(ctx, sourceURL, dest, ph)
		if err != nil {
			ph.Abort()
			h.failed.Add(1)
			h.log.Errorf("Download of %s to %s failed: %v", sourceURL, filename, err)
			return
		}

		ph.MarkDone()
		h.saved.Add(1)
		h.bytes.Add(n)
		h.log.Infof("Saved %s (%s)", filename, util.Human(n))
	}()
}

// Wait blocks until every started transfer has finished.
func (h *HTTPHost) Wait() {
	h.wg.Wait()
}

func (h *HTTPHost) Stats() Stats {
	return Stats{
		Saved:  h.saved.Load(),
		Failed: h.failed.Load(),
		Bytes:  h.bytes.Load(),
	}
}

func (h *HTTPHost) download(ctx context.Context, u, output string, ph *ui.ProgressHandle) (int64, error) {
	if u == "" {
		return 0, fmt.Errorf("empty source URL")
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}

	if h.referer != "" {
		req.Header.Set("Referer", h.referer)
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			h.log.Debugf("failed to close response body for %s: %v", u, cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	// CDNs often serve images as application/octet-stream; only an HTML
	// error or login page is refused.
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, _ := mime.ParseMediaType(ct); mt == "text/html" {
			return 0, fmt.Errorf("unexpected MIME: %s", ct)
		}
	}

	ph.SetTotal(resp.ContentLength)

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return 0, err
	}

	f, err := os.CreateTemp(filepath.Dir(output), filepath.Base(output)+".*"+util.PartialSuffix)
	if err != nil {
		return 0, err
	}
	part := f.Name()

	written, err := copyWithProgress(f, resp.Body, ph.Update)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(part)
		return written, err
	}

	if err := os.Chmod(part, 0644); err != nil {
		h.log.Debugf("chmod %s: %v", part, err)
	}

	// last write wins when two batches produce the same name
	if err := os.Rename(part, output); err != nil {
		_ = os.Remove(part)
		return written, err
	}

	h.log.Debugf("Wrote %d bytes to %s", written, output)
	return written, nil
}
