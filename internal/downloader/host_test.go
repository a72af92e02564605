package downloader

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/brogergvhs/mandl/internal/ui"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imageServer(t *testing.T, referer *string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if referer != nil {
			*referer = r.Header.Get("Referer")
		}

		switch r.URL.Path {
		case "/a.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpeg-bytes"))
		case "/b.bin":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte("octet-bytes"))
		case "/page.html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newTestHost(t *testing.T, srv *httptest.Server) (*HTTPHost, string, *bytes.Buffer) {
	t.Helper()

	dir := t.TempDir()
	var buf bytes.Buffer
	h := NewHTTPHost(srv.Client(), HostOptions{
		OutputDir: dir,
		Referer:   "https://ac.qq.com/ComicView/index/id/1",
		Log:       ui.NewLoggerTo(&buf, true),
	})

	return h, dir, &buf
}

func TestHTTPHostSavesImage(t *testing.T) {
	var referer string
	srv := imageServer(t, &referer)
	h, dir, _ := newTestHost(t, srv)

	h.RequestDownload(context.Background(), srv.URL+"/a.jpg", "ch1/image003.jpg")
	h.Wait()

	b, err := os.ReadFile(filepath.Join(dir, "ch1", "image003.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(b))
	assert.Equal(t, "https://ac.qq.com/ComicView/index/id/1", referer)

	leftovers, err := filepath.Glob(filepath.Join(dir, "ch1", "*.part"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	assert.Equal(t, Stats{Saved: 1, Bytes: int64(len("jpeg-bytes"))}, h.Stats())
}

func TestHTTPHostLastWriteWins(t *testing.T) {
	srv := imageServer(t, nil)
	h, dir, _ := newTestHost(t, srv)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "image000.jpg"), []byte("old"), 0644))
	h.RequestDownload(context.Background(), srv.URL+"/a.jpg", "image000.jpg")
	h.Wait()

	b, err := os.ReadFile(filepath.Join(dir, "image000.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(b))
}

func TestHTTPHostAcceptsOctetStream(t *testing.T) {
	srv := imageServer(t, nil)
	h, dir, _ := newTestHost(t, srv)

	h.RequestDownload(context.Background(), srv.URL+"/b.bin", "image001.jpg")
	h.Wait()

	b, err := os.ReadFile(filepath.Join(dir, "image001.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "octet-bytes", string(b))
	assert.Equal(t, int64(1), h.Stats().Saved)
}

func TestHTTPHostFailuresAreOnlyLogged(t *testing.T) {
	srv := imageServer(t, nil)
	h, dir, buf := newTestHost(t, srv)

	h.RequestDownload(context.Background(), srv.URL+"/page.html", "image000.jpg")
	h.RequestDownload(context.Background(), srv.URL+"/missing.jpg", "image001.jpg")
	h.RequestDownload(context.Background(), "", "image002.jpg")
	h.Wait()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	out := buf.String()
	assert.Contains(t, out, "unexpected MIME")
	assert.Contains(t, out, "HTTP 404")
	assert.Contains(t, out, "empty source URL")
	assert.Equal(t, int64(3), h.Stats().Failed)
}

func TestCopyWithProgress(t *testing.T) {
	var seen []int64
	var dst bytes.Buffer

	n, err := copyWithProgress(&dst, bytes.NewReader(make([]byte, 70*1024)), func(done int64) {
		seen = append(seen, done)
	})
	require.NoError(t, err)

	assert.Equal(t, int64(70*1024), n)
	assert.Equal(t, int64(70*1024), seen[len(seen)-1])
}
