package util

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHuman(t *testing.T) {
	assert.Equal(t, "512 B", Human(512))
	assert.Equal(t, "1.50 KB", Human(1536))
	assert.Equal(t, "2.00 MB", Human(2<<20))
	assert.Equal(t, "unknown", Human(-1))
}

func TestRate(t *testing.T) {
	assert.Equal(t, "1.00 KB/s", Rate(2048, 2*time.Second))
	assert.Equal(t, "0 B/s", Rate(2048, 0))
}

func TestJoinCookies(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cookies.txt")
	require.NoError(t, os.WriteFile(file, []byte("\n  uid=42  \nignored=1\n"), 0644))

	assert.Equal(t, "a=1; uid=42", joinCookies(" a=1 ", file))
	assert.Equal(t, "uid=42", joinCookies("", file))
	assert.Equal(t, "a=1", joinCookies("a=1", filepath.Join(t.TempDir(), "missing")))
}

func TestHTTPClientSetsHeaders(t *testing.T) {
	var ua, cookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		cookie = r.Header.Get("Cookie")
	}))
	defer srv.Close()

	c, err := NewHTTPClient(HTTPClientOptions{
		Timeout:   5 * time.Second,
		UserAgent: PickUserAgent("mandl-test"),
		Cookie:    "session=abc",
	})
	require.NoError(t, err)

	resp, err := c.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, "mandl-test", ua)
	assert.Equal(t, "session=abc", cookie)
}

func TestCleanupPartialFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "ch1"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image000.jpg"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ch1", "image001.jpg.part"), nil, 0644))

	CleanupPartialFiles(dir)

	assert.FileExists(t, filepath.Join(dir, "image000.jpg"))
	assert.NoFileExists(t, filepath.Join(dir, "ch1", "image001.jpg.part"))
}

func TestRemoveIfEmpty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.Mkdir(dir, 0755))

	RemoveIfEmpty(dir)

	assert.NoDirExists(t, dir)
}
