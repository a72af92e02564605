package providers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type warnCounter struct {
	warnings []string
}

func (w *warnCounter) Warnf(format string, args ...any) {
	w.warnings = append(w.warnings, fmt.Sprintf(format, args...))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		url      string
		selector string
	}{
		{"https://www.pufeimanhua.com/manhua/123/456.html", `img.comicimg`},
		{"https://www.kuaikanmanhua.com/web/comic/98765/", `.comicDetails img[src*="kkmh.com/image"]`},
		{"https://ac.qq.com/ComicView/index/id/505430/cid/1", `img[src*="manhua_detail"]`},
		{"https://www.pufeimanhua.com/?ref=kuaikanmanhua", `img.comicimg`},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			w := &warnCounter{}
			r := Resolve(tt.url, w)

			assert.Equal(t, tt.selector, r.Selector)
			assert.False(t, r.Fallback)
			assert.Empty(t, w.warnings)
		})
	}
}

func TestResolveFallbackWarnsOnce(t *testing.T) {
	w := &warnCounter{}
	r := Resolve("https://example.com/comic/1", w)

	assert.Equal(t, FallbackRule, r)
	assert.Equal(t, `img[src^="jpg"]`, r.Selector)
	require.Len(t, w.warnings, 1)
	assert.Contains(t, w.warnings[0], "example.com")
}

func TestResolveNilLogger(t *testing.T) {
	assert.True(t, Resolve("about:blank", nil).Fallback)
}

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func TestSelectKuaikan(t *testing.T) {
	page := "https://www.kuaikanmanhua.com/web/comic/1/"
	d := doc(t, `<html><body>
		<img src="https://f2.kkmh.com/image/logo.png">
		<div class="comicDetails">
			<img src="https://f2.kkmh.com/image/a.jpg">
			<img src="https://other.cdn/b.jpg">
			<p><img src="https://f2.kkmh.com/image/c.jpg"></p>
		</div></body></html>`)

	got := Select(d, Resolve(page, nil), page)

	assert.Equal(t, []Image{
		{Index: 0, Source: "https://f2.kkmh.com/image/a.jpg"},
		{Index: 1, Source: "https://f2.kkmh.com/image/c.jpg"},
	}, got)
}

func TestSelectQQResolvesRelativeSources(t *testing.T) {
	page := "https://ac.qq.com/ComicView/index/id/1/cid/2"
	d := doc(t, `<ul>
		<li><img src="//manhua.qpic.cn/manhua_detail/0/a.jpg/0"></li>
		<li><img src="/static/manhua_detail/b.jpg"></li>
		<li><img src="/static/loading.gif"></li>
	</ul>`)

	got := Select(d, Resolve(page, nil), page)

	require.Len(t, got, 2)
	assert.Equal(t, "https://manhua.qpic.cn/manhua_detail/0/a.jpg/0", got[0].Source)
	assert.Equal(t, "https://ac.qq.com/static/manhua_detail/b.jpg", got[1].Source)
}

func TestSelectPufei(t *testing.T) {
	page := "http://www.pufeimanhua.com/manhua/1/2.html"
	d := doc(t, `<img class="comicimg" src="http://img.pufei.cc/1.jpg"><img class="ad" src="x.jpg"><img class="comicimg">`)

	got := Select(d, Resolve(page, nil), page)

	assert.Equal(t, []Image{
		{Index: 0, Source: "http://img.pufei.cc/1.jpg"},
		{Index: 1, Source: ""},
	}, got)
}

func TestSelectFallbackMatchesOnlyLiteralPrefix(t *testing.T) {
	page := "https://example.com/read"
	d := doc(t, `<img src="https://example.com/p1.jpg"><img src="jpg/p2.jpg">`)

	got := Select(d, FallbackRule, page)

	require.Len(t, got, 1)
	assert.Equal(t, "https://example.com/jpg/p2.jpg", got[0].Source)
}
