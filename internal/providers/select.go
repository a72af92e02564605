package providers

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Image is one matched element, in document order.
type Image struct {
	Index  int
	Source string
}

// Select runs the rule against doc and returns the matched images with their
// src resolved against pageURL. Elements without a src are kept so indexes
// line up with the DOM order.
func Select(doc *goquery.Document, rule Rule, pageURL string) []Image {
	var out []Image

	doc.Find(rule.Selector).Each(func(i int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		out = append(out, Image{
			Index:  i,
			Source: resolve(pageURL, strings.TrimSpace(src)),
		})
	})

	return out
}

func resolve(pageURL, raw string) string {
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u == nil {
		return raw
	}

	if u.IsAbs() {
		return u.String()
	}

	base, err := url.Parse(pageURL)
	if err != nil || base == nil {
		return raw
	}

	return base.ResolveReference(u).String()
}
