package providers

import "strings"

// Rule maps pages whose URL contains Match to the CSS selector that finds
// their comic page images.
type Rule struct {
	Name     string
	Match    string
	Selector string
	Fallback bool
}

var Rules = []Rule{
	{Name: "pufeimanhua", Match: "pufeimanhua", Selector: `img.comicimg`},
	{Name: "kuaikanmanhua", Match: "kuaikanmanhua", Selector: `.comicDetails img[src*="kkmh.com/image"]`},
	{Name: "ac.qq", Match: "ac.qq", Selector: `img[src*="manhua_detail"]`},
}

// FallbackRule is used for unknown sites. It only matches images whose src
// literally starts with "jpg", which real pages rarely have.
var FallbackRule = Rule{Name: "fallback", Selector: `img[src^="jpg"]`, Fallback: true}

// Resolve picks the first rule whose substring occurs in pageURL. Unknown
// pages get FallbackRule and one warning on log.
func Resolve(pageURL string, log interface{ Warnf(string, ...any) }) Rule {
	for _, r := range Rules {
		if strings.Contains(pageURL, r.Match) {
			return r
		}
	}

	if log != nil {
		log.Warnf("could not determine scraping criteria for %s, falling back to %s", pageURL, FallbackRule.Selector)
	}

	return FallbackRule
}
