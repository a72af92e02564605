package providers

import (
	"errors"
	"fmt"

	"github.com/gobwas/glob"
)

var ErrPageNotIncluded = errors.New("page is not on the include list")

// DefaultInclude lists the reader pages the tool activates on.
var DefaultInclude = []string{
	"*://ac.qq.com/ComicView/index/*",
	"*://*.kuaikanmanhua.com/web/comic/*",
}

// Matcher is an allow-list of @include style URL globs, where * matches
// any run of characters.
type Matcher struct {
	patterns []string
	globs    []glob.Glob
}

func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("include pattern %q: %w", p, err)
		}

		m.patterns = append(m.patterns, p)
		m.globs = append(m.globs, g)
	}

	return m, nil
}

func (m *Matcher) Match(pageURL string) bool {
	for _, g := range m.globs {
		if g.Match(pageURL) {
			return true
		}
	}

	return false
}

// Check returns ErrPageNotIncluded when no pattern accepts pageURL.
func (m *Matcher) Check(pageURL string) error {
	if m.Match(pageURL) {
		return nil
	}

	return fmt.Errorf("%w: %s (patterns: %v)", ErrPageNotIncluded, pageURL, m.patterns)
}
