package downloader

import (
	"strconv"
	"strings"
	"time"

	"github.com/brogergvhs/mandl/internal/providers"
	"github.com/brogergvhs/mandl/internal/settings"
)

// PadWidth is the zero-padded width of the page number in file names.
const PadWidth = 3

// Entry is one scheduled action of a download batch.
type Entry struct {
	Index    int
	Source   string
	Delay    time.Duration
	Skip     bool
	Filename string
}

// BuildPlan lays out the whole batch up front: image i fires at
// delay*(i+1), whatever happens to the downloads before it.
func BuildPlan(images []providers.Image, s settings.Settings) []Entry {
	base := s.DownloadDelay()
	plan := make([]Entry, len(images))

	for i, img := range images {
		plan[i] = Entry{
			Index:    i,
			Source:   img.Source,
			Delay:    base * time.Duration(i+1),
			Skip:     i < s.SkipCount,
			Filename: Filename(s.FilePrefix, i, s.FileExtension),
		}
	}

	return plan
}

func Filename(prefix string, index int, ext string) string {
	return prefix + Pad(index, PadWidth) + ext
}

// Pad left-pads n with zeros to width. Wider numbers are left as they are.
func Pad(n, width int) string {
	s := strconv.Itoa(n)
	if len(s) >= width {
		return s
	}

	return strings.Repeat("0", width-len(s)) + s
}
