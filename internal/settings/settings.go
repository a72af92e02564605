package settings

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
)

var ErrUnknownKey = errors.New("unknown setting")

const (
	KeyFilePrefix     = "MANDL_FILE_NAME_PREFIX"
	KeyFileExtension  = "MANDL_FILE_EXTENSION"
	KeySkipCount      = "MANDL_NUM_OF_IMAGES_TO_SKIP"
	KeyDownloadDelay  = "MANDL_DOWNLOAD_ITERATION_DELAY"
	KeyScrollPixels   = "MANDL_AUTOSCROLL_PIXELS"
	KeyScrollInterval = "MANDL_AUTOSCROLL_MS_INTERVAL"
)

// Settings is the user-tunable configuration passed by value to the drivers.
type Settings struct {
	FilePrefix       string
	FileExtension    string
	SkipCount        int
	DownloadDelayMs  float64
	ScrollPixels     int
	ScrollIntervalMs float64
}

func (s Settings) DownloadDelay() time.Duration {
	return msToDuration(s.DownloadDelayMs)
}

func (s Settings) ScrollInterval() time.Duration {
	return msToDuration(s.ScrollIntervalMs)
}

func msToDuration(ms float64) time.Duration {
	if ms <= 0 {
		return 0
	}

	return time.Duration(ms * float64(time.Millisecond))
}

// Field describes one persisted setting and how its raw text is applied.
type Field struct {
	Key     string
	Alias   string
	Label   string
	Default string
	apply   func(s *Settings, raw string) bool
	format  func(s Settings) string
}

var Fields = []Field{
	{
		Key:     KeyFilePrefix,
		Alias:   "prefix",
		Label:   "File Name Prefix:",
		Default: "image",
		apply:   func(s *Settings, raw string) bool { s.FilePrefix = raw; return true },
		format:  func(s Settings) string { return s.FilePrefix },
	},
	{
		Key:     KeyFileExtension,
		Alias:   "ext",
		Label:   "File Extension:",
		Default: ".jpg",
		apply:   func(s *Settings, raw string) bool { s.FileExtension = raw; return true },
		format:  func(s Settings) string { return s.FileExtension },
	},
	{
		Key:     KeySkipCount,
		Alias:   "skip",
		Label:   "Skip First N Pages:",
		Default: "0",
		apply: func(s *Settings, raw string) bool {
			// index < skip, compared the way a browser compares against a fraction
			n, ok := coerce(raw)
			s.SkipCount = toInt(math.Ceil(n))
			return ok
		},
		format: func(s Settings) string { return strconv.Itoa(s.SkipCount) },
	},
	{
		Key:     KeyDownloadDelay,
		Alias:   "delay",
		Label:   "MS between file DLs:",
		Default: "200",
		apply: func(s *Settings, raw string) bool {
			n, ok := coerce(raw)
			s.DownloadDelayMs = n
			return ok
		},
		format: func(s Settings) string { return formatNumber(s.DownloadDelayMs) },
	},
	{
		Key:     KeyScrollPixels,
		Alias:   "scroll-pixels",
		Label:   "Scroll Pixels:",
		Default: "1000",
		apply: func(s *Settings, raw string) bool {
			n, ok := coerce(raw)
			s.ScrollPixels = toInt(math.Round(n))
			return ok
		},
		format: func(s Settings) string { return strconv.Itoa(s.ScrollPixels) },
	},
	{
		Key:     KeyScrollInterval,
		Alias:   "scroll-interval",
		Label:   "Scroll MS Delay:",
		Default: "200",
		apply: func(s *Settings, raw string) bool {
			n, ok := coerce(raw)
			s.ScrollIntervalMs = n
			return ok
		},
		format: func(s Settings) string { return formatNumber(s.ScrollIntervalMs) },
	},
}

// Lookup finds a field by persisted key or CLI alias.
func Lookup(name string) (Field, error) {
	for _, f := range Fields {
		if strings.EqualFold(f.Key, name) || f.Alias == name {
			return f, nil
		}
	}

	return Field{}, fmt.Errorf("%w: %q", ErrUnknownKey, name)
}

// Value formats the field's current value from s.
func (f Field) Value(s Settings) string {
	return f.format(s)
}

func Defaults() Settings {
	var s Settings
	for _, f := range Fields {
		f.apply(&s, f.Default)
	}

	return s
}

// coerce turns user text into a number without validating it. Blank is 0;
// anything unparsable is 0 and reported as not numeric.
func coerce(raw string) (float64, bool) {
	t := strings.TrimSpace(raw)
	if t == "" {
		return 0, true
	}

	n, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}

	return n, true
}

// toInt saturates at the int range so huge input keeps its sign.
func toInt(n float64) int {
	switch {
	case n >= math.MaxInt:
		return math.MaxInt
	case n <= math.MinInt:
		return math.MinInt
	}

	return int(n)
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Live is the in-memory Settings bound to a Store. Edits are applied and
// persisted immediately.
type Live struct {
	mu    sync.Mutex
	store *Store
	cur   Settings
	raw   map[string]string
	log   interface {
		Debugf(string, ...any)
	}
}

func Load(store *Store, log interface{ Debugf(string, ...any) }) *Live {
	l := &Live{
		store: store,
		raw:   make(map[string]string, len(Fields)),
		log:   log,
	}

	for _, f := range Fields {
		l.applyLocked(f, store.Get(f.Key, f.Default))
	}

	return l
}

func (l *Live) Snapshot() Settings {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.cur
}

// Raw returns the text last stored for key, exactly as typed.
func (l *Live) Raw(key string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.raw[key]
}

func (l *Live) Set(key, raw string) error {
	f, err := Lookup(key)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.applyLocked(f, raw)
	l.mu.Unlock()

	return l.store.Set(f.Key, raw)
}

func (l *Live) Reset() error {
	if err := l.store.Clear(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, f := range Fields {
		l.applyLocked(f, f.Default)
	}

	return nil
}

func (l *Live) applyLocked(f Field, raw string) {
	l.raw[f.Key] = raw
	if !f.apply(&l.cur, raw) && l.log != nil {
		l.log.Debugf("%s value %q is not a number, treating it as 0", f.Key, raw)
	}
}
