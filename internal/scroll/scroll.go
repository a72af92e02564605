// Package scroll keeps scrolling a page so lazily loaded images get fetched.
package scroll

import (
	"context"
	"sync"
	"time"

	"github.com/brogergvhs/mandl/internal/schedule"
	"github.com/brogergvhs/mandl/internal/settings"
)

// MinInterval is the shortest tick, matching the browser's timer clamp.
const MinInterval = 4 * time.Millisecond

type Target interface {
	ScrollBy(ctx context.Context, pixels int) error
}

type Logger interface {
	Debugf(string, ...any)
	Infof(string, ...any)
}

// Scroller is one running auto-scroll. It only ends on Stop or when the
// context passed to Start is done.
type Scroller struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Start scrolls target down by the configured pixels every configured
// interval. Calling it again starts another, independent scroller.
func Start(ctx context.Context, target Target, s settings.Settings, clock schedule.Clock, log Logger) *Scroller {
	interval := s.ScrollInterval()
	if interval < MinInterval {
		interval = MinInterval
	}

	log.Infof("Scroll with configurations...")
	log.Infof("AutoScroll pixels: %d", s.ScrollPixels)
	log.Infof("AutoScroll MS interval: %v", interval)

	sc := &Scroller{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	ticker := clock.NewTicker(interval)
	go func() {
		defer close(sc.done)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-sc.stop:
				return
			case <-ticker.C():
				if err := target.ScrollBy(ctx, s.ScrollPixels); err != nil {
					log.Debugf("scroll failed: %v", err)
				}
			}
		}
	}()

	return sc
}

func (sc *Scroller) Stop() {
	sc.once.Do(func() { close(sc.stop) })
	<-sc.done
}

// Done is closed once the scroller has exited.
func (sc *Scroller) Done() <-chan struct{} {
	return sc.done
}
