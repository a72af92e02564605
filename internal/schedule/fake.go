package schedule

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced Clock. Timers fire synchronously inside
// Advance, in deadline order. Ticks are delivered with a blocking send, so a
// consumer sees every period that elapses.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	timers  []*fakeTimer
	tickers []*fakeTicker
}

func NewFake() *Fake {
	return &Fake{now: time.Unix(0, 0)}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.now
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	t := &fakeTimer{clock: f, at: f.now.Add(d), seq: f.seq, fn: fn}
	f.timers = append(f.timers, t)

	return t
}

func (f *Fake) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("schedule: non-positive interval for NewTicker")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	t := &fakeTicker{
		period: d,
		next:   f.now.Add(d),
		c:      make(chan time.Time),
		done:   make(chan struct{}),
	}
	f.tickers = append(f.tickers, t)

	return t
}

// Pending is the number of timers that have neither fired nor been stopped.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.timers)
}

// Advance moves the clock forward by d, firing every timer and tick that
// falls due on the way.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		t := f.nextTimerLocked(target)
		tk := f.nextTickerLocked(target)

		switch {
		case t != nil && (tk == nil || !tk.next.Before(t.at)):
			f.now = t.at
			f.removeTimerLocked(t)
			f.mu.Unlock()
			t.fn()

		case tk != nil:
			f.now = tk.next
			tk.next = tk.next.Add(tk.period)
			now := f.now
			f.mu.Unlock()
			select {
			case tk.c <- now:
			case <-tk.done:
			}

		default:
			f.now = target
			f.mu.Unlock()
			return
		}
	}
}

func (f *Fake) nextTimerLocked(limit time.Time) *fakeTimer {
	var best *fakeTimer
	for _, t := range f.timers {
		if t.at.After(limit) {
			continue
		}
		if best == nil || t.at.Before(best.at) || (t.at.Equal(best.at) && t.seq < best.seq) {
			best = t
		}
	}

	return best
}

func (f *Fake) nextTickerLocked(limit time.Time) *fakeTicker {
	live := f.tickers[:0]
	for _, tk := range f.tickers {
		if !tk.stopped() {
			live = append(live, tk)
		}
	}
	f.tickers = live

	sort.SliceStable(live, func(i, j int) bool { return live[i].next.Before(live[j].next) })
	if len(live) == 0 || live[0].next.After(limit) {
		return nil
	}

	return live[0]
}

func (f *Fake) removeTimerLocked(t *fakeTimer) bool {
	for i, x := range f.timers {
		if x == t {
			f.timers = append(f.timers[:i], f.timers[i+1:]...)
			return true
		}
	}

	return false
}

type fakeTimer struct {
	clock *Fake
	at    time.Time
	seq   int
	fn    func()
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	return t.clock.removeTimerLocked(t)
}

type fakeTicker struct {
	period time.Duration
	next   time.Time
	c      chan time.Time
	done   chan struct{}
	once   sync.Once
}

func (t *fakeTicker) C() <-chan time.Time {
	return t.c
}

func (t *fakeTicker) Stop() {
	t.once.Do(func() { close(t.done) })
}

func (t *fakeTicker) stopped() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
