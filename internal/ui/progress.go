package ui

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/brogergvhs/mandl/internal/util"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type MPBProgressManager struct {
	p *mpb.Progress
}

func NewProgressManager(out io.Writer) *MPBProgressManager {
	p := mpb.New(
		mpb.WithWidth(40),
		mpb.WithOutput(out),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	return &MPBProgressManager{p: p}
}

func (pm *MPBProgressManager) Close() {
	pm.p.Wait()
}

// Register adds a bar for one file transfer. A nil manager hands out nil
// handles, whose methods do nothing.
func (pm *MPBProgressManager) Register(name string) *ProgressHandle {
	if pm == nil {
		return nil
	}

	h := &ProgressHandle{
		pm:   pm,
		name: name,
	}
	h.initBar()
	return h
}

type ProgressHandle struct {
	pm   *MPBProgressManager
	name string
	bar  *mpb.Bar

	bytes int64

	start   time.Time
	elapsed atomic.Int64

	final atomic.Bool
}

func (h *ProgressHandle) initBar() {
	h.start = time.Now()

	h.bar = h.pm.p.New(
		0,
		mpb.BarStyle().Rbound("]"),

		mpb.PrependDecorators(
			decor.Name(h.name+"  "),
		),

		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.Any(func(_ decor.Statistics) string {
				return " | " + util.Human(atomic.LoadInt64(&h.bytes))
			}),

			decor.Any(func(_ decor.Statistics) string {
				if h.final.Load() {
					return fmt.Sprintf(" | %dms", h.elapsed.Load())
				}

				return fmt.Sprintf(" | %dms", time.Since(h.start).Milliseconds())
			}),
		),
	)
}

// SetTotal sets the expected size; unknown sizes (<= 0) leave the bar open
// until MarkDone.
func (h *ProgressHandle) SetTotal(total int64) {
	if h == nil || h.final.Load() || total <= 0 {
		return
	}

	h.bar.SetTotal(total, false)
}

func (h *ProgressHandle) Update(bytes int64) {
	if h == nil || h.final.Load() {
		return
	}

	atomic.StoreInt64(&h.bytes, bytes)
	h.bar.SetCurrent(bytes)
}

func (h *ProgressHandle) MarkDone() {
	if h == nil || h.final.Swap(true) {
		return
	}

	h.elapsed.Store(time.Since(h.start).Milliseconds())
	h.bar.SetCurrent(atomic.LoadInt64(&h.bytes))
	h.bar.SetTotal(-1, true)
}

// Abort removes the bar of a failed transfer.
func (h *ProgressHandle) Abort() {
	if h == nil || h.final.Swap(true) {
		return
	}

	h.bar.Abort(true)
}
