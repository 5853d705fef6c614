package geocode

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounceInterval is the pause after the last keystroke before a
// lookup is issued.
const DefaultDebounceInterval = 300 * time.Millisecond

// Debouncer runs only the most recent of a burst of calls, once the burst
// has been quiet for the interval. A newer Trigger stops the pending timer
// and cancels the context of a lookup that has already started.
type Debouncer struct {
	interval time.Duration

	mu         sync.Mutex
	timer      *time.Timer
	cancel     context.CancelFunc
	generation uint64
}

// NewDebouncer returns a Debouncer. A non-positive interval selects
// DefaultDebounceInterval.
func NewDebouncer(interval time.Duration) *Debouncer {
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}
	return &Debouncer{interval: interval}
}

// Trigger schedules fn. fn receives a context derived from ctx that is
// cancelled when a later Trigger or Stop supersedes it.
func (d *Debouncer) Trigger(ctx context.Context, fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.generation++
	gen := d.generation
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		current := d.generation == gen
		d.mu.Unlock()
		if !current {
			return
		}
		fn(runCtx)
	})
}

// Stop drops any pending call and cancels one in progress.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.generation++
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
