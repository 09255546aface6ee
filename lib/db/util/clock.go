package util

import (
	"sync"
	"time"
)

// --------------------------------------------------------------------------
// Clock abstraction
// --------------------------------------------------------------------------

// Clock provides the current time and periodic tickers.
// The store, the persistence loops and the dispatcher take a Clock so tests can
// drive time explicitly instead of sleeping.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// NewTicker returns a ticker delivering ticks every d.
	NewTicker(d time.Duration) Ticker
}

// Ticker is the subset of time.Ticker used by the background loops.
type Ticker interface {
	// C returns the channel on which the ticks are delivered.
	C() <-chan time.Time
	// Stop turns off the ticker. No more ticks are sent after Stop returns.
	Stop()
}

// --------------------------------------------------------------------------
// Real clock
// --------------------------------------------------------------------------

// RealClock is a Clock backed by the time package.
type RealClock struct{}

// NewRealClock returns the wall clock.
func NewRealClock() Clock {
	return RealClock{}
}

func (RealClock) Now() time.Time {
	return time.Now()
}

func (RealClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// --------------------------------------------------------------------------
// Manual clock (for tests)
// --------------------------------------------------------------------------

// ManualClock is a Clock whose time only moves when Advance or Set is called.
// Tickers created from it fire during Advance for every period that elapsed.
// Like time.Ticker, a ticker that is not drained drops ticks instead of blocking.
//
// Thread-safety: All methods are safe for concurrent use.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

// NewManualClock creates a manual clock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (m *ManualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *ManualClock) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("non-positive interval for NewTicker")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t := &manualTicker{
		clock:  m,
		c:      make(chan time.Time, 1),
		period: d,
		next:   m.now.Add(d),
	}
	m.tickers = append(m.tickers, t)
	return t
}

// Set moves the clock to t without firing any ticker.
func (m *ManualClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
	for _, tk := range m.tickers {
		tk.next = t.Add(tk.period)
	}
}

// Advance moves the clock forward by d and fires every ticker whose period elapsed.
func (m *ManualClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.now = m.now.Add(d)
	for _, t := range m.tickers {
		for !t.next.After(m.now) {
			select {
			case t.c <- t.next:
			default:
			}
			t.next = t.next.Add(t.period)
		}
	}
}

// Tickers returns the number of active (not stopped) tickers.
func (m *ManualClock) Tickers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tickers)
}

// WaitForTickers blocks until at least n tickers are active or the timeout elapses.
// It reports whether the tickers were registered in time.
func (m *ManualClock) WaitForTickers(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if m.Tickers() >= n {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return m.Tickers() >= n
}

type manualTicker struct {
	clock  *ManualClock
	c      chan time.Time
	period time.Duration
	next   time.Time
}

func (t *manualTicker) C() <-chan time.Time { return t.c }

func (t *manualTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	for i, tk := range t.clock.tickers {
		if tk == t {
			t.clock.tickers = append(t.clock.tickers[:i], t.clock.tickers[i+1:]...)
			return
		}
	}
}
