package util

import (
	"testing"
	"time"
)

func TestManualClockNow(t *testing.T) {
	start := time.Unix(1000, 0)
	c := NewManualClock(start)

	if !c.Now().Equal(start) {
		t.Errorf("Now() = %v, want %v", c.Now(), start)
	}

	c.Advance(70 * time.Second)
	if got := c.Now().Unix(); got != 1070 {
		t.Errorf("Now().Unix() = %d, want 1070", got)
	}

	c.Set(time.Unix(5, 0))
	if got := c.Now().Unix(); got != 5 {
		t.Errorf("Now().Unix() = %d, want 5", got)
	}
}

func TestManualTickerFires(t *testing.T) {
	c := NewManualClock(time.Unix(0, 0))
	tk := c.NewTicker(10 * time.Second)
	defer tk.Stop()

	c.Advance(9 * time.Second)
	select {
	case <-tk.C():
		t.Fatal("ticker fired before its period elapsed")
	default:
	}

	c.Advance(time.Second)
	select {
	case tick := <-tk.C():
		if tick.Unix() != 10 {
			t.Errorf("tick = %d, want 10", tick.Unix())
		}
	default:
		t.Fatal("ticker did not fire after its period elapsed")
	}
}

func TestManualTickerDropsUndrainedTicks(t *testing.T) {
	c := NewManualClock(time.Unix(0, 0))
	tk := c.NewTicker(time.Second)
	defer tk.Stop()

	// five periods elapse but the channel only buffers one tick
	c.Advance(5 * time.Second)

	<-tk.C()
	select {
	case <-tk.C():
		t.Fatal("expected the remaining ticks to be dropped")
	default:
	}
}

func TestManualTickerStop(t *testing.T) {
	c := NewManualClock(time.Unix(0, 0))
	tk := c.NewTicker(time.Second)

	if !c.WaitForTickers(1, time.Second) {
		t.Fatal("ticker was not registered")
	}

	tk.Stop()
	if n := c.Tickers(); n != 0 {
		t.Errorf("Tickers() = %d after Stop, want 0", n)
	}

	c.Advance(10 * time.Second)
	select {
	case <-tk.C():
		t.Fatal("stopped ticker fired")
	default:
	}
}
