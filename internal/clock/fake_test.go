package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClock_TickerFiresPerInterval(t *testing.T) {
	c := Fake(epoch)
	tk := c.NewTicker(4 * time.Second)
	defer tk.Stop()

	c.Advance(3 * time.Second)
	select {
	case <-tk.C:
		t.Fatal("ticker fired before its interval")
	default:
	}

	c.Advance(time.Second)
	select {
	case got := <-tk.C:
		if want := epoch.Add(4 * time.Second); !got.Equal(want) {
			t.Errorf("tick time = %v, want %v", got, want)
		}
	default:
		t.Fatal("ticker did not fire at its interval")
	}
}

func TestFakeClock_AfterFuncAndStop(t *testing.T) {
	c := Fake(epoch)
	calls := 0
	c.AfterFunc(time.Minute, func() { calls++ })
	stopped := c.AfterFunc(time.Minute, func() { calls += 100 })

	if !stopped.Stop() {
		t.Error("Stop() = false on a pending timer, want true")
	}
	if stopped.Stop() {
		t.Error("second Stop() = true, want false")
	}

	c.Advance(time.Minute)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", c.Pending())
	}
	if c.Stopped() != 1 {
		t.Errorf("Stopped() = %d, want 1", c.Stopped())
	}
}

func TestFakeClock_WaitForTimers(t *testing.T) {
	c := Fake(epoch)
	done := make(chan struct{})
	go func() {
		tk := c.NewTicker(time.Second)
		<-tk.C
		tk.Stop()
		close(done)
	}()

	c.WaitForTimers(1)
	c.Advance(time.Second)
	<-done
	c.WaitForStopped(1)
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", c.Pending())
	}
}
