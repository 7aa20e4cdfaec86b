package progress

import (
	"testing"
	"time"
)

func TestFlagSetIsSetReset(t *testing.T) {
	var f Flag
	if f.IsSet() {
		t.Fatal("expected fresh flag to be unset")
	}
	f.Set()
	if !f.IsSet() {
		t.Fatal("expected flag to be set after Set")
	}
	f.Reset()
	if f.IsSet() {
		t.Fatal("expected flag to be unset after Reset")
	}
}

func TestThrottleAllowsFirstCallImmediately(t *testing.T) {
	th := NewThrottle(50 * time.Millisecond)
	if !th.Allow() {
		t.Fatal("expected the first Allow call to succeed")
	}
}

func TestThrottleSuppressesBurstsWithinInterval(t *testing.T) {
	th := NewThrottle(50 * time.Millisecond)
	th.Allow()
	if th.Allow() {
		t.Fatal("expected a call immediately after the first to be throttled")
	}
}

func TestThrottleAllowsAgainAfterInterval(t *testing.T) {
	th := NewThrottle(10 * time.Millisecond)
	th.Allow()
	time.Sleep(15 * time.Millisecond)
	if !th.Allow() {
		t.Fatal("expected Allow to succeed again after the interval elapsed")
	}
}

func TestZeroIntervalThrottleNeverSuppresses(t *testing.T) {
	th := NewThrottle(0)
	for i := 0; i < 5; i++ {
		if !th.Allow() {
			t.Fatal("expected an unthrottled Throttle to always allow")
		}
	}
}

func TestHubBroadcastDropsWhenClientBufferFull(t *testing.T) {
	h := NewHub()
	c := &client{out: make(chan interface{}, 1)}
	h.clients[c] = struct{}{}

	h.Broadcast(BacktestEvent{Percent: 1})
	h.Broadcast(BacktestEvent{Percent: 2}) // buffer full, should drop silently

	if len(c.out) != 1 {
		t.Fatalf("expected exactly 1 buffered event, got %d", len(c.out))
	}
}
