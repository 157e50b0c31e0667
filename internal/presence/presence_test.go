package presence

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/otpgate/otpgate/internal/timers"
)

type countingTypist struct {
	calls atomic.Int32
	chat  atomic.Int64
	err   error
}

func (c *countingTypist) SendTyping(chatID int64) error {
	c.calls.Add(1)
	c.chat.Store(chatID)
	return c.err
}

func TestStartTicksAndStop(t *testing.T) {
	t.Parallel()
	typist := &countingTypist{}
	loops := NewLoops(slog.Default(), timers.NewTickers(slog.Default()), typist, 5*time.Millisecond)

	loops.Start("42", 42)
	time.Sleep(60 * time.Millisecond)
	loops.Stop("42")

	if typist.calls.Load() < 2 {
		t.Errorf("expected repeated typing signals, got %d", typist.calls.Load())
	}
	if typist.chat.Load() != 42 {
		t.Errorf("typing sent to wrong chat: %d", typist.chat.Load())
	}

	settled := typist.calls.Load()
	time.Sleep(40 * time.Millisecond)
	if got := typist.calls.Load(); got > settled+1 {
		t.Errorf("loop kept ticking after Stop: %d -> %d", settled, got)
	}
}

func TestDoubleStartKeepsSingleLoop(t *testing.T) {
	t.Parallel()
	typist := &countingTypist{}
	loops := NewLoops(slog.Default(), timers.NewTickers(slog.Default()), typist, 10*time.Millisecond)

	loops.Start("42", 42)
	loops.Start("42", 42)
	time.Sleep(105 * time.Millisecond)
	loops.Stop("42")

	// A duplicated loop would roughly double the tick count.
	if got := typist.calls.Load(); got > 13 {
		t.Errorf("tick count suggests duplicate loops: %d", got)
	}
}

func TestStopWithoutStartIsNoop(t *testing.T) {
	t.Parallel()
	loops := NewLoops(slog.Default(), timers.NewTickers(slog.Default()), &countingTypist{}, time.Second)
	loops.Stop("never-started")
}

func TestFailedTickDoesNotStopLoop(t *testing.T) {
	t.Parallel()
	typist := &countingTypist{err: errors.New("network down")}
	loops := NewLoops(slog.Default(), timers.NewTickers(slog.Default()), typist, 5*time.Millisecond)

	loops.Start("42", 42)
	time.Sleep(60 * time.Millisecond)
	loops.Stop("42")

	if typist.calls.Load() < 2 {
		t.Errorf("expected the loop to keep ticking past failures, got %d", typist.calls.Load())
	}
}
