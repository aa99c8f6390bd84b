package sim

import (
	"sync/atomic"
	"testing"
	"time"
)

type countingTickable struct {
	ticks  atomic.Int64
	lastDt atomic.Value
}

func (c *countingTickable) Advance(dt float64) {
	c.ticks.Add(1)
	c.lastDt.Store(dt)
}

func TestEngineTicksUntilStopped(t *testing.T) {
	target := &countingTickable{}
	e := NewEngine(target, time.Millisecond, nil)

	e.Start()
	time.Sleep(30 * time.Millisecond)
	e.Stop()

	ticked := target.ticks.Load()
	if ticked == 0 {
		t.Fatal("engine never ticked")
	}
	if dt := target.lastDt.Load().(float64); dt <= 0 {
		t.Fatalf("expected positive dt, got %f", dt)
	}

	// Stop blocks until the loop exits, so the count must not move anymore.
	time.Sleep(10 * time.Millisecond)
	if after := target.ticks.Load(); after != ticked {
		t.Fatalf("engine ticked after Stop: %d -> %d", ticked, after)
	}
}

func TestEngineStartIsIdempotent(t *testing.T) {
	target := &countingTickable{}
	e := NewEngine(target, time.Millisecond, nil)

	e.Start()
	e.Start()
	if !e.Running() {
		t.Fatal("engine should be running")
	}
	e.Stop()
	if e.Running() {
		t.Fatal("engine should have stopped")
	}
}

func TestEngineStopWithoutStartIsNoop(t *testing.T) {
	e := NewEngine(&countingTickable{}, time.Millisecond, nil)
	e.Stop()
	e.Stop()
}

func TestEngineRestarts(t *testing.T) {
	target := &countingTickable{}
	e := NewEngine(target, time.Millisecond, nil)

	e.Start()
	time.Sleep(10 * time.Millisecond)
	e.Stop()
	first := target.ticks.Load()

	e.Start()
	time.Sleep(10 * time.Millisecond)
	e.Stop()

	if target.ticks.Load() <= first {
		t.Fatal("engine did not tick after restart")
	}
}
