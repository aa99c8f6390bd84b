package sim

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTickInterval is how long the loop sleeps between ticks.
const DefaultTickInterval = 5 * time.Millisecond

// Tickable is the surface the engine drives; a room advances its own thermal
// state under its own guard.
type Tickable interface {
	Advance(dt float64)
}

// Engine runs one continuous simulation loop for a single room. Start is a
// no-op when already running; Stop is cooperative and blocks until the loop
// has observed the stop request and exited.
type Engine struct {
	target   Tickable
	interval time.Duration
	log      *zap.Logger
	onTick   func()

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

func NewEngine(target Tickable, interval time.Duration, log *zap.Logger) *Engine {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{target: target, interval: interval, log: log}
}

// OnTick installs a hook invoked after every tick, used for metrics. Must be
// called before Start.
func (e *Engine) OnTick(fn func()) {
	e.onTick = fn
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}
	e.running = true
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	go e.loop(e.stop, e.done)
	e.log.Debug("simulation started")
}

// Stop requests the loop to exit and blocks until it has. Stopping an engine
// that was never started is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	stop, done := e.stop, e.done
	e.mu.Unlock()

	close(stop)
	<-done

	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
	e.log.Debug("simulation stopped")
}

func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case <-time.After(e.interval):
		}
		now := time.Now()
		dt := now.Sub(last).Seconds()
		last = now

		e.target.Advance(dt)
		if e.onTick != nil {
			e.onTick()
		}
	}
}
