package layout

import (
	"context"
	"sync"
)

// Event is a layout lifecycle signal.
type Event int

const (
	EventStart Event = iota // the algorithm was invoked
	EventReady              // positions are computed
	EventStop               // the run finished; fires exactly once
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "layoutstart"
	case EventReady:
		return "layoutready"
	case EventStop:
		return "layoutstop"
	}
	return "unknown"
}

// Listener receives lifecycle events of a run.
type Listener func(ev Event, r *Run)

type listener struct {
	fn   Listener
	once bool
}

// Bus delivers the lifecycle events of every non-suppressed run to graph-level
// listeners. A nil *Bus drops everything.
type Bus struct {
	mu        sync.RWMutex
	listeners map[Event][]Listener
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[Event][]Listener)}
}

// On registers fn for ev.
func (b *Bus) On(ev Event, fn Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[ev] = append(b.listeners[ev], fn)
}

func (b *Bus) emit(ev Event, r *Run) {
	if b == nil {
		return
	}
	b.mu.RLock()
	fns := append([]Listener(nil), b.listeners[ev]...)
	b.mu.RUnlock()
	for _, fn := range fns {
		fn(ev, r)
	}
}

// Run is the handle of one layout invocation. It resolves exactly once, when
// the algorithm calls Stop. Stop listeners run before Done is closed, so a
// caller that waits on Done observes their effects.
type Run struct {
	algo   Algorithm
	input  *Input
	params Params
	bus    *Bus

	mu         sync.Mutex
	listeners  map[Event][]listener
	suppressed bool
	started    bool
	stopped    bool

	stopOnce sync.Once
	done     chan struct{}
	result   Result
	err      error
}

// NewRun prepares a run of algo over in. Nothing happens until Start.
func NewRun(algo Algorithm, in *Input, p Params, bus *Bus) *Run {
	if in == nil {
		in = &Input{}
	}
	return &Run{
		algo:      algo,
		input:     in,
		params:    p,
		bus:       bus,
		listeners: make(map[Event][]listener),
		done:      make(chan struct{}),
	}
}

// Algorithm returns the name of the algorithm being run.
func (r *Run) Algorithm() string { return r.algo.Name() }

// Input returns the snapshot the run lays out.
func (r *Run) Input() *Input { return r.input }

// On registers fn for every occurrence of ev on this run.
func (r *Run) On(ev Event, fn Listener) *Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners[ev] = append(r.listeners[ev], listener{fn: fn})
	return r
}

// One registers fn for the next occurrence of ev only.
func (r *Run) One(ev Event, fn Listener) *Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners[ev] = append(r.listeners[ev], listener{fn: fn, once: true})
	return r
}

// Suppress keeps this run's events from reaching the bus. Listeners
// registered on the run itself still fire.
func (r *Run) Suppress() *Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suppressed = true
	return r
}

// Start invokes the algorithm. Calling Start more than once has no effect.
func (r *Run) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()

	r.emit(EventStart)
	r.algo.Run(ctx, r.input, r.params, r)
}

// Ready signals that positions are computed.
func (r *Run) Ready() { r.emit(EventReady) }

// Stop resolves the run with its result. Only the first call has an effect.
func (r *Run) Stop(res Result, err error) {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.result, r.err = res, err
		r.stopped = true
		r.mu.Unlock()
		r.emit(EventStop)
		close(r.done)
	})
}

// Done is closed once the run stopped and its stop listeners returned.
func (r *Run) Done() <-chan struct{} { return r.done }

// Result returns the outcome of a stopped run. It is safe to call from a
// stop listener.
func (r *Run) Result() (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.stopped {
		return nil, nil
	}
	return r.result, r.err
}

// Wait blocks until the run stops or ctx is done.
func (r *Run) Wait(ctx context.Context) (Result, error) {
	select {
	case <-r.done:
		return r.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Run) emit(ev Event) {
	r.mu.Lock()
	var fns []Listener
	kept := r.listeners[ev][:0]
	for _, l := range r.listeners[ev] {
		fns = append(fns, l.fn)
		if !l.once {
			kept = append(kept, l)
		}
	}
	r.listeners[ev] = kept
	suppressed := r.suppressed
	r.mu.Unlock()

	for _, fn := range fns {
		fn(ev, r)
	}
	if !suppressed {
		r.bus.emit(ev, r)
	}
}
