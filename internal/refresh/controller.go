// Package refresh runs one aggregation at a time per view and publishes its
// result. The first run comes from Start; manual triggers are accepted only
// from Ready or Failed.
package refresh

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andresuchdata/retailsense/backend-go/internal/metrics"
	"github.com/rs/zerolog/log"
)

// State of a view's refresh lifecycle.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Func builds one complete model.
type Func[T any] func(ctx context.Context) (T, error)

// Snapshot is what consumers observe. Model is the last Ready model and is
// kept when a later run fails.
type Snapshot[T any] struct {
	State     State
	Model     T
	HasModel  bool
	LastError error
	UpdatedAt time.Time
}

// Controller owns the lifecycle of one view
type Controller[T any] struct {
	name    string
	run     Func[T]
	metrics *metrics.Metrics
	now     func() time.Time

	// mu serialises transitions; readers go through current only.
	mu      sync.Mutex
	current atomic.Pointer[Snapshot[T]]
	hooks   []func(T)
	running chan struct{}
	started sync.Once
}

// NewController creates an idle controller. m may be nil.
func NewController[T any](name string, run Func[T], m *metrics.Metrics) *Controller[T] {
	c := &Controller[T]{
		name:    name,
		run:     run,
		metrics: m,
		now:     time.Now,
	}
	c.current.Store(&Snapshot[T]{State: StateIdle})
	return c
}

func (c *Controller[T]) Name() string {
	return c.name
}

// OnPublish registers fn to run after every successful publish. Register
// hooks before Start.
func (c *Controller[T]) OnPublish(fn func(T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, fn)
}

// Start fires the initial run out of Idle. Only the first call has an
// effect; every call returns the done channel of the run in flight, or a
// closed channel when nothing is loading.
func (c *Controller[T]) Start(ctx context.Context) <-chan struct{} {
	c.started.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.begin(ctx)
	})
	return c.Done()
}

// Trigger starts a manual run from Ready or Failed. It is rejected while a run
// is loading and before Start. The run is detached from ctx's cancellation;
// done is closed once its result is published.
func (c *Controller[T]) Trigger(ctx context.Context) (done <-chan struct{}, accepted bool) {
	c.mu.Lock()
	state := c.current.Load().State
	if state == StateIdle || state == StateLoading {
		c.mu.Unlock()
		c.metrics.RefreshRejected(c.name)
		log.Debug().Str("view", c.name).Str("state", string(state)).Msg("Refresh ignored")
		return nil, false
	}
	ch := c.begin(ctx)
	c.mu.Unlock()
	return ch, true
}

// Done returns a channel closed when the run in flight publishes. It is
// already closed when nothing is loading.
func (c *Controller[T]) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current.Load().State == StateLoading {
		return c.running
	}
	closed := make(chan struct{})
	close(closed)
	return closed
}

// begin moves to Loading and launches a run. c.mu must be held.
func (c *Controller[T]) begin(ctx context.Context) <-chan struct{} {
	next := *c.current.Load()
	next.State = StateLoading
	c.current.Store(&next)

	ch := make(chan struct{})
	c.running = ch
	go c.execute(context.WithoutCancel(ctx), ch)
	return ch
}

func (c *Controller[T]) execute(ctx context.Context, done chan struct{}) {
	defer close(done)

	model, err := c.run(ctx)

	c.mu.Lock()
	next := *c.current.Load()
	next.UpdatedAt = c.now()
	if err != nil {
		next.State = StateFailed
		next.LastError = err
	} else {
		next.State = StateReady
		next.Model = model
		next.HasModel = true
		next.LastError = nil
	}
	c.current.Store(&next)
	hooks := slices.Clone(c.hooks)
	c.mu.Unlock()

	if err != nil {
		return
	}
	for _, hook := range hooks {
		hook(model)
	}
}

// Snapshot returns the latest published state without blocking.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	return *c.current.Load()
}
