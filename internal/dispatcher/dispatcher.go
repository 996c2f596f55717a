package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/kunalpal97/ar-indoor-nav/internal/dispatcher"

// ErrStopped is returned for work submitted after Stop.
var ErrStopped = errors.New("dispatcher stopped")

// Event represents an input for the loop: a touch, a tracking update, a control command.
type Event struct {
	Command   string
	Payload   any
	Timestamp time.Time
}

// HandlerFunc processes an event and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*handlerConfig)

type handlerConfig struct {
	logged bool
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *handlerConfig) {
		c.logged = true
	}
}

// Config sizes the loop queue.
type Config struct {
	QueueSize int
	// Blocking makes Send wait for queue space instead of dropping.
	Blocking bool
}

const defaultQueueSize = 256

// Dispatcher runs every handler and every posted function on a single goroutine,
// so state owned by the loop is never touched from two goroutines at once.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   Logger
	blocking bool

	queue   chan func()
	quit    chan struct{}
	drain   chan struct{}
	stopped chan struct{}

	mu       sync.RWMutex
	closed   bool
	started  bool
	stopOnce sync.Once

	// OTEL metrics
	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter
}

// New creates a new Dispatcher with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger, cfg Config) (*Dispatcher, error) {
	size := cfg.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}

	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
		blocking: cfg.Blocking,
		queue:    make(chan func(), size),
		quit:     make(chan struct{}),
		drain:    make(chan struct{}),
		stopped:  make(chan struct{}),
	}

	// global provider, no-op until otel is set up
	m := otel.Meter(meterName)

	var err error

	d.queueSize, err = m.Int64ObservableGauge(
		"loop.queue.size",
		metric.WithDescription("Current number of jobs waiting for the loop"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(d.queueSize, int64(len(d.queue)))
			return nil
		},
		d.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	d.processed, err = m.Int64Counter(
		"loop.events.processed",
		metric.WithDescription("Total events processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.dropped, err = m.Int64Counter(
		"loop.events.dropped",
		metric.WithDescription("Total events dropped due to full queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return d, nil
}

// Register adds a handler for the given command with optional configuration.
// Handlers must be registered before Start.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	cfg := &handlerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h

	if cfg.logged {
		handler = d.withLogging(command, handler)
	}

	d.handlers[command] = handler
}

// HasHandler returns true if a handler is registered for the command.
func (d *Dispatcher) HasHandler(command string) bool {
	_, ok := d.handlers[command]
	return ok
}

// Start launches the loop goroutine. Calling it twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	go d.run()
}

func (d *Dispatcher) run() {
	defer close(d.stopped)
	for {
		select {
		case job := <-d.queue:
			job()
		case <-d.drain:
			for {
				select {
				case job := <-d.queue:
					job()
				default:
					return
				}
			}
		}
	}
}

// Dispatch runs the event's handler on the loop and waits for its result.
// It must not be called from the loop itself.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	h, ok := d.handlers[e.Command]
	if !ok {
		return nil, fmt.Errorf("unknown command: %s", e.Command)
	}

	type result struct {
		value any
		err   error
	}
	out := make(chan result, 1)
	cmdAttr := attribute.String("command", e.Command)

	err := d.enqueue(func() {
		v, err := h(e)
		d.processed.Add(context.Background(), 1, metric.WithAttributes(cmdAttr))
		out <- result{v, err}
	}, true)
	if err != nil {
		return nil, err
	}

	select {
	case r := <-out:
		return r.value, r.err
	case <-d.stopped:
		// the job may still have run during the final drain
		select {
		case r := <-out:
			return r.value, r.err
		default:
			return nil, ErrStopped
		}
	}
}

// Send queues the event without waiting. When the queue is full the event is dropped
// unless the dispatcher was configured as blocking.
func (d *Dispatcher) Send(e Event) error {
	h, ok := d.handlers[e.Command]
	if !ok {
		return fmt.Errorf("unknown command: %s", e.Command)
	}
	cmdAttr := attribute.String("command", e.Command)

	err := d.enqueue(func() {
		if _, err := h(e); err != nil {
			d.logger.Debug("queued event failed", "command", e.Command, "error", err)
		}
		d.processed.Add(context.Background(), 1, metric.WithAttributes(cmdAttr))
	}, d.blocking)
	if errors.Is(err, errQueueFull) {
		d.dropped.Add(context.Background(), 1, metric.WithAttributes(cmdAttr))
		return fmt.Errorf("queue full: %s", e.Command)
	}
	return err
}

// Post schedules fn on the loop. It waits for queue space and only fails once the
// dispatcher is stopping.
func (d *Dispatcher) Post(fn func()) error {
	return d.enqueue(fn, true)
}

var errQueueFull = errors.New("queue full")

func (d *Dispatcher) enqueue(job func(), wait bool) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrStopped
	}

	if !wait {
		select {
		case d.queue <- job:
			return nil
		default:
			return errQueueFull
		}
	}

	select {
	case d.queue <- job:
		return nil
	case <-d.quit:
		return ErrStopped
	}
}

// Stop rejects further work, runs whatever is already queued and waits for the loop
// to exit. If the loop was never started, queued work is discarded.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.quit)

		d.mu.Lock()
		d.closed = true
		started := d.started
		d.mu.Unlock()

		if !started {
			close(d.stopped)
			return
		}
		close(d.drain)
		<-d.stopped
	})
}

// Pending returns the number of queued jobs.
func (d *Dispatcher) Pending() int {
	return len(d.queue)
}

func (d *Dispatcher) withLogging(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("handling event", "command", command)

		result, err := h(e)

		if err != nil {
			d.logger.Error("event failed", "command", command, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("event complete", "command", command, "duration", time.Since(start))
		}

		return result, err
	}
}
