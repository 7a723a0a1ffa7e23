package lambda

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"mixup-graphql-api/internal/engine"
)

// Starter is an engine handle that can be made ready. Handles are cached by
// identity, so implementations should be pointer types.
type Starter interface {
	Start(ctx context.Context) error
}

// StartSignal completes once the readiness operation of a handle settles.
// Every caller of the same handle shares one signal.
type StartSignal struct {
	done     chan struct{}
	err      error
	duration time.Duration
}

func newStartSignal() *StartSignal {
	return &StartSignal{done: make(chan struct{})}
}

func (s *StartSignal) run(ctx context.Context, starter Starter) {
	start := time.Now()
	s.err = starter.Start(ctx)
	s.duration = time.Since(start)
	close(s.done)
}

// Result reports whether the readiness operation has settled and, if so,
// its error.
func (s *StartSignal) Result() (settled bool, err error) {
	select {
	case <-s.done:
		return true, s.err
	default:
		return false, nil
	}
}

// Wait blocks until readiness settles and returns its error. ctx only bounds
// this caller's wait; the readiness operation itself keeps running.
func (s *StartSignal) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Lifecycle makes sure each engine handle is started at most once per process
type Lifecycle struct {
	mu       sync.Mutex
	entries  map[Starter]*StartSignal
	fallback func() Starter
	log      *logrus.Entry
}

// NewLifecycle creates a lifecycle; fallback supplies the handle used when a
// caller passes nil.
func NewLifecycle(fallback func() Starter) *Lifecycle {
	return &Lifecycle{
		entries:  make(map[Starter]*StartSignal),
		fallback: fallback,
		log:      logrus.WithField("component", "lifecycle"),
	}
}

var (
	globalLifecycle *Lifecycle
	lifecycleOnce   sync.Once
)

// GetLifecycle returns the process-wide lifecycle. Its fallback handle is the
// default engine.
func GetLifecycle() *Lifecycle {
	lifecycleOnce.Do(func() {
		globalLifecycle = NewLifecycle(func() Starter { return engine.Default() })
	})
	return globalLifecycle
}

// EnsureServerStarted waits for starter (or the default engine when nil) to
// be ready using the process-wide lifecycle.
func EnsureServerStarted(ctx context.Context, starter Starter) error {
	return GetLifecycle().Ensure(ctx, starter)
}

// Start returns the shared signal for starter, launching its readiness
// operation if this is the first time the handle is seen. The signal is
// recorded before anyone waits on it.
func (l *Lifecycle) Start(starter Starter) *StartSignal {
	if starter == nil {
		starter = l.fallback()
	}

	l.mu.Lock()
	sig, ok := l.entries[starter]
	if !ok {
		sig = newStartSignal()
		l.entries[starter] = sig
	}
	l.mu.Unlock()

	if !ok {
		go func() {
			sig.run(context.Background(), starter)
			if _, err := sig.Result(); err != nil {
				l.log.WithError(err).Error("Engine failed to start")
				return
			}
			l.log.WithField("startup_ms", float64(sig.duration.Nanoseconds())/1000000).Info("Engine ready")
		}()
	}
	return sig
}

// Ensure waits until starter is ready. A failed start is not retried: every
// later call returns the same error until the handle is forgotten.
func (l *Lifecycle) Ensure(ctx context.Context, starter Starter) error {
	return l.Start(starter).Wait(ctx)
}

// IsStarted reports whether starter has started successfully
func (l *Lifecycle) IsStarted(starter Starter) bool {
	if starter == nil {
		starter = l.fallback()
	}
	l.mu.Lock()
	sig, ok := l.entries[starter]
	l.mu.Unlock()
	if !ok {
		return false
	}
	settled, err := sig.Result()
	return settled && err == nil
}

// Forget drops the cached signal of starter so the next call starts it again
func (l *Lifecycle) Forget(starter Starter) {
	if starter == nil {
		starter = l.fallback()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, starter)
}

// Reset drops every cached signal
func (l *Lifecycle) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[Starter]*StartSignal)
}
