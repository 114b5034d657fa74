package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// hook is one named startup step and its matching shutdown step.
type hook struct {
	name  string
	start func(context.Context) error
	stop  func(context.Context) error
}

// Lifecycle manages the startup and shutdown of gateway components.
// Components stop in reverse start order.
type Lifecycle struct {
	mu      sync.Mutex
	hooks   []hook
	started int
	running bool
}

// NewLifecycle creates a new lifecycle manager.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

// Add registers a component. Either function may be nil.
func (l *Lifecycle) Add(name string, start, stop func(context.Context) error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks = append(l.hooks, hook{name: name, start: start, stop: stop})
}

// AddCloser registers a component that only needs closing on shutdown.
func (l *Lifecycle) AddCloser(name string, c interface{ Close() error }) {
	l.Add(name, nil, func(context.Context) error { return c.Close() })
}

// Start runs every start function in registration order. When one fails,
// the components already started are stopped.
func (l *Lifecycle) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return errors.New("lifecycle already started")
	}

	for i, h := range l.hooks {
		if h.start != nil {
			if err := h.start(ctx); err != nil {
				l.started = i
				l.stopStarted(ctx)
				return fmt.Errorf("starting %s: %w", h.name, err)
			}
		}
		slog.Debug("component started", "component", h.name)
	}

	l.started = len(l.hooks)
	l.running = true
	return nil
}

// Stop runs the stop functions of started components in reverse order.
func (l *Lifecycle) Stop(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running {
		return nil
	}
	l.running = false
	return l.stopStarted(ctx)
}

func (l *Lifecycle) stopStarted(ctx context.Context) error {
	var errs []error
	for i := l.started - 1; i >= 0; i-- {
		h := l.hooks[i]
		if h.stop == nil {
			continue
		}
		if err := h.stop(ctx); err != nil {
			slog.Warn("stopping component failed", "component", h.name, "error", err)
			errs = append(errs, fmt.Errorf("stopping %s: %w", h.name, err))
		}
	}
	l.started = 0
	return errors.Join(errs...)
}

// IsStarted returns whether the lifecycle has been started.
func (l *Lifecycle) IsStarted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}
