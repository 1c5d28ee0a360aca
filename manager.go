package depgraph

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gburgyan/go-depgraph/ast"
)

// Status is the state of a Manager.
type Status int

const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusValid
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLoading:
		return "loading"
	case StatusValid:
		return "valid"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// GraphState is one state published by a Manager. Graph and Invalidator are set
// for StatusValid and StatusError. Generation identifies the refresh that
// produced the state; a Loading state and the result that follows it share the
// same generation.
type GraphState struct {
	Status      Status
	Graph       *ResolvedGraph
	Invalidator *Invalidator
	Generation  string
}

// Listener receives every state a Manager publishes, in order.
type Listener interface {
	OnStateChanged(state GraphState)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(state GraphState)

func (f ListenerFunc) OnStateChanged(state GraphState) {
	f(state)
}

// Source supplies a consistent snapshot of the project for each refresh.
type Source interface {
	Snapshot(ctx context.Context) (ast.Project, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (ast.Project, error)

func (f SourceFunc) Snapshot(ctx context.Context) (ast.Project, error) {
	return f(ctx)
}

// Manager keeps a resolved graph up to date for an interactive host such as an
// editor. It starts Uninitialized. Each Refresh publishes Loading immediately
// and resolves on a single background worker, which then publishes Valid or
// Error. A refresh requested while another is running supersedes it: the
// older result is dropped when it completes, it is not cancelled.
//
// Listeners are called synchronously, while the Manager holds its publish
// lock, so a listener must not call Refresh, NotifyChanged or AddListener.
// State may be called from a listener.
type Manager struct {
	compiler *Compiler
	source   Source
	logger   *zap.Logger

	requests chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}

	publishMu  sync.Mutex
	state      atomic.Pointer[GraphState]
	generation string
	published  string
	closed     bool

	listenersMu sync.Mutex
	listeners   map[uint64]Listener
	order       []uint64
	nextID      uint64
}

// NewManager starts a manager for source. Options configure the underlying
// compiler, which always runs in ModeInteractive.
func NewManager(source Source, opts ...Option) *Manager {
	c := NewCompiler(append(opts, WithMode(ModeInteractive))...)
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		compiler:  c,
		source:    source,
		logger:    c.logger,
		requests:  make(chan struct{}, 1),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		listeners: map[uint64]Listener{},
	}
	m.state.Store(&GraphState{Status: StatusUninitialized})
	go m.run()
	return m
}

// State returns the most recently published state.
func (m *Manager) State() GraphState {
	return *m.state.Load()
}

// Refresh publishes Loading and schedules a resolution. It returns the
// generation of the new state, or "" if the manager is closed.
func (m *Manager) Refresh() string {
	m.publishMu.Lock()
	if m.closed {
		m.publishMu.Unlock()
		return ""
	}
	gen := uuid.NewString()
	m.generation = gen
	m.publish(GraphState{Status: StatusLoading, Generation: gen})
	m.publishMu.Unlock()

	select {
	case m.requests <- struct{}{}:
	default:
		// A request is already pending and will pick up the newest generation.
	}
	return gen
}

// NotifyChanged tells the manager that the given declarations changed. A Valid
// graph is only refreshed if one of them is relevant to it; in any other state
// every change triggers a refresh. It reports whether a refresh was started.
func (m *Manager) NotifyChanged(changed ...ast.Element) bool {
	state := m.State()
	if state.Status == StatusValid {
		relevant := false
		for _, el := range changed {
			if state.Invalidator.ShouldInvalidate(el) {
				relevant = true
				break
			}
		}
		if !relevant {
			m.logger.Debug("change ignored", zap.Int("elements", len(changed)))
			return false
		}
	}
	return m.Refresh() != ""
}

// AddListener registers l and immediately sends it the current state. The
// returned function removes the listener.
func (m *Manager) AddListener(l Listener) (remove func()) {
	m.publishMu.Lock()
	defer m.publishMu.Unlock()

	m.listenersMu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	m.order = append(m.order, id)
	m.listenersMu.Unlock()

	l.OnStateChanged(*m.state.Load())

	var once sync.Once
	return func() {
		once.Do(func() {
			m.listenersMu.Lock()
			defer m.listenersMu.Unlock()
			delete(m.listeners, id)
			for i, o := range m.order {
				if o == id {
					m.order = append(m.order[:i:i], m.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Close stops the worker and waits for it to exit. A resolution in progress is
// allowed to finish but its result is not published.
func (m *Manager) Close() {
	m.publishMu.Lock()
	if m.closed {
		m.publishMu.Unlock()
		return
	}
	m.closed = true
	m.publishMu.Unlock()

	m.cancel()
	<-m.done
}

// publish must be called with publishMu held.
func (m *Manager) publish(state GraphState) {
	m.state.Store(&state)

	m.listenersMu.Lock()
	listeners := make([]Listener, 0, len(m.order))
	for _, id := range m.order {
		listeners = append(listeners, m.listeners[id])
	}
	m.listenersMu.Unlock()

	for _, l := range listeners {
		l.OnStateChanged(state)
	}
}
