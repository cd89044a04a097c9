package manager

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"genstudio/pkg/types"
)

var timeNow = time.Now

// Manager owns the process-wide model handle cache and serves generation
// requests against it.
type Manager struct {
	mu           sync.RWMutex
	registry     []types.Model
	defaultModel string
	adapters     map[string]InferenceAdapter
	// handles is written once per model id and read thereafter.
	handles map[string]*loadEntry
	loading map[string]bool
	loads   singleflight.Group
	lastErr string
	closed  bool

	publisher EventPublisher
	log       zerolog.Logger
	startTime time.Time

	loadsTotal       atomic.Uint64
	generationsTotal atomic.Uint64
}

// New constructs a Manager with the given registry and adapters.
func New(reg []types.Model, defaultModel string, adapters map[string]InferenceAdapter) *Manager {
	return NewWithConfig(ManagerConfig{
		Registry:     reg,
		DefaultModel: defaultModel,
		Adapters:     adapters,
	})
}

// SetEventPublisher installs an event publisher. Nil restores the no-op publisher.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == nil {
		m.publisher = noopPublisher{}
		return
	}
	m.publisher = p
}

func (m *Manager) publish(e Event) {
	m.mu.RLock()
	p := m.publisher
	m.mu.RUnlock()
	p.Publish(e)
}

// DefaultModel returns the model id used when requests omit one.
func (m *Manager) DefaultModel() string { return m.defaultModel }

// ListModels returns a copy of the registry.
func (m *Manager) ListModels() []types.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Model, len(m.registry))
	copy(out, m.registry)
	return out
}

// Close releases every loaded session. Handles are process-lifetime objects;
// Close is meant for shutdown only, and GetHandle fails with
// ErrHandleUnavailable afterwards instead of loading again.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	entries := m.handles
	m.handles = make(map[string]*loadEntry)
	m.mu.Unlock()
	var errs []error
	for _, e := range entries {
		if e.handle != nil && e.handle.session != nil {
			if err := e.handle.session.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
