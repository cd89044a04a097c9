package manager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"genstudio/pkg/types"
)

// GetHandle returns the handle for modelID, loading it on first use. Later
// calls return the identical *Handle without reloading. A failed load is
// terminal: the same failure is returned on every later call and the adapter
// is not consulted again.
func (m *Manager) GetHandle(ctx context.Context, modelID string) (*Handle, error) {
	id, err := m.resolveModelID(modelID)
	if err != nil {
		return nil, err
	}
	if m.isClosed() {
		return nil, ErrHandleUnavailable
	}
	if e, ok := m.cached(id); ok {
		return e.handle, e.err
	}
	if _, ok := m.getModelByID(id); !ok {
		return nil, ErrModelNotFound(id)
	}

	// Concurrent first callers share one load. The load is detached from the
	// caller's cancellation so a hang-up never becomes a cached failure.
	loadCtx := context.WithoutCancel(ctx)
	v, _, _ := m.loads.Do(id, func() (any, error) {
		if e, ok := m.cached(id); ok {
			return e, nil
		}
		e := m.load(loadCtx, id)
		m.mu.Lock()
		delete(m.loading, id)
		if m.closed {
			m.mu.Unlock()
			if e.handle != nil && e.handle.session != nil {
				_ = e.handle.session.Close()
			}
			return &loadEntry{err: ErrHandleUnavailable}, nil
		}
		m.handles[id] = e
		if e.err != nil {
			m.lastErr = e.err.Error()
		}
		m.mu.Unlock()
		return e, nil
	})
	e := v.(*loadEntry)
	return e.handle, e.err
}

func (m *Manager) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

func (m *Manager) cached(id string) (*loadEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.handles[id]
	return e, ok
}

// load performs the one-time load for id. It never returns nil.
func (m *Manager) load(ctx context.Context, id string) *loadEntry {
	start := time.Now()
	mdl, _ := m.getModelByID(id)
	m.mu.Lock()
	m.loading[id] = true
	m.mu.Unlock()
	m.log.Info().Str("event", "load_start").Str("model", id).Str("backend", mdl.Backend).Msg("loading model")
	m.publish(Event{Name: EventLoadStart, ModelID: id, Fields: map[string]any{"backend": mdl.Backend}})

	fail := func(cause error) *loadEntry {
		err := &loadError{modelID: id, cause: cause}
		m.log.Error().Str("event", "load_error").Str("model", id).Err(cause).Msg("model load failed")
		m.publish(Event{Name: EventLoadError, ModelID: id, Fields: map[string]any{"error": cause.Error()}})
		modelLoadsTotal.WithLabelValues(mdl.Backend, "error").Inc()
		return &loadEntry{err: err}
	}

	adapter, ok := m.adapters[mdl.Backend]
	if !ok {
		return fail(ErrDependencyUnavailable(fmt.Sprintf("no adapter configured for backend %q", mdl.Backend)))
	}
	sess, err := loadSession(ctx, adapter, mdl)
	if err != nil {
		return fail(err)
	}
	if sess == nil {
		return fail(errors.New("adapter returned no session"))
	}
	if !sessionMatchesKind(sess, mdl.Kind) {
		_ = sess.Close()
		return fail(fmt.Errorf("backend %q cannot serve %q models", mdl.Backend, mdl.Kind))
	}

	caps := sess.Capabilities()
	h := &Handle{
		ID:                        id,
		Kind:                      mdl.Kind,
		Device:                    caps.Device,
		SupportsBatchedGeneration: caps.BatchedGeneration,
		EOSTokenID:                caps.EOSTokenID,
		LoadedAt:                  timeNow(),
		session:                   sess,
	}
	m.loadsTotal.Add(1)
	modelLoadsTotal.WithLabelValues(mdl.Backend, "ok").Inc()
	modelLoadDuration.WithLabelValues(mdl.Backend).Observe(time.Since(start).Seconds())
	m.log.Info().Str("event", "load_ready").Str("model", id).Str("device", string(h.Device)).
		Bool("batched", h.SupportsBatchedGeneration).Dur("dur", time.Since(start)).Msg("model ready")
	m.publish(Event{Name: EventLoadReady, ModelID: id, Fields: map[string]any{
		"device":  string(h.Device),
		"batched": h.SupportsBatchedGeneration,
		"dur_ms":  int(time.Since(start) / time.Millisecond),
	}})
	return &loadEntry{handle: h}
}

// loadSession calls the adapter, converting a panic into a load failure.
func loadSession(ctx context.Context, a InferenceAdapter, mdl types.Model) (sess InferSession, err error) {
	defer func() {
		if r := recover(); r != nil {
			sess = nil
			err = fmt.Errorf("panic during load: %v", r)
		}
	}()
	return a.Load(ctx, mdl)
}

// Preload loads the default model, if any. Failures are recorded like any
// other load failure and returned.
func (m *Manager) Preload(ctx context.Context) error {
	if m.defaultModel == "" {
		return nil
	}
	_, err := m.GetHandle(ctx, m.defaultModel)
	return err
}
