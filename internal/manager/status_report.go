package manager

import (
	"sort"

	"genstudio/pkg/types"
)

// Ready reports whether generation can be offered: the default model has a
// handle, or, without a default, any model does.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.defaultModel != "" {
		e, ok := m.handles[m.defaultModel]
		return ok && e.handle != nil
	}
	for _, e := range m.handles {
		if e.handle != nil {
			return true
		}
	}
	return false
}

// state derives the overall state; caller holds m.mu.
func (m *Manager) state() State {
	if m.defaultModel != "" {
		if m.loading[m.defaultModel] {
			return StateLoading
		}
		if e, ok := m.handles[m.defaultModel]; ok {
			if e.err != nil {
				return StateError
			}
			return StateReady
		}
		return StateLoading
	}
	if len(m.loading) > 0 {
		return StateLoading
	}
	for _, e := range m.handles {
		if e.handle != nil {
			return StateReady
		}
	}
	if len(m.handles) > 0 {
		return StateError
	}
	return StateLoading
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := timeNow()
	resp := types.StatusResponse{
		DefaultModel:     m.defaultModel,
		State:            string(m.state()),
		LastError:        m.lastErr,
		UptimeSeconds:    int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix:   now.Unix(),
		LoadsTotal:       m.loadsTotal.Load(),
		GenerationsTotal: m.generationsTotal.Load(),
	}
	resp.Handles = make([]types.HandleStatus, 0, len(m.handles)+len(m.loading))
	for id := range m.loading {
		resp.Handles = append(resp.Handles, types.HandleStatus{ModelID: id, State: string(StateLoading)})
	}
	for id, e := range m.handles {
		hs := types.HandleStatus{ModelID: id}
		if e.err != nil {
			hs.State = string(StateError)
			hs.Error = e.err.Error()
		} else {
			h := e.handle
			hs.State = string(StateReady)
			hs.Kind = h.Kind
			hs.Device = string(h.Device)
			hs.SupportsBatchedGeneration = h.SupportsBatchedGeneration
			hs.LoadedAt = h.LoadedAt.Unix()
		}
		resp.Handles = append(resp.Handles, hs)
	}
	sort.Slice(resp.Handles, func(i, j int) bool { return resp.Handles[i].ModelID < resp.Handles[j].ModelID })
	return resp
}
