package manager

import "sort"

// SanityReport describes which registry entries have a backend able to load them.
type SanityReport struct {
	LlamaBuilt bool     `json:"llama_built"`
	Backends   []string `json:"backends"`
	// Unserved lists model ids whose backend has no configured adapter.
	Unserved []string `json:"unserved,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// SanityCheck validates the registry against configured adapters.
// It does not mutate state and is safe to call at any time.
func (m *Manager) SanityCheck() SanityReport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r := SanityReport{LlamaBuilt: llamaBuilt}
	for name := range m.adapters {
		r.Backends = append(r.Backends, name)
	}
	sort.Strings(r.Backends)
	defaultFound := m.defaultModel == ""
	for _, mdl := range m.registry {
		if mdl.ID == m.defaultModel {
			defaultFound = true
		}
		if _, ok := m.adapters[mdl.Backend]; !ok {
			r.Unserved = append(r.Unserved, mdl.ID)
		}
	}
	if !defaultFound {
		r.Error = "default model " + m.defaultModel + " not in registry"
	}
	return r
}
