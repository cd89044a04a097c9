package manager

import (
	"genstudio/pkg/types"
)

// TemperatureFloor replaces non-positive temperatures before sampling.
const TemperatureFloor = 0.1

// EffectiveTemperature returns the temperature used for sampling: values <= 0
// become TemperatureFloor, anything else passes through unchanged.
func EffectiveTemperature(t float64) float64 {
	if t <= 0 {
		return TemperatureFloor
	}
	return t
}

// Helper: find model in registry by id.
func (m *Manager) getModelByID(id string) (types.Model, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, mdl := range m.registry {
		if mdl.ID == id {
			return mdl, true
		}
	}
	return types.Model{}, false
}

// resolveModelID applies the default model to an empty id.
func (m *Manager) resolveModelID(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	if m.defaultModel == "" {
		return "", modelNotFoundError{id: "(unspecified)"}
	}
	return m.defaultModel, nil
}

func sessionMatchesKind(sess InferSession, kind string) bool {
	switch kind {
	case types.KindText:
		_, ok := sess.(TextSession)
		return ok
	case types.KindImage:
		_, ok := sess.(ImageSession)
		return ok
	default:
		return false
	}
}
