package manager

import (
	"github.com/rs/zerolog"

	"genstudio/pkg/types"
)

// Backend names used in registry entries.
const (
	BackendHF          = "hf"
	BackendSDWebUI     = "sdwebui"
	BackendPlaceholder = "placeholder"
	BackendLlama       = "llama"
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Registry     []types.Model
	DefaultModel string
	// Adapters maps a backend name to the adapter that loads its models.
	Adapters map[string]InferenceAdapter
	// Logger receives structured manager events. Zero value logs nowhere.
	Logger *zerolog.Logger
	// Publisher receives lifecycle events. Nil drops them.
	Publisher EventPublisher
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		registry:     append([]types.Model(nil), cfg.Registry...),
		defaultModel: cfg.DefaultModel,
		adapters:     make(map[string]InferenceAdapter, len(cfg.Adapters)),
		handles:      make(map[string]*loadEntry),
		loading:      make(map[string]bool),
		publisher:    noopPublisher{},
		log:          zerolog.Nop(),
		startTime:    timeNow(),
	}
	for name, a := range cfg.Adapters {
		if a != nil {
			m.adapters[name] = a
		}
	}
	if cfg.Logger != nil {
		m.log = cfg.Logger.With().Str("component", "manager").Logger()
	}
	if cfg.Publisher != nil {
		m.publisher = cfg.Publisher
	}
	return m
}
