package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"genstudio/internal/config"
	"genstudio/internal/manager"
	"genstudio/internal/registry"
	"genstudio/pkg/types"
)

const adapterConnectTimeout = 10 * time.Second

// buildRegistry layers presets, the models file and scanned gguf files, in
// that order; later sources replace earlier entries with the same id.
func buildRegistry(cfg config.Config) ([]types.Model, error) {
	lists := [][]types.Model{registry.Presets()}
	if cfg.ModelsFile != "" {
		fromFile, err := registry.LoadFile(cfg.ModelsFile)
		if err != nil {
			return nil, fmt.Errorf("load models file: %w", err)
		}
		lists = append(lists, fromFile)
	}
	if cfg.ModelsDir != "" {
		scanned, err := registry.LoadDir(cfg.ModelsDir)
		if err != nil {
			return nil, fmt.Errorf("scan models dir: %w", err)
		}
		lists = append(lists, scanned)
	}
	return registry.Merge(lists...), nil
}

func buildAdapters(cfg config.Config) map[string]manager.InferenceAdapter {
	return map[string]manager.InferenceAdapter{
		manager.BackendHF:          manager.NewHFAdapter(cfg.HFHubURL, cfg.HFInferenceURL, cfg.HFToken, adapterConnectTimeout),
		manager.BackendSDWebUI:     manager.NewSDWebUIAdapter(cfg.SDWebUIURL, adapterConnectTimeout),
		manager.BackendPlaceholder: manager.NewPlaceholderAdapter(nil),
		manager.BackendLlama:       manager.NewLlamaAdapter(cfg.LlamaCtx, cfg.LlamaThreads),
	}
}

func newManager(cfg config.Config, log zerolog.Logger) (*manager.Manager, error) {
	reg, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}
	return manager.NewWithConfig(manager.ManagerConfig{
		Registry:     reg,
		DefaultModel: cfg.DefaultModel,
		Adapters:     buildAdapters(cfg),
		Logger:       &log,
	}), nil
}
