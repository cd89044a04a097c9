package registry

import (
	"fmt"
	"path/filepath"
	"strings"

	"genstudio/internal/common/fsutil"
	"genstudio/internal/config"
	"genstudio/pkg/types"
)

// Built-in preset identifiers.
const (
	PresetSynopsis           = "synopsis"
	PresetPersona            = "persona"
	PresetPersonaPlaceholder = "persona-placeholder"
)

// DefaultPlaceholderAssets is the sample image directory of the placeholder preset.
const DefaultPlaceholderAssets = "./assets"

// Presets returns the built-in models: a Portuguese GPT-2 synopsis writer, a
// Stable Diffusion persona generator and a directory-backed stand-in for it.
func Presets() []types.Model {
	return []types.Model{
		{
			ID:      PresetSynopsis,
			Name:    "Synopsis generator (GPT-2 small, Portuguese)",
			Kind:    types.KindText,
			Backend: "hf",
			Source:  "pierreguillou/gpt2-small-portuguese",
			Device:  "auto",
		},
		{
			ID:      PresetPersona,
			Name:    "Persona generator (Stable Diffusion v1.5)",
			Kind:    types.KindImage,
			Backend: "sdwebui",
			Source:  "runwayml/stable-diffusion-v1-5",
			Device:  "auto",
		},
		{
			ID:      PresetPersonaPlaceholder,
			Name:    "Persona generator (sample images)",
			Kind:    types.KindImage,
			Backend: "placeholder",
			Path:    DefaultPlaceholderAssets,
			Device:  "cpu",
		},
	}
}

// fileRegistry is the on-disk shape of a models file.
type fileRegistry struct {
	Models []types.Model `json:"models" yaml:"models" toml:"models"`
}

// LoadFile reads a models file (.yaml/.yml, .json or .toml) with a top-level
// "models" list. Entries are validated; ids must be unique within the file.
func LoadFile(path string) ([]types.Model, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	var fr fileRegistry
	if err := config.DecodeFile(p, &fr); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(fr.Models))
	for i, m := range fr.Models {
		if err := Validate(m); err != nil {
			return nil, fmt.Errorf("%s: models[%d]: %w", filepath.Base(p), i, err)
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("%s: duplicate model id %q", filepath.Base(p), m.ID)
		}
		seen[m.ID] = true
	}
	return fr.Models, nil
}

// Validate checks that a registry entry is complete enough to be loaded.
func Validate(m types.Model) error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("id is required")
	}
	switch m.Kind {
	case types.KindText, types.KindImage:
	default:
		return fmt.Errorf("model %s: kind must be %q or %q, got %q", m.ID, types.KindText, types.KindImage, m.Kind)
	}
	if m.Backend == "" {
		return fmt.Errorf("model %s: backend is required", m.ID)
	}
	if m.Source == "" && m.Path == "" {
		return fmt.Errorf("model %s: source or path is required", m.ID)
	}
	return nil
}

// GGUFScanner discovers local llama.cpp model files.
type GGUFScanner struct{}

// NewGGUFScanner returns a scanner for *.gguf files.
func NewGGUFScanner() *GGUFScanner { return &GGUFScanner{} }

// Scan lists *.gguf files in dir and registers each as a llama text model.
// ID is the full filename (including extension); Path is the absolute file path.
func (GGUFScanner) Scan(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	files, err := fsutil.FilesWithExt(abs, ".gguf")
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	models := make([]types.Model, 0, len(files))
	for _, p := range files {
		name := filepath.Base(p)
		models = append(models, types.Model{
			ID:      name,
			Name:    strings.TrimSuffix(name, filepath.Ext(name)),
			Kind:    types.KindText,
			Backend: "llama",
			Path:    p,
			Device:  "cpu",
		})
	}
	return models, nil
}

// LoadDir is a convenience wrapper around GGUFScanner.Scan.
func LoadDir(dir string) ([]types.Model, error) {
	return NewGGUFScanner().Scan(dir)
}

// Merge combines registries in order. A later entry replaces an earlier one
// with the same id in place; new ids are appended.
func Merge(lists ...[]types.Model) []types.Model {
	var out []types.Model
	pos := make(map[string]int)
	for _, list := range lists {
		for _, m := range list {
			if i, ok := pos[m.ID]; ok {
				out[i] = m
				continue
			}
			pos[m.ID] = len(out)
			out = append(out, m)
		}
	}
	return out
}
