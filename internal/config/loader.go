package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in the CLI.
type Config struct {
	Addr         string   `json:"addr" yaml:"addr" toml:"addr"`
	ModelsFile   string   `json:"models_file" yaml:"models_file" toml:"models_file"`
	ModelsDir    string   `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	DefaultModel string   `json:"default_model" yaml:"default_model" toml:"default_model"`
	Preload      bool     `json:"preload" yaml:"preload" toml:"preload"`
	LogLevel     string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat    string   `json:"log_format" yaml:"log_format" toml:"log_format"`
	LogFile      string   `json:"log_file" yaml:"log_file" toml:"log_file"`
	MaxBodyBytes int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	CORSOrigins  []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`

	HFHubURL       string `json:"hf_hub_url" yaml:"hf_hub_url" toml:"hf_hub_url"`
	HFInferenceURL string `json:"hf_inference_url" yaml:"hf_inference_url" toml:"hf_inference_url"`
	HFToken        string `json:"hf_token" yaml:"hf_token" toml:"hf_token"`
	SDWebUIURL     string `json:"sdwebui_url" yaml:"sdwebui_url" toml:"sdwebui_url"`
	LlamaCtx       int    `json:"llama_ctx" yaml:"llama_ctx" toml:"llama_ctx"`
	LlamaThreads   int    `json:"llama_threads" yaml:"llama_threads" toml:"llama_threads"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if err := DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DecodeFile unmarshals path into v, choosing the codec by extension. The
// model registry file shares these rules.
func DecodeFile(path string, v any) error {
	if path == "" {
		return fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, v); err != nil {
			return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
	case ".json":
		if err := json.Unmarshal(b, v); err != nil {
			return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, v); err != nil {
			return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
	default:
		return fmt.Errorf("unsupported config extension: %s", ext)
	}
	return nil
}
