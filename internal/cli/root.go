// Package cli implements the genstudio command tree.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"genstudio/internal/config"
	"genstudio/internal/logging"
)

// rootOptions carries state shared by all subcommands.
type rootOptions struct {
	configPath string
	cfg        config.Config
	log        zerolog.Logger
	logCloser  io.Closer
}

// Execute runs the command tree against os.Args and returns the exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "error:", err)
		return 1
	}
	return 0
}

// NewRootCmd constructs the genstudio command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{log: zerolog.Nop()})
}

func newRootCmd(o *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "genstudio",
		Short:         "Text and image generation with pretrained models",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := o.resolve(cmd); err != nil {
				return err
			}
			o.log, o.logCloser = logging.Setup(o.cfg.LogLevel, o.cfg.LogFormat, o.cfg.LogFile)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if o.logCloser != nil {
				return o.logCloser.Close()
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", os.Getenv("GENSTUDIO_CONFIG"), "Config file (.yaml, .json or .toml); defaults GENSTUDIO_CONFIG")
	pf.String("log-level", "info", "Log level: debug|info|warn|error|off")
	pf.String("log-format", "console", "Log format: console|json")
	pf.String("log-file", "", "Also write JSON logs to this file (rotated)")
	pf.String("models-file", "", "Models file adding to or replacing the built-in presets")
	pf.String("models-dir", "", "Directory to scan for *.gguf models (llama backend)")
	pf.String("default-model", "", "Model id used when a request omits one")
	pf.String("hf-hub-url", "", "Hugging Face hub base URL")
	pf.String("hf-inference-url", "", "Hugging Face inference endpoint base URL")
	pf.String("sdwebui-url", "", "Stable Diffusion WebUI base URL")
	pf.Int("llama-ctx", 2048, "Context size for llama models")
	pf.Int("llama-threads", 0, "Threads for llama models (0 = one per CPU)")

	root.AddCommand(newServeCmd(o), newGenerateCmd(o), newModelsCmd(o))
	return root
}

// resolve merges the config file with flags. Flags set on the command line
// win over file values; file values win over flag defaults.
func (o *rootOptions) resolve(cmd *cobra.Command) error {
	var cfg config.Config
	if o.configPath != "" {
		c, err := config.Load(o.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	mergeString(cmd, "log-level", &cfg.LogLevel)
	mergeString(cmd, "log-format", &cfg.LogFormat)
	mergeString(cmd, "log-file", &cfg.LogFile)
	mergeString(cmd, "models-file", &cfg.ModelsFile)
	mergeString(cmd, "models-dir", &cfg.ModelsDir)
	mergeString(cmd, "default-model", &cfg.DefaultModel)
	mergeString(cmd, "hf-hub-url", &cfg.HFHubURL)
	mergeString(cmd, "hf-inference-url", &cfg.HFInferenceURL)
	mergeString(cmd, "sdwebui-url", &cfg.SDWebUIURL)
	mergeInt(cmd, "llama-ctx", &cfg.LlamaCtx)
	mergeInt(cmd, "llama-threads", &cfg.LlamaThreads)
	if cfg.HFToken == "" {
		cfg.HFToken = os.Getenv("HF_TOKEN")
	}
	o.cfg = cfg
	return nil
}

func mergeString(cmd *cobra.Command, name string, dst *string) {
	f := cmd.Flags().Lookup(name)
	if f == nil {
		return
	}
	if f.Changed || *dst == "" {
		*dst = f.Value.String()
	}
}

func mergeInt(cmd *cobra.Command, name string, dst *int) {
	f := cmd.Flags().Lookup(name)
	if f == nil {
		return
	}
	if f.Changed || *dst == 0 {
		if v, err := cmd.Flags().GetInt(name); err == nil {
			*dst = v
		}
	}
}

func mergeInt64(cmd *cobra.Command, name string, dst *int64) {
	f := cmd.Flags().Lookup(name)
	if f == nil {
		return
	}
	if f.Changed || *dst == 0 {
		if v, err := cmd.Flags().GetInt64(name); err == nil {
			*dst = v
		}
	}
}

func mergeBool(cmd *cobra.Command, name string, dst *bool) {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		if v, err := cmd.Flags().GetBool(name); err == nil {
			*dst = v
		}
	}
}

func mergeStrings(cmd *cobra.Command, name string, dst *[]string) {
	f := cmd.Flags().Lookup(name)
	if f == nil {
		return
	}
	if f.Changed || len(*dst) == 0 {
		if v, err := cmd.Flags().GetStringSlice(name); err == nil {
			*dst = v
		}
	}
}
