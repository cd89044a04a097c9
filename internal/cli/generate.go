package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"genstudio/internal/registry"
	"genstudio/pkg/types"
)

func newGenerateCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate text or images from a prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("generate requires a subcommand: text|image")
		},
	}
	cmd.AddCommand(newGenerateTextCmd(o), newGenerateImageCmd(o))
	return cmd
}

func newGenerateTextCmd(o *rootOptions) *cobra.Command {
	var (
		model       string
		maxLength   int
		temperature float64
	)
	cmd := &cobra.Command{
		Use:     "text PROMPT",
		Short:   "Write a continuation of PROMPT",
		Example: `  genstudio generate text "Numa colônia lunar, um detetive investiga..." --temperature 1.2`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxLength < types.MinMaxLength || maxLength > types.MaxMaxLength {
				return fmt.Errorf("--max-length must be between %d and %d", types.MinMaxLength, types.MaxMaxLength)
			}
			if temperature < types.MinTemperature || temperature > types.MaxTemperature {
				return fmt.Errorf("--temperature must be between %.1f and %.1f", types.MinTemperature, types.MaxTemperature)
			}
			mgr, err := newManager(o.cfg, o.log)
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()
			res, err := mgr.Infer(cmd.Context(), types.GenerateRequest{
				Model:  model,
				Prompt: strings.Join(args, " "),
				Text:   &types.TextParams{MaxLength: maxLength, Temperature: temperature},
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&model, "model", registry.PresetSynopsis, "Text model id")
	f.IntVar(&maxLength, "max-length", types.DefaultMaxLength, "Maximum length of the generated text, prompt included")
	f.Float64Var(&temperature, "temperature", types.DefaultTemperature, "Sampling temperature (creativity)")
	return cmd
}

func newGenerateImageCmd(o *rootOptions) *cobra.Command {
	var (
		model    string
		negative string
		count    int
		outDir   string
	)
	cmd := &cobra.Command{
		Use:     "image PROMPT",
		Short:   "Generate images for PROMPT and write them as PNG files",
		Example: `  genstudio generate image "portrait of a ship engineer, digital art" --negative "blurry" --count 2 --out ./out`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 || count > types.MaxImageCount {
				return fmt.Errorf("--count must be between 1 and %d", types.MaxImageCount)
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			mgr, err := newManager(o.cfg, o.log)
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()
			res, err := mgr.Infer(cmd.Context(), types.GenerateRequest{
				Model:  model,
				Prompt: strings.Join(args, " "),
				Image:  &types.ImageParams{NegativePrompt: negative, Count: count},
			})
			if err != nil {
				return err
			}
			for _, img := range res.Images {
				p := filepath.Join(outDir, types.ImageFilename(img.Index))
				if err := os.WriteFile(p, img.PNG, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", p, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&model, "model", registry.PresetPersona, "Image model id")
	f.StringVar(&negative, "negative", "", "Attributes the images should avoid")
	f.IntVar(&count, "count", types.DefaultImageCount, "Number of images (1-4)")
	f.StringVar(&outDir, "out", ".", "Output directory")
	return cmd
}
