package manager

import (
	"context"
	"image"

	"genstudio/pkg/types"
)

// InferenceAdapter abstracts a model source/runtime. Load is called at most
// once per model id for the lifetime of the Manager.
type InferenceAdapter interface {
	// Load obtains a ready-to-use session for the registry entry. It may be slow
	// and allocate significant device memory.
	Load(ctx context.Context, mdl types.Model) (InferSession, error)
}

// InferSession is a loaded model. Concrete sessions also implement TextSession
// or ImageSession depending on the model kind.
type InferSession interface {
	Capabilities() Capabilities
	// Close releases any resources associated with the session.
	Close() error
}

// Capabilities describes the execution environment of a session.
type Capabilities struct {
	Device            Device
	BatchedGeneration bool
	EOSTokenID        int
}

// TextSession generates text from a prompt.
type TextSession interface {
	InferSession
	GenerateText(ctx context.Context, prompt string, params SamplingParams) (string, error)
}

// ImageSession generates images from a prompt.
type ImageSession interface {
	InferSession
	// GenerateImages returns params.Count images produced by a single model call.
	GenerateImages(ctx context.Context, prompt string, params DiffusionParams) ([]image.Image, error)
}

// SamplingParams are the text-generation parameters handed to a backend.
type SamplingParams struct {
	MaxLength   int
	Temperature float64
	// DoSample must be true whenever Temperature is meant to have an effect;
	// greedy decoding ignores temperature.
	DoSample           bool
	PadTokenID         int
	NumReturnSequences int
	// ReturnFullText asks the backend to include the prompt in its output.
	ReturnFullText bool
}

// DiffusionParams are the image-generation parameters handed to a backend.
type DiffusionParams struct {
	NegativePrompt string
	Count          int
}
