package manager

import "time"

// State represents lifecycle state of a model handle.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Device names an execution device reported by a backend.
type Device string

const (
	DeviceCPU  Device = "cpu"
	DeviceCUDA Device = "cuda"
	DeviceAuto Device = "auto"
)

// Handle is a loaded model ready to accept inference calls. Handles are owned
// by the Manager, created once per model id and never mutated afterwards.
type Handle struct {
	ID     string
	Kind   string
	Device Device
	// SupportsBatchedGeneration selects one batched image call over a loop of
	// single-image calls.
	SupportsBatchedGeneration bool
	// EOSTokenID is the end-of-sequence token from the model's own
	// configuration, used as the padding token for text sampling. -1 if unknown.
	EOSTokenID int
	LoadedAt   time.Time

	session InferSession
}

// loadEntry is the cached outcome of a load: exactly one of handle or err is set.
type loadEntry struct {
	handle *Handle
	err    error
}

// EncodedImage is one generated image, PNG encoded.
type EncodedImage struct {
	Index  int // 1-based
	Width  int
	Height int
	PNG    []byte
}

// Result is the outcome of a successful generation.
type Result struct {
	ModelID string
	Kind    string
	// Text includes the prompt as prefix.
	Text                 string
	EffectiveTemperature float64
	Images               []EncodedImage
}
