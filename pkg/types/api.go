package types

// Model kinds.
const (
	KindText  = "text"
	KindImage = "image"
)

// Generation bounds used by the presentation surfaces.
const (
	DefaultMaxLength   = 150
	MinMaxLength       = 50
	MaxMaxLength       = 300
	DefaultTemperature = 0.9
	MinTemperature     = 0.5
	MaxTemperature     = 1.5
	DefaultImageCount  = 1
	MaxImageCount      = 4
)

// Model is a registry entry describing a pretrained model and where to load it from.
type Model struct {
	// Registry identifier used by requests.
	// example: synopsis
	ID string `json:"id" yaml:"id" toml:"id" example:"synopsis"`
	// Human-readable name.
	Name string `json:"name,omitempty" yaml:"name" toml:"name"`
	// Model kind: text or image.
	// example: text
	Kind string `json:"kind" yaml:"kind" toml:"kind" example:"text"`
	// Backend that loads the model: hf, sdwebui, placeholder, llama.
	// example: hf
	Backend string `json:"backend" yaml:"backend" toml:"backend" example:"hf"`
	// Identifier at the model source.
	// example: pierreguillou/gpt2-small-portuguese
	Source string `json:"source,omitempty" yaml:"source" toml:"source" example:"pierreguillou/gpt2-small-portuguese"`
	// Local file or directory for file-backed models.
	Path string `json:"path,omitempty" yaml:"path" toml:"path"`
	// Execution device: cpu, cuda or auto.
	// example: cuda
	Device string `json:"device,omitempty" yaml:"device" toml:"device" example:"cuda"`
	// Diffusion steps for image models (0 lets the backend choose).
	Steps int `json:"steps,omitempty" yaml:"steps" toml:"steps"`
}

// TextParams carries text-generation parameters.
type TextParams struct {
	// Maximum length of the generated sequence, prompt included.
	// example: 150
	MaxLength int `json:"max_length" example:"150"`
	// Sampling temperature; values <= 0 are raised to a small positive floor.
	// example: 0.9
	Temperature float64 `json:"temperature" example:"0.9"`
}

// ImageParams carries image-generation parameters.
type ImageParams struct {
	// Attributes the image model should avoid.
	// example: ugly, blurry, deformed
	NegativePrompt string `json:"negative_prompt,omitempty" example:"ugly, blurry, deformed"`
	// Number of images to generate (1-4).
	// example: 2
	Count int `json:"count" example:"2"`
}

// GenerateRequest is the payload for POST /generate.
type GenerateRequest struct {
	// Optional model identifier. If empty, the server default is used.
	// example: synopsis
	Model string `json:"model,omitempty" example:"synopsis"`
	// Required prompt text.
	// example: Numa colônia lunar, um detetive investiga...
	Prompt string `json:"prompt" example:"Numa colônia lunar, um detetive investiga..."`
	// Text-generation parameters. Mutually exclusive with Image.
	Text *TextParams `json:"text,omitempty"`
	// Image-generation parameters. Mutually exclusive with Text.
	Image *ImageParams `json:"image,omitempty"`
}

// Image is one generated image in a GenerateResponse.
type Image struct {
	// Position in the generated sequence (1-based).
	// example: 1
	Index int `json:"index" example:"1"`
	// example: 512
	Width int `json:"width" example:"512"`
	// example: 512
	Height int `json:"height" example:"512"`
	// example: image/png
	MimeType string `json:"mime_type" example:"image/png"`
	// Suggested download file name.
	// example: generated_image_1.png
	Filename string `json:"filename" example:"generated_image_1.png"`
	// PNG bytes (base64 in JSON).
	Data []byte `json:"data"`
}

// GenerateResponse is returned by POST /generate.
type GenerateResponse struct {
	// Generation id.
	ID string `json:"id"`
	// Model that served the request.
	// example: synopsis
	Model string `json:"model" example:"synopsis"`
	// Kind of result: text or image.
	Kind string `json:"kind"`
	// Generated text, prompt included (text models).
	Text string `json:"text,omitempty"`
	// Temperature actually used for sampling (text models).
	EffectiveTemperature float64 `json:"effective_temperature,omitempty"`
	// Generated images in order (image models).
	Images []Image `json:"images,omitempty"`
	// Wall time spent in the request, milliseconds.
	DurationMS int64 `json:"duration_ms"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	Models []Model `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: prompt is required
	Error string `json:"error" example:"prompt is required"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// HandleStatus summarizes a loaded (or failed) model handle for /status.
type HandleStatus struct {
	// example: synopsis
	ModelID string `json:"model_id" example:"synopsis"`
	// example: text
	Kind string `json:"kind,omitempty" example:"text"`
	// Lifecycle state: loading, ready or error.
	// example: ready
	State string `json:"state" example:"ready"`
	// example: cuda
	Device string `json:"device,omitempty" example:"cuda"`
	// Whether image requests are issued as one batched call.
	SupportsBatchedGeneration bool `json:"supports_batched_generation"`
	// Load completion time (unix seconds).
	LoadedAt int64 `json:"loaded_at_unix,omitempty"`
	// Load failure message, terminal for this model.
	Error string `json:"error,omitempty"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Handles []HandleStatus `json:"handles"`
	// Default model served when requests omit one.
	DefaultModel string `json:"default_model,omitempty"`
	// Overall state: ready when the default model has a handle.
	// example: ready
	State string `json:"state" example:"ready"`
	// Last error observed by the manager (if any).
	LastError string `json:"last_error,omitempty"`
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total successful model loads.
	LoadsTotal uint64 `json:"loads_total"`
	// Total completed generations.
	GenerationsTotal uint64 `json:"generations_total"`
}
