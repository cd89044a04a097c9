package manager

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"
	"time"

	"genstudio/pkg/types"
)

// DefaultSDWebUIURL is the default Stable Diffusion WebUI address.
const DefaultSDWebUIURL = "http://127.0.0.1:7860"

// sdWebUIAdapter drives a Stable Diffusion WebUI server through its /sdapi/v1 API.
type sdWebUIAdapter struct {
	baseURL    string
	httpClient *http.Client
}

// NewSDWebUIAdapter constructs an image adapter for a Stable Diffusion WebUI server.
func NewSDWebUIAdapter(baseURL string, connectTimeout time.Duration) InferenceAdapter {
	if baseURL == "" {
		baseURL = DefaultSDWebUIURL
	}
	return &sdWebUIAdapter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(connectTimeout),
	}
}

type sdModel struct {
	Title     string `json:"title"`
	ModelName string `json:"model_name"`
	Hash      string `json:"hash"`
}

type sdMemory struct {
	CUDA map[string]any `json:"cuda"`
}

// matchSDModel finds the checkpoint for a source identifier such as
// "runwayml/stable-diffusion-v1-5". Exact title/name matches win over
// substring matches on the last path segment.
func matchSDModel(models []sdModel, source string) (sdModel, bool) {
	for _, m := range models {
		if m.Title == source || m.ModelName == source {
			return m, true
		}
	}
	needle := strings.ToLower(source[strings.LastIndex(source, "/")+1:])
	if needle == "" {
		return sdModel{}, false
	}
	for _, m := range models {
		if strings.Contains(strings.ToLower(m.Title), needle) || strings.Contains(strings.ToLower(m.ModelName), needle) {
			return m, true
		}
	}
	return sdModel{}, false
}

func (a *sdWebUIAdapter) Load(ctx context.Context, mdl types.Model) (InferSession, error) {
	source := strings.TrimSpace(mdl.Source)
	if source == "" {
		return nil, errors.New("model source is empty")
	}
	var models []sdModel
	if err := doJSON(ctx, a.httpClient, http.MethodGet, a.baseURL+"/sdapi/v1/sd-models", "", nil, &models); err != nil {
		return nil, fmt.Errorf("model source unavailable: %w", err)
	}
	ckpt, ok := matchSDModel(models, source)
	if !ok {
		return nil, fmt.Errorf("checkpoint %q not available on %s", source, a.baseURL)
	}
	opts := map[string]any{"sd_model_checkpoint": ckpt.Title}
	if err := doJSON(ctx, a.httpClient, http.MethodPost, a.baseURL+"/sdapi/v1/options", "", opts, nil); err != nil {
		return nil, fmt.Errorf("select checkpoint %q: %w", ckpt.Title, err)
	}
	dev, err := a.device(ctx, Device(mdl.Device))
	if err != nil {
		return nil, err
	}
	return &sdWebUISession{
		adapter: a,
		steps:   mdl.Steps,
		caps:    Capabilities{Device: dev, BatchedGeneration: dev == DeviceCUDA, EOSTokenID: -1},
	}, nil
}

// device resolves "auto" by asking the server whether CUDA is usable.
func (a *sdWebUIAdapter) device(ctx context.Context, d Device) (Device, error) {
	switch d {
	case DeviceCUDA, DeviceCPU:
		return d, nil
	case "", DeviceAuto:
	default:
		return "", fmt.Errorf("unknown device %q", d)
	}
	var mem sdMemory
	if err := doJSON(ctx, a.httpClient, http.MethodGet, a.baseURL+"/sdapi/v1/memory", "", nil, &mem); err != nil {
		return "", fmt.Errorf("probe device: %w", err)
	}
	if sys, ok := mem.CUDA["system"].(map[string]any); ok {
		if _, failed := sys["error"]; !failed {
			return DeviceCUDA, nil
		}
	}
	return DeviceCPU, nil
}

type sdWebUISession struct {
	adapter *sdWebUIAdapter
	steps   int
	caps    Capabilities
}

type sdTxt2ImgRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	BatchSize      int    `json:"batch_size"`
	NIter          int    `json:"n_iter"`
	Steps          int    `json:"steps,omitempty"`
}

type sdTxt2ImgResponse struct {
	Images []string `json:"images"`
}

func (s *sdWebUISession) Capabilities() Capabilities { return s.caps }

func (s *sdWebUISession) GenerateImages(ctx context.Context, prompt string, p DiffusionParams) ([]image.Image, error) {
	req := sdTxt2ImgRequest{
		Prompt:         prompt,
		NegativePrompt: p.NegativePrompt,
		BatchSize:      p.Count,
		NIter:          1,
		Steps:          s.steps,
	}
	var out sdTxt2ImgResponse
	if err := doJSON(ctx, s.adapter.httpClient, http.MethodPost, s.adapter.baseURL+"/sdapi/v1/txt2img", "", req, &out); err != nil {
		return nil, err
	}
	imgs := make([]image.Image, 0, len(out.Images))
	for i, enc := range out.Images {
		img, err := decodeBase64Image(enc)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i+1, err)
		}
		imgs = append(imgs, img)
	}
	// With batch_size > 1 the WebUI may put a grid image first; keep the last Count.
	if len(imgs) > p.Count {
		imgs = imgs[len(imgs)-p.Count:]
	}
	return imgs, nil
}

func (s *sdWebUISession) Close() error {
	s.adapter.httpClient.CloseIdleConnections()
	return nil
}

// decodeBase64Image decodes a base64 image, tolerating a data: URL prefix.
func decodeBase64Image(enc string) (image.Image, error) {
	if i := strings.Index(enc, ","); strings.HasPrefix(enc, "data:") && i >= 0 {
		enc = enc[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
