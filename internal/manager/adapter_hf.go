package manager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"genstudio/pkg/types"
)

// Default Hugging Face endpoints.
const (
	DefaultHFHubURL       = "https://huggingface.co"
	DefaultHFInferenceURL = "https://api-inference.huggingface.co"
)

// hfAdapter loads text-generation models from a Hugging Face compatible hub
// and runs them through a compatible inference endpoint.
type hfAdapter struct {
	hubURL       string
	inferenceURL string
	token        string
	httpClient   *http.Client
}

// NewHFAdapter constructs a Hugging Face backed text adapter.
func NewHFAdapter(hubURL, inferenceURL, token string, connectTimeout time.Duration) InferenceAdapter {
	if hubURL == "" {
		hubURL = DefaultHFHubURL
	}
	if inferenceURL == "" {
		inferenceURL = DefaultHFInferenceURL
	}
	return &hfAdapter{
		hubURL:       strings.TrimRight(hubURL, "/"),
		inferenceURL: strings.TrimRight(inferenceURL, "/"),
		token:        token,
		httpClient:   newHTTPClient(connectTimeout),
	}
}

// hfModelConfig is the subset of config.json the adapter needs.
// eos_token_id is an int for most models and a list for a few.
type hfModelConfig struct {
	EOSTokenID json.RawMessage `json:"eos_token_id"`
	ModelType  string          `json:"model_type"`
}

func (c hfModelConfig) eosTokenID() int {
	if len(c.EOSTokenID) == 0 || string(c.EOSTokenID) == "null" {
		return -1
	}
	var id int
	if err := json.Unmarshal(c.EOSTokenID, &id); err == nil {
		return id
	}
	var ids []int
	if err := json.Unmarshal(c.EOSTokenID, &ids); err == nil && len(ids) > 0 {
		return ids[0]
	}
	return -1
}

func (a *hfAdapter) Load(ctx context.Context, mdl types.Model) (InferSession, error) {
	source := strings.Trim(strings.TrimSpace(mdl.Source), "/")
	if source == "" {
		return nil, errors.New("model source is empty")
	}
	var cfg hfModelConfig
	cfgURL := a.hubURL + "/" + escapeModelPath(source) + "/resolve/main/config.json"
	if err := doJSON(ctx, a.httpClient, http.MethodGet, cfgURL, a.token, nil, &cfg); err != nil {
		return nil, fmt.Errorf("model source unavailable: %w", err)
	}
	dev := Device(mdl.Device)
	if dev == "" || dev == DeviceAuto {
		dev = DeviceCPU
	}
	return &hfSession{
		adapter: a,
		source:  source,
		caps:    Capabilities{Device: dev, EOSTokenID: cfg.eosTokenID()},
	}, nil
}

type hfSession struct {
	adapter *hfAdapter
	source  string
	caps    Capabilities
}

type hfGenerateParameters struct {
	MaxLength          int     `json:"max_length"`
	Temperature        float64 `json:"temperature"`
	DoSample           bool    `json:"do_sample"`
	PadTokenID         *int    `json:"pad_token_id,omitempty"`
	NumReturnSequences int     `json:"num_return_sequences"`
	ReturnFullText     bool    `json:"return_full_text"`
}

type hfGenerateRequest struct {
	Inputs     string               `json:"inputs"`
	Parameters hfGenerateParameters `json:"parameters"`
	Options    struct {
		WaitForModel bool `json:"wait_for_model"`
	} `json:"options"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

func (s *hfSession) Capabilities() Capabilities { return s.caps }

func (s *hfSession) GenerateText(ctx context.Context, prompt string, p SamplingParams) (string, error) {
	req := hfGenerateRequest{
		Inputs: prompt,
		Parameters: hfGenerateParameters{
			MaxLength:          p.MaxLength,
			Temperature:        p.Temperature,
			DoSample:           p.DoSample,
			NumReturnSequences: p.NumReturnSequences,
			ReturnFullText:     p.ReturnFullText,
		},
	}
	if p.PadTokenID >= 0 {
		pad := p.PadTokenID
		req.Parameters.PadTokenID = &pad
	}
	req.Options.WaitForModel = true

	var out []hfGeneration
	u := s.adapter.inferenceURL + "/models/" + escapeModelPath(s.source)
	if err := doJSON(ctx, s.adapter.httpClient, http.MethodPost, u, s.adapter.token, req, &out); err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", errors.New("empty generation response")
	}
	return out[0].GeneratedText, nil
}

func (s *hfSession) Close() error {
	s.adapter.httpClient.CloseIdleConnections()
	return nil
}

// escapeModelPath escapes each segment of an "org/name" identifier.
func escapeModelPath(id string) string {
	parts := strings.Split(id, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
