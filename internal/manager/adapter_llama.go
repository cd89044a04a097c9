//go:build llama

package manager

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"

	"genstudio/pkg/types"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// llamaAdapter holds global config used to load local GGUF models in-process.
type llamaAdapter struct {
	ctxSize int
	threads int
}

// NewLlamaAdapter constructs the in-process llama adapter. Non-positive values
// select a 2048-token context and one thread per CPU.
func NewLlamaAdapter(ctxSize, threads int) InferenceAdapter {
	if ctxSize <= 0 {
		ctxSize = 2048
	}
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	return &llamaAdapter{ctxSize: ctxSize, threads: threads}
}

// llamaSession owns the loaded model. go-llama.cpp models are not safe for
// concurrent Predict calls, hence the mutex.
type llamaSession struct {
	mu      sync.Mutex
	model   *llama.LLama
	threads int
	device  Device
}

func (a *llamaAdapter) Load(ctx context.Context, mdl types.Model) (InferSession, error) {
	if strings.TrimSpace(mdl.Path) == "" {
		return nil, errors.New("model path is empty")
	}
	mo := []llama.ModelOption{
		llama.SetContext(a.ctxSize),
	}
	dev := DeviceCPU
	if Device(mdl.Device) == DeviceCUDA {
		mo = append(mo, llama.SetGPULayers(999))
		dev = DeviceCUDA
	}
	m, err := llama.New(mdl.Path, mo...)
	if err != nil {
		return nil, err
	}
	return &llamaSession{model: m, threads: a.threads, device: dev}, nil
}

// Capabilities reports no EOS id: llama.cpp stops on the model's own EOS token.
func (s *llamaSession) Capabilities() Capabilities {
	return Capabilities{Device: s.device, EOSTokenID: -1}
}

func (s *llamaSession) GenerateText(ctx context.Context, prompt string, p SamplingParams) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return "", errors.New("llama model not initialized")
	}
	s.model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	})
	text, err := s.model.Predict(prompt, mapSamplingParamsToPredictOptions(p, s.threads)...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	if p.ReturnFullText {
		return prompt + text, nil
	}
	return text, nil
}

func (s *llamaSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model != nil {
		s.model.Free()
		s.model = nil
	}
	return nil
}

// mapSamplingParamsToPredictOptions converts sampling params into go-llama.cpp options.
// Temperature only matters when sampling; greedy decoding is temperature 0.
func mapSamplingParamsToPredictOptions(p SamplingParams, threads int) []llama.PredictOption {
	temp := float32(p.Temperature)
	if !p.DoSample {
		temp = 0
	}
	return []llama.PredictOption{
		llama.SetTokens(max(1, p.MaxLength)),
		llama.SetThreads(max(1, threads)),
		llama.SetTopK(llama.DefaultOptions.TopK),
		llama.SetTopP(llama.DefaultOptions.TopP),
		llama.SetTemperature(temp),
		llama.SetPenalty(llama.DefaultOptions.Penalty),
	}
}
