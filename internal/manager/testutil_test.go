package manager

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"genstudio/pkg/types"
)

// fakeAdapter is a lightweight in-memory adapter used for tests.
type fakeAdapter struct {
	loads     atomic.Int32
	loadErr   error
	loadDelay time.Duration
	// newSession builds the session returned by Load.
	newSession func(mdl types.Model) InferSession
}

func (f *fakeAdapter) Load(ctx context.Context, mdl types.Model) (InferSession, error) {
	f.loads.Add(1)
	if f.loadDelay > 0 {
		time.Sleep(f.loadDelay)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.newSession(mdl), nil
}

// fakeTextSession echoes the prompt followed by a fixed continuation.
type fakeTextSession struct {
	mu     sync.Mutex
	eos    int
	genErr error
	calls  []SamplingParams
	closed bool
}

func (s *fakeTextSession) Capabilities() Capabilities {
	return Capabilities{Device: DeviceCPU, EOSTokenID: s.eos}
}

func (s *fakeTextSession) GenerateText(ctx context.Context, prompt string, p SamplingParams) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, p)
	s.mu.Unlock()
	if s.genErr != nil {
		return "", s.genErr
	}
	return prompt + " e descobre uma conspiração.", nil
}

func (s *fakeTextSession) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *fakeTextSession) lastCall(t *testing.T) SamplingParams {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		t.Fatalf("expected a GenerateText call")
	}
	return s.calls[len(s.calls)-1]
}

// fakeImageSession returns solid images of a fixed size.
type fakeImageSession struct {
	mu      sync.Mutex
	batched bool
	width   int
	height  int
	genErr  error
	// short makes every call return one image fewer than requested.
	short bool
	calls []DiffusionParams
}

func (s *fakeImageSession) Capabilities() Capabilities {
	dev := DeviceCPU
	if s.batched {
		dev = DeviceCUDA
	}
	return Capabilities{Device: dev, BatchedGeneration: s.batched, EOSTokenID: -1}
}

func (s *fakeImageSession) GenerateImages(ctx context.Context, prompt string, p DiffusionParams) ([]image.Image, error) {
	s.mu.Lock()
	s.calls = append(s.calls, p)
	s.mu.Unlock()
	if s.genErr != nil {
		return nil, s.genErr
	}
	n := p.Count
	if s.short {
		n--
	}
	out := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, solidImage(s.width, s.height, color.RGBA{R: uint8(40 * i), G: 128, B: 200, A: 255}))
	}
	return out, nil
}

func (s *fakeImageSession) Close() error { return nil }

func (s *fakeImageSession) callCounts() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.calls))
	for i, c := range s.calls {
		out[i] = c.Count
	}
	return out
}

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// newTextManager wires a manager with a single text model "synopsis".
func newTextManager(t *testing.T, sess *fakeTextSession) (*Manager, *fakeAdapter) {
	t.Helper()
	fa := &fakeAdapter{newSession: func(types.Model) InferSession { return sess }}
	m := NewWithConfig(ManagerConfig{
		Registry:     []types.Model{{ID: "synopsis", Kind: types.KindText, Backend: "fake"}},
		DefaultModel: "synopsis",
		Adapters:     map[string]InferenceAdapter{"fake": fa},
	})
	return m, fa
}

// newImageManager wires a manager with a single image model "persona".
func newImageManager(t *testing.T, sess *fakeImageSession) (*Manager, *fakeAdapter) {
	t.Helper()
	fa := &fakeAdapter{newSession: func(types.Model) InferSession { return sess }}
	m := NewWithConfig(ManagerConfig{
		Registry:     []types.Model{{ID: "persona", Kind: types.KindImage, Backend: "fake"}},
		DefaultModel: "persona",
		Adapters:     map[string]InferenceAdapter{"fake": fa},
	})
	return m, fa
}

var errBoom = errors.New("CUDA out of memory")

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}
