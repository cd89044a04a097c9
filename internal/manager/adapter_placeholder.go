package manager

import (
	"context"
	"fmt"
	"image"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"

	"genstudio/internal/common/fsutil"
	"genstudio/pkg/types"
)

// placeholderAdapter serves image models backed by a directory of sample
// images, picked at random. It stands in for a fine-tuned model in demos.
type placeholderAdapter struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPlaceholderAdapter constructs the placeholder image adapter. A nil rng
// uses a randomly seeded source.
func NewPlaceholderAdapter(rng *rand.Rand) InferenceAdapter {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &placeholderAdapter{rng: rng}
}

var placeholderExts = []string{".jpg", ".jpeg", ".png"}

func (a *placeholderAdapter) Load(ctx context.Context, mdl types.Model) (InferSession, error) {
	dir := mdl.Path
	if dir == "" {
		dir = mdl.Source
	}
	dir, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	files, err := fsutil.FilesWithExt(dir, placeholderExts...)
	if err != nil {
		return nil, fmt.Errorf("read placeholder dir: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no placeholder images found in %s", dir)
	}
	return &placeholderSession{adapter: a, files: files}, nil
}

type placeholderSession struct {
	adapter *placeholderAdapter
	files   []string
}

func (s *placeholderSession) Capabilities() Capabilities {
	return Capabilities{Device: DeviceCPU, BatchedGeneration: true, EOSTokenID: -1}
}

// pick chooses n files with replacement.
func (s *placeholderSession) pick(n int) []string {
	s.adapter.mu.Lock()
	defer s.adapter.mu.Unlock()
	out := make([]string, n)
	for i := range out {
		out[i] = s.files[s.adapter.rng.IntN(len(s.files))]
	}
	return out
}

// GenerateImages ignores the prompt and negative prompt.
func (s *placeholderSession) GenerateImages(ctx context.Context, prompt string, p DiffusionParams) ([]image.Image, error) {
	if p.Count <= 0 {
		return nil, nil
	}
	imgs := make([]image.Image, 0, p.Count)
	for _, path := range s.pick(p.Count) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := decodeImageFile(path)
		if err != nil {
			return nil, err
		}
		imgs = append(imgs, img)
	}
	return imgs, nil
}

func (s *placeholderSession) Close() error { return nil }

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}
