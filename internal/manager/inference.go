package manager

import (
	"context"
	"fmt"
	"image"
	"time"

	"genstudio/pkg/types"
)

// Infer is the caller path used by the HTTP and CLI surfaces: it validates the
// request, resolves the model handle and generates. Invalid requests never
// reach Generate.
func (m *Manager) Infer(ctx context.Context, req types.GenerateRequest) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, ErrInvalidRequest(err)
	}
	h, err := m.GetHandle(ctx, req.Model)
	if err != nil {
		return Result{}, err
	}
	return m.Generate(ctx, h, req)
}

// Generate runs one generation against a loaded handle. It performs no
// retries; any backend failure is returned as a GenerationFailure.
func (m *Manager) Generate(ctx context.Context, h *Handle, req types.GenerateRequest) (Result, error) {
	if h == nil || h.session == nil {
		return Result{}, ErrHandleUnavailable
	}
	if err := req.ValidateParams(); err != nil {
		return Result{}, ErrInvalidRequest(err)
	}
	kind := req.Kind()
	if kind != h.Kind {
		return Result{}, ErrInvalidRequest(fmt.Errorf("model %s serves %s requests, got %q", h.ID, h.Kind, kind))
	}

	start := time.Now()
	var (
		res Result
		err error
	)
	switch kind {
	case types.KindText:
		res, err = m.generateText(ctx, h, req.Prompt, *req.Text)
	case types.KindImage:
		res, err = m.generateImages(ctx, h, req.Prompt, *req.Image)
	}
	status := "ok"
	if err != nil {
		status = "error"
		m.mu.Lock()
		m.lastErr = err.Error()
		m.mu.Unlock()
		m.log.Error().Str("event", "generate_error").Str("model", h.ID).Str("kind", kind).Err(err).Msg("generation failed")
	} else {
		m.generationsTotal.Add(1)
		m.log.Debug().Str("event", "generate_done").Str("model", h.ID).Str("kind", kind).Dur("dur", time.Since(start)).Msg("generation done")
	}
	generationsTotal.WithLabelValues(kind, status).Inc()
	generationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	return res, err
}

func (m *Manager) generateText(ctx context.Context, h *Handle, prompt string, p types.TextParams) (Result, error) {
	ts, ok := h.session.(TextSession)
	if !ok {
		return Result{}, ErrHandleUnavailable
	}
	params := SamplingParams{
		MaxLength:          p.MaxLength,
		Temperature:        EffectiveTemperature(p.Temperature),
		DoSample:           true,
		PadTokenID:         h.EOSTokenID,
		NumReturnSequences: 1,
		ReturnFullText:     true,
	}
	text, err := ts.GenerateText(ctx, prompt, params)
	if err != nil {
		return Result{}, &generationError{modelID: h.ID, cause: err}
	}
	return Result{
		ModelID:              h.ID,
		Kind:                 types.KindText,
		Text:                 text,
		EffectiveTemperature: params.Temperature,
	}, nil
}

func (m *Manager) generateImages(ctx context.Context, h *Handle, prompt string, p types.ImageParams) (Result, error) {
	is, ok := h.session.(ImageSession)
	if !ok {
		return Result{}, ErrHandleUnavailable
	}
	k := p.Count
	var imgs []image.Image
	if h.SupportsBatchedGeneration {
		out, err := is.GenerateImages(ctx, prompt, DiffusionParams{NegativePrompt: p.NegativePrompt, Count: k})
		if err != nil {
			return Result{}, &generationError{modelID: h.ID, cause: err}
		}
		imgs = out
	} else {
		// One image per call bounds peak memory on devices without batching.
		imgs = make([]image.Image, 0, k)
		for i := 0; i < k; i++ {
			out, err := is.GenerateImages(ctx, prompt, DiffusionParams{NegativePrompt: p.NegativePrompt, Count: 1})
			if err != nil {
				return Result{}, &generationError{modelID: h.ID, cause: err}
			}
			if len(out) == 0 {
				return Result{}, &generationError{modelID: h.ID, cause: fmt.Errorf("image %d: backend returned no image", i+1)}
			}
			imgs = append(imgs, out[0])
		}
	}
	if len(imgs) != k {
		return Result{}, &generationError{modelID: h.ID, cause: fmt.Errorf("backend returned %d images, want %d", len(imgs), k)}
	}

	encoded := make([]EncodedImage, 0, k)
	for i, img := range imgs {
		ei, err := encodePNG(i+1, img)
		if err != nil {
			return Result{}, &generationError{modelID: h.ID, cause: err}
		}
		encoded = append(encoded, ei)
	}
	imagesGeneratedTotal.Add(float64(len(encoded)))
	return Result{ModelID: h.ID, Kind: types.KindImage, Images: encoded}, nil
}
