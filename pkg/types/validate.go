package types

import (
	"fmt"
	"strings"
)

// ValidationError describes a request rejected before it reaches a model.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Msg }

// Kind reports which kind of model the request targets, or "" when no
// parameters are set.
func (r GenerateRequest) Kind() string {
	switch {
	case r.Text != nil:
		return KindText
	case r.Image != nil:
		return KindImage
	default:
		return ""
	}
}

// Validate checks structural constraints of a request. Temperature is not
// bounded here; the handler applies the positive floor and leaves large values alone.
func (r GenerateRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return &ValidationError{Field: "prompt", Msg: "prompt is required"}
	}
	return r.ValidateParams()
}

// ValidateParams checks the generation parameters only, leaving the prompt
// to the caller.
func (r GenerateRequest) ValidateParams() error {
	if r.Text != nil && r.Image != nil {
		return &ValidationError{Field: "params", Msg: "text and image parameters are mutually exclusive"}
	}
	if r.Text == nil && r.Image == nil {
		return &ValidationError{Field: "params", Msg: "either text or image parameters are required"}
	}
	if r.Text != nil && r.Text.MaxLength <= 0 {
		return &ValidationError{Field: "text.max_length", Msg: fmt.Sprintf("must be positive, got %d", r.Text.MaxLength)}
	}
	if r.Image != nil && (r.Image.Count < 1 || r.Image.Count > MaxImageCount) {
		return &ValidationError{Field: "image.count", Msg: fmt.Sprintf("must be between 1 and %d, got %d", MaxImageCount, r.Image.Count)}
	}
	return nil
}

// ImageFilename returns the download name for the i-th (1-based) generated image.
func ImageFilename(i int) string { return fmt.Sprintf("generated_image_%d.png", i) }
