//go:build !llama

package manager

// This file provides a no-CGO stub for the llama adapter. It is compiled when
// the 'llama' build tag is NOT set, keeping default builds and CI CGO-free.
// The real adapter lives in adapter_llama.go (tagged 'llama').

import (
	"context"

	"genstudio/pkg/types"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = false

type llamaAdapter struct {
	ctxSize int
	threads int
}

// NewLlamaAdapter returns an adapter whose loads fail with ErrDependencyUnavailable.
func NewLlamaAdapter(ctxSize, threads int) InferenceAdapter {
	return &llamaAdapter{ctxSize: ctxSize, threads: threads}
}

// Load fails fast: llama runtime not available in this build.
func (a *llamaAdapter) Load(ctx context.Context, mdl types.Model) (InferSession, error) {
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}
