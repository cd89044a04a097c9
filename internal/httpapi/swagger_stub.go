//go:build !swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
)

// MountSwagger does nothing in default builds; -tags=swagger serves the
// generated API docs under /swagger/.
func MountSwagger(r chi.Router) {}
