package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"genstudio/internal/manager"
	"genstudio/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []types.Model
	Status() types.StatusResponse
	Infer(ctx context.Context, req types.GenerateRequest) (manager.Result, error)
	Ready() bool
}

// NewMux builds the HTTP router for svc.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(corsOptions()))
	}

	r.Get("/models", handleModels(svc))
	r.Get("/status", handleStatus(svc))
	r.Post("/generate", handleGenerate(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Clients disable generation while the default model is not loaded.
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

func corsOptions() cors.Options {
	methods := corsAllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}
	headers := corsAllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Content-Type", "X-Log-Level"}
	}
	return cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: methods,
		AllowedHeaders: headers,
		ExposedHeaders: []string{"Content-Disposition", "X-Generation-ID", "X-Request-Id"},
		MaxAge:         300,
	}
}

// handleModels lists the registry.
//
// @Summary  List models
// @Tags     models
// @Produce  json
// @Success  200 {object} types.ModelsResponse
// @Router   /models [get]
func handleModels(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.ModelsResponse{Models: svc.ListModels()})
	}
}

// handleStatus reports handle and service state.
//
// @Summary  Service status
// @Tags     status
// @Produce  json
// @Success  200 {object} types.StatusResponse
// @Router   /status [get]
func handleStatus(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	}
}

// handleGenerate runs one generation.
//
// @Summary  Generate text or images
// @Tags     generate
// @Accept   json
// @Produce  json
// @Produce  png
// @Param    request body types.GenerateRequest true "generation request"
// @Param    format query string false "json (default) or png"
// @Param    index query int false "1-based image index for format=png"
// @Success  200 {object} types.GenerateResponse
// @Failure  400 {object} types.ErrorResponse
// @Failure  404 {object} types.ErrorResponse
// @Failure  502 {object} types.ErrorResponse
// @Failure  503 {object} types.ErrorResponse
// @Router   /generate [post]
func handleGenerate(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			// Oversized bodies also land here; the size limit is not disclosed.
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := req.Validate(); err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		art, err := parseArtifactQuery(r, req)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		lvl := requestLogLevel(r)
		start := time.Now()
		logGenerateStart(r, lvl, req.Model, req.Kind())

		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if generateTimeout > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, time.Duration(generateTimeout)*time.Second)
			defer tcancel()
		}

		res, err := svc.Infer(ctx, req)
		if err != nil {
			// Client went away or the server is shutting down: nobody to answer.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := statusFor(err)
			writeJSONError(w, status, err.Error())
			logGenerateEnd(r, lvl, status, start, err)
			return
		}

		id := uuid.NewString()
		w.Header().Set("X-Generation-ID", id)
		if art.png {
			if art.index > len(res.Images) {
				writeJSONError(w, http.StatusBadGateway, "generated image missing")
				logGenerateEnd(r, lvl, http.StatusBadGateway, start, nil)
				return
			}
			img := res.Images[art.index-1]
			w.Header().Set("Content-Type", "image/png")
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", types.ImageFilename(img.Index)))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(img.PNG)
			artifactDownloadsTotal.Inc()
			logGenerateEnd(r, lvl, http.StatusOK, start, nil)
			return
		}
		writeJSON(w, toResponse(id, res, time.Since(start)))
		logGenerateEnd(r, lvl, http.StatusOK, start, nil)
	}
}

type artifactQuery struct {
	png   bool
	index int
}

// parseArtifactQuery reads ?format=png&index=N. PNG output only applies to
// image requests; index is 1-based, defaults to 1 and may not exceed the
// requested image count.
func parseArtifactQuery(r *http.Request, req types.GenerateRequest) (artifactQuery, error) {
	q := r.URL.Query()
	switch strings.ToLower(q.Get("format")) {
	case "", "json":
		return artifactQuery{}, nil
	case "png":
	default:
		return artifactQuery{}, fmt.Errorf("unsupported format %q", q.Get("format"))
	}
	if req.Image == nil {
		return artifactQuery{}, fmt.Errorf("format=png requires an image request")
	}
	a := artifactQuery{png: true, index: 1}
	if v := q.Get("index"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > req.Image.Count {
			return artifactQuery{}, fmt.Errorf("index must be between 1 and %d", req.Image.Count)
		}
		a.index = n
	}
	return a, nil
}

func toResponse(id string, res manager.Result, dur time.Duration) types.GenerateResponse {
	out := types.GenerateResponse{
		ID:                   id,
		Model:                res.ModelID,
		Kind:                 res.Kind,
		Text:                 res.Text,
		EffectiveTemperature: res.EffectiveTemperature,
		DurationMS:           dur.Milliseconds(),
	}
	for _, img := range res.Images {
		out.Images = append(out.Images, types.Image{
			Index:    img.Index,
			Width:    img.Width,
			Height:   img.Height,
			MimeType: "image/png",
			Filename: types.ImageFilename(img.Index),
			Data:     img.PNG,
		})
	}
	return out
}
