//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// docTemplate is a hand-maintained OpenAPI document for the HTTP API.
const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "{{.Title}}",
    "description": "{{escape .Description}}",
    "version": "{{.Version}}"
  },
  "basePath": "{{.BasePath}}",
  "schemes": {{ marshal .Schemes }},
  "paths": {
    "/models": {"get": {"summary": "List models", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
    "/status": {"get": {"summary": "Service status", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
    "/generate": {"post": {
      "summary": "Generate text or images",
      "consumes": ["application/json"],
      "produces": ["application/json", "image/png"],
      "parameters": [
        {"in": "body", "name": "request", "required": true, "schema": {"type": "object"}},
        {"in": "query", "name": "format", "type": "string", "enum": ["json", "png"]},
        {"in": "query", "name": "index", "type": "integer"}
      ],
      "responses": {
        "200": {"description": "OK"},
        "400": {"description": "Invalid request"},
        "404": {"description": "Model not found"},
        "502": {"description": "Generation failed"},
        "503": {"description": "Model unavailable"}
      }
    }},
    "/healthz": {"get": {"summary": "Liveness", "responses": {"200": {"description": "ok"}}}},
    "/readyz": {"get": {"summary": "Readiness", "responses": {"200": {"description": "ready"}, "503": {"description": "loading"}}}}
  }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "genstudio API",
	Description:      "HTTP API for text and image generation with pretrained models.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// MountSwagger serves the Swagger UI under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
