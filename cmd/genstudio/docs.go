package main

// General API documentation for swaggo. Regenerate with `swag init -g cmd/genstudio/docs.go -o internal/httpapi`.
//
// @title           genstudio API
// @version         1.0
// @description     HTTP API for text and image generation with pretrained models.
//
// @contact.name   genstudio maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
