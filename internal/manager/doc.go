// Package manager owns model handles and serves generation requests. It is
// structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters, Close.
//   - config.go: ManagerConfig and backend names; NewWithConfig applies defaults.
//   - types.go: Handle, Result and state types.
//   - errors.go: error types and helpers (IsLoadFailure, IsGenerationFailure, ...).
//   - helpers.go: model lookup, temperature floor.
//   - handles.go: GetHandle/Preload, the load-once handle cache.
//   - inference.go: Infer/Generate, text sampling and image batching policy.
//   - encode.go: PNG encoding of generated images.
//   - status_report.go: Ready/Status reporting.
//   - adapter_*.go: backends (hf, sdwebui, placeholder, llama).
//
// Build tags and runtimes:
//
//   - In-process llama: uses the go-llama.cpp adapter. Enabled with `-tags=llama`.
//     Files: adapter_llama.go, llama_cgo.go. A no-CGO stub exists when the tag
//     is not set: adapter_llama_stub.go.
//
// External packages should treat this package as the orchestration layer and use
// public methods only (New/NewWithConfig, GetHandle, Generate, Infer, Status).
package manager
