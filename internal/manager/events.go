package manager

// Handle lifecycle event names.
const (
	EventLoadStart = "load_start"
	EventLoadReady = "load_ready"
	EventLoadError = "load_error"
)

// Event reports a step in a model handle's lifecycle. Fields carry
// event-specific values: backend on start, device and duration on ready,
// the error message on failure.
type Event struct {
	Name    string
	ModelID string
	Fields  map[string]any
}

// EventPublisher receives events from the manager. Publish is called
// outside the manager lock but on the loading goroutine, so it must not block.
type EventPublisher interface {
	Publish(Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
