package manager

// Event represents a manager lifecycle event.
// Minimal and stable: name + model name and optional fields via key/values.
type Event struct {
	Name   string
	Model  string
	Fields map[string]any
}

// Event names published by the manager.
const (
	EventSwitchStart      = "switch_start"
	EventSwitchDone       = "switch_done"
	EventSwitchFail       = "switch_fail"
	EventUnloadStart      = "unload_start"
	EventUnloadDone       = "unload_done"
	EventGenerateFallback = "generate_fallback"
)

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
