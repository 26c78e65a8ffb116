package manager

import (
	"diffusiond/internal/device"
	"diffusiond/internal/engine"
	"diffusiond/internal/strategy"
	"diffusiond/pkg/types"
)

// State represents the lifecycle state of the manager.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// ActiveInstance is the single loaded model. Created by a successful load,
// destroyed by unload or by a subsequent load of a different descriptor. The
// pipeline handle is owned exclusively by the manager and never escapes it.
type ActiveInstance struct {
	Descriptor types.Descriptor
	Device     device.Kind
	Precision  strategy.Precision
	// Flags the engine actually applied; a subset of the plan's flags.
	AppliedFlags []strategy.Flag

	pipeline engine.Pipeline
}
