// Package engine defines the boundary to the diffusion inference runtime.
// The manager only ever talks to these interfaces; concrete backends live
// behind them. Capability support is declared explicitly per pipeline rather
// than probed by reflection, so the manager can request flags and learn which
// ones actually applied.
package engine

import (
	"context"
	"errors"
	"image"

	"diffusiond/internal/device"
	"diffusiond/internal/strategy"
	"diffusiond/pkg/types"
)

// ErrUnavailable signals that no real inference backend is compiled in or
// reachable. The orchestrator treats it like any other engine failure and
// falls back to the placeholder path.
var ErrUnavailable = errors.New("inference engine unavailable")

// Params are the concrete sampling parameters for one generation. All values
// are fully resolved by the orchestrator before the call; the engine applies
// them verbatim.
type Params struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Steps          int
	CfgScale       float64
	// Seed in [0, 2^32-1].
	Seed int64
}

// Component is one releasable part of a loaded pipeline. Components are
// released individually, in the order returned by Pipeline.Components, before
// the pipeline itself is closed.
type Component struct {
	Name    string
	Release func() error
}

// Pipeline is a loaded, device-resident model ready to sample.
// Owned exclusively by the lifecycle manager; never aliased outside it.
type Pipeline interface {
	// Generate runs the sampling loop and returns the finished image.
	// Expected to dominate request latency.
	Generate(ctx context.Context, p Params) (image.Image, error)
	// MoveTo relocates the pipeline between cpu and accelerator.
	MoveTo(kind device.Kind) error
	// Supports reports whether the backend can honor a memory-saving flag
	// for this architecture.
	Supports(f strategy.Flag) bool
	// Apply enables a supported flag. Calling Apply for an unsupported flag
	// is an error; callers check Supports first.
	Apply(f strategy.Flag) error
	// Components lists releasable internals in release order: latent
	// decoder first, then conditioning encoder, then the sampler network.
	Components() []Component
	// Close releases the pipeline after its components have been released.
	Close() error
}

// Engine constructs pipelines and owns accelerator bookkeeping. It doubles
// as the device probe's memory source so probe and runtime can never
// disagree about which accelerator they are talking about.
type Engine interface {
	device.AcceleratorSource
	// Construct builds the architecture-specific pipeline for desc with the
	// precision the plan dictates. The pipeline starts on the cpu; the
	// caller moves it to its target device and applies the plan's flags.
	Construct(ctx context.Context, desc types.Descriptor, plan strategy.Plan) (Pipeline, error)
	// Reclaim forces an accelerator memory reclamation pass. Best effort;
	// never fails.
	Reclaim(ctx context.Context)
}
