package engine

import (
	"context"
	"fmt"

	"diffusiond/internal/device"
	"diffusiond/internal/strategy"
	"diffusiond/pkg/types"
)

// stubEngine is the default backend when no native diffusion runtime is
// linked in. It refuses to construct pipelines rather than mocking them, so
// production binaries without a runtime serve placeholder images instead of
// fake "real" ones. Mirrors the fail-fast shape of the native backends.
type stubEngine struct{}

// NewUnavailable returns an Engine with no runtime behind it.
func NewUnavailable() Engine { return stubEngine{} }

func (stubEngine) AcceleratorStats() (device.Stats, bool) {
	// No runtime, no accelerator visibility.
	return device.Stats{}, false
}

func (stubEngine) Construct(ctx context.Context, desc types.Descriptor, plan strategy.Plan) (Pipeline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("construct %s (%s): %w", desc.Name, desc.Arch, ErrUnavailable)
}

func (stubEngine) Reclaim(ctx context.Context) {}
