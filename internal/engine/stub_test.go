package engine

import (
	"context"
	"errors"
	"testing"

	"diffusiond/internal/strategy"
	"diffusiond/pkg/types"
)

func TestStubConstructFailsFast(t *testing.T) {
	eng := NewUnavailable()
	_, err := eng.Construct(context.Background(), types.Descriptor{Name: "m", Arch: types.ArchSD15}, strategy.Plan{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestStubReportsNoAccelerator(t *testing.T) {
	eng := NewUnavailable()
	if _, ok := eng.AcceleratorStats(); ok {
		t.Fatalf("stub must not report an accelerator")
	}
}

func TestStubConstructHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewUnavailable().Construct(ctx, types.Descriptor{Name: "m"}, strategy.Plan{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}
