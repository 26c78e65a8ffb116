package manager

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"diffusiond/internal/device"
	"diffusiond/internal/engine"
	"diffusiond/internal/registry"
	"diffusiond/internal/strategy"
	"diffusiond/pkg/types"
)

// fakePipeline records lifecycle calls and renders blank images.
type fakePipeline struct {
	device   device.Kind
	supports map[strategy.Flag]bool
	applied  []strategy.Flag
	released []string
	closed   bool
	genErr   error
	moveErr  error
}

func (p *fakePipeline) Generate(ctx context.Context, params engine.Params) (image.Image, error) {
	if p.genErr != nil {
		return nil, p.genErr
	}
	return image.NewNRGBA(image.Rect(0, 0, params.Width, params.Height)), nil
}

func (p *fakePipeline) MoveTo(kind device.Kind) error {
	if p.moveErr != nil {
		return p.moveErr
	}
	p.device = kind
	return nil
}

func (p *fakePipeline) Supports(f strategy.Flag) bool {
	if p.supports == nil {
		return true
	}
	return p.supports[f]
}

func (p *fakePipeline) Apply(f strategy.Flag) error {
	p.applied = append(p.applied, f)
	return nil
}

func (p *fakePipeline) Components() []engine.Component {
	rel := func(name string) func() error {
		return func() error {
			p.released = append(p.released, name)
			return nil
		}
	}
	return []engine.Component{
		{Name: "vae_decoder", Release: rel("vae_decoder")},
		{Name: "text_encoder", Release: rel("text_encoder")},
		{Name: "unet", Release: rel("unet")},
	}
}

func (p *fakePipeline) Close() error {
	p.closed = true
	return nil
}

// fakeEngine hands out fakePipelines and counts reclamation passes.
type fakeEngine struct {
	stats        device.Stats
	hasAccel     bool
	constructErr error
	reclaims     int
	built        []*fakePipeline
	// supports restricts flag support on constructed pipelines; nil means
	// everything is supported.
	supports map[strategy.Flag]bool
}

func (e *fakeEngine) AcceleratorStats() (device.Stats, bool) { return e.stats, e.hasAccel }

func (e *fakeEngine) Construct(ctx context.Context, desc types.Descriptor, plan strategy.Plan) (engine.Pipeline, error) {
	if e.constructErr != nil {
		return nil, e.constructErr
	}
	p := &fakePipeline{device: device.KindCPU, supports: e.supports}
	e.built = append(e.built, p)
	return p, nil
}

func (e *fakeEngine) Reclaim(ctx context.Context) { e.reclaims++ }

// lastPipeline returns the most recently constructed pipeline.
func (e *fakeEngine) lastPipeline(t *testing.T) *fakePipeline {
	t.Helper()
	if len(e.built) == 0 {
		t.Fatalf("no pipeline constructed")
	}
	return e.built[len(e.built)-1]
}

type fakeSystem struct {
	free float64
	ok   bool
}

func (f fakeSystem) SystemFreeGB() (float64, bool) { return f.free, f.ok }

// writeCheckpoint drops a recognizable checkpoint file into dir.
func writeCheckpoint(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("weights "+name), 0o644); err != nil {
		t.Fatalf("write checkpoint: %v", err)
	}
}

type testEnv struct {
	mgr *Manager
	eng *fakeEngine
	reg *registry.Registry
	pub *MemoryPublisher
	sys *fakeSystem
}

// newTestEnv wires a manager against fakes. checkpoints are placed in a temp
// models dir before discovery.
func newTestEnv(t *testing.T, checkpoints ...string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	for _, c := range checkpoints {
		writeCheckpoint(t, dir, c)
	}
	reg := registry.New(dir, zerolog.Nop())
	reg.Discover()

	eng := &fakeEngine{}
	sys := &fakeSystem{free: 16, ok: true}
	pub := NewMemoryPublisher()
	prober := device.NewProberWithSystem(eng, sys, device.Thresholds{}, zerolog.Nop())
	mgr := NewWithConfig(ManagerConfig{
		Registry:         reg,
		Engine:           eng,
		Prober:           prober,
		Logger:           zerolog.Nop(),
		Publisher:        pub,
		LargeUnloadPause: time.Millisecond,
	})
	return &testEnv{mgr: mgr, eng: eng, reg: reg, pub: pub, sys: sys}
}

// loadedNames returns the names of descriptors currently marked loaded.
func loadedNames(reg *registry.Registry) []string {
	var out []string
	for _, d := range reg.List() {
		if d.Loaded {
			out = append(out, d.Name)
		}
	}
	return out
}

func seenEvent(pub *MemoryPublisher, name string) bool {
	for _, e := range pub.Events() {
		if e.Name == name {
			return true
		}
	}
	return false
}
