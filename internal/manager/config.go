package manager

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"diffusiond/internal/device"
	"diffusiond/internal/engine"
	"diffusiond/internal/registry"
	"diffusiond/internal/strategy"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	// Pause between the two reclamation passes of a large-model unload.
	// Large models leave memory fragments a single pass does not reclaim.
	defaultLargeUnloadPause = 500 * time.Millisecond
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Registry *registry.Registry
	Engine   engine.Engine
	// Prober overrides the default device prober (built from Engine and
	// Device thresholds). Mostly for tests.
	Prober    *device.Prober
	Device    device.Thresholds
	Strategy  strategy.Config
	Logger    zerolog.Logger
	Publisher EventPublisher
	// LargeUnloadPause overrides the pause between large-unload reclamation
	// passes. Zero means the package default.
	LargeUnloadPause time.Duration
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		registry:  cfg.Registry,
		engine:    cfg.Engine,
		stratCfg:  cfg.Strategy.WithDefaults(),
		log:       cfg.Logger,
		publisher: cfg.Publisher,
		state:     StateIdle,
		startTime: time.Now(),
	}
	if m.engine == nil {
		m.engine = engine.NewUnavailable()
	}
	if m.registry == nil {
		m.registry = registry.New("", cfg.Logger)
		m.registry.Discover()
	}
	m.prober = cfg.Prober
	if m.prober == nil {
		m.prober = device.NewProber(m.engine, cfg.Device, cfg.Logger)
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	m.largeUnloadPause = cfg.LargeUnloadPause
	if m.largeUnloadPause <= 0 {
		m.largeUnloadPause = defaultLargeUnloadPause
	}
	m.randSeed = func() int64 { return rand.Int63n(1 << 32) }
	return m
}

// New constructs a Manager with the given registry and engine and default
// policy everywhere else.
func New(reg *registry.Registry, eng engine.Engine, log zerolog.Logger) *Manager {
	return NewWithConfig(ManagerConfig{Registry: reg, Engine: eng, Logger: log})
}
