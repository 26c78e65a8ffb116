package manager

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"diffusiond/internal/device"
	"diffusiond/internal/engine"
	"diffusiond/internal/registry"
	"diffusiond/internal/strategy"
	"diffusiond/pkg/types"
)

// Manager owns the single active model instance. All switches and
// generations serialize on mu; see the package doc for the concurrency
// contract.
type Manager struct {
	mu sync.Mutex

	registry  *registry.Registry
	engine    engine.Engine
	prober    *device.Prober
	stratCfg  strategy.Config
	log       zerolog.Logger
	publisher EventPublisher

	active  *ActiveInstance
	state   State
	lastErr string

	startTime        time.Time
	largeUnloadPause time.Duration
	randSeed         func() int64

	switchesTotal    uint64
	generationsTotal uint64
	fallbacksTotal   uint64
}

// Ready reports whether a model is loaded and usable. Generation works
// either way (the placeholder path needs no model); readiness describes the
// engine path only.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateReady && m.active != nil
}

// ActiveModelName returns the name of the loaded model, or empty.
func (m *Manager) ActiveModelName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return ""
	}
	return m.active.Descriptor.Name
}

// ListModels returns the current catalog. Lock-free: the registry swaps its
// catalog atomically.
func (m *Manager) ListModels() []types.Descriptor {
	return m.registry.List()
}

// Refresh re-runs model discovery and restores the loaded flag of the active
// model, then returns the new catalog.
func (m *Manager) Refresh() []types.Descriptor {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := ""
	if m.active != nil {
		active = m.active.Descriptor.Name
	}
	m.registry.Discover()
	m.registry.MarkLoaded(active)
	return m.registry.List()
}
