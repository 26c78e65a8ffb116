package manager

import (
	"context"
	"fmt"
	"time"

	"diffusiond/internal/device"
	"diffusiond/internal/strategy"
	"diffusiond/pkg/types"
)

// SwitchTo unloads the current model (if any) and loads the named one as a
// single serialized operation.
//
// Ordering matters: the descriptor lookup and the resource precheck both run
// before any teardown, so a doomed switch never destroys a working instance.
// A failure during construction leaves the manager with no model loaded
// rather than silently re-loading the previous one.
func (m *Manager) SwitchTo(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.switchLocked(ctx, name)
}

// Load is SwitchTo under its lifecycle name: loading a model while another
// is active is a switch.
func (m *Manager) Load(ctx context.Context, name string) error {
	return m.SwitchTo(ctx, name)
}

// Unload releases the active instance. No-op when nothing is loaded.
func (m *Manager) Unload(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return
	}
	m.releaseLocked(ctx)
	m.state = StateIdle
}

func (m *Manager) switchLocked(ctx context.Context, name string) error {
	// Step 1: resolve. Fail fast, no state touched.
	desc, ok := m.registry.Get(name)
	if !ok {
		return ErrModelNotFound(name)
	}
	if m.active != nil && m.active.Descriptor.Name == name {
		return nil
	}
	m.publisher.Publish(Event{Name: EventSwitchStart, Model: name})

	// Step 2: plan placement and run the resource precheck against fresh
	// readings. Still no state touched.
	prof := m.prober.Profile()
	plan := strategy.Select(desc.Arch, prof, m.stratCfg)
	if desc.Arch.Large() && plan.Device == device.KindCPU {
		if sysFree, ok := m.prober.SystemFreeGB(); ok && sysFree < m.stratCfg.SystemMinFreeGB {
			err := ErrInsufficientResources(fmt.Sprintf(
				"%s needs %.1fGB free system memory on cpu, have %.1fGB",
				name, m.stratCfg.SystemMinFreeGB, sysFree))
			m.publisher.Publish(Event{Name: EventSwitchFail, Model: name, Fields: map[string]any{"error": err.Error()}})
			switchesTotalMetric.WithLabelValues("insufficient_resources").Inc()
			return err
		}
	}

	m.log.Info().
		Str("model", name).
		Str("arch", string(desc.Arch)).
		Str("device", string(plan.Device)).
		Str("precision", string(plan.Precision)).
		Float64("free_gb", prof.FreeGB).
		Msg("switching model")

	// Step 3: release the outgoing instance.
	if m.active != nil {
		m.releaseLocked(ctx)
	}
	m.state = StateLoading

	// Step 4: construct, place, and apply memory-saving flags.
	inst, err := m.constructLocked(ctx, desc, plan)
	if err != nil {
		// No rollback to the previous model: it is already gone, and
		// re-loading it here would repeat the whole dance against state
		// that just proved unreliable. Leave nothing loaded.
		m.active = nil
		m.registry.MarkLoaded("")
		m.state = StateError
		m.lastErr = err.Error()
		m.publisher.Publish(Event{Name: EventSwitchFail, Model: name, Fields: map[string]any{"error": err.Error()}})
		switchesTotalMetric.WithLabelValues("error").Inc()
		return err
	}

	// Step 5: commit.
	m.active = inst
	m.registry.MarkLoaded(name)
	m.state = StateReady
	m.lastErr = ""
	m.switchesTotal++
	switchesTotalMetric.WithLabelValues("success").Inc()
	m.publisher.Publish(Event{Name: EventSwitchDone, Model: name, Fields: map[string]any{
		"device":    string(inst.Device),
		"precision": string(inst.Precision),
	}})
	return nil
}

// constructLocked builds the new instance. Flag application is best-effort:
// a flag the engine does not support for this architecture is skipped with a
// warning, not a failure.
func (m *Manager) constructLocked(ctx context.Context, desc types.Descriptor, plan strategy.Plan) (*ActiveInstance, error) {
	pipe, err := m.engine.Construct(ctx, desc, plan)
	if err != nil {
		return nil, ErrEngineFailure("construct "+desc.Name, err)
	}
	if err := pipe.MoveTo(plan.Device); err != nil {
		_ = pipe.Close()
		return nil, ErrEngineFailure("move "+desc.Name+" to "+string(plan.Device), err)
	}
	var applied []strategy.Flag
	for _, f := range plan.Flags {
		if !pipe.Supports(f) {
			m.log.Warn().Str("model", desc.Name).Str("flag", string(f)).Msg("optimization flag not supported, skipping")
			continue
		}
		if err := pipe.Apply(f); err != nil {
			m.log.Warn().Err(err).Str("model", desc.Name).Str("flag", string(f)).Msg("optimization flag failed to apply, skipping")
			continue
		}
		applied = append(applied, f)
	}
	return &ActiveInstance{
		Descriptor:   desc,
		Device:       plan.Device,
		Precision:    plan.Precision,
		AppliedFlags: applied,
		pipeline:     pipe,
	}, nil
}

// releaseLocked tears down the active instance. The sequence always runs to
// completion: a component that fails to release is logged and skipped, and
// the reclamation pass happens regardless.
//
// Components are released before the pipeline itself; closing the outer
// pipeline first can leave components referencing a torn-down device context.
func (m *Manager) releaseLocked(ctx context.Context) {
	inst := m.active
	m.active = nil
	m.registry.MarkLoaded("")

	name := inst.Descriptor.Name
	m.publisher.Publish(Event{Name: EventUnloadStart, Model: name})
	m.log.Info().Str("model", name).Msg("releasing model")

	if inst.Device == device.KindAccelerator {
		if err := inst.pipeline.MoveTo(device.KindCPU); err != nil {
			m.log.Warn().Err(err).Str("model", name).Msg("could not move pipeline off accelerator")
		}
	}
	for _, c := range inst.pipeline.Components() {
		if c.Release == nil {
			continue
		}
		if err := c.Release(); err != nil {
			m.log.Warn().Err(err).Str("model", name).Str("component", c.Name).Msg("component release failed")
		}
	}
	if err := inst.pipeline.Close(); err != nil {
		m.log.Warn().Err(err).Str("model", name).Msg("pipeline close failed")
	}

	m.engine.Reclaim(ctx)
	if inst.Descriptor.Arch.Large() {
		// One pass is not enough for large models; fragments linger.
		select {
		case <-time.After(m.largeUnloadPause):
		case <-ctx.Done():
		}
		m.engine.Reclaim(ctx)
	}
	m.publisher.Publish(Event{Name: EventUnloadDone, Model: name})
}
