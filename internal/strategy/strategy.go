// Package strategy decides where and how a model variant should run given a
// device snapshot. Select is a pure function: same inputs, same plan, no side
// effects. The manager applies the plan; the engine reports which flags it
// could honor.
package strategy

import (
	"diffusiond/internal/device"
	"diffusiond/pkg/types"
)

// Precision is the numeric precision the pipeline is constructed with.
type Precision string

const (
	PrecisionHalf Precision = "fp16"
	PrecisionFull Precision = "fp32"
)

// Flag names a memory-saving execution mode requested from the engine.
// Application is best-effort: an engine that does not support a flag for a
// given architecture skips it with a warning.
type Flag string

const (
	FlagAttentionSlicing  Flag = "attention_slicing"
	FlagVAESlicing        Flag = "vae_slicing"
	FlagVAETiling         Flag = "vae_tiling"
	FlagModelOffload      Flag = "model_cpu_offload"
	FlagSequentialOffload Flag = "sequential_cpu_offload"
)

// Defaults applied when corresponding Config fields are unset.
const (
	DefaultTurboAccelMinFreeGB = 1.5
	DefaultSystemMinFreeGB     = 2.0
)

// Config carries the tunable placement thresholds, in GB.
type Config struct {
	// Minimum free accelerator memory for turbo variants to stay on the
	// accelerator.
	TurboAccelMinFreeGB float64
	// Minimum free system memory required before loading a large variant
	// forced onto the CPU.
	SystemMinFreeGB float64
}

// WithDefaults returns cfg with unset fields replaced by package defaults.
func (c Config) WithDefaults() Config {
	if c.TurboAccelMinFreeGB <= 0 {
		c.TurboAccelMinFreeGB = DefaultTurboAccelMinFreeGB
	}
	if c.SystemMinFreeGB <= 0 {
		c.SystemMinFreeGB = DefaultSystemMinFreeGB
	}
	return c
}

// Plan is the resolved placement for one load: target device, precision, and
// the ordered memory-saving flags to request from the engine.
type Plan struct {
	Device    device.Kind
	Precision Precision
	Flags     []Flag
}

// Select resolves the placement plan for an architecture family against a
// device snapshot.
//
//	sd15        accelerator when present, half precision there, offload under pressure
//	sdxl        always cpu at full precision; stability over speed
//	sdxl_turbo  accelerator only with >= TurboAccelMinFreeGB free
func Select(arch types.Arch, prof device.Profile, cfg Config) Plan {
	cfg = cfg.WithDefaults()
	switch arch {
	case types.ArchSDXL:
		return Plan{
			Device:    device.KindCPU,
			Precision: PrecisionFull,
			Flags:     []Flag{FlagAttentionSlicing, FlagVAETiling},
		}
	case types.ArchSDXLTurbo:
		p := Plan{Device: device.KindCPU, Precision: PrecisionFull}
		if prof.Kind == device.KindAccelerator && prof.FreeGB >= cfg.TurboAccelMinFreeGB {
			p.Device = device.KindAccelerator
			p.Precision = PrecisionHalf
		}
		p.Flags = append(p.Flags, FlagAttentionSlicing)
		if p.Device == device.KindAccelerator && prof.ShouldOffload {
			p.Flags = append(p.Flags, FlagSequentialOffload)
		}
		return p
	default: // sd15 and anything we treat like it
		p := Plan{Device: device.KindCPU, Precision: PrecisionFull}
		if prof.Kind == device.KindAccelerator {
			p.Device = device.KindAccelerator
			p.Precision = PrecisionHalf
		}
		p.Flags = append(p.Flags, FlagAttentionSlicing)
		if p.Device == device.KindAccelerator && prof.ShouldOffload {
			p.Flags = append(p.Flags, FlagModelOffload, FlagVAESlicing)
		}
		return p
	}
}
