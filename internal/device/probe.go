package device

import (
	"github.com/prometheus/procfs"
	"github.com/rs/zerolog"
)

// Kind distinguishes the general-purpose CPU from an accelerator with its
// own memory pool.
type Kind string

const (
	KindCPU         Kind = "cpu"
	KindAccelerator Kind = "accelerator"
)

// Defaults applied when corresponding Thresholds fields are unset.
const (
	DefaultLargeLoadMinFreeGB = 3.0
	DefaultOffloadBelowFreeGB = 6.0
)

// Stats is a raw accelerator memory reading, in GB.
type Stats struct {
	TotalGB     float64
	AllocatedGB float64
}

// AcceleratorSource supplies accelerator memory readings. Implementations
// return ok=false when no accelerator is present; Profile then degrades to a
// CPU-only profile instead of failing.
type AcceleratorSource interface {
	AcceleratorStats() (Stats, bool)
}

// Thresholds are the policy knobs for the derived profile booleans.
type Thresholds struct {
	// Minimum free accelerator memory to consider a large-model load.
	LargeLoadMinFreeGB float64
	// Below this much free memory the profile recommends CPU offload.
	OffloadBelowFreeGB float64
}

func (t Thresholds) withDefaults() Thresholds {
	if t.LargeLoadMinFreeGB <= 0 {
		t.LargeLoadMinFreeGB = DefaultLargeLoadMinFreeGB
	}
	if t.OffloadBelowFreeGB <= 0 {
		t.OffloadBelowFreeGB = DefaultOffloadBelowFreeGB
	}
	return t
}

// Profile is a point-in-time snapshot of compute device state. It is
// recomputed on every call and never cached: memory pressure moves between
// any two operations.
type Profile struct {
	Kind              Kind
	TotalGB           float64
	AllocatedGB       float64
	FreeGB            float64
	CanLoadLargeModel bool
	ShouldOffload     bool
}

// SystemSource supplies system (not accelerator) memory readings. The
// default implementation reads /proc/meminfo.
type SystemSource interface {
	SystemFreeGB() (float64, bool)
}

// Prober answers device and system memory questions on demand. Stateless
// apart from its configuration.
type Prober struct {
	source AcceleratorSource
	sys    SystemSource
	thr    Thresholds
	log    zerolog.Logger
}

func NewProber(source AcceleratorSource, thr Thresholds, log zerolog.Logger) *Prober {
	return &Prober{source: source, sys: procfsSystem{log: log}, thr: thr.withDefaults(), log: log}
}

// NewProberWithSystem is NewProber with an explicit system memory source.
func NewProberWithSystem(source AcceleratorSource, sys SystemSource, thr Thresholds, log zerolog.Logger) *Prober {
	p := NewProber(source, thr, log)
	if sys != nil {
		p.sys = sys
	}
	return p
}

// Profile returns a fresh device snapshot. Absence of an accelerator is not
// an error: the result is an all-zero profile with ShouldOffload set.
func (p *Prober) Profile() Profile {
	if p.source != nil {
		if st, ok := p.source.AcceleratorStats(); ok {
			free := st.TotalGB - st.AllocatedGB
			if free < 0 {
				free = 0
			}
			return Profile{
				Kind:              KindAccelerator,
				TotalGB:           st.TotalGB,
				AllocatedGB:       st.AllocatedGB,
				FreeGB:            free,
				CanLoadLargeModel: free >= p.thr.LargeLoadMinFreeGB,
				ShouldOffload:     free < p.thr.OffloadBelowFreeGB,
			}
		}
	}
	return Profile{Kind: KindCPU, ShouldOffload: true}
}

// SystemFreeGB reports available system memory. ok=false when the reading is
// unavailable (non-Linux hosts, constrained containers); callers decide how
// strict to be.
func (p *Prober) SystemFreeGB() (float64, bool) {
	return p.sys.SystemFreeGB()
}

// procfsSystem reads available system memory from /proc/meminfo.
type procfsSystem struct {
	log zerolog.Logger
}

func (s procfsSystem) SystemFreeGB() (float64, bool) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		s.log.Warn().Err(err).Msg("procfs unavailable, skipping system memory reading")
		return 0, false
	}
	mi, err := fs.Meminfo()
	if err != nil {
		s.log.Warn().Err(err).Msg("meminfo read failed")
		return 0, false
	}
	var kb uint64
	switch {
	case mi.MemAvailable != nil:
		kb = *mi.MemAvailable
	case mi.MemFree != nil:
		kb = *mi.MemFree
	default:
		return 0, false
	}
	return float64(kb) / (1024 * 1024), true
}
