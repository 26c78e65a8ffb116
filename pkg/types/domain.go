package types

// Arch identifies the structural family of a model variant. The family
// determines the resource profile and loading procedure used by the manager.
type Arch string

const (
	ArchSD15      Arch = "sd15"
	ArchSDXL      Arch = "sdxl"
	ArchSDXLTurbo Arch = "sdxl_turbo"
)

// Valid reports whether a is one of the known architecture families.
func (a Arch) Valid() bool {
	switch a {
	case ArchSD15, ArchSDXL, ArchSDXLTurbo:
		return true
	}
	return false
}

// Large reports whether the family needs the large-model resource checks.
func (a Arch) Large() bool { return a == ArchSDXL }

// Descriptor identifies one model variant known to the registry.
type Descriptor struct {
	// Stable identifier, unique within the registry.
	Name string `json:"name"`
	// Human-friendly title.
	Title string `json:"title"`
	// Remote identifier (hub repo) or absolute local file path.
	Source string `json:"source"`
	// Architecture family.
	Arch Arch `json:"arch"`
	// Short content hash for API listings.
	Hash string `json:"hash"`
	// Native resolution the variant was trained at.
	Resolution int `json:"resolution"`
	// True when Source is a local file discovered on disk.
	Local bool `json:"local"`
	// True when this variant is the currently loaded one. At most one
	// descriptor in a registry snapshot has Loaded set.
	Loaded bool `json:"loaded"`
}

// Provenance marks whether a generation result came from the real inference
// engine or from the synthetic placeholder fallback.
type Provenance string

const (
	ProvenanceEngine      Provenance = "engine"
	ProvenancePlaceholder Provenance = "placeholder"
)

// GenerationParams are the fully resolved parameters a generation actually
// ran with, echoed back to the caller for reproducibility.
type GenerationParams struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Steps          int     `json:"steps"`
	CfgScale       float64 `json:"cfg_scale"`
	Seed           int64   `json:"seed"`
}

// GenerationResult is the outcome of one orchestrated generation. The PNG
// bytes are always present; Provenance says which path produced them.
type GenerationResult struct {
	PNG        []byte           `json:"-"`
	Params     GenerationParams `json:"parameters"`
	Provenance Provenance       `json:"provenance"`
	Model      string           `json:"model"`
	Sampler    string           `json:"sampler"`
	JobID      string           `json:"job_id"`
	// Optional note, set on placeholder results.
	Note string `json:"note,omitempty"`
}
