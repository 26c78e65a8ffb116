// Package registry maintains the catalog of known model descriptors: two
// built-in variants that are always present, plus checkpoints discovered in a
// local model directory. The catalog is rebuilt as a whole and swapped in
// atomically; readers never observe a partial catalog.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"diffusiond/internal/common/fsutil"
	"diffusiond/pkg/types"
)

// Built-in variant names. These descriptors survive every rediscovery.
const (
	BaseModelName = "stable-diffusion-v1-5"
	FastModelName = "sdxl-turbo"
)

// builtins returns fresh copies of the always-present descriptors.
func builtins() []types.Descriptor {
	return []types.Descriptor{
		{
			Name:       BaseModelName,
			Title:      "Stable Diffusion v1.5",
			Source:     "runwayml/stable-diffusion-v1-5",
			Arch:       types.ArchSD15,
			Hash:       "cc6cb27103",
			Resolution: 512,
		},
		{
			Name:       FastModelName,
			Title:      "SDXL Turbo",
			Source:     "stabilityai/sdxl-turbo",
			Arch:       types.ArchSDXLTurbo,
			Hash:       "e869ac7d69",
			Resolution: 512,
		},
	}
}

// Registry holds the current catalog. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	dir     string
	log     zerolog.Logger
	catalog []types.Descriptor
}

// New creates a registry scanning dir for local checkpoints. dir may be
// empty; the built-ins are present regardless. Call Discover before first use.
func New(dir string, log zerolog.Logger) *Registry {
	return &Registry{dir: dir, log: log}
}

// Discover rebuilds the full catalog and atomically replaces the previous
// one. Discovered names colliding with an existing entry are ignored; first
// registration wins. Returns a copy of the new catalog.
func (r *Registry) Discover() []types.Descriptor {
	catalog := builtins()
	seen := make(map[string]bool, len(catalog))
	for _, d := range catalog {
		seen[d.Name] = true
	}

	for _, d := range r.scanDir() {
		if seen[d.Name] {
			r.log.Warn().Str("model", d.Name).Str("path", d.Source).Msg("duplicate model name, keeping first registration")
			continue
		}
		seen[d.Name] = true
		catalog = append(catalog, d)
	}

	r.mu.Lock()
	r.catalog = catalog
	r.mu.Unlock()
	r.log.Info().Int("models", len(catalog)).Str("dir", r.dir).Msg("model catalog rebuilt")
	return r.List()
}

// scanDir collects descriptors for recognized checkpoint files. A missing or
// unreadable directory yields no descriptors, not an error.
func (r *Registry) scanDir() []types.Descriptor {
	if r.dir == "" {
		return nil
	}
	dir, err := fsutil.ExpandHome(r.dir)
	if err != nil {
		r.log.Warn().Err(err).Str("dir", r.dir).Msg("cannot expand models dir")
		return nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		r.log.Warn().Err(err).Str("dir", dir).Msg("cannot resolve models dir")
		return nil
	}
	if !fsutil.PathExists(abs) {
		r.log.Debug().Str("dir", abs).Msg("models dir missing, using built-ins only")
		return nil
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		r.log.Warn().Err(err).Str("dir", abs).Msg("models dir not readable, using built-ins only")
		return nil
	}

	var out []types.Descriptor
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !recognizedCheckpoint(name) {
			continue
		}
		p := filepath.Join(abs, name)
		arch := classifyArch(name)
		hash, err := fsutil.ShortFileHash(p)
		if err != nil {
			r.log.Warn().Err(err).Str("path", p).Msg("cannot hash checkpoint")
			hash = "unknown"
		}
		res := 512
		if arch == types.ArchSDXL {
			res = 1024
		}
		id := deriveName(name)
		out = append(out, types.Descriptor{
			Name:       id,
			Title:      fmt.Sprintf("%s [%s]", id, hash),
			Source:     p,
			Arch:       arch,
			Hash:       hash,
			Resolution: res,
			Local:      true,
		})
	}
	// Stable ordering so first-wins dedup is deterministic across runs.
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// recognizedCheckpoint reports whether the filename looks like a model file.
func recognizedCheckpoint(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".safetensors", ".ckpt":
		return true
	}
	return false
}

// deriveName strips the extension: "dreamshaper-v8.safetensors" -> "dreamshaper-v8".
func deriveName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// classifyArch guesses the architecture family from the filename. Turbo
// checkpoints are XL-derived, so check for turbo first.
func classifyArch(name string) types.Arch {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "turbo"):
		return types.ArchSDXLTurbo
	case strings.Contains(n, "xl"):
		return types.ArchSDXL
	default:
		return types.ArchSD15
	}
}

// List returns a copy of the catalog.
func (r *Registry) List() []types.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Descriptor, len(r.catalog))
	copy(out, r.catalog)
	return out
}

// Get looks up a descriptor by name.
func (r *Registry) Get(name string) (types.Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.catalog {
		if d.Name == name {
			return d, true
		}
	}
	return types.Descriptor{}, false
}

// MarkLoaded sets the Loaded flag on exactly the named descriptor and clears
// it everywhere else. An empty name clears all flags (no model loaded).
func (r *Registry) MarkLoaded(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.catalog {
		r.catalog[i].Loaded = r.catalog[i].Name == name && name != ""
	}
}

// LoadedName returns the name of the descriptor currently marked loaded, or
// empty when none is.
func (r *Registry) LoadedName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.catalog {
		if d.Loaded {
			return d.Name
		}
	}
	return ""
}
