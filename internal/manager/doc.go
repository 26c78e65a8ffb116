// Package manager owns the single active model instance and coordinates
// everything that touches it. It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: internal state types (State, ActiveInstance).
//   - errors.go: error kinds and predicates (IsModelNotFound, IsInsufficientResources, ...).
//   - lifecycle.go: Load/Unload/SwitchTo and the ordered release sequence.
//   - generate.go: generation orchestration with the placeholder fallback.
//   - status.go: Status reporting for the HTTP layer.
//   - events.go / eventpub_memory.go: lifecycle event publishing.
//   - metrics.go: Prometheus counters and histograms.
//
// Concurrency: one mutex serializes model switches and generations. A switch
// never runs while a generation is reading the active instance, and a single
// accelerator context is not expected to interleave two sampling runs, so
// generations are serialized behind the same lock. Registry reads bypass the
// lock; the catalog is copy-on-replace.
//
// External packages should treat this package as the orchestration layer and
// use public methods only. Internal types are subject to change.
package manager
