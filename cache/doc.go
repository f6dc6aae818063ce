// Package cache stores tessellated meshes keyed by content and parameters.
//
// A Cache is an explicitly constructed value owned by its caller; there is
// no process-wide instance.
//
// # Builds
//
// GetOrBuild runs at most one build per key at a time. Concurrent callers
// for the same key share the in-flight build through
// golang.org/x/sync/singleflight. Waiting is bounded by the caller's
// context and Config.BuildTimeout. A build that returns an error or panics
// releases every waiter with a *BuildError and leaves the key empty, so the
// next call builds again.
//
// # Ownership
//
// Meshes are handed out through reference-counted Handles. A mesh is never
// evicted while a Handle to it is held. Handles are read-only views; the
// mesh must not be modified.
//
// # Eviction
//
// Unreferenced entries are kept in least-recently-used order and evicted
// when the cache exceeds Config.MaxEntries or Config.MaxBytes, or when they
// have been idle longer than Config.Retention.
//
// # Locking
//
// One mutex guards the index, the LRU list and the counters. It is held
// only for map and list updates, never during a build, so contention stays
// low even with many keys; the per-key coordination lives in singleflight.
package cache
