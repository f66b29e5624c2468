// Package cmap provides a concurrent map for PushMesh.
//
// This package implements a sharded concurrent map used by the connection
// registry with the following features:
//
//   - Sharding: Configurable shard count for parallelism
//   - Fine-grained Locking: Per-shard RWMutex for minimal contention
//   - Atomic Claims: SetIfAbsent and DeleteIf run under a single lock
//   - Iteration: Safe iteration while holding read locks
//
// Usage:
//
//	m := cmap.New[string, *domain.Handle]()
//	if !m.SetIfAbsent("m1", h) {
//	    // already claimed
//	}
//	h, ok := m.Get("m1")
//
// Thread Safety:
//
// All operations are thread-safe. Read operations (Get, Has, Range) use
// RLock, write operations use Lock. Every lock is released by defer, so a
// panicking callback never leaves a shard locked.
package cmap
