// Package memory holds the process-wide connection registry.
//
// The registry maps a destination identifier to the live connection
// handle claiming it. It is built on the sharded map in pkg/cmap, so
// contention is limited to identifiers hashing into the same shard.
//
// Thread Safety:
//
// Every operation takes at most one shard lock, holds it only for the map
// access itself and releases it with defer. No lock is ever held across
// network I/O; callers get a domain.Sender and enqueue outside the lock.
package memory
