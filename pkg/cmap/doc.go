// Package cmap provides a sharded concurrent map for string-keyed records.
//
// Keys are distributed over a power-of-two number of shards with a seeded
// murmur3 hash; each shard is guarded by its own RWMutex. Pop and DeleteIf
// run under the shard write lock, so a key can be removed by exactly one
// caller.
//
// Usage:
//
//	m := cmap.New[string, *domain.Record]()
//	m.Set(digest, rec)
//	rec, ok := m.Pop(digest)
package cmap
