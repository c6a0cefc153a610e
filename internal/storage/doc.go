// Package storage opens the token store backend selected by configuration.
//
// Two backends are available:
//
//   - memory: a sharded in-process map, swept periodically
//   - redis:  a shared Redis instance with native key expiry
//
// The memory backend is only correct for a single guard instance. Use
// redis when several processes must share one token population.
package storage
