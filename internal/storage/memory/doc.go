// Package memory provides in-process storage for the CSRF guard.
//
//   - Store: outstanding CSRF token records on a sharded concurrent map
//   - UnitStore: medicine units behind a single RWMutex
//
// State is lost on restart. Multi-instance deployments use the Redis
// token store instead.
package memory
