// Package redisstore provides a Redis-backed token store.
//
// Records are stored under "<prefix>:<digest>" with the creation time in
// Unix milliseconds as the value. Keys carry a native expiry slightly
// longer than the token TTL, so Redis drops stale records on its own and
// DeleteExpired has nothing to do.
//
// Pop uses GETDEL, which makes single-use consumption atomic across every
// guard instance sharing the same Redis.
package redisstore
