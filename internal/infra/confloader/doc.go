// Package confloader provides configuration loading mechanism.
//
// This package implements a configuration loader that supports multiple
// sources using koanf as the underlying library, plus an fsnotify based
// watcher for reacting to file changes.
//
// Priority (highest to lowest):
//
//  1. Prefixed environment variables (CSRFGUARD_CSRF_TTL=10m)
//  2. Environment aliases (CSRF_SECRET)
//  3. Configuration file (YAML)
//  4. Values already present in the target struct
//
// Prefixed variables are matched against the koanf tags of the target, so
// CSRFGUARD_CSRF_SWEEP_INTERVAL resolves to csrf.sweep_interval rather
// than csrf.sweep.interval.
package confloader
