// Package command provides CLI command definitions for csrfguard-cli.
//
// Commands are defined with urfave/cli/v2:
//
//   - root.go: App, global flags, client and output helpers
//   - system.go: status, health, ready, gc
//   - csrf.go: issue and verify tokens
//   - unit.go: manage the medicine unit resource
//
// Mutating commands fetch a fresh CSRF token per call and retry once
// when the server rejects it.
package command
