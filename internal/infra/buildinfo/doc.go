// Package buildinfo exposes build-time version information.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/Adv1cer/infirmary/internal/infra/buildinfo.Version=v1.0.0"
package buildinfo
