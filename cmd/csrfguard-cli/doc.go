// Package main provides the entry point for csrfguard-cli, the
// command-line client for csrfguard-server.
package main
