// Package output provides output formatting for csrfguard-cli.
//
// Formats: table (default, text/tabwriter), json and yaml.
package output
