package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Adv1cer/infirmary/internal/cli/connection"
	"github.com/Adv1cer/infirmary/internal/cli/output"
	"github.com/Adv1cer/infirmary/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "csrfguard-cli",
		Usage:   "csrfguard command-line tool",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			SystemCommand(),
			CSRFCommand(),
			UnitCommand(),
		},
		Before: func(c *cli.Context) error {
			_, err := output.ParseFormat(c.String("output"))
			return err
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "csrfguard server address (e.g., localhost:5080)",
			EnvVars: []string{"CSRFGUARD_SERVER"},
			Value:   "localhost:5080",
		},
		&cli.StringFlag{
			Name:    "csrf-header",
			Usage:   "Request header carrying the CSRF token",
			EnvVars: []string{"CSRFGUARD_CSRF_HEADER"},
			Value:   connection.DefaultCSRFHeader,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   string(output.FormatTable),
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-request timeout",
			Value: connection.DefaultTimeout,
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server     string
	CSRFHeader string
	Output     output.Format
	Timeout    time.Duration
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	format, _ := output.ParseFormat(c.String("output"))
	return &GlobalFlags{
		Server:     c.String("server"),
		CSRFHeader: c.String("csrf-header"),
		Output:     format,
		Timeout:    c.Duration("timeout"),
	}
}

// newClient builds the HTTP client from global flags.
func newClient(c *cli.Context) *connection.HTTPClient {
	flags := ParseGlobalFlags(c)
	return connection.NewHTTPClient(flags.Server,
		connection.WithCSRFHeader(flags.CSRFHeader),
		connection.WithTimeout(flags.Timeout),
	)
}

// requestContext bounds one command invocation.
func requestContext(c *cli.Context) (context.Context, context.CancelFunc) {
	timeout := c.Duration("timeout")
	if timeout <= 0 {
		timeout = connection.DefaultTimeout
	}
	return context.WithTimeout(c.Context, timeout)
}

func stdout(c *cli.Context) io.Writer {
	if c.App != nil && c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

// render writes data in the selected output format.
func render(c *cli.Context, data any) error {
	return output.NewFormatter(ParseGlobalFlags(c).Output).Format(stdout(c), data)
}

// isTable reports whether human-oriented output is selected.
func isTable(c *cli.Context) bool {
	return ParseGlobalFlags(c).Output == output.FormatTable
}

// PrintError prints an error message to stderr.
func PrintError(c *cli.Context, format string, args ...any) {
	w := io.Writer(os.Stderr)
	if c != nil && c.App != nil && c.App.ErrWriter != nil {
		w = c.App.ErrWriter
	}
	fmt.Fprintf(w, "error: "+format+"\n", args...)
}
