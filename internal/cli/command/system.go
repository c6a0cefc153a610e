package command

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/Adv1cer/infirmary/internal/cli/connection"
)

// statusSummary mirrors GET /admin/v1/status/summary.
type statusSummary struct {
	Status            string `json:"status" yaml:"status"`
	InstanceID        string `json:"instance_id" yaml:"instance_id"`
	Version           string `json:"version" yaml:"version"`
	Commit            string `json:"commit" yaml:"commit"`
	UptimeSeconds     int64  `json:"uptime_seconds" yaml:"uptime_seconds"`
	StorageBackend    string `json:"storage_backend" yaml:"storage_backend"`
	OutstandingTokens int    `json:"outstanding_tokens" yaml:"outstanding_tokens"`
	TokenTTLSeconds   int64  `json:"token_ttl_seconds" yaml:"token_ttl_seconds"`
	Time              string `json:"time" yaml:"time"`
}

type healthStatus struct {
	Status string `json:"status" yaml:"status"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

type gcResult struct {
	ExpiredCount int    `json:"expired_count" yaml:"expired_count"`
	TriggeredAt  string `json:"triggered_at" yaml:"triggered_at"`
}

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "Server status and maintenance",
		Subcommands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show guard status summary",
				Action: systemStatus,
			},
			{
				Name:   "health",
				Usage:  "Check server liveness",
				Action: probe("/health"),
			},
			{
				Name:   "ready",
				Usage:  "Check server readiness (token store reachable)",
				Action: probe("/ready"),
			},
			{
				Name:   "gc",
				Usage:  "Remove expired tokens now",
				Action: systemGC,
			},
		},
	}
}

func systemStatus(c *cli.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := newClient(c).Get(ctx, "/admin/v1/status/summary")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var s statusSummary
	if _, err := connection.ParseEnvelope(resp, &s); err != nil {
		return err
	}
	return render(c, s)
}

func probe(path string) cli.ActionFunc {
	return func(c *cli.Context) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		client := newClient(c)
		resp, err := client.Get(ctx, path)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		var result healthStatus
		healthy := resp.StatusCode == http.StatusOK
		if healthy || resp.StatusCode == http.StatusServiceUnavailable {
			err = json.NewDecoder(resp.Body).Decode(&result)
			resp.Body.Close()
		} else {
			err = connection.ParseResponse(resp, &result)
		}
		if err != nil {
			return err
		}

		switch {
		case !isTable(c):
			if err := render(c, result); err != nil {
				return err
			}
		case healthy:
			fmt.Fprintf(stdout(c), "✓ Server is %s\n  Target: %s\n", result.Status, client.BaseURL())
		default:
			fmt.Fprintf(stdout(c), "✗ Server is %s: %s\n", result.Status, result.Error)
		}

		if !healthy {
			return fmt.Errorf("server is %s", result.Status)
		}
		return nil
	}
}

func systemGC(c *cli.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := newClient(c).Mutate(ctx, http.MethodPost, "/admin/v1/gc/trigger", nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result gcResult
	if _, err := connection.ParseEnvelope(resp, &result); err != nil {
		return err
	}

	if isTable(c) {
		fmt.Fprintf(stdout(c), "Sweep completed: %d expired token(s) removed\n", result.ExpiredCount)
		return nil
	}
	return render(c, result)
}
