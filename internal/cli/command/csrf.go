package command

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Adv1cer/infirmary/internal/cli/connection"
)

type issuedToken struct {
	Token     string `json:"csrf_token" yaml:"csrf_token"`
	ExpiresAt string `json:"expires_at" yaml:"expires_at"`
}

type verifyResult struct {
	Valid bool `json:"valid" yaml:"valid"`
}

// CSRFCommand returns the csrf subcommand group.
func CSRFCommand() *cli.Command {
	return &cli.Command{
		Name:  "csrf",
		Usage: "Issue and verify CSRF tokens",
		Subcommands: []*cli.Command{
			{
				Name:   "issue",
				Usage:  "Issue a new token",
				Action: csrfIssue,
			},
			{
				Name:      "verify",
				Usage:     "Consume a token; it cannot be used again afterwards",
				ArgsUsage: "<token>",
				Action:    csrfVerify,
			},
		},
	}
}

func csrfIssue(c *cli.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	tok, err := newClient(c).FetchToken(ctx)
	if err != nil {
		return err
	}

	if isTable(c) {
		fmt.Fprintln(stdout(c), tok.CSRFToken)
		return nil
	}
	return render(c, issuedToken{
		Token:     tok.CSRFToken,
		ExpiresAt: time.UnixMilli(tok.ExpiresAt).UTC().Format(time.RFC3339),
	})
}

func csrfVerify(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("usage: csrfguard-cli csrf verify <token>")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := newClient(c).Send(ctx, http.MethodPost, "/csrf/verify", c.Args().First(), nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	result := verifyResult{Valid: true}
	if _, err := connection.ParseEnvelope(resp, &result); err != nil {
		if !connection.IsTokenRejected(err) {
			return err
		}
		result.Valid = false
	}

	if isTable(c) {
		if result.Valid {
			fmt.Fprintln(stdout(c), "✓ Token valid (now consumed)")
		} else {
			fmt.Fprintln(stdout(c), "✗ Token rejected")
		}
	} else if err := render(c, result); err != nil {
		return err
	}

	if !result.Valid {
		return errors.New("token rejected")
	}
	return nil
}
