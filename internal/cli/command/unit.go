package command

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/Adv1cer/infirmary/internal/cli/connection"
)

const unitPath = "/api/admin/unit"

type unitRow struct {
	UnitID   int64  `json:"unit_id" yaml:"unit_id"`
	UnitType string `json:"unit_type" yaml:"unit_type"`
}

// UnitCommand returns the unit subcommand group.
func UnitCommand() *cli.Command {
	return &cli.Command{
		Name:  "unit",
		Usage: "Manage medicine units",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List units",
				Action:  unitList,
			},
			{
				Name:      "add",
				Usage:     "Add a unit type",
				ArgsUsage: "<unit_type>",
				Action:    unitAdd,
			},
			{
				Name:      "update",
				Usage:     "Rename a unit",
				ArgsUsage: "<unit_id> <unit_type>",
				Action:    unitUpdate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a unit",
				ArgsUsage: "<unit_id>",
				Action:    unitDelete,
			},
		},
	}
}

func unitList(c *cli.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := newClient(c).Get(ctx, unitPath)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var units []unitRow
	if _, err := connection.ParseEnvelope(resp, &units); err != nil {
		return err
	}
	return render(c, units)
}

func unitAdd(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("usage: csrfguard-cli unit add <unit_type>")
	}
	return unitMutate(c, http.MethodPost, unitPath, map[string]any{"unit_type": c.Args().First()})
}

func unitUpdate(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("usage: csrfguard-cli unit update <unit_id> <unit_type>")
	}
	id, err := parseUnitID(c.Args().Get(0))
	if err != nil {
		return err
	}
	return unitMutate(c, http.MethodPut, unitPath, map[string]any{
		"unit_id":   id,
		"unit_type": c.Args().Get(1),
	})
}

func unitDelete(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("usage: csrfguard-cli unit delete <unit_id>")
	}
	id, err := parseUnitID(c.Args().First())
	if err != nil {
		return err
	}
	q := url.Values{"unit_id": {strconv.FormatInt(id, 10)}}
	return unitMutate(c, http.MethodDelete, unitPath+"?"+q.Encode(), nil)
}

func unitMutate(c *cli.Context, method, path string, body any) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := newClient(c).Mutate(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var unit unitRow
	msg, err := connection.ParseEnvelope(resp, &unit)
	if err != nil {
		return err
	}

	if msg != "" {
		if isTable(c) {
			fmt.Fprintln(stdout(c), msg)
			return nil
		}
		return render(c, map[string]string{"message": msg})
	}
	return render(c, unit)
}

func parseUnitID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid unit_id %q", s)
	}
	return id, nil
}
