package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/logihub/logihub/internal/geocode"
	"github.com/logihub/logihub/internal/store"
)

// keyPicks is the session-scope slot holding the picked-location list
// between CLI invocations.
const keyPicks = "picked_locations"

func pickCmd() *cli.Command {
	return &cli.Command{
		Name:  "pick",
		Usage: "Manage manually picked delivery locations",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Pick a location by coordinates",
				ArgsUsage: "<lat> <lon>",
				Flags: []cli.Flag{
					&cli.FloatFlag{Name: "lat", Usage: "Latitude (alternative to the positional form)"},
					&cli.FloatFlag{Name: "lon", Usage: "Longitude (alternative to the positional form)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					lat, lon, err := pickCoordinates(cmd)
					if err != nil {
						return err
					}

					a, err := newApp(ctx, cmd)
					if err != nil {
						return err
					}
					defer a.Close()

					picks, err := loadPicks(ctx, a)
					if err != nil {
						return err
					}

					pick, err := a.geocoder.Add(ctx, lat, lon)
					if err != nil {
						return err
					}

					picks = append(picks, *pick)
					if err := savePicks(ctx, a, picks); err != nil {
						return err
					}
					return a.render.Picks(os.Stdout, picks)
				},
			},
			{
				Name:      "rm",
				Usage:     "Remove a picked location by its identifier",
				ArgsUsage: "<pick-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, err := newApp(ctx, cmd)
					if err != nil {
						return err
					}
					defer a.Close()

					id := cmd.Args().First()
					if id == "" {
						return fmt.Errorf("a pick identifier is required")
					}

					picks, err := loadPicks(ctx, a)
					if err != nil {
						return err
					}

					kept := picks[:0]
					removed := false
					for _, p := range picks {
						if p.ID == id {
							removed = true
							continue
						}
						kept = append(kept, p)
					}
					if !removed {
						return fmt.Errorf("no pick with identifier %q", id)
					}

					if err := savePicks(ctx, a, kept); err != nil {
						return err
					}
					return a.render.Picks(os.Stdout, kept)
				},
			},
			{
				Name:  "ls",
				Usage: "List the picked locations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, err := newApp(ctx, cmd)
					if err != nil {
						return err
					}
					defer a.Close()

					picks, err := loadPicks(ctx, a)
					if err != nil {
						return err
					}
					return a.render.Picks(os.Stdout, picks)
				},
			},
			{
				Name:  "clear",
				Usage: "Remove all picked locations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, err := newApp(ctx, cmd)
					if err != nil {
						return err
					}
					defer a.Close()

					if err := a.store.Delete(ctx, store.ScopeSession, keyPicks); err != nil {
						return err
					}
					fmt.Println("Picks cleared.")
					return nil
				},
			},
		},
	}
}

// pickCoordinates reads the coordinates from the --lat/--lon flags or, when
// neither is set, from the two positional arguments. A literal (0, 0) is a
// valid pick; only absent inputs are rejected.
func pickCoordinates(cmd *cli.Command) (float64, float64, error) {
	if cmd.IsSet("lat") || cmd.IsSet("lon") {
		if !cmd.IsSet("lat") || !cmd.IsSet("lon") {
			return 0, 0, fmt.Errorf("both --lat and --lon are required")
		}
		return cmd.Float("lat"), cmd.Float("lon"), nil
	}

	args := cmd.Args().Slice()
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("coordinates are required: logihub pick add <lat> <lon>")
	}
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q", args[0])
	}
	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q", args[1])
	}
	return lat, lon, nil
}

func loadPicks(ctx context.Context, a *app) ([]geocode.Pick, error) {
	raw, err := a.store.Get(ctx, store.ScopeSession, keyPicks)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var picks []geocode.Pick
	if err := json.Unmarshal(raw, &picks); err != nil {
		a.log.Warn().Err(err).Msg("discarding corrupt pick list")
		return nil, a.store.Delete(ctx, store.ScopeSession, keyPicks)
	}
	return picks, nil
}

func savePicks(ctx context.Context, a *app, picks []geocode.Pick) error {
	raw, err := json.Marshal(picks)
	if err != nil {
		return err
	}
	return a.store.Put(ctx, store.ScopeSession, keyPicks, raw)
}
