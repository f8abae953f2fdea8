package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"
)

func manifestCmd() *cli.Command {
	return &cli.Command{
		Name:  "manifest",
		Usage: "Create a delivery manifest for the current optimized route",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "driver",
				Aliases: []string{"d"},
				Usage:   "Driver to assign (defaults to the configured driver)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			driver := cmd.String("driver")
			if driver == "" {
				driver = a.cfg.Driver
			}

			a.planner.Restore(ctx)
			if _, err := a.planner.CreateManifest(ctx, driver); err != nil {
				return renderFailure(a, err)
			}
			return a.render.Route(os.Stdout, a.planner.View())
		},
	}
}
