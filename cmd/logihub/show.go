package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func showCmd() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Show the current optimized route",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "travel-log",
				Aliases: []string{"t"},
				Usage:   "Show the leg-by-leg travel log instead of the route card",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			a.planner.Restore(ctx)
			v := a.planner.View()

			if cmd.Bool("travel-log") {
				if v.Route == nil {
					return a.render.Route(os.Stdout, v)
				}
				return a.render.TravelLog(os.Stdout, v.Route.TravelLog)
			}
			return a.render.Route(os.Stdout, v)
		},
	}
}

func summaryCmd() *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "Show the prose summary of the current route",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			a.planner.Restore(ctx)
			summary, err := a.planner.Summarize(ctx)
			if err != nil {
				return err
			}
			fmt.Println(summary)
			return nil
		},
	}
}
