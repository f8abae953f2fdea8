package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/logihub/logihub/internal/planner"
)

func planCmd() *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Usage:     "Plan an optimized route from a natural-language delivery request",
		ArgsUsage: "\"deliver to Mumbai, then Pune, then Nashik\"",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "picks",
				Usage: "Plan from the picked locations instead of text",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if cmd.Bool("picks") {
				return planFromPicks(ctx, a)
			}

			text := strings.Join(cmd.Args().Slice(), " ")
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("a delivery request is required: logihub plan \"deliver to ...\"")
			}

			if _, err := a.planner.PlanFromText(ctx, text); err != nil {
				return renderFailure(a, err)
			}

			// Let the background summary land before rendering.
			a.planner.Wait()
			return a.render.Route(os.Stdout, a.planner.View())
		},
	}
}

func planFromPicks(ctx context.Context, a *app) error {
	picks, err := loadPicks(ctx, a)
	if err != nil {
		return err
	}

	locations := make([]planner.Location, 0, len(picks))
	for _, p := range picks {
		locations = append(locations, planner.Location{Name: p.Name, Lat: p.Lat, Lon: p.Lon})
	}

	if _, err := a.planner.PlanFromPicks(ctx, locations); err != nil {
		return renderFailure(a, err)
	}

	a.planner.Wait()
	return a.render.Route(os.Stdout, a.planner.View())
}

// renderFailure shows the planner's failure view. The error is already
// reflected in the view state, so the command exits zero with the message
// displayed rather than double-reporting.
func renderFailure(a *app, err error) error {
	v := a.planner.View()
	if v.ErrMsg == "" {
		return err
	}
	return a.render.Route(os.Stdout, v)
}

func resetCmd() *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Discard the current route, picks and chat transcript",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.planner.Reset(ctx); err != nil {
				return err
			}
			fmt.Println("Session cleared.")
			return nil
		},
	}
}
