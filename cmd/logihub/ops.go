package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func healthCmd() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check the planning backend's liveness",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			status, err := a.backend.Health(ctx)
			if err != nil {
				return fmt.Errorf("backend unreachable at %s: %w", a.cfg.BackendURL, err)
			}
			fmt.Printf("Backend %s: %s\n", a.cfg.BackendURL, status)
			return nil
		},
	}
}

func trafficCmd() *cli.Command {
	return &cli.Command{
		Name:  "traffic",
		Usage: "Fetch the congestion report for the current route",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "map",
				Usage: "Write the congestion map HTML to the given file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			sessionID, err := a.identity.ID(ctx)
			if err != nil {
				return err
			}

			report, err := a.backend.TrafficReport(ctx, sessionID)
			if err != nil {
				return err
			}
			fmt.Printf("Congestion: %s\n", report.CongestionStatus)
			if report.Details != "" {
				fmt.Println(report.Details)
			}

			if path := cmd.String("map"); path != "" && report.MapFile != "" {
				data, err := a.backend.DownloadTrafficMap(ctx, sessionID)
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return err
				}
				fmt.Println("Map written to", path)
			}
			return nil
		},
	}
}
