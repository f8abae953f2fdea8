// Package main provides the logihub CLI: plan delivery routes from natural
// language or picked coordinates, create manifests, and talk to LogiBOT.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	root := &cli.Command{
		Name:    "logihub",
		Usage:   "Plan, optimize and track delivery routes from the terminal",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the config file",
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Planning backend base URL (overrides the config file)",
			},
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log level: debug, info, warn, error",
			},
		},
		Commands: []*cli.Command{
			planCmd(),
			pickCmd(),
			showCmd(),
			summaryCmd(),
			manifestCmd(),
			statusCmd(),
			chatCmd(),
			explainCmd(),
			resetCmd(),
			healthCmd(),
			trafficCmd(),
			serveCmd(),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
