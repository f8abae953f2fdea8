package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/logihub/logihub/internal/copilot"
)

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the live delivery-run status",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			a.copilot.Hydrate(ctx)
			a.copilot.RefreshStatus(ctx)
			return a.render.Status(os.Stdout, a.copilot.View().Status)
		},
	}
}

func explainCmd() *cli.Command {
	return &cli.Command{
		Name:      "explain",
		Usage:     "Ask LogiBOT a question about the current route",
		ArgsUsage: "\"why is Pune before Nashik?\"",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			question := strings.Join(cmd.Args().Slice(), " ")
			if strings.TrimSpace(question) == "" {
				return fmt.Errorf("a question is required: logihub explain \"why ...\"")
			}

			a.copilot.Hydrate(ctx)
			reply, err := a.copilot.Explain(ctx, question)
			if err != nil {
				return err
			}
			fmt.Println(reply.Content)
			return nil
		},
	}
}

func chatCmd() *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "Talk to LogiBOT; without arguments, starts an interactive session",
		ArgsUsage: "[message]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			a.copilot.Hydrate(ctx)

			if message := strings.Join(cmd.Args().Slice(), " "); strings.TrimSpace(message) != "" {
				reply, err := a.copilot.Send(ctx, message)
				if err != nil {
					return err
				}
				fmt.Println(reply.Content)
				return nil
			}

			return chatLoop(ctx, a)
		},
	}
}

// chatLoop runs the interactive session: print the transcript, read lines,
// send them, and show replies. `/N` expands a quick action, `/quit` exits.
// A background watcher keeps the agent status and route snapshot current.
func chatLoop(ctx context.Context, a *app) error {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.copilot.Watch(watchCtx)

	view := a.copilot.View()
	if err := a.render.Transcript(os.Stdout, view.Messages, false); err != nil {
		return err
	}
	fmt.Println()
	if err := a.render.QuickActions(os.Stdout, copilot.QuickActions); err != nil {
		return err
	}
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/quit" || text == "/exit" {
			break
		}
		if expanded, ok := expandQuickAction(text); ok {
			text = expanded
			fmt.Println(">", text)
		}

		reply, err := a.copilot.Send(ctx, text)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			continue
		}
		if err := a.render.Transcript(os.Stdout, []copilot.Message{reply}, false); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// expandQuickAction maps `/1`..`/5` to the canned quick-action messages.
func expandQuickAction(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	n, err := strconv.Atoi(text[1:])
	if err != nil || n < 1 || n > len(copilot.QuickActions) {
		return "", false
	}
	return copilot.QuickActions[n-1].Message, true
}
