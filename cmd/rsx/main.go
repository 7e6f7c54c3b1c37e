// Package main is the entry point for the rsx script runner.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/rsx/cmd/rsx/commands"
	"go.trai.ch/rsx/internal/app"
	"go.trai.ch/rsx/internal/core/domain"
	_ "go.trai.ch/rsx/internal/wiring"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available if initialization failed; write
		// directly to stderr.
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return domain.ExitUsage
	}

	cli := commands.New(components)
	if err := cli.Execute(ctx); err != nil {
		components.Logger.Error(err)
		return domain.ExitCode(err)
	}

	// A script that ran and failed is not our failure; its exit code
	// passes through untouched.
	return cli.ExitCode()
}
