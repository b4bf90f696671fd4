// Package main is the entry point for the daybook CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/daybook/cmd/daybook/commands"
	"go.trai.ch/daybook/internal/app"
	"go.trai.ch/daybook/internal/core/domain"
	_ "go.trai.ch/daybook/internal/wiring"
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, func() {}, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stdout, stderr io.Writer,
	provider ComponentProvider,
) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, cleanup, err := provider(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	defer cleanup()

	if components.Notifier != nil {
		components.Notifier.SetOutput(stderr)
	}

	// 2. Interface - CLI
	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(stdout, stderr)

	// 3. Execution
	code := 0
	if err := cli.Execute(ctx); err != nil {
		code = 1
		// Failed mutations were already reported as notifications.
		if !errors.Is(err, domain.ErrMutationFailed) {
			components.Logger.Error(err)
		}
	}

	// 4. Shutdown
	if err := components.App.Close(context.WithoutCancel(ctx)); err != nil {
		components.Logger.Error(err)
		code = 1
	}
	return code
}
