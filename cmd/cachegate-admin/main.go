package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cachegate/cachegate/internal/bootstrap"
	"github.com/cachegate/cachegate/internal/command"
	"github.com/cachegate/cachegate/internal/core"
)

// engineOpener returns a connected engine and a func releasing it.
type engineOpener func(ctx context.Context) (core.Engine, func() error, error)

type app struct {
	registry   *command.Registry
	openEngine engineOpener
	logger     *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := bootstrap.InitLogger()
	a := &app{
		registry: command.NewRegistry(),
		logger:   logger,
	}
	a.openEngine = a.openConfiguredEngine

	root := newRootCmd(a)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errSharedEngineRequired) {
			_, _ = fmt.Fprintln(os.Stderr, err)
		} else {
			logger.ErrorContext(ctx, "command failed", "error", err)
		}
		stop()
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "cachegate-admin",
		Short: "Operate on a shared cachegate engine",
		Long: `cachegate-admin runs engine commands directly against the Redis-backed engine
that cachegate instances share. It reads the same environment as the gateway.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCommandsCmd(a.registry))
	for _, c := range a.registry.Commands() {
		root.AddCommand(newEngineCmd(a, c))
	}
	return root
}
