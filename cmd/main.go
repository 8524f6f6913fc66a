package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const (
	releaseVersion = "0.1.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cfg := &Config{}
	cobra.CheckErr(newCmd(cfg).ExecuteContext(ctx))
}

// setupLogger routes slog through pterm's logger.
func setupLogger(verbose bool) *slog.Logger {
	if verbose {
		pterm.DefaultLogger.Level = pterm.LogLevelDebug
	}
	handler := pterm.NewSlogHandler(&pterm.DefaultLogger)
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
