package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobmcallan/panorama/internal/app"
	"github.com/bobmcallan/panorama/internal/common"
)

// runTimeout bounds one full pipeline pass including retries and generation
const runTimeout = 15 * time.Minute

func main() {
	configPath := os.Getenv("PANORAMA_CONFIG")

	a, err := app.NewApp(context.Background(), configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	common.PrintBanner(a.Config, a.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	// The run itself absorbs upstream failures; a non-nil error here means
	// the pipeline could not produce a report at all. Scheduled invocations
	// still exit zero so one bad day never breaks the cron chain.
	report, err := a.ReportService.Run(ctx)
	if err != nil {
		a.Logger.Error().Err(err).Msg("Report run failed")
		return
	}

	a.Logger.Info().
		Str("run_id", report.RunID).
		Int("instruments", len(report.Digest.Lines)).
		Int("sections", len(report.Sections)).
		Msg("Run complete")
}
