// cmd/tools/paywatch/main.go
//
// paywatch polls a running server until one payment settles and prints the
// receipt as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Runway/internal/config"
	"github.com/codr1/Runway/internal/payments"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to the YAML config (poll settings and base URL)")
		baseURL    = flag.String("base-url", "", "Server base URL, overrides app.base_url")
		paymentID  = flag.String("id", "", "Payment ID to watch")
		interval   = flag.Duration("interval", 0, "Poll interval, overrides payments.poll_interval")
		attempts   = flag.Uint("attempts", 0, "Max polls, overrides payments.poll_attempts")
		timeout    = flag.Duration("timeout", 0, "Give up after this long (0 = attempts only)")
		verbose    = flag.Bool("v", false, "Log every poll")
	)
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	if *paymentID == "" {
		flag.Usage()
		os.Exit(2)
	}

	policy := payments.DefaultPollPolicy()
	target := *baseURL
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to load configuration")
		}
		policy.Interval = cfg.Payments.PollInterval
		policy.MaxAttempts = cfg.Payments.PollAttempts
		if target == "" {
			target = cfg.App.BaseURL
		}
	}
	if *interval > 0 {
		policy.Interval = *interval
	}
	if *attempts > 0 {
		policy.MaxAttempts = *attempts
	}
	policy.MaxElapsed = *timeout
	if target == "" {
		logger.Fatal().Msg("A base URL is required (-base-url or app.base_url)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	fetcher := payments.NewHTTPFetcher(target, nil)
	if err := watch(ctx, fetcher, policy, *paymentID, os.Stdout); err != nil {
		logger.Error().Err(err).Str("payment_id", *paymentID).Msg("Payment did not settle")
		os.Exit(1)
	}
}

// watch polls paymentID and writes the settled receipt to out. A settled
// payment that did not succeed is reported as an error after printing.
func watch(ctx context.Context, fetcher payments.Fetcher, policy payments.PollPolicy, paymentID string, out io.Writer) error {
	start := time.Now()
	resp, err := payments.NewPoller(fetcher, policy).Poll(ctx, paymentID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(resp); err != nil {
		return fmt.Errorf("write receipt: %w", err)
	}

	log.Ctx(ctx).Info().
		Str("payment_id", paymentID).
		Str("status", string(resp.Status)).
		Dur("elapsed", time.Since(start)).
		Msg("Payment settled")
	if resp.Status != payments.StatusSuccess {
		return errors.New("payment settled as " + string(resp.Status))
	}
	return nil
}
