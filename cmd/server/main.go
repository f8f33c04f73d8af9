// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/Runway/internal/config"
	"github.com/codr1/Runway/internal/db"
	"github.com/codr1/Runway/internal/email"
	"github.com/codr1/Runway/internal/media"
	"github.com/codr1/Runway/internal/ratelimit"
	"github.com/codr1/Runway/internal/scheduler"
	"github.com/codr1/Runway/internal/seasons"
)

const shutdownTimeout = 30 * time.Second

// deps holds everything the handlers are initialized with.
type deps struct {
	db      *db.DB
	media   media.Store
	drafts  *seasons.Store
	limiter *ratelimit.Limiter
	mailer  email.EmailSender
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func newMediaStore(ctx context.Context, cfg *config.Config) (media.Store, error) {
	switch cfg.Media.Driver {
	case "s3":
		return media.NewS3Store(ctx, cfg.Media.Region, cfg.Media.Bucket)
	default:
		return media.NewDiskStore(cfg.Media.Dir)
	}
}

func newMailer(ctx context.Context, cfg *config.Config) (email.EmailSender, error) {
	if !cfg.EmailEnabled() {
		log.Warn().Msg("Email not configured, vote receipts disabled")
		return nil, nil
	}
	client, err := email.NewSESClient(ctx, cfg.Email.AccessKeyID, cfg.Email.SecretAccessKey, cfg.Email.Region, cfg.Email.Sender)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func setupScheduler(cfg *config.Config, d *deps) error {
	if err := scheduler.Init(); err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	if err := scheduler.RegisterDraftSweep(d.drafts, cfg.Scheduler.DraftSweep); err != nil {
		return fmt.Errorf("register draft sweep: %w", err)
	}
	if err := scheduler.RegisterPaymentSweep(d.db, cfg.Scheduler.PaymentSweep, cfg.Payments.StaleAfter); err != nil {
		return fmt.Errorf("register payment sweep: %w", err)
	}
	return scheduler.Start()
}

func main() {
	configPath := flag.String("config", "config/app.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("Failed to load configuration")
	}

	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	assets, err := newMediaStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Media.Driver).Msg("Failed to set up media storage")
	}

	mailer, err := newMailer(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up email client")
	}

	limits := ratelimit.DefaultConfig()
	limits.VoteMaxPerHour = cfg.Payments.VotesPerHour
	limiter := ratelimit.New(limits)
	defer limiter.Close()

	d := &deps{
		db:      database,
		media:   assets,
		drafts:  seasons.NewStore(cfg.Wizard.DraftTTL, nil),
		limiter: limiter,
		mailer:  mailer,
	}

	if err := setupScheduler(cfg, d); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("Scheduler shutdown failed")
		}
	}()

	server := newServer(cfg, d)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Str("environment", cfg.App.Environment).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
