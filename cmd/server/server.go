// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Runway/internal/api"
	"github.com/codr1/Runway/internal/api/contestants"
	"github.com/codr1/Runway/internal/api/events"
	"github.com/codr1/Runway/internal/api/jury"
	"github.com/codr1/Runway/internal/api/payments"
	apiseasons "github.com/codr1/Runway/internal/api/seasons"
	"github.com/codr1/Runway/internal/api/winners"
	"github.com/codr1/Runway/internal/config"
	"github.com/codr1/Runway/internal/media"
	"github.com/codr1/Runway/internal/seasons"
	"github.com/codr1/Runway/internal/templates/layouts"
)

// bodySlack covers multipart framing and the non-file fields of an upload.
const bodySlack = 1 << 20

func newServer(cfg *config.Config, d *deps) *http.Server {
	router := http.NewServeMux()

	initHandlers(cfg, d)

	handler := api.ChainMiddleware(
		router,
		api.WithBodyLimit(maxBodyBytes(cfg)),
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	registerRoutes(router, cfg, d)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// maxBodyBytes allows a season's largest upload: poster, highlight grid and
// a gallery of the same size.
func maxBodyBytes(cfg *config.Config) int64 {
	if cfg.Media.MaxUploadBytes <= 0 {
		return 0
	}
	return cfg.Media.MaxUploadBytes*16 + bodySlack
}

func initHandlers(cfg *config.Config, d *deps) {
	events.InitHandlers(d.db.Queries)
	apiseasons.InitHandlers(d.db, d.media, d.drafts, apiseasons.Config{
		MediaBaseURL:     cfg.Media.BaseURL,
		MaxUploadBytes:   cfg.Media.MaxUploadBytes,
		EditStatusPolicy: seasons.EditStatusPolicy(cfg.Wizard.EditStatusPolicy),
	})
	contestants.InitHandlers(d.db, d.media, contestants.Config{
		MediaBaseURL:   cfg.Media.BaseURL,
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
		DefaultRegion:  cfg.App.DefaultRegion,
	})
	jury.InitHandlers(d.db, d.media, jury.Config{
		MediaBaseURL:   cfg.Media.BaseURL,
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
	})
	winners.InitHandlers(d.db.Queries)
	payments.InitHandlers(d.db, d.limiter, d.mailer, payments.Config{
		Currency:      cfg.Payments.Currency,
		CallbackToken: cfg.Payments.CallbackToken,
		TrustProxy:    cfg.App.TrustProxy,
		AgencyName:    cfg.App.Name,
	})
	if cfg.Payments.CallbackToken == "" {
		log.Warn().Msg("PAYMENTS_CALLBACK_TOKEN not set, gateway callbacks will be rejected")
	}
}

func registerRoutes(mux *http.ServeMux, cfg *config.Config, d *deps) {
	// Admin shell
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		if err := layouts.Base(cfg.App.Name, nil).Render(r.Context(), w); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Failed to render admin shell")
		}
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Events
	mux.HandleFunc("GET /api/v1/events", events.HandleListEvents)
	mux.HandleFunc("POST /api/v1/events", events.HandleCreateEvent)
	mux.HandleFunc("GET /api/v1/events/{id}", events.HandleGetEvent)
	mux.HandleFunc("PUT /api/v1/events/{id}", events.HandleUpdateEvent)
	mux.HandleFunc("DELETE /api/v1/events/{id}", events.HandleDeleteEvent)
	mux.HandleFunc("GET /api/v1/events/{id}/seasons", apiseasons.HandleListSeasons)

	// Seasons
	mux.HandleFunc("GET /api/v1/seasons/requirements", apiseasons.HandleRequirements)
	mux.HandleFunc("POST /api/v1/seasons", apiseasons.HandleCreateSeason)
	mux.HandleFunc("GET /api/v1/seasons/{id}", apiseasons.HandleGetSeason)
	mux.HandleFunc("PUT /api/v1/seasons/{id}", apiseasons.HandleUpdateSeason)
	mux.HandleFunc("DELETE /api/v1/seasons/{id}", apiseasons.HandleDeleteSeason)
	mux.HandleFunc("GET /api/v1/seasons/{id}/contestants", contestants.HandleListContestants)
	mux.HandleFunc("GET /api/v1/seasons/{id}/jury", jury.HandleListJury)
	mux.HandleFunc("GET /api/v1/seasons/{id}/winners", winners.HandleListWinners)

	// Season wizard
	mux.HandleFunc("POST /api/v1/season-wizard", apiseasons.HandleOpenWizard)
	mux.HandleFunc("GET /api/v1/season-wizard/{draft}", apiseasons.HandleGetWizard)
	mux.HandleFunc("DELETE /api/v1/season-wizard/{draft}", apiseasons.HandleCancelWizard)
	mux.HandleFunc("POST /api/v1/season-wizard/{draft}/status", apiseasons.HandleWizardStatus)
	mux.HandleFunc("POST /api/v1/season-wizard/{draft}/continue", apiseasons.HandleWizardContinue)
	mux.HandleFunc("POST /api/v1/season-wizard/{draft}/back", apiseasons.HandleWizardBack)
	mux.HandleFunc("POST /api/v1/season-wizard/{draft}/fields", apiseasons.HandleWizardFields)
	mux.HandleFunc("POST /api/v1/season-wizard/{draft}/submit", apiseasons.HandleWizardSubmit)

	// Contestants, jury, winners
	mux.HandleFunc("POST /api/v1/contestants", contestants.HandleCreateContestant)
	mux.HandleFunc("PUT /api/v1/contestants/{id}", contestants.HandleUpdateContestant)
	mux.HandleFunc("DELETE /api/v1/contestants/{id}", contestants.HandleDeleteContestant)
	mux.HandleFunc("POST /api/v1/jury", jury.HandleCreateJuryMember)
	mux.HandleFunc("DELETE /api/v1/jury/{id}", jury.HandleDeleteJuryMember)
	mux.HandleFunc("POST /api/v1/winners", winners.HandleCreateWinner)
	mux.HandleFunc("DELETE /api/v1/winners/{id}", winners.HandleDeleteWinner)

	// Votes and payments
	mux.HandleFunc("POST /api/v1/votes", payments.HandleCreateVote)
	mux.HandleFunc("GET /api/v1/payments/{id}/status", payments.HandlePaymentStatus)
	mux.HandleFunc("POST /api/v1/payments/{id}/callback", payments.HandlePaymentCallback)

	// Uploaded media, only when stored on local disk
	if disk, ok := d.media.(*media.DiskStore); ok && strings.HasPrefix(cfg.Media.BaseURL, "/") {
		prefix := strings.TrimSuffix(cfg.Media.BaseURL, "/") + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(disk.Dir()))))
	}

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "build/bin/static"
	}
	fs := http.FileServer(http.Dir(staticDir))
	mux.Handle("GET /static/", http.StripPrefix("/static/", fs))
}
