// internal/api/seasons/handlers.go
package seasons

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Runway/internal/api/apiutil"
	"github.com/codr1/Runway/internal/api/htmx"
	appdb "github.com/codr1/Runway/internal/db"
	dbgen "github.com/codr1/Runway/internal/db/generated"
	"github.com/codr1/Runway/internal/media"
	"github.com/codr1/Runway/internal/models"
	domain "github.com/codr1/Runway/internal/seasons"
	seasonstempl "github.com/codr1/Runway/internal/templates/components/seasons"
)

const (
	seasonsQueryTimeout = 10 * time.Second
	multipartMemory     = 8 << 20
	refreshSeasonsList  = "refreshSeasonsList"
)

// Config carries the settings the season handlers need from the server.
type Config struct {
	MediaBaseURL     string
	MaxUploadBytes   int64
	EditStatusPolicy domain.EditStatusPolicy
}

var (
	store       *appdb.DB
	mediaStore  media.Store
	drafts      *domain.Store
	settings    Config
	queriesOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB, assets media.Store, wizards *domain.Store, cfg Config) {
	if database == nil || assets == nil || wizards == nil {
		return
	}
	queriesOnce.Do(func() {
		store = database
		mediaStore = assets
		drafts = wizards
		settings = cfg
	})
}

// GET /api/v1/events/{id}/seasons
func HandleListSeasons(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	eventID, err := apiutil.IDFromPath(r, "id", "event")
	if err != nil {
		_ = apiutil.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), seasonsQueryTimeout)
	defer cancel()

	event, err := database.Queries.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = apiutil.WriteError(w, http.StatusNotFound, "Event not found", nil)
			return
		}
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to load event")
		return
	}

	rows, err := database.Queries.ListSeasonsByEvent(ctx, eventID)
	if err != nil {
		logger.Error().Err(err).Int64("event_id", eventID).Msg("Failed to list seasons")
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to list seasons")
		return
	}
	list := models.SeasonsFromDB(rows, event.Name, settings.MediaBaseURL)

	if htmx.IsRequest(r) {
		component := seasonstempl.SeasonList(seasonstempl.ListData{
			EventID:   event.ID,
			EventName: event.Name,
			Seasons:   list,
		})
		apiutil.RenderHTMLComponent(r.Context(), w, component, nil, "Failed to render seasons list", "Failed to render seasons")
		return
	}
	if err := apiutil.WriteData(w, http.StatusOK, list); err != nil {
		logger.Error().Err(err).Msg("Failed to write seasons response")
	}
}

// GET /api/v1/seasons/{id}
func HandleGetSeason(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	seasonID, err := apiutil.IDFromPath(r, "id", "season")
	if err != nil {
		_ = apiutil.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), seasonsQueryTimeout)
	defer cancel()

	season, event, err := loadSeason(ctx, database.Queries, seasonID)
	if err != nil {
		writeLoadError(r.Context(), w, err, seasonID)
		return
	}
	if err := apiutil.WriteData(w, http.StatusOK, models.SeasonFromDB(season, event.Name, settings.MediaBaseURL)); err != nil {
		logger.Error().Err(err).Msg("Failed to write season response")
	}
}

// GET /api/v1/seasons/requirements?status=
func HandleRequirements(w http.ResponseWriter, r *http.Request) {
	status, err := domain.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		_ = apiutil.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	reqs := domain.RequirementsFor(status)

	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(r.Context(), w, seasonstempl.Requirements(status, reqs), nil, "Failed to render requirements", "Failed to render requirements")
		return
	}
	_ = apiutil.WriteData(w, http.StatusOK, map[string]any{
		"status":       status,
		"requirements": reqs,
		"required":     nonNilFields(reqs.Required()),
		"forced":       nonNilFields(reqs.Forced()),
	})
}

// POST /api/v1/seasons
func HandleCreateSeason(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	decoded, fieldErrs, err := decodeSeasonRequest(r)
	if err != nil {
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to decode season")
		return
	}
	if fieldErrs != nil {
		_ = apiutil.WriteValidationErrors(w, fieldErrs)
		return
	}
	if decoded.Status == nil {
		_ = apiutil.WriteValidationErrors(w, map[string]string{string(domain.FieldStatus): "Please select a status"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), seasonsQueryTimeout)
	defer cancel()

	draft := domain.Draft{}.WithStatus(*decoded.Status).Apply(decoded.Input)
	if draft.EventID > 0 {
		event, err := database.Queries.GetEvent(ctx, draft.EventID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				_ = apiutil.WriteValidationErrors(w, map[string]string{string(domain.FieldEventID): "Event not found"})
				return
			}
			apiutil.WriteHandlerError(r.Context(), w, err, "Failed to load event")
			return
		}
		eventName := event.Name
		draft = draft.Apply(domain.Input{EventName: &eventName})
	}

	if errs := domain.Validate(draft); len(errs) > 0 {
		_ = apiutil.WriteValidationErrors(w, errs.Map())
		return
	}

	changes, err := mediaFromRequest(decoded, models.SeasonMedia{}, settings.MaxUploadBytes)
	if err != nil {
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to read season media")
		return
	}

	saved, err := saveSeason(ctx, database, mediaStore, 0, draft, changes)
	if err != nil {
		writeSaveError(r.Context(), w, err, "Failed to create season")
		return
	}

	logger.Info().Int64("season_id", saved.ID).Str("slug", saved.Slug).Msg("Season created")
	writeSeasonMutation(w, r, http.StatusCreated, saved, draft.EventName, "Season created")
}

// PUT /api/v1/seasons/{id}
func HandleUpdateSeason(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	seasonID, err := apiutil.IDFromPath(r, "id", "season")
	if err != nil {
		_ = apiutil.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	decoded, fieldErrs, err := decodeSeasonRequest(r)
	if err != nil {
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to decode season")
		return
	}
	if fieldErrs != nil {
		_ = apiutil.WriteValidationErrors(w, fieldErrs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), seasonsQueryTimeout)
	defer cancel()

	season, event, err := loadSeason(ctx, database.Queries, seasonID)
	if err != nil {
		writeLoadError(r.Context(), w, err, seasonID)
		return
	}

	draft := models.SeasonDraft(season, event.Name)
	if decoded.Status != nil {
		current, _ := draft.Status()
		if *decoded.Status != current && settings.EditStatusPolicy != domain.EditStatusChangeable {
			_ = apiutil.WriteValidationErrors(w, map[string]string{string(domain.FieldStatus): domain.ErrStatusLocked.Error()})
			return
		}
		draft = draft.WithStatus(*decoded.Status)
	}
	// Seasons never move between events.
	decoded.Input.EventID = nil
	draft = draft.Apply(decoded.Input)

	if errs := domain.Validate(draft); len(errs) > 0 {
		_ = apiutil.WriteValidationErrors(w, errs.Map())
		return
	}

	changes, err := mediaFromRequest(decoded, models.SeasonMediaFromDB(season), settings.MaxUploadBytes)
	if err != nil {
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to read season media")
		return
	}

	saved, err := saveSeason(ctx, database, mediaStore, seasonID, draft, changes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = apiutil.WriteError(w, http.StatusNotFound, "Season not found", nil)
			return
		}
		writeSaveError(r.Context(), w, err, "Failed to update season")
		return
	}

	logger.Info().Int64("season_id", saved.ID).Msg("Season updated")
	writeSeasonMutation(w, r, http.StatusOK, saved, event.Name, "Season updated")
}

// DELETE /api/v1/seasons/{id}
//
// Contestants, jury members and winners go with the season in one
// transaction. Their media is collected after the commit.
func HandleDeleteSeason(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	seasonID, err := apiutil.IDFromPath(r, "id", "season")
	if err != nil {
		_ = apiutil.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), seasonsQueryTimeout)
	defer cancel()

	var refs []string
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		season, err := txdb.Queries.GetSeason(ctx, seasonID)
		if err != nil {
			return err
		}
		contestants, err := txdb.Queries.ListContestantsBySeason(ctx, seasonID)
		if err != nil {
			return err
		}
		jury, err := txdb.Queries.ListJuryBySeason(ctx, seasonID)
		if err != nil {
			return err
		}
		refs = seasonMediaRefs(season, contestants, jury)

		if _, err := txdb.Queries.DeleteWinnersBySeason(ctx, seasonID); err != nil {
			return err
		}
		if _, err := txdb.Queries.DeleteJuryBySeason(ctx, seasonID); err != nil {
			return err
		}
		if _, err := txdb.Queries.DeleteContestantsBySeason(ctx, seasonID); err != nil {
			return err
		}
		_, err = txdb.Queries.DeleteSeason(ctx, seasonID)
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = apiutil.WriteError(w, http.StatusNotFound, "Season not found", nil)
			return
		}
		logger.Error().Err(err).Int64("season_id", seasonID).Msg("Failed to delete season")
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to delete season")
		return
	}

	removed := media.Collect(r.Context(), mediaStore, refs)
	logger.Info().Int64("season_id", seasonID).Int("media_removed", removed).Msg("Season deleted")

	if htmx.IsRequest(r) {
		htmx.Trigger(w, refreshSeasonsList)
		apiutil.WriteHTMLFeedback(w, http.StatusOK, "Season deleted")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func loadSeason(ctx context.Context, q *dbgen.Queries, seasonID int64) (dbgen.Season, dbgen.Event, error) {
	season, err := q.GetSeason(ctx, seasonID)
	if err != nil {
		return dbgen.Season{}, dbgen.Event{}, err
	}
	event, err := q.GetEvent(ctx, season.EventID)
	if err != nil {
		return dbgen.Season{}, dbgen.Event{}, err
	}
	return season, event, nil
}

func writeLoadError(ctx context.Context, w http.ResponseWriter, err error, seasonID int64) {
	if errors.Is(err, sql.ErrNoRows) {
		_ = apiutil.WriteError(w, http.StatusNotFound, "Season not found", nil)
		return
	}
	log.Ctx(ctx).Error().Err(err).Int64("season_id", seasonID).Msg("Failed to load season")
	apiutil.WriteHandlerError(ctx, w, err, "Failed to load season")
}

func writeSeasonMutation(w http.ResponseWriter, r *http.Request, status int, row dbgen.Season, eventName, message string) {
	htmx.Trigger(w, refreshSeasonsList)
	if htmx.IsRequest(r) {
		apiutil.WriteHTMLFeedback(w, status, message)
		return
	}
	if err := apiutil.WriteData(w, status, models.SeasonFromDB(row, eventName, settings.MediaBaseURL)); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write season response")
	}
}

func nonNilFields(fields []domain.Field) []domain.Field {
	if fields == nil {
		return []domain.Field{}
	}
	return fields
}

func loadDB() *appdb.DB {
	return store
}
