// internal/api/winners/handlers.go
package winners

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Runway/internal/api/apiutil"
	"github.com/codr1/Runway/internal/api/htmx"
	dbgen "github.com/codr1/Runway/internal/db/generated"
	"github.com/codr1/Runway/internal/models"
)

const (
	winnersQueryTimeout = 5 * time.Second
	refreshWinnersList  = "refreshWinnersList"
)

var (
	queries     *dbgen.Queries
	queriesOnce sync.Once
)

type winnerRequest struct {
	SeasonID     int64  `json:"seasonId" validate:"required,gt=0"`
	ContestantID int64  `json:"contestantId" validate:"required,gt=0"`
	Rank         int64  `json:"rank" validate:"required,gt=0,lte=100"`
	Title        string `json:"title" validate:"max=120"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *dbgen.Queries) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
	})
}

// GET /api/v1/seasons/{id}/winners
func HandleListWinners(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	seasonID, err := apiutil.IDFromPath(r, "id", "season")
	if err != nil {
		_ = apiutil.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), winnersQueryTimeout)
	defer cancel()

	rows, err := q.ListWinnersBySeason(ctx, seasonID)
	if err != nil {
		logger.Error().Err(err).Int64("season_id", seasonID).Msg("Failed to list winners")
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to list winners")
		return
	}
	contestants, err := q.ListContestantsBySeason(ctx, seasonID)
	if err != nil {
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to list contestants")
		return
	}
	names := make(map[int64]string, len(contestants))
	for _, contestant := range contestants {
		names[contestant.ID] = contestant.Name
	}

	if err := apiutil.WriteData(w, http.StatusOK, models.WinnersFromDB(rows, names)); err != nil {
		logger.Error().Err(err).Msg("Failed to write winners response")
	}
}

// POST /api/v1/winners
//
// Each rank is held by one contestant per season.
func HandleCreateWinner(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req winnerRequest
	if apiutil.IsJSONRequest(r) {
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			_ = apiutil.WriteError(w, http.StatusBadRequest, "Invalid JSON body", nil)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			_ = apiutil.WriteError(w, http.StatusBadRequest, "Invalid form data", nil)
			return
		}
		fields := map[string]string{}
		parse := func(key, label string) int64 {
			value, err := apiutil.ParsePositiveInt64Field(r.FormValue(key), label)
			if err != nil {
				fields[key] = err.Error()
			}
			return value
		}
		req = winnerRequest{
			SeasonID:     parse("season_id", "Season"),
			ContestantID: parse("contestant_id", "Contestant"),
			Rank:         parse("rank", "Rank"),
			Title:        r.FormValue("title"),
		}
		if len(fields) > 0 {
			_ = apiutil.WriteValidationErrors(w, fields)
			return
		}
	}
	req.Title = strings.TrimSpace(req.Title)
	if fields := apiutil.ValidateStruct(req); fields != nil {
		_ = apiutil.WriteValidationErrors(w, fields)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), winnersQueryTimeout)
	defer cancel()

	contestant, err := q.GetContestant(ctx, req.ContestantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = apiutil.WriteValidationErrors(w, map[string]string{"contestantId": "Contestant not found"})
			return
		}
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to load contestant")
		return
	}
	if contestant.SeasonID != req.SeasonID {
		_ = apiutil.WriteValidationErrors(w, map[string]string{"contestantId": "Contestant is not part of this season"})
		return
	}

	row, err := q.CreateWinner(ctx, dbgen.CreateWinnerParams{
		SeasonID:     req.SeasonID,
		ContestantID: req.ContestantID,
		Rank:         req.Rank,
		Title:        req.Title,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		// Unique (season_id, rank) surfaces as 409 "rank already taken".
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to create winner")
		return
	}

	logger.Info().Int64("winner_id", row.ID).Int64("season_id", row.SeasonID).Int64("rank", row.Rank).Msg("Winner recorded")
	htmx.Trigger(w, refreshWinnersList)
	if htmx.IsRequest(r) {
		apiutil.WriteHTMLFeedback(w, http.StatusCreated, "Winner recorded")
		return
	}
	winners := models.WinnersFromDB([]dbgen.Winner{row}, map[int64]string{contestant.ID: contestant.Name})
	if err := apiutil.WriteData(w, http.StatusCreated, winners[0]); err != nil {
		logger.Error().Err(err).Msg("Failed to write winner response")
	}
}

// DELETE /api/v1/winners/{id}
func HandleDeleteWinner(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	winnerID, err := apiutil.IDFromPath(r, "id", "winner")
	if err != nil {
		_ = apiutil.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), winnersQueryTimeout)
	defer cancel()

	deleted, err := q.DeleteWinner(ctx, winnerID)
	if err != nil {
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to delete winner")
		return
	}
	if deleted == 0 {
		_ = apiutil.WriteError(w, http.StatusNotFound, "Winner not found", nil)
		return
	}

	logger.Info().Int64("winner_id", winnerID).Msg("Winner deleted")
	if htmx.IsRequest(r) {
		htmx.Trigger(w, refreshWinnersList)
		apiutil.WriteHTMLFeedback(w, http.StatusOK, "Winner removed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func loadQueries() *dbgen.Queries {
	return queries
}
