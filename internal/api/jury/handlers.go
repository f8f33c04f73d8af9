// internal/api/jury/handlers.go
package jury

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Runway/internal/api/apiutil"
	"github.com/codr1/Runway/internal/api/htmx"
	appdb "github.com/codr1/Runway/internal/db"
	dbgen "github.com/codr1/Runway/internal/db/generated"
	"github.com/codr1/Runway/internal/media"
	"github.com/codr1/Runway/internal/models"
)

const (
	juryQueryTimeout = 10 * time.Second
	multipartMemory  = 8 << 20
	refreshJuryList  = "refreshJuryList"
)

type Config struct {
	MediaBaseURL   string
	MaxUploadBytes int64
}

var (
	store       *appdb.DB
	mediaStore  media.Store
	settings    Config
	queriesOnce sync.Once
)

type juryRequest struct {
	SeasonID int64  `json:"seasonId" validate:"required,gt=0"`
	Name     string `json:"name" validate:"required,max=120"`
	Title    string `json:"title" validate:"max=120"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB, assets media.Store, cfg Config) {
	if database == nil || assets == nil {
		return
	}
	queriesOnce.Do(func() {
		store = database
		mediaStore = assets
		settings = cfg
	})
}

// GET /api/v1/seasons/{id}/jury
func HandleListJury(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), juryQueryTimeout)
	defer cancel()

	rows, err := database.Queries.ListJuryBySeason(ctx, seasonID)
	if err != nil {
		logger.Error().Err(err).Int64("season_id", seasonID).Msg("Failed to list jury")
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to list jury")
		return
	}
	if err := apiutil.WriteData(w, http.StatusOK, models.JuryFromDB(rows, settings.MediaBaseURL)); err != nil {
		logger.Error().Err(err).Msg("Failed to write jury response")
	}
}

// POST /api/v1/jury
//
// Multipart requests may carry the portrait under "image".
func HandleCreateJuryMember(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var (
		req   juryRequest
		image media.Slot
	)
	switch {
	case apiutil.IsJSONRequest(r):
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			_ = apiutil.WriteError(w, http.StatusBadRequest, "Invalid JSON body", nil)
			return
		}
	case apiutil.IsMultipartRequest(r):
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			apiutil.WriteHandlerError(r.Context(), w, badForm(err), "Failed to parse jury form")
			return
		}
		req = requestFromForm(r)
		slot, err := media.ParseSlot(r.MultipartForm, "image", "", settings.MaxUploadBytes)
		if err != nil {
			apiutil.WriteHandlerError(r.Context(), w, err, "Failed to read jury image")
			return
		}
		image = slot
	default:
		if err := r.ParseForm(); err != nil {
			apiutil.WriteHandlerError(r.Context(), w, badForm(err), "Failed to parse jury form")
			return
		}
		req = requestFromForm(r)
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Title = strings.TrimSpace(req.Title)
	if fields := apiutil.ValidateStruct(req); fields != nil {
		_ = apiutil.WriteValidationErrors(w, fields)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), juryQueryTimeout)
	defer cancel()

	imageRef, _, err := image.Commit(ctx, mediaStore, fmt.Sprintf("jury/%d", req.SeasonID))
	if err != nil {
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to store jury image")
		return
	}

	row, err := database.Queries.CreateJuryMember(ctx, dbgen.CreateJuryMemberParams{
		SeasonID:  req.SeasonID,
		Name:      req.Name,
		Title:     req.Title,
		ImagePath: imageRef,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		media.Collect(ctx, mediaStore, []string{imageRef})
		if apiutil.IsSQLiteForeignKeyViolation(err) {
			_ = apiutil.WriteValidationErrors(w, map[string]string{"seasonId": "Season not found"})
			return
		}
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to create jury member")
		return
	}

	logger.Info().Int64("jury_member_id", row.ID).Int64("season_id", row.SeasonID).Msg("Jury member created")
	htmx.Trigger(w, refreshJuryList)
	if htmx.IsRequest(r) {
		apiutil.WriteHTMLFeedback(w, http.StatusCreated, "Jury member added")
		return
	}
	if err := apiutil.WriteData(w, http.StatusCreated, models.JuryMemberFromDB(row, settings.MediaBaseURL)); err != nil {
		logger.Error().Err(err).Msg("Failed to write jury member response")
	}
}

// DELETE /api/v1/jury/{id}
func HandleDeleteJuryMember(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	memberID, err := apiutil.IDFromPath(r, "id", "jury member")
	if err != nil {
		_ = apiutil.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), juryQueryTimeout)
	defer cancel()

	member, err := database.Queries.GetJuryMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = apiutil.WriteError(w, http.StatusNotFound, "Jury member not found", nil)
			return
		}
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to load jury member")
		return
	}
	if _, err := database.Queries.DeleteJuryMember(ctx, memberID); err != nil {
		logger.Error().Err(err).Int64("jury_member_id", memberID).Msg("Failed to delete jury member")
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to delete jury member")
		return
	}
	media.Collect(ctx, mediaStore, []string{member.ImagePath})

	logger.Info().Int64("jury_member_id", memberID).Msg("Jury member deleted")
	if htmx.IsRequest(r) {
		htmx.Trigger(w, refreshJuryList)
		apiutil.WriteHTMLFeedback(w, http.StatusOK, "Jury member removed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func requestFromForm(r *http.Request) juryRequest {
	seasonID, _ := apiutil.ParsePositiveInt64Field(apiutil.FirstNonEmpty(r.FormValue("season_id"), r.FormValue("seasonId")), "Season")
	return juryRequest{
		SeasonID: seasonID,
		Name:     r.FormValue("name"),
		Title:    r.FormValue("title"),
	}
}

func badForm(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return err
	}
	return apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid form data", Err: err}
}

func loadDB() *appdb.DB {
	return store
}
