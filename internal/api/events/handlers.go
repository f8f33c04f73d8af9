// internal/api/events/handlers.go
package events

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
	dbgen "github.com/codr1/Runway/internal/db/generated"
	"github.com/codr1/Runway/internal/models"
)

const eventsQueryTimeout = 5 * time.Second

var (
	queries     *dbgen.Queries
	queriesOnce sync.Once
)

type eventRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Slug        string `json:"slug" validate:"max=120"`
	Description string `json:"description" validate:"max=2000"`
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

// GET /api/v1/events
func HandleListEvents(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), eventsQueryTimeout)
	defer cancel()

	rows, err := q.ListEvents(ctx)
	if err != nil {
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to list events")
		return
	}
	if err := apiutil.WriteData(w, http.StatusOK, models.EventsFromDB(rows)); err != nil {
		logger.Error().Err(err).Msg("Failed to write events response")
	}
}

// GET /api/v1/events/{id}
func HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	eventID, err := apiutil.IDFromPath(r, "id", "event")
	if err != nil {
		_ = apiutil.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), eventsQueryTimeout)
	defer cancel()

	row, err := q.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = apiutil.WriteError(w, http.StatusNotFound, "Event not found", nil)
			return
		}
		logger.Error().Err(err).Int64("event_id", eventID).Msg("Failed to load event")
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to load event")
		return
	}
	if err := apiutil.WriteData(w, http.StatusOK, models.EventFromDB(row)); err != nil {
		logger.Error().Err(err).Msg("Failed to write event response")
	}
}

// POST /api/v1/events
func HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	event, ok := decodeEvent(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), eventsQueryTimeout)
	defer cancel()

	if !slugAvailable(ctx, w, r, q, event.Slug, 0) {
		return
	}

	now := time.Now().UTC()
	row, err := q.CreateEvent(ctx, dbgen.CreateEventParams{
		Name:        event.Name,
		Slug:        event.Slug,
		Description: event.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to create event")
		return
	}

	logger.Info().Int64("event_id", row.ID).Str("slug", row.Slug).Msg("Event created")
	writeEventMutation(w, r, http.StatusCreated, row, "Event created")
}

// PUT /api/v1/events/{id}
func HandleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	eventID, err := apiutil.IDFromPath(r, "id", "event")
	if err != nil {
		_ = apiutil.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	event, ok := decodeEvent(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), eventsQueryTimeout)
	defer cancel()

	if !slugAvailable(ctx, w, r, q, event.Slug, eventID) {
		return
	}

	row, err := q.UpdateEvent(ctx, dbgen.UpdateEventParams{
		Name:        event.Name,
		Slug:        event.Slug,
		Description: event.Description,
		UpdatedAt:   time.Now().UTC(),
		ID:          eventID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = apiutil.WriteError(w, http.StatusNotFound, "Event not found", nil)
			return
		}
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to update event")
		return
	}

	writeEventMutation(w, r, http.StatusOK, row, "Event updated")
}

// DELETE /api/v1/events/{id}
//
// Seasons cascade in the database. Their media files are not collected here;
// delete seasons individually first when assets must be reclaimed.
func HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	eventID, err := apiutil.IDFromPath(r, "id", "event")
	if err != nil {
		_ = apiutil.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), eventsQueryTimeout)
	defer cancel()

	deleted, err := q.DeleteEvent(ctx, eventID)
	if err != nil {
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to delete event")
		return
	}
	if deleted == 0 {
		_ = apiutil.WriteError(w, http.StatusNotFound, "Event not found", nil)
		return
	}

	logger.Info().Int64("event_id", eventID).Msg("Event deleted")
	if htmx.IsRequest(r) {
		htmx.Trigger(w, "refreshEventsList")
		apiutil.WriteHTMLFeedback(w, http.StatusOK, "Event deleted")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeEvent(w http.ResponseWriter, r *http.Request) (models.Event, bool) {
	var req eventRequest
	if apiutil.IsJSONRequest(r) {
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			_ = apiutil.WriteError(w, http.StatusBadRequest, "Invalid JSON body", nil)
			return models.Event{}, false
		}
	} else {
		if err := r.ParseForm(); err != nil {
			_ = apiutil.WriteError(w, http.StatusBadRequest, "Invalid form data", nil)
			return models.Event{}, false
		}
		req = eventRequest{
			Name:        r.FormValue("name"),
			Slug:        r.FormValue("slug"),
			Description: r.FormValue("description"),
		}
	}

	if fields := apiutil.ValidateStruct(req); fields != nil {
		_ = apiutil.WriteValidationErrors(w, fields)
		return models.Event{}, false
	}

	event := models.Event{Name: req.Name, Slug: req.Slug, Description: req.Description}.Normalize()
	if err := event.Validate(); err != nil {
		_ = apiutil.WriteValidationErrors(w, map[string]string{"slug": err.Error()})
		return models.Event{}, false
	}
	return event, true
}

func slugAvailable(ctx context.Context, w http.ResponseWriter, r *http.Request, q *dbgen.Queries, slug string, eventID int64) bool {
	count, err := q.CountEventSlug(ctx, dbgen.CountEventSlugParams{Slug: slug, ID: eventID})
	if err != nil {
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to check event slug")
		return false
	}
	if count > 0 {
		_ = apiutil.WriteError(w, http.StatusConflict, "slug already exists", map[string]string{"slug": "slug already exists"})
		return false
	}
	return true
}

func writeEventMutation(w http.ResponseWriter, r *http.Request, status int, row dbgen.Event, message string) {
	if htmx.IsRequest(r) {
		htmx.Trigger(w, "refreshEventsList")
		apiutil.WriteHTMLFeedback(w, status, message)
		return
	}
	if err := apiutil.WriteData(w, status, models.EventFromDB(row)); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write event response")
	}
}

func loadQueries() *dbgen.Queries {
	return queries
}
