package seasons

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Runway/internal/api/apiutil"
	"github.com/codr1/Runway/internal/api/htmx"
	dbgen "github.com/codr1/Runway/internal/db/generated"
	"github.com/codr1/Runway/internal/models"
	domain "github.com/codr1/Runway/internal/seasons"
	seasonstempl "github.com/codr1/Runway/internal/templates/components/seasons"
)

// wizardResponse is the JSON form of an open wizard.
type wizardResponse struct {
	DraftID      string              `json:"draftId"`
	Mode         domain.Mode         `json:"mode"`
	Step         domain.Step         `json:"step"`
	SeasonID     int64               `json:"seasonId,omitempty"`
	StepError    string              `json:"stepError,omitempty"`
	Errors       map[string]string   `json:"errors,omitempty"`
	Submitting   bool                `json:"submitting"`
	StatusLocked bool                `json:"statusLocked"`
	CanGoBack    bool                `json:"canGoBack"`
	Requirements domain.Requirements `json:"requirements"`
	Draft        wizardDraftResponse `json:"draft"`
	Season       *models.Season      `json:"season,omitempty"`
}

type wizardDraftResponse struct {
	EventID              int64                  `json:"eventId,omitempty"`
	EventName            string                 `json:"eventName,omitempty"`
	Status               domain.Status          `json:"status,omitempty"`
	Year                 int                    `json:"year,omitempty"`
	Slug                 string                 `json:"slug"`
	SlugEdited           bool                   `json:"slugEdited"`
	StartDate            string                 `json:"startDate,omitempty"`
	EndDate              string                 `json:"endDate,omitempty"`
	AuditionFormDeadline string                 `json:"auditionFormDeadline,omitempty"`
	VotingEndDate        string                 `json:"votingEndDate,omitempty"`
	PricePerVote         int64                  `json:"pricePerVote"`
	Notices              []string               `json:"notices"`
	Timeline             []models.TimelineEntry `json:"timeline"`
}

func newWizardResponse(draftID string, view domain.View) wizardResponse {
	draft := view.Draft
	status, _ := draft.Status()
	timeline := make([]models.TimelineEntry, len(draft.Timeline))
	for i, entry := range draft.Timeline {
		timeline[i] = models.TimelineEntry{
			Label: entry.Label,
			Icon:  entry.Icon,
			Start: models.FormatDate(entry.Start),
			End:   models.FormatDate(entry.End),
		}
	}

	resp := wizardResponse{
		DraftID:      draftID,
		Mode:         view.Mode,
		Step:         view.Step,
		SeasonID:     view.SeasonID,
		StepError:    view.StepError,
		Submitting:   view.Submitting,
		StatusLocked: view.StatusLocked,
		CanGoBack:    view.CanGoBack,
		Requirements: view.Requirements,
		Draft: wizardDraftResponse{
			EventID:              draft.EventID,
			EventName:            draft.EventName,
			Status:               status,
			Year:                 draft.Year,
			Slug:                 draft.Slug,
			SlugEdited:           draft.SlugEdited,
			StartDate:            models.FormatDate(draft.StartDate),
			EndDate:              models.FormatDate(draft.EndDate),
			AuditionFormDeadline: models.FormatDate(draft.AuditionFormDeadline()),
			VotingEndDate:        models.FormatDate(draft.VotingEndDate()),
			PricePerVote:         draft.PricePerVote(),
			Notices:              draft.Notices(),
			Timeline:             timeline,
		},
	}
	if len(view.Errors) > 0 {
		resp.Errors = view.Errors.Map()
	}
	return resp
}

// POST /api/v1/season-wizard[?season_id=][&event_id=]
func HandleOpenWizard(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil || drafts == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	seasonID, err := apiutil.IDFromQuery(r, "season_id")
	if err != nil {
		_ = apiutil.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	eventID, err := apiutil.IDFromQuery(r, "event_id")
	if err != nil {
		_ = apiutil.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), seasonsQueryTimeout)
	defer cancel()

	var wizard *domain.Wizard
	if seasonID > 0 {
		season, event, err := loadSeason(ctx, database.Queries, seasonID)
		if err != nil {
			writeLoadError(r.Context(), w, err, seasonID)
			return
		}
		wizard = domain.NewEditWizard(season.ID, models.SeasonDraft(season, event.Name), settings.EditStatusPolicy)
	} else {
		seed := domain.Draft{Year: time.Now().UTC().Year()}
		if eventID > 0 {
			event, err := database.Queries.GetEvent(ctx, eventID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					_ = apiutil.WriteError(w, http.StatusNotFound, "Event not found", nil)
					return
				}
				apiutil.WriteHandlerError(r.Context(), w, err, "Failed to load event")
				return
			}
			seed.EventID = event.ID
			seed.EventName = event.Name
		}
		wizard = domain.NewCreateWizard(seed)
	}

	draftID := drafts.Put(wizard)
	logger.Debug().Str("draft_id", draftID).Int64("season_id", seasonID).Msg("Season wizard opened")
	writeWizard(ctx, w, r, http.StatusCreated, draftID, wizard)
}

// GET /api/v1/season-wizard/{draft}
func HandleGetWizard(w http.ResponseWriter, r *http.Request) {
	draftID, wizard, ok := wizardFromPath(w, r)
	if !ok {
		return
	}
	writeWizard(r.Context(), w, r, http.StatusOK, draftID, wizard)
}

// POST /api/v1/season-wizard/{draft}/status
func HandleWizardStatus(w http.ResponseWriter, r *http.Request) {
	draftID, wizard, ok := wizardFromPath(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		_ = apiutil.WriteError(w, http.StatusBadRequest, "Invalid form data", nil)
		return
	}

	status, err := domain.ParseStatus(r.FormValue("status"))
	if err != nil {
		_ = apiutil.WriteValidationErrors(w, map[string]string{string(domain.FieldStatus): err.Error()})
		return
	}
	if err := wizard.SelectStatus(status); err != nil {
		writeWizardError(r.Context(), w, draftID, err)
		return
	}
	writeWizard(r.Context(), w, r, http.StatusOK, draftID, wizard)
}

// POST /api/v1/season-wizard/{draft}/continue
//
// A status sent with the request is selected first, so the status step can
// post its radio group straight to continue.
func HandleWizardContinue(w http.ResponseWriter, r *http.Request) {
	draftID, wizard, ok := wizardFromPath(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		_ = apiutil.WriteError(w, http.StatusBadRequest, "Invalid form data", nil)
		return
	}

	if raw := strings.TrimSpace(r.FormValue("status")); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			_ = apiutil.WriteValidationErrors(w, map[string]string{string(domain.FieldStatus): err.Error()})
			return
		}
		if err := wizard.SelectStatus(status); err != nil {
			writeWizardError(r.Context(), w, draftID, err)
			return
		}
	}

	advanced, err := wizard.Continue()
	if err != nil {
		writeWizardError(r.Context(), w, draftID, err)
		return
	}
	if !advanced && !htmx.IsRequest(r) {
		view := wizard.View()
		_ = apiutil.WriteError(w, http.StatusUnprocessableEntity, view.StepError, map[string]string{string(domain.FieldStatus): view.StepError})
		return
	}
	writeWizard(r.Context(), w, r, http.StatusOK, draftID, wizard)
}

// POST /api/v1/season-wizard/{draft}/back
func HandleWizardBack(w http.ResponseWriter, r *http.Request) {
	draftID, wizard, ok := wizardFromPath(w, r)
	if !ok {
		return
	}
	if err := wizard.Back(); err != nil {
		writeWizardError(r.Context(), w, draftID, err)
		return
	}
	writeWizard(r.Context(), w, r, http.StatusOK, draftID, wizard)
}

// POST /api/v1/season-wizard/{draft}/fields
func HandleWizardFields(w http.ResponseWriter, r *http.Request) {
	draftID, wizard, ok := wizardFromPath(w, r)
	if !ok {
		return
	}

	decoded, fieldErrs, err := decodeSeasonRequest(r)
	if err != nil {
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to decode wizard fields")
		return
	}
	if fieldErrs != nil {
		_ = apiutil.WriteValidationErrors(w, fieldErrs)
		return
	}
	if err := applyWizardInput(r.Context(), wizard, decoded); err != nil {
		writeWizardError(r.Context(), w, draftID, err)
		return
	}
	writeWizard(r.Context(), w, r, http.StatusOK, draftID, wizard)
}

// POST /api/v1/season-wizard/{draft}/submit
//
// Fields sent with the submit are applied first. Validation failures keep
// the wizard open with its field errors; success persists the season,
// closes the wizard and asks the list to refresh.
func HandleWizardSubmit(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	draftID, wizard, ok := wizardFromPath(w, r)
	if !ok {
		return
	}
	if wizard.View().Submitting {
		writeWizardError(r.Context(), w, draftID, domain.ErrSubmitInFlight)
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

	if err := applyWizardInput(ctx, wizard, decoded); err != nil {
		writeWizardError(r.Context(), w, draftID, err)
		return
	}

	view := wizard.View()
	existing := models.SeasonMedia{}
	var eventName string
	if view.Mode == domain.ModeEdit {
		season, event, err := loadSeason(ctx, database.Queries, view.SeasonID)
		if err != nil {
			writeLoadError(r.Context(), w, err, view.SeasonID)
			return
		}
		existing = models.SeasonMediaFromDB(season)
		eventName = event.Name
	}
	changes, err := mediaFromRequest(decoded, existing, settings.MaxUploadBytes)
	if err != nil {
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to read season media")
		return
	}

	var saved dbgen.Season
	err = wizard.Submit(ctx, func(ctx context.Context, draft domain.Draft) error {
		if view.Mode == domain.ModeCreate {
			event, err := database.Queries.GetEvent(ctx, draft.EventID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return &domain.ValidationError{Errors: domain.Errors{{Field: domain.FieldEventID, Message: "Event not found"}}}
				}
				return err
			}
			eventName = event.Name
		}
		var err error
		saved, err = saveSeason(ctx, database, mediaStore, view.SeasonID, draft, changes)
		return err
	})
	if err != nil {
		var validationErr *domain.ValidationError
		switch {
		case errors.As(err, &validationErr):
			wizard.SetErrors(validationErr.Errors)
			writeWizardOrErrors(ctx, w, r, draftID, wizard, http.StatusUnprocessableEntity, "Please fix the highlighted fields", validationErr.Errors.Map())
		case errors.Is(err, errSlugTaken), errors.Is(err, domain.ErrSlugExhausted):
			wizard.SetErrors(domain.Errors{{Field: domain.FieldSlug, Message: msgSlugTaken}})
			writeWizardOrErrors(ctx, w, r, draftID, wizard, http.StatusConflict, msgSlugTaken, map[string]string{string(domain.FieldSlug): msgSlugTaken})
		default:
			logger.Error().Err(err).Str("draft_id", draftID).Int64("season_id", view.SeasonID).Msg("Failed to submit season wizard")
			writeWizardError(r.Context(), w, draftID, err)
		}
		return
	}

	drafts.Delete(draftID)
	logger.Info().Str("draft_id", draftID).Int64("season_id", saved.ID).Msg("Season wizard submitted")

	status := http.StatusOK
	if view.Mode == domain.ModeCreate {
		status = http.StatusCreated
	}
	htmx.Trigger(w, refreshSeasonsList)
	if htmx.IsRequest(r) {
		writeWizard(ctx, w, r, status, draftID, wizard)
		return
	}
	resp := newWizardResponse(draftID, wizard.View())
	season := models.SeasonFromDB(saved, eventName, settings.MediaBaseURL)
	resp.Season = &season
	_ = apiutil.WriteData(w, status, resp)
}

// DELETE /api/v1/season-wizard/{draft}
func HandleCancelWizard(w http.ResponseWriter, r *http.Request) {
	draftID, wizard, ok := wizardFromPath(w, r)
	if !ok {
		return
	}
	wizard.Cancel()
	drafts.Delete(draftID)
	log.Ctx(r.Context()).Debug().Str("draft_id", draftID).Msg("Season wizard cancelled")

	if htmx.IsRequest(r) {
		writeWizard(r.Context(), w, r, http.StatusOK, draftID, wizard)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// applyWizardInput selects a changed status before merging the fields, so
// values only legal for the new status are kept.
func applyWizardInput(ctx context.Context, wizard *domain.Wizard, decoded decodedSeason) error {
	if decoded.Status != nil {
		current, _ := wizard.View().Draft.Status()
		if *decoded.Status != current {
			if err := wizard.SelectStatus(*decoded.Status); err != nil {
				return err
			}
		}
	}
	view := wizard.View()
	if view.Mode == domain.ModeEdit {
		decoded.Input.EventID = nil
	}
	if decoded.Input.EventID != nil && *decoded.Input.EventID != view.Draft.EventID {
		database := loadDB()
		event, err := database.Queries.GetEvent(ctx, *decoded.Input.EventID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &domain.ValidationError{Errors: domain.Errors{{Field: domain.FieldEventID, Message: "Event not found"}}}
			}
			return err
		}
		name := event.Name
		decoded.Input.EventName = &name
	}
	return wizard.Update(decoded.Input)
}

func wizardFromPath(w http.ResponseWriter, r *http.Request) (string, *domain.Wizard, bool) {
	if drafts == nil {
		log.Ctx(r.Context()).Error().Msg("Wizard store not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return "", nil, false
	}
	draftID := strings.TrimSpace(r.PathValue("draft"))
	wizard, ok := drafts.Get(draftID)
	if draftID == "" || !ok {
		_ = apiutil.WriteError(w, http.StatusNotFound, "Draft not found or expired", nil)
		return "", nil, false
	}
	return draftID, wizard, true
}

func writeWizard(ctx context.Context, w http.ResponseWriter, r *http.Request, status int, draftID string, wizard *domain.Wizard) {
	view := wizard.View()
	if htmx.IsRequest(r) {
		data := seasonstempl.NewWizardData(draftID, view, loadEvents(ctx))
		apiutil.RenderHTMLComponent(ctx, w, seasonstempl.WizardModal(data), nil, "Failed to render season wizard", "Failed to render wizard")
		return
	}
	if err := apiutil.WriteData(w, status, newWizardResponse(draftID, view)); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("draft_id", draftID).Msg("Failed to write wizard response")
	}
}

// writeWizardOrErrors re-renders the modal for HTMX, which only swaps 2xx
// responses, and sends the error envelope to everyone else.
func writeWizardOrErrors(ctx context.Context, w http.ResponseWriter, r *http.Request, draftID string, wizard *domain.Wizard, status int, message string, fields map[string]string) {
	if htmx.IsRequest(r) {
		writeWizard(ctx, w, r, http.StatusOK, draftID, wizard)
		return
	}
	_ = apiutil.WriteError(w, status, message, fields)
}

func writeWizardError(ctx context.Context, w http.ResponseWriter, draftID string, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		_ = apiutil.WriteValidationErrors(w, validationErr.Errors.Map())
	case errors.Is(err, domain.ErrWizardClosed):
		_ = apiutil.WriteError(w, http.StatusGone, err.Error(), nil)
	case errors.Is(err, domain.ErrWrongStep), errors.Is(err, domain.ErrSubmitInFlight):
		_ = apiutil.WriteError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, domain.ErrStatusLocked):
		_ = apiutil.WriteValidationErrors(w, map[string]string{string(domain.FieldStatus): err.Error()})
	default:
		log.Ctx(ctx).Error().Err(err).Str("draft_id", draftID).Msg("Season wizard action failed")
		apiutil.WriteHandlerError(ctx, w, err, "Season wizard action failed")
	}
}

// loadEvents feeds the event picker. A failure renders an empty picker.
func loadEvents(ctx context.Context) []models.Event {
	database := loadDB()
	if database == nil {
		return nil
	}
	rows, err := database.Queries.ListEvents(ctx)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Failed to load events for wizard")
		return nil
	}
	return models.EventsFromDB(rows)
}
