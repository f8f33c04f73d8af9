// internal/api/contestants/handlers.go
package contestants

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"slices"
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
	domain "github.com/codr1/Runway/internal/seasons"
)

const (
	contestantsQueryTimeout = 10 * time.Second
	multipartMemory         = 8 << 20
	refreshContestantsList  = "refreshContestantsList"
	msgSlugTaken            = "slug already exists"
)

var errSlugTaken = errors.New(msgSlugTaken)

type Config struct {
	MediaBaseURL   string
	MaxUploadBytes int64
	DefaultRegion  string
}

var (
	store       *appdb.DB
	mediaStore  media.Store
	settings    Config
	queriesOnce sync.Once
)

type contestantRequest struct {
	SeasonID           int64     `json:"seasonId"`
	Name               string    `json:"name" validate:"required,max=120"`
	Slug               string    `json:"slug" validate:"max=120"`
	Bio                string    `json:"bio" validate:"max=4000"`
	Phone              string    `json:"phone" validate:"max=32"`
	ProfileImageRemove bool      `json:"profileImageRemove"`
	GalleryRetained    *[]string `json:"galleryRetained"`
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

// GET /api/v1/seasons/{id}/contestants
func HandleListContestants(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), contestantsQueryTimeout)
	defer cancel()

	if _, err := database.Queries.GetSeason(ctx, seasonID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = apiutil.WriteError(w, http.StatusNotFound, "Season not found", nil)
			return
		}
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to load season")
		return
	}

	rows, err := database.Queries.ListContestantsBySeason(ctx, seasonID)
	if err != nil {
		logger.Error().Err(err).Int64("season_id", seasonID).Msg("Failed to list contestants")
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to list contestants")
		return
	}
	if err := apiutil.WriteData(w, http.StatusOK, models.ContestantsFromDB(rows, settings.MediaBaseURL)); err != nil {
		logger.Error().Err(err).Msg("Failed to write contestants response")
	}
}

// POST /api/v1/contestants
func HandleCreateContestant(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	req, form, ok := decodeContestant(w, r)
	if !ok {
		return
	}
	if req.SeasonID <= 0 {
		_ = apiutil.WriteValidationErrors(w, map[string]string{"seasonId": "is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), contestantsQueryTimeout)
	defer cancel()

	if _, err := database.Queries.GetSeason(ctx, req.SeasonID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = apiutil.WriteValidationErrors(w, map[string]string{"seasonId": "Season not found"})
			return
		}
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to load season")
		return
	}

	profile, gallery, err := mediaFromRequest(req, form, dbgen.Contestant{GalleryPaths: "[]"})
	if err != nil {
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to read contestant media")
		return
	}

	saved, err := saveContestant(ctx, database.Queries, dbgen.Contestant{SeasonID: req.SeasonID}, req, profile, gallery)
	if err != nil {
		writeSaveError(r.Context(), w, err, "Failed to create contestant")
		return
	}

	logger.Info().Int64("contestant_id", saved.ID).Int64("season_id", saved.SeasonID).Msg("Contestant created")
	writeContestantMutation(w, r, http.StatusCreated, saved, "Contestant added")
}

// PUT /api/v1/contestants/{id}
func HandleUpdateContestant(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	contestantID, err := apiutil.IDFromPath(r, "id", "contestant")
	if err != nil {
		_ = apiutil.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	req, form, ok := decodeContestant(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), contestantsQueryTimeout)
	defer cancel()

	existing, err := database.Queries.GetContestant(ctx, contestantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = apiutil.WriteError(w, http.StatusNotFound, "Contestant not found", nil)
			return
		}
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to load contestant")
		return
	}

	profile, gallery, err := mediaFromRequest(req, form, existing)
	if err != nil {
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to read contestant media")
		return
	}

	saved, err := saveContestant(ctx, database.Queries, existing, req, profile, gallery)
	if err != nil {
		writeSaveError(r.Context(), w, err, "Failed to update contestant")
		return
	}

	logger.Info().Int64("contestant_id", saved.ID).Msg("Contestant updated")
	writeContestantMutation(w, r, http.StatusOK, saved, "Contestant updated")
}

// DELETE /api/v1/contestants/{id}
//
// Winner entries for the contestant cascade in the database. Payments keep
// their history with the contestant cleared.
func HandleDeleteContestant(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	contestantID, err := apiutil.IDFromPath(r, "id", "contestant")
	if err != nil {
		_ = apiutil.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), contestantsQueryTimeout)
	defer cancel()

	var removed dbgen.Contestant
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		row, err := txdb.Queries.GetContestant(ctx, contestantID)
		if err != nil {
			return err
		}
		if _, err := txdb.Queries.DeleteContestant(ctx, contestantID); err != nil {
			return fmt.Errorf("delete contestant: %w", err)
		}
		removed = row
		return nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = apiutil.WriteError(w, http.StatusNotFound, "Contestant not found", nil)
			return
		}
		logger.Error().Err(err).Int64("contestant_id", contestantID).Msg("Failed to delete contestant")
		apiutil.WriteHandlerError(r.Context(), w, err, "Failed to delete contestant")
		return
	}

	refs := append([]string{removed.ProfileImage}, media.DecodeRefs(removed.GalleryPaths)...)
	media.Collect(ctx, mediaStore, refs)

	logger.Info().Int64("contestant_id", contestantID).Int64("season_id", removed.SeasonID).Msg("Contestant deleted")
	if htmx.IsRequest(r) {
		htmx.Trigger(w, refreshContestantsList)
		apiutil.WriteHTMLFeedback(w, http.StatusOK, "Contestant deleted")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeContestant reads a JSON, multipart or urlencoded body, validates it
// and normalizes the phone number.
func decodeContestant(w http.ResponseWriter, r *http.Request) (contestantRequest, *multipart.Form, bool) {
	var (
		req  contestantRequest
		form *multipart.Form
	)

	switch {
	case apiutil.IsJSONRequest(r):
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			writeBodyError(r.Context(), w, err, "Invalid JSON body")
			return req, nil, false
		}
	default:
		var values map[string][]string
		if apiutil.IsMultipartRequest(r) {
			if err := r.ParseMultipartForm(multipartMemory); err != nil {
				writeBodyError(r.Context(), w, err, "Invalid form data")
				return req, nil, false
			}
			form = r.MultipartForm
			values = form.Value
		} else {
			if err := r.ParseForm(); err != nil {
				writeBodyError(r.Context(), w, err, "Invalid form data")
				return req, nil, false
			}
			values = r.PostForm
		}
		get := func(keys ...string) string {
			for _, key := range keys {
				if v := values[key]; len(v) > 0 {
					return v[0]
				}
			}
			return ""
		}
		if raw := get("season_id", "seasonId"); raw != "" {
			id, err := apiutil.ParsePositiveInt64Field(raw, "Season")
			if err != nil {
				_ = apiutil.WriteValidationErrors(w, map[string]string{"seasonId": err.Error()})
				return req, nil, false
			}
			req.SeasonID = id
		}
		req.Name = get("name")
		req.Slug = get("slug")
		req.Bio = get("bio")
		req.Phone = get("phone")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Bio = strings.TrimSpace(req.Bio)
	if fields := apiutil.ValidateStruct(req); fields != nil {
		_ = apiutil.WriteValidationErrors(w, fields)
		return req, nil, false
	}

	phone, err := models.NormalizePhone(req.Phone, settings.DefaultRegion)
	if err != nil {
		_ = apiutil.WriteValidationErrors(w, map[string]string{"phone": err.Error()})
		return req, nil, false
	}
	req.Phone = phone

	if raw := strings.TrimSpace(req.Slug); raw != "" {
		req.Slug = domain.Slugify(raw)
		if !domain.IsValidSlug(req.Slug) {
			_ = apiutil.WriteValidationErrors(w, map[string]string{"slug": "Slug may only contain lowercase letters, numbers and single hyphens"})
			return req, nil, false
		}
	}
	return req, form, true
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error, message string) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		apiutil.WriteHandlerError(ctx, w, err, message)
		return
	}
	_ = apiutil.WriteError(w, http.StatusBadRequest, message, nil)
}

// mediaFromRequest reads the profile image slot and gallery. A JSON body can
// only remove the profile image or reorder the gallery.
func mediaFromRequest(req contestantRequest, form *multipart.Form, existing dbgen.Contestant) (media.Slot, media.Gallery, error) {
	existingGallery := media.DecodeRefs(existing.GalleryPaths)
	if form != nil {
		profile, err := media.ParseSlot(form, "profile_image", existing.ProfileImage, settings.MaxUploadBytes)
		if err != nil {
			return media.Slot{}, media.Gallery{}, err
		}
		gallery, err := media.ParseGallery(form, "gallery", existingGallery, settings.MaxUploadBytes)
		if err != nil {
			return media.Slot{}, media.Gallery{}, err
		}
		return profile, gallery, nil
	}

	profile := media.NewSlot(existing.ProfileImage)
	if req.ProfileImageRemove {
		profile.Remove()
	}
	gallery := media.NewGallery(existingGallery)
	if req.GalleryRetained != nil {
		gallery.Retain(*req.GalleryRetained)
	}
	return profile, gallery, nil
}

// saveContestant stores uploads, writes the row and collects whatever the
// contestant no longer references. existing.ID 0 creates a new contestant.
func saveContestant(ctx context.Context, q *dbgen.Queries, existing dbgen.Contestant, req contestantRequest, profile media.Slot, gallery media.Gallery) (dbgen.Contestant, error) {
	slug, err := resolveSlug(ctx, q, existing, req)
	if err != nil {
		return dbgen.Contestant{}, err
	}

	prefix := fmt.Sprintf("contestants/%d/%s", existing.SeasonID, slug)
	var added []string

	profileRef, unused, err := profile.Commit(ctx, mediaStore, prefix)
	if err != nil {
		return dbgen.Contestant{}, fmt.Errorf("profile image: %w", err)
	}
	if profileRef != "" && profileRef != profile.Existing {
		added = append(added, profileRef)
	}
	galleryRefs, garbage, err := gallery.Commit(ctx, mediaStore, prefix)
	if err != nil {
		media.Collect(ctx, mediaStore, added)
		return dbgen.Contestant{}, fmt.Errorf("gallery: %w", err)
	}
	for _, ref := range galleryRefs {
		if !slices.Contains(gallery.Existing, ref) {
			added = append(added, ref)
		}
	}
	unused = append(unused, garbage...)

	now := time.Now().UTC()
	var saved dbgen.Contestant
	if existing.ID == 0 {
		saved, err = q.CreateContestant(ctx, dbgen.CreateContestantParams{
			SeasonID:     existing.SeasonID,
			Name:         req.Name,
			Slug:         slug,
			Bio:          req.Bio,
			Phone:        req.Phone,
			ProfileImage: profileRef,
			GalleryPaths: media.EncodeRefs(galleryRefs),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	} else {
		saved, err = q.UpdateContestant(ctx, dbgen.UpdateContestantParams{
			Name:         req.Name,
			Slug:         slug,
			Bio:          req.Bio,
			Phone:        req.Phone,
			ProfileImage: profileRef,
			GalleryPaths: media.EncodeRefs(galleryRefs),
			UpdatedAt:    now,
			ID:           existing.ID,
		})
	}
	if err != nil {
		media.Collect(ctx, mediaStore, added)
		if apiutil.IsSQLiteUniqueViolation(err) {
			return dbgen.Contestant{}, errSlugTaken
		}
		return dbgen.Contestant{}, err
	}

	inUse := append([]string{profileRef}, galleryRefs...)
	media.Collect(ctx, mediaStore, slices.DeleteFunc(unused, func(ref string) bool {
		return slices.Contains(inUse, ref)
	}))
	return saved, nil
}

// resolveSlug keeps a typed slug if it is free in the season. Without one,
// an existing contestant keeps its slug and a new one derives it from the
// name.
func resolveSlug(ctx context.Context, q *dbgen.Queries, existing dbgen.Contestant, req contestantRequest) (string, error) {
	taken := func(ctx context.Context, slug string) (bool, error) {
		count, err := q.CountContestantSlug(ctx, dbgen.CountContestantSlugParams{
			SeasonID: existing.SeasonID,
			Slug:     slug,
			ID:       existing.ID,
		})
		if err != nil {
			return false, fmt.Errorf("count contestant slug: %w", err)
		}
		return count > 0, nil
	}

	switch {
	case req.Slug != "":
		used, err := taken(ctx, req.Slug)
		if err != nil {
			return "", err
		}
		if used {
			return "", errSlugTaken
		}
		return req.Slug, nil
	case existing.Slug != "":
		return existing.Slug, nil
	default:
		return domain.UniqueSlug(ctx, req.Name, taken)
	}
}

func writeSaveError(ctx context.Context, w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, errSlugTaken):
		_ = apiutil.WriteError(w, http.StatusConflict, msgSlugTaken, map[string]string{"slug": msgSlugTaken})
	case errors.Is(err, domain.ErrSlugExhausted):
		_ = apiutil.WriteError(w, http.StatusConflict, "No free slug left for this season", map[string]string{"slug": err.Error()})
	case errors.Is(err, sql.ErrNoRows):
		_ = apiutil.WriteError(w, http.StatusNotFound, "Contestant not found", nil)
	default:
		apiutil.WriteHandlerError(ctx, w, err, logMsg)
	}
}

func writeContestantMutation(w http.ResponseWriter, r *http.Request, status int, row dbgen.Contestant, message string) {
	htmx.Trigger(w, refreshContestantsList)
	if htmx.IsRequest(r) {
		apiutil.WriteHTMLFeedback(w, status, message)
		return
	}
	if err := apiutil.WriteData(w, status, models.ContestantFromDB(row, settings.MediaBaseURL)); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write contestant response")
	}
}

func loadDB() *appdb.DB {
	return store
}
