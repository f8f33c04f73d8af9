package seasons

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Runway/internal/api/apiutil"
	appdb "github.com/codr1/Runway/internal/db"
	dbgen "github.com/codr1/Runway/internal/db/generated"
	"github.com/codr1/Runway/internal/media"
	"github.com/codr1/Runway/internal/models"
	domain "github.com/codr1/Runway/internal/seasons"
)

const msgSlugTaken = "slug already exists"

var errSlugTaken = errors.New(msgSlugTaken)

// saveSeason writes draft as a new season (seasonID 0) or over an existing
// one. Uploads are stored first; when the database write fails they are
// removed again, and on success the references the season no longer uses
// are collected.
func saveSeason(ctx context.Context, database *appdb.DB, store media.Store, seasonID int64, draft domain.Draft, changes mediaChanges) (dbgen.Season, error) {
	slug, err := resolveSlug(ctx, database.Queries, seasonID, draft)
	if err != nil {
		return dbgen.Season{}, err
	}
	draft.Slug = slug

	prefix := fmt.Sprintf("seasons/%d/%s", draft.EventID, slug)
	refs, added, unused, err := commitMedia(ctx, store, prefix, changes)
	if err != nil {
		media.Collect(ctx, store, added)
		return dbgen.Season{}, err
	}

	now := time.Now().UTC()
	var saved dbgen.Season
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		if seasonID == 0 {
			params, err := models.CreateSeasonParams(draft, refs, now)
			if err != nil {
				return err
			}
			saved, err = txdb.Queries.CreateSeason(ctx, params)
			return err
		}
		params, err := models.UpdateSeasonParams(seasonID, draft, refs, now)
		if err != nil {
			return err
		}
		saved, err = txdb.Queries.UpdateSeason(ctx, params)
		return err
	})
	if err != nil {
		media.Collect(ctx, store, added)
		if apiutil.IsSQLiteUniqueViolation(err) {
			return dbgen.Season{}, errSlugTaken
		}
		return dbgen.Season{}, err
	}

	if removed := media.Collect(ctx, store, unused); removed > 0 {
		log.Ctx(ctx).Debug().Int64("season_id", saved.ID).Int("removed", removed).Msg("Collected replaced season media")
	}
	return saved, nil
}

// resolveSlug keeps a typed slug as is and fails if another season of the
// same event and year already uses it. A derived slug gets -2, -3, ... appended instead.
func resolveSlug(ctx context.Context, q *dbgen.Queries, seasonID int64, draft domain.Draft) (string, error) {
	taken := func(ctx context.Context, slug string) (bool, error) {
		count, err := q.CountSeasonSlug(ctx, dbgen.CountSeasonSlugParams{
			EventID: draft.EventID,
			Year:    int64(draft.Year),
			Slug:    slug,
			ID:      seasonID,
		})
		if err != nil {
			return false, fmt.Errorf("count season slug: %w", err)
		}
		return count > 0, nil
	}

	if draft.SlugEdited {
		used, err := taken(ctx, draft.Slug)
		if err != nil {
			return "", err
		}
		if used {
			return "", errSlugTaken
		}
		return draft.Slug, nil
	}
	return domain.UniqueSlug(ctx, draft.Slug, taken)
}

// commitMedia stores every pending upload. It returns the references to
// persist, the ones it just created and the ones no longer used.
func commitMedia(ctx context.Context, store media.Store, prefix string, changes mediaChanges) (models.SeasonMedia, []string, []string, error) {
	var refs models.SeasonMedia
	var added, unused []string

	// Nothing stored before this request may be reported as added.
	before := append([]string{changes.Poster.Existing}, changes.Gallery.Existing...)
	for _, slot := range changes.Highlights {
		before = append(before, slot.Existing)
	}
	track := func(final, garbage []string) {
		for _, ref := range final {
			if ref != "" && !slices.Contains(before, ref) && !slices.Contains(added, ref) {
				added = append(added, ref)
			}
		}
		unused = append(unused, garbage...)
	}

	poster, garbage, err := changes.Poster.Commit(ctx, store, prefix)
	if err != nil {
		return refs, added, nil, fmt.Errorf("poster: %w", err)
	}
	track([]string{poster}, garbage)
	refs.Poster = poster

	highlights, garbage, err := changes.Highlights.Commit(ctx, store, prefix)
	if err != nil {
		return refs, added, nil, fmt.Errorf("highlights: %w", err)
	}
	track(highlights, garbage)
	refs.Highlights = highlights

	gallery, garbage, err := changes.Gallery.Commit(ctx, store, prefix)
	if err != nil {
		return refs, added, nil, fmt.Errorf("gallery: %w", err)
	}
	track(gallery, garbage)
	refs.Gallery = gallery

	// A file moved between slots is still in use.
	inUse := append(append([]string{refs.Poster}, refs.Highlights...), refs.Gallery...)
	unused = slices.DeleteFunc(unused, func(ref string) bool {
		return slices.Contains(inUse, ref)
	})
	return refs, added, unused, nil
}

// seasonMediaRefs lists every stored reference a season and its children
// own, for cleanup after a delete.
func seasonMediaRefs(season dbgen.Season, contestants []dbgen.Contestant, jury []dbgen.JuryMember) []string {
	refs := models.SeasonMediaFromDB(season)
	all := append([]string{refs.Poster}, refs.Highlights...)
	all = append(all, refs.Gallery...)
	for _, contestant := range contestants {
		all = append(all, contestant.ProfileImage)
		all = append(all, media.DecodeRefs(contestant.GalleryPaths)...)
	}
	for _, member := range jury {
		all = append(all, member.ImagePath)
	}
	return slices.DeleteFunc(all, func(ref string) bool { return ref == "" })
}

// writeSaveError maps saveSeason failures onto a response.
func writeSaveError(ctx context.Context, w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, errSlugTaken):
		_ = apiutil.WriteError(w, http.StatusConflict, msgSlugTaken, map[string]string{string(domain.FieldSlug): msgSlugTaken})
	case errors.Is(err, domain.ErrSlugExhausted):
		_ = apiutil.WriteError(w, http.StatusConflict, "No free slug left for this event", map[string]string{string(domain.FieldSlug): err.Error()})
	default:
		apiutil.WriteHandlerError(ctx, w, err, logMsg)
	}
}
