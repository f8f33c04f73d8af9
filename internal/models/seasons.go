// internal/models/seasons.go
package models

import (
	"encoding/json"
	"fmt"
	"time"

	dbgen "github.com/codr1/Runway/internal/db/generated"
	"github.com/codr1/Runway/internal/media"
	"github.com/codr1/Runway/internal/seasons"
)

// HighlightSlots is the fixed size of the season highlight grid.
const HighlightSlots = 4

const dateLayout = "2006-01-02"

type TimelineEntry struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Season is the API shape of a season row. Media fields hold display URLs;
// the *Refs fields hold the stored references the edit form sends back.
type Season struct {
	ID                   int64           `json:"id"`
	EventID              int64           `json:"eventId"`
	EventName            string          `json:"eventName,omitempty"`
	Status               seasons.Status  `json:"status"`
	Year                 int             `json:"year"`
	Slug                 string          `json:"slug"`
	StartDate            string          `json:"startDate"`
	EndDate              string          `json:"endDate"`
	AuditionFormDeadline string          `json:"auditionFormDeadline,omitempty"`
	VotingEndDate        string          `json:"votingEndDate,omitempty"`
	PricePerVote         int64           `json:"pricePerVote"`
	Notices              []string        `json:"notices"`
	Timeline             []TimelineEntry `json:"timeline"`
	Poster               string          `json:"poster,omitempty"`
	Highlights           []string        `json:"highlights"`
	Gallery              []string        `json:"gallery"`
	PosterRef            string          `json:"posterRef,omitempty"`
	HighlightRefs        []string        `json:"highlightRefs"`
	GalleryRefs          []string        `json:"galleryRefs"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// SeasonMedia is the committed set of media references for one season.
type SeasonMedia struct {
	Poster     string
	Highlights []string
	Gallery    []string
}

// SeasonMediaFromDB decodes the stored reference columns. The highlight grid
// is always HighlightSlots long.
func SeasonMediaFromDB(row dbgen.Season) SeasonMedia {
	highlights := media.DecodeRefs(row.HighlightPaths)
	grid := make([]string, HighlightSlots)
	copy(grid, highlights)
	return SeasonMedia{
		Poster:     row.PosterPath,
		Highlights: grid,
		Gallery:    media.DecodeRefs(row.GalleryPaths),
	}
}

func SeasonFromDB(row dbgen.Season, eventName, mediaBaseURL string) Season {
	refs := SeasonMediaFromDB(row)
	highlights := make([]string, len(refs.Highlights))
	for i, ref := range refs.Highlights {
		highlights[i] = media.DisplayURL(mediaBaseURL, ref)
	}

	return Season{
		ID:                   row.ID,
		EventID:              row.EventID,
		EventName:            eventName,
		Status:               seasons.Status(row.Status),
		Year:                 int(row.Year),
		Slug:                 row.Slug,
		StartDate:            formatDate(row.StartDate),
		EndDate:              formatDate(row.EndDate),
		AuditionFormDeadline: formatNullDate(row.AuditionFormDeadline.Time, row.AuditionFormDeadline.Valid),
		VotingEndDate:        formatNullDate(row.VotingEndDate.Time, row.VotingEndDate.Valid),
		PricePerVote:         row.PricePerVote,
		Notices:              decodeNotices(row.Notices),
		Timeline:             timelineToAPI(decodeTimeline(row.Timeline)),
		Poster:               media.DisplayURL(mediaBaseURL, refs.Poster),
		Highlights:           highlights,
		Gallery:              media.DisplayURLs(mediaBaseURL, refs.Gallery),
		PosterRef:            refs.Poster,
		HighlightRefs:        refs.Highlights,
		GalleryRefs:          refs.Gallery,
		CreatedAt:            row.CreatedAt,
		UpdatedAt:            row.UpdatedAt,
	}
}

func SeasonsFromDB(rows []dbgen.Season, eventName, mediaBaseURL string) []Season {
	out := make([]Season, len(rows))
	for i, row := range rows {
		out[i] = SeasonFromDB(row, eventName, mediaBaseURL)
	}
	return out
}

// SeasonDraft seeds a wizard draft from a stored season.
func SeasonDraft(row dbgen.Season, eventName string) seasons.Draft {
	draft := seasons.Draft{
		EventID:    row.EventID,
		EventName:  eventName,
		Year:       int(row.Year),
		Slug:       row.Slug,
		SlugEdited: row.Slug != seasons.DeriveSlug(eventName, int(row.Year)),
		StartDate:  row.StartDate.UTC(),
		EndDate:    row.EndDate.UTC(),
		Timeline:   decodeTimeline(row.Timeline),
	}

	audition := nullDate(row.AuditionFormDeadline.Time, row.AuditionFormDeadline.Valid)
	voting := nullDate(row.VotingEndDate.Time, row.VotingEndDate.Valid)
	notices := decodeNotices(row.Notices)
	switch seasons.Status(row.Status) {
	case seasons.StatusUpcoming:
		draft.Details = seasons.UpcomingDetails{
			AuditionFormDeadline: audition,
			VotingEndDate:        voting,
			PricePerVote:         row.PricePerVote,
			Notices:              notices,
		}
	case seasons.StatusOngoing:
		draft.Details = seasons.OngoingDetails{
			AuditionFormDeadline: audition,
			VotingEndDate:        voting,
			PricePerVote:         row.PricePerVote,
			Notices:              notices,
		}
	case seasons.StatusEnded:
		draft.Details = seasons.EndedDetails{
			AuditionFormDeadline: audition,
			VotingEndDate:        voting,
		}
	}
	return draft
}

// CreateSeasonParams maps a validated draft onto the insert parameters.
// Ended drafts always store a zero price and no notices.
func CreateSeasonParams(draft seasons.Draft, refs SeasonMedia, now time.Time) (dbgen.CreateSeasonParams, error) {
	status, ok := draft.Status()
	if !ok {
		return dbgen.CreateSeasonParams{}, fmt.Errorf("season status is required")
	}
	timeline, err := encodeTimeline(draft.Timeline)
	if err != nil {
		return dbgen.CreateSeasonParams{}, err
	}
	return dbgen.CreateSeasonParams{
		EventID:              draft.EventID,
		Status:               string(status),
		Year:                 int64(draft.Year),
		Slug:                 draft.Slug,
		StartDate:            draft.StartDate.UTC(),
		EndDate:              draft.EndDate.UTC(),
		AuditionFormDeadline: toNullTime(draft.AuditionFormDeadline()),
		VotingEndDate:        toNullTime(draft.VotingEndDate()),
		PricePerVote:         draft.PricePerVote(),
		Notices:              encodeNotices(draft.Notices()),
		Timeline:             timeline,
		PosterPath:           refs.Poster,
		HighlightPaths:       media.EncodeRefs(refs.Highlights),
		GalleryPaths:         media.EncodeRefs(refs.Gallery),
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

func UpdateSeasonParams(id int64, draft seasons.Draft, refs SeasonMedia, now time.Time) (dbgen.UpdateSeasonParams, error) {
	created, err := CreateSeasonParams(draft, refs, now)
	if err != nil {
		return dbgen.UpdateSeasonParams{}, err
	}
	return dbgen.UpdateSeasonParams{
		Status:               created.Status,
		Year:                 created.Year,
		Slug:                 created.Slug,
		StartDate:            created.StartDate,
		EndDate:              created.EndDate,
		AuditionFormDeadline: created.AuditionFormDeadline,
		VotingEndDate:        created.VotingEndDate,
		PricePerVote:         created.PricePerVote,
		Notices:              created.Notices,
		Timeline:             created.Timeline,
		PosterPath:           created.PosterPath,
		HighlightPaths:       created.HighlightPaths,
		GalleryPaths:         created.GalleryPaths,
		UpdatedAt:            now,
		ID:                   id,
	}, nil
}

// ParseTimeline converts API timeline entries into draft entries, reporting
// the first unparseable date.
func ParseTimeline(entries []TimelineEntry) ([]seasons.TimelineEntry, error) {
	out := make([]seasons.TimelineEntry, 0, len(entries))
	for i, entry := range entries {
		start, err := seasons.ParseDate(entry.Start)
		if err != nil {
			return nil, fmt.Errorf("timeline entry %d start %w", i+1, err)
		}
		end, err := seasons.ParseDate(entry.End)
		if err != nil {
			return nil, fmt.Errorf("timeline entry %d end %w", i+1, err)
		}
		out = append(out, seasons.TimelineEntry{
			Label: entry.Label,
			Icon:  entry.Icon,
			Start: start,
			End:   end,
		})
	}
	return out, nil
}

func timelineToAPI(entries []seasons.TimelineEntry) []TimelineEntry {
	out := make([]TimelineEntry, len(entries))
	for i, entry := range entries {
		out[i] = TimelineEntry{
			Label: entry.Label,
			Icon:  entry.Icon,
			Start: formatNullDate(entry.Start, !entry.Start.IsZero()),
			End:   formatNullDate(entry.End, !entry.End.IsZero()),
		}
	}
	return out
}

func FormatDate(t time.Time) string {
	return formatNullDate(t, !t.IsZero())
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func formatNullDate(t time.Time, valid bool) string {
	if !valid {
		return ""
	}
	return formatDate(t)
}

func nullDate(t time.Time, valid bool) time.Time {
	if !valid {
		return time.Time{}
	}
	return t.UTC()
}

func decodeNotices(raw string) []string {
	var notices []string
	if err := json.Unmarshal([]byte(raw), &notices); err != nil || notices == nil {
		return []string{}
	}
	return notices
}

func encodeNotices(notices []string) string {
	if len(notices) == 0 {
		return "[]"
	}
	data, err := json.Marshal(notices)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeTimeline(raw string) []seasons.TimelineEntry {
	var entries []seasons.TimelineEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil || entries == nil {
		return []seasons.TimelineEntry{}
	}
	return entries
}

func encodeTimeline(entries []seasons.TimelineEntry) (string, error) {
	if len(entries) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("encode timeline: %w", err)
	}
	return string(data), nil
}
