package models

import (
	"database/sql"
	"reflect"
	"testing"
	"time"

	dbgen "github.com/codr1/Runway/internal/db/generated"
	"github.com/codr1/Runway/internal/seasons"
)

func date(t *testing.T, raw string) time.Time {
	t.Helper()
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return parsed
}

func TestSeasonDraftRoundTrip(t *testing.T) {
	draft := seasons.Draft{
		EventID:   7,
		EventName: "Miss Nepal",
		Year:      2024,
		Slug:      "miss-nepal-2024",
		StartDate: date(t, "2024-06-01"),
		EndDate:   date(t, "2024-08-01"),
		Timeline: []seasons.TimelineEntry{
			{Label: "Auditions", Icon: "mic", Start: date(t, "2024-05-01"), End: date(t, "2024-05-20")},
		},
		Details: seasons.UpcomingDetails{
			AuditionFormDeadline: date(t, "2024-05-20"),
			VotingEndDate:        date(t, "2024-07-30"),
			PricePerVote:         25,
			Notices:              []string{"Bring ID"},
		},
	}
	refs := SeasonMedia{
		Poster:     "seasons/poster.png",
		Highlights: []string{"seasons/a.png", "", "", ""},
		Gallery:    []string{"seasons/g1.png"},
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	params, err := CreateSeasonParams(draft, refs, now)
	if err != nil {
		t.Fatalf("CreateSeasonParams: %v", err)
	}
	if params.Status != "upcoming" || params.Notices != `["Bring ID"]` || params.PricePerVote != 25 {
		t.Fatalf("unexpected params: %+v", params)
	}

	row := dbgen.Season{
		ID:                   3,
		EventID:              params.EventID,
		Status:               params.Status,
		Year:                 params.Year,
		Slug:                 params.Slug,
		StartDate:            params.StartDate,
		EndDate:              params.EndDate,
		AuditionFormDeadline: params.AuditionFormDeadline,
		VotingEndDate:        params.VotingEndDate,
		PricePerVote:         params.PricePerVote,
		Notices:              params.Notices,
		Timeline:             params.Timeline,
		PosterPath:           params.PosterPath,
		HighlightPaths:       params.HighlightPaths,
		GalleryPaths:         params.GalleryPaths,
	}

	back := SeasonDraft(row, "Miss Nepal")
	if !reflect.DeepEqual(back, draft) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", back, draft)
	}
	if got := SeasonMediaFromDB(row); !reflect.DeepEqual(got, refs) {
		t.Fatalf("media = %+v", got)
	}
}

func TestCreateSeasonParams_EndedForcesVotingFields(t *testing.T) {
	draft := seasons.Draft{
		EventID:   1,
		Year:      2023,
		Slug:      "show-2023",
		StartDate: date(t, "2023-01-01"),
		EndDate:   date(t, "2023-02-01"),
		Details: seasons.UpcomingDetails{
			PricePerVote: 50,
			Notices:      []string{"Vote now"},
		},
	}.WithStatus(seasons.StatusEnded)

	params, err := CreateSeasonParams(draft, SeasonMedia{}, time.Now())
	if err != nil {
		t.Fatalf("CreateSeasonParams: %v", err)
	}
	if params.PricePerVote != 0 || params.Notices != "[]" {
		t.Fatalf("ended season kept voting fields: price=%d notices=%s", params.PricePerVote, params.Notices)
	}
	if params.HighlightPaths != "[]" || params.GalleryPaths != "[]" {
		t.Fatalf("empty media should encode as []: %+v", params)
	}
}

func TestCreateSeasonParams_RequiresStatus(t *testing.T) {
	if _, err := CreateSeasonParams(seasons.Draft{}, SeasonMedia{}, time.Now()); err == nil {
		t.Fatalf("expected missing status to fail")
	}
}

func TestSeasonFromDB(t *testing.T) {
	row := dbgen.Season{
		ID:             4,
		EventID:        2,
		Status:         "ongoing",
		Year:           2024,
		Slug:           "show-2024",
		StartDate:      date(t, "2024-03-01"),
		EndDate:        date(t, "2024-04-01"),
		VotingEndDate:  sql.NullTime{Time: date(t, "2024-03-30"), Valid: true},
		Notices:        "not json",
		Timeline:       "[]",
		PosterPath:     "seasons/p.png",
		HighlightPaths: `["", "seasons/h.png"]`,
		GalleryPaths:   "[]",
	}

	season := SeasonFromDB(row, "Show", "https://cdn.example.com/media/")
	if season.StartDate != "2024-03-01" || season.VotingEndDate != "2024-03-30" || season.AuditionFormDeadline != "" {
		t.Fatalf("unexpected dates: %+v", season)
	}
	if season.Poster != "https://cdn.example.com/media/seasons/p.png" {
		t.Fatalf("poster = %q", season.Poster)
	}
	wantHighlights := []string{"", "https://cdn.example.com/media/seasons/h.png", "", ""}
	if !reflect.DeepEqual(season.Highlights, wantHighlights) {
		t.Fatalf("highlights = %#v", season.Highlights)
	}
	if len(season.Notices) != 0 || season.Notices == nil {
		t.Fatalf("malformed notices should decode to an empty list: %#v", season.Notices)
	}
}

func TestParseTimeline(t *testing.T) {
	entries, err := ParseTimeline([]TimelineEntry{{Label: "Finale", Start: "2024-07-01", End: "2024-07-02"}})
	if err != nil || len(entries) != 1 || !entries[0].Start.Equal(date(t, "2024-07-01")) {
		t.Fatalf("ParseTimeline = %+v, %v", entries, err)
	}
	if _, err := ParseTimeline([]TimelineEntry{{Label: "Bad", Start: "July"}}); err == nil {
		t.Fatalf("expected bad date to fail")
	}
}
