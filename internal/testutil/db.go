package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/codr1/Runway/internal/db"
	dbgen "github.com/codr1/Runway/internal/db/generated"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// Date returns midnight UTC for a YYYY-MM-DD string and fails the test on bad input.
func Date(t *testing.T, raw string) time.Time {
	t.Helper()

	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		t.Fatalf("parse date %q: %v", raw, err)
	}
	return parsed.UTC()
}

// InsertEvent creates an event row for fixtures.
func InsertEvent(t *testing.T, database *db.DB, name, slug string) dbgen.Event {
	t.Helper()

	now := time.Now().UTC()
	event, err := database.Queries.CreateEvent(context.Background(), dbgen.CreateEventParams{
		Name:      name,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("insert event: %v", err)
	}
	return event
}

// InsertSeason creates an ongoing season row for fixtures.
func InsertSeason(t *testing.T, database *db.DB, eventID int64, slug string, pricePerVote int64) dbgen.Season {
	t.Helper()

	now := time.Now().UTC()
	season, err := database.Queries.CreateSeason(context.Background(), dbgen.CreateSeasonParams{
		EventID:        eventID,
		Status:         "ongoing",
		Year:           int64(now.Year()),
		Slug:           slug,
		StartDate:      now.AddDate(0, -1, 0).Truncate(24 * time.Hour),
		EndDate:        now.AddDate(0, 2, 0).Truncate(24 * time.Hour),
		PricePerVote:   pricePerVote,
		Notices:        "[]",
		Timeline:       "[]",
		HighlightPaths: "[]",
		GalleryPaths:   "[]",
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("insert season: %v", err)
	}
	return season
}

// InsertContestant creates a contestant row for fixtures.
func InsertContestant(t *testing.T, database *db.DB, seasonID int64, name, slug string) dbgen.Contestant {
	t.Helper()

	now := time.Now().UTC()
	contestant, err := database.Queries.CreateContestant(context.Background(), dbgen.CreateContestantParams{
		SeasonID:     seasonID,
		Name:         name,
		Slug:         slug,
		GalleryPaths: "[]",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("insert contestant: %v", err)
	}
	return contestant
}
