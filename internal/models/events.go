// internal/models/events.go
package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbgen "github.com/codr1/Runway/internal/db/generated"
	"github.com/codr1/Runway/internal/seasons"
)

const maxEventNameLength = 120

type Event struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Normalize trims the name and fills the slug from it when left empty.
func (e Event) Normalize() Event {
	e.Name = strings.TrimSpace(e.Name)
	e.Description = strings.TrimSpace(e.Description)
	if strings.TrimSpace(e.Slug) == "" {
		e.Slug = seasons.Slugify(e.Name)
	} else {
		e.Slug = seasons.Slugify(e.Slug)
	}
	return e
}

func (e Event) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(e.Name) > maxEventNameLength {
		return fmt.Errorf("name must be %d characters or fewer", maxEventNameLength)
	}
	if !seasons.IsValidSlug(e.Slug) {
		return fmt.Errorf("slug may only contain lowercase letters, numbers and single hyphens")
	}
	return nil
}

func EventFromDB(row dbgen.Event) Event {
	return Event{
		ID:          row.ID,
		Name:        row.Name,
		Slug:        row.Slug,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func EventsFromDB(rows []dbgen.Event) []Event {
	out := make([]Event, len(rows))
	for i, row := range rows {
		out[i] = EventFromDB(row)
	}
	return out
}

func toNullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
