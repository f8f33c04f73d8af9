package models

import (
	"time"

	dbgen "github.com/codr1/Runway/internal/db/generated"
	"github.com/codr1/Runway/internal/media"
)

type JuryMember struct {
	ID        int64     `json:"id"`
	SeasonID  int64     `json:"seasonId"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Image     string    `json:"image,omitempty"`
	ImageRef  string    `json:"imageRef,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func JuryMemberFromDB(row dbgen.JuryMember, mediaBaseURL string) JuryMember {
	return JuryMember{
		ID:        row.ID,
		SeasonID:  row.SeasonID,
		Name:      row.Name,
		Title:     row.Title,
		Image:     media.DisplayURL(mediaBaseURL, row.ImagePath),
		ImageRef:  row.ImagePath,
		CreatedAt: row.CreatedAt,
	}
}

func JuryFromDB(rows []dbgen.JuryMember, mediaBaseURL string) []JuryMember {
	out := make([]JuryMember, len(rows))
	for i, row := range rows {
		out[i] = JuryMemberFromDB(row, mediaBaseURL)
	}
	return out
}

type Winner struct {
	ID             int64     `json:"id"`
	SeasonID       int64     `json:"seasonId"`
	ContestantID   int64     `json:"contestantId"`
	ContestantName string    `json:"contestantName,omitempty"`
	Rank           int64     `json:"rank"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"createdAt"`
}

// WinnersFromDB maps rows, filling contestant names from names when known.
func WinnersFromDB(rows []dbgen.Winner, names map[int64]string) []Winner {
	out := make([]Winner, len(rows))
	for i, row := range rows {
		out[i] = Winner{
			ID:             row.ID,
			SeasonID:       row.SeasonID,
			ContestantID:   row.ContestantID,
			ContestantName: names[row.ContestantID],
			Rank:           row.Rank,
			Title:          row.Title,
			CreatedAt:      row.CreatedAt,
		}
	}
	return out
}
