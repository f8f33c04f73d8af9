// internal/models/contestants.go
package models

import (
	"errors"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"

	dbgen "github.com/codr1/Runway/internal/db/generated"
	"github.com/codr1/Runway/internal/media"
)

var ErrInvalidPhone = errors.New("phone must be a valid phone number")

type Contestant struct {
	ID           int64     `json:"id"`
	SeasonID     int64     `json:"seasonId"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Bio          string    `json:"bio"`
	Phone        string    `json:"phone,omitempty"`
	ProfileImage string    `json:"profileImage,omitempty"`
	Gallery      []string  `json:"gallery"`
	ProfileRef   string    `json:"profileRef,omitempty"`
	GalleryRefs  []string  `json:"galleryRefs"`
	VoteCount    int64     `json:"voteCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func ContestantFromDB(row dbgen.Contestant, mediaBaseURL string) Contestant {
	gallery := media.DecodeRefs(row.GalleryPaths)
	return Contestant{
		ID:           row.ID,
		SeasonID:     row.SeasonID,
		Name:         row.Name,
		Slug:         row.Slug,
		Bio:          row.Bio,
		Phone:        row.Phone,
		ProfileImage: media.DisplayURL(mediaBaseURL, row.ProfileImage),
		Gallery:      media.DisplayURLs(mediaBaseURL, gallery),
		ProfileRef:   row.ProfileImage,
		GalleryRefs:  gallery,
		VoteCount:    row.VoteCount,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func ContestantsFromDB(rows []dbgen.Contestant, mediaBaseURL string) []Contestant {
	out := make([]Contestant, len(rows))
	for i, row := range rows {
		out[i] = ContestantFromDB(row, mediaBaseURL)
	}
	return out
}

// NormalizePhone parses raw in defaultRegion and returns it in E.164 form.
// An empty value stays empty.
func NormalizePhone(raw, defaultRegion string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	number, err := phonenumbers.Parse(raw, strings.ToUpper(defaultRegion))
	if err != nil {
		return "", ErrInvalidPhone
	}
	if !phonenumbers.IsValidNumber(number) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(number, phonenumbers.E164), nil
}
