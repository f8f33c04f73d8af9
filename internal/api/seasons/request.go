package seasons

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/codr1/Runway/internal/api/apiutil"
	"github.com/codr1/Runway/internal/media"
	"github.com/codr1/Runway/internal/models"
	domain "github.com/codr1/Runway/internal/seasons"
)

// seasonRequest is the decoded season form. Nil fields were not sent.
type seasonRequest struct {
	EventID              *int64                  `json:"eventId"`
	Status               *string                 `json:"status"`
	Year                 *int                    `json:"year"`
	Slug                 *string                 `json:"slug"`
	StartDate            *string                 `json:"startDate"`
	EndDate              *string                 `json:"endDate"`
	AuditionFormDeadline *string                 `json:"auditionFormDeadline"`
	VotingEndDate        *string                 `json:"votingEndDate"`
	PricePerVote         *int64                  `json:"pricePerVote"`
	Notices              *[]string               `json:"notices"`
	Timeline             *[]models.TimelineEntry `json:"timeline"`
	PosterRemove         bool                    `json:"posterRemove"`
	GalleryRetained      *[]string               `json:"galleryRetained"`
}

// decodedSeason is a request turned into wizard terms.
type decodedSeason struct {
	Status *domain.Status
	Input  domain.Input
	Form   *multipart.Form
	Body   seasonRequest
}

// decodeSeasonRequest reads a JSON, multipart or urlencoded body. Field
// parse failures come back as a field->message map with a nil error.
func decodeSeasonRequest(r *http.Request) (decodedSeason, map[string]string, error) {
	var (
		req  seasonRequest
		form *multipart.Form
		errs map[string]string
	)

	switch {
	case apiutil.IsJSONRequest(r):
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			return decodedSeason{}, nil, badBody(err, "Invalid JSON body")
		}
	case apiutil.IsMultipartRequest(r):
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return decodedSeason{}, nil, badBody(err, "Invalid form data")
		}
		form = r.MultipartForm
		req, errs = requestFromValues(form.Value)
	default:
		if err := r.ParseForm(); err != nil {
			return decodedSeason{}, nil, badBody(err, "Invalid form data")
		}
		req, errs = requestFromValues(r.PostForm)
	}
	if len(errs) > 0 {
		return decodedSeason{}, errs, nil
	}

	decoded, errs := req.toInput()
	if len(errs) > 0 {
		return decodedSeason{}, errs, nil
	}
	decoded.Form = form
	decoded.Body = req
	return decoded, nil, nil
}

// badBody keeps body-size errors intact so they map to 413.
func badBody(err error, message string) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return err
	}
	return apiutil.HandlerError{Status: http.StatusBadRequest, Message: message, Err: err}
}

// requestFromValues reads snake_case or camelCase form keys.
func requestFromValues(values map[string][]string) (seasonRequest, map[string]string) {
	get := func(keys ...string) (string, bool) {
		for _, key := range keys {
			if v, ok := values[key]; ok && len(v) > 0 {
				return v[0], true
			}
		}
		return "", false
	}

	var req seasonRequest
	errs := map[string]string{}

	if raw, ok := get("event_id", "eventId"); ok {
		id, err := apiutil.ParseOptionalInt64Field(raw, "Event")
		if err != nil {
			errs[string(domain.FieldEventID)] = err.Error()
		}
		req.EventID = id
	}
	if raw, ok := get("status"); ok && strings.TrimSpace(raw) != "" {
		req.Status = &raw
	}
	if raw, ok := get("year"); ok && strings.TrimSpace(raw) != "" {
		year, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			errs[string(domain.FieldYear)] = "Year must be a number"
		} else {
			req.Year = &year
		}
	}
	if raw, ok := get("slug"); ok {
		req.Slug = &raw
	}
	req.StartDate = optional(get("start_date", "startDate"))
	req.EndDate = optional(get("end_date", "endDate"))
	req.AuditionFormDeadline = optional(get("audition_form_deadline", "auditionFormDeadline"))
	req.VotingEndDate = optional(get("voting_end_date", "votingEndDate"))

	if raw, ok := get("price_per_vote", "pricePerVote"); ok {
		price, err := apiutil.ParseOptionalInt64Field(raw, "Price per vote")
		switch {
		case err != nil:
			errs[string(domain.FieldPricePerVote)] = err.Error()
		case price == nil:
			zero := int64(0)
			req.PricePerVote = &zero
		default:
			req.PricePerVote = price
		}
	}

	if noticeValues, ok := values["notice"]; ok {
		notices := append([]string(nil), noticeValues...)
		req.Notices = &notices
	} else if raw, ok := get("notices"); ok {
		notices := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
		req.Notices = &notices
	}

	if raw, ok := get("timeline"); ok && strings.TrimSpace(raw) != "" {
		var timeline []models.TimelineEntry
		if err := json.Unmarshal([]byte(raw), &timeline); err != nil {
			errs[string(domain.FieldTimeline)] = "Timeline must be a JSON list"
		} else {
			req.Timeline = &timeline
		}
	}

	return req, errs
}

func optional(value string, ok bool) *string {
	if !ok {
		return nil
	}
	return &value
}

func (req seasonRequest) toInput() (decodedSeason, map[string]string) {
	var decoded decodedSeason
	errs := map[string]string{}

	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			errs[string(domain.FieldStatus)] = err.Error()
		} else {
			decoded.Status = &status
		}
	}

	in := domain.Input{
		EventID:      req.EventID,
		Year:         req.Year,
		Slug:         req.Slug,
		PricePerVote: req.PricePerVote,
		Notices:      req.Notices,
	}

	parseDate := func(raw *string, field domain.Field) *time.Time {
		if raw == nil {
			return nil
		}
		parsed, err := domain.ParseDate(*raw)
		if err != nil {
			errs[string(field)] = err.Error()
			return nil
		}
		return &parsed
	}
	in.StartDate = parseDate(req.StartDate, domain.FieldStartDate)
	in.EndDate = parseDate(req.EndDate, domain.FieldEndDate)
	in.AuditionFormDeadline = parseDate(req.AuditionFormDeadline, domain.FieldAuditionFormDeadline)
	in.VotingEndDate = parseDate(req.VotingEndDate, domain.FieldVotingEndDate)

	if req.Timeline != nil {
		timeline, err := models.ParseTimeline(*req.Timeline)
		if err != nil {
			errs[string(domain.FieldTimeline)] = err.Error()
		} else {
			in.Timeline = &timeline
		}
	}

	if len(errs) > 0 {
		return decodedSeason{}, errs
	}
	decoded.Input = in
	return decoded, nil
}

// mediaChanges describes what a request does to each media slot.
type mediaChanges struct {
	Poster     media.Slot
	Highlights media.Grid
	Gallery    media.Gallery
}

func unchangedMedia(existing models.SeasonMedia) mediaChanges {
	return mediaChanges{
		Poster:     media.NewSlot(existing.Poster),
		Highlights: media.NewGrid(models.HighlightSlots, existing.Highlights),
		Gallery:    media.NewGallery(existing.Gallery),
	}
}

// mediaFromRequest reads slot changes from a multipart form, or the poster
// and gallery fields of a JSON body. Anything not mentioned stays unchanged.
func mediaFromRequest(decoded decodedSeason, existing models.SeasonMedia, maxBytes int64) (mediaChanges, error) {
	changes := unchangedMedia(existing)

	if decoded.Form != nil {
		poster, err := media.ParseSlot(decoded.Form, "poster", existing.Poster, maxBytes)
		if err != nil {
			return mediaChanges{}, err
		}
		highlights, err := media.ParseGrid(decoded.Form, "highlights", existing.Highlights, models.HighlightSlots, maxBytes)
		if err != nil {
			return mediaChanges{}, err
		}
		gallery, err := media.ParseGallery(decoded.Form, "gallery", existing.Gallery, maxBytes)
		if err != nil {
			return mediaChanges{}, err
		}
		return mediaChanges{Poster: poster, Highlights: highlights, Gallery: gallery}, nil
	}

	if decoded.Body.PosterRemove {
		changes.Poster.Remove()
	}
	if decoded.Body.GalleryRetained != nil {
		changes.Gallery.Retain(*decoded.Body.GalleryRetained)
	}
	return changes, nil
}
