package seasons

import (
	"slices"
	"strings"
	"time"
)

// Details carries the status-specific part of a season. Each variant holds
// only the fields that are legal for its status.
type Details interface {
	Status() Status
	details()
}

type UpcomingDetails struct {
	AuditionFormDeadline time.Time
	VotingEndDate        time.Time
	PricePerVote         int64
	Notices              []string
}

type OngoingDetails struct {
	AuditionFormDeadline time.Time
	VotingEndDate        time.Time
	PricePerVote         int64
	Notices              []string
}

// EndedDetails has no price or notices: ended seasons take no votes.
type EndedDetails struct {
	AuditionFormDeadline time.Time
	VotingEndDate        time.Time
}

func (UpcomingDetails) Status() Status { return StatusUpcoming }
func (OngoingDetails) Status() Status  { return StatusOngoing }
func (EndedDetails) Status() Status    { return StatusEnded }

func (UpcomingDetails) details() {}
func (OngoingDetails) details()  {}
func (EndedDetails) details()    {}

type TimelineEntry struct {
	Label string    `json:"label"`
	Icon  string    `json:"icon"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Draft is the in-progress season form. Details is nil until a status is
// selected.
type Draft struct {
	EventID    int64
	EventName  string
	Year       int
	Slug       string
	SlugEdited bool
	StartDate  time.Time
	EndDate    time.Time
	Timeline   []TimelineEntry
	Details    Details
}

// Status returns the selected status, or false when none is selected yet.
func (d Draft) Status() (Status, bool) {
	if d.Details == nil {
		return "", false
	}
	return d.Details.Status(), true
}

func (d Draft) AuditionFormDeadline() time.Time {
	switch v := d.Details.(type) {
	case UpcomingDetails:
		return v.AuditionFormDeadline
	case OngoingDetails:
		return v.AuditionFormDeadline
	case EndedDetails:
		return v.AuditionFormDeadline
	}
	return time.Time{}
}

func (d Draft) VotingEndDate() time.Time {
	switch v := d.Details.(type) {
	case UpcomingDetails:
		return v.VotingEndDate
	case OngoingDetails:
		return v.VotingEndDate
	case EndedDetails:
		return v.VotingEndDate
	}
	return time.Time{}
}

func (d Draft) PricePerVote() int64 {
	switch v := d.Details.(type) {
	case UpcomingDetails:
		return v.PricePerVote
	case OngoingDetails:
		return v.PricePerVote
	}
	return 0
}

// Notices never returns nil so callers can serialize it directly.
func (d Draft) Notices() []string {
	switch v := d.Details.(type) {
	case UpcomingDetails:
		return nonNil(v.Notices)
	case OngoingDetails:
		return nonNil(v.Notices)
	}
	return []string{}
}

// AcceptsVotes reports whether the draft's status allows paid voting.
func (d Draft) AcceptsVotes() bool {
	status, ok := d.Status()
	return ok && status != StatusEnded && d.PricePerVote() > 0
}

// Clone returns a deep copy so wizard snapshots never share slices.
func (d Draft) Clone() Draft {
	out := d
	out.Timeline = slices.Clone(d.Timeline)
	switch v := d.Details.(type) {
	case UpcomingDetails:
		v.Notices = slices.Clone(v.Notices)
		out.Details = v
	case OngoingDetails:
		v.Notices = slices.Clone(v.Notices)
		out.Details = v
	}
	return out
}

// WithStatus moves the draft to status, carrying over every field the new
// variant allows. Switching to ended drops price and notices.
func (d Draft) WithStatus(status Status) Draft {
	audition := d.AuditionFormDeadline()
	voting := d.VotingEndDate()
	price := d.PricePerVote()
	notices := slices.Clone(d.Notices())

	out := d.Clone()
	switch status {
	case StatusUpcoming:
		out.Details = UpcomingDetails{
			AuditionFormDeadline: audition,
			VotingEndDate:        voting,
			PricePerVote:         price,
			Notices:              notices,
		}
	case StatusOngoing:
		out.Details = OngoingDetails{
			AuditionFormDeadline: audition,
			VotingEndDate:        voting,
			PricePerVote:         price,
			Notices:              notices,
		}
	case StatusEnded:
		out.Details = EndedDetails{
			AuditionFormDeadline: audition,
			VotingEndDate:        voting,
		}
	default:
		out.Details = nil
	}
	return out
}

// Input is a partial update from the details form. Nil fields are left
// untouched; a non-nil zero time clears an optional date.
type Input struct {
	EventID              *int64
	EventName            *string
	Year                 *int
	Slug                 *string
	StartDate            *time.Time
	EndDate              *time.Time
	AuditionFormDeadline *time.Time
	VotingEndDate        *time.Time
	PricePerVote         *int64
	Notices              *[]string
	Timeline             *[]TimelineEntry
}

// Apply merges in into the draft. Fields the current status forces are
// ignored, and an empty slug hands the slug back to auto-derivation.
func (d Draft) Apply(in Input) Draft {
	out := d.Clone()
	if in.EventID != nil {
		out.EventID = *in.EventID
	}
	if in.EventName != nil {
		out.EventName = strings.TrimSpace(*in.EventName)
	}
	if in.Year != nil {
		out.Year = *in.Year
	}
	if in.Slug != nil {
		slug := Slugify(*in.Slug)
		out.Slug = slug
		out.SlugEdited = slug != ""
	}
	if in.StartDate != nil {
		out.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		out.EndDate = *in.EndDate
	}
	if in.Timeline != nil {
		out.Timeline = slices.Clone(*in.Timeline)
	}

	switch v := out.Details.(type) {
	case UpcomingDetails:
		applyDates(&v.AuditionFormDeadline, &v.VotingEndDate, in)
		applyVoting(&v.PricePerVote, &v.Notices, in)
		out.Details = v
	case OngoingDetails:
		applyDates(&v.AuditionFormDeadline, &v.VotingEndDate, in)
		applyVoting(&v.PricePerVote, &v.Notices, in)
		out.Details = v
	case EndedDetails:
		applyDates(&v.AuditionFormDeadline, &v.VotingEndDate, in)
		out.Details = v
	}

	return out.withDerivedSlug()
}

// withDerivedSlug refreshes the slug from event name and year unless the
// slug was typed by hand or the inputs are not known yet.
func (d Draft) withDerivedSlug() Draft {
	if d.SlugEdited {
		return d
	}
	if derived := DeriveSlug(d.EventName, d.Year); derived != "" {
		d.Slug = derived
	}
	return d
}

func applyDates(audition, voting *time.Time, in Input) {
	if in.AuditionFormDeadline != nil {
		*audition = *in.AuditionFormDeadline
	}
	if in.VotingEndDate != nil {
		*voting = *in.VotingEndDate
	}
}

func applyVoting(price *int64, notices *[]string, in Input) {
	if in.PricePerVote != nil {
		*price = *in.PricePerVote
	}
	if in.Notices != nil {
		*notices = cleanNotices(*in.Notices)
	}
}

func cleanNotices(raw []string) []string {
	notices := make([]string, 0, len(raw))
	for _, notice := range raw {
		notice = strings.TrimSpace(notice)
		if notice != "" {
			notices = append(notices, notice)
		}
	}
	return notices
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
