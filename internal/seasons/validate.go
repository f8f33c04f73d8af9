package seasons

import (
	"fmt"
	"strings"
	"time"
)

const (
	minSeasonYear = 2000
	maxSeasonYear = 2100
	maxNotices    = 20
)

type FieldError struct {
	Field   Field  `json:"field"`
	Message string `json:"message"`
}

// Errors is every violation found in a draft, in discovery order.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fieldErr := range e {
		parts = append(parts, fmt.Sprintf("%s: %s", fieldErr.Field, fieldErr.Message))
	}
	return strings.Join(parts, "; ")
}

// Map returns the first message per field, the shape forms render inline.
func (e Errors) Map() map[string]string {
	out := make(map[string]string, len(e))
	for _, fieldErr := range e {
		key := string(fieldErr.Field)
		if _, ok := out[key]; !ok {
			out[key] = fieldErr.Message
		}
	}
	return out
}

func (e Errors) Has(field Field) bool {
	for _, fieldErr := range e {
		if fieldErr.Field == field {
			return true
		}
	}
	return false
}

func (e *Errors) add(field Field, format string, args ...any) {
	*e = append(*e, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// ValidateDates checks every date rule of the draft at once: the date range,
// the dates the status requires, and the ordering of audition deadline and
// voting end against the range.
func ValidateDates(d Draft) Errors {
	var errs Errors

	start, end := d.StartDate, d.EndDate
	if start.IsZero() {
		errs.add(FieldStartDate, "Start date is required")
	}
	if end.IsZero() {
		errs.add(FieldEndDate, "End date is required")
	}
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		errs.add(FieldEndDate, "End date must be after the start date")
	}

	status, hasStatus := d.Status()
	rules := RequirementsFor(status)

	audition := d.AuditionFormDeadline()
	switch {
	case audition.IsZero():
		if hasStatus && rules.Rule(FieldAuditionFormDeadline) == RuleRequired {
			errs.add(FieldAuditionFormDeadline, "Audition form deadline is required for %s seasons", status)
		}
	case !start.IsZero() && !audition.Before(start):
		errs.add(FieldAuditionFormDeadline, "Audition form deadline must be before the start date")
	}

	voting := d.VotingEndDate()
	switch {
	case voting.IsZero():
		if hasStatus && rules.Rule(FieldVotingEndDate) == RuleRequired {
			errs.add(FieldVotingEndDate, "Voting end date is required for %s seasons", status)
		}
	case !end.IsZero() && voting.After(end):
		errs.add(FieldVotingEndDate, "Voting end date must not be after the end date")
	}

	for i, entry := range d.Timeline {
		if !entry.Start.IsZero() && !entry.End.IsZero() && entry.End.Before(entry.Start) {
			errs.add(FieldTimeline, "Timeline entry %d ends before it starts", i+1)
		}
	}

	return errs
}

// Validate runs the full submit-time check: status, identity fields,
// voting fields and every date rule.
func Validate(d Draft) Errors {
	var errs Errors

	status, ok := d.Status()
	if !ok {
		errs.add(FieldStatus, "Please select a status")
	}
	if d.EventID <= 0 {
		errs.add(FieldEventID, "Event is required")
	}
	if d.Year < minSeasonYear || d.Year > maxSeasonYear {
		errs.add(FieldYear, "Year must be between %d and %d", minSeasonYear, maxSeasonYear)
	}
	switch {
	case d.Slug == "":
		errs.add(FieldSlug, "Slug is required")
	case !IsValidSlug(d.Slug):
		errs.add(FieldSlug, "Slug may only contain lowercase letters, numbers and single hyphens")
	}

	if ok && status != StatusEnded {
		if d.PricePerVote() < 0 {
			errs.add(FieldPricePerVote, "Price per vote must be 0 or greater")
		}
		if len(d.Notices()) > maxNotices {
			errs.add(FieldNotice, "At most %d notices are allowed", maxNotices)
		}
	}

	for i, entry := range d.Timeline {
		if strings.TrimSpace(entry.Label) == "" {
			errs.add(FieldTimeline, "Timeline entry %d needs a label", i+1)
		}
	}

	return append(errs, ValidateDates(d)...)
}

// ParseDate reads a YYYY-MM-DD (or RFC 3339) value as a UTC calendar date.
// Empty input yields the zero time.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return parsed.UTC(), nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("must be a date like 2024-01-31")
	}
	y, m, day := parsed.UTC().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC), nil
}
