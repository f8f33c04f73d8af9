package seasons

import (
	"testing"
	"time"
)

func validDraft(t *testing.T) Draft {
	t.Helper()
	return Draft{
		EventID:   1,
		EventName: "Miss Nepal",
		Year:      2024,
		Slug:      "miss-nepal-2024",
		StartDate: date(t, "2024-01-01"),
		EndDate:   date(t, "2024-06-01"),
		Details: UpcomingDetails{
			AuditionFormDeadline: date(t, "2023-12-15"),
			VotingEndDate:        date(t, "2024-05-30"),
			PricePerVote:         10,
		},
	}
}

func TestValidate_ValidDraft(t *testing.T) {
	if errs := Validate(validDraft(t)); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestValidateDates_AuditionAfterEnd(t *testing.T) {
	draft := Draft{
		StartDate: date(t, "2024-01-01"),
		EndDate:   date(t, "2024-06-01"),
		Details: UpcomingDetails{
			AuditionFormDeadline: date(t, "2024-06-02"),
		},
	}

	errs := ValidateDates(draft)
	if !errs.Has(FieldAuditionFormDeadline) {
		t.Fatalf("expected auditionFormDeadline error, got %v", errs)
	}
	if !errs.Has(FieldVotingEndDate) {
		t.Fatalf("expected missing votingEndDate error for upcoming, got %v", errs)
	}
}

func TestValidateDates_StartNotBeforeEnd(t *testing.T) {
	start := date(t, "2024-03-01")
	for _, offset := range []int{0, 1, 30, 365} {
		draft := Draft{
			StartDate: start,
			EndDate:   start.AddDate(0, 0, -offset),
			Details:   EndedDetails{},
		}
		errs := ValidateDates(draft)
		if !errs.Has(FieldEndDate) {
			t.Fatalf("offset %d: expected endDate error, got %v", offset, errs)
		}
		if errs.Has(FieldStartDate) {
			t.Fatalf("offset %d: start date should not be flagged", offset)
		}
	}
}

func TestValidateDates_AuditionNotBeforeStart(t *testing.T) {
	start := date(t, "2024-03-01")
	for _, offset := range []int{0, 1, 90} {
		draft := Draft{
			StartDate: start,
			EndDate:   start.AddDate(1, 0, 0),
			Details: OngoingDetails{
				AuditionFormDeadline: start.AddDate(0, 0, offset),
				VotingEndDate:        start.AddDate(0, 6, 0),
			},
		}
		errs := ValidateDates(draft)
		if !errs.Has(FieldAuditionFormDeadline) {
			t.Fatalf("offset %d: expected auditionFormDeadline error, got %v", offset, errs)
		}
	}
}

func TestValidateDates_VotingEndAfterEnd(t *testing.T) {
	end := date(t, "2024-06-01")
	tests := []struct {
		name    string
		voting  time.Time
		wantErr bool
	}{
		{name: "same_day", voting: end, wantErr: false},
		{name: "day_before", voting: end.AddDate(0, 0, -1), wantErr: false},
		{name: "day_after", voting: end.AddDate(0, 0, 1), wantErr: true},
		{name: "year_after", voting: end.AddDate(1, 0, 0), wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			draft := Draft{
				StartDate: date(t, "2024-01-01"),
				EndDate:   end,
				Details:   OngoingDetails{VotingEndDate: test.voting},
			}
			if got := ValidateDates(draft).Has(FieldVotingEndDate); got != test.wantErr {
				t.Fatalf("votingEndDate error = %t, want %t", got, test.wantErr)
			}
		})
	}
}

func TestValidateDates_RequiredByStatus(t *testing.T) {
	base := Draft{StartDate: date(t, "2024-01-01"), EndDate: date(t, "2024-06-01")}

	upcoming := ValidateDates(base.WithStatus(StatusUpcoming))
	if !upcoming.Has(FieldAuditionFormDeadline) || !upcoming.Has(FieldVotingEndDate) {
		t.Fatalf("upcoming should require both dates: %v", upcoming)
	}

	ongoing := ValidateDates(base.WithStatus(StatusOngoing))
	if ongoing.Has(FieldAuditionFormDeadline) || !ongoing.Has(FieldVotingEndDate) {
		t.Fatalf("ongoing should only require voting end: %v", ongoing)
	}

	if ended := ValidateDates(base.WithStatus(StatusEnded)); len(ended) != 0 {
		t.Fatalf("ended should need no dates beyond the range: %v", ended)
	}
}

func TestValidateDates_ReportsEveryViolation(t *testing.T) {
	draft := Draft{
		StartDate: date(t, "2024-06-01"),
		EndDate:   date(t, "2024-01-01"),
		Details: UpcomingDetails{
			AuditionFormDeadline: date(t, "2024-07-01"),
			VotingEndDate:        date(t, "2024-08-01"),
		},
		Timeline: []TimelineEntry{{Label: "Finale", Start: date(t, "2024-05-02"), End: date(t, "2024-05-01")}},
	}

	errs := ValidateDates(draft)
	for _, field := range []Field{FieldEndDate, FieldAuditionFormDeadline, FieldVotingEndDate, FieldTimeline} {
		if !errs.Has(field) {
			t.Fatalf("missing %s error in %v", field, errs)
		}
	}
	if len(errs.Map()) != 4 {
		t.Fatalf("Map() = %v", errs.Map())
	}
}

func TestValidate_NoStatus(t *testing.T) {
	draft := validDraft(t)
	draft.Details = nil

	errs := Validate(draft)
	if errs.Map()[string(FieldStatus)] != "Please select a status" {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestValidate_IdentityFields(t *testing.T) {
	draft := validDraft(t)
	draft.EventID = 0
	draft.Year = 1999
	draft.Slug = "Bad Slug"

	errs := Validate(draft)
	for _, field := range []Field{FieldEventID, FieldYear, FieldSlug} {
		if !errs.Has(field) {
			t.Fatalf("missing %s error in %v", field, errs)
		}
	}
}

func TestValidate_NegativePrice(t *testing.T) {
	draft := validDraft(t)
	details := draft.Details.(UpcomingDetails)
	details.PricePerVote = -1
	draft.Details = details

	if !Validate(draft).Has(FieldPricePerVote) {
		t.Fatalf("expected pricePerVote error")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "", want: ""},
		{raw: "2024-02-29", want: "2024-02-29"},
		{raw: "2024-02-29T23:30:00Z", want: "2024-02-29"},
		{raw: "29/02/2024", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.raw, func(t *testing.T) {
			got, err := ParseDate(test.raw)
			if test.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate: %v", err)
			}
			if test.want == "" {
				if !got.IsZero() {
					t.Fatalf("expected zero time, got %s", got)
				}
				return
			}
			if got.Format("2006-01-02") != test.want || got.Location() != time.UTC {
				t.Fatalf("ParseDate(%q) = %s", test.raw, got)
			}
		})
	}
}
