package seasons

import (
	"slices"
	"testing"
	"time"
)

func date(t *testing.T, raw string) time.Time {
	t.Helper()
	parsed, err := ParseDate(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return parsed
}

func TestWithStatus_EndedForcesPriceAndNotices(t *testing.T) {
	draft := Draft{
		Details: OngoingDetails{
			PricePerVote: 100,
			Notices:      []string{"A"},
		},
	}

	ended := draft.WithStatus(StatusEnded)

	if got := ended.PricePerVote(); got != 0 {
		t.Fatalf("price per vote = %d, want 0", got)
	}
	if got := ended.Notices(); len(got) != 0 || got == nil {
		t.Fatalf("notices = %#v, want empty non-nil slice", got)
	}
	if _, ok := ended.Details.(EndedDetails); !ok {
		t.Fatalf("details = %T, want EndedDetails", ended.Details)
	}
	if draft.PricePerVote() != 100 {
		t.Fatalf("WithStatus mutated the source draft")
	}
}

func TestWithStatus_EndedAfterAnyPriorValues(t *testing.T) {
	priors := []Details{
		nil,
		UpcomingDetails{PricePerVote: 5, Notices: []string{"x", "y"}},
		OngoingDetails{PricePerVote: 999999},
		EndedDetails{},
	}
	for _, prior := range priors {
		ended := Draft{Details: prior}.WithStatus(StatusEnded)
		if ended.PricePerVote() != 0 || len(ended.Notices()) != 0 {
			t.Fatalf("prior %T: price=%d notices=%v", prior, ended.PricePerVote(), ended.Notices())
		}
	}
}

func TestWithStatus_CarriesDates(t *testing.T) {
	audition := date(t, "2024-01-10")
	voting := date(t, "2024-05-01")
	draft := Draft{Details: UpcomingDetails{AuditionFormDeadline: audition, VotingEndDate: voting, PricePerVote: 20}}

	ongoing := draft.WithStatus(StatusOngoing)
	if !ongoing.AuditionFormDeadline().Equal(audition) || !ongoing.VotingEndDate().Equal(voting) {
		t.Fatalf("dates were not carried over: %+v", ongoing.Details)
	}
	if ongoing.PricePerVote() != 20 {
		t.Fatalf("price = %d, want 20", ongoing.PricePerVote())
	}
}

func TestApply_IgnoresForcedFieldsOnEnded(t *testing.T) {
	price := int64(50)
	notices := []string{"Vote now"}
	draft := Draft{Details: EndedDetails{}}.Apply(Input{PricePerVote: &price, Notices: &notices})

	if draft.PricePerVote() != 0 || len(draft.Notices()) != 0 {
		t.Fatalf("ended draft accepted price=%d notices=%v", draft.PricePerVote(), draft.Notices())
	}
}

func TestApply_SlugDerivation(t *testing.T) {
	name := "Miss Nepal"
	year := 2025
	draft := Draft{Details: UpcomingDetails{}}.Apply(Input{EventName: &name, Year: &year})
	if draft.Slug != "miss-nepal-2025" || draft.SlugEdited {
		t.Fatalf("derived slug = %q edited=%t", draft.Slug, draft.SlugEdited)
	}

	manual := "Grand Finale!"
	draft = draft.Apply(Input{Slug: &manual})
	if draft.Slug != "grand-finale" || !draft.SlugEdited {
		t.Fatalf("manual slug = %q edited=%t", draft.Slug, draft.SlugEdited)
	}

	nextYear := 2026
	draft = draft.Apply(Input{Year: &nextYear})
	if draft.Slug != "grand-finale" {
		t.Fatalf("manual slug was overwritten: %q", draft.Slug)
	}

	cleared := ""
	draft = draft.Apply(Input{Slug: &cleared})
	if draft.Slug != "miss-nepal-2026" || draft.SlugEdited {
		t.Fatalf("clearing the slug should restore derivation, got %q", draft.Slug)
	}
}

func TestApply_CleansNotices(t *testing.T) {
	notices := []string{"  first ", "", "second"}
	draft := Draft{Details: OngoingDetails{}}.Apply(Input{Notices: &notices})

	if got := draft.Notices(); !slices.Equal(got, []string{"first", "second"}) {
		t.Fatalf("notices = %v", got)
	}
}

func TestClone_DoesNotShareSlices(t *testing.T) {
	original := Draft{
		Timeline: []TimelineEntry{{Label: "Auditions"}},
		Details:  UpcomingDetails{Notices: []string{"A"}},
	}
	clone := original.Clone()
	clone.Timeline[0].Label = "Changed"
	clone.Details.(UpcomingDetails).Notices[0] = "B"

	if original.Timeline[0].Label != "Auditions" {
		t.Fatalf("timeline shared between clones")
	}
	if original.Notices()[0] != "A" {
		t.Fatalf("notices shared between clones")
	}
}

func TestAcceptsVotes(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
		want  bool
	}{
		{name: "no_status", draft: Draft{}, want: false},
		{name: "ongoing_paid", draft: Draft{Details: OngoingDetails{PricePerVote: 10}}, want: true},
		{name: "ongoing_free", draft: Draft{Details: OngoingDetails{}}, want: false},
		{name: "upcoming_paid", draft: Draft{Details: UpcomingDetails{PricePerVote: 10}}, want: true},
		{name: "ended", draft: Draft{Details: EndedDetails{}}, want: false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.draft.AcceptsVotes(); got != test.want {
				t.Fatalf("AcceptsVotes() = %t, want %t", got, test.want)
			}
		})
	}
}
