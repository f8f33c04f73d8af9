package seasons

import (
	"slices"
	"testing"
)

func TestRequirementsFor_RequiredFields(t *testing.T) {
	tests := []struct {
		status Status
		want   []Field
	}{
		{status: StatusUpcoming, want: []Field{FieldAuditionFormDeadline, FieldVotingEndDate}},
		{status: StatusOngoing, want: []Field{FieldVotingEndDate}},
		{status: StatusEnded, want: nil},
	}

	for _, test := range tests {
		t.Run(string(test.status), func(t *testing.T) {
			got := RequirementsFor(test.status).Required()
			if !slices.Equal(got, test.want) {
				t.Fatalf("Required() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestRequirementsFor_Table(t *testing.T) {
	upcoming := RequirementsFor(StatusUpcoming)
	if upcoming[FieldPricePerVote] != RuleEditable {
		t.Fatalf("upcoming price rule = %q", upcoming[FieldPricePerVote])
	}

	ongoing := RequirementsFor(StatusOngoing)
	if ongoing.Rule(FieldAuditionFormDeadline) == RuleRequired {
		t.Fatalf("ongoing must not require the audition deadline")
	}
	if ongoing[FieldPricePerVote] != RuleEditable {
		t.Fatalf("ongoing price rule = %q", ongoing[FieldPricePerVote])
	}

	ended := RequirementsFor(StatusEnded)
	if ended[FieldPricePerVote] != RuleForcedZero || ended[FieldNotice] != RuleForcedEmpty {
		t.Fatalf("unexpected ended table: %v", ended)
	}
	if got := ended.Forced(); !slices.Equal(got, []Field{FieldPricePerVote, FieldNotice}) {
		t.Fatalf("Forced() = %v", got)
	}
}

func TestRequirementsFor_ReturnsFreshMap(t *testing.T) {
	first := RequirementsFor(StatusUpcoming)
	first[FieldVotingEndDate] = RuleOptional

	if RequirementsFor(StatusUpcoming)[FieldVotingEndDate] != RuleRequired {
		t.Fatalf("mutating a returned table leaked into later calls")
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    Status
		wantErr bool
	}{
		{raw: "upcoming", want: StatusUpcoming},
		{raw: " Ongoing ", want: StatusOngoing},
		{raw: "ENDED", want: StatusEnded},
		{raw: "", wantErr: true},
		{raw: "archived", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.raw, func(t *testing.T) {
			got, err := ParseStatus(test.raw)
			if test.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", test.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStatus(%q): %v", test.raw, err)
			}
			if got != test.want {
				t.Fatalf("ParseStatus(%q) = %q, want %q", test.raw, got, test.want)
			}
		})
	}
}
