// Package seasons holds the season wizard: the status-driven field rules,
// the draft container, cross-field validation and slug derivation.
package seasons

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusOngoing  Status = "ongoing"
	StatusEnded    Status = "ended"
)

// Statuses lists every lifecycle status in wizard display order.
func Statuses() []Status {
	return []Status{StatusUpcoming, StatusOngoing, StatusEnded}
}

func (s Status) Valid() bool {
	switch s {
	case StatusUpcoming, StatusOngoing, StatusEnded:
		return true
	}
	return false
}

func (s Status) Label() string {
	switch s {
	case StatusUpcoming:
		return "Upcoming"
	case StatusOngoing:
		return "Ongoing"
	case StatusEnded:
		return "Ended"
	}
	return string(s)
}

func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", fmt.Errorf("status must be one of upcoming, ongoing, ended")
	}
	return status, nil
}

type Field string

const (
	FieldStatus               Field = "status"
	FieldEventID              Field = "eventId"
	FieldYear                 Field = "year"
	FieldSlug                 Field = "slug"
	FieldStartDate            Field = "startDate"
	FieldEndDate              Field = "endDate"
	FieldAuditionFormDeadline Field = "auditionFormDeadline"
	FieldVotingEndDate        Field = "votingEndDate"
	FieldPricePerVote         Field = "pricePerVote"
	FieldNotice               Field = "notice"
	FieldTimeline             Field = "timeline"
)

type Rule string

const (
	RuleRequired    Rule = "required"
	RuleOptional    Rule = "optional"
	RuleEditable    Rule = "editable"
	RuleForcedZero  Rule = "forced-zero"
	RuleForcedEmpty Rule = "forced-empty"
)

// Requirements maps each status-dependent field to its rule.
type Requirements map[Field]Rule

// RequirementsFor returns the field table for status. The result is a fresh
// map the caller may keep. An unknown status yields an empty table.
func RequirementsFor(status Status) Requirements {
	switch status {
	case StatusUpcoming:
		return Requirements{
			FieldAuditionFormDeadline: RuleRequired,
			FieldVotingEndDate:        RuleRequired,
			FieldPricePerVote:         RuleEditable,
			FieldNotice:               RuleEditable,
		}
	case StatusOngoing:
		return Requirements{
			FieldAuditionFormDeadline: RuleOptional,
			FieldVotingEndDate:        RuleRequired,
			FieldPricePerVote:         RuleEditable,
			FieldNotice:               RuleEditable,
		}
	case StatusEnded:
		return Requirements{
			FieldAuditionFormDeadline: RuleOptional,
			FieldVotingEndDate:        RuleOptional,
			FieldPricePerVote:         RuleForcedZero,
			FieldNotice:               RuleForcedEmpty,
		}
	}
	return Requirements{}
}

func (r Requirements) Rule(field Field) Rule {
	if rule, ok := r[field]; ok {
		return rule
	}
	return RuleOptional
}

// Required returns the required fields in a stable order.
func (r Requirements) Required() []Field {
	return r.withRule(RuleRequired)
}

// Forced returns the fields the status overwrites.
func (r Requirements) Forced() []Field {
	return append(r.withRule(RuleForcedZero), r.withRule(RuleForcedEmpty)...)
}

func (r Requirements) withRule(rule Rule) []Field {
	var fields []Field
	for _, field := range fieldOrder {
		if r[field] == rule {
			fields = append(fields, field)
		}
	}
	return fields
}

var fieldOrder = []Field{
	FieldAuditionFormDeadline,
	FieldVotingEndDate,
	FieldPricePerVote,
	FieldNotice,
}
