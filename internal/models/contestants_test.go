package models

import (
	"errors"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		region  string
		want    string
		wantErr bool
	}{
		{name: "empty", raw: "  ", region: "US", want: ""},
		{name: "international", raw: "+1 650-253-0000", region: "NP", want: "+16502530000"},
		{name: "national_with_region", raw: "(650) 253-0000", region: "us", want: "+16502530000"},
		{name: "too_short", raw: "12345", region: "US", wantErr: true},
		{name: "letters", raw: "call me", region: "US", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := NormalizePhone(test.raw, test.region)
			if test.wantErr {
				if !errors.Is(err, ErrInvalidPhone) {
					t.Fatalf("NormalizePhone(%q) error = %v, want ErrInvalidPhone", test.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizePhone(%q): %v", test.raw, err)
			}
			if got != test.want {
				t.Fatalf("NormalizePhone(%q) = %q, want %q", test.raw, got, test.want)
			}
		})
	}
}

func TestEventNormalize(t *testing.T) {
	event := Event{Name: "  Miss Café Nepal ", Description: " finals "}.Normalize()
	if event.Name != "Miss Café Nepal" || event.Slug != "miss-cafe-nepal" || event.Description != "finals" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if err := event.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	custom := Event{Name: "Show", Slug: "My Show!"}.Normalize()
	if custom.Slug != "my-show" {
		t.Fatalf("slug = %q", custom.Slug)
	}

	if err := (Event{Name: ""}).Normalize().Validate(); err == nil {
		t.Fatalf("expected empty name to fail")
	}
}
