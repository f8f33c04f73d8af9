package seasons

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugAttempts = 100

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugSplitter = regexp.MustCompile(`[^a-z0-9]+`)

	ErrSlugExhausted = errors.New("no free slug available")
)

// Slugify lowercases raw, transliterates Devanagari, folds diacritics to
// ASCII and joins the remaining alphanumeric runs with single hyphens.
// Other non-Latin scripts are dropped.
func Slugify(raw string) string {
	raw = transliterateDevanagari(raw)
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		raw,
	)
	if err != nil {
		folded = raw
	}
	folded = strings.ToLower(folded)
	return strings.Trim(slugSplitter.ReplaceAllString(folded, "-"), "-")
}

// DeriveSlug builds the season slug from its event name and year. It returns
// "" until both are known.
func DeriveSlug(eventName string, year int) string {
	if strings.TrimSpace(eventName) == "" || year <= 0 {
		return ""
	}
	return Slugify(fmt.Sprintf("%s %d", eventName, year))
}

func IsValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// SlugTaken reports whether slug is already used in the caller's scope.
type SlugTaken func(ctx context.Context, slug string) (bool, error)

// UniqueSlug normalizes base and appends -2, -3, ... until taken reports the
// candidate free.
func UniqueSlug(ctx context.Context, base string, taken SlugTaken) (string, error) {
	base = Slugify(base)
	if base == "" {
		return "", fmt.Errorf("slug is empty after normalization")
	}

	candidate := base
	for attempt := 2; attempt <= maxSlugAttempts+1; attempt++ {
		used, err := taken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !used {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(attempt)
	}
	return "", fmt.Errorf("%w for %q", ErrSlugExhausted, base)
}
