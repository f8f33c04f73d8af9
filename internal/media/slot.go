// Package media tracks image attachments on seasons, contestants and jury
// members and stores the uploaded bytes.
package media

import (
	"bytes"
	"context"
	"fmt"
	"slices"
)

// SlotState is what the client asked for a single attachment position.
type SlotState int

const (
	SlotUnchanged SlotState = iota
	SlotReplaced
	SlotRemoved
)

func (s SlotState) String() string {
	switch s {
	case SlotUnchanged:
		return "unchanged"
	case SlotReplaced:
		return "replaced"
	case SlotRemoved:
		return "removed"
	}
	return fmt.Sprintf("SlotState(%d)", int(s))
}

// Upload is a new file received for a slot.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Slot is one attachment position: a poster, a profile image or one cell of
// a fixed grid. Existing is the stored reference loaded with the record.
type Slot struct {
	Existing string
	State    SlotState
	Upload   *Upload
}

func NewSlot(existing string) Slot {
	return Slot{Existing: existing}
}

func (s *Slot) Replace(u Upload) {
	s.State = SlotReplaced
	s.Upload = &u
}

// Remove marks the slot for explicit deletion. A pending upload is dropped.
func (s *Slot) Remove() {
	s.State = SlotRemoved
	s.Upload = nil
}

func (s *Slot) Reset() {
	s.State = SlotUnchanged
	s.Upload = nil
}

// Commit stores a replacement upload under prefix and returns the reference
// to persist plus any reference that is no longer used.
func (s Slot) Commit(ctx context.Context, store Store, prefix string) (string, []string, error) {
	switch s.State {
	case SlotReplaced:
		if s.Upload == nil {
			return s.Existing, nil, fmt.Errorf("replaced slot has no upload")
		}
		ref, err := store.Save(ctx, prefix, *s.Upload)
		if err != nil {
			return s.Existing, nil, err
		}
		return ref, garbage([]string{s.Existing}, []string{ref}), nil
	case SlotRemoved:
		return "", garbage([]string{s.Existing}, nil), nil
	default:
		return s.Existing, nil, nil
	}
}

// Grid is a fixed number of slots, such as the season highlight images.
type Grid []Slot

// NewGrid sizes the grid to size, padding or truncating existing.
func NewGrid(size int, existing []string) Grid {
	grid := make(Grid, size)
	for i := range grid {
		if i < len(existing) {
			grid[i] = NewSlot(existing[i])
		}
	}
	return grid
}

// Commit resolves every cell. The result keeps the grid's positions, with ""
// marking an empty cell.
func (g Grid) Commit(ctx context.Context, store Store, prefix string) ([]string, []string, error) {
	refs := make([]string, len(g))
	var old []string
	for i, slot := range g {
		ref, _, err := slot.Commit(ctx, store, prefix)
		if err != nil {
			return nil, nil, fmt.Errorf("grid slot %d: %w", i, err)
		}
		refs[i] = ref
		old = append(old, slot.Existing)
	}
	return refs, garbage(old, refs), nil
}

// Gallery is an unbounded ordered image list. The client sends the existing
// references it keeps, in display order, next to any new uploads; anything
// it did not send back is deleted.
type Gallery struct {
	Existing []string
	Retained []string
	Uploads  []Upload
}

func NewGallery(existing []string) Gallery {
	return Gallery{
		Existing: slices.Clone(existing),
		Retained: slices.Clone(existing),
	}
}

// Retain replaces the kept list. References the gallery never had are
// ignored, so a client cannot attach arbitrary stored paths.
func (g *Gallery) Retain(refs []string) {
	kept := make([]string, 0, len(refs))
	for _, ref := range refs {
		if slices.Contains(g.Existing, ref) && !slices.Contains(kept, ref) {
			kept = append(kept, ref)
		}
	}
	g.Retained = kept
}

func (g *Gallery) Add(u Upload) {
	g.Uploads = append(g.Uploads, u)
}

// Deleted is the set of existing references the client dropped.
func (g Gallery) Deleted() []string {
	return garbage(g.Existing, g.Retained)
}

// Commit stores the uploads after the retained references and returns the
// final list plus the deleted references. Identical uploads in one request
// are stored once.
func (g Gallery) Commit(ctx context.Context, store Store, prefix string) ([]string, []string, error) {
	refs := slices.Clone(g.Retained)
	for i, upload := range g.Uploads {
		if slices.ContainsFunc(g.Uploads[:i], func(prev Upload) bool { return bytes.Equal(prev.Data, upload.Data) }) {
			continue
		}
		ref, err := store.Save(ctx, prefix, upload)
		if err != nil {
			return nil, nil, fmt.Errorf("gallery upload %d: %w", i, err)
		}
		refs = append(refs, ref)
	}
	if refs == nil {
		refs = []string{}
	}
	return refs, garbage(g.Existing, refs), nil
}

// garbage returns the non-empty references in old that are absent from kept.
func garbage(old, kept []string) []string {
	var out []string
	for _, ref := range old {
		if ref == "" || slices.Contains(kept, ref) || slices.Contains(out, ref) {
			continue
		}
		out = append(out, ref)
	}
	return out
}
