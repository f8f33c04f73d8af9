package media

import (
	"bytes"
	"errors"
	"mime/multipart"
	"slices"
	"testing"
)

// roundTrip encodes with fn and parses the body back into a form.
func roundTrip(t *testing.T, fn func(w *multipart.Writer) error) *multipart.Form {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := fn(writer); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	form, err := multipart.NewReader(&body, writer.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form
}

func TestSlotEncode_RemovedSendsFlag(t *testing.T) {
	slot := NewSlot("seasons/1/poster/old.jpg")
	slot.Remove()

	form := roundTrip(t, func(w *multipart.Writer) error { return slot.Encode(w, "poster") })

	if got := form.Value["poster_remove"]; !slices.Equal(got, []string{"true"}) {
		t.Fatalf("poster_remove = %v", got)
	}
	if len(form.File["poster"]) != 0 {
		t.Fatalf("removed slot should not send a file")
	}
}

func TestSlotEncode_UnchangedSendsNothing(t *testing.T) {
	form := roundTrip(t, func(w *multipart.Writer) error { return NewSlot("x.jpg").Encode(w, "poster") })
	if len(form.Value) != 0 || len(form.File) != 0 {
		t.Fatalf("unchanged slot wrote fields: %v %v", form.Value, form.File)
	}
}

func TestParseSlot(t *testing.T) {
	replaced := NewSlot("")
	replaced.Replace(Upload{Filename: "p.png", ContentType: "image/png", Data: pngBytes})
	removed := NewSlot("")
	removed.Remove()

	tests := []struct {
		name  string
		slot  Slot
		state SlotState
	}{
		{name: "unchanged", slot: NewSlot(""), state: SlotUnchanged},
		{name: "replaced", slot: replaced, state: SlotReplaced},
		{name: "removed", slot: removed, state: SlotRemoved},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			form := roundTrip(t, func(w *multipart.Writer) error { return test.slot.Encode(w, "poster") })
			got, err := ParseSlot(form, "poster", "old.jpg", 1<<20)
			if err != nil {
				t.Fatalf("ParseSlot: %v", err)
			}
			if got.State != test.state || got.Existing != "old.jpg" {
				t.Fatalf("parsed slot = %+v", got)
			}
			if test.state == SlotReplaced && (got.Upload == nil || got.Upload.ContentType != "image/png") {
				t.Fatalf("upload = %+v", got.Upload)
			}
		})
	}
}

func TestParseSlot_Limits(t *testing.T) {
	tooBig := NewSlot("")
	tooBig.Replace(Upload{Filename: "big.png", ContentType: "image/png", Data: append(slices.Clone(pngBytes), make([]byte, 64)...)})
	form := roundTrip(t, func(w *multipart.Writer) error { return tooBig.Encode(w, "poster") })
	if _, err := ParseSlot(form, "poster", "", 16); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}

	text := NewSlot("")
	text.Replace(Upload{Filename: "notes.txt", ContentType: "text/plain", Data: []byte("hello world")})
	form = roundTrip(t, func(w *multipart.Writer) error { return text.Encode(w, "poster") })
	if _, err := ParseSlot(form, "poster", "", 1<<20); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestParseGrid(t *testing.T) {
	grid := NewGrid(3, []string{"a.jpg", "b.jpg", "c.jpg"})
	grid[1].Remove()
	grid[2].Replace(Upload{Filename: "c.jpg", ContentType: "image/jpeg", Data: jpegBytes})

	form := roundTrip(t, func(w *multipart.Writer) error { return grid.Encode(w, "highlight") })
	parsed, err := ParseGrid(form, "highlight", []string{"a.jpg", "b.jpg", "c.jpg"}, 3, 1<<20)
	if err != nil {
		t.Fatalf("ParseGrid: %v", err)
	}
	states := []SlotState{parsed[0].State, parsed[1].State, parsed[2].State}
	if !slices.Equal(states, []SlotState{SlotUnchanged, SlotRemoved, SlotReplaced}) {
		t.Fatalf("states = %v", states)
	}
}

func TestParseGallery(t *testing.T) {
	existing := []string{"g/1.jpg", "g/2.jpg", "g/3.jpg"}
	gallery := NewGallery(existing)
	gallery.Retain([]string{"g/3.jpg", "g/1.jpg"})
	gallery.Add(Upload{Filename: "n.png", ContentType: "image/png", Data: pngBytes})

	form := roundTrip(t, func(w *multipart.Writer) error { return gallery.Encode(w, "gallery") })
	parsed, err := ParseGallery(form, "gallery", existing, 1<<20)
	if err != nil {
		t.Fatalf("ParseGallery: %v", err)
	}
	if !slices.Equal(parsed.Retained, []string{"g/3.jpg", "g/1.jpg"}) {
		t.Fatalf("retained = %v", parsed.Retained)
	}
	if !slices.Equal(parsed.Deleted(), []string{"g/2.jpg"}) {
		t.Fatalf("deleted = %v", parsed.Deleted())
	}
	if len(parsed.Uploads) != 1 {
		t.Fatalf("uploads = %d", len(parsed.Uploads))
	}
}

func TestParseGallery_ClearAll(t *testing.T) {
	existing := []string{"g/1.jpg", "g/2.jpg"}
	gallery := NewGallery(existing)
	gallery.Retain(nil)

	form := roundTrip(t, func(w *multipart.Writer) error { return gallery.Encode(w, "gallery") })
	parsed, err := ParseGallery(form, "gallery", existing, 1<<20)
	if err != nil {
		t.Fatalf("ParseGallery: %v", err)
	}
	if len(parsed.Retained) != 0 || !slices.Equal(parsed.Deleted(), existing) {
		t.Fatalf("retained=%v deleted=%v", parsed.Retained, parsed.Deleted())
	}
}

func TestParseGallery_AbsentKeepsExisting(t *testing.T) {
	existing := []string{"g/1.jpg"}
	parsed, err := ParseGallery(&multipart.Form{}, "gallery", existing, 1<<20)
	if err != nil {
		t.Fatalf("ParseGallery: %v", err)
	}
	if len(parsed.Deleted()) != 0 || !slices.Equal(parsed.Retained, existing) {
		t.Fatalf("absent gallery fields changed the gallery: %+v", parsed)
	}
}
