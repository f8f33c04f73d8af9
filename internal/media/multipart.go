package media

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
)

const (
	removeSuffix   = "_remove"
	retainedSuffix = "_retained"
)

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported image type")
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ParseSlot reads one slot from a multipart form. A file under name replaces
// the slot, `<name>_remove=true` removes it, and neither leaves it unchanged.
func ParseSlot(form *multipart.Form, name, existing string, maxBytes int64) (Slot, error) {
	slot := NewSlot(existing)
	if form == nil {
		return slot, nil
	}
	if headers := form.File[name]; len(headers) > 0 {
		upload, err := readUpload(headers[0], maxBytes)
		if err != nil {
			return slot, fmt.Errorf("%s: %w", name, err)
		}
		slot.Replace(upload)
		return slot, nil
	}
	if removeRequested(form, name) {
		slot.Remove()
	}
	return slot, nil
}

// ParseGrid reads cells `<name>_0` .. `<name>_<n-1>` with the same rules as
// ParseSlot.
func ParseGrid(form *multipart.Form, name string, existing []string, size int, maxBytes int64) (Grid, error) {
	grid := NewGrid(size, existing)
	for i := range grid {
		slot, err := ParseSlot(form, cellName(name, i), grid[i].Existing, maxBytes)
		if err != nil {
			return nil, err
		}
		grid[i] = slot
	}
	return grid, nil
}

// ParseGallery reads the ordered `<name>_retained` references and every file
// sent under name. A form without any retained field keeps the gallery as is
// unless `<name>_remove=true` clears it.
func ParseGallery(form *multipart.Form, name string, existing []string, maxBytes int64) (Gallery, error) {
	gallery := NewGallery(existing)
	if form == nil {
		return gallery, nil
	}
	if retained, ok := form.Value[name+retainedSuffix]; ok {
		gallery.Retain(nonEmpty(retained))
	} else if removeRequested(form, name) {
		gallery.Retain(nil)
	}
	for _, header := range form.File[name] {
		upload, err := readUpload(header, maxBytes)
		if err != nil {
			return gallery, fmt.Errorf("%s: %w", name, err)
		}
		gallery.Add(upload)
	}
	return gallery, nil
}

// Encode writes the slot the way ParseSlot expects it.
func (s Slot) Encode(w *multipart.Writer, name string) error {
	switch s.State {
	case SlotReplaced:
		if s.Upload == nil {
			return fmt.Errorf("%s: replaced slot has no upload", name)
		}
		return writeUpload(w, name, *s.Upload)
	case SlotRemoved:
		return w.WriteField(name+removeSuffix, "true")
	}
	return nil
}

func (g Grid) Encode(w *multipart.Writer, name string) error {
	for i, slot := range g {
		if err := slot.Encode(w, cellName(name, i)); err != nil {
			return err
		}
	}
	return nil
}

func (g Gallery) Encode(w *multipart.Writer, name string) error {
	if len(g.Retained) == 0 && len(g.Existing) > 0 {
		if err := w.WriteField(name+removeSuffix, "true"); err != nil {
			return err
		}
	}
	for _, ref := range g.Retained {
		if err := w.WriteField(name+retainedSuffix, ref); err != nil {
			return err
		}
	}
	for _, upload := range g.Uploads {
		if err := writeUpload(w, name, upload); err != nil {
			return err
		}
	}
	return nil
}

func cellName(name string, i int) string {
	return name + "_" + strconv.Itoa(i)
}

func removeRequested(form *multipart.Form, name string) bool {
	values := form.Value[name+removeSuffix]
	return len(values) > 0 && strings.EqualFold(strings.TrimSpace(values[0]), "true")
}

func readUpload(header *multipart.FileHeader, maxBytes int64) (Upload, error) {
	if maxBytes > 0 && header.Size > maxBytes {
		return Upload{}, ErrFileTooLarge
	}
	file, err := header.Open()
	if err != nil {
		return Upload{}, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	reader := io.Reader(file)
	if maxBytes > 0 {
		reader = io.LimitReader(file, maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return Upload{}, fmt.Errorf("read upload: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return Upload{}, ErrFileTooLarge
	}

	contentType := http.DetectContentType(data)
	if !allowedTypes[contentType] {
		return Upload{}, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	return Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

func writeUpload(w *multipart.Writer, name string, upload Upload) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, upload.Filename))
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = part.Write(upload.Data)
	return err
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}
