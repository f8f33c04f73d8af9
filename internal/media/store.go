package media

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/blake2b"
)

var ErrInvalidPath = errors.New("invalid media path")

// Store persists uploaded bytes and returns a relative reference that can be
// stored on a record and later turned into a display URL.
type Store interface {
	Save(ctx context.Context, prefix string, upload Upload) (string, error)
	Delete(ctx context.Context, ref string) error
}

// ObjectKey names one stored copy of an upload: a content digest plus a
// random suffix. Every save gets its own key, so deleting one record's
// file never removes bytes another record points at.
func ObjectKey(prefix string, upload Upload) (string, error) {
	prefix = strings.Trim(path.Clean("/"+prefix), "/")
	if prefix == "" || prefix == "." {
		return "", fmt.Errorf("%w: empty prefix", ErrInvalidPath)
	}
	sum := blake2b.Sum256(upload.Data)
	return prefix + "/" + hex.EncodeToString(sum[:8]) + "-" + uuid.NewString() + extension(upload), nil
}

func extension(upload Upload) string {
	switch upload.ContentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(upload.ContentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	if ext := strings.ToLower(filepath.Ext(upload.Filename)); ext != "" {
		return ext
	}
	return ".bin"
}

// cleanRef rejects references that would escape the store root.
func cleanRef(ref string) (string, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "/")
	if ref == "" || !filepath.IsLocal(filepath.FromSlash(ref)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, ref)
	}
	return path.Clean(ref), nil
}

// Collect deletes refs, logging failures instead of returning them: the
// record has already been saved and orphaned files are harmless.
func Collect(ctx context.Context, store Store, refs []string) int {
	deleted := 0
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := store.Delete(ctx, ref); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("media_ref", ref).Msg("Failed to delete media")
			continue
		}
		deleted++
	}
	return deleted
}

// DisplayURL maps a stored reference to the URL clients load. Absolute URLs
// pass through unchanged.
func DisplayURL(baseURL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "//") {
		return ref
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(ref, "/")
}

func DisplayURLs(baseURL string, refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if url := DisplayURL(baseURL, ref); url != "" {
			out = append(out, url)
		}
	}
	return out
}

// EncodeRefs serializes a reference list for a JSON TEXT column.
func EncodeRefs(refs []string) string {
	if refs == nil {
		refs = []string{}
	}
	data, err := json.Marshal(refs)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// DecodeRefs reads a JSON TEXT column. Malformed input yields an empty list.
func DecodeRefs(raw string) []string {
	var refs []string
	if strings.TrimSpace(raw) == "" || json.Unmarshal([]byte(raw), &refs) != nil || refs == nil {
		return []string{}
	}
	return refs
}
