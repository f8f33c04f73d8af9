package seasons

import (
	"context"
	"slices"
	"testing"

	"github.com/codr1/Runway/internal/media"
	"github.com/codr1/Runway/internal/models"
)

// fixedRefStore hands back the same ref for every save, the way a
// content-addressed store would for identical bytes.
type fixedRefStore struct {
	ref string
}

func (s fixedRefStore) Save(ctx context.Context, prefix string, upload media.Upload) (string, error) {
	return s.ref, nil
}

func (s fixedRefStore) Delete(ctx context.Context, ref string) error {
	return nil
}

func TestCommitMedia_NeverReportsExistingRefsAsAdded(t *testing.T) {
	const galleryRef = "seasons/1/gala-2024/gallery-a.png"
	changes := unchangedMedia(models.SeasonMedia{
		Poster:  "seasons/1/gala-2024/old-poster.png",
		Gallery: []string{galleryRef},
	})
	changes.Poster.Replace(media.Upload{Filename: "poster.png", ContentType: "image/png", Data: pngBytes})

	refs, added, unused, err := commitMedia(context.Background(), fixedRefStore{ref: galleryRef}, "seasons/1/gala-2024", changes)
	if err != nil {
		t.Fatalf("commitMedia: %v", err)
	}
	if refs.Poster != galleryRef {
		t.Fatalf("poster = %q", refs.Poster)
	}
	if slices.Contains(added, galleryRef) {
		t.Fatalf("added = %v, must not include a ref stored before the request", added)
	}
	if !slices.Equal(unused, []string{"seasons/1/gala-2024/old-poster.png"}) {
		t.Fatalf("unused = %v", unused)
	}
}
