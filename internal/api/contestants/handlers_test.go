package contestants

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/codr1/Runway/internal/db"
	"github.com/codr1/Runway/internal/media"
	"github.com/codr1/Runway/internal/testutil"
)

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

type contestantBody struct {
	ID         int64  `json:"id"`
	Slug       string `json:"slug"`
	Phone      string `json:"phone"`
	ProfileRef string `json:"profileRef"`
}

func setupContestantsTest(t *testing.T) (*db.DB, string) {
	t.Helper()

	database := testutil.NewTestDB(t)
	mediaDir := t.TempDir()
	disk, err := media.NewDiskStore(mediaDir)
	if err != nil {
		t.Fatalf("disk store: %v", err)
	}

	reset := func() {
		store = nil
		mediaStore = nil
		settings = Config{}
		queriesOnce = sync.Once{}
	}
	reset()
	InitHandlers(database, disk, Config{MediaBaseURL: "/media", MaxUploadBytes: 1 << 20, DefaultRegion: "US"})
	t.Cleanup(reset)

	return database, mediaDir
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
	return body
}

func createJSON(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contestants", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	HandleCreateContestant(recorder, req)
	return recorder
}

func decodeContestantBody(t *testing.T, recorder *httptest.ResponseRecorder) contestantBody {
	t.Helper()
	var out contestantBody
	if err := json.Unmarshal(decodeEnvelope(t, recorder).Data, &out); err != nil {
		t.Fatalf("decode contestant: %v", err)
	}
	return out
}

func TestHandleCreateContestant_NormalizesPhoneAndSlug(t *testing.T) {
	database, _ := setupContestantsTest(t)
	event := testutil.InsertEvent(t, database, "Gala", "gala")
	season := testutil.InsertSeason(t, database, event.ID, "gala-live", 10)

	recorder := createJSON(t, fmt.Sprintf(`{"seasonId":%d,"name":"Asha Rai","phone":"(650) 253-0000"}`, season.ID))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", recorder.Code, recorder.Body.String())
	}
	first := decodeContestantBody(t, recorder)
	if first.Phone != "+16502530000" || first.Slug != "asha-rai" {
		t.Fatalf("unexpected contestant: %+v", first)
	}

	recorder = createJSON(t, fmt.Sprintf(`{"seasonId":%d,"name":"Asha Rai"}`, season.ID))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("second create: %d %s", recorder.Code, recorder.Body.String())
	}
	if second := decodeContestantBody(t, recorder); second.Slug != "asha-rai-2" {
		t.Fatalf("second slug = %q", second.Slug)
	}
}

func TestHandleCreateContestant_Validation(t *testing.T) {
	database, _ := setupContestantsTest(t)
	event := testutil.InsertEvent(t, database, "Gala", "gala")
	season := testutil.InsertSeason(t, database, event.ID, "gala-live", 10)
	testutil.InsertContestant(t, database, season.ID, "Mira", "mira")

	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"missing name", fmt.Sprintf(`{"seasonId":%d}`, season.ID), http.StatusUnprocessableEntity, "name"},
		{"bad phone", fmt.Sprintf(`{"seasonId":%d,"name":"Asha","phone":"call me"}`, season.ID), http.StatusUnprocessableEntity, "phone"},
		{"missing season", `{"name":"Asha"}`, http.StatusUnprocessableEntity, "seasonId"},
		{"unknown season", `{"seasonId":9999,"name":"Asha"}`, http.StatusUnprocessableEntity, "seasonId"},
		{"slug taken", fmt.Sprintf(`{"seasonId":%d,"name":"Asha","slug":"mira"}`, season.ID), http.StatusConflict, "slug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := createJSON(t, tt.body)
			if recorder.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", recorder.Code, tt.status, recorder.Body.String())
			}
			if body := decodeEnvelope(t, recorder); body.Errors[tt.field] == "" {
				t.Fatalf("missing %s error: %+v", tt.field, body.Errors)
			}
		})
	}
}

func TestContestantProfileImageLifecycle(t *testing.T) {
	database, mediaDir := setupContestantsTest(t)
	event := testutil.InsertEvent(t, database, "Gala", "gala")
	season := testutil.InsertSeason(t, database, event.ID, "gala-live", 10)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	_ = writer.WriteField("season_id", fmt.Sprint(season.ID))
	_ = writer.WriteField("name", "Asha")
	part, err := writer.CreateFormFile("profile_image", "asha.png")
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	_, _ = part.Write(append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{1}, 16)...))
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contestants", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	recorder := httptest.NewRecorder()
	HandleCreateContestant(recorder, req)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", recorder.Code, recorder.Body.String())
	}
	created := decodeContestantBody(t, recorder)
	if created.ProfileRef == "" {
		t.Fatalf("profile image not stored")
	}
	imagePath := filepath.Join(mediaDir, filepath.FromSlash(created.ProfileRef))
	if _, err := os.Stat(imagePath); err != nil {
		t.Fatalf("profile image missing on disk: %v", err)
	}

	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/contestants/%d", created.ID), nil)
	req.SetPathValue("id", fmt.Sprint(created.ID))
	recorder = httptest.NewRecorder()
	HandleDeleteContestant(recorder, req)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("delete: %d %s", recorder.Code, recorder.Body.String())
	}
	if _, err := os.Stat(imagePath); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("profile image left on disk: %v", err)
	}
}

func TestHandleUpdateContestant_KeepsSlug(t *testing.T) {
	database, _ := setupContestantsTest(t)
	event := testutil.InsertEvent(t, database, "Gala", "gala")
	season := testutil.InsertSeason(t, database, event.ID, "gala-live", 10)
	contestant := testutil.InsertContestant(t, database, season.ID, "Mira", "mira")

	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/contestants/%d", contestant.ID), strings.NewReader("name=Mira+Shrestha&bio=Finalist"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	req.SetPathValue("id", fmt.Sprint(contestant.ID))
	recorder := httptest.NewRecorder()
	HandleUpdateContestant(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("update: %d %s", recorder.Code, recorder.Body.String())
	}
	if got := recorder.Header().Get("HX-Trigger"); got != refreshContestantsList {
		t.Fatalf("HX-Trigger = %q", got)
	}
	row, err := database.Queries.GetContestant(req.Context(), contestant.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if row.Slug != "mira" || row.Name != "Mira Shrestha" || row.Bio != "Finalist" {
		t.Fatalf("unexpected row: %+v", row)
	}
}

func TestHandleListContestants(t *testing.T) {
	database, _ := setupContestantsTest(t)
	event := testutil.InsertEvent(t, database, "Gala", "gala")
	season := testutil.InsertSeason(t, database, event.ID, "gala-live", 10)
	testutil.InsertContestant(t, database, season.ID, "Mira", "mira")
	testutil.InsertContestant(t, database, season.ID, "Asha", "asha")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetPathValue("id", fmt.Sprint(season.ID))
	recorder := httptest.NewRecorder()
	HandleListContestants(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("list: %d", recorder.Code)
	}
	var rows []contestantBody
	if err := json.Unmarshal(decodeEnvelope(t, recorder).Data, &rows); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(rows) != 2 || rows[0].Slug != "asha" {
		t.Fatalf("unexpected list: %+v", rows)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetPathValue("id", "9999")
	recorder = httptest.NewRecorder()
	HandleListContestants(recorder, req)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("missing season: %d", recorder.Code)
	}
}
