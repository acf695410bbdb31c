package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mwenda/somo/internal/adapter"
	"github.com/mwenda/somo/internal/domain"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(server.URL, "test-token", adapter.NullLogger())
	return client, server
}

func TestClient_GetUnits(t *testing.T) {
	var gotAuth, gotAccept string
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/units" {
			t.Errorf("request path = %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"units": [
				{"id": "u1", "title": "Alphabet", "description": "Letters", "lesson_count": 6, "cover_image_url": "/img/u1.jpg", "updated_at": 1700000000},
				{"id": "u2", "title": "Greetings", "lesson_count": 4}
			]
		}`))
	})
	defer server.Close()

	units, err := client.GetUnits(context.Background())
	if err != nil {
		t.Fatalf("GetUnits() error = %v", err)
	}

	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization header = %q", gotAuth)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept header = %q", gotAccept)
	}

	if len(units) != 2 {
		t.Fatalf("GetUnits() = %d units, expected 2", len(units))
	}
	first := units[0]
	if first.ID != "u1" || first.Title != "Alphabet" || first.LessonCount != 6 {
		t.Errorf("units[0] = %+v", first)
	}
	if first.SourceUpdatedAt != 1700000000 {
		t.Errorf("units[0].SourceUpdatedAt = %d", first.SourceUpdatedAt)
	}
}

func TestClient_GetUnits_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected error
	}{
		{"unauthorized", http.StatusUnauthorized, domain.ErrAuthFailed},
		{"forbidden", http.StatusForbidden, domain.ErrAuthFailed},
		{"not found", http.StatusNotFound, domain.ErrUnitNotFound},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(test.status)
			})
			defer server.Close()

			_, err := client.GetUnits(context.Background())
			if !errors.Is(err, test.expected) {
				t.Errorf("GetUnits() error = %v, expected %v", err, test.expected)
			}
		})
	}
}

func TestClient_GetUnits_ServerOffline(t *testing.T) {
	server := httptest.NewServer(nil)
	client := NewClient(server.URL, "test-token", adapter.NullLogger())
	server.Close() // connection refused from here on

	_, err := client.GetUnits(context.Background())
	if !errors.Is(err, domain.ErrServerOffline) {
		t.Errorf("GetUnits() error = %v, expected ErrServerOffline", err)
	}
}

func TestClient_GetUnits_CancelledContext(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetUnits(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("GetUnits() error = %v, expected context.Canceled", err)
	}
}

func TestClient_GetUnitContent(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/units/u1/content" {
			t.Errorf("request path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"unit": {"id": "u1", "title": "Alphabet"},
			"lessons": [
				{"id": "l1", "title": "Vowels", "position": 1, "sections": [
					{"kind": "text", "body": "# Vowels"},
					{"kind": "audio", "asset_id": "a1"}
				]}
			],
			"exercises": [
				{"id": "e1", "lesson_id": "l1", "prompt": "Pick the vowel", "choices": ["a", "b"], "answer_index": 0, "audio_asset_id": "a1"}
			],
			"assets": [
				{"id": "a1", "kind": "audio", "url": "/assets/a1", "checksum": "abc123"},
				{"id": "a2", "kind": "image", "url": "https://cdn.example.com/a2"}
			]
		}`))
	})
	defer server.Close()

	content, err := client.GetUnitContent(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUnitContent() error = %v", err)
	}

	if content.UnitID != "u1" {
		t.Errorf("UnitID = %s", content.UnitID)
	}
	if len(content.Lessons) != 1 {
		t.Fatalf("Lessons = %d, expected 1", len(content.Lessons))
	}
	lesson := content.Lessons[0]
	if lesson.UnitID != "u1" || lesson.Title != "Vowels" || len(lesson.Sections) != 2 {
		t.Errorf("lesson = %+v", lesson)
	}
	if lesson.Sections[1].Kind != "audio" || lesson.Sections[1].AssetID != "a1" {
		t.Errorf("sections[1] = %+v", lesson.Sections[1])
	}

	if len(content.Exercises) != 1 {
		t.Fatalf("Exercises = %d, expected 1", len(content.Exercises))
	}
	ex := content.Exercises[0]
	if ex.UnitID != "u1" || ex.LessonID != "l1" || ex.AudioAssetID != "a1" {
		t.Errorf("exercise = %+v", ex)
	}

	if len(content.AssetManifest) != 2 {
		t.Fatalf("AssetManifest = %d, expected 2", len(content.AssetManifest))
	}
	if content.AssetManifest[0].Kind != domain.AssetKindAudio || content.AssetManifest[0].Checksum != "abc123" {
		t.Errorf("manifest[0] = %+v", content.AssetManifest[0])
	}
	if content.AssetManifest[1].Kind != domain.AssetKindImage {
		t.Errorf("manifest[1] = %+v", content.AssetManifest[1])
	}
}

func TestClient_GetUnitContent_EscapesUnitID(t *testing.T) {
	var gotPath string
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"unit": {"id": "x"}}`))
	})
	defer server.Close()

	if _, err := client.GetUnitContent(context.Background(), "unit/../../etc"); err != nil {
		t.Fatalf("GetUnitContent() error = %v", err)
	}
	if gotPath != "/api/v1/units/unit%2F..%2F..%2Fetc/content" {
		t.Errorf("escaped path = %s", gotPath)
	}
}

func TestClient_FetchAsset(t *testing.T) {
	payload := []byte("binary audio data")
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/assets/a1" {
			t.Errorf("request path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Authorization header = %q", r.Header.Get("Authorization"))
		}
		w.Write(payload)
	})
	defer server.Close()

	// Relative manifest URL resolves against the API base
	data, err := client.FetchAsset(context.Background(), domain.AssetManifestEntry{
		AssetID: "a1",
		Kind:    domain.AssetKindAudio,
		URL:     "/assets/a1",
	})
	if err != nil {
		t.Fatalf("FetchAsset() error = %v", err)
	}
	if string(data) != string(payload) {
		t.Errorf("FetchAsset() = %q, expected %q", data, payload)
	}
}

func TestClient_FetchAsset_AbsoluteURL(t *testing.T) {
	assetServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("cdn payload"))
	}))
	defer assetServer.Close()

	// The API base never sees the request
	client := NewClient("https://api.invalid", "test-token", adapter.NullLogger())

	data, err := client.FetchAsset(context.Background(), domain.AssetManifestEntry{
		AssetID: "a2",
		Kind:    domain.AssetKindImage,
		URL:     assetServer.URL + "/a2",
	})
	if err != nil {
		t.Fatalf("FetchAsset() error = %v", err)
	}
	if string(data) != "cdn payload" {
		t.Errorf("FetchAsset() = %q", data)
	}
}

func TestClient_FetchAsset_ErrorStatus(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	defer server.Close()

	_, err := client.FetchAsset(context.Background(), domain.AssetManifestEntry{AssetID: "a1", URL: "/assets/a1"})
	if !errors.Is(err, domain.ErrAuthFailed) {
		t.Errorf("FetchAsset() error = %v, expected ErrAuthFailed", err)
	}
}
