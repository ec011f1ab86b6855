package composer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClientValidatesAddress(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{"valid http", "http://localhost:9001", false},
		{"valid https", "https://composer.internal", false},
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"no scheme", "localhost:9001", true},
		{"bad scheme", "ftp://localhost", true},
		{"no host", "http://", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.addr, time.Second)
			if tt.wantErr && err == nil {
				t.Fatalf("expected error for %q", tt.addr)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error for %q: %v", tt.addr, err)
			}
		})
	}
}

func TestCreateDraftPostsAndParsesFolder(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"draft_folder": "/drafts/abc"})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	folder, err := client.CreateDraft(context.Background(), "abc", 720, 1280)
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if folder != "/drafts/abc" {
		t.Fatalf("expected folder /drafts/abc, got %q", folder)
	}
	if gotPath != "/create_draft" {
		t.Errorf("expected path /create_draft, got %q", gotPath)
	}
	if gotBody["draft_id"] != "abc" {
		t.Errorf("expected draft_id abc, got %v", gotBody["draft_id"])
	}
	if gotBody["width"] != float64(720) || gotBody["height"] != float64(1280) {
		t.Errorf("expected 720x1280, got %vx%v", gotBody["width"], gotBody["height"])
	}
}

func TestCreateDraftRejectsMissingFolder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, time.Second)
	_, err := client.CreateDraft(context.Background(), "abc", 720, 1280)
	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected BackendError, got %v", err)
	}
}

func TestAddImageInjectsFolderAndDuration(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"segment_id": "seg-1"})
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, time.Second)
	result, err := client.AddImage(context.Background(), "/drafts/abc", ImageParams{
		ImageURL: "http://img/x.png",
		Start:    1,
		Duration: 2.5,
		Width:    1080,
		Height:   1920,
		ScaleX:   1,
		ScaleY:   1,
	})
	if err != nil {
		t.Fatalf("add image: %v", err)
	}
	if gotBody["draft_folder"] != "/drafts/abc" {
		t.Errorf("expected draft_folder injected, got %v", gotBody["draft_folder"])
	}
	if gotBody["duration"] != 2.5 {
		t.Errorf("expected duration 2.5, got %v", gotBody["duration"])
	}
	if gotBody["image_url"] != "http://img/x.png" {
		t.Errorf("expected image_url, got %v", gotBody["image_url"])
	}
	payload, ok := result.(map[string]any)
	if !ok || payload["segment_id"] != "seg-1" {
		t.Errorf("expected backend result passthrough, got %v", result)
	}
}

func TestBackendErrorCarriesMessageAndStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]any{"error": "download failed: connection reset"})
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, time.Second)
	_, err := client.AddAudio(context.Background(), "/drafts/abc", AudioParams{AudioURL: "http://a/x.mp3"})
	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if backendErr.Status != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", backendErr.Status)
	}
	if backendErr.Message != "download failed: connection reset" {
		t.Errorf("unexpected message %q", backendErr.Message)
	}
}

func TestSaveDraftPostsFolderAndID(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/save_draft" {
			t.Errorf("expected /save_draft, got %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"draft_url": "https://example/abc"})
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, time.Second)
	if _, err := client.SaveDraft(context.Background(), "/drafts/abc", "abc"); err != nil {
		t.Fatalf("save draft: %v", err)
	}
	if gotBody["draft_folder"] != "/drafts/abc" || gotBody["draft_id"] != "abc" {
		t.Errorf("unexpected body %v", gotBody)
	}
}

func TestTimeoutSurfacesAsBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, 20*time.Millisecond)
	_, err := client.SaveDraft(context.Background(), "/drafts/abc", "abc")
	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected BackendError on timeout, got %v", err)
	}
}
