package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestClient(url string) *Client {
	return NewClient(url, 5*time.Second)
}

func TestUpload(t *testing.T) {
	src := filepath.Join(t.TempDir(), "photo.jpg")
	content := []byte("not really a jpeg but close enough")
	if err := os.WriteFile(src, content, 0644); err != nil {
		t.Fatal(err)
	}

	var gotField string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/upload" {
			t.Errorf("path = %s", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotField = header.Filename
		gotBody, _ = io.ReadAll(file)
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"message":"File uploaded successfully!","filename":"photo.jpg"}`)); err != nil {
			t.Error(err)
		}
	}))
	defer server.Close()

	var lastSent, lastTotal int64
	calls := 0
	name, err := newTestClient(server.URL).Upload(context.Background(), src, func(sent, total int64) {
		calls++
		if sent < lastSent {
			t.Errorf("progress went backwards: %d then %d", lastSent, sent)
		}
		lastSent, lastTotal = sent, total
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if name != "photo.jpg" {
		t.Errorf("name = %s, want photo.jpg", name)
	}
	if gotField != "photo.jpg" {
		t.Errorf("multipart filename = %s", gotField)
	}
	if string(gotBody) != string(content) {
		t.Errorf("uploaded body mismatch")
	}
	if calls == 0 {
		t.Fatal("progress callback never invoked")
	}
	if lastSent != lastTotal {
		t.Errorf("final progress %d/%d, want complete", lastSent, lastTotal)
	}
}

func TestUploadFallbackFilename(t *testing.T) {
	src := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Success payload without a filename field.
		if _, err := w.Write([]byte(`{"message":"ok"}`)); err != nil {
			t.Error(err)
		}
	}))
	defer server.Close()

	name, err := newTestClient(server.URL).Upload(context.Background(), src, nil)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if name != "photo.jpg" {
		t.Errorf("name = %s, want local base name", name)
	}
}

func TestUploadServerError(t *testing.T) {
	src := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "disk full", http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).Upload(context.Background(), src, nil); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestListImages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/images" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if _, err := w.Write([]byte(`["a.jpg","b.png"]`)); err != nil {
			t.Error(err)
		}
	}))
	defer server.Close()

	names, err := newTestClient(server.URL).ListImages(context.Background())
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	if len(names) != 2 || names[0] != "a.jpg" || names[1] != "b.png" {
		t.Errorf("names = %v", names)
	}
}

func TestAnalyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/analyze/a.jpg" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if _, err := w.Write([]byte(`{"filename":"a.jpg","recommendations":["Image appears underexposed; increase brightness"]}`)); err != nil {
			t.Error(err)
		}
	}))
	defer server.Close()

	analysis, err := newTestClient(server.URL).Analyze(context.Background(), "a.jpg")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if analysis.Filename != "a.jpg" || len(analysis.Recommendations) != 1 {
		t.Errorf("analysis = %+v", analysis)
	}
}

func TestApplyEdits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/edit/apply-all" {
			t.Errorf("path = %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		want := `{"filename":"a.jpg","edits":{"brightness":1.2,"contrast":1,"vibrancy":1,"grayscale":0}}`
		if string(body) != want {
			t.Errorf("body = %s, want %s", body, want)
		}
		if _, err := w.Write([]byte(`{"filename":"edited_1_a.jpg"}`)); err != nil {
			t.Error(err)
		}
	}))
	defer server.Close()

	edits := DefaultEditParams()
	edits.Brightness = 1.2
	derived, err := newTestClient(server.URL).ApplyEdits(context.Background(), "a.jpg", edits)
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	if derived != "edited_1_a.jpg" {
		t.Errorf("derived = %s", derived)
	}
}

func TestDownloadFallsBackToEdited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/edited_images/edited_1_a.jpg":
			if _, err := w.Write([]byte("edited bytes")); err != nil {
				t.Error(err)
			}
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "out.jpg")
	size, err := newTestClient(server.URL).Download(context.Background(), "edited_1_a.jpg", dest)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if size != int64(len("edited bytes")) {
		t.Errorf("size = %d", size)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "edited bytes" {
		t.Errorf("downloaded = %q", data)
	}

	if _, err := newTestClient(server.URL).Download(context.Background(), "missing.jpg", dest); err == nil {
		t.Error("expected error when both routes 404")
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/test" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if _, err := w.Write([]byte(`{"status":"Backend is running"}`)); err != nil {
			t.Error(err)
		}
	}))
	defer server.Close()

	if err := newTestClient(server.URL).Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer down.Close()

	if err := newTestClient(down.URL).Ping(context.Background()); err == nil {
		t.Error("expected ping error on 503")
	}
}

func TestAssetURLs(t *testing.T) {
	c := newTestClient("http://localhost:5000")
	if got := c.UploadURL("a b.jpg"); got != "http://localhost:5000/uploads/a%20b.jpg" {
		t.Errorf("UploadURL = %s", got)
	}
	if got := c.EditedURL("e.jpg"); got != "http://localhost:5000/edited_images/e.jpg" {
		t.Errorf("EditedURL = %s", got)
	}
}
