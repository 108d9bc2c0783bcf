package devserver

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Handler implements the retoucher backend contract for local development
// and tests. It stores files on disk like the production backend but does
// no rendering: "editing" derives a new file, and recommendations are
// deterministic canned strings.
type Handler struct {
	uploadsDir string
	editedDir  string
}

// New creates a handler storing uploads and edited images under the given
// directories, creating them if needed.
func New(uploadsDir, editedDir string) (*Handler, error) {
	for _, dir := range []string{uploadsDir, editedDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return &Handler{uploadsDir: uploadsDir, editedDir: editedDir}, nil
}

// Routes returns the mux serving the documented contract.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/test", h.HandleTest)
	mux.HandleFunc("/api/upload", h.HandleUpload)
	mux.HandleFunc("/api/images", h.HandleImages)
	mux.HandleFunc("/api/analyze/", h.HandleAnalyze)
	mux.HandleFunc("/api/edit/apply-all", h.HandleApplyEdits)
	mux.HandleFunc("/api/export/", h.HandleExport)
	mux.HandleFunc("/uploads/", h.handleStatic(h.uploadsDir, "/uploads/"))
	mux.HandleFunc("/edited_images/", h.handleStatic(h.editedDir, "/edited_images/"))
	return mux
}

func (h *Handler) HandleTest(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "Backend is running"})
}

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, "No file part", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		h.writeError(w, "No selected file", http.StatusBadRequest)
		return
	}

	// Limit file size to 50MB
	data, err := io.ReadAll(io.LimitReader(file, 50*1024*1024))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	name := filepath.Base(header.Filename)
	if err := os.WriteFile(filepath.Join(h.uploadsDir, name), data, 0644); err != nil {
		h.writeError(w, "Failed to store file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	slog.Info("Stored upload", "name", name, "bytes", len(data))
	h.writeJSON(w, map[string]string{
		"message":  "File uploaded successfully!",
		"filename": name,
	})
}

func (h *Handler) HandleImages(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(h.uploadsDir)
	if err != nil {
		h.writeError(w, "Failed to read uploads: "+err.Error(), http.StatusInternalServerError)
		return
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	h.writeJSON(w, names)
}

func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	name, ok := h.pathName(w, r, "/api/analyze/")
	if !ok {
		return
	}

	if _, err := os.Stat(filepath.Join(h.uploadsDir, name)); err != nil {
		h.writeError(w, "File not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, map[string]any{
		"filename":        name,
		"recommendations": recommendationsFor(name),
	})
}

func (h *Handler) HandleApplyEdits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Filename string `json:"filename"`
		Edits    struct {
			Brightness float64 `json:"brightness"`
			Contrast   float64 `json:"contrast"`
			Vibrancy   float64 `json:"vibrancy"`
			Grayscale  float64 `json:"grayscale"`
		} `json:"edits"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if request.Filename == "" {
		h.writeError(w, "filename is required", http.StatusBadRequest)
		return
	}

	name := filepath.Base(request.Filename)
	src := filepath.Join(h.uploadsDir, name)
	if _, err := os.Stat(src); err != nil {
		// Re-edits reference a previously derived file.
		src = filepath.Join(h.editedDir, name)
		if _, err := os.Stat(src); err != nil {
			h.writeError(w, "File not found", http.StatusNotFound)
			return
		}
	}

	// No rendering here: the stub derives a new file by copying bytes.
	derived := fmt.Sprintf("edited_%d_%s", time.Now().Unix(), name)
	data, err := os.ReadFile(src)
	if err != nil {
		h.writeError(w, "Failed to read source: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := os.WriteFile(filepath.Join(h.editedDir, derived), data, 0644); err != nil {
		h.writeError(w, "Failed to write derived file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	slog.Info("Applied edits", "source", name, "derived", derived,
		"brightness", request.Edits.Brightness, "contrast", request.Edits.Contrast,
		"grayscale", request.Edits.Grayscale)
	h.writeJSON(w, map[string]string{"filename": derived})
}

func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	name, ok := h.pathName(w, r, "/api/export/")
	if !ok {
		return
	}

	for _, dir := range []string{h.uploadsDir, h.editedDir} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			http.ServeFile(w, r, path)
			return
		}
	}
	h.writeError(w, "File not found", http.StatusNotFound)
}

// handleStatic serves files out of dir under the given URL prefix.
func (h *Handler) handleStatic(dir, prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, prefix)
		name, err := url.PathUnescape(name)
		if err != nil || name == "" || strings.Contains(name, "..") || strings.Contains(name, "/") {
			h.writeError(w, "Invalid file path", http.StatusBadRequest)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, name))
	}
}

// pathName extracts and validates the trailing filename of a route.
func (h *Handler) pathName(w http.ResponseWriter, r *http.Request, prefix string) (string, bool) {
	name := strings.TrimPrefix(r.URL.Path, prefix)
	name, err := url.PathUnescape(name)
	if err != nil || name == "" || strings.Contains(name, "..") || strings.Contains(name, "/") {
		h.writeError(w, "Invalid file path", http.StatusBadRequest)
		return "", false
	}
	return name, true
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		slog.Error("Unable to encode error response", "err", err)
	}
}
