package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Backend is the slice of the API the exporter needs. Satisfied by
// *api.Client.
type Backend interface {
	ListImages(ctx context.Context) ([]string, error)
	Download(ctx context.Context, name, dest string) (int64, error)
	UploadURL(name string) string
}

// Result records one exported file.
type Result struct {
	Filename   string
	SourceURL  string
	Size       int64
	ExportedAt time.Time
}

// Exporter downloads the backend's images into a local directory and writes
// a manifest describing what was exported.
type Exporter struct {
	backend Backend
}

// New creates an exporter.
func New(backend Backend) *Exporter {
	return &Exporter{backend: backend}
}

// Export downloads every listed image into dir and writes the manifest at
// manifestPath (format chosen by extension). A failed download skips that
// file and does not abort the export.
func (e *Exporter) Export(ctx context.Context, dir, manifestPath string) ([]Result, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	names, err := e.backend.ListImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	results := make([]Result, 0, len(names))
	for _, name := range names {
		dest := filepath.Join(dir, filepath.Base(name))
		size, err := e.backend.Download(ctx, name, dest)
		if err != nil {
			slog.Warn("Skipping image", "name", name, "error", err)
			continue
		}

		slog.Info("Exported image", "name", name, "dest", dest, "bytes", size)
		results = append(results, Result{
			Filename:   name,
			SourceURL:  e.backend.UploadURL(name),
			Size:       size,
			ExportedAt: time.Now(),
		})
	}

	if manifestPath != "" {
		if err := WriteManifest(manifestPath, results); err != nil {
			return results, fmt.Errorf("failed to write manifest: %w", err)
		}
	}

	return results, nil
}
