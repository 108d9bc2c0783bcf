package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// yamlManifest is the YAML manifest document.
type yamlManifest struct {
	ExportedAt string              `yaml:"exportedat"`
	Files      []yamlManifestEntry `yaml:"files"`
}

type yamlManifestEntry struct {
	Filename   string `yaml:"filename"`
	SourceURL  string `yaml:"sourceurl"`
	Size       int64  `yaml:"size"`
	ExportedAt string `yaml:"exportedat"`
}

// parquetManifestRow is one manifest row in parquet form.
type parquetManifestRow struct {
	Filename   string `parquet:"filename"`
	SourceURL  string `parquet:"source_url"`
	Size       int64  `parquet:"size"`
	ExportedAt int64  `parquet:"exported_at"` // unix seconds
}

// WriteManifest writes the export manifest. The format follows the file
// extension: .yaml/.yml or .parquet.
func WriteManifest(path string, results []Result) error {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		return writeYAMLManifest(path, results)
	case ".parquet":
		return writeParquetManifest(path, results)
	default:
		return fmt.Errorf("unsupported manifest format: %s (supported: .yaml, .parquet)", ext)
	}
}

func writeYAMLManifest(path string, results []Result) error {
	manifest := yamlManifest{
		ExportedAt: time.Now().Format(time.RFC3339),
		Files:      make([]yamlManifestEntry, 0, len(results)),
	}
	for _, r := range results {
		manifest.Files = append(manifest.Files, yamlManifestEntry{
			Filename:   r.Filename,
			SourceURL:  r.SourceURL,
			Size:       r.Size,
			ExportedAt: r.ExportedAt.Format(time.RFC3339),
		})
	}

	data, err := yaml.Marshal(&manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}
	return nil
}

func writeParquetManifest(path string, results []Result) error {
	rows := make([]parquetManifestRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, parquetManifestRow{
			Filename:   r.Filename,
			SourceURL:  r.SourceURL,
			Size:       r.Size,
			ExportedAt: r.ExportedAt.Unix(),
		})
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet manifest: %w", err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[parquetManifestRow](file)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet manifest: %w", err)
	}
	return nil
}
