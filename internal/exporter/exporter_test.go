package exporter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

type fakeBackend struct {
	images  map[string][]byte // nil entry means download fails
	listing []string
}

func (f *fakeBackend) ListImages(ctx context.Context) ([]string, error) {
	return f.listing, nil
}

func (f *fakeBackend) Download(ctx context.Context, name, dest string) (int64, error) {
	data, ok := f.images[name]
	if !ok {
		return 0, os.ErrNotExist
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

func (f *fakeBackend) UploadURL(name string) string {
	return "http://localhost:5000/uploads/" + name
}

func TestExportIsolatesFailures(t *testing.T) {
	backend := &fakeBackend{
		listing: []string{"a.jpg", "gone.jpg", "b.jpg"},
		images: map[string][]byte{
			"a.jpg": []byte("aaa"),
			"b.jpg": []byte("bbbbb"),
		},
	}

	dir := t.TempDir()
	manifest := filepath.Join(dir, "manifest.yaml")
	results, err := New(backend).Export(context.Background(), dir, manifest)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (failure skipped)", len(results))
	}
	if results[0].Filename != "a.jpg" || results[1].Filename != "b.jpg" {
		t.Errorf("results = %+v", results)
	}
	if results[1].Size != 5 {
		t.Errorf("size = %d, want 5", results[1].Size)
	}

	for _, name := range []string{"a.jpg", "b.jpg"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "gone.jpg")); !os.IsNotExist(err) {
		t.Error("failed download left a file behind")
	}

	var doc struct {
		ExportedAt string `yaml:"exportedat"`
		Files      []struct {
			Filename  string `yaml:"filename"`
			SourceURL string `yaml:"sourceurl"`
			Size      int64  `yaml:"size"`
		} `yaml:"files"`
	}
	data, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("manifest not valid YAML: %v", err)
	}
	if len(doc.Files) != 2 {
		t.Fatalf("manifest has %d files, want 2", len(doc.Files))
	}
	if doc.Files[0].SourceURL != backend.UploadURL("a.jpg") {
		t.Errorf("manifest source URL = %s", doc.Files[0].SourceURL)
	}
}

func TestWriteManifestParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.parquet")
	results := []Result{
		{Filename: "a.jpg", SourceURL: "http://x/uploads/a.jpg", Size: 3, ExportedAt: time.Unix(1700000000, 0)},
		{Filename: "b.jpg", SourceURL: "http://x/uploads/b.jpg", Size: 5, ExportedAt: time.Unix(1700000001, 0)},
	}

	if err := WriteManifest(path, results); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		t.Fatal(err)
	}
	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	reader := parquet.NewGenericReader[parquetManifestRow](pf)
	defer reader.Close()

	rows := make([]parquetManifestRow, 4)
	n, _ := reader.Read(rows)
	if n != 2 {
		t.Fatalf("got %d rows, want 2", n)
	}
	if rows[0].Filename != "a.jpg" || rows[0].Size != 3 || rows[0].ExportedAt != 1700000000 {
		t.Errorf("row = %+v", rows[0])
	}
}

func TestWriteManifestUnsupportedFormat(t *testing.T) {
	err := WriteManifest(filepath.Join(t.TempDir(), "manifest.csv"), nil)
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
