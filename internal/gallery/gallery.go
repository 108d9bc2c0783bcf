package gallery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/pixelbatch/retoucher/internal/api"
)

// Item is one queued image: a local file plus its upload state.
type Item struct {
	ID          string
	Path        string
	Name        string // backend filename once uploaded, local base name before
	PreviewPath string // local preview copy, removed with the item
	Uploaded    bool
	Progress    int // 0 to 100
	Err         string
}

// Uploader sends a single file to the backend. Satisfied by *api.Client.
type Uploader interface {
	Upload(ctx context.Context, path string, onProgress api.ProgressFunc) (string, error)
}

// Stats summarizes the queue after an upload pass.
type Stats struct {
	Total    int
	Uploaded int
	Failed   int
}

// Gallery holds the ordered upload queue. Order is user-controlled and has
// no backend effect; uploads mutate only their own item before the
// aggregate is recomputed.
type Gallery struct {
	mu         sync.RWMutex
	items      []*Item
	previewDir string
	onUpdate   func(Item)
}

// New creates an empty gallery. previewDir, if non-empty, receives a local
// preview copy of every added file.
func New(previewDir string) *Gallery {
	return &Gallery{previewDir: previewDir}
}

// SetOnUpdate sets the callback invoked after every item state change. The
// callback receives a copy and may safely call back into the gallery.
func (g *Gallery) SetOnUpdate(fn func(Item)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onUpdate = fn
}

// Add appends a file to the queue with progress 0. No type or size
// validation happens here; the backend is the arbiter of what it accepts.
func (g *Gallery) Add(path string) (*Item, error) {
	item := &Item{
		ID:   uuid.NewString(),
		Path: path,
		Name: filepath.Base(path),
	}

	if g.previewDir != "" {
		preview, err := g.writePreview(item)
		if err != nil {
			return nil, err
		}
		item.PreviewPath = preview
	}

	g.mu.Lock()
	g.items = append(g.items, item)
	g.mu.Unlock()

	return item, nil
}

// Remove deletes the item with the given ID, keeping the relative order of
// the rest. The item's preview copy is deleted with it. An in-flight upload
// for the item is not cancelled.
func (g *Gallery) Remove(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, item := range g.items {
		if item.ID != id {
			continue
		}
		g.items = append(g.items[:i], g.items[i+1:]...)
		if item.PreviewPath != "" {
			if err := os.Remove(item.PreviewPath); err != nil {
				slog.Warn("Failed to remove preview", "path", item.PreviewPath, "error", err)
			}
		}
		return nil
	}
	return fmt.Errorf("no item with id %s", id)
}

// RemoveAt removes the item at position i.
func (g *Gallery) RemoveAt(i int) error {
	g.mu.RLock()
	if i < 0 || i >= len(g.items) {
		g.mu.RUnlock()
		return fmt.Errorf("index %d out of range", i)
	}
	id := g.items[i].ID
	g.mu.RUnlock()

	return g.Remove(id)
}

// Move reorders the queue: the item at from is reinserted at to. Only local
// order changes; the set of items is untouched.
func (g *Gallery) Move(from, to int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := len(g.items)
	if from < 0 || from >= n {
		return fmt.Errorf("source index %d out of range", from)
	}
	if to < 0 || to >= n {
		return fmt.Errorf("destination index %d out of range", to)
	}

	item := g.items[from]
	g.items = append(g.items[:from], g.items[from+1:]...)
	g.items = append(g.items[:to], append([]*Item{item}, g.items[to:]...)...)
	return nil
}

// Items returns a snapshot of the queue in its current order.
func (g *Gallery) Items() []Item {
	g.mu.RLock()
	defer g.mu.RUnlock()

	items := make([]Item, 0, len(g.items))
	for _, item := range g.items {
		items = append(items, *item)
	}
	return items
}

// Len returns the number of queued items.
func (g *Gallery) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.items)
}

// AggregateProgress is the rounded mean of per-item progress, 0 when empty.
func (g *Gallery) AggregateProgress() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if len(g.items) == 0 {
		return 0
	}
	sum := 0
	for _, item := range g.items {
		sum += item.Progress
	}
	return int(math.Round(float64(sum) / float64(len(g.items))))
}

// SetProgress records a per-item percentage and notifies the update
// callback. The aggregate is derived, so it is consistent immediately.
func (g *Gallery) SetProgress(id string, pct int) {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	g.mu.Lock()
	var updated *Item
	for _, item := range g.items {
		if item.ID == id {
			item.Progress = pct
			updated = item
			break
		}
	}
	g.mu.Unlock()

	if updated != nil {
		g.notify(*updated)
	}
}

// Stats reports upload outcomes for the current queue.
func (g *Gallery) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := Stats{Total: len(g.items)}
	for _, item := range g.items {
		if item.Uploaded {
			s.Uploaded++
		}
		if item.Err != "" {
			s.Failed++
		}
	}
	return s
}

// UploadAll uploads every pending item, one goroutine per item with no
// concurrency cap and no ordering guarantee. Failures are logged and
// recorded on the item; progress already displayed is not rolled back.
func (g *Gallery) UploadAll(ctx context.Context, up Uploader) {
	g.mu.RLock()
	pending := make([]*Item, 0, len(g.items))
	for _, item := range g.items {
		if !item.Uploaded {
			pending = append(pending, item)
		}
	}
	g.mu.RUnlock()

	var wg sync.WaitGroup
	for _, item := range pending {
		wg.Add(1)
		go func(item *Item) {
			defer wg.Done()
			g.uploadOne(ctx, up, item)
		}(item)
	}
	wg.Wait()
}

// UploadItem uploads a single queued item by ID.
func (g *Gallery) UploadItem(ctx context.Context, up Uploader, id string) error {
	g.mu.RLock()
	var target *Item
	for _, item := range g.items {
		if item.ID == id {
			target = item
			break
		}
	}
	g.mu.RUnlock()

	if target == nil {
		return fmt.Errorf("no item with id %s", id)
	}
	g.uploadOne(ctx, up, target)
	return nil
}

func (g *Gallery) uploadOne(ctx context.Context, up Uploader, item *Item) {
	name, err := up.Upload(ctx, item.Path, func(sent, total int64) {
		if total <= 0 {
			return
		}
		g.SetProgress(item.ID, int(sent*100/total))
	})

	g.mu.Lock()
	if err != nil {
		item.Err = err.Error()
	} else {
		item.Uploaded = true
		item.Progress = 100
		item.Name = name
	}
	snapshot := *item
	g.mu.Unlock()

	if err != nil {
		slog.Error("Upload failed", "file", item.Path, "error", err)
	} else {
		slog.Debug("Upload complete", "file", item.Path, "name", name)
	}
	g.notify(snapshot)
}

// Clear empties the queue and deletes all preview copies.
func (g *Gallery) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, item := range g.items {
		if item.PreviewPath != "" {
			if err := os.Remove(item.PreviewPath); err != nil {
				slog.Warn("Failed to remove preview", "path", item.PreviewPath, "error", err)
			}
		}
	}
	g.items = nil
}

func (g *Gallery) notify(item Item) {
	g.mu.RLock()
	fn := g.onUpdate
	g.mu.RUnlock()

	if fn != nil {
		fn(item)
	}
}

func (g *Gallery) writePreview(item *Item) (string, error) {
	src, err := os.Open(item.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", item.Path, err)
	}
	defer src.Close()

	previewPath := filepath.Join(g.previewDir, item.ID+filepath.Ext(item.Path))
	dst, err := os.Create(previewPath)
	if err != nil {
		return "", fmt.Errorf("failed to create preview: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to copy preview: %w", err)
	}
	return previewPath, nil
}
