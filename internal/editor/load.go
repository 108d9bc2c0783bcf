package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// How many analyze requests run at once during Load.
const analyzeConcurrency = 4

// Load fetches the image list and then the recommendations for every image.
// A failed analysis degrades that one image to the placeholder
// recommendation instead of failing the load.
func (s *Session) Load(ctx context.Context) error {
	names, err := s.backend.ListImages(ctx)
	if err != nil {
		return fmt.Errorf("failed to load image list: %w", err)
	}

	images := make([]*ImageItem, len(names))
	for i, name := range names {
		images[i] = &ImageItem{
			OriginalName: name,
			CurrentName:  name,
			DisplayURL:   s.backend.UploadURL(name),
		}
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, analyzeConcurrency)

	for _, img := range images {
		wg.Add(1)
		go func(img *ImageItem) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			analysis, err := s.backend.Analyze(ctx, img.OriginalName)
			if err != nil || len(analysis.Recommendations) == 0 {
				if err != nil {
					slog.Warn("Analysis failed", "image", img.OriginalName, "error", err)
				}
				img.Recommendations = []string{PlaceholderRecommendation}
				return
			}
			img.Recommendations = analysis.Recommendations
		}(img)
	}
	wg.Wait()

	s.images = images
	s.selected = -1
	return nil
}
