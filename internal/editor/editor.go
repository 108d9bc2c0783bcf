package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixelbatch/retoucher/internal/api"
)

// PlaceholderRecommendation stands in when analysis fails for an image.
const PlaceholderRecommendation = "No recommendations available"

// Brightness multipliers picked when a recommendation mentions exposure.
// The recommendation text carries no numeric parameter; these are fixed.
const (
	underexposedBrightness = 1.2
	overexposedBrightness  = 0.8
)

// ImageItem is one editable image as the edit session sees it. CurrentName
// and DisplayURL move to the derived file after every successful save.
type ImageItem struct {
	OriginalName    string
	DisplayURL      string
	CurrentName     string
	Recommendations []string
}

// Backend is the slice of the API the edit session needs. Satisfied by
// *api.Client.
type Backend interface {
	ListImages(ctx context.Context) ([]string, error)
	Analyze(ctx context.Context, name string) (*api.Analysis, error)
	ApplyEdits(ctx context.Context, name string, edits api.EditParams) (string, error)
	UploadURL(name string) string
	EditedURL(name string) string
}

// Session holds the edit view state: the image list, the selection, and the
// current slider values. All mutation happens on the caller's goroutine;
// only Load fans out internally.
type Session struct {
	backend  Backend
	images   []*ImageItem
	selected int
	params   api.EditParams
}

// NewSession creates an empty edit session.
func NewSession(backend Backend) *Session {
	return &Session{
		backend:  backend,
		selected: -1,
		params:   api.DefaultEditParams(),
	}
}

// Images returns a snapshot of the session's image list.
func (s *Session) Images() []ImageItem {
	images := make([]ImageItem, 0, len(s.images))
	for _, img := range s.images {
		images = append(images, *img)
	}
	return images
}

// Selected returns the currently selected image, if any.
func (s *Session) Selected() (*ImageItem, bool) {
	if s.selected < 0 || s.selected >= len(s.images) {
		return nil, false
	}
	return s.images[s.selected], true
}

// Params returns the current slider values.
func (s *Session) Params() api.EditParams {
	return s.params
}

// Select picks image i and resets all sliders to their defaults.
func (s *Session) Select(i int) error {
	if i < 0 || i >= len(s.images) {
		return fmt.Errorf("image index %d out of range", i)
	}
	s.selected = i
	s.params = api.DefaultEditParams()
	return nil
}

// SelectByName selects the image whose current filename matches name.
func (s *Session) SelectByName(name string) error {
	for i, img := range s.images {
		if img.CurrentName == name || img.OriginalName == name {
			return s.Select(i)
		}
	}
	return fmt.Errorf("no image named %s", name)
}

// SetBrightness sets the brightness slider.
func (s *Session) SetBrightness(v float64) { s.params.Brightness = v }

// SetContrast sets the contrast slider.
func (s *Session) SetContrast(v float64) { s.params.Contrast = v }

// SetGrayscale sets the grayscale slider.
func (s *Session) SetGrayscale(v float64) { s.params.Grayscale = v }

// ApplyRecommendation adjusts sliders from a recommendation string. Text
// mentioning "underexposed" raises brightness, "overexposed" lowers it;
// anything else leaves the sliders untouched. Matching is case-insensitive
// substring search since the text is free-form.
func (s *Session) ApplyRecommendation(text string) {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "underexposed"):
		s.params.Brightness = underexposedBrightness
	case strings.Contains(lower, "overexposed"):
		s.params.Brightness = overexposedBrightness
	}
}

// Save submits the selected image's current filename with all four edit
// parameters. On success the session repoints the image to the derived
// filename the backend returns and resets the sliders.
func (s *Session) Save(ctx context.Context) (string, error) {
	img, ok := s.Selected()
	if !ok {
		return "", fmt.Errorf("no image selected")
	}

	derived, err := s.backend.ApplyEdits(ctx, img.CurrentName, s.params)
	if err != nil {
		return "", fmt.Errorf("failed to save edits for %s: %w", img.CurrentName, err)
	}

	img.CurrentName = derived
	img.DisplayURL = s.backend.EditedURL(derived)
	s.params = api.DefaultEditParams()
	return derived, nil
}
