package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Client talks to the retoucher backend. The backend owns all image
// processing, recommendation generation, and storage; this client only
// speaks its documented HTTP contract.
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

// EditParams is the four-value adjustment tuple sent to the backend.
// Values are multipliers; vibrancy is carried on the wire but the backend
// never asks for it to change.
type EditParams struct {
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Vibrancy   float64 `json:"vibrancy"`
	Grayscale  float64 `json:"grayscale"`
}

// DefaultEditParams returns the slider defaults.
func DefaultEditParams() EditParams {
	return EditParams{Brightness: 1, Contrast: 1, Vibrancy: 1, Grayscale: 0}
}

// Analysis is the backend's per-image recommendation payload.
type Analysis struct {
	Filename        string   `json:"filename"`
	Recommendations []string `json:"recommendations"`
}

// NewClient creates a backend client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Ping checks that the backend is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/test", nil)
	if err != nil {
		return fmt.Errorf("failed to create ping request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError("ping", resp)
	}
	return nil
}

// Upload sends one file as multipart form field "file". onProgress, if
// non-nil, is called with (sent, total) body bytes as the request streams.
// Returns the filename the backend stored the upload under.
func (c *Client) Upload(ctx context.Context, path string, onProgress ProgressFunc) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize form: %w", err)
	}

	total := int64(body.Len())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/upload",
		newProgressReader(&body, total, onProgress))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.ContentLength = total

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError("upload", resp)
	}

	// The success payload is loosely specified; decode the filename when
	// present and fall back to the local base name.
	var uploadResp struct {
		Message  string `json:"message"`
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if uploadResp.Filename == "" {
		return filepath.Base(path), nil
	}
	return uploadResp.Filename, nil
}

// ListImages returns the filenames of previously uploaded images.
func (c *Client) ListImages(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/images", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create images request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("images", resp)
	}

	var names []string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		return nil, fmt.Errorf("failed to decode image list: %w", err)
	}
	return names, nil
}

// Analyze fetches the backend's recommendations for one image.
func (c *Client) Analyze(ctx context.Context, name string) (*Analysis, error) {
	analyzeURL := fmt.Sprintf("%s/api/analyze/%s", c.BaseURL, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, analyzeURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyze request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("analyze", resp)
	}

	var analysis Analysis
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		return nil, fmt.Errorf("failed to decode analysis for %s: %w", name, err)
	}
	return &analysis, nil
}

// ApplyEdits submits the edit parameters for a file. The backend renders a
// new derived file and returns its name.
func (c *Client) ApplyEdits(ctx context.Context, name string, edits EditParams) (string, error) {
	payload := struct {
		Filename string     `json:"filename"`
		Edits    EditParams `json:"edits"`
	}{
		Filename: name,
		Edits:    edits,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode edit request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/edit/apply-all", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create edit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to apply edits to %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError("edit", resp)
	}

	var editResp struct {
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&editResp); err != nil {
		return "", fmt.Errorf("failed to decode edit response: %w", err)
	}
	if editResp.Filename == "" {
		return "", fmt.Errorf("backend returned no derived filename for %s", name)
	}
	return editResp.Filename, nil
}

// UploadURL returns the static asset URL of an uploaded image.
func (c *Client) UploadURL(name string) string {
	return fmt.Sprintf("%s/uploads/%s", c.BaseURL, url.PathEscape(name))
}

// EditedURL returns the static asset URL of an edited image.
func (c *Client) EditedURL(name string) string {
	return fmt.Sprintf("%s/edited_images/%s", c.BaseURL, url.PathEscape(name))
}

// Download fetches an image by name, trying the uploads route first and the
// edited images route second, and writes it to dest. Returns the byte size.
func (c *Client) Download(ctx context.Context, name, dest string) (int64, error) {
	size, uploadErr := c.downloadFrom(ctx, c.UploadURL(name), dest)
	if uploadErr == nil {
		return size, nil
	}

	size, editedErr := c.downloadFrom(ctx, c.EditedURL(name), dest)
	if editedErr == nil {
		return size, nil
	}

	return 0, fmt.Errorf("failed to download %s: %w (uploads route: %v)", name, editedErr, uploadErr)
}

func (c *Client) downloadFrom(ctx context.Context, srcURL, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch %s: %w", srcURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, statusError("download", resp)
	}

	out, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer out.Close()

	size, err := io.Copy(out, resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return size, nil
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("%s returned status %d: %s", op, resp.StatusCode, string(body))
}
