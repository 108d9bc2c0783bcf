package config

import (
	"os"
	"time"
)

// Settings holds the client configuration, read from the environment.
// The root command loads .env before any of this is consulted.
type Settings struct {
	// APIBaseURL is the base URL of the retoucher backend.
	APIBaseURL string

	// ExportDir is where exported images and the manifest are written.
	ExportDir string

	// HTTPTimeout applies to every backend request.
	HTTPTimeout time.Duration
}

// Load reads settings from the environment, falling back to defaults.
func Load() *Settings {
	return &Settings{
		APIBaseURL:  getenv("RETOUCHER_API_URL", "http://localhost:5000"),
		ExportDir:   getenv("RETOUCHER_EXPORT_DIR", "./exported"),
		HTTPTimeout: getduration("RETOUCHER_HTTP_TIMEOUT", 30*time.Second),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
