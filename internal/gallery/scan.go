package gallery

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// IsImage reports whether a path has a recognized image extension.
func IsImage(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// CollectFiles expands a mix of file and directory paths into the image
// files they contain. Directories are walked recursively; dotfiles and
// dot-directories are skipped.
func CollectFiles(roots []string) ([]string, error) {
	var files []string

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", root, err)
		}

		if !info.IsDir() {
			// Explicitly named files are queued as-is; the backend decides
			// what it accepts.
			files = append(files, root)
			continue
		}

		err = godirwalk.Walk(root, &godirwalk.Options{
			Callback: func(path string, de *godirwalk.Dirent) error {
				if strings.HasPrefix(filepath.Base(path), ".") {
					return godirwalk.SkipThis
				}
				if de.IsDir() {
					return nil
				}
				if IsImage(path) {
					slog.Debug("Found image", "path", path)
					files = append(files, path)
				}
				return nil
			},
			Unsorted: false,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	return files, nil
}
