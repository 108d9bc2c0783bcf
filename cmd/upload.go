package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pixelbatch/retoucher/internal/api"
	"github.com/pixelbatch/retoucher/internal/config"
	"github.com/pixelbatch/retoucher/internal/gallery"
	"github.com/spf13/cobra"
)

func newUploadCmd() *cobra.Command {
	var moves []string
	var removes []int
	var watchDir string

	cmd := &cobra.Command{
		Use:   "upload [files or directories...]",
		Short: "Upload images to the backend",
		Long: `Queues the given image files (directories are walked recursively),
optionally reorders or removes queue entries, then uploads everything
concurrently while reporting per-file and aggregate progress.`,
		Example: `  # Upload two files
  retoucher upload holiday1.jpg holiday2.jpg

  # Upload a whole directory, moving the third file to the front
  retoucher upload ./photos --move 2:0

  # Keep watching a directory and upload new images as they appear
  retoucher upload --watch ./photos`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && watchDir == "" {
				return fmt.Errorf("nothing to upload: pass files, directories, or --watch")
			}

			cfg := config.Load()
			client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)

			previewDir, err := os.MkdirTemp("", "retoucher-previews-")
			if err != nil {
				return fmt.Errorf("failed to create preview directory: %w", err)
			}
			defer os.RemoveAll(previewDir)

			g := gallery.New(previewDir)

			files, err := gallery.CollectFiles(args)
			if err != nil {
				return err
			}
			for _, f := range files {
				if _, err := g.Add(f); err != nil {
					return err
				}
			}

			if err := applyListSurgery(g, moves, removes); err != nil {
				return err
			}

			g.SetOnUpdate(func(item gallery.Item) {
				slog.Info("Progress",
					"file", item.Name,
					"pct", item.Progress,
					"uploaded", item.Uploaded,
					"total", g.AggregateProgress())
			})

			slog.Info("Uploading", "files", g.Len(), "backend", cfg.APIBaseURL)
			g.UploadAll(cmd.Context(), client)

			stats := g.Stats()
			slog.Info("Upload finished", "total", stats.Total, "uploaded", stats.Uploaded, "failed", stats.Failed)

			if watchDir != "" {
				err := g.Watch(cmd.Context(), watchDir, func(item *gallery.Item) {
					if err := g.UploadItem(cmd.Context(), client, item.ID); err != nil {
						slog.Error("Failed to upload new image", "file", item.Path, "error", err)
					}
				})
				if err != nil && cmd.Context().Err() == nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().StringArrayVar(&moves, "move", nil, "Reorder the queue before uploading, as from:to (repeatable)")
	cmd.Flags().IntSliceVar(&removes, "remove", nil, "Remove queue entries by index before uploading")
	cmd.Flags().StringVar(&watchDir, "watch", "", "Watch a directory and upload new images as they appear")

	return cmd
}

// applyListSurgery performs the pre-upload reorder and removal steps.
// Removals run last, highest index first, so indices stay meaningful.
func applyListSurgery(g *gallery.Gallery, moves []string, removes []int) error {
	for _, m := range moves {
		from, to, err := parseMove(m)
		if err != nil {
			return err
		}
		if err := g.Move(from, to); err != nil {
			return err
		}
	}

	sorted := make([]int, len(removes))
	copy(sorted, removes)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for _, idx := range sorted {
		if err := g.RemoveAt(idx); err != nil {
			return err
		}
	}
	return nil
}

func parseMove(s string) (int, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid --move %q: want from:to", s)
	}
	from, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --move %q: %w", s, err)
	}
	to, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --move %q: %w", s, err)
	}
	return from, to, nil
}
