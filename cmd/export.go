package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/pixelbatch/retoucher/internal/api"
	"github.com/pixelbatch/retoucher/internal/config"
	"github.com/pixelbatch/retoucher/internal/exporter"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var dir string
	var manifest string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download images and write an export manifest",
		Long: `Downloads every image the backend lists into a local directory and
writes a manifest describing the export. The manifest format follows its
extension: .yaml (default) or .parquet.`,
		Example: `  # Export into ./exported with a YAML manifest
  retoucher export

  # Export into a custom directory with a parquet manifest
  retoucher export --dir ./out --manifest manifest.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)

			if dir == "" {
				dir = cfg.ExportDir
			}
			manifestPath := filepath.Join(dir, manifest)

			results, err := exporter.New(client).Export(cmd.Context(), dir, manifestPath)
			if err != nil {
				return err
			}

			fmt.Printf("exported %d image(s) to %s (manifest: %s)\n", len(results), dir, manifestPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Export directory (default from RETOUCHER_EXPORT_DIR)")
	cmd.Flags().StringVar(&manifest, "manifest", "manifest.yaml", "Manifest filename (.yaml or .parquet)")

	return cmd
}
