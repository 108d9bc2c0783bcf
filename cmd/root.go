package cmd

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "retoucher",
		Short: "Bulk photo editing client for the retoucher backend",
		Long: `Retoucher is a command line client for bulk photo editing.

It uploads images to the retoucher backend, shows the backend's editing
recommendations per image, applies brightness/contrast/grayscale
adjustments, and exports the edited results.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			if verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	// Add subcommands
	cmd.AddCommand(newUploadCmd())
	cmd.AddCommand(newImagesCmd())
	cmd.AddCommand(newEditCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}
