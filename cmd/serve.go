package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pixelbatch/retoucher/internal/devserver"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string
	var uploadsDir string
	var editedDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local stand-in for the retoucher backend",
		Long: `Starts a local server implementing the backend contract the client
speaks: upload, image listing, analysis, edit application, and export.

It stores files on disk and serves canned, deterministic recommendations,
so the client can be exercised end to end without the production backend.`,
		Example: `  # Serve on the client's default port
  retoucher serve

  # Custom port and storage locations
  retoucher serve --port 8080 --uploads-dir /tmp/up --edited-dir /tmp/ed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := devserver.New(uploadsDir, editedDir)
			if err != nil {
				return err
			}

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: handler.Routes(),
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Dev backend available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "5000", "Port to listen on")
	cmd.Flags().StringVar(&uploadsDir, "uploads-dir", "uploads", "Directory for uploaded images")
	cmd.Flags().StringVar(&editedDir, "edited-dir", "edited_images", "Directory for edited images")

	return cmd
}
