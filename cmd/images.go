package cmd

import (
	"fmt"

	"github.com/pixelbatch/retoucher/internal/api"
	"github.com/pixelbatch/retoucher/internal/config"
	"github.com/spf13/cobra"
)

func newImagesCmd() *cobra.Command {
	var urls bool

	cmd := &cobra.Command{
		Use:   "images",
		Short: "List uploaded images",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)

			names, err := client.ListImages(cmd.Context())
			if err != nil {
				return err
			}

			if len(names) == 0 {
				fmt.Println("no images uploaded yet")
				return nil
			}
			for _, name := range names {
				if urls {
					fmt.Printf("%s\t%s\n", name, client.UploadURL(name))
				} else {
					fmt.Println(name)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&urls, "urls", false, "Also print each image's asset URL")

	return cmd
}
