package cmd

import (
	"fmt"

	"github.com/pixelbatch/retoucher/internal/api"
	"github.com/pixelbatch/retoucher/internal/config"
	"github.com/pixelbatch/retoucher/internal/editor"
	"github.com/spf13/cobra"
)

func newEditCmd() *cobra.Command {
	var brightness, contrast, grayscale float64
	var applyRec int
	var save bool

	cmd := &cobra.Command{
		Use:   "edit [image]",
		Short: "Inspect recommendations and apply edits to an image",
		Long: `Without an image argument, lists every uploaded image with its
recommendations. With one, selects that image (sliders start at their
defaults), optionally applies a recommendation or explicit slider values,
and with --save submits the edit and prints the derived filename.`,
		Example: `  # Show all images and their recommendations
  retoucher edit

  # Preview what would be submitted for one image
  retoucher edit holiday1.jpg --brightness 1.1

  # Apply the first recommendation and save
  retoucher edit holiday1.jpg --apply-recommendation 1 --save`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)

			session := editor.NewSession(client)
			if err := session.Load(cmd.Context()); err != nil {
				return err
			}

			if len(args) == 0 {
				for _, img := range session.Images() {
					fmt.Println(img.CurrentName)
					for _, rec := range img.Recommendations {
						fmt.Printf("  - %s\n", rec)
					}
				}
				return nil
			}

			if err := session.SelectByName(args[0]); err != nil {
				return err
			}
			img, _ := session.Selected()

			for _, rec := range img.Recommendations {
				fmt.Printf("  - %s\n", rec)
			}

			if applyRec > 0 {
				if applyRec > len(img.Recommendations) {
					return fmt.Errorf("image has %d recommendation(s), not %d", len(img.Recommendations), applyRec)
				}
				session.ApplyRecommendation(img.Recommendations[applyRec-1])
			}
			if cmd.Flags().Changed("brightness") {
				session.SetBrightness(brightness)
			}
			if cmd.Flags().Changed("contrast") {
				session.SetContrast(contrast)
			}
			if cmd.Flags().Changed("grayscale") {
				session.SetGrayscale(grayscale)
			}

			params := session.Params()
			fmt.Printf("edits: brightness=%.2f contrast=%.2f grayscale=%.2f\n",
				params.Brightness, params.Contrast, params.Grayscale)

			if !save {
				fmt.Println("dry run; pass --save to submit")
				return nil
			}

			derived, err := session.Save(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("saved as %s (%s)\n", derived, client.EditedURL(derived))
			return nil
		},
	}

	cmd.Flags().Float64Var(&brightness, "brightness", 1, "Brightness multiplier")
	cmd.Flags().Float64Var(&contrast, "contrast", 1, "Contrast multiplier")
	cmd.Flags().Float64Var(&grayscale, "grayscale", 0, "Grayscale amount (0-1)")
	cmd.Flags().IntVar(&applyRec, "apply-recommendation", 0, "Apply the nth recommendation (1-based)")
	cmd.Flags().BoolVar(&save, "save", false, "Submit the edit to the backend")

	return cmd
}
