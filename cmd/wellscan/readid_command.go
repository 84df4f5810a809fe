package main

import (
	"fmt"
	"image"

	"github.com/spf13/cobra"

	"github.com/ironsheep/wellscan/internal/plateid"
)

func newReadIDCommand(ctx *commandContext) *cobra.Command {
	var region []int
	var language string

	cmd := &cobra.Command{
		Use:   "read-id <image>",
		Short: "Read the plate identifier printed on the label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.logger(cmd)
			if err != nil {
				return err
			}

			rect := cfg.LabelRegion()
			if cmd.Flags().Changed("region") {
				if len(region) != 4 {
					return fmt.Errorf("region needs four values x0,y0,x1,y1, got %d", len(region))
				}
				rect = image.Rect(region[0], region[1], region[2], region[3])
			}
			if cmd.Flags().Changed("language") {
				cfg.PlateID.Language = language
			}

			frame, err := ctx.cache.Load(args[0])
			if err != nil {
				return err
			}
			raster := frame.Raster()
			if rect == (image.Rectangle{}) {
				rect = raster.Bounds()
			}

			id, err := ctx.newReader(cfg).ReadID(raster, rect)
			if err != nil {
				return err
			}
			if id == plateid.DefaultID {
				log.Warn("no plate identifier found", "path", args[0], "region", rect.String())
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&region, "region", nil, "Label rectangle as x0,y0,x1,y1 (default from config, else whole frame)")
	cmd.Flags().StringVar(&language, "language", "", "Tesseract language")
	return cmd
}
