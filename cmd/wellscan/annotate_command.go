package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/wellscan/internal/annotate"
)

func newAnnotateCommand(ctx *commandContext) *cobra.Command {
	var flags samplingFlags
	var output string
	var edgeColor, textColor, background string
	var lineWidth, labelOffset int
	var colorbar bool

	cmd := &cobra.Command{
		Use:   "annotate <image>",
		Short: "Draw the scan regions and well labels over the plate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.sample(cmd, &flags, args[0])
			if err != nil {
				return err
			}

			style := ctx.config.Style()
			fs := cmd.Flags()
			if fs.Changed("edge-color") {
				style.EdgeColor = edgeColor
			}
			if fs.Changed("text-color") {
				style.TextColor = textColor
			}
			if fs.Changed("label-background") {
				style.LabelBackground = background
			}
			if fs.Changed("line-width") {
				style.LineWidth = lineWidth
			}
			if fs.Changed("label-offset") {
				style.LabelOffset = labelOffset
			}
			if fs.Changed("colorbar") {
				style.Colorbar = colorbar
			}

			opts := s.result.Options
			fig, err := annotate.Annotate(s.frame.Plate, s.result.Centers(), s.labels, opts.ScanWidth, opts.ScanLength, style)
			if err != nil {
				return err
			}
			if err := annotate.Save(fig, output); err != nil {
				return err
			}
			s.log.Info("annotated figure written", "path", output, "wells", len(s.result.Wells))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d wells)\n", output, len(s.result.Wells))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output image (png, jpg, gif, tif or bmp)")
	cmd.Flags().StringVar(&edgeColor, "edge-color", "", "Scan outline color as #RRGGBB")
	cmd.Flags().StringVar(&textColor, "text-color", "", "Label color as #RRGGBB")
	cmd.Flags().StringVar(&background, "label-background", "", "Label box color as #RRGGBB or #RRGGBBAA")
	cmd.Flags().IntVar(&lineWidth, "line-width", 0, "Outline width in pixels")
	cmd.Flags().IntVar(&labelOffset, "label-offset", 0, "Label distance above the well center")
	cmd.Flags().BoolVar(&colorbar, "colorbar", true, "Append an intensity colour bar")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
