package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/wellscan/internal/annotate"
)

func newPlotCommand(ctx *commandContext) *cobra.Command {
	var flags samplingFlags
	var output string
	var opts annotate.PlotOptions

	cmd := &cobra.Command{
		Use:   "plot <image>",
		Short: "Chart the aligned well profiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.sample(cmd, &flags, args[0])
			if err != nil {
				return err
			}
			if err := annotate.PlotProfiles(s.result, s.labels, output, opts); err != nil {
				return err
			}
			s.log.Info("profile chart written", "path", output, "wells", len(s.result.Wells))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d profiles)\n", output, len(s.result.Wells))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output chart (png, svg, pdf, eps, jpg or tif)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "Chart title")
	cmd.Flags().BoolVar(&opts.Legend, "legend", false, "Show a legend with the well labels")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "Chart width in inches")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "Chart height in inches")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
