package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/wellscan/internal/plate"
)

// profileOutput is the --json form of the profile command.
type profileOutput struct {
	Path        string              `json:"path"`
	Grid        plate.Grid          `json:"grid"`
	ScanWidth   int                 `json:"scan_width"`
	ScanLength  int                 `json:"scan_length"`
	Normalized  bool                `json:"normalized"`
	Window      plate.SearchWindow  `json:"window"`
	Overlapping bool                `json:"overlapping"`
	Wells       []profileOutputWell `json:"wells"`
}

type profileOutputWell struct {
	plate.WellProfile
	Label string `json:"label"`
}

func newProfileCommand(ctx *commandContext) *cobra.Command {
	var flags samplingFlags
	var jsonOutput bool
	var showProfiles bool

	cmd := &cobra.Command{
		Use:   "profile <image>",
		Short: "Extract the aligned intensity profile of every well",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.sample(cmd, &flags, args[0])
			if err != nil {
				return err
			}
			res := s.result

			if jsonOutput {
				window, _ := res.Options.Window.Resolve(res.Options.ScanLength)
				out := profileOutput{
					Path:        args[0],
					Grid:        res.Grid,
					ScanWidth:   res.Options.ScanWidth,
					ScanLength:  res.Options.ScanLength,
					Normalized:  res.Options.Normalize,
					Window:      window,
					Overlapping: res.Overlapping(),
					Wells:       make([]profileOutputWell, len(res.Wells)),
				}
				for i, w := range res.Wells {
					out.Wells[i] = profileOutputWell{WellProfile: w, Label: s.labels[i]}
				}
				return writeJSON(cmd, out)
			}

			if showProfiles {
				for i, w := range res.Wells {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s", w.ID, s.labels[i])
					for _, v := range w.Profile {
						fmt.Fprintf(cmd.OutOrStdout(), "\t%s", formatValue(v))
					}
					fmt.Fprintln(cmd.OutOrStdout())
				}
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Well", "Label", "Center", "Min Idx", "Shift", "Mean", "Min", "Max", "Clipped"},
				summaryRows(res, s.labels),
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
				isTerminal(cmd.OutOrStdout()),
			))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Write the full result as JSON")
	cmd.Flags().BoolVar(&showProfiles, "profiles", false, "Write one tab separated profile per line")
	cmd.MarkFlagsMutuallyExclusive("json", "profiles")
	return cmd
}

func summaryRows(res *plate.Result, labels []string) [][]string {
	rows := make([][]string, 0, len(res.Wells))
	for i, w := range res.Wells {
		rows = append(rows, []string{
			w.ID,
			labels[i],
			fmt.Sprintf("(%d,%d)", w.Center.Col, w.Center.Row),
			strconv.Itoa(w.MinIndex),
			strconv.Itoa(w.Shift),
			formatValue(stat.Mean(w.Profile, nil)),
			formatValue(floats.Min(w.Profile)),
			formatValue(floats.Max(w.Profile)),
			yesNo(w.Clipped),
		})
	}
	return rows
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
