package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ziwei/internal/grpcserver"
	"ziwei/internal/palace"
	"ziwei/internal/render"
	"ziwei/internal/session"
)

func newChartCmd(a *app) *cobra.Command {
	var b birthFlags
	var months bool
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Compute a chart and print the palace grid",
		Example: `  ziwei chart --date 1995-01-01 --time 12:00 --gender male
  ziwei chart --date 1994-08-15 --calendar lunar --branch 子 --zi late`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := b.input()
			if err != nil {
				return err
			}
			resp, err := a.svc.Compute(cmd.Context(), &grpcserver.ComputeRequest{Input: in})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(resp.Candidates) > 0 {
				return printCandidates(out, resp.Candidates)
			}
			if resp.Chart == nil {
				return session.ErrNoChart
			}

			base := a.kb.Current()
			res, err := render.BuildResult(resp.Chart, resp.Annotations, base, -1)
			if err != nil {
				return err
			}
			if err := printResult(out, resp.Input, res); err != nil {
				return err
			}
			if months {
				return printMonths(out, res.Months)
			}
			return nil
		},
	}
	b.bind(cmd)
	cmd.Flags().BoolVar(&months, "months", false, "also print the monthly strategy list")
	return cmd
}

func newPalaceCmd(a *app) *cobra.Command {
	var b birthFlags
	cmd := &cobra.Command{
		Use:   "palace <index>",
		Short: "Print the detail panel of one palace (0-11)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[0])
			if err != nil || !palace.ValidIndex(idx) {
				return fmt.Errorf("palace index must be 0-%d", palace.Count-1)
			}
			in, err := b.input()
			if err != nil {
				return err
			}
			p, err := a.svc.Palace(cmd.Context(), &grpcserver.PalaceRequest{Input: in, Index: idx})
			if err != nil {
				return err
			}
			return printPanel(cmd.OutOrStdout(), p)
		},
	}
	b.bind(cmd)
	return cmd
}
