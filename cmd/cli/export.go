package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"ziwei/internal/export"
	"ziwei/internal/grpcserver"
)

func newExportCmd(a *app) *cobra.Command {
	var b birthFlags
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the chart and 2026 overlay as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := b.input()
			if err != nil {
				return err
			}
			resp, err := a.svc.Export(cmd.Context(), &grpcserver.ComputeRequest{Input: in})
			if err != nil {
				return err
			}
			if outPath == "-" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), resp.CSV)
				return err
			}
			if outPath == "" {
				outPath = resp.Filename
			}
			if err := os.WriteFile(outPath, []byte(resp.CSV), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			pterm.Success.Printfln("wrote %s", outPath)
			return nil
		},
	}
	b.bind(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path, - for stdout (default "+export.Filename+")")
	return cmd
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.csv>",
		Short: "Print an exported CSV as tables",
		Args:  cobra.ExactArgs(1),
		// inspect reads a file only; skip config and engine setup.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			doc, err := export.Parse(f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			return printDocument(cmd.OutOrStdout(), doc)
		},
	}
}
