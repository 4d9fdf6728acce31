package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"ziwei/internal/reading"
	"ziwei/pkg/database"
	"ziwei/pkg/models"
)

var readingsHeader = []string{"id", "created_at", "calendar", "date", "slot", "gender", "soul_stars", "five_elements_class"}

func newReadingsCmd(a *app) *cobra.Command {
	var (
		owner  string
		limit  int
		offset int
		csvOut string
	)
	cmd := &cobra.Command{
		Use:   "readings",
		Short: "List an owner's saved readings from the local database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(owner) == "" {
				return fmt.Errorf("--owner is required")
			}
			db, err := database.Open(database.Config{Path: a.cfg.DB.Path})
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.Migrate(db); err != nil {
				return err
			}

			items, total, err := reading.NewRepo(db).List(cmd.Context(), owner, limit, offset)
			if err != nil {
				return err
			}

			if csvOut != "" {
				if err := writeReadingsCSV(csvOut, items); err != nil {
					return err
				}
				pterm.Success.Printfln("wrote %d readings to %s", len(items), csvOut)
				return nil
			}
			return printReadings(cmd.OutOrStdout(), items, total)
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "account id or session id")
	cmd.Flags().IntVar(&limit, "limit", 20, "page size (max 100)")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	cmd.Flags().StringVar(&csvOut, "csv", "", "write the page to this CSV file instead of printing")
	return cmd
}

func readingRecord(r models.Reading) []string {
	in := r.Input
	return []string{
		r.ID,
		r.CreatedAt.UTC().Format(time.RFC3339),
		string(in.Calendar),
		fmt.Sprintf("%04d-%02d-%02d", in.Year, in.Month, in.Day),
		in.SlotLabel,
		string(in.Gender),
		strings.Join(r.SoulStars, "、"),
		r.FiveElementsClass,
	}
}

func writeReadingsCSV(path string, items []models.Reading) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(readingsHeader); err != nil {
		return err
	}
	for _, r := range items {
		if err := w.Write(readingRecord(r)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func printReadings(w io.Writer, items []models.Reading, total int) error {
	if len(items) == 0 {
		fmt.Fprintln(w, "no readings")
		return nil
	}
	data := pterm.TableData{readingsHeader}
	for _, r := range items {
		data = append(data, readingRecord(r))
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, s)
	fmt.Fprintf(w, "%d of %d\n", len(items), total)
	return nil
}
