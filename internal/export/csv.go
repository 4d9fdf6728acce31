package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// lineEndings folds CRLF and lone CR to LF. encoding/csv keeps a CR inside a
// quoted field but every reader drops it again, so LF is the only newline
// that survives a round trip.
var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Write emits doc as CSV: BOM, summary, blank row, palaces, blank row,
// months. Quoting follows encoding/csv; field newlines are written as LF.
func Write(w io.Writer, doc Document) error {
	if _, err := io.WriteString(w, BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)

	records := [][]string{summaryHeader}
	for _, p := range doc.Summary {
		records = append(records, []string{p.Key, p.Value})
	}
	records = append(records, nil, palaceHeader)
	for _, r := range doc.Palaces {
		records = append(records, r.record())
	}
	records = append(records, nil, monthHeader)
	for _, r := range doc.Months {
		records = append(records, r.record())
	}

	for _, rec := range records {
		fields := make([]string, len(rec))
		for i, f := range rec {
			fields[i] = lineEndings.Replace(f)
		}
		if err := cw.Write(fields); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Parse reads a document written by Write. Sections are found by their
// header rows; a leading BOM is optional.
func Parse(r io.Reader) (Document, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(BOM)); err == nil && string(head) == BOM {
		if _, err := br.Discard(len(BOM)); err != nil {
			return Document{}, err
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return Document{}, fmt.Errorf("read summary header: %w", err)
	}
	if !slices.Equal(header, summaryHeader) {
		return Document{}, fmt.Errorf("unexpected summary header %q", header)
	}

	var (
		doc     Document
		section = 1
		cols    map[string]int
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Document{}, err
		}

		switch {
		case slices.Equal(row, palaceHeader):
			section, cols = 2, readHeader(row)
			continue
		case slices.Equal(row, monthHeader):
			section, cols = 3, readHeader(row)
			continue
		}

		switch section {
		case 1:
			if len(row) < 2 {
				return Document{}, fmt.Errorf("short summary row %q", row)
			}
			doc.Summary = append(doc.Summary, Pair{Key: row[0], Value: row[1]})
		case 2:
			doc.Palaces = append(doc.Palaces, PalaceRow{
				Palace:      valueAt(cols, row, "宮位"),
				Scene:       valueAt(cols, row, "場景"),
				Description: valueAt(cols, row, "說明"),
				Stars:       valueAt(cols, row, "有效主星"),
				Borrowed:    valueAt(cols, row, "借星"),
				Source:      valueAt(cols, row, "來源宮位"),
				Hua:         valueAt(cols, row, "今年四化"),
				Actions:     valueAt(cols, row, "行動建議"),
			})
		case 3:
			doc.Months = append(doc.Months, MonthRow{
				Month:       valueAt(cols, row, "月份"),
				Theme:       valueAt(cols, row, "主題"),
				Description: valueAt(cols, row, "說明"),
				Action:      valueAt(cols, row, "行動"),
				Color:       valueAt(cols, row, "色系"),
			})
		}
	}
	return doc, nil
}

func readHeader(row []string) map[string]int {
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[name] = idx
	}
	return header
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}
