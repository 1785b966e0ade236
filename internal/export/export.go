// Package export writes the current dashboard selection as an XLSX workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/launchdash/launchdash/internal/dataset"
	"github.com/launchdash/launchdash/internal/query"
)

// Sheet names in the exported workbook.
const (
	LaunchesSheet = "Launches"
	SummarySheet  = "Summary"
)

// Report is one dashboard selection: the scatter points and the pie counts
// for the same site selector.
type Report struct {
	Selector string
	Range    query.Range
	Points   []query.Point
	Counts   query.Aggregation
}

var launchHeader = []interface{}{
	dataset.ColSite, dataset.ColPayload, dataset.ColClass, dataset.ColBoosterCategory,
}

// WriteXLSX encodes rep as a two-sheet workbook and writes it to w.
func WriteXLSX(w io.Writer, rep Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", LaunchesSheet); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}
	if err := writeLaunches(f, rep.Points); err != nil {
		return err
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("export: add sheet: %w", err)
	}
	if err := writeSummary(f, rep); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func writeLaunches(f *excelize.File, points []query.Point) error {
	if err := f.SetSheetRow(LaunchesSheet, "A1", &launchHeader); err != nil {
		return fmt.Errorf("export: header: %w", err)
	}
	for i, p := range points {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: row %d: %w", i+2, err)
		}
		row := []interface{}{p.Site, p.PayloadKg, p.Class, p.BoosterCategory}
		if err := f.SetSheetRow(LaunchesSheet, cell, &row); err != nil {
			return fmt.Errorf("export: row %d: %w", i+2, err)
		}
	}
	return f.SetColWidth(LaunchesSheet, "A", "D", 24)
}

func writeSummary(f *excelize.File, rep Report) error {
	rows := [][]interface{}{
		{"Selector", rep.Selector},
		{"Payload low (kg)", rep.Range.Low},
		{"Payload high (kg)", rep.Range.High},
		{"Launches in range", len(rep.Points)},
		{},
		{"Label", "Count"},
	}
	for _, s := range rep.Counts.Slices {
		rows = append(rows, []interface{}{s.Label, s.Count})
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("export: summary row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(SummarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("export: summary row %d: %w", i+1, err)
		}
	}
	return f.SetColWidth(SummarySheet, "A", "B", 20)
}
