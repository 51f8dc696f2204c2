package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"goalboard/internal/store"
)

// ExportTables are the three sheets of the export, in workbook order.
func ExportTables(snap store.Snapshot, opts Options) []Table {
	return []Table{
		ShapingGoalsTable(ShapingGoals(snap)),
		InitiativeExportTable(InitiativeReport(snap, opts)),
		ProjectTable(ProjectReport(snap)),
	}
}

// WriteXLSX encodes the export workbook to w.
func WriteXLSX(w io.Writer, snap store.Snapshot, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range ExportTables(snap, opts) {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), t.Name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return fmt.Errorf("new sheet %s: %w", t.Name, err)
		}
		if err := writeSheet(f, t); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, t Table) error {
	rows := append([][]string{t.Headers}, t.Rows...)
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(r))
		for j, v := range r {
			values[j] = v
		}
		if err := f.SetSheetRow(t.Name, cell, &values); err != nil {
			return fmt.Errorf("%s row %d: %w", t.Name, i+1, err)
		}
	}
	return nil
}

// ReadXLSX decodes a workbook written by WriteXLSX back into tables.
func ReadXLSX(r io.Reader) ([]Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []Table
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		t := Table{Name: name}
		if len(rows) > 0 {
			t.Headers = rows[0]
			t.Rows = rows[1:]
		}
		out = append(out, t)
	}
	return out, nil
}
