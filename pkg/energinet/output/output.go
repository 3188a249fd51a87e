// Package output renders fetched results as JSON, CSV, or XLSX.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/edu230991/energinet-go/pkg/energinet/models"
)

// timeFormat is how index timestamps are rendered. RFC3339 keeps the zone
// offset visible, matching the contract that results carry the caller zone.
const timeFormat = time.RFC3339

// grid flattens a result into a header row plus data rows, shared by all
// renderers.
func grid(res models.Result) (header []string, rows [][]string) {
	switch r := res.(type) {
	case *models.Table:
		header = append(header, r.IndexNames...)
		header = append(header, r.ColumnNames()...)
		for _, row := range r.Rows {
			rows = append(rows, gridRow(row.Index, row.Cells))
		}
	case *models.Series:
		header = append(header, r.IndexNames...)
		header = append(header, r.Name)
		for _, row := range r.Rows {
			rows = append(rows, gridRow(row.Index, []models.Value{row.Value}))
		}
	}
	return header, rows
}

func gridRow(index []time.Time, cells []models.Value) []string {
	out := make([]string, 0, len(index)+len(cells))
	for _, ts := range index {
		out = append(out, ts.Format(timeFormat))
	}
	for _, v := range cells {
		out = append(out, models.FormatValue(v))
	}
	return out
}

// jsonRecord is one row in the JSON rendering: index names and column names
// mapped to their values.
type jsonRecord map[string]any

func jsonRecords(res models.Result) []jsonRecord {
	records := []jsonRecord{}
	switch r := res.(type) {
	case *models.Table:
		for _, row := range r.Rows {
			rec := jsonRecord{}
			for i, name := range r.IndexNames {
				rec[name] = row.Index[i].Format(timeFormat)
			}
			for i, col := range r.Columns {
				rec[col.Name()] = row.Cells[i]
			}
			records = append(records, rec)
		}
	case *models.Series:
		for _, row := range r.Rows {
			rec := jsonRecord{}
			for i, name := range r.IndexNames {
				rec[name] = row.Index[i].Format(timeFormat)
			}
			rec[r.Name] = row.Value
			records = append(records, rec)
		}
	}
	return records
}

// ToJSON serializes the result as a JSON array of row objects.
func ToJSON(res models.Result, pretty bool) ([]byte, error) {
	records := jsonRecords(res)
	if pretty {
		return json.MarshalIndent(records, "", "  ")
	}
	return json.Marshal(records)
}

// WriteCSV writes the result as CSV with a header row.
func WriteCSV(res models.Result, w io.Writer) error {
	cw := csv.NewWriter(w)
	header, rows := grid(res)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the result as a single-sheet Excel workbook.
func WriteXLSX(res models.Result, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header, rows := grid(res)

	for ci, name := range header {
		cell, err := excelize.CoordinatesToCellName(ci+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}
	for ri, row := range rows {
		for ci, v := range row {
			cell, err := excelize.CoordinatesToCellName(ci+1, ri+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
