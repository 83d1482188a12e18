package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"tokenrisk/pkg/contracts/domain"
)

// MergedTable is the rendered output table of one batch item
type MergedTable struct {
	Headers []string
	Rows    [][]string
}

// NewMergedTable renders records under the input columns followed by the market columns.
// DATE cells are rendered as YYYY-MM-DD and left empty when the date could not be
// parsed. Unenriched rows leave the market cells empty.
func NewMergedTable(columns []string, records []domain.MergedRecord) MergedTable {
	headers := make([]string, 0, len(columns)+len(domain.MarketColumns))
	headers = append(headers, columns...)
	headers = append(headers, domain.MarketColumns...)

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, renderRow(columns, rec))
	}
	return MergedTable{Headers: headers, Rows: rows}
}

func renderRow(columns []string, rec domain.MergedRecord) []string {
	row := make([]string, 0, len(columns)+len(domain.MarketColumns))
	for i, name := range columns {
		value := ""
		if i < len(rec.Local.Fields) {
			value = rec.Local.Fields[i].Value
		}
		if name == domain.ColumnDate {
			value = rec.Local.DateKey()
		}
		row = append(row, value)
	}

	if rec.Market == nil {
		return append(row, "", "", "", "", "")
	}
	return append(row,
		formatFloat(rec.Market.Close),
		formatFloat(rec.Market.Volatility),
		formatFloat(rec.Market.Volume),
		formatNullFloat(rec.Market.MarketCapADA),
		formatNullFloat(rec.OLRS),
	)
}

// WriteXLSX writes the table to the first sheet of a new workbook
func (w *CSVWriter) WriteXLSX(filePath string, table MergedTable) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := writeSheetRow(f, sheet, 1, table.Headers); err != nil {
		return err
	}
	for i, row := range table.Rows {
		if err := writeSheetRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	return w.writeAtomic(filePath, func(out io.Writer) error {
		if _, err := f.WriteTo(out); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
		return nil
	})
}

func writeSheetRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}
