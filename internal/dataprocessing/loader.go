package dataprocessing

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v5"
	"github.com/xuri/excelize/v2"

	"tokenrisk/pkg/contracts/domain"
)

var (
	// ErrMissingDateColumn is returned when the header has no DATE column
	ErrMissingDateColumn = errors.New("missing DATE column")
	// ErrEmptyTable is returned when the input has no header row
	ErrEmptyTable = errors.New("table has no header row")
	// ErrUnsupportedFormat is returned for extensions other than .csv and .xlsx
	ErrUnsupportedFormat = errors.New("unsupported input format")
)

const utf8BOM = "\ufeff"

// dateLayouts are tried in order when parsing a DATE cell
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
}

// HealthTable is a loaded per-token health table
type HealthTable struct {
	Columns []string                   // Canonical column names in input order
	Records []domain.LocalHealthRecord // One record per non-blank data row
}

// InvalidDates counts records whose DATE could not be parsed
func (t *HealthTable) InvalidDates() int {
	n := 0
	for _, r := range t.Records {
		if !r.DateValid {
			n++
		}
	}
	return n
}

// LoadHealthTable reads a .csv or .xlsx health table
func LoadHealthTable(path string) (*HealthTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()
		table, err := ReadHealthCSV(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return table, nil
	case ".xlsx":
		table, err := ReadHealthXLSX(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return table, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ReadHealthCSV parses a health table from CSV. A leading UTF-8 BOM is ignored.
func ReadHealthCSV(r io.Reader) (*HealthTable, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && string(b) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return parseRows(rows)
}

// ReadHealthXLSX parses a health table from the first sheet of an Excel workbook
func ReadHealthXLSX(path string) (*HealthTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyTable
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return parseRows(rows)
}

func parseRows(rows [][]string) (*HealthTable, error) {
	if len(rows) == 0 || isBlank(rows[0]) {
		return nil, ErrEmptyTable
	}

	columns := NormalizeHeader(rows[0])
	dateIdx, healthIdx := -1, -1
	for i, name := range columns {
		switch name {
		case domain.ColumnDate:
			if dateIdx < 0 {
				dateIdx = i
			}
		case domain.ColumnAvgHealth:
			if healthIdx < 0 {
				healthIdx = i
			}
		}
	}
	if dateIdx < 0 {
		return nil, ErrMissingDateColumn
	}

	table := &HealthTable{Columns: columns}
	for n, row := range rows[1:] {
		if isEmptyLine(row) {
			continue
		}
		fields := make([]domain.Field, len(columns))
		for i, name := range columns {
			value := ""
			if i < len(row) {
				value = strings.TrimSpace(row[i])
			}
			fields[i] = domain.Field{Name: name, Value: value}
		}

		rec := domain.LocalHealthRecord{Row: n + 1, Fields: fields}
		rec.Date, rec.DateValid = ParseDate(fields[dateIdx].Value)
		if healthIdx >= 0 {
			rec.AvgHealth = ParseHealth(fields[healthIdx].Value)
		}
		table.Records = append(table.Records, rec)
	}
	return table, nil
}

// NormalizeHeader trims and upper-cases column names. Blank names become "UNNAMED: <index>".
func NormalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.ToUpper(strings.TrimSpace(name))
		if name == "" {
			name = fmt.Sprintf("UNNAMED: %d", i)
		}
		columns[i] = name
	}
	return columns
}

// ParseDate parses a DATE cell to UTC midnight of its calendar day
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// ParseHealth parses an AVG_HEALTH cell; empty, unparseable or non-finite values are null
func ParseHealth(s string) null.Float {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return null.Float{}
	}
	return null.FloatFrom(f)
}

// isEmptyLine reports a line with no delimiters and no content. Delimiter-only
// lines such as ",," are data rows with every cell empty.
func isEmptyLine(row []string) bool {
	return len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "")
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(strings.TrimPrefix(cell, utf8BOM)) != "" {
			return false
		}
	}
	return true
}
