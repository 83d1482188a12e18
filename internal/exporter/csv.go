package exporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tokenrisk/internal/config"
)

// ErrUnsupportedFormat is returned for output extensions other than .csv and .xlsx
var ErrUnsupportedFormat = errors.New("unsupported output format")

// CSVWriter provides table export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With("component", "exporter")}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes the table to filePath, replacing any existing file
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	return w.writeAtomic(filePath, func(out io.Writer) error {
		if options.BOMPrefix {
			if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
				return fmt.Errorf("failed to write BOM: %w", err)
			}
		}

		writer := csv.NewWriter(out)
		if len(options.Headers) > 0 {
			if err := writer.Write(options.Headers); err != nil {
				return fmt.Errorf("failed to write headers: %w", err)
			}
		}
		for i, record := range options.Records {
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write record %d: %w", i, err)
			}
		}
		writer.Flush()
		return writer.Error()
	})
}

// WriteMerged writes a merged table as CSV or XLSX depending on the extension of filePath
func (w *CSVWriter) WriteMerged(filePath string, table MergedTable) error {
	var err error
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".csv":
		err = w.WriteCSV(filePath, WriteOptions{Headers: table.Headers, Records: table.Rows})
	case ".xlsx":
		err = w.WriteXLSX(filePath, table)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filePath)
	}
	if err != nil {
		return err
	}

	w.logger.Info("File saved",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(table.Rows)))
	return nil
}

// writeAtomic writes through fill into a temporary file next to filePath and
// renames it into place on success
func (w *CSVWriter) writeAtomic(filePath string, fill func(io.Writer) error) error {
	if err := config.EnsureParentDir(filePath); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(filePath), "."+filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := fill(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filePath, err)
	}
	return nil
}
