// Package spreadsheet writes the report to a local .xlsx or .csv file.
package spreadsheet

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/weather-ranking/internal/domain"
)

const sheetName = "Sheet1"

// FileSink overwrites one report file per run. The format follows the file
// extension: .csv writes CSV, anything else writes an Excel workbook.
// It implements domain.ReportSink.
type FileSink struct {
	path   string
	logger *slog.Logger
}

// NewFileSink creates a sink writing to path.
func NewFileSink(path string, logger *slog.Logger) *FileSink {
	return &FileSink{path: path, logger: logger}
}

// WriteReport writes the table to the sink's file.
func (s *FileSink) WriteReport(_ context.Context, run domain.RunInfo, table domain.ReportTable) error {
	var err error
	if strings.EqualFold(filepath.Ext(s.path), ".csv") {
		err = WriteCSV(s.path, table)
	} else {
		err = WriteXLSX(s.path, table)
	}
	if err != nil {
		return err
	}
	s.logger.Info("report written", "run_id", run.ID, "path", s.path, "rows", len(table.Rows))
	return nil
}

// WriteCSV writes the header and rows to path as CSV.
func WriteCSV(path string, table domain.ReportTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(table.Header); err != nil {
		f.Close()
		return fmt.Errorf("write report header: %w", err)
	}
	if err := w.WriteAll(table.Rows); err != nil {
		f.Close()
		return fmt.Errorf("write report rows: %w", err)
	}
	return f.Close()
}

// WriteXLSX writes the header and rows to the first sheet of a new workbook.
func WriteXLSX(path string, table domain.ReportTable) error {
	f := excelize.NewFile()
	defer f.Close()

	rows := append([][]string{table.Header}, table.Rows...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("report row %d: %w", i, err)
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("report row %d: %w", i, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report workbook: %w", err)
	}
	return nil
}
