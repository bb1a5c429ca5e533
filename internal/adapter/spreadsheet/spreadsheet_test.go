package spreadsheet

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/weather-ranking/internal/domain"
)

var testTable = domain.ReportTable{
	Header: []string{"City/day", "", "26-05", "27-05", "Average", "Rank"},
	Rows: [][]string{
		{"Moscow", "temperature", "17.5", "", "17.5", "1"},
		{"", "comfortable hours", "4.0", "", "4.0", ""},
		{"Kazan", "temperature", "", "12.0", "12.0", "2"},
		{"", "comfortable hours", "", "0.0", "0.0", ""},
	},
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFileSink_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forecasts.csv")
	sink := NewFileSink(path, discardLogger())

	require.NoError(t, sink.WriteReport(context.Background(), domain.RunInfo{ID: "r1"}, testTable))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, append([][]string{testTable.Header}, testTable.Rows...), records)
}

func TestFileSink_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forecasts.xlsx")
	sink := NewFileSink(path, discardLogger())

	require.NoError(t, sink.WriteReport(context.Background(), domain.RunInfo{ID: "r1"}, testTable))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "City/day", header)

	rank, err := f.GetCellValue(sheetName, "F2")
	require.NoError(t, err)
	assert.Equal(t, "1", rank)

	blank, err := f.GetCellValue(sheetName, "D2")
	require.NoError(t, err)
	assert.Empty(t, blank, "absent date stays blank")

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 5)
	assert.Equal(t, "Kazan", rows[3][0])
}

func TestFileSink_OverwritesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forecasts.csv")
	sink := NewFileSink(path, discardLogger())
	require.NoError(t, sink.WriteReport(context.Background(), domain.RunInfo{}, testTable))

	small := domain.ReportTable{Header: []string{"City/day", "", "Average", "Rank"}}
	require.NoError(t, sink.WriteReport(context.Background(), domain.RunInfo{}, small))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "City/day,,Average,Rank\n", string(data))
}

func TestFileSink_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "forecasts.xlsx")
	sink := NewFileSink(path, discardLogger())

	assert.Error(t, sink.WriteReport(context.Background(), domain.RunInfo{}, testTable))
}
