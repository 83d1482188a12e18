package dataprocessing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/guregu/null/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tokenrisk/pkg/contracts/domain"
)

func TestReadHealthCSV(t *testing.T) {
	input := "\ufeffdate, avg_health ,Note\n" +
		"2024-01-01,3,first\n" +
		"2024-01-02,,second\n" +
		"\n" +
		"not-a-date,2.5,third\n" +
		"2024/01/04,abc\n"

	table, err := ReadHealthCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"DATE", "AVG_HEALTH", "NOTE"}, table.Columns)
	require.Len(t, table.Records, 4, "blank lines are skipped")

	first := table.Records[0]
	assert.Equal(t, 1, first.Row)
	assert.True(t, first.DateValid)
	assert.Equal(t, "2024-01-01", first.DateKey())
	assert.Equal(t, null.FloatFrom(3), first.AvgHealth)
	note, ok := first.Get("NOTE")
	require.True(t, ok)
	assert.Equal(t, "first", note)

	assert.False(t, table.Records[1].AvgHealth.Valid, "empty health is null")
	assert.Equal(t, 1.0, table.Records[1].HealthOrDefault())

	assert.False(t, table.Records[2].DateValid, "unparseable date keeps the row")
	assert.Equal(t, "not-a-date", table.Records[2].Fields[0].Value)
	assert.Equal(t, 1, table.InvalidDates())

	last := table.Records[3]
	assert.Equal(t, "2024-01-04", last.DateKey())
	assert.False(t, last.AvgHealth.Valid)
	assert.Len(t, last.Fields, 3, "short rows are padded")
	assert.Equal(t, "", last.Fields[2].Value)
}

func TestReadHealthCSVKeepsDelimiterOnlyRows(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "comma row between dates", input: "DATE,AVG_HEALTH\n2024-01-01,3\n,\n2024-01-02,2\n", want: 3},
		{name: "trailing comma rows", input: "DATE,AVG_HEALTH,NOTE\n2024-01-01,3,a\n,,\n , ,\n", want: 3},
		{name: "empty and whitespace lines are skipped", input: "DATE,AVG_HEALTH\n2024-01-01,3\n\n   \n", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ReadHealthCSV(strings.NewReader(tt.input))
			require.NoError(t, err)
			require.Len(t, table.Records, tt.want)

			for _, rec := range table.Records[1:] {
				assert.False(t, rec.DateValid)
				assert.False(t, rec.AvgHealth.Valid)
				assert.Len(t, rec.Fields, len(table.Columns))
			}
		})
	}
}

func TestReadHealthCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty", input: "", wantErr: ErrEmptyTable},
		{name: "blank header", input: " , \n2024-01-01,1\n", wantErr: ErrEmptyTable},
		{name: "no date column", input: "DAY,AVG_HEALTH\n2024-01-01,1\n", wantErr: ErrMissingDateColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadHealthCSV(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("malformed quoting", func(t *testing.T) {
		_, err := ReadHealthCSV(strings.NewReader("DATE\n\"2024-01-01\n"))
		assert.Error(t, err)
	})
}

func TestReadHealthCSVWithoutHealthColumn(t *testing.T) {
	table, err := ReadHealthCSV(strings.NewReader("DATE,PRICE\n2024-01-01,5\n"))
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	assert.False(t, table.Records[0].AvgHealth.Valid)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		input string
		ok    bool
	}{
		{input: "2024-03-07", ok: true},
		{input: "2024-03-07T10:11:12Z", ok: true},
		{input: "2024-03-07T10:11:12+03:00", ok: true},
		{input: "2024-03-07 23:59:59", ok: true},
		{input: "2024-03-07T08:00:00", ok: true},
		{input: "2024/03/07", ok: true},
		{input: "03/07/2024", ok: true},
		{input: "3/7/2024", ok: true},
		{input: " 2024-03-07 ", ok: true},
		{input: ""},
		{input: "07.03.2024"},
		{input: "2024-13-01"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestParseHealth(t *testing.T) {
	assert.Equal(t, null.FloatFrom(2.5), ParseHealth(" 2.5 "))
	assert.Equal(t, null.FloatFrom(0), ParseHealth("0"))
	assert.False(t, ParseHealth("").Valid)
	assert.False(t, ParseHealth("n/a").Valid)
	assert.False(t, ParseHealth("NaN").Valid)
	assert.False(t, ParseHealth("Inf").Valid)
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t,
		[]string{"DATE", "AVG_HEALTH", "UNNAMED: 2"},
		NormalizeHeader([]string{"\ufeff Date", "Avg_Health", "  "}))
}

func TestLoadHealthTable(t *testing.T) {
	dir := t.TempDir()

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(dir, "SNEK.csv")
		require.NoError(t, os.WriteFile(path, []byte("DATE,AVG_HEALTH\n2024-01-01,3\n"), 0644))

		table, err := LoadHealthTable(path)
		require.NoError(t, err)
		require.Len(t, table.Records, 1)
		assert.Equal(t, null.FloatFrom(3), table.Records[0].AvgHealth)
	})

	t.Run("xlsx", func(t *testing.T) {
		path := filepath.Join(dir, "HUNT.xlsx")
		f := excelize.NewFile()
		sheet := f.GetSheetName(0)
		require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Date", "AVG_HEALTH", "Extra"}))
		require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"2024-01-01", 2.5, "x"}))
		require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"2024-01-02", "", "y"}))
		require.NoError(t, f.SaveAs(path))
		require.NoError(t, f.Close())

		table, err := LoadHealthTable(path)
		require.NoError(t, err)
		assert.Equal(t, []string{domain.ColumnDate, domain.ColumnAvgHealth, "EXTRA"}, table.Columns)
		require.Len(t, table.Records, 2)
		assert.Equal(t, "2024-01-01", table.Records[0].DateKey())
		assert.Equal(t, null.FloatFrom(2.5), table.Records[0].AvgHealth)
		assert.False(t, table.Records[1].AvgHealth.Valid)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadHealthTable(filepath.Join(dir, "absent.csv"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := LoadHealthTable(filepath.Join(dir, "table.json"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing date column is wrapped with the path", func(t *testing.T) {
		path := filepath.Join(dir, "nodate.csv")
		require.NoError(t, os.WriteFile(path, []byte("X\n1\n"), 0644))
		_, err := LoadHealthTable(path)
		assert.ErrorIs(t, err, ErrMissingDateColumn)
		assert.Contains(t, err.Error(), "nodate.csv")
	})
}
