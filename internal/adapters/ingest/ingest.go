// Package ingest turns uploaded spreadsheets into ledger tables.
//
// The first row of a sheet is the header. Every later row becomes a RawRow
// keyed by header name; blank cells are omitted and fully blank rows are
// skipped. Cell values stay strings, the normalizer parses amounts and dates.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/eshaffer321/ledger-recon/internal/domain/ledger"
)

// ErrUnsupportedFormat is returned for file extensions other than csv and xlsx.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format is a spreadsheet encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const emptyHeader = "__EMPTY"

// DetectFormat picks the format from a file name's extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
}

// ReadFile loads the first sheet of the file at path.
func ReadFile(path string) (ledger.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return ledger.Table{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return Read(filepath.Base(path), f)
}

// Read loads a table from r. name is only used to detect the format.
func Read(name string, r io.Reader) (ledger.Table, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return ledger.Table{}, err
	}

	var records [][]string
	switch format {
	case FormatCSV:
		records, err = readCSV(r)
	case FormatXLSX:
		records, err = readXLSX(r)
	}
	if err != nil {
		return ledger.Table{}, fmt.Errorf("failed to read %s: %w", name, err)
	}

	return buildTable(records), nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil
	}
	// Raw values keep date cells as serial numbers and skip number formats.
	return f.GetRows(sheet, excelize.Options{RawCellValue: true})
}

// buildTable converts header plus records into a Table.
func buildTable(records [][]string) ledger.Table {
	if len(records) == 0 {
		return ledger.Table{Rows: []ledger.RawRow{}}
	}

	header := uniqueHeaders(records[0])
	rows := make([]ledger.RawRow, 0, len(records)-1)
	for _, record := range records[1:] {
		row := ledger.RawRow{}
		for i, cell := range record {
			if i >= len(header) || strings.TrimSpace(cell) == "" {
				continue
			}
			row[header[i]] = cell
		}
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}

	return ledger.Table{Columns: header, Rows: rows}
}

// uniqueHeaders trims header names, names blank ones and suffixes repeats
// with _1, _2 and so on.
func uniqueHeaders(raw []string) []string {
	taken := make(map[string]bool, len(raw))
	out := make([]string, len(raw))
	for i, h := range raw {
		base := strings.TrimSpace(h)
		if base == "" {
			base = emptyHeader
		}
		name := base
		for n := 1; taken[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		taken[name] = true
		out[i] = name
	}
	return out
}
