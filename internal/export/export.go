// Package export writes record lists to CSV or XLSX files and reads them
// back for bulk import.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mahasiswa-app/mhs/internal/types"
)

// Format is a file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// SheetName is the worksheet used for XLSX files.
const SheetName = "Mahasiswa"

// Header is the column order of every export.
var Header = []string{"NIM", "Nama", "Jurusan", "IPK"}

var (
	// ErrEmptyFile is returned when an import file has no rows at all.
	ErrEmptyFile = errors.New("file is empty")

	// ErrBadHeader is returned when a required column is missing.
	ErrBadHeader = errors.New("missing column")
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported file type %q (want .csv or .xlsx)", ext)
	}
}

// Write encodes records in format to w.
func Write(w io.Writer, format Format, records []types.Record) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, records)
	case FormatXLSX:
		return writeXLSX(w, records)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// WriteFile writes records to path in the format given by its extension.
func WriteFile(path string, records []types.Record) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(f, format, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeCSV(w io.Writer, records []types.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write([]string{r.NIM, r.Nama, r.Jurusan, types.FormatIPK(r.IPK)}); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", r.NIM, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, records []types.Record) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Error closing workbook: %v", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.NIM, r.Nama, r.Jurusan, r.IPK}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", r.NIM, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ReadFile reads records from a CSV or XLSX file.
func ReadFile(path string) ([]types.Record, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f, format)
}

// Read decodes records in format from r. The header row is matched
// case-insensitively and may list the columns in any order; extra columns
// are ignored. A malformed row fails the whole read.
func Read(r io.Reader, format Format) ([]types.Record, error) {
	var rows [][]string
	var err error

	switch format {
	case FormatCSV:
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		rows, err = cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("invalid csv: %w", err)
		}
	case FormatXLSX:
		rows, err = readXLSXRows(r)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	return parseRows(rows)
}

func readXLSXRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Error closing excel file: %v", err)
		}
	}()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("excel file does not contain any sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}
	return rows, nil
}

func parseRows(rows [][]string) ([]types.Record, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	cols := make(map[string]int)
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	idx := make([]int, len(Header))
	for i, name := range Header {
		pos, ok := cols[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrBadHeader, name)
		}
		idx[i] = pos
	}

	cell := func(row []string, col int) string {
		if col < len(row) {
			return strings.TrimSpace(row[col])
		}
		return ""
	}

	records := make([]types.Record, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		if isBlank(row) {
			continue
		}

		ipkText := cell(row, idx[3])
		ipk, err := strconv.ParseFloat(ipkText, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid IPK %q", line, ipkText)
		}
		rec := types.Record{
			NIM:     cell(row, idx[0]),
			Nama:    cell(row, idx[1]),
			Jurusan: cell(row, idx[2]),
			IPK:     ipk,
		}
		if rec.NIM == "" {
			return nil, fmt.Errorf("row %d: NIM is empty", line)
		}
		records = append(records, rec)
	}
	return records, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
