package ingestion

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format (expected .csv, .xlsx or .xlsm)")
	ErrMissingSKUColumn  = errors.New("header has no sku column")
	ErrEmptyFile         = errors.New("file is empty")
)

// UploadFile is a product file checked and ready to be sent to /imports/.
type UploadFile struct {
	Name      string   // file name sent to the server, always .csv
	Header    []string // normalized column names
	Rows      int      // data rows with at least one non-empty value
	Converted bool     // true when produced from a spreadsheet
	data      []byte
}

// Reader returns a fresh reader over the CSV content.
func (f *UploadFile) Reader() io.Reader {
	return bytes.NewReader(f.data)
}

// Size is the CSV content length in bytes.
func (f *UploadFile) Size() int {
	return len(f.data)
}

// Prepare reads a .csv or .xlsx/.xlsm file from disk.
func Prepare(path string) (*UploadFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return PrepareReader(filepath.Base(path), f)
}

// PrepareReader checks the content of an uploaded file. Spreadsheets are
// converted to CSV from their first sheet.
func PrepareReader(name string, r io.Reader) (*UploadFile, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".csv":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return inspect(name, data, false)
	case ".xlsx", ".xlsm":
		data, err := spreadsheetToCSV(r)
		if err != nil {
			return nil, fmt.Errorf("failed to convert %s: %w", name, err)
		}
		csvName := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)) + ".csv"
		return inspect(csvName, data, true)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func inspect(name string, data []byte, converted bool) (*UploadFile, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	hasSKU := false
	for i, col := range header {
		header[i] = strings.ToLower(strings.TrimSpace(col))
		if header[i] == "sku" {
			hasSKU = true
		}
	}
	if !hasSKU {
		return nil, ErrMissingSKUColumn
	}

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", rows+2, err)
		}
		if !blank(record) {
			rows++
		}
	}

	return &UploadFile{
		Name:      name,
		Header:    header,
		Rows:      rows,
		Converted: converted,
		data:      data,
	}, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// spreadsheetToCSV writes the first sheet of a workbook as CSV.
func spreadsheetToCSV(r io.Reader) ([]byte, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
