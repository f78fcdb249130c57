package transfer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/width"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row is one data line keyed by header
type Row struct {
	Line int
	Data map[string]string
}

// Get returns the value under header, or "" when the column is absent
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// GetOrDefault returns the value under header, or def when it is blank
func (r *Row) GetOrDefault(header, def string) string {
	if v := r.Data[header]; v != "" {
		return v
	}
	return def
}

// IsEmpty reports whether every cell is blank
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// Table is a parsed upload
type Table struct {
	Headers []string
	Rows    []*Row
}

// Require checks that every name is among the headers
func (t *Table) Require(names ...string) error {
	have := make(map[string]bool, len(t.Headers))
	for _, h := range t.Headers {
		have[h] = true
	}
	var missing []string
	for _, n := range names {
		if !have[n] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}

// Read parses a CSV or XLSX upload. Blank lines are skipped; cells are
// trimmed and full-width characters (common in spreadsheets typed with a
// Chinese IME) are folded to their ASCII forms.
func Read(r io.Reader, format Format) (*Table, error) {
	var records [][]string
	var err error
	switch format {
	case FormatCSV:
		records, err = readCSV(r)
	case FormatXLSX:
		records, err = readXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	return buildTable(records)
}

func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	sample, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(sample) == 0 {
		return nil, ErrEmptyFile
	}
	if !validPrefix(sample) {
		return nil, ErrInvalidEncoding
	}

	cr := csv.NewReader(br)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}

// validPrefix is utf8.Valid tolerant of a rune cut off at the end of the sample
func validPrefix(b []byte) bool {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return true
		}
		b = b[:len(b)-1]
	}
	return utf8.Valid(b)
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[f.GetActiveSheetIndex()])
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

func buildTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = normalize(h)
	}
	if len(headers) == 0 || strings.Join(headers, "") == "" {
		return nil, ErrMissingHeader
	}

	t := &Table{Headers: headers}
	for i, rec := range records[1:] {
		row := &Row{Line: i + 2, Data: make(map[string]string, len(headers))}
		for j, h := range headers {
			if j < len(rec) {
				row.Data[h] = normalize(rec[j])
			} else {
				row.Data[h] = ""
			}
		}
		if row.IsEmpty() {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	if len(t.Rows) == 0 {
		return nil, ErrNoDataRows
	}
	return t, nil
}

func normalize(s string) string {
	return strings.TrimSpace(width.Fold.String(s))
}
