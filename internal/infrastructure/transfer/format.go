package transfer

import (
	"path/filepath"
	"strings"
)

// Format is a tabular file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv", "xlsx" or "excel"; empty means csv
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", ErrUnsupportedFormat
}

// FormatOf derives the format from a file name's extension
func FormatOf(filename string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Ext returns the file extension including the dot
func (f Format) Ext() string {
	return "." + string(f)
}
