package transfer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyFile is returned when the upload has no content
	ErrEmptyFile = errors.New("文件为空")

	// ErrInvalidEncoding is returned when a CSV upload is not UTF-8
	ErrInvalidEncoding = errors.New("文件不是UTF-8编码")

	// ErrMissingHeader is returned when the first row is absent
	ErrMissingHeader = errors.New("文件缺少表头")

	// ErrNoDataRows is returned when only the header is present
	ErrNoDataRows = errors.New("文件没有数据行")

	// ErrUnsupportedFormat is returned for anything but csv and xlsx
	ErrUnsupportedFormat = errors.New("不支持的文件格式，请使用 .csv 或 .xlsx")
)

// RowError describes a problem with one line of an import
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("第%d行 %s: %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("第%d行: %s", e.Row, e.Message)
}

// MissingColumnsError lists required headers absent from an upload
type MissingColumnsError struct {
	Columns []string
}

// Error implements the error interface
func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("缺少必填列: %s", strings.Join(e.Columns, "、"))
}
