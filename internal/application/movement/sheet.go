package movement

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	appinv "github.com/hazchem/backend/internal/application/inventory"
	"github.com/hazchem/backend/internal/domain/movement"
	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/hazchem/backend/internal/infrastructure/logger"
	"github.com/hazchem/backend/internal/infrastructure/transfer"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Column headers shared by every record sheet
const (
	colChemical = "化学品名称"
	colAmount   = "数量"
	colUnit     = "单位"
	colBatchNo  = "批次号"
	colNotes    = "备注"
)

// MaxImportRows bounds a single import
const MaxImportRows = 5000

// sheet describes the spreadsheet layout of one record type. Exported
// files use the same columns as the import template so they can be
// imported again.
type sheet struct {
	name       string
	timeColumn string
	headers    []string
	example    []string
}

// cells are the columns every record sheet carries, already parsed
type cells struct {
	ChemicalID   uuid.UUID
	ChemicalName string
	Amount       decimal.Decimal
	Unit         string
	BatchNo      string
	Time         time.Time
	Notes        string
}

func (s sheet) template(w io.Writer, format transfer.Format) error {
	return transfer.Write(w, format, s.name, s.headers, [][]string{s.example})
}

func exportRecords[T any, PT record[T]](ctx context.Context, f *flow[T, PT], s sheet, w io.Writer, format transfer.Format, filter movement.Filter, row func(PT) []string) error {
	records, err := f.listAll(ctx, filter)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(records))
	for i := range records {
		rows = append(rows, row(PT(&records[i])))
	}
	if err := transfer.Write(w, format, s.name, s.headers, rows); err != nil {
		return fmt.Errorf("write %s export: %w", f.resource, err)
	}
	logger.FromContext(ctx).Info(f.resource+" exported", zap.Int("count", len(rows)), zap.String("format", string(format)))
	return nil
}

// importRecords parses an upload and stores all rows in one batch. Rows
// that fail to parse are reported and nothing is stored.
func importRecords[T any, PT record[T]](
	ctx context.Context,
	f *flow[T, PT],
	s sheet,
	r io.Reader,
	format transfer.Format,
	draft func(row *transfer.Row, c cells) Draft[T, PT],
) (*ImportResult, error) {
	table, err := transfer.Read(r, format)
	if err != nil {
		return nil, shared.NewValidationError("%s", err.Error())
	}
	if err := table.Require(colChemical, colAmount); err != nil {
		return nil, shared.NewValidationError("%s", err.Error())
	}
	if len(table.Rows) > MaxImportRows {
		return nil, shared.NewValidationError("单次最多导入%d行", MaxImportRows)
	}

	result := &ImportResult{Total: len(table.Rows)}
	names := make(map[string]uuid.UUID)
	drafts := make([]Draft[T, PT], 0, len(table.Rows))
	for _, row := range table.Rows {
		c, rowErr := parseCells(ctx, f.repos, s, row, names)
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			continue
		}
		drafts = append(drafts, draft(row, c))
	}
	if len(result.Errors) > 0 {
		return result, nil
	}

	created, err := f.createBatch(ctx, drafts)
	if err != nil {
		return nil, err
	}
	result.Imported = len(created)
	return result, nil
}

func parseCells(ctx context.Context, repos appinv.Repositories, s sheet, row *transfer.Row, names map[string]uuid.UUID) (cells, *transfer.RowError) {
	name := row.Get(colChemical)
	if name == "" {
		return cells{}, &transfer.RowError{Row: row.Line, Column: colChemical, Message: "化学品名称不能为空"}
	}
	id, ok := names[name]
	if !ok {
		c, err := repos.Chemicals().FindByName(ctx, name)
		if err != nil {
			msg := "化学品不存在"
			if !errors.Is(err, shared.ErrNotFound) {
				msg = "化学品查询失败"
			}
			return cells{}, &transfer.RowError{Row: row.Line, Column: colChemical, Message: msg, Value: name}
		}
		id = c.ID
		names[name] = id
	}

	raw := row.Get(colAmount)
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return cells{}, &transfer.RowError{Row: row.Line, Column: colAmount, Message: "数量不是有效数字", Value: raw}
	}
	if !amount.IsPositive() {
		return cells{}, &transfer.RowError{Row: row.Line, Column: colAmount, Message: "数量必须大于0", Value: raw}
	}

	var at time.Time
	if v := row.Get(s.timeColumn); v != "" {
		if at, err = shared.ParseTime(v); err != nil {
			return cells{}, &transfer.RowError{Row: row.Line, Column: s.timeColumn, Message: "时间格式不正确，应为 yyyy-MM-dd HH:mm:ss", Value: v}
		}
	}

	return cells{
		ChemicalID:   id,
		ChemicalName: name,
		Amount:       amount,
		Unit:         row.Get(colUnit),
		BatchNo:      row.Get(colBatchNo),
		Time:         at,
		Notes:        row.Get(colNotes),
	}, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(shared.DateTimeLayout)
}
