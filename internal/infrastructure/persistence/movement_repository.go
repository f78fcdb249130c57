package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hazchem/backend/internal/domain/movement"
	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormMovementRepository persists one movement record type. The record's
// Table methods supply the columns that differ between record types.
type GormMovementRepository[T movement.Table] struct {
	db    *gorm.DB
	table T
	sorts sortColumns
}

// NewGormMovementRepository creates a repository for record type T
func NewGormMovementRepository[T movement.Table](db *gorm.DB) *GormMovementRepository[T] {
	var table T
	return &GormMovementRepository[T]{
		db:    db,
		table: table,
		sorts: sortColumns{
			"created_at":   "created_at",
			"createTime":   "created_at",
			"amount":       "amount",
			"chemicalName": "chemical_name",
			"time":         table.TimeColumn(),
			"party":        table.PartyColumn(),
		},
	}
}

// NewGormStorageRecordRepository creates the storage-in record repository
func NewGormStorageRecordRepository(db *gorm.DB) *GormMovementRepository[movement.StorageRecord] {
	return NewGormMovementRepository[movement.StorageRecord](db)
}

// NewGormOutboundRecordRepository creates the outbound record repository
func NewGormOutboundRecordRepository(db *gorm.DB) *GormMovementRepository[movement.OutboundRecord] {
	return NewGormMovementRepository[movement.OutboundRecord](db)
}

// NewGormUsageRecordRepository creates the usage record repository
func NewGormUsageRecordRepository(db *gorm.DB) *GormMovementRepository[movement.UsageRecord] {
	return NewGormMovementRepository[movement.UsageRecord](db)
}

// FindByID finds a record by its ID
func (r *GormMovementRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var rec T
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

// FindAll returns a page of records, newest movement first by default
func (r *GormMovementRepository[T]) FindAll(ctx context.Context, filter movement.Filter) ([]T, int64, error) {
	return findPage[T](r.filtered(ctx, filter), filter.Filter, r.sorts, r.table.TimeColumn())
}

// FindAllUnpaged returns every matching record
func (r *GormMovementRepository[T]) FindAllUnpaged(ctx context.Context, filter movement.Filter) ([]T, error) {
	var list []T
	err := r.filtered(ctx, filter).
		Order(r.sorts.column(filter.OrderBy, r.table.TimeColumn()) + " " + sortDir(filter.OrderDir)).
		Find(&list).Error
	return list, err
}

func (r *GormMovementRepository[T]) filtered(ctx context.Context, filter movement.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(new(T))
	if filter.ChemicalID != nil {
		q = q.Where("chemical_id = ?", *filter.ChemicalID)
	}
	if filter.PersonID != nil {
		q = q.Where(r.table.PersonColumn()+" = ?", *filter.PersonID)
	}
	q = whereContains(q, "chemical_name", filter.ChemicalName)
	q = whereContains(q, r.table.PartyColumn(), filter.Party)
	if s := strings.TrimSpace(filter.Search); s != "" {
		p := likePattern(s)
		q = q.Where(`(chemical_name LIKE ? ESCAPE '\' OR `+r.table.PartyColumn()+` LIKE ? ESCAPE '\' OR notes LIKE ? ESCAPE '\')`, p, p, p)
	}
	if filter.StartTime != nil {
		q = q.Where(r.table.TimeColumn()+" >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		q = q.Where(r.table.TimeColumn()+" <= ?", *filter.EndTime)
	}
	return q
}

// Create inserts a record
func (r *GormMovementRepository[T]) Create(ctx context.Context, record *T) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// CreateBatch inserts records in batches of 100
func (r *GormMovementRepository[T]) CreateBatch(ctx context.Context, records []*T) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(records, 100).Error
}

// Save updates every column of an existing record
func (r *GormMovementRepository[T]) Save(ctx context.Context, record *T) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// Delete deletes a record
func (r *GormMovementRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SumAmount totals the amount of matching records
func (r *GormMovementRepository[T]) SumAmount(ctx context.Context, filter movement.Filter) (decimal.Decimal, error) {
	var res struct {
		Total decimal.Decimal
	}
	if err := r.filtered(ctx, filter).Select("COALESCE(SUM(amount), 0) AS total").Scan(&res).Error; err != nil {
		return decimal.Zero, err
	}
	return res.Total, nil
}

// Count counts matching records
func (r *GormMovementRepository[T]) Count(ctx context.Context, filter movement.Filter) (int64, error) {
	var n int64
	err := r.filtered(ctx, filter).Count(&n).Error
	return n, err
}

// SumAmountByChemicalSince totals amounts per chemical for records at or after since
func (r *GormMovementRepository[T]) SumAmountByChemicalSince(ctx context.Context, since time.Time) (map[uuid.UUID]decimal.Decimal, error) {
	var rows []struct {
		ChemicalID uuid.UUID
		Total      decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(new(T)).
		Select("chemical_id, COALESCE(SUM(amount), 0) AS total").
		Where(r.table.TimeColumn()+" >= ?", since).
		Group("chemical_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[row.ChemicalID] = row.Total
	}
	return out, nil
}

var (
	_ movement.StorageRecordRepository  = (*GormMovementRepository[movement.StorageRecord])(nil)
	_ movement.OutboundRecordRepository = (*GormMovementRepository[movement.OutboundRecord])(nil)
	_ movement.UsageRecordRepository    = (*GormMovementRepository[movement.UsageRecord])(nil)
)
