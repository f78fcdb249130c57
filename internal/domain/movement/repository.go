package movement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Filter narrows movement record queries. Party matches the supplier,
// recipient or user name depending on the record type.
type Filter struct {
	shared.Filter
	ChemicalID   *uuid.UUID
	ChemicalName string
	Party        string
	PersonID     *uuid.UUID
}

// Between returns a copy limited to [start, end]
func (f Filter) Between(start, end time.Time) Filter {
	f.StartTime = &start
	f.EndTime = &end
	return f
}

// Repository persists one movement record type
type Repository[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindAll(ctx context.Context, filter Filter) ([]T, int64, error)
	FindAllUnpaged(ctx context.Context, filter Filter) ([]T, error)
	Create(ctx context.Context, record *T) error
	CreateBatch(ctx context.Context, records []*T) error
	Save(ctx context.Context, record *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	SumAmount(ctx context.Context, filter Filter) (decimal.Decimal, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	// SumAmountByChemicalSince groups amounts at or after since by chemical
	SumAmountByChemicalSince(ctx context.Context, since time.Time) (map[uuid.UUID]decimal.Decimal, error)
}

// StorageRecordRepository persists storage-in records
type StorageRecordRepository = Repository[StorageRecord]

// OutboundRecordRepository persists outbound records
type OutboundRecordRepository = Repository[OutboundRecord]

// UsageRecordRepository persists usage records
type UsageRecordRepository = Repository[UsageRecord]
