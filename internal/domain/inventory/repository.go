package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Filter narrows inventory list queries
type Filter struct {
	shared.Filter
	ChemicalID   *uuid.UUID
	ChemicalName string
	Location     string
	Status       Status
}

// Repository persists inventory rows.
// Increase and DecreaseIfSufficient are single atomic statements; callers
// never read-modify-write CurrentAmount.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Inventory, error)
	FindByChemical(ctx context.Context, chemicalID uuid.UUID) (*Inventory, error)
	FindAll(ctx context.Context, filter Filter) ([]Inventory, int64, error)
	FindAllUnpaged(ctx context.Context, filter Filter) ([]Inventory, error)
	FindBelowThreshold(ctx context.Context) ([]Inventory, error)
	Create(ctx context.Context, inv *Inventory) error
	Save(ctx context.Context, inv *Inventory) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Increase adds amount, creating the chemical's row when it has none
	Increase(ctx context.Context, chemicalID uuid.UUID, amount decimal.Decimal, unit string) error

	// DecreaseIfSufficient subtracts amount only when the result stays
	// non-negative; false means nothing was changed
	DecreaseIfSufficient(ctx context.Context, chemicalID uuid.UUID, amount decimal.Decimal) (bool, error)

	// TotalAmount sums current amounts for the chemical; zero when it has no rows
	TotalAmount(ctx context.Context, chemicalID uuid.UUID) (decimal.Decimal, error)

	// RefreshStatus re-derives the stored status from the given thresholds
	RefreshStatus(ctx context.Context, chemicalID uuid.UUID, threshold, limit decimal.Decimal) error
}
