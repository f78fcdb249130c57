package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/hazchem/backend/internal/domain/shared"
)

// PersonFilter narrows personnel list queries; every field is a substring match
type PersonFilter struct {
	shared.Filter
	Name       string
	Phone      string
	Gender     string
	Email      string
	Department string
	Position   string
}

// PersonRepository persists people
type PersonRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Person, error)
	FindByEmail(ctx context.Context, email string) (*Person, error)
	FindAll(ctx context.Context, filter PersonFilter) ([]Person, int64, error)
	FindAllUnpaged(ctx context.Context, filter PersonFilter) ([]Person, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, p *Person) error
	Save(ctx context.Context, p *Person) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RegisterRecordRepository stores registration audit rows
type RegisterRecordRepository interface {
	Create(ctx context.Context, r *RegisterRecord) error
}
