package chemical

import (
	"context"

	"github.com/google/uuid"
	"github.com/hazchem/backend/internal/domain/shared"
)

// Filter narrows chemical list queries
type Filter struct {
	shared.Filter
	Name        string
	Category    string
	DangerLevel string
}

// Repository persists chemicals
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Chemical, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Chemical, error)
	FindByName(ctx context.Context, name string) (*Chemical, error)
	FindAll(ctx context.Context, filter Filter) ([]Chemical, int64, error)
	Save(ctx context.Context, c *Chemical) error
	// SaveWithLock updates using the version read before Update was applied
	SaveWithLock(ctx context.Context, c *Chemical) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
}
