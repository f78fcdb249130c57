package inventory

import (
	"context"

	"github.com/hazchem/backend/internal/domain/chemical"
	"github.com/hazchem/backend/internal/domain/identity"
	"github.com/hazchem/backend/internal/domain/inventory"
	"github.com/hazchem/backend/internal/domain/movement"
)

// TransactionScope runs a unit of work in one database transaction.
// Returning an error from fn rolls back every write made through repos.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to the repositories a reconciliation touches.
// Inside TransactionScope.Execute they all share the transaction.
type Repositories interface {
	Chemicals() chemical.Repository
	Inventories() inventory.Repository
	StorageRecords() movement.StorageRecordRepository
	OutboundRecords() movement.OutboundRecordRepository
	UsageRecords() movement.UsageRecordRepository
	Persons() identity.PersonRepository
}
