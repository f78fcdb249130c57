package persistence

import (
	"context"

	appinv "github.com/hazchem/backend/internal/application/inventory"
	"github.com/hazchem/backend/internal/domain/chemical"
	"github.com/hazchem/backend/internal/domain/identity"
	"github.com/hazchem/backend/internal/domain/inventory"
	"github.com/hazchem/backend/internal/domain/movement"
	"gorm.io/gorm"
)

// Repositories builds every repository over one *gorm.DB, which may be a transaction
type Repositories struct {
	db *gorm.DB
}

// NewRepositories creates repositories bound to db
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{db: db}
}

// Chemicals returns the chemical repository
func (r *Repositories) Chemicals() chemical.Repository {
	return NewGormChemicalRepository(r.db)
}

// Inventories returns the inventory repository
func (r *Repositories) Inventories() inventory.Repository {
	return NewGormInventoryRepository(r.db)
}

// StorageRecords returns the storage-in record repository
func (r *Repositories) StorageRecords() movement.StorageRecordRepository {
	return NewGormStorageRecordRepository(r.db)
}

// OutboundRecords returns the outbound record repository
func (r *Repositories) OutboundRecords() movement.OutboundRecordRepository {
	return NewGormOutboundRecordRepository(r.db)
}

// UsageRecords returns the usage record repository
func (r *Repositories) UsageRecords() movement.UsageRecordRepository {
	return NewGormUsageRecordRepository(r.db)
}

// Persons returns the person repository
func (r *Repositories) Persons() identity.PersonRepository {
	return NewGormPersonRepository(r.db)
}

// GormTransactionScope implements TransactionScope using GORM transactions
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn in a transaction, committing when it returns nil and
// rolling back otherwise
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

var (
	_ appinv.TransactionScope = (*GormTransactionScope)(nil)
	_ appinv.Repositories     = (*Repositories)(nil)
)
