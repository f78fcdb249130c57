package movement

import (
	"context"
	"testing"

	"github.com/google/uuid"
	appinv "github.com/hazchem/backend/internal/application/inventory"
	"github.com/hazchem/backend/internal/domain/chemical"
	"github.com/hazchem/backend/internal/domain/identity"
	"github.com/hazchem/backend/internal/infrastructure/persistence"
	"github.com/hazchem/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	repos      *persistence.Repositories
	scope      *persistence.GormTransactionScope
	reconciler *appinv.Reconciler
	stock      *appinv.Service
	storage    *StorageService
	outbound   *OutboundService
	usage      *UsageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t, persistence.Models()...)
	repos := persistence.NewRepositories(db)
	scope := persistence.NewGormTransactionScope(db)
	reconciler := appinv.NewReconciler(nil)
	stock := appinv.NewService(repos, scope, reconciler)
	return &fixture{
		db:         db,
		repos:      repos,
		scope:      scope,
		reconciler: reconciler,
		stock:      stock,
		storage:    NewStorageService(repos, scope, reconciler, nil),
		outbound:   NewOutboundService(repos, scope, reconciler, stock, nil),
		usage:      NewUsageService(repos, scope, reconciler, nil),
	}
}

func (f *fixture) chemical(t *testing.T, name string) *chemical.Chemical {
	t.Helper()
	c, err := chemical.NewChemical(chemical.Attributes{
		Name:             name,
		WarningThreshold: decimal.NewFromInt(10),
		Unit:             "kg",
	})
	require.NoError(t, err)
	require.NoError(t, f.repos.Chemicals().Save(context.Background(), c))
	return c
}

func (f *fixture) person(t *testing.T, name string) *identity.Person {
	t.Helper()
	p, err := identity.NewPerson(identity.Profile{Name: name})
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormPersonRepository(f.db).Create(context.Background(), p))
	return p
}

func (f *fixture) total(t *testing.T, chemicalID uuid.UUID) decimal.Decimal {
	t.Helper()
	total, err := f.repos.Inventories().TotalAmount(context.Background(), chemicalID)
	require.NoError(t, err)
	return total
}

func (f *fixture) storageIn(t *testing.T, chemicalID uuid.UUID, amount int64) uuid.UUID {
	t.Helper()
	rec, err := f.storage.Create(context.Background(), StorageRequest{ChemicalID: chemicalID, Amount: decimal.NewFromInt(amount)})
	require.NoError(t, err)
	return rec.ID
}

func kg(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func requireAmount(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	require.True(t, kg(want).Equal(got), "expected %d, got %s", want, got)
}
