package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	appinv "github.com/hazchem/backend/internal/application/inventory"
	"github.com/hazchem/backend/internal/domain/chemical"
	"github.com/hazchem/backend/internal/domain/movement"
	"github.com/hazchem/backend/internal/infrastructure/persistence"
	"github.com/hazchem/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repos      *persistence.Repositories
	scope      *persistence.GormTransactionScope
	reconciler *appinv.Reconciler
	metrics    *countingMetrics
	svc        *appinv.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t, persistence.Models()...)
	repos := persistence.NewRepositories(db)
	scope := persistence.NewGormTransactionScope(db)
	m := &countingMetrics{}
	reconciler := appinv.NewReconciler(m)
	return &fixture{
		repos:      repos,
		scope:      scope,
		reconciler: reconciler,
		metrics:    m,
		svc:        appinv.NewService(repos, scope, reconciler),
	}
}

func (f *fixture) chemical(t *testing.T, name string, threshold, limit int64) *chemical.Chemical {
	t.Helper()
	c, err := chemical.NewChemical(chemical.Attributes{
		Name:             name,
		Category:         "酸类",
		DangerLevel:      chemical.DangerLevelHigh,
		WarningThreshold: decimal.NewFromInt(threshold),
		StorageLimit:     decimal.NewFromInt(limit),
		Unit:             "kg",
	})
	require.NoError(t, err)
	require.NoError(t, f.repos.Chemicals().Save(context.Background(), c))
	return c
}

func (f *fixture) total(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	total, err := f.svc.TotalAmount(context.Background(), id)
	require.NoError(t, err)
	return total
}

// stored writes a storage record and its stock increase
func (f *fixture) stored(t *testing.T, c *chemical.Chemical, amount int64, at time.Time) {
	t.Helper()
	rec, err := movement.NewStorageRecord(movement.StorageDetails{
		ChemicalID: c.ID, ChemicalName: c.Name, Amount: decimal.NewFromInt(amount), StorageTime: at,
	})
	require.NoError(t, err)
	require.NoError(t, f.repos.StorageRecords().Create(context.Background(), rec))
	_, err = f.svc.StorageIn(context.Background(), c.ID, rec.Amount)
	require.NoError(t, err)
}

// issued writes an outbound record and its stock decrease
func (f *fixture) issued(t *testing.T, c *chemical.Chemical, amount int64, at time.Time) {
	t.Helper()
	rec, err := movement.NewOutboundRecord(movement.OutboundDetails{
		ChemicalID: c.ID, ChemicalName: c.Name, Amount: decimal.NewFromInt(amount), OutboundTime: at, Recipient: "实验室",
	})
	require.NoError(t, err)
	require.NoError(t, f.repos.OutboundRecords().Create(context.Background(), rec))
	_, err = f.svc.StorageOut(context.Background(), c.ID, rec.Amount)
	require.NoError(t, err)
}

type countingMetrics struct {
	increased, decreased, rejected, gaps int
}

func (m *countingMetrics) StockIncreased(decimal.Decimal) { m.increased++ }
func (m *countingMetrics) StockDecreased(decimal.Decimal) { m.decreased++ }
func (m *countingMetrics) StockRejected()                 { m.rejected++ }
func (m *countingMetrics) ReconciliationGap()             { m.gaps++ }

func requireAmount(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.NewFromInt(want).Equal(got), "expected %d, got %s", want, got)
}
