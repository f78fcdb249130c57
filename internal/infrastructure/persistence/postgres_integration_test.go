//go:build integration

package persistence_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	appinv "github.com/hazchem/backend/internal/application/inventory"
	"github.com/hazchem/backend/internal/domain/chemical"
	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/hazchem/backend/internal/infrastructure/persistence"
	"github.com/hazchem/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_ConcurrentOutboundsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewPostgresDB(t)
	repos := persistence.NewRepositories(db)
	scope := persistence.NewGormTransactionScope(db)
	reconciler := appinv.NewReconciler(nil)

	c, err := chemical.NewChemical(chemical.Attributes{
		Name:             "浓硫酸",
		WarningThreshold: decimal.NewFromInt(2),
		Unit:             "kg",
	})
	require.NoError(t, err)
	require.NoError(t, repos.Chemicals().Save(ctx, c))
	require.NoError(t, scope.Execute(ctx, func(r appinv.Repositories) error {
		return reconciler.Increase(ctx, r, c.ID, decimal.NewFromInt(10))
	}))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := scope.Execute(ctx, func(r appinv.Repositories) error {
				return reconciler.Decrease(ctx, r, c.ID, decimal.NewFromInt(1))
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, shared.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 10, rejected)

	inv, err := repos.Inventories().FindByChemical(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, inv.CurrentAmount.IsZero(), "got %s", inv.CurrentAmount)
	assert.Equal(t, "low", string(inv.Status))
}

func TestPostgres_AmountCheckConstraint(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewPostgresDB(t)
	repos := persistence.NewRepositories(db)

	c, err := chemical.NewChemical(chemical.Attributes{Name: "乙醚", Unit: "L"})
	require.NoError(t, err)
	require.NoError(t, repos.Chemicals().Save(ctx, c))
	require.NoError(t, repos.Inventories().Increase(ctx, c.ID, decimal.NewFromInt(1), "L"))

	err = db.Exec("UPDATE inventories SET current_amount = -1 WHERE chemical_id = ?", c.ID).Error
	assert.Error(t, err, "the schema rejects negative stock")
}
