package chemical

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	appinv "github.com/hazchem/backend/internal/application/inventory"
	"github.com/hazchem/backend/internal/domain/inventory"
	"github.com/hazchem/backend/internal/domain/movement"
	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/hazchem/backend/internal/infrastructure/persistence"
	"github.com/hazchem/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repos *persistence.Repositories
	svc   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t, persistence.Models()...)
	repos := persistence.NewRepositories(db)
	return &fixture{
		repos: repos,
		svc:   NewService(repos, persistence.NewGormTransactionScope(db)),
	}
}

func (f *fixture) stock(t *testing.T, id uuid.UUID, amount int64) {
	t.Helper()
	require.NoError(t, appinv.NewReconciler(nil).Increase(context.Background(), f.repos, id, decimal.NewFromInt(amount)))
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	assert.Equal(t, code, de.Code)
}

func sulfuric() Request {
	return Request{
		Name:             "硫酸",
		Category:         "腐蚀品",
		DangerLevel:      "高",
		WarningThreshold: decimal.NewFromInt(10),
		StorageLimit:     decimal.NewFromInt(500),
	}
}

func TestService_CreateAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, sulfuric())
	require.NoError(t, err)
	assert.Equal(t, "kg", c.Unit)

	got, err := f.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "硫酸", got.Name)
	assert.True(t, got.WarningThreshold.Equal(decimal.NewFromInt(10)))

	_, err = f.svc.Create(ctx, sulfuric())
	requireCode(t, err, "ALREADY_EXISTS")

	_, err = f.svc.Get(ctx, uuid.New())
	requireCode(t, err, "NOT_FOUND")
}

func TestService_Create_Validation(t *testing.T) {
	f := newFixture(t)
	req := sulfuric()
	req.WarningThreshold = decimal.NewFromInt(-1)

	_, err := f.svc.Create(context.Background(), req)
	requireCode(t, err, "INVALID_INPUT")
}

func TestService_Update_RefreshesStockStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.Create(ctx, sulfuric())
	require.NoError(t, err)
	f.stock(t, c.ID, 5)

	inv, err := f.repos.Inventories().FindByChemical(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.StatusLow, inv.Status)

	req := sulfuric()
	req.WarningThreshold = decimal.NewFromInt(3)
	req.StorageLimit = decimal.NewFromInt(4)
	updated, err := f.svc.Update(ctx, c.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)

	inv, err = f.repos.Inventories().FindByChemical(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.StatusHigh, inv.Status)
}

func TestService_Update_DuplicateName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, sulfuric())
	require.NoError(t, err)
	other, err := f.svc.Create(ctx, Request{Name: "盐酸"})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, other.ID, sulfuric())
	requireCode(t, err, "ALREADY_EXISTS")

	_, err = f.svc.Update(ctx, uuid.New(), sulfuric())
	requireCode(t, err, "NOT_FOUND")
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.Create(ctx, sulfuric())
	require.NoError(t, err)
	f.stock(t, c.ID, 5)

	requireCode(t, f.svc.Delete(ctx, c.ID), "INVALID_INPUT")

	require.NoError(t, appinv.NewReconciler(nil).Decrease(ctx, f.repos, c.ID, decimal.NewFromInt(5)))
	require.NoError(t, f.svc.Delete(ctx, c.ID))

	_, err = f.repos.Inventories().FindByChemical(ctx, c.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	requireCode(t, f.svc.Delete(ctx, c.ID), "NOT_FOUND")
}

func TestService_DeleteWithRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.Create(ctx, sulfuric())
	require.NoError(t, err)

	rec, err := movement.NewOutboundRecord(movement.OutboundDetails{
		ChemicalID: c.ID, ChemicalName: c.Name, Amount: decimal.NewFromInt(2), Recipient: "实验室",
	})
	require.NoError(t, err)
	require.NoError(t, f.repos.OutboundRecords().Create(ctx, rec))

	err = f.svc.Delete(ctx, c.ID)
	requireCode(t, err, "INVALID_INPUT")
	assert.Contains(t, err.Error(), "1条出入库记录")
	_, err = f.svc.Get(ctx, c.ID)
	require.NoError(t, err, "the chemical stays while records name it")

	require.NoError(t, f.repos.OutboundRecords().Delete(ctx, rec.ID))
	require.NoError(t, f.svc.Delete(ctx, c.ID))
}

func TestService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, name := range []string{"硫酸", "盐酸", "乙醇"} {
		_, err := f.svc.Create(ctx, Request{Name: name, Category: "危化品"})
		require.NoError(t, err)
	}

	page, err := f.svc.List(ctx, ListQuery{Name: "酸"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 5, page.Size)

	page, err = f.svc.List(ctx, ListQuery{Size: 2, Current: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.Len(t, page.Records, 1)
}
