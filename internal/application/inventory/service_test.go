package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	appinv "github.com/hazchem/backend/internal/application/inventory"
	"github.com/hazchem/backend/internal/domain/inventory"
	"github.com/hazchem/backend/internal/domain/movement"
	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.chemical(t, "硫酸", 10, 0)

	inv, err := f.svc.Create(ctx, appinv.CreateRequest{ChemicalID: c.ID, CurrentAmount: decimal.NewFromInt(4), Location: "A-01"})
	require.NoError(t, err)
	assert.Equal(t, inventory.StatusLow, inv.Status)
	assert.Equal(t, "kg", inv.Unit)

	got, err := f.svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "A-01", got.Location)
	require.NotNil(t, got.Chemical)
	assert.Equal(t, "硫酸", got.Chemical.Name)

	_, err = f.svc.Create(ctx, appinv.CreateRequest{ChemicalID: c.ID})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	_, err = f.svc.Create(ctx, appinv.CreateRequest{ChemicalID: uuid.New()})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.chemical(t, "乙醇", 0, 0)
	inv, err := f.svc.Create(ctx, appinv.CreateRequest{ChemicalID: c.ID, CurrentAmount: decimal.NewFromInt(8)})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, inv.ID, appinv.UpdateRequest{Location: "B-02", Unit: "L"})
	require.NoError(t, err)
	assert.Equal(t, "B-02", updated.Location)
	assert.Equal(t, "L", updated.Unit)
	requireAmount(t, 8, updated.CurrentAmount)

	err = f.svc.Delete(ctx, inv.ID)
	require.ErrorIs(t, err, shared.ErrInvalidInput, "a row holding stock stays")
	requireAmount(t, 8, f.total(t, c.ID))

	_, err = f.svc.SetAmount(ctx, inv.ID, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, inv.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, inv.ID), shared.ErrNotFound)
	requireAmount(t, 0, f.total(t, c.ID))
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for i, name := range []string{"硫酸", "硝酸", "丙酮"} {
		c := f.chemical(t, name, 5, 0)
		_, err := f.svc.Create(ctx, appinv.CreateRequest{ChemicalID: c.ID, CurrentAmount: decimal.NewFromInt(int64(i * 5)), Location: "柜" + name})
		require.NoError(t, err)
	}

	page, err := f.svc.List(ctx, appinv.ListFilter{ChemicalName: "酸"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 5, page.Size)
	for _, inv := range page.Records {
		require.NotNil(t, inv.Chemical)
	}

	page, err = f.svc.List(ctx, appinv.ListFilter{Status: inventory.StatusLow})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	assert.Equal(t, "硫酸", page.Records[0].Chemical.Name)

	page, err = f.svc.List(ctx, appinv.ListFilter{PageSize: 2, Page: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.Len(t, page.Records, 1)
}

func TestService_SetAmountAndBelowThreshold(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.chemical(t, "氢氟酸", 10, 0)
	inv, err := f.svc.Create(ctx, appinv.CreateRequest{ChemicalID: c.ID, CurrentAmount: decimal.NewFromInt(50)})
	require.NoError(t, err)

	below, err := f.svc.BelowThreshold(ctx)
	require.NoError(t, err)
	assert.Empty(t, below)

	updated, err := f.svc.SetAmount(ctx, inv.ID, decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, inventory.StatusLow, updated.Status)

	below, err = f.svc.BelowThreshold(ctx)
	require.NoError(t, err)
	require.Len(t, below, 1)
	assert.Equal(t, c.ID, below[0].ChemicalID)

	_, err = f.svc.SetAmount(ctx, inv.ID, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	requireAmount(t, 3, f.total(t, c.ID))
}

func TestService_BatchUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.chemical(t, "甲苯", 0, 0)
	b := f.chemical(t, "二甲苯", 0, 0)
	ia, err := f.svc.Create(ctx, appinv.CreateRequest{ChemicalID: a.ID, CurrentAmount: decimal.NewFromInt(1)})
	require.NoError(t, err)
	ib, err := f.svc.Create(ctx, appinv.CreateRequest{ChemicalID: b.ID, CurrentAmount: decimal.NewFromInt(2)})
	require.NoError(t, err)

	ten := decimal.NewFromInt(10)
	n, err := f.svc.BatchUpdate(ctx, []appinv.BatchUpdateItem{
		{ID: ia.ID, Location: "C-1", CurrentAmount: &ten},
		{ID: ib.ID, Location: "C-2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	requireAmount(t, 10, f.total(t, a.ID))
	requireAmount(t, 2, f.total(t, b.ID))

	_, err = f.svc.BatchUpdate(ctx, []appinv.BatchUpdateItem{
		{ID: ia.ID, Location: "D-1"},
		{ID: uuid.New(), Location: "D-2"},
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	got, err := f.svc.Get(ctx, ia.ID)
	require.NoError(t, err)
	assert.Equal(t, "C-1", got.Location, "failed batch must not apply earlier items")
}

func TestService_StorageInOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.chemical(t, "丙酮", 0, 0)

	total, err := f.svc.StorageIn(ctx, c.ID, decimal.NewFromInt(40))
	require.NoError(t, err)
	requireAmount(t, 40, total)

	total, err = f.svc.StorageOut(ctx, c.ID, decimal.NewFromInt(15))
	require.NoError(t, err)
	requireAmount(t, 25, total)

	_, err = f.svc.StorageOut(ctx, c.ID, decimal.NewFromInt(26))
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	requireAmount(t, 25, f.total(t, c.ID))

	_, err = f.svc.TotalAmount(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_StatisticsAndCheck(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	low := f.chemical(t, "低库存", 10, 0)
	warn := f.chemical(t, "预警", 10, 0)
	high := f.chemical(t, "超储", 10, 50)
	normal := f.chemical(t, "正常", 10, 0)
	for c, amount := range map[uuid.UUID]int64{low.ID: 5, warn.ID: 11, high.ID: 60, normal.ID: 30} {
		_, err := f.svc.StorageIn(ctx, c, decimal.NewFromInt(amount))
		require.NoError(t, err)
	}

	stats, err := f.svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalTypes)
	assert.Equal(t, 4, stats.TotalRecords)
	requireAmount(t, 106, stats.TotalAmount)
	assert.Equal(t, 1, stats.LowCount)
	assert.Equal(t, 1, stats.WarningCount)
	assert.Equal(t, 1, stats.HighCount)
	assert.Equal(t, 1, stats.BelowThreshold)

	items, err := f.svc.Check(ctx, appinv.ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "低库存", items[0].ChemicalName)
	assert.Equal(t, "预警", items[1].ChemicalName)
	assert.True(t, items[1].Warning)
	assert.Equal(t, "超储", items[2].ChemicalName)
	assert.Equal(t, inventory.StatusHigh, items[2].Status)
	assert.Equal(t, "正常", items[3].ChemicalName)
}

func TestService_HistoryAndTrend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.chemical(t, "硫酸", 0, 0)
	now := time.Now()

	f.stored(t, c, 30, now.AddDate(0, 0, -2))
	f.issued(t, c, 10, now.AddDate(0, 0, -1))
	f.stored(t, c, 5, now)

	inv, err := f.repos.Inventories().FindByChemical(ctx, c.ID)
	require.NoError(t, err)

	history, err := f.svc.History(ctx, inv.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, movement.KindStorageIn, history[0].Kind)
	assert.Equal(t, movement.KindOutbound, history[1].Kind)
	assert.True(t, history[1].Delta.IsNegative())

	limited, err := f.svc.History(ctx, inv.ID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	points, err := f.svc.Trend(ctx, &c.ID, 3)
	require.NoError(t, err)
	require.Len(t, points, 3)
	requireAmount(t, 30, points[0].Total)
	requireAmount(t, 30, points[0].Inbound)
	requireAmount(t, 20, points[1].Total)
	requireAmount(t, 10, points[1].Outbound)
	requireAmount(t, 25, points[2].Total)
	assert.Equal(t, now.Format(time.DateOnly), points[2].Date)

	all, err := f.svc.Trend(ctx, nil, 0)
	require.NoError(t, err)
	assert.Len(t, all, appinv.DefaultTrendDays)
	requireAmount(t, 25, all[len(all)-1].Total)
	requireAmount(t, 0, all[0].Total)
}

func TestService_TrendFutureMovement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.chemical(t, "丙烯腈", 0, 0)
	f.stored(t, c, 40, time.Now().AddDate(0, 0, 3))

	points, err := f.svc.Trend(ctx, &c.ID, 3)
	require.NoError(t, err)
	require.Len(t, points, 3)
	requireAmount(t, 0, points[0].Total)
	requireAmount(t, 0, points[1].Total)
	requireAmount(t, 40, points[2].Total)
	requireAmount(t, 40, points[2].Inbound)
}
