package handler_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hazchem/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inventoryView struct {
	ID            string          `json:"id"`
	ChemicalID    string          `json:"chemicalId"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Location      string          `json:"location"`
	Status        string          `json:"status"`
	Chemical      *chemicalView   `json:"chemical"`
}

// stockedInventory stores amount of a new chemical and returns its inventory row
func (a *testApp) stockedInventory(name, threshold, amount string) inventoryView {
	a.t.Helper()

	chemicalID := a.createChemical(name, threshold)
	testutil.RequireOK(a.t, a.call(http.MethodPost, "/api/v1/storage/add", gin.H{"chemicalId": chemicalID, "amount": amount}))

	w := a.call(http.MethodGet, "/api/v1/inventory/list?chemicalId="+chemicalID, nil)
	testutil.RequireOK(a.t, w)
	page := testutil.DecodeData[struct {
		Records []inventoryView `json:"records"`
	}](a.t, w)
	require.Len(a.t, page.Records, 1)
	return page.Records[0]
}

func TestInventory_RowsFollowStock(t *testing.T) {
	app := newTestApp(t)
	inv := app.stockedInventory("甲醇", "10", "8")

	assert.Equal(t, "8", inv.CurrentAmount.String())
	assert.Equal(t, "low", inv.Status)
	require.NotNil(t, inv.Chemical)
	assert.Equal(t, "甲醇", inv.Chemical.Name)

	w := app.call(http.MethodGet, "/api/v1/inventory/below-threshold", nil)
	testutil.RequireOK(t, w)
	assert.Len(t, testutil.DecodeData[[]inventoryView](t, w), 1)

	t.Run("storage-in bypasses records", func(t *testing.T) {
		w := app.call(http.MethodPost, "/api/v1/inventory/storage-in", gin.H{"chemicalId": inv.ChemicalID, "amount": "4"})
		testutil.RequireOK(t, w)
		assert.Equal(t, "12", testutil.DecodeData[stockTotal](t, w).TotalAmount.String())

		w = app.call(http.MethodGet, "/api/v1/inventory/get/"+inv.ID, nil)
		testutil.RequireOK(t, w)
		assert.Equal(t, "normal", testutil.DecodeData[inventoryView](t, w).Status)
	})

	t.Run("storage-out cannot go negative", func(t *testing.T) {
		w := app.call(http.MethodPost, "/api/v1/inventory/storage-out", gin.H{"chemicalId": inv.ChemicalID, "amount": "13"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "12", app.totalAmount(inv.ChemicalID).String())
	})

	t.Run("amount override", func(t *testing.T) {
		w := app.call(http.MethodPut, "/api/v1/inventory/update/"+inv.ID+"/amount", gin.H{"amount": "2"})
		testutil.RequireOK(t, w)
		assert.Equal(t, "2", testutil.DecodeData[inventoryView](t, w).CurrentAmount.String())

		w = app.call(http.MethodPut, "/api/v1/inventory/update/"+inv.ID+"/amount", gin.H{"amount": "-1"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("location update", func(t *testing.T) {
		w := app.call(http.MethodPut, "/api/v1/inventory/update/"+inv.ID, gin.H{"location": "A-01"})
		testutil.RequireOK(t, w)
		assert.Equal(t, "A-01", testutil.DecodeData[inventoryView](t, w).Location)
	})

	t.Run("batch update", func(t *testing.T) {
		w := app.call(http.MethodPut, "/api/v1/inventory/batch", []gin.H{
			{"id": inv.ID, "location": "B-02", "currentAmount": "30"},
		})
		testutil.RequireOK(t, w)
		assert.Equal(t, 1, testutil.DecodeData[struct {
			Updated int `json:"updated"`
		}](t, w).Updated)
		assert.Equal(t, "30", app.totalAmount(inv.ChemicalID).String())
	})
}

func TestInventory_Reports(t *testing.T) {
	app := newTestApp(t)
	low := app.stockedInventory("苯酚", "10", "3")
	app.stockedInventory("甘油", "1", "20")

	w := app.call(http.MethodGet, "/api/v1/inventory/statistics", nil)
	testutil.RequireOK(t, w)
	stats := testutil.DecodeData[struct {
		TotalTypes     int             `json:"totalTypes"`
		TotalAmount    decimal.Decimal `json:"totalAmount"`
		BelowThreshold int             `json:"belowThreshold"`
	}](t, w)
	assert.Equal(t, 2, stats.TotalTypes)
	assert.Equal(t, "23", stats.TotalAmount.String())
	assert.Equal(t, 1, stats.BelowThreshold)

	w = app.call(http.MethodGet, "/api/v1/inventory/inventory-check", nil)
	testutil.RequireOK(t, w)
	items := testutil.DecodeData[[]struct {
		ChemicalName string `json:"chemicalName"`
		Status       string `json:"status"`
	}](t, w)
	require.Len(t, items, 2)
	assert.Equal(t, "苯酚", items[0].ChemicalName, "low stock is listed first")
	assert.Equal(t, "low", items[0].Status)
	assert.Equal(t, "normal", items[1].Status)

	w = app.call(http.MethodGet, "/api/v1/inventory/trend?days=3&chemicalId="+low.ChemicalID, nil)
	testutil.RequireOK(t, w)
	points := testutil.DecodeData[[]struct {
		Total   decimal.Decimal `json:"total"`
		Inbound decimal.Decimal `json:"inbound"`
	}](t, w)
	require.Len(t, points, 3)
	assert.True(t, points[0].Total.IsZero())
	assert.Equal(t, "3", points[2].Total.String())
	assert.Equal(t, "3", points[2].Inbound.String())

	w = app.call(http.MethodGet, "/api/v1/inventory/trend?days=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.call(http.MethodGet, "/api/v1/inventory/"+low.ID+"/history?limit=5", nil)
	testutil.RequireOK(t, w)
	history := testutil.DecodeData[[]struct {
		Type   string          `json:"type"`
		Amount decimal.Decimal `json:"amount"`
	}](t, w)
	require.Len(t, history, 1)
	assert.Equal(t, "3", history[0].Amount.String())

	w = app.call(http.MethodGet, "/api/v1/inventory/getTotalAmount", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
