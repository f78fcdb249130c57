package persistence

import (
	"context"
	"testing"

	"github.com/hazchem/backend/internal/domain/chemical"
	"github.com/hazchem/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewSQLiteDB(t, Models()...)
}

func seedChemical(t *testing.T, db *gorm.DB, name string, threshold, limit int64) *chemical.Chemical {
	t.Helper()
	c, err := chemical.NewChemical(chemical.Attributes{
		Name:             name,
		Category:         "溶剂",
		DangerLevel:      chemical.DangerLevelMedium,
		WarningThreshold: decimal.NewFromInt(threshold),
		StorageLimit:     decimal.NewFromInt(limit),
		Unit:             "L",
	})
	require.NoError(t, err)
	require.NoError(t, NewGormChemicalRepository(db).Save(context.Background(), c))
	return c
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
