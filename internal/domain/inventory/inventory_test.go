package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/hazchem/backend/internal/domain/chemical"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus(t *testing.T) {
	threshold := decimal.NewFromInt(10)
	limit := decimal.NewFromInt(100)

	tests := []struct {
		name   string
		amount int64
		limit  decimal.Decimal
		want   Status
	}{
		{"below threshold", 9, limit, StatusLow},
		{"at threshold", 10, limit, StatusNormal},
		{"at limit", 100, limit, StatusNormal},
		{"above limit", 101, limit, StatusHigh},
		{"no limit configured", 5000, decimal.Zero, StatusNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(decimal.NewFromInt(tt.amount), threshold, tt.limit))
		})
	}
}

func TestInWarningBand(t *testing.T) {
	threshold := decimal.NewFromInt(10)

	assert.False(t, InWarningBand(decimal.NewFromFloat(9.99), threshold))
	assert.True(t, InWarningBand(decimal.NewFromInt(10), threshold))
	assert.True(t, InWarningBand(decimal.NewFromFloat(11.99), threshold))
	assert.False(t, InWarningBand(decimal.NewFromInt(12), threshold))
	assert.False(t, InWarningBand(decimal.NewFromInt(1), decimal.Zero))
}

func TestNewInventory(t *testing.T) {
	t.Run("defaults unit to kg", func(t *testing.T) {
		inv, err := NewInventory(uuid.New(), decimal.NewFromInt(3), "", " A-01 ")

		require.NoError(t, err)
		assert.Equal(t, "kg", inv.Unit)
		assert.Equal(t, "A-01", inv.Location)
		assert.Equal(t, StatusNormal, inv.Status)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := NewInventory(uuid.New(), decimal.NewFromInt(-1), "kg", "")
		require.Error(t, err)
	})

	t.Run("rejects missing chemical", func(t *testing.T) {
		_, err := NewInventory(uuid.Nil, decimal.Zero, "kg", "")
		require.Error(t, err)
	})
}

func TestInventory_Classify(t *testing.T) {
	inv, err := NewInventory(uuid.New(), decimal.NewFromInt(4), "kg", "")
	require.NoError(t, err)

	c := &chemical.Chemical{WarningThreshold: decimal.NewFromInt(5)}
	inv.Classify(c)
	assert.Equal(t, StatusLow, inv.Status)

	require.NoError(t, inv.SetAmount(decimal.NewFromInt(6)))
	inv.Classify(c)
	assert.Equal(t, StatusNormal, inv.Status)
}
