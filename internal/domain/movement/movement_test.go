package movement

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStorageRecord(t *testing.T) {
	chemicalID := uuid.New()

	t.Run("defaults unit and storage time", func(t *testing.T) {
		before := time.Now()
		r, err := NewStorageRecord(StorageDetails{
			ChemicalID: chemicalID,
			Amount:     decimal.NewFromInt(50),
		})

		require.NoError(t, err)
		assert.Equal(t, "kg", r.Unit)
		assert.False(t, r.StorageTime.Before(before))
		assert.Equal(t, decimal.NewFromInt(50), Signed(r))
		assert.Equal(t, KindStorageIn, r.Kind())
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		_, err := NewStorageRecord(StorageDetails{ChemicalID: chemicalID, Amount: decimal.Zero})

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := NewStorageRecord(StorageDetails{ChemicalID: chemicalID, Amount: decimal.NewFromInt(-5)})
		require.Error(t, err)
	})

	t.Run("rejects missing chemical", func(t *testing.T) {
		_, err := NewStorageRecord(StorageDetails{Amount: decimal.NewFromInt(5)})
		require.Error(t, err)
	})
}

func TestOutboundRecord_Change(t *testing.T) {
	when := time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)
	r, err := NewOutboundRecord(OutboundDetails{
		ChemicalID:   uuid.New(),
		Amount:       decimal.NewFromInt(20),
		Recipient:    "实验室A",
		OutboundTime: when,
	})
	require.NoError(t, err)
	assert.Equal(t, decimal.NewFromInt(-20), Signed(r))

	other := uuid.New()
	err = r.Change(OutboundDetails{ChemicalID: other, Amount: decimal.NewFromInt(5), Recipient: "实验室B"})

	require.NoError(t, err)
	assert.Equal(t, other, r.ChemicalID)
	assert.Equal(t, "实验室B", r.Recipient)
	assert.Equal(t, when, r.OutboundTime, "zero time keeps the original")

	err = r.Change(OutboundDetails{ChemicalID: other, Amount: decimal.Zero})
	require.Error(t, err)
}

func TestUsageRecord_IsOutbound(t *testing.T) {
	r, err := NewUsageRecord(UsageDetails{ChemicalID: uuid.New(), Amount: decimal.NewFromInt(2)})

	require.NoError(t, err)
	assert.Equal(t, Outbound, r.Direction())
	assert.Equal(t, "usage_time", UsageRecord{}.TimeColumn())
	assert.Equal(t, "user_name", UsageRecord{}.PartyColumn())
}
