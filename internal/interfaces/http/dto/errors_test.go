package dto

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeInsufficientStock, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeConcurrencyConflict, http.StatusConflict},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestFromError(t *testing.T) {
	t.Run("domain error keeps its message", func(t *testing.T) {
		status, resp := FromError(shared.NewNotFoundError("化学品"))
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.NotEmpty(t, resp.Message)
		assert.Nil(t, resp.Data)
	})

	t.Run("wrapped domain error", func(t *testing.T) {
		err := fmt.Errorf("saving: %w", shared.NewValidationError("数量必须大于0"))
		status, resp := FromError(err)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "数量必须大于0", resp.Message)
	})

	t.Run("insufficient stock carries quantities", func(t *testing.T) {
		err := shared.NewInsufficientStockError("c-1", decimal.NewFromInt(20), decimal.NewFromInt(30))
		status, resp := FromError(err)
		assert.Equal(t, http.StatusBadRequest, status)
		shortage, ok := resp.Data.(StockShortage)
		require.True(t, ok)
		assert.Equal(t, "20", shortage.Current)
		assert.Equal(t, "30", shortage.Requested)
		assert.Equal(t, "c-1", shortage.ChemicalID)
	})

	t.Run("storage fault is hidden", func(t *testing.T) {
		status, resp := FromError(errors.New("pq: connection refused"))
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, http.StatusInternalServerError, resp.Code)
		assert.NotContains(t, resp.Message, "pq")
	})
}

func TestResponses(t *testing.T) {
	ok := NewSuccessResponse(map[string]int{"n": 1})
	assert.Equal(t, CodeSuccess, ok.Code)
	assert.Equal(t, "success", ok.Message)

	fail := NewErrorResponse(http.StatusConflict, "exists")
	assert.Equal(t, http.StatusConflict, fail.Code)
	assert.Nil(t, fail.Data)
}
