package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/hazchem/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// CreateRequest registers stock for a chemical that has none yet
type CreateRequest struct {
	ChemicalID    uuid.UUID       `json:"chemicalId" binding:"required"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Unit          string          `json:"unit" binding:"max=20"`
	Location      string          `json:"location" binding:"max=100"`
}

// UpdateRequest changes where stock is kept
type UpdateRequest struct {
	Unit     string `json:"unit" binding:"max=20"`
	Location string `json:"location" binding:"max=100"`
}

// SetAmountRequest overwrites the on-hand amount
type SetAmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// BatchUpdateItem is one row of a batch update; a nil amount leaves it unchanged
type BatchUpdateItem struct {
	ID            uuid.UUID        `json:"id" binding:"required"`
	Unit          string           `json:"unit" binding:"max=20"`
	Location      string           `json:"location" binding:"max=100"`
	CurrentAmount *decimal.Decimal `json:"currentAmount"`
}

// AdjustRequest is a standalone increase or decrease of a chemical's stock
type AdjustRequest struct {
	ChemicalID uuid.UUID       `json:"chemicalId" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
}

// ListFilter is the query of the inventory list
type ListFilter struct {
	ChemicalID   *uuid.UUID       `form:"-"` // parsed by the handler
	ChemicalName string           `form:"chemicalName"`
	Location     string           `form:"location"`
	Status       inventory.Status `form:"status" binding:"omitempty,oneof=normal low high"`
	Page         int              `form:"current"`
	PageSize     int              `form:"size"`
	OrderBy      string           `form:"orderBy"`
	OrderDir     string           `form:"orderDir" binding:"omitempty,oneof=asc desc"`
}

// Statistics summarizes stock levels across all chemicals
type Statistics struct {
	TotalTypes     int             `json:"totalTypes"`
	TotalRecords   int             `json:"totalRecords"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	WarningCount   int             `json:"warningCount"`
	LowCount       int             `json:"lowCount"`
	HighCount      int             `json:"highCount"`
	BelowThreshold int             `json:"belowThreshold"`
}

// CheckItem is one line of an inventory check sheet
type CheckItem struct {
	InventoryID      uuid.UUID        `json:"inventoryId"`
	ChemicalID       uuid.UUID        `json:"chemicalId"`
	ChemicalName     string           `json:"chemicalName"`
	Category         string           `json:"category"`
	DangerLevel      string           `json:"dangerLevel"`
	StorageCondition string           `json:"storageCondition"`
	Location         string           `json:"location"`
	CurrentAmount    decimal.Decimal  `json:"currentAmount"`
	Unit             string           `json:"unit"`
	WarningThreshold decimal.Decimal  `json:"warningThreshold"`
	StorageLimit     decimal.Decimal  `json:"storageLimit"`
	Status           inventory.Status `json:"status"`
	Warning          bool             `json:"warning"`
	LastUpdated      time.Time        `json:"lastUpdated"`
}

// TrendPoint is the end-of-day on-hand total for one date
type TrendPoint struct {
	Date     string          `json:"date"`
	Total    decimal.Decimal `json:"total"`
	Inbound  decimal.Decimal `json:"inbound"`
	Outbound decimal.Decimal `json:"outbound"`
}

// ChemicalStock is a chemical's total together with its inventory rows
type ChemicalStock struct {
	ChemicalID    uuid.UUID             `json:"chemicalId"`
	ChemicalName  string                `json:"chemicalName"`
	TotalAmount   decimal.Decimal       `json:"totalAmount"`
	InventoryList []inventory.Inventory `json:"inventoryList"`
}
