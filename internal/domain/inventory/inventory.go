package inventory

import (
	"strings"

	"github.com/google/uuid"
	"github.com/hazchem/backend/internal/domain/chemical"
	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status classifies on-hand quantity against the chemical's thresholds
type Status string

const (
	StatusNormal Status = "normal"
	StatusLow    Status = "low"
	StatusHigh   Status = "high"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusNormal, StatusLow, StatusHigh:
		return true
	}
	return false
}

// warningBandFactor bounds the warning band above the threshold
var warningBandFactor = decimal.NewFromFloat(1.2)

// DeriveStatus computes the status of an amount.
// Below threshold is low; above a positive storage limit is high.
func DeriveStatus(amount, threshold, limit decimal.Decimal) Status {
	if amount.LessThan(threshold) {
		return StatusLow
	}
	if limit.IsPositive() && amount.GreaterThan(limit) {
		return StatusHigh
	}
	return StatusNormal
}

// InWarningBand reports threshold <= amount < 1.2 * threshold
func InWarningBand(amount, threshold decimal.Decimal) bool {
	if !threshold.IsPositive() {
		return false
	}
	return amount.GreaterThanOrEqual(threshold) && amount.LessThan(threshold.Mul(warningBandFactor))
}

// Inventory is the on-hand quantity of one chemical.
// There is exactly one row per chemical; Location records where it is kept.
type Inventory struct {
	shared.BaseEntity
	ChemicalID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventories_chemical" json:"chemicalId"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"currentAmount"`
	Unit          string          `gorm:"type:varchar(20);not null;default:'kg'" json:"unit"`
	Location      string          `gorm:"type:varchar(100);index" json:"location"`
	Status        Status          `gorm:"type:varchar(10);not null;default:'normal';index" json:"status"`

	Chemical *chemical.Chemical `gorm:"-" json:"chemical,omitempty"`
}

// TableName returns the table name for GORM
func (Inventory) TableName() string {
	return "inventories"
}

// NewInventory creates an inventory row for a chemical
func NewInventory(chemicalID uuid.UUID, amount decimal.Decimal, unit, location string) (*Inventory, error) {
	if chemicalID == uuid.Nil {
		return nil, shared.NewValidationError("化学品不能为空")
	}
	if amount.IsNegative() {
		return nil, shared.NewValidationError("库存数量不能为负数")
	}
	unit = strings.TrimSpace(unit)
	if unit == "" {
		unit = "kg"
	}
	return &Inventory{
		BaseEntity:    shared.NewBaseEntity(),
		ChemicalID:    chemicalID,
		CurrentAmount: amount,
		Unit:          unit,
		Location:      strings.TrimSpace(location),
		Status:        StatusNormal,
	}, nil
}

// SetAmount overwrites the on-hand amount
func (i *Inventory) SetAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewValidationError("库存数量不能为负数")
	}
	i.CurrentAmount = amount
	i.Touch()
	return nil
}

// Relocate changes where the stock is kept
func (i *Inventory) Relocate(location, unit string) {
	i.Location = strings.TrimSpace(location)
	if u := strings.TrimSpace(unit); u != "" {
		i.Unit = u
	}
	i.Touch()
}

// Classify recomputes Status from the attached or given chemical
func (i *Inventory) Classify(c *chemical.Chemical) {
	if c == nil {
		c = i.Chemical
	}
	if c == nil {
		return
	}
	i.Status = DeriveStatus(i.CurrentAmount, c.WarningThreshold, c.StorageLimit)
}
