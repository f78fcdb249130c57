package chemical

import (
	"strings"
	"unicode/utf8"

	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Danger levels used by the catalog. Free text is accepted as well; these are
// the values the web client offers.
const (
	DangerLevelLow      = "低"
	DangerLevelMedium   = "中"
	DangerLevelHigh     = "高"
	DangerLevelCritical = "极高"
)

// Chemical is a hazardous-substance catalog entry.
// WarningThreshold is the minimum safe on-hand quantity; StorageLimit is the
// maximum permitted quantity, zero meaning unlimited.
type Chemical struct {
	shared.BaseAggregateRoot
	Name             string          `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Category         string          `gorm:"type:varchar(50)" json:"category"`
	DangerLevel      string          `gorm:"type:varchar(20)" json:"dangerLevel"`
	StorageCondition string          `gorm:"type:varchar(200)" json:"storageCondition"`
	WarningThreshold decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"warningThreshold"`
	StorageLimit     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"storageLimit"`
	Unit             string          `gorm:"type:varchar(20);not null;default:'kg'" json:"unit"`
	Description      string          `gorm:"type:text" json:"description"`
}

// TableName returns the table name for GORM
func (Chemical) TableName() string {
	return "chemicals"
}

// Attributes carries the mutable fields of a chemical
type Attributes struct {
	Name             string
	Category         string
	DangerLevel      string
	StorageCondition string
	WarningThreshold decimal.Decimal
	StorageLimit     decimal.Decimal
	Unit             string
	Description      string
}

// NewChemical creates a validated catalog entry
func NewChemical(attrs Attributes) (*Chemical, error) {
	c := &Chemical{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := c.apply(attrs); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the mutable fields after validation
func (c *Chemical) Update(attrs Attributes) error {
	if err := c.apply(attrs); err != nil {
		return err
	}
	c.Touch()
	c.IncrementVersion()
	return nil
}

func (c *Chemical) apply(attrs Attributes) error {
	name := strings.TrimSpace(attrs.Name)
	if name == "" {
		return shared.NewValidationError("化学品名称不能为空")
	}
	if utf8.RuneCountInString(name) > 100 {
		return shared.NewValidationError("化学品名称不能超过100个字符")
	}
	if attrs.WarningThreshold.IsNegative() {
		return shared.NewValidationError("预警阈值不能为负数")
	}
	if attrs.StorageLimit.IsNegative() {
		return shared.NewValidationError("存储上限不能为负数")
	}
	if attrs.StorageLimit.IsPositive() && attrs.StorageLimit.LessThan(attrs.WarningThreshold) {
		return shared.NewValidationError("存储上限不能低于预警阈值")
	}
	unit := strings.TrimSpace(attrs.Unit)
	if unit == "" {
		unit = "kg"
	}

	c.Name = name
	c.Category = strings.TrimSpace(attrs.Category)
	c.DangerLevel = strings.TrimSpace(attrs.DangerLevel)
	c.StorageCondition = strings.TrimSpace(attrs.StorageCondition)
	c.WarningThreshold = attrs.WarningThreshold
	c.StorageLimit = attrs.StorageLimit
	c.Unit = unit
	c.Description = attrs.Description
	return nil
}
