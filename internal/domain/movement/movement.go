// Package movement holds the records that move chemicals in and out of stock.
package movement

import (
	"time"

	"github.com/google/uuid"
	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Direction tells whether a record adds to or removes from stock
type Direction int

const (
	Inbound Direction = iota
	Outbound
)

// Kind names a record type in history listings
type Kind string

const (
	KindStorageIn Kind = "storage_in"
	KindOutbound  Kind = "outbound"
	KindUsage     Kind = "usage"
)

// Record is the part of a movement the reconciler needs
type Record interface {
	GetID() uuid.UUID
	GetChemicalID() uuid.UUID
	GetAmount() decimal.Decimal
	Direction() Direction
	Kind() Kind
	OccurredAt() time.Time
}

// Attributed is a record that names the person responsible for it
type Attributed interface {
	PersonID() *uuid.UUID
	// AttributeTo receives the name of the person PersonID refers to
	AttributeTo(name string)
}

// Table describes how a record type is stored so repositories can be shared.
// Implemented on the value receiver so a zero value can answer.
type Table interface {
	TableName() string
	TimeColumn() string
	PartyColumn() string
	PersonColumn() string
}

// ValidateAmount enforces a strictly positive movement amount
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("数量必须大于0")
	}
	return nil
}

// Signed returns the stock delta a record represents
func Signed(r Record) decimal.Decimal {
	if r.Direction() == Outbound {
		return r.GetAmount().Neg()
	}
	return r.GetAmount()
}

// Entry is a flattened movement used in inventory history
type Entry struct {
	ID           uuid.UUID       `json:"id"`
	Kind         Kind            `json:"type"`
	ChemicalID   uuid.UUID       `json:"chemicalId"`
	ChemicalName string          `json:"chemicalName"`
	Amount       decimal.Decimal `json:"amount"`
	Delta        decimal.Decimal `json:"delta"`
	Unit         string          `json:"unit"`
	Party        string          `json:"party"`
	OccurredAt   time.Time       `json:"time"`
}

// Base carries the fields every movement record has
type Base struct {
	shared.BaseEntity
	ChemicalID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"chemicalId"`
	ChemicalName string          `gorm:"type:varchar(100)" json:"chemicalName"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Unit         string          `gorm:"type:varchar(20);not null;default:'kg'" json:"unit"`
	Notes        string          `gorm:"type:text" json:"notes"`
}

// GetChemicalID returns the referenced chemical
func (b *Base) GetChemicalID() uuid.UUID { return b.ChemicalID }

// GetAmount returns the moved amount
func (b *Base) GetAmount() decimal.Decimal { return b.Amount }

func (b *Base) entry(r Record, party string) Entry {
	return Entry{
		ID:           b.ID,
		Kind:         r.Kind(),
		ChemicalID:   b.ChemicalID,
		ChemicalName: b.ChemicalName,
		Amount:       b.Amount,
		Delta:        Signed(r),
		Unit:         b.Unit,
		Party:        party,
		OccurredAt:   r.OccurredAt(),
	}
}

func newBase(chemicalID uuid.UUID, chemicalName string, amount decimal.Decimal, unit, notes string) (Base, error) {
	if chemicalID == uuid.Nil {
		return Base{}, shared.NewValidationError("化学品不能为空")
	}
	if err := ValidateAmount(amount); err != nil {
		return Base{}, err
	}
	if unit == "" {
		unit = "kg"
	}
	return Base{
		BaseEntity:   shared.NewBaseEntity(),
		ChemicalID:   chemicalID,
		ChemicalName: chemicalName,
		Amount:       amount,
		Unit:         unit,
		Notes:        notes,
	}, nil
}

func (b *Base) change(chemicalID uuid.UUID, chemicalName string, amount decimal.Decimal, unit, notes string) error {
	if chemicalID == uuid.Nil {
		return shared.NewValidationError("化学品不能为空")
	}
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	b.ChemicalID = chemicalID
	b.ChemicalName = chemicalName
	b.Amount = amount
	if unit != "" {
		b.Unit = unit
	}
	b.Notes = notes
	b.Touch()
	return nil
}

func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
