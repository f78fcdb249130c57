package movement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UsageRecord is consumption of a chemical by a person.
// It reduces stock exactly like an outbound record.
type UsageRecord struct {
	Base
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"userId"`
	UserName  string     `gorm:"type:varchar(50)" json:"userName"`
	UsageTime time.Time  `gorm:"not null;index" json:"usageTime"`
	Purpose   string     `gorm:"type:varchar(200)" json:"usagePurpose"`
}

// UsageDetails is the input for creating or changing a usage record
type UsageDetails struct {
	ChemicalID   uuid.UUID
	ChemicalName string
	UserID       *uuid.UUID
	UserName     string
	Amount       decimal.Decimal
	Unit         string
	UsageTime    time.Time
	Purpose      string
	Notes        string
}

// NewUsageRecord creates a usage record, defaulting the usage time to now
func NewUsageRecord(d UsageDetails) (*UsageRecord, error) {
	b, err := newBase(d.ChemicalID, d.ChemicalName, d.Amount, d.Unit, d.Notes)
	if err != nil {
		return nil, err
	}
	return &UsageRecord{
		Base:      b,
		UserID:    d.UserID,
		UserName:  d.UserName,
		UsageTime: timeOrNow(d.UsageTime),
		Purpose:   d.Purpose,
	}, nil
}

// Change applies new details; a zero time keeps the current value
func (r *UsageRecord) Change(d UsageDetails) error {
	if err := r.change(d.ChemicalID, d.ChemicalName, d.Amount, d.Unit, d.Notes); err != nil {
		return err
	}
	r.UserID = d.UserID
	r.UserName = d.UserName
	r.Purpose = d.Purpose
	if !d.UsageTime.IsZero() {
		r.UsageTime = d.UsageTime
	}
	return nil
}

func (UsageRecord) TableName() string    { return "usage_records" }
func (UsageRecord) TimeColumn() string   { return "usage_time" }
func (UsageRecord) PartyColumn() string  { return "user_name" }
func (UsageRecord) PersonColumn() string { return "user_id" }

func (r *UsageRecord) Direction() Direction  { return Outbound }
func (r *UsageRecord) Kind() Kind            { return KindUsage }
func (r *UsageRecord) OccurredAt() time.Time { return r.UsageTime }

// PersonID returns the user who consumed the chemical
func (r *UsageRecord) PersonID() *uuid.UUID { return r.UserID }

// AttributeTo fills in the user name when the request gave none
func (r *UsageRecord) AttributeTo(name string) {
	if r.UserName == "" {
		r.UserName = name
	}
}

// Entry flattens the record for history listings
func (r *UsageRecord) Entry() Entry { return r.entry(r, r.UserName) }
