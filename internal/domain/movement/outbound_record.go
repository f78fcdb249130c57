package movement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OutboundRecord is a storage-out movement handed to a recipient
type OutboundRecord struct {
	Base
	BatchNo      string     `gorm:"type:varchar(50);index" json:"batchNo"`
	Recipient    string     `gorm:"type:varchar(100)" json:"recipient"`
	Purpose      string     `gorm:"type:varchar(200)" json:"purpose"`
	OutboundTime time.Time  `gorm:"not null;index" json:"outboundTime"`
	OperatorID   *uuid.UUID `gorm:"type:uuid" json:"operatorId"`
}

// OutboundDetails is the input for creating or changing an outbound record
type OutboundDetails struct {
	ChemicalID   uuid.UUID
	ChemicalName string
	Amount       decimal.Decimal
	Unit         string
	BatchNo      string
	Recipient    string
	Purpose      string
	OutboundTime time.Time
	OperatorID   *uuid.UUID
	Notes        string
}

// NewOutboundRecord creates an outbound record, defaulting the outbound time to now
func NewOutboundRecord(d OutboundDetails) (*OutboundRecord, error) {
	b, err := newBase(d.ChemicalID, d.ChemicalName, d.Amount, d.Unit, d.Notes)
	if err != nil {
		return nil, err
	}
	return &OutboundRecord{
		Base:         b,
		BatchNo:      d.BatchNo,
		Recipient:    d.Recipient,
		Purpose:      d.Purpose,
		OutboundTime: timeOrNow(d.OutboundTime),
		OperatorID:   d.OperatorID,
	}, nil
}

// Change applies new details; zero time and nil operator keep the current values
func (r *OutboundRecord) Change(d OutboundDetails) error {
	if err := r.change(d.ChemicalID, d.ChemicalName, d.Amount, d.Unit, d.Notes); err != nil {
		return err
	}
	r.BatchNo = d.BatchNo
	r.Recipient = d.Recipient
	r.Purpose = d.Purpose
	if !d.OutboundTime.IsZero() {
		r.OutboundTime = d.OutboundTime
	}
	if d.OperatorID != nil {
		r.OperatorID = d.OperatorID
	}
	return nil
}

func (OutboundRecord) TableName() string    { return "outbound_records" }
func (OutboundRecord) TimeColumn() string   { return "outbound_time" }
func (OutboundRecord) PartyColumn() string  { return "recipient" }
func (OutboundRecord) PersonColumn() string { return "operator_id" }

func (r *OutboundRecord) Direction() Direction  { return Outbound }
func (r *OutboundRecord) Kind() Kind            { return KindOutbound }
func (r *OutboundRecord) OccurredAt() time.Time { return r.OutboundTime }

// PersonID returns the operator who issued the chemical
func (r *OutboundRecord) PersonID() *uuid.UUID { return r.OperatorID }

// AttributeTo is a no-op; the recipient is free text
func (r *OutboundRecord) AttributeTo(string) {}

// Entry flattens the record for history listings
func (r *OutboundRecord) Entry() Entry { return r.entry(r, r.Recipient) }
