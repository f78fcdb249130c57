package movement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StorageRecord is an inbound movement
type StorageRecord struct {
	Base
	BatchNo     string     `gorm:"type:varchar(50);index" json:"batchNo"`
	Supplier    string     `gorm:"type:varchar(100)" json:"supplier"`
	StorageTime time.Time  `gorm:"not null;index" json:"storageTime"`
	OperatorID  *uuid.UUID `gorm:"type:uuid" json:"operatorId"`
}

// StorageDetails is the input for creating or changing a storage record
type StorageDetails struct {
	ChemicalID   uuid.UUID
	ChemicalName string
	Amount       decimal.Decimal
	Unit         string
	BatchNo      string
	Supplier     string
	StorageTime  time.Time
	OperatorID   *uuid.UUID
	Notes        string
}

// NewStorageRecord creates a storage-in record, defaulting the storage time to now
func NewStorageRecord(d StorageDetails) (*StorageRecord, error) {
	b, err := newBase(d.ChemicalID, d.ChemicalName, d.Amount, d.Unit, d.Notes)
	if err != nil {
		return nil, err
	}
	return &StorageRecord{
		Base:        b,
		BatchNo:     d.BatchNo,
		Supplier:    d.Supplier,
		StorageTime: timeOrNow(d.StorageTime),
		OperatorID:  d.OperatorID,
	}, nil
}

// Change applies new details; zero time and nil operator keep the current values
func (r *StorageRecord) Change(d StorageDetails) error {
	if err := r.change(d.ChemicalID, d.ChemicalName, d.Amount, d.Unit, d.Notes); err != nil {
		return err
	}
	r.BatchNo = d.BatchNo
	r.Supplier = d.Supplier
	if !d.StorageTime.IsZero() {
		r.StorageTime = d.StorageTime
	}
	if d.OperatorID != nil {
		r.OperatorID = d.OperatorID
	}
	return nil
}

func (StorageRecord) TableName() string    { return "storage_records" }
func (StorageRecord) TimeColumn() string   { return "storage_time" }
func (StorageRecord) PartyColumn() string  { return "supplier" }
func (StorageRecord) PersonColumn() string { return "operator_id" }

func (r *StorageRecord) Direction() Direction  { return Inbound }
func (r *StorageRecord) Kind() Kind            { return KindStorageIn }
func (r *StorageRecord) OccurredAt() time.Time { return r.StorageTime }

// PersonID returns the operator who took the delivery
func (r *StorageRecord) PersonID() *uuid.UUID { return r.OperatorID }

// AttributeTo is a no-op; storage records keep only the operator ID
func (r *StorageRecord) AttributeTo(string) {}

// Entry flattens the record for history listings
func (r *StorageRecord) Entry() Entry { return r.entry(r, r.Supplier) }
