package movement

import (
	"time"

	"github.com/google/uuid"
	"github.com/hazchem/backend/internal/domain/movement"
	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/hazchem/backend/internal/infrastructure/transfer"
	"github.com/shopspring/decimal"
)

// StorageRequest creates or updates a storage-in record
type StorageRequest struct {
	ChemicalID  uuid.UUID       `json:"chemicalId" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Unit        string          `json:"unit" binding:"max=20"`
	BatchNo     string          `json:"batchNo" binding:"max=50"`
	Supplier    string          `json:"supplier" binding:"max=100"`
	StorageTime shared.DateTime `json:"storageTime"`
	OperatorID  *uuid.UUID      `json:"operatorId"`
	Notes       string          `json:"notes" binding:"max=500"`
}

// OutboundRequest creates or updates an outbound record
type OutboundRequest struct {
	ChemicalID   uuid.UUID       `json:"chemicalId" binding:"required"`
	Amount       decimal.Decimal `json:"amount"`
	Unit         string          `json:"unit" binding:"max=20"`
	BatchNo      string          `json:"batchNo" binding:"max=50"`
	Recipient    string          `json:"recipient" binding:"max=100"`
	Purpose      string          `json:"purpose" binding:"max=200"`
	OutboundTime shared.DateTime `json:"outboundTime"`
	OperatorID   *uuid.UUID      `json:"operatorId"`
	Notes        string          `json:"notes" binding:"max=500"`
}

// UsageRequest creates or updates a usage record
type UsageRequest struct {
	ChemicalID uuid.UUID       `json:"chemicalId" binding:"required"`
	UserID     *uuid.UUID      `json:"userId"`
	UserName   string          `json:"userName" binding:"max=50"`
	Amount     decimal.Decimal `json:"amount"`
	Unit       string          `json:"unit" binding:"max=20"`
	UsageTime  shared.DateTime `json:"usageTime"`
	Purpose    string          `json:"usagePurpose" binding:"max=200"`
	Notes      string          `json:"notes" binding:"max=500"`
}

// ListQuery is the query string of the record lists. Supplier, Recipient
// and UserName apply to the record type that has them.
type ListQuery struct {
	ChemicalID   *uuid.UUID `form:"-"` // IDs are parsed by the handler
	ChemicalName string     `form:"chemicalName"`
	Supplier     string     `form:"supplier"`
	Recipient    string     `form:"recipient"`
	UserName     string     `form:"userName"`
	OperatorID   *uuid.UUID `form:"-"`
	UserID       *uuid.UUID `form:"-"`
	Keyword      string     `form:"keyword"`
	StartTime    string     `form:"startTime"`
	EndTime      string     `form:"endTime"`
	Page         int        `form:"current"`
	PageSize     int        `form:"size"`
	OrderBy      string     `form:"orderBy"`
	OrderDir     string     `form:"orderDir" binding:"omitempty,oneof=asc desc"`
}

func (q ListQuery) filter(party string, person *uuid.UUID) (movement.Filter, error) {
	start, end, err := shared.ParseTimeRange(q.StartTime, q.EndTime)
	if err != nil {
		return movement.Filter{}, err
	}
	f := movement.Filter{
		ChemicalID:   q.ChemicalID,
		ChemicalName: q.ChemicalName,
		Party:        party,
		PersonID:     person,
	}
	f.Page = q.Page
	f.PageSize = q.PageSize
	f.OrderBy = q.OrderBy
	f.OrderDir = q.OrderDir
	f.Search = q.Keyword
	f.StartTime = start
	f.EndTime = end
	return f, nil
}

// Statistics summarizes one record type
type Statistics struct {
	MonthlyTotal decimal.Decimal `json:"monthlyTotal"`
	MonthlyCount int64           `json:"monthlyCount"`
	DailyTotal   decimal.Decimal `json:"dailyTotal"`
	DailyCount   int64           `json:"dailyCount"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	TotalCount   int64           `json:"totalCount"`
}

// ChemicalUsage is the usage total of one chemical over a period
type ChemicalUsage struct {
	ChemicalID   uuid.UUID       `json:"chemicalId"`
	ChemicalName string          `json:"chemicalName"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	StartTime    *time.Time      `json:"startTime"`
	EndTime      *time.Time      `json:"endTime"`
}

// ImportResult reports the outcome of a spreadsheet import. Imports are
// all-or-nothing: any row error means nothing was stored.
type ImportResult struct {
	Total    int                 `json:"total"`
	Imported int                 `json:"imported"`
	Errors   []transfer.RowError `json:"errors,omitempty"`
}
