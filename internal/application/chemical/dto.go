package chemical

import (
	"github.com/hazchem/backend/internal/domain/chemical"
	"github.com/shopspring/decimal"
)

// Request carries the editable fields of a chemical
type Request struct {
	Name             string          `json:"name" binding:"required,max=100"`
	Category         string          `json:"category" binding:"max=50"`
	DangerLevel      string          `json:"dangerLevel" binding:"max=20"`
	StorageCondition string          `json:"storageCondition" binding:"max=200"`
	WarningThreshold decimal.Decimal `json:"warningThreshold"`
	StorageLimit     decimal.Decimal `json:"storageLimit"`
	Unit             string          `json:"unit" binding:"max=20"`
	Description      string          `json:"description"`
}

func (r Request) attributes() chemical.Attributes {
	return chemical.Attributes{
		Name:             r.Name,
		Category:         r.Category,
		DangerLevel:      r.DangerLevel,
		StorageCondition: r.StorageCondition,
		WarningThreshold: r.WarningThreshold,
		StorageLimit:     r.StorageLimit,
		Unit:             r.Unit,
		Description:      r.Description,
	}
}

// ListQuery is the query of the chemical list
type ListQuery struct {
	Name        string `form:"name"`
	Category    string `form:"category"`
	DangerLevel string `form:"dangerLevel"`
	Current     int    `form:"current"`
	Size        int    `form:"size"`
	OrderBy     string `form:"orderBy"`
	OrderDir    string `form:"orderDir" binding:"omitempty,oneof=asc desc"`
}
