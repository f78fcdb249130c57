package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hazchem/backend/internal/domain/inventory"
	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var inventorySortFields = sortColumns{
	"created_at":    "inventories.created_at",
	"createTime":    "inventories.created_at",
	"updated_at":    "inventories.updated_at",
	"updateTime":    "inventories.updated_at",
	"currentAmount": "inventories.current_amount",
	"location":      "inventories.location",
	"status":        "inventories.status",
	"chemicalName":  "chemicals.name",
}

// GormInventoryRepository implements inventory.Repository using GORM
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// FindByID finds an inventory row by its ID
func (r *GormInventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Inventory, error) {
	var inv inventory.Inventory
	if err := r.db.WithContext(ctx).First(&inv, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

// FindByChemical finds the inventory row of a chemical
func (r *GormInventoryRepository) FindByChemical(ctx context.Context, chemicalID uuid.UUID) (*inventory.Inventory, error) {
	var inv inventory.Inventory
	if err := r.db.WithContext(ctx).First(&inv, "chemical_id = ?", chemicalID).Error; err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

// FindAll returns a page of inventory rows and the total match count
func (r *GormInventoryRepository) FindAll(ctx context.Context, filter inventory.Filter) ([]inventory.Inventory, int64, error) {
	return findPage[inventory.Inventory](r.filtered(ctx, filter), filter.Filter, inventorySortFields, "inventories.created_at")
}

// FindAllUnpaged returns every matching row, for exports and statistics
func (r *GormInventoryRepository) FindAllUnpaged(ctx context.Context, filter inventory.Filter) ([]inventory.Inventory, error) {
	var list []inventory.Inventory
	err := r.filtered(ctx, filter).
		Order(inventorySortFields.column(filter.OrderBy, "inventories.created_at") + " " + sortDir(filter.OrderDir)).
		Find(&list).Error
	return list, err
}

// FindBelowThreshold returns rows whose amount is under their chemical's warning threshold
func (r *GormInventoryRepository) FindBelowThreshold(ctx context.Context) ([]inventory.Inventory, error) {
	var list []inventory.Inventory
	err := r.db.WithContext(ctx).
		Joins("JOIN chemicals ON chemicals.id = inventories.chemical_id").
		Where("inventories.current_amount < chemicals.warning_threshold").
		Order("inventories.current_amount ASC").
		Find(&list).Error
	return list, err
}

func (r *GormInventoryRepository) filtered(ctx context.Context, filter inventory.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&inventory.Inventory{}).
		Joins("LEFT JOIN chemicals ON chemicals.id = inventories.chemical_id")
	if filter.ChemicalID != nil {
		q = q.Where("inventories.chemical_id = ?", *filter.ChemicalID)
	}
	if filter.Status != "" {
		q = q.Where("inventories.status = ?", filter.Status)
	}
	q = whereContains(q, "chemicals.name", filter.ChemicalName)
	q = whereContains(q, "inventories.location", filter.Location)
	if s := filter.Search; s != "" {
		p := likePattern(s)
		q = q.Where(`(chemicals.name LIKE ? ESCAPE '\' OR inventories.location LIKE ? ESCAPE '\')`, p, p)
	}
	if filter.StartTime != nil {
		q = q.Where("inventories.updated_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		q = q.Where("inventories.updated_at <= ?", *filter.EndTime)
	}
	return q
}

// Create inserts a new row. A second row for the same chemical violates
// idx_inventories_chemical and is reported as ErrAlreadyExists.
func (r *GormInventoryRepository) Create(ctx context.Context, inv *inventory.Inventory) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "chemical_id"}}, DoNothing: true}).
		Create(inv)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrAlreadyExists
	}
	return nil
}

// Save updates the descriptive columns of a row. The amount is included so
// that the administrative override can set it directly.
func (r *GormInventoryRepository) Save(ctx context.Context, inv *inventory.Inventory) error {
	result := r.db.WithContext(ctx).
		Model(&inventory.Inventory{}).
		Where("id = ?", inv.ID).
		Updates(map[string]any{
			"current_amount": inv.CurrentAmount,
			"unit":           inv.Unit,
			"location":       inv.Location,
			"status":         inv.Status,
			"updated_at":     inv.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes an inventory row
func (r *GormInventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&inventory.Inventory{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Increase adds amount to the chemical's row, creating the row first when
// the chemical has none. Both statements are safe under concurrent callers.
func (r *GormInventoryRepository) Increase(ctx context.Context, chemicalID uuid.UUID, amount decimal.Decimal, unit string) error {
	seed, err := inventory.NewInventory(chemicalID, decimal.Zero, unit, "")
	if err != nil {
		return err
	}
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "chemical_id"}}, DoNothing: true}).
		Create(seed).Error; err != nil {
		return err
	}

	return db.Model(&inventory.Inventory{}).
		Where("chemical_id = ?", chemicalID).
		Updates(map[string]any{
			"current_amount": gorm.Expr("current_amount + ?", amount),
			"updated_at":     time.Now(),
		}).Error
}

// DecreaseIfSufficient subtracts amount in one conditional UPDATE.
// Zero affected rows means the stock was short (or the row missing) and
// nothing changed.
func (r *GormInventoryRepository) DecreaseIfSufficient(ctx context.Context, chemicalID uuid.UUID, amount decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&inventory.Inventory{}).
		Where("chemical_id = ? AND current_amount >= ?", chemicalID, amount).
		Updates(map[string]any{
			"current_amount": gorm.Expr("current_amount - ?", amount),
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// TotalAmount sums the chemical's on-hand quantity
func (r *GormInventoryRepository) TotalAmount(ctx context.Context, chemicalID uuid.UUID) (decimal.Decimal, error) {
	var res struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&inventory.Inventory{}).
		Select("COALESCE(SUM(current_amount), 0) AS total").
		Where("chemical_id = ?", chemicalID).
		Scan(&res).Error
	if err != nil {
		return decimal.Zero, err
	}
	return res.Total, nil
}

// RefreshStatus re-derives the stored status in SQL so it reflects the amount
// just written, whatever concurrent writers did in between.
func (r *GormInventoryRepository) RefreshStatus(ctx context.Context, chemicalID uuid.UUID, threshold, limit decimal.Decimal) error {
	status := gorm.Expr("CASE WHEN current_amount < ? THEN ? ELSE ? END",
		threshold, string(inventory.StatusLow), string(inventory.StatusNormal))
	if limit.IsPositive() {
		status = gorm.Expr("CASE WHEN current_amount < ? THEN ? WHEN current_amount > ? THEN ? ELSE ? END",
			threshold, string(inventory.StatusLow), limit, string(inventory.StatusHigh), string(inventory.StatusNormal))
	}
	return r.db.WithContext(ctx).
		Model(&inventory.Inventory{}).
		Where("chemical_id = ?", chemicalID).
		Update("status", status).Error
}

var _ inventory.Repository = (*GormInventoryRepository)(nil)
