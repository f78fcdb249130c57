package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/hazchem/backend/internal/domain/chemical"
	"github.com/hazchem/backend/internal/domain/shared"
	"gorm.io/gorm"
)

var chemicalSortFields = sortColumns{
	"created_at":       "created_at",
	"createTime":       "created_at",
	"updated_at":       "updated_at",
	"updateTime":       "updated_at",
	"name":             "name",
	"category":         "category",
	"dangerLevel":      "danger_level",
	"warningThreshold": "warning_threshold",
}

// GormChemicalRepository implements chemical.Repository using GORM
type GormChemicalRepository struct {
	db *gorm.DB
}

// NewGormChemicalRepository creates a new GormChemicalRepository
func NewGormChemicalRepository(db *gorm.DB) *GormChemicalRepository {
	return &GormChemicalRepository{db: db}
}

// FindByID finds a chemical by its ID
func (r *GormChemicalRepository) FindByID(ctx context.Context, id uuid.UUID) (*chemical.Chemical, error) {
	var c chemical.Chemical
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// FindByIDs loads several chemicals at once, keyed by ID. Missing IDs are absent from the map.
func (r *GormChemicalRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*chemical.Chemical, error) {
	out := make(map[uuid.UUID]*chemical.Chemical, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []chemical.Chemical
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}

// FindByName finds a chemical by exact name
func (r *GormChemicalRepository) FindByName(ctx context.Context, name string) (*chemical.Chemical, error) {
	var c chemical.Chemical
	if err := r.db.WithContext(ctx).First(&c, "name = ?", strings.TrimSpace(name)).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// FindAll returns a page of chemicals and the total match count
func (r *GormChemicalRepository) FindAll(ctx context.Context, filter chemical.Filter) ([]chemical.Chemical, int64, error) {
	q := r.db.WithContext(ctx).Model(&chemical.Chemical{})
	q = whereContains(q, "name", filter.Name)
	q = whereContains(q, "category", filter.Category)
	if filter.DangerLevel != "" {
		q = q.Where("danger_level = ?", filter.DangerLevel)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		p := likePattern(s)
		q = q.Where(`(name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`, p, p)
	}
	return findPage[chemical.Chemical](q, filter.Filter, chemicalSortFields, "created_at")
}

// Save creates or updates a chemical
func (r *GormChemicalRepository) Save(ctx context.Context, c *chemical.Chemical) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormChemicalRepository) SaveWithLock(ctx context.Context, c *chemical.Chemical) error {
	result := r.db.WithContext(ctx).
		Model(c).
		Where("id = ? AND version = ?", c.ID, c.Version-1).
		Updates(map[string]any{
			"name":              c.Name,
			"category":          c.Category,
			"danger_level":      c.DangerLevel,
			"storage_condition": c.StorageCondition,
			"warning_threshold": c.WarningThreshold,
			"storage_limit":     c.StorageLimit,
			"unit":              c.Unit,
			"description":       c.Description,
			"version":           c.Version,
			"updated_at":        c.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes a chemical
func (r *GormChemicalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&chemical.Chemical{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByName checks whether another chemical already uses name
func (r *GormChemicalRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&chemical.Chemical{}).Where("name = ?", strings.TrimSpace(name))
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ chemical.Repository = (*GormChemicalRepository)(nil)
