package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/hazchem/backend/internal/domain/identity"
	"github.com/hazchem/backend/internal/domain/shared"
	"gorm.io/gorm"
)

var personSortFields = sortColumns{
	"created_at": "created_at",
	"createTime": "created_at",
	"name":       "name",
	"department": "department",
	"position":   "position",
}

// GormPersonRepository implements identity.PersonRepository using GORM
type GormPersonRepository struct {
	db *gorm.DB
}

// NewGormPersonRepository creates a new GormPersonRepository
func NewGormPersonRepository(db *gorm.DB) *GormPersonRepository {
	return &GormPersonRepository{db: db}
}

// FindByID finds a person by ID
func (r *GormPersonRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Person, error) {
	var p identity.Person
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// FindByEmail finds a person by email, case-insensitively
func (r *GormPersonRepository) FindByEmail(ctx context.Context, email string) (*identity.Person, error) {
	var p identity.Person
	err := r.db.WithContext(ctx).
		First(&p, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// FindAll returns a page of people
func (r *GormPersonRepository) FindAll(ctx context.Context, filter identity.PersonFilter) ([]identity.Person, int64, error) {
	return findPage[identity.Person](r.filtered(ctx, filter), filter.Filter, personSortFields, "created_at")
}

// FindAllUnpaged returns every matching person, for exports
func (r *GormPersonRepository) FindAllUnpaged(ctx context.Context, filter identity.PersonFilter) ([]identity.Person, error) {
	var list []identity.Person
	err := r.filtered(ctx, filter).
		Order(personSortFields.column(filter.OrderBy, "created_at") + " " + sortDir(filter.OrderDir)).
		Find(&list).Error
	return list, err
}

func (r *GormPersonRepository) filtered(ctx context.Context, filter identity.PersonFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&identity.Person{})
	q = whereContains(q, "name", filter.Name)
	q = whereContains(q, "phone", filter.Phone)
	q = whereContains(q, "gender", filter.Gender)
	q = whereContains(q, "email", filter.Email)
	q = whereContains(q, "department", filter.Department)
	q = whereContains(q, "position", filter.Position)
	if filter.StartTime != nil {
		q = q.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		q = q.Where("created_at <= ?", *filter.EndTime)
	}
	return q
}

// ExistsByEmail reports whether an account already uses email
func (r *GormPersonRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&identity.Person{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&n).Error
	return n > 0, err
}

// Create inserts a person
func (r *GormPersonRepository) Create(ctx context.Context, p *identity.Person) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Save updates a person
func (r *GormPersonRepository) Save(ctx context.Context, p *identity.Person) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// Delete deletes a person
func (r *GormPersonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&identity.Person{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormRegisterRecordRepository stores registration audit rows
type GormRegisterRecordRepository struct {
	db *gorm.DB
}

// NewGormRegisterRecordRepository creates a new GormRegisterRecordRepository
func NewGormRegisterRecordRepository(db *gorm.DB) *GormRegisterRecordRepository {
	return &GormRegisterRecordRepository{db: db}
}

// Create inserts a register record
func (r *GormRegisterRecordRepository) Create(ctx context.Context, rec *identity.RegisterRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

var (
	_ identity.PersonRepository         = (*GormPersonRepository)(nil)
	_ identity.RegisterRecordRepository = (*GormRegisterRecordRepository)(nil)
)
