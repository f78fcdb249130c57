package movement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	appinv "github.com/hazchem/backend/internal/application/inventory"
	"github.com/hazchem/backend/internal/domain/chemical"
	"github.com/hazchem/backend/internal/domain/movement"
	"github.com/hazchem/backend/internal/domain/shared"
)

// UsageService handles usage records. Usage reduces stock exactly like an
// outbound record.
type UsageService struct {
	flow        *flow[movement.UsageRecord, *movement.UsageRecord]
	defaultUser *uuid.UUID
}

// NewUsageService creates a UsageService. A request that gives only the
// user's ID gets the name from the person record.
func NewUsageService(repos appinv.Repositories, scope appinv.TransactionScope, reconciler *appinv.Reconciler, defaultUser *uuid.UUID) *UsageService {
	return &UsageService{
		flow:        newFlow[movement.UsageRecord, *movement.UsageRecord](names{"usage record", "使用记录", "使用人"}, repos, scope, reconciler, appinv.Repositories.UsageRecords),
		defaultUser: defaultUser,
	}
}

// Create stores a usage record and decreases stock. It fails with
// *shared.InsufficientStockError when stock is short.
func (s *UsageService) Create(ctx context.Context, req UsageRequest) (*movement.UsageRecord, error) {
	if req.UserID == nil {
		req.UserID = s.defaultUser
	}
	return s.flow.create(ctx, req.ChemicalID, func(c *chemical.Chemical) (*movement.UsageRecord, error) {
		return movement.NewUsageRecord(usageDetails(req, c))
	})
}

// Update changes a record with the same stock rules as an outbound record
func (s *UsageService) Update(ctx context.Context, id uuid.UUID, req UsageRequest) (*movement.UsageRecord, error) {
	return s.flow.update(ctx, id, req.ChemicalID, func(rec *movement.UsageRecord, c *chemical.Chemical) error {
		d := usageDetails(req, c)
		if d.UserID == nil {
			d.UserID = rec.UserID
		}
		if d.UserName == "" && samePerson(d.UserID, rec.UserID) {
			d.UserName = rec.UserName
		}
		return rec.Change(d)
	})
}

func usageDetails(req UsageRequest, c *chemical.Chemical) movement.UsageDetails {
	unit := req.Unit
	if unit == "" {
		unit = c.Unit
	}
	return movement.UsageDetails{
		ChemicalID:   c.ID,
		ChemicalName: c.Name,
		UserID:       req.UserID,
		UserName:     strings.TrimSpace(req.UserName),
		Amount:       req.Amount,
		Unit:         unit,
		UsageTime:    req.UsageTime.Time,
		Purpose:      req.Purpose,
		Notes:        req.Notes,
	}
}

// Delete removes a record and returns its amount to stock
func (s *UsageService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.flow.delete(ctx, id)
}

// Get returns a usage record
func (s *UsageService) Get(ctx context.Context, id uuid.UUID) (*movement.UsageRecord, error) {
	return s.flow.get(ctx, id)
}

// List returns a page of usage records
func (s *UsageService) List(ctx context.Context, q ListQuery) (shared.Paginated[movement.UsageRecord], error) {
	filter, err := q.filter(q.UserName, q.UserID)
	if err != nil {
		return shared.Paginated[movement.UsageRecord]{}, err
	}
	return s.flow.list(ctx, filter)
}

// Statistics returns daily, monthly and overall usage totals
func (s *UsageService) Statistics(ctx context.Context, chemicalID *uuid.UUID) (*Statistics, error) {
	return s.flow.statistics(ctx, movement.Filter{ChemicalID: chemicalID})
}

// ChemicalStatistics totals the usage of one chemical, optionally within a period
func (s *UsageService) ChemicalStatistics(ctx context.Context, chemicalID uuid.UUID, start, end *time.Time) (*ChemicalUsage, error) {
	c, err := resolveChemical(ctx, s.flow.repos, chemicalID)
	if err != nil {
		return nil, err
	}
	return s.usageOf(ctx, c, start, end)
}

// AmountByChemicalName totals the usage of the chemical with the given name
// between start and end
func (s *UsageService) AmountByChemicalName(ctx context.Context, name string, start, end *time.Time) (*ChemicalUsage, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("化学品名称不能为空")
	}
	c, err := s.flow.repos.Chemicals().FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("化学品")
		}
		return nil, err
	}
	return s.usageOf(ctx, c, start, end)
}

func (s *UsageService) usageOf(ctx context.Context, c *chemical.Chemical, start, end *time.Time) (*ChemicalUsage, error) {
	filter := movement.Filter{ChemicalID: &c.ID}
	filter.StartTime = start
	filter.EndTime = end
	total, err := s.flow.repos.UsageRecords().SumAmount(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("sum usage: %w", err)
	}
	return &ChemicalUsage{
		ChemicalID:   c.ID,
		ChemicalName: c.Name,
		TotalAmount:  total,
		StartTime:    start,
		EndTime:      end,
	}, nil
}
