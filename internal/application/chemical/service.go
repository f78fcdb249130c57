// Package chemical manages the hazardous-substance catalog.
package chemical

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	appinv "github.com/hazchem/backend/internal/application/inventory"
	"github.com/hazchem/backend/internal/domain/chemical"
	"github.com/hazchem/backend/internal/domain/movement"
	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/hazchem/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Service handles catalog CRUD. Changing thresholds re-derives the stock
// status of the chemical in the same transaction.
type Service struct {
	repos appinv.Repositories
	scope appinv.TransactionScope
}

// NewService creates a new Service
func NewService(repos appinv.Repositories, scope appinv.TransactionScope) *Service {
	return &Service{repos: repos, scope: scope}
}

// Create adds a chemical; names are unique
func (s *Service) Create(ctx context.Context, req Request) (*chemical.Chemical, error) {
	c, err := chemical.NewChemical(req.attributes())
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, s.repos, c.Name, nil); err != nil {
		return nil, err
	}
	if err := s.repos.Chemicals().Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save chemical: %w", err)
	}
	logger.FromContext(ctx).Info("chemical created",
		zap.String("chemical_id", c.ID.String()),
		zap.String("name", c.Name))
	return c, nil
}

// Update replaces the chemical's fields
func (s *Service) Update(ctx context.Context, id uuid.UUID, req Request) (*chemical.Chemical, error) {
	var updated *chemical.Chemical
	err := s.scope.Execute(ctx, func(repos appinv.Repositories) error {
		c, err := find(ctx, repos, id)
		if err != nil {
			return err
		}
		if err := c.Update(req.attributes()); err != nil {
			return err
		}
		if err := s.ensureNameFree(ctx, repos, c.Name, &c.ID); err != nil {
			return err
		}
		if err := repos.Chemicals().SaveWithLock(ctx, c); err != nil {
			return err
		}
		if err := repos.Inventories().RefreshStatus(ctx, c.ID, c.WarningThreshold, c.StorageLimit); err != nil {
			return fmt.Errorf("refresh inventory status: %w", err)
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("chemical updated", zap.String("chemical_id", id.String()))
	return updated, nil
}

// Delete removes a chemical. A chemical that still has stock or is named by
// movement records cannot be removed; an empty inventory row goes with it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.scope.Execute(ctx, func(repos appinv.Repositories) error {
		if _, err := find(ctx, repos, id); err != nil {
			return err
		}
		records, err := countRecords(ctx, repos, id)
		if err != nil {
			return err
		}
		if records > 0 {
			return shared.NewValidationError("该化学品有%d条出入库记录，不能删除", records)
		}
		inv, err := repos.Inventories().FindByChemical(ctx, id)
		switch {
		case errors.Is(err, shared.ErrNotFound):
		case err != nil:
			return err
		case inv.CurrentAmount.IsPositive():
			return shared.NewValidationError("该化学品仍有库存 %s %s，不能删除", inv.CurrentAmount.String(), inv.Unit)
		default:
			if err := repos.Inventories().Delete(ctx, inv.ID); err != nil {
				return fmt.Errorf("delete inventory: %w", err)
			}
		}
		return repos.Chemicals().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info("chemical deleted", zap.String("chemical_id", id.String()))
	return nil
}

// countRecords counts the storage, outbound and usage records of a chemical
func countRecords(ctx context.Context, repos appinv.Repositories, id uuid.UUID) (int64, error) {
	filter := movement.Filter{ChemicalID: &id}
	var total int64
	for _, count := range []func(context.Context, movement.Filter) (int64, error){
		repos.StorageRecords().Count,
		repos.OutboundRecords().Count,
		repos.UsageRecords().Count,
	} {
		n, err := count(ctx, filter)
		if err != nil {
			return 0, fmt.Errorf("count movement records: %w", err)
		}
		total += n
	}
	return total, nil
}

// Get returns a chemical by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*chemical.Chemical, error) {
	return find(ctx, s.repos, id)
}

// List returns a page of chemicals
func (s *Service) List(ctx context.Context, q ListQuery) (shared.Paginated[chemical.Chemical], error) {
	filter := chemical.Filter{
		Filter: shared.Filter{
			Page:     q.Current,
			PageSize: q.Size,
			OrderBy:  q.OrderBy,
			OrderDir: q.OrderDir,
		},
		Name:        q.Name,
		Category:    q.Category,
		DangerLevel: q.DangerLevel,
	}
	filter.Normalize()
	list, total, err := s.repos.Chemicals().FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[chemical.Chemical]{}, err
	}
	return shared.NewPaginated(list, total, filter.Page, filter.PageSize), nil
}

func (s *Service) ensureNameFree(ctx context.Context, repos appinv.Repositories, name string, self *uuid.UUID) error {
	exists, err := repos.Chemicals().ExistsByName(ctx, name, self)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError(shared.ErrAlreadyExists.Code, "化学品 "+name+" 已存在")
	}
	return nil
}

func find(ctx context.Context, repos appinv.Repositories, id uuid.UUID) (*chemical.Chemical, error) {
	c, err := repos.Chemicals().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("化学品")
		}
		return nil, err
	}
	return c, nil
}
