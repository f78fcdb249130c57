package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hazchem/backend/internal/domain/chemical"
	"github.com/hazchem/backend/internal/domain/inventory"
	"github.com/hazchem/backend/internal/domain/movement"
	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/hazchem/backend/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DefaultTrendDays is the trend window when the caller gives none
	DefaultTrendDays = 7
	// MaxTrendDays bounds how far back a trend is reconstructed
	MaxTrendDays = 90
	// DefaultHistoryLimit bounds the history of one inventory row
	DefaultHistoryLimit = 50
)

// Service handles inventory queries and the administrative inventory operations
type Service struct {
	repos      Repositories
	scope      TransactionScope
	reconciler *Reconciler
	now        func() time.Time
}

// NewService creates a new Service. repos serves reads; writes go through scope.
func NewService(repos Repositories, scope TransactionScope, reconciler *Reconciler) *Service {
	return &Service{
		repos:      repos,
		scope:      scope,
		reconciler: reconciler,
		now:        time.Now,
	}
}

// Create registers stock for a chemical. Each chemical has at most one row.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*inventory.Inventory, error) {
	var created *inventory.Inventory
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		c, err := findChemical(ctx, repos, req.ChemicalID)
		if err != nil {
			return err
		}
		unit := req.Unit
		if unit == "" {
			unit = c.Unit
		}
		inv, err := inventory.NewInventory(c.ID, req.CurrentAmount, unit, req.Location)
		if err != nil {
			return err
		}
		inv.Classify(c)
		if err := repos.Inventories().Create(ctx, inv); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				return shared.NewDomainError(shared.ErrAlreadyExists.Code, "该化学品的库存记录已存在")
			}
			return fmt.Errorf("create inventory: %w", err)
		}
		inv.Chemical = c
		created = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("inventory created",
		zap.String("inventory_id", created.ID.String()),
		zap.String("chemical_id", created.ChemicalID.String()),
	)
	return created, nil
}

// Update changes the location and unit of an inventory row
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*inventory.Inventory, error) {
	inv, err := s.find(ctx, s.repos, id)
	if err != nil {
		return nil, err
	}
	inv.Relocate(req.Location, req.Unit)
	if err := s.repos.Inventories().Save(ctx, inv); err != nil {
		return nil, fmt.Errorf("save inventory: %w", err)
	}
	return s.attach(ctx, inv)
}

// Delete removes an empty inventory row. Stock on hand is accounted for by
// movement records and leaves only through them.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	var removed *inventory.Inventory
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		inv, err := s.find(ctx, repos, id)
		if err != nil {
			return err
		}
		if inv.CurrentAmount.IsPositive() {
			return shared.NewValidationError("库存仍有 %s %s，不能删除", inv.CurrentAmount.String(), inv.Unit)
		}
		if err := repos.Inventories().Delete(ctx, id); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError("库存记录")
			}
			return fmt.Errorf("delete inventory: %w", err)
		}
		removed = inv
		return nil
	})
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info("inventory deleted",
		zap.String("inventory_id", removed.ID.String()),
		zap.String("chemical_id", removed.ChemicalID.String()),
	)
	return nil
}

// Get returns an inventory row with its chemical
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*inventory.Inventory, error) {
	inv, err := s.find(ctx, s.repos, id)
	if err != nil {
		return nil, err
	}
	return s.attach(ctx, inv)
}

// List returns a page of inventory rows with their chemicals
func (s *Service) List(ctx context.Context, f ListFilter) (shared.Paginated[inventory.Inventory], error) {
	filter := inventory.Filter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
		},
		ChemicalID:   f.ChemicalID,
		ChemicalName: f.ChemicalName,
		Location:     f.Location,
		Status:       f.Status,
	}
	filter.Normalize()

	list, total, err := s.repos.Inventories().FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[inventory.Inventory]{}, fmt.Errorf("list inventory: %w", err)
	}
	if err := s.attachAll(ctx, list); err != nil {
		return shared.Paginated[inventory.Inventory]{}, err
	}
	return shared.NewPaginated(list, total, filter.Page, filter.PageSize), nil
}

// SetAmount overwrites the on-hand amount of a row. This is an administrative
// correction: it bypasses reconciliation, so the row no longer equals the net
// of the movement records afterwards.
func (s *Service) SetAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*inventory.Inventory, error) {
	var updated *inventory.Inventory
	var previous decimal.Decimal
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		inv, err := s.find(ctx, repos, id)
		if err != nil {
			return err
		}
		c, err := findChemical(ctx, repos, inv.ChemicalID)
		if err != nil {
			return err
		}
		previous = inv.CurrentAmount
		if err := inv.SetAmount(amount); err != nil {
			return err
		}
		inv.Classify(c)
		if err := repos.Inventories().Save(ctx, inv); err != nil {
			return fmt.Errorf("save inventory: %w", err)
		}
		inv.Chemical = c
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Warn("inventory amount overridden outside reconciliation",
		zap.String("inventory_id", id.String()),
		zap.String("chemical_id", updated.ChemicalID.String()),
		zap.String("previous", previous.String()),
		zap.String("amount", amount.String()),
	)
	return updated, nil
}

// BelowThreshold lists rows whose amount is under the chemical's warning threshold
func (s *Service) BelowThreshold(ctx context.Context) ([]inventory.Inventory, error) {
	list, err := s.repos.Inventories().FindBelowThreshold(ctx)
	if err != nil {
		return nil, fmt.Errorf("find below threshold: %w", err)
	}
	if err := s.attachAll(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// BatchUpdate applies several row updates; either all of them succeed or none
func (s *Service) BatchUpdate(ctx context.Context, items []BatchUpdateItem) (int, error) {
	if len(items) == 0 {
		return 0, shared.NewValidationError("请选择要更新的记录")
	}
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		for i, item := range items {
			inv, err := s.find(ctx, repos, item.ID)
			if err != nil {
				return fmt.Errorf("item %d: %w", i+1, err)
			}
			inv.Relocate(item.Location, item.Unit)
			if item.CurrentAmount != nil {
				c, err := findChemical(ctx, repos, inv.ChemicalID)
				if err != nil {
					return fmt.Errorf("item %d: %w", i+1, err)
				}
				if err := inv.SetAmount(*item.CurrentAmount); err != nil {
					return fmt.Errorf("item %d: %w", i+1, err)
				}
				inv.Classify(c)
			}
			if err := repos.Inventories().Save(ctx, inv); err != nil {
				return fmt.Errorf("item %d: save inventory: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// StorageIn increases a chemical's stock without a movement record
func (s *Service) StorageIn(ctx context.Context, chemicalID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.adjust(ctx, chemicalID, func(repos Repositories) error {
		return s.reconciler.Increase(ctx, repos, chemicalID, amount)
	})
}

// StorageOut decreases a chemical's stock without a movement record
func (s *Service) StorageOut(ctx context.Context, chemicalID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.adjust(ctx, chemicalID, func(repos Repositories) error {
		return s.reconciler.Decrease(ctx, repos, chemicalID, amount)
	})
}

func (s *Service) adjust(ctx context.Context, chemicalID uuid.UUID, fn func(Repositories) error) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		if err := fn(repos); err != nil {
			return err
		}
		var err error
		total, err = s.reconciler.TotalAmount(ctx, repos, chemicalID)
		return err
	})
	return total, err
}

// TotalAmount returns a chemical's on-hand quantity
func (s *Service) TotalAmount(ctx context.Context, chemicalID uuid.UUID) (decimal.Decimal, error) {
	if _, err := findChemical(ctx, s.repos, chemicalID); err != nil {
		return decimal.Zero, err
	}
	return s.reconciler.TotalAmount(ctx, s.repos, chemicalID)
}

// ChemicalStock returns a chemical's total and its inventory rows
func (s *Service) ChemicalStock(ctx context.Context, chemicalID uuid.UUID) (*ChemicalStock, error) {
	c, err := findChemical(ctx, s.repos, chemicalID)
	if err != nil {
		return nil, err
	}
	total, err := s.reconciler.TotalAmount(ctx, s.repos, chemicalID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repos.Inventories().FindAllUnpaged(ctx, inventory.Filter{ChemicalID: &chemicalID})
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	if rows == nil {
		rows = []inventory.Inventory{}
	}
	return &ChemicalStock{
		ChemicalID:    c.ID,
		ChemicalName:  c.Name,
		TotalAmount:   total,
		InventoryList: rows,
	}, nil
}

// Statistics summarizes stock levels. Warning counts rows in the band just
// above the threshold; low counts rows below it.
func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	rows, err := s.repos.Inventories().FindAllUnpaged(ctx, inventory.Filter{})
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	chems, err := s.chemicalsOf(ctx, rows)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{TotalRecords: len(rows), TotalAmount: decimal.Zero}
	types := make(map[uuid.UUID]struct{}, len(rows))
	for _, inv := range rows {
		types[inv.ChemicalID] = struct{}{}
		stats.TotalAmount = stats.TotalAmount.Add(inv.CurrentAmount)
		c, ok := chems[inv.ChemicalID]
		if !ok {
			continue
		}
		switch inventory.DeriveStatus(inv.CurrentAmount, c.WarningThreshold, c.StorageLimit) {
		case inventory.StatusLow:
			stats.LowCount++
			stats.BelowThreshold++
		case inventory.StatusHigh:
			stats.HighCount++
		}
		if inventory.InWarningBand(inv.CurrentAmount, c.WarningThreshold) {
			stats.WarningCount++
		}
	}
	stats.TotalTypes = len(types)
	return stats, nil
}

// Check produces the inventory check sheet, lowest stock relative to threshold first
func (s *Service) Check(ctx context.Context, f ListFilter) ([]CheckItem, error) {
	rows, err := s.repos.Inventories().FindAllUnpaged(ctx, inventory.Filter{
		ChemicalID:   f.ChemicalID,
		ChemicalName: f.ChemicalName,
		Location:     f.Location,
		Status:       f.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	chems, err := s.chemicalsOf(ctx, rows)
	if err != nil {
		return nil, err
	}

	items := make([]CheckItem, 0, len(rows))
	for _, inv := range rows {
		item := CheckItem{
			InventoryID:   inv.ID,
			ChemicalID:    inv.ChemicalID,
			Location:      inv.Location,
			CurrentAmount: inv.CurrentAmount,
			Unit:          inv.Unit,
			Status:        inv.Status,
			LastUpdated:   inv.UpdatedAt,
		}
		if c, ok := chems[inv.ChemicalID]; ok {
			item.ChemicalName = c.Name
			item.Category = c.Category
			item.DangerLevel = c.DangerLevel
			item.StorageCondition = c.StorageCondition
			item.WarningThreshold = c.WarningThreshold
			item.StorageLimit = c.StorageLimit
			item.Status = inventory.DeriveStatus(inv.CurrentAmount, c.WarningThreshold, c.StorageLimit)
			item.Warning = inventory.InWarningBand(inv.CurrentAmount, c.WarningThreshold)
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return checkRank(items[i]) < checkRank(items[j])
	})
	return items, nil
}

func checkRank(item CheckItem) int {
	switch {
	case item.Status == inventory.StatusLow:
		return 0
	case item.Warning:
		return 1
	case item.Status == inventory.StatusHigh:
		return 2
	}
	return 3
}

// History lists the movements of the row's chemical, newest first
func (s *Service) History(ctx context.Context, id uuid.UUID, limit int) ([]movement.Entry, error) {
	inv, err := s.find(ctx, s.repos, id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	filter := movement.Filter{ChemicalID: &inv.ChemicalID}
	filter.PageSize = limit
	filter.Page = 1

	entries, err := s.movements(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].OccurredAt.After(entries[j].OccurredAt)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Trend reconstructs end-of-day totals for the last days days, today
// included. chemicalID narrows it to one chemical; nil covers all stock.
// Each day's total is the current total minus the net of every later movement.
// Records dated in the future are already in the current total and count as today.
func (s *Service) Trend(ctx context.Context, chemicalID *uuid.UUID, days int) ([]TrendPoint, error) {
	if days <= 0 {
		days = DefaultTrendDays
	}
	if days > MaxTrendDays {
		days = MaxTrendDays
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := today.AddDate(0, 0, -(days - 1))

	current, err := s.currentTotal(ctx, chemicalID)
	if err != nil {
		return nil, err
	}

	filter := movement.Filter{ChemicalID: chemicalID}
	filter.StartTime = &start
	entries, err := s.movements(ctx, filter)
	if err != nil {
		return nil, err
	}

	points := make([]TrendPoint, days)
	index := make(map[string]int, days)
	for i := range points {
		d := start.AddDate(0, 0, i).Format(time.DateOnly)
		points[i] = TrendPoint{Date: d, Inbound: decimal.Zero, Outbound: decimal.Zero}
		index[d] = i
	}
	for _, e := range entries {
		at := e.OccurredAt
		if at.After(now) {
			at = now
		}
		i, ok := index[at.In(now.Location()).Format(time.DateOnly)]
		if !ok {
			continue
		}
		if e.Delta.IsPositive() {
			points[i].Inbound = points[i].Inbound.Add(e.Amount)
		} else {
			points[i].Outbound = points[i].Outbound.Add(e.Amount)
		}
	}

	total := current
	for i := days - 1; i >= 0; i-- {
		points[i].Total = total
		total = total.Sub(points[i].Inbound).Add(points[i].Outbound)
	}
	return points, nil
}

func (s *Service) currentTotal(ctx context.Context, chemicalID *uuid.UUID) (decimal.Decimal, error) {
	if chemicalID != nil {
		return s.TotalAmount(ctx, *chemicalID)
	}
	rows, err := s.repos.Inventories().FindAllUnpaged(ctx, inventory.Filter{})
	if err != nil {
		return decimal.Zero, fmt.Errorf("list inventory: %w", err)
	}
	total := decimal.Zero
	for _, inv := range rows {
		total = total.Add(inv.CurrentAmount)
	}
	return total, nil
}

// movements gathers the three record types into one flat list
func (s *Service) movements(ctx context.Context, filter movement.Filter) ([]movement.Entry, error) {
	var entries []movement.Entry

	storage, err := listRecords(ctx, s.repos.StorageRecords(), filter)
	if err != nil {
		return nil, fmt.Errorf("list storage records: %w", err)
	}
	for i := range storage {
		r := &storage[i]
		entries = append(entries, r.Entry())
	}

	outbound, err := listRecords(ctx, s.repos.OutboundRecords(), filter)
	if err != nil {
		return nil, fmt.Errorf("list outbound records: %w", err)
	}
	for i := range outbound {
		r := &outbound[i]
		entries = append(entries, r.Entry())
	}

	usage, err := listRecords(ctx, s.repos.UsageRecords(), filter)
	if err != nil {
		return nil, fmt.Errorf("list usage records: %w", err)
	}
	for i := range usage {
		r := &usage[i]
		entries = append(entries, r.Entry())
	}
	return entries, nil
}

// listRecords pages when the filter asks for a page size and loads everything otherwise
func listRecords[T any](ctx context.Context, repo movement.Repository[T], filter movement.Filter) ([]T, error) {
	if filter.PageSize > 0 {
		list, _, err := repo.FindAll(ctx, filter)
		return list, err
	}
	return repo.FindAllUnpaged(ctx, filter)
}

func (s *Service) find(ctx context.Context, repos Repositories, id uuid.UUID) (*inventory.Inventory, error) {
	inv, err := repos.Inventories().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("库存记录")
		}
		return nil, err
	}
	return inv, nil
}

func (s *Service) attach(ctx context.Context, inv *inventory.Inventory) (*inventory.Inventory, error) {
	c, err := s.repos.Chemicals().FindByID(ctx, inv.ChemicalID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	inv.Chemical = c
	return inv, nil
}

func (s *Service) attachAll(ctx context.Context, list []inventory.Inventory) error {
	chems, err := s.chemicalsOf(ctx, list)
	if err != nil {
		return err
	}
	for i := range list {
		list[i].Chemical = chems[list[i].ChemicalID]
	}
	return nil
}

func (s *Service) chemicalsOf(ctx context.Context, list []inventory.Inventory) (map[uuid.UUID]*chemical.Chemical, error) {
	ids := make([]uuid.UUID, 0, len(list))
	for _, inv := range list {
		ids = append(ids, inv.ChemicalID)
	}
	chems, err := s.repos.Chemicals().FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load chemicals: %w", err)
	}
	return chems, nil
}

func findChemical(ctx context.Context, repos Repositories, id uuid.UUID) (*chemical.Chemical, error) {
	c, err := repos.Chemicals().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("化学品")
		}
		return nil, err
	}
	return c, nil
}
