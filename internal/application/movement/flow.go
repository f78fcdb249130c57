// Package movement implements the storage-in, outbound and usage services.
// Every write stores the record and adjusts inventory in one transaction.
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
	"github.com/hazchem/backend/internal/infrastructure/logger"
	"github.com/hazchem/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// record is satisfied by *StorageRecord, *OutboundRecord and *UsageRecord
type record[T any] interface {
	*T
	movement.Record
	movement.Attributed
}

// names labels a record type. resource goes to logs and spans, label and
// person into caller-facing messages.
type names struct {
	resource string
	label    string
	person   string
}

// flow holds the reconciliation logic shared by the three record types
type flow[T any, PT record[T]] struct {
	names
	repos      appinv.Repositories
	scope      appinv.TransactionScope
	reconciler *appinv.Reconciler
	repoOf     func(appinv.Repositories) movement.Repository[T]
	now        func() time.Time
}

func newFlow[T any, PT record[T]](
	n names,
	repos appinv.Repositories,
	scope appinv.TransactionScope,
	reconciler *appinv.Reconciler,
	repoOf func(appinv.Repositories) movement.Repository[T],
) *flow[T, PT] {
	return &flow[T, PT]{
		names:      n,
		repos:      repos,
		scope:      scope,
		reconciler: reconciler,
		repoOf:     repoOf,
		now:        time.Now,
	}
}

// create builds the record from its resolved chemical, stores it and applies
// its effect on stock. Outbound records are checked for sufficiency first.
func (f *flow[T, PT]) create(ctx context.Context, chemicalID uuid.UUID, build func(c *chemical.Chemical) (PT, error)) (_ PT, err error) {
	ctx, span := f.startSpan(ctx, "create", attribute.String("chemical_id", chemicalID.String()))
	defer func() { telemetry.End(span, err) }()

	var created PT
	err = f.scope.Execute(ctx, func(repos appinv.Repositories) error {
		c, err := resolveChemical(ctx, repos, chemicalID)
		if err != nil {
			return err
		}
		rec, err := build(c)
		if err != nil {
			return err
		}
		if err := f.attribute(ctx, repos, rec); err != nil {
			return err
		}
		if err := f.insert(ctx, repos, rec); err != nil {
			return err
		}
		created = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info(f.resource+" created",
		zap.String("record_id", created.GetID().String()),
		zap.String("chemical_id", created.GetChemicalID().String()),
		zap.String("amount", created.GetAmount().String()),
	)
	return created, nil
}

func (f *flow[T, PT]) insert(ctx context.Context, repos appinv.Repositories, rec PT) error {
	if rec.Direction() == movement.Outbound {
		if err := ensureSufficient(ctx, repos, rec.GetChemicalID(), rec.GetAmount()); err != nil {
			return err
		}
	}
	if err := f.repoOf(repos).Create(ctx, (*T)(rec)); err != nil {
		return fmt.Errorf("create %s: %w", f.resource, err)
	}
	if err := f.reconciler.Adjust(ctx, repos, rec.GetChemicalID(), movement.Signed(rec)); err != nil {
		f.reconciler.ReportGap(ctx, rec.GetID(), rec.GetChemicalID(), err)
		return err
	}
	return nil
}

// createBatch stores every record or none of them
func (f *flow[T, PT]) createBatch(ctx context.Context, drafts []Draft[T, PT]) (_ []PT, err error) {
	if len(drafts) == 0 {
		return nil, shared.NewValidationError("没有要新增的记录")
	}
	ctx, span := f.startSpan(ctx, "create_batch", attribute.Int("count", len(drafts)))
	defer func() { telemetry.End(span, err) }()

	created := make([]PT, 0, len(drafts))
	err = f.scope.Execute(ctx, func(repos appinv.Repositories) error {
		chems := make(map[uuid.UUID]*chemical.Chemical)
		records := make([]*T, 0, len(drafts))
		for i, d := range drafts {
			c, ok := chems[d.ChemicalID]
			if !ok {
				var err error
				if c, err = resolveChemical(ctx, repos, d.ChemicalID); err != nil {
					return fmt.Errorf("record %d: %w", i+1, err)
				}
				chems[d.ChemicalID] = c
			}
			rec, err := d.Build(c)
			if err != nil {
				return fmt.Errorf("record %d: %w", i+1, err)
			}
			if err := f.attribute(ctx, repos, rec); err != nil {
				return fmt.Errorf("record %d: %w", i+1, err)
			}
			records = append(records, (*T)(rec))
			created = append(created, rec)
		}

		if err := f.repoOf(repos).CreateBatch(ctx, records); err != nil {
			return fmt.Errorf("create %s batch: %w", f.resource, err)
		}
		for i, rec := range created {
			if err := f.reconciler.Adjust(ctx, repos, rec.GetChemicalID(), movement.Signed(rec)); err != nil {
				f.reconciler.ReportGap(ctx, rec.GetID(), rec.GetChemicalID(), err)
				return fmt.Errorf("record %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info(f.resource+" batch created", zap.Int("count", len(created)))
	return created, nil
}

// update applies change to the stored record and moves its effect on stock.
// With the same chemical only the difference is applied; a changed chemical
// has the old effect reversed and the new one applied.
func (f *flow[T, PT]) update(ctx context.Context, id, chemicalID uuid.UUID, change func(rec PT, c *chemical.Chemical) error) (_ PT, err error) {
	ctx, span := f.startSpan(ctx, "update", attribute.String("record_id", id.String()))
	defer func() { telemetry.End(span, err) }()

	var updated PT
	err = f.scope.Execute(ctx, func(repos appinv.Repositories) error {
		rec, err := f.find(ctx, repos, id)
		if err != nil {
			return err
		}
		oldChemical := rec.GetChemicalID()
		oldEffect := movement.Signed(rec)
		oldPerson := rec.PersonID()

		c, err := resolveChemical(ctx, repos, chemicalID)
		if err != nil {
			return err
		}
		if err := change(rec, c); err != nil {
			return err
		}
		if !samePerson(oldPerson, rec.PersonID()) {
			if err := f.attribute(ctx, repos, rec); err != nil {
				return err
			}
		}
		if err := f.repoOf(repos).Save(ctx, (*T)(rec)); err != nil {
			return fmt.Errorf("save %s: %w", f.resource, err)
		}

		newEffect := movement.Signed(rec)
		if oldChemical == rec.GetChemicalID() {
			err = f.reconciler.Adjust(ctx, repos, oldChemical, newEffect.Sub(oldEffect))
		} else {
			err = f.move(ctx, repos, oldChemical, oldEffect, rec.GetChemicalID(), newEffect)
		}
		if err != nil {
			f.reconciler.ReportGap(ctx, rec.GetID(), rec.GetChemicalID(), err)
			return err
		}
		updated = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info(f.resource+" updated",
		zap.String("record_id", updated.GetID().String()),
		zap.String("chemical_id", updated.GetChemicalID().String()),
		zap.String("amount", updated.GetAmount().String()),
	)
	return updated, nil
}

func (f *flow[T, PT]) move(ctx context.Context, repos appinv.Repositories, from uuid.UUID, fromEffect decimal.Decimal, to uuid.UUID, toEffect decimal.Decimal) error {
	if err := f.reconciler.Adjust(ctx, repos, from, fromEffect.Neg()); err != nil {
		return err
	}
	return f.reconciler.Adjust(ctx, repos, to, toEffect)
}

// delete removes the record and reverses its effect on stock
func (f *flow[T, PT]) delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := f.startSpan(ctx, "delete", attribute.String("record_id", id.String()))
	defer func() { telemetry.End(span, err) }()

	var deleted PT
	err = f.scope.Execute(ctx, func(repos appinv.Repositories) error {
		rec, err := f.find(ctx, repos, id)
		if err != nil {
			return err
		}
		if err := f.repoOf(repos).Delete(ctx, id); err != nil {
			return fmt.Errorf("delete %s: %w", f.resource, err)
		}
		if err := f.reconciler.Adjust(ctx, repos, rec.GetChemicalID(), movement.Signed(rec).Neg()); err != nil {
			f.reconciler.ReportGap(ctx, rec.GetID(), rec.GetChemicalID(), err)
			return err
		}
		deleted = rec
		return nil
	})
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info(f.resource+" deleted",
		zap.String("record_id", deleted.GetID().String()),
		zap.String("chemical_id", deleted.GetChemicalID().String()),
		zap.String("amount", deleted.GetAmount().String()),
	)
	return nil
}

func (f *flow[T, PT]) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return telemetry.StartSpan(ctx, strings.ReplaceAll(f.resource, " ", "_")+"."+op, attrs...)
}

func (f *flow[T, PT]) get(ctx context.Context, id uuid.UUID) (PT, error) {
	return f.find(ctx, f.repos, id)
}

func (f *flow[T, PT]) find(ctx context.Context, repos appinv.Repositories, id uuid.UUID) (PT, error) {
	rec, err := f.repoOf(repos).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError(f.label)
		}
		return nil, err
	}
	return PT(rec), nil
}

func (f *flow[T, PT]) list(ctx context.Context, filter movement.Filter) (shared.Paginated[T], error) {
	filter.Normalize()
	records, total, err := f.repoOf(f.repos).FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[T]{}, fmt.Errorf("list %s: %w", f.resource, err)
	}
	return shared.NewPaginated(records, total, filter.Page, filter.PageSize), nil
}

func (f *flow[T, PT]) listAll(ctx context.Context, filter movement.Filter) ([]T, error) {
	records, err := f.repoOf(f.repos).FindAllUnpaged(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", f.resource, err)
	}
	return records, nil
}

// statistics sums amounts and counts records for today, this month and all time
func (f *flow[T, PT]) statistics(ctx context.Context, base movement.Filter) (*Statistics, error) {
	now := f.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	repo := f.repoOf(f.repos)

	stats := &Statistics{}
	var err error
	if stats.TotalAmount, err = repo.SumAmount(ctx, base); err != nil {
		return nil, fmt.Errorf("sum %s: %w", f.resource, err)
	}
	if stats.TotalCount, err = repo.Count(ctx, base); err != nil {
		return nil, fmt.Errorf("count %s: %w", f.resource, err)
	}
	month := base.Between(monthStart, now)
	if stats.MonthlyTotal, err = repo.SumAmount(ctx, month); err != nil {
		return nil, fmt.Errorf("sum monthly %s: %w", f.resource, err)
	}
	if stats.MonthlyCount, err = repo.Count(ctx, month); err != nil {
		return nil, fmt.Errorf("count monthly %s: %w", f.resource, err)
	}
	day := base.Between(dayStart, now)
	if stats.DailyTotal, err = repo.SumAmount(ctx, day); err != nil {
		return nil, fmt.Errorf("sum daily %s: %w", f.resource, err)
	}
	if stats.DailyCount, err = repo.Count(ctx, day); err != nil {
		return nil, fmt.Errorf("count daily %s: %w", f.resource, err)
	}
	return stats, nil
}

// attribute checks that the person a record names exists and hands its name
// to the record
func (f *flow[T, PT]) attribute(ctx context.Context, repos appinv.Repositories, rec PT) error {
	id := rec.PersonID()
	if id == nil {
		return nil
	}
	p, err := repos.Persons().FindByID(ctx, *id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError(f.person)
		}
		return fmt.Errorf("load person: %w", err)
	}
	rec.AttributeTo(p.Name)
	return nil
}

func samePerson(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Draft is a record waiting for its chemical to be resolved
type Draft[T any, PT record[T]] struct {
	ChemicalID uuid.UUID
	Build      func(c *chemical.Chemical) (PT, error)
}

// ensureSufficient rejects a decrease the stock cannot cover. The atomic
// decrement still guards against a concurrent writer passing this check.
func ensureSufficient(ctx context.Context, repos appinv.Repositories, chemicalID uuid.UUID, amount decimal.Decimal) error {
	total, err := repos.Inventories().TotalAmount(ctx, chemicalID)
	if err != nil {
		return fmt.Errorf("read inventory total: %w", err)
	}
	if total.LessThan(amount) {
		return shared.NewInsufficientStockError(chemicalID.String(), total, amount)
	}
	return nil
}

func resolveChemical(ctx context.Context, repos appinv.Repositories, id uuid.UUID) (*chemical.Chemical, error) {
	if id == uuid.Nil {
		return nil, shared.NewValidationError("化学品不能为空")
	}
	c, err := repos.Chemicals().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("化学品")
		}
		return nil, err
	}
	return c, nil
}
