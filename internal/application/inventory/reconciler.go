package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hazchem/backend/internal/domain/shared"
	"github.com/hazchem/backend/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Reconciler keeps a chemical's on-hand quantity in step with its movements.
// Increase and Decrease run against the repositories they are given, so a
// caller holding a transaction gets the adjustment inside it.
type Reconciler struct {
	metrics Metrics
}

// NewReconciler creates a Reconciler. A nil metrics sink discards observations.
func NewReconciler(m Metrics) *Reconciler {
	if m == nil {
		m = nopMetrics{}
	}
	return &Reconciler{metrics: m}
}

// Increase adds amount to the chemical's stock. Zero is a successful no-op.
func (r *Reconciler) Increase(ctx context.Context, repos Repositories, chemicalID uuid.UUID, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewValidationError("增加数量不能为负数: %s", amount)
	}
	if amount.IsZero() {
		return nil
	}
	c, err := findChemical(ctx, repos, chemicalID)
	if err != nil {
		return err
	}

	if err := repos.Inventories().Increase(ctx, chemicalID, amount, c.Unit); err != nil {
		return fmt.Errorf("increase inventory: %w", err)
	}
	if err := repos.Inventories().RefreshStatus(ctx, chemicalID, c.WarningThreshold, c.StorageLimit); err != nil {
		return fmt.Errorf("refresh inventory status: %w", err)
	}

	r.metrics.StockIncreased(amount)
	logger.FromContext(ctx).Info("stock increased",
		zap.String("chemical_id", chemicalID.String()),
		zap.String("amount", amount.String()),
	)
	return nil
}

// Decrease subtracts amount when enough stock is on hand. A shortfall is
// reported as *shared.InsufficientStockError and nothing is changed.
// Zero is a successful no-op.
func (r *Reconciler) Decrease(ctx context.Context, repos Repositories, chemicalID uuid.UUID, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewValidationError("减少数量不能为负数: %s", amount)
	}
	if amount.IsZero() {
		return nil
	}
	c, err := findChemical(ctx, repos, chemicalID)
	if err != nil {
		return err
	}

	ok, err := repos.Inventories().DecreaseIfSufficient(ctx, chemicalID, amount)
	if err != nil {
		return fmt.Errorf("decrease inventory: %w", err)
	}
	if !ok {
		current, err := repos.Inventories().TotalAmount(ctx, chemicalID)
		if err != nil {
			return fmt.Errorf("read inventory total: %w", err)
		}
		r.metrics.StockRejected()
		logger.FromContext(ctx).Warn("stock decrease rejected",
			zap.String("chemical_id", chemicalID.String()),
			zap.String("current", current.String()),
			zap.String("requested", amount.String()),
		)
		return shared.NewInsufficientStockError(chemicalID.String(), current, amount)
	}
	if err := repos.Inventories().RefreshStatus(ctx, chemicalID, c.WarningThreshold, c.StorageLimit); err != nil {
		return fmt.Errorf("refresh inventory status: %w", err)
	}

	r.metrics.StockDecreased(amount)
	logger.FromContext(ctx).Info("stock decreased",
		zap.String("chemical_id", chemicalID.String()),
		zap.String("amount", amount.String()),
	)
	return nil
}

// Adjust applies a signed delta: positive increases, negative decreases
func (r *Reconciler) Adjust(ctx context.Context, repos Repositories, chemicalID uuid.UUID, delta decimal.Decimal) error {
	if delta.IsNegative() {
		return r.Decrease(ctx, repos, chemicalID, delta.Neg())
	}
	return r.Increase(ctx, repos, chemicalID, delta)
}

// TotalAmount returns the chemical's on-hand quantity, zero when it has no inventory
func (r *Reconciler) TotalAmount(ctx context.Context, repos Repositories, chemicalID uuid.UUID) (decimal.Decimal, error) {
	return repos.Inventories().TotalAmount(ctx, chemicalID)
}

// ReportGap logs a failed adjustment that followed a successful record write.
// Business rejections are expected outcomes and are not gaps.
func (r *Reconciler) ReportGap(ctx context.Context, recordID, chemicalID uuid.UUID, err error) {
	if IsBusinessError(err) {
		return
	}
	r.metrics.ReconciliationGap()
	logger.FromContext(ctx).Error("reconciliation gap: record written but inventory adjustment failed, rolling back",
		zap.String("record_id", recordID.String()),
		zap.String("chemical_id", chemicalID.String()),
		zap.Error(err),
	)
}

// IsBusinessError reports whether err is a domain outcome (validation,
// missing entity, insufficient stock) rather than a storage fault
func IsBusinessError(err error) bool {
	var de *shared.DomainError
	var ise *shared.InsufficientStockError
	return errors.As(err, &de) || errors.As(err, &ise)
}
