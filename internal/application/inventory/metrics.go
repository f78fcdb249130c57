package inventory

import "github.com/shopspring/decimal"

// Metrics receives reconciliation outcomes
type Metrics interface {
	StockIncreased(amount decimal.Decimal)
	StockDecreased(amount decimal.Decimal)
	StockRejected()
	ReconciliationGap()
}

type nopMetrics struct{}

func (nopMetrics) StockIncreased(decimal.Decimal) {}
func (nopMetrics) StockDecreased(decimal.Decimal) {}
func (nopMetrics) StockRejected()                 {}
func (nopMetrics) ReconciliationGap()             {}
