package domain

import "github.com/shopspring/decimal"

// Position is a weighted-average-cost inventory position, owned exclusively
// by the ledger that built it. Quantity and CostUsd never go negative, and
// CostUsd is exactly zero whenever Quantity is zero.
type Position struct {
	Quantity decimal.Decimal
	CostUsd  decimal.Decimal
}

// Acquire adds quantity at the given USD cost to the position.
func (p *Position) Acquire(quantity, costUsd decimal.Decimal) {
	p.Quantity = p.Quantity.Add(quantity)
	p.CostUsd = p.CostUsd.Add(costUsd)
}

// Dispose reduces the position by quantity at the blended average cost.
// Disposing more than is tracked clamps at zero: the excess was acquired
// outside the observed trade history and carries no known cost basis.
func (p *Position) Dispose(quantity decimal.Decimal) {
	if !p.Quantity.IsPositive() {
		return
	}
	if quantity.GreaterThanOrEqual(p.Quantity) {
		p.Quantity = decimal.Zero
		p.CostUsd = decimal.Zero
		return
	}

	avg := p.CostUsd.Div(p.Quantity)
	p.Quantity = p.Quantity.Sub(quantity)
	p.CostUsd = p.CostUsd.Sub(avg.Mul(quantity))
}

// AverageCost returns the blended per-unit cost, zero when the position is
// empty.
func (p *Position) AverageCost() decimal.Decimal {
	if !p.Quantity.IsPositive() {
		return decimal.Zero
	}
	return p.CostUsd.Div(p.Quantity)
}

// IsPositive reports whether the position currently holds anything.
func (p *Position) IsPositive() bool {
	return p != nil && p.Quantity.IsPositive()
}
