// Package pnl joins ledger positions against live balances to produce
// per-asset and aggregate unrealized profit/loss.
package pnl

import (
	"github.com/shopspring/decimal"

	"recallctl/internal/domain"
)

// Row is one reportable PNL line: a non-stable balance with a known cost
// basis.
type Row struct {
	Symbol      string
	Venue       string
	Quantity    decimal.Decimal
	AverageCost decimal.Decimal
	ValueUsd    decimal.Decimal
	Unrealized  decimal.Decimal
}

// Report is the reconciliation result. Rows keep the balance snapshot's
// iteration order so successive snapshots compare line by line.
type Report struct {
	Rows            []Row
	TotalUnrealized decimal.Decimal
}

// Reconciler computes unrealized PNL reports. Stateless and safe to reuse
// across independent snapshots.
type Reconciler struct {
	stables domain.StableSet
}

// New returns a reconciler that skips the given stable assets.
func New(stables domain.StableSet) *Reconciler {
	return &Reconciler{stables: stables}
}

// Reconcile values every balance entry against its tracked position.
//
// Entries are excluded, contributing nothing to rows or the total, when the
// symbol is stable, the held quantity is not positive, or the position table
// has no positive-quantity entry for the asset (a cost basis acquired
// outside the observed history cannot be compared against).
//
// The cost basis is valued at the *currently held* quantity, not the
// position's tracked quantity. The two diverge when disposals were clamped;
// the approximation is deliberate.
func (r *Reconciler) Reconcile(positions map[domain.AssetKey]*domain.Position, balances []domain.Balance) Report {
	report := Report{TotalUnrealized: decimal.Zero}

	for i := range balances {
		b := &balances[i]
		if r.stables.Contains(b.Symbol) {
			continue
		}
		if !b.Amount.IsPositive() {
			continue
		}

		pos, ok := positions[b.Key()]
		if !ok || !pos.IsPositive() {
			continue
		}

		avg := pos.AverageCost()
		basisNow := avg.Mul(b.Amount)
		unrealized := b.ValueUsd.Sub(basisNow)

		report.Rows = append(report.Rows, Row{
			Symbol:      b.Symbol,
			Venue:       b.Venue,
			Quantity:    b.Amount,
			AverageCost: avg,
			ValueUsd:    b.ValueUsd,
			Unrealized:  unrealized,
		})
		report.TotalUnrealized = report.TotalUnrealized.Add(unrealized)
	}

	return report
}
