// Package ledger reconstructs per-asset cost basis from the agent's trade
// history using weighted-average-cost inventory accounting.
package ledger

import (
	"sort"

	"recallctl/internal/domain"
)

// Ledger builds position tables from trade history. It owns no state between
// invocations; Positions may be called repeatedly on independent snapshots.
type Ledger struct {
	stables domain.StableSet
}

// New returns a ledger that ignores positions in the given stable assets.
func New(stables domain.StableSet) *Ledger {
	return &Ledger{stables: stables}
}

// Positions replays the full trade history in ascending timestamp order and
// returns the weighted-average-cost position per asset key.
//
// Per record: a stable-to-stable swap is skipped outright; a non-stable
// received leg is an acquisition, adding the received quantity and the
// record's USD valuation to the destination position; a non-stable sent leg
// is a disposal, shrinking the source position at its blended average cost,
// clamped so no position ever goes negative. Disposal proceeds never feed a
// cost basis.
func (l *Ledger) Positions(trades []domain.TradeRecord) map[domain.AssetKey]*domain.Position {
	ordered := make([]domain.TradeRecord, len(trades))
	copy(ordered, trades)
	// stable sort keeps arrival order for missing or equal timestamps
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp < ordered[j].Timestamp
	})

	positions := make(map[domain.AssetKey]*domain.Position)

	for i := range ordered {
		t := &ordered[i]

		fromStable := l.stables.Contains(t.FromSymbol)
		toStable := l.stables.Contains(t.ToSymbol)
		if fromStable && toStable {
			continue
		}

		if !toStable && t.ToAmount.IsPositive() {
			key := t.ToKey()
			p, ok := positions[key]
			if !ok {
				p = &domain.Position{}
				positions[key] = p
			}
			p.Acquire(t.ToAmount, t.ValueUsd)
		}
		if !fromStable && t.FromAmount.IsPositive() {
			// a disposal with no tracked position has nothing to reduce
			if p, ok := positions[t.FromKey()]; ok {
				p.Dispose(t.FromAmount)
			}
		}
	}

	return positions
}
