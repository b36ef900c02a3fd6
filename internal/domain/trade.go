package domain

import "github.com/shopspring/decimal"

// TradeRecord is a single historical swap as reported by the execution API.
// Records are immutable; the ledger processes them in ascending Timestamp
// order, preserving arrival order when timestamps are missing or equal.
type TradeRecord struct {
	FromSymbol  string
	FromAddress string
	FromVenue   string
	FromAmount  decimal.Decimal
	ToSymbol    string
	ToAddress   string
	ToVenue     string
	ToAmount    decimal.Decimal
	// ValueUsd is the API's valuation of the traded notional at execution
	// time. Cost attribution assigns it entirely to the acquired side.
	ValueUsd  decimal.Decimal
	Timestamp string
	Reason    string
}

// FromKey returns the canonical key of the sold asset.
func (t *TradeRecord) FromKey() AssetKey {
	return NewAssetKey(t.FromAddress, t.FromSymbol, t.FromVenue)
}

// ToKey returns the canonical key of the acquired asset.
func (t *TradeRecord) ToKey() AssetKey {
	return NewAssetKey(t.ToAddress, t.ToSymbol, t.ToVenue)
}
