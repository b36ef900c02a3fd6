package domain

import "github.com/shopspring/decimal"

// Balance is one entry of the agent's current holdings as reported by the
// execution API, marked to market in USD.
type Balance struct {
	Symbol   string
	Address  string
	Venue    string
	Amount   decimal.Decimal
	ValueUsd decimal.Decimal
}

// Key returns the canonical asset key of the balance entry.
func (b *Balance) Key() AssetKey {
	return NewAssetKey(b.Address, b.Symbol, b.Venue)
}
