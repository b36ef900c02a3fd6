package domain

import "github.com/shopspring/decimal"

// OrderRequest describes one swap submitted to the execution API. Token
// identifiers are address-or-symbol, venues are registry names.
type OrderRequest struct {
	FromToken string
	ToToken   string
	FromVenue string
	ToVenue   string
	Amount    decimal.Decimal
	Slippage  string
	Reason    string
}

// OrderResult is the settled outcome of one order as reported back by the
// execution API. Fire-and-report: a failed order is a result, not an error.
type OrderResult struct {
	Success    bool
	FromSymbol string
	ToSymbol   string
	FromAmount decimal.Decimal
	ToAmount   decimal.Decimal
	Price      decimal.Decimal
	ValueUsd   decimal.Decimal
	Reason     string
	Timestamp  string
}
