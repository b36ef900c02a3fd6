package domain

import "strings"

// StableSet is the set of symbols excluded from PNL accounting. Trades
// between two stables carry no speculative position and stable balances are
// never reported in the PNL table.
type StableSet map[string]struct{}

// NewStableSet builds a set from symbols, normalized to upper case.
func NewStableSet(symbols []string) StableSet {
	s := make(StableSet, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		s[sym] = struct{}{}
	}
	return s
}

// Contains reports whether symbol is a stable, case-insensitively.
func (s StableSet) Contains(symbol string) bool {
	_, ok := s[strings.ToUpper(strings.TrimSpace(symbol))]
	return ok
}
