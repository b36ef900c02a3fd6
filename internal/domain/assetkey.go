// Package domain defines the core data structures of the operator console.
package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// AssetKey identifies a fungible asset on a specific venue. The on-chain
// address takes priority over the symbol: symbols collide across assets,
// addresses do not.
type AssetKey struct {
	Token string
	Venue string
}

// NewAssetKey builds the canonical key for an asset. EVM addresses are
// lowercased because checksum casing varies between API responses; other
// address formats (base58 on svm venues) are case-sensitive and kept as-is.
// With no address known the uppercased symbol is used.
func NewAssetKey(address, symbol, venue string) AssetKey {
	token := strings.TrimSpace(address)
	switch {
	case token == "":
		token = strings.ToUpper(strings.TrimSpace(symbol))
	case common.IsHexAddress(token):
		token = strings.ToLower(token)
	}

	return AssetKey{Token: token, Venue: venue}
}
