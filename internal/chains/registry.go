// Package chains holds the venue metadata table: the networks the execution
// API can settle on, their chain family, and the canonical USDC address used
// as the quote asset for buy/sell flows.
package chains

import (
	"strings"

	"github.com/pkg/errors"
)

// Venue describes one execution network.
type Venue struct {
	Name     string `yaml:"name"`
	Family   string `yaml:"family"`
	Specific string `yaml:"specific"`
	USDC     string `yaml:"usdc"`
}

// Registry is an ordered venue table. Iteration order is the declaration
// order, so menus and reports are stable run to run.
type Registry struct {
	venues []Venue
	byName map[string]Venue
}

// Default returns the built-in venue table.
func Default() *Registry {
	return New([]Venue{
		{Name: "ethereum", Family: "evm", Specific: "eth", USDC: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"},
		{Name: "arbitrum", Family: "evm", Specific: "arbitrum", USDC: "0xaf88d065e77c8cC2239327C5EDb3A432268e5831"},
		{Name: "polygon", Family: "evm", Specific: "polygon", USDC: "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"},
		{Name: "base", Family: "evm", Specific: "base", USDC: "0xd9aAEc86B65D86f6A7B5B1b0c42FFA531710b6CA"},
		{Name: "avalanche", Family: "evm", Specific: "avax", USDC: "0xB97EF9Ef8734C71904D8002F8b6Bc66Dd9c48a6E"},
		{Name: "optimism", Family: "evm", Specific: "optimism", USDC: "0x7f5c764cbc14f9669b88837ca1490cca17c31607"},
		{Name: "solana", Family: "svm", Specific: "mainnet", USDC: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"},
	})
}

// New builds a registry from an explicit venue list.
func New(venues []Venue) *Registry {
	r := &Registry{
		venues: make([]Venue, 0, len(venues)),
		byName: make(map[string]Venue, len(venues)),
	}
	for _, v := range venues {
		name := strings.ToLower(strings.TrimSpace(v.Name))
		if name == "" {
			continue
		}
		v.Name = name
		if _, dup := r.byName[name]; dup {
			continue
		}
		r.venues = append(r.venues, v)
		r.byName[name] = v
	}
	return r
}

// Get looks a venue up by name, case-insensitively.
func (r *Registry) Get(name string) (Venue, bool) {
	v, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return v, ok
}

// MustGet is Get with an error for flows that cannot proceed without the
// venue.
func (r *Registry) MustGet(name string) (Venue, error) {
	v, ok := r.Get(name)
	if !ok {
		return Venue{}, errors.Errorf("unknown venue %q", name)
	}
	return v, nil
}

// Names returns the venue names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.venues))
	for i, v := range r.venues {
		names[i] = v.Name
	}
	return names
}

// USDC returns the canonical USDC address on the venue.
func (r *Registry) USDC(name string) (string, error) {
	v, err := r.MustGet(name)
	if err != nil {
		return "", err
	}
	if v.USDC == "" {
		return "", errors.Errorf("venue %q has no USDC address configured", name)
	}
	return v.USDC, nil
}
