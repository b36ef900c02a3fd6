package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recallctl/internal/domain"
)

var stables = domain.NewStableSet([]string{"USDC", "USDbC", "USDT"})

func buy(symbol, venue, amount, usd, ts string) domain.TradeRecord {
	return domain.TradeRecord{
		FromSymbol: "USDC",
		FromVenue:  venue,
		FromAmount: decimal.RequireFromString(usd),
		ToSymbol:   symbol,
		ToVenue:    venue,
		ToAmount:   decimal.RequireFromString(amount),
		ValueUsd:   decimal.RequireFromString(usd),
		Timestamp:  ts,
	}
}

func sell(symbol, venue, amount, usd, ts string) domain.TradeRecord {
	return domain.TradeRecord{
		FromSymbol: symbol,
		FromVenue:  venue,
		FromAmount: decimal.RequireFromString(amount),
		ToSymbol:   "USDC",
		ToVenue:    venue,
		ToAmount:   decimal.RequireFromString(usd),
		ValueUsd:   decimal.RequireFromString(usd),
		Timestamp:  ts,
	}
}

func TestPositions_StableOnlyHistoryIsEmpty(t *testing.T) {
	l := New(stables)

	trades := []domain.TradeRecord{
		{
			FromSymbol: "USDC", FromVenue: "polygon", FromAmount: decimal.NewFromInt(100),
			ToSymbol: "USDT", ToVenue: "polygon", ToAmount: decimal.NewFromInt(100),
			ValueUsd: decimal.NewFromInt(100), Timestamp: "2024-01-01T00:00:00Z",
		},
		{
			FromSymbol: "usdt", FromVenue: "base", FromAmount: decimal.NewFromInt(50),
			ToSymbol: "USDbC", ToVenue: "base", ToAmount: decimal.NewFromInt(50),
			ValueUsd: decimal.NewFromInt(50), Timestamp: "2024-01-02T00:00:00Z",
		},
	}

	assert.Empty(t, l.Positions(trades))
}

func TestPositions_AcquireThenFullDispose(t *testing.T) {
	l := New(stables)

	positions := l.Positions([]domain.TradeRecord{
		buy("WETH", "arbitrum", "10", "100", "2024-01-01T00:00:00Z"),
		sell("WETH", "arbitrum", "10", "101", "2024-01-02T00:00:00Z"),
	})

	p, ok := positions[domain.NewAssetKey("", "WETH", "arbitrum")]
	require.True(t, ok)
	assert.True(t, p.Quantity.IsZero())
	assert.True(t, p.CostUsd.IsZero())
}

func TestPositions_WeightedAverageReduction(t *testing.T) {
	l := New(stables)

	positions := l.Positions([]domain.TradeRecord{
		buy("WETH", "arbitrum", "10", "100", "2024-01-01T00:00:00Z"),
		sell("WETH", "arbitrum", "4", "41", "2024-01-02T00:00:00Z"),
	})

	p := positions[domain.NewAssetKey("", "WETH", "arbitrum")]
	require.NotNil(t, p)
	assert.True(t, p.Quantity.Equal(decimal.NewFromInt(6)))
	assert.True(t, p.CostUsd.Equal(decimal.NewFromInt(60)))
	assert.True(t, p.AverageCost().Equal(decimal.NewFromInt(10)))
}

func TestPositions_DisposalClampsAtZero(t *testing.T) {
	l := New(stables)

	positions := l.Positions([]domain.TradeRecord{
		buy("SOL", "solana", "3", "300", "2024-01-01T00:00:00Z"),
		sell("SOL", "solana", "8", "900", "2024-01-02T00:00:00Z"),
	})

	p := positions[domain.NewAssetKey("", "SOL", "solana")]
	require.NotNil(t, p)
	assert.True(t, p.Quantity.IsZero())
	assert.True(t, p.CostUsd.IsZero())
	assert.False(t, p.Quantity.IsNegative())
}

func TestPositions_DisposalWithoutAcquisitionIsIgnored(t *testing.T) {
	l := New(stables)

	positions := l.Positions([]domain.TradeRecord{
		sell("WBTC", "ethereum", "1", "60000", "2024-01-01T00:00:00Z"),
	})

	_, ok := positions[domain.NewAssetKey("", "WBTC", "ethereum")]
	assert.False(t, ok)
}

func TestPositions_OutOfOrderHistoryIsResorted(t *testing.T) {
	l := New(stables)

	// the sell arrives first but is timestamped after the buy
	positions := l.Positions([]domain.TradeRecord{
		sell("WETH", "arbitrum", "4", "44", "2024-01-02T00:00:00Z"),
		buy("WETH", "arbitrum", "10", "100", "2024-01-01T00:00:00Z"),
	})

	p := positions[domain.NewAssetKey("", "WETH", "arbitrum")]
	require.NotNil(t, p)
	assert.True(t, p.Quantity.Equal(decimal.NewFromInt(6)))
	assert.True(t, p.CostUsd.Equal(decimal.NewFromInt(60)))
}

func TestPositions_AddressTakesPriorityOverSymbol(t *testing.T) {
	l := New(stables)
	weth := "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"

	first := buy("WETH", "arbitrum", "1", "100", "2024-01-01T00:00:00Z")
	first.ToAddress = weth
	second := buy("weth", "arbitrum", "1", "110", "2024-01-02T00:00:00Z")
	second.ToAddress = "0x82af49447d8a07e3bd95bd0d56f35241523fbab1"

	positions := l.Positions([]domain.TradeRecord{first, second})
	require.Len(t, positions, 1)

	p := positions[domain.NewAssetKey(weth, "WETH", "arbitrum")]
	require.NotNil(t, p)
	assert.True(t, p.Quantity.Equal(decimal.NewFromInt(2)))
	assert.True(t, p.CostUsd.Equal(decimal.NewFromInt(210)))
}

func TestPositions_TokenToTokenSwapMovesBasis(t *testing.T) {
	l := New(stables)

	// WETH bought for $100, then swapped into WMATIC valued at $90
	positions := l.Positions([]domain.TradeRecord{
		buy("WETH", "arbitrum", "1", "100", "2024-01-01T00:00:00Z"),
		{
			FromSymbol: "WETH", FromVenue: "arbitrum", FromAmount: decimal.NewFromInt(1),
			ToSymbol: "WMATIC", ToVenue: "polygon", ToAmount: decimal.NewFromInt(200),
			ValueUsd: decimal.NewFromInt(90), Timestamp: "2024-01-02T00:00:00Z",
		},
	})

	weth := positions[domain.NewAssetKey("", "WETH", "arbitrum")]
	require.NotNil(t, weth)
	assert.True(t, weth.Quantity.IsZero())
	assert.True(t, weth.CostUsd.IsZero())

	wmatic := positions[domain.NewAssetKey("", "WMATIC", "polygon")]
	require.NotNil(t, wmatic)
	assert.True(t, wmatic.Quantity.Equal(decimal.NewFromInt(200)))
	assert.True(t, wmatic.CostUsd.Equal(decimal.NewFromInt(90)))
}

func TestPositions_ZeroAmountLegsAreNoOps(t *testing.T) {
	l := New(stables)

	positions := l.Positions([]domain.TradeRecord{
		{
			FromSymbol: "WETH", FromVenue: "arbitrum", FromAmount: decimal.Zero,
			ToSymbol: "WMATIC", ToVenue: "polygon", ToAmount: decimal.Zero,
			ValueUsd: decimal.NewFromInt(50), Timestamp: "2024-01-01T00:00:00Z",
		},
	})

	assert.Empty(t, positions)
}

func TestPositions_SameVenueSymbolTrackedPerVenue(t *testing.T) {
	l := New(stables)

	positions := l.Positions([]domain.TradeRecord{
		buy("WETH", "arbitrum", "1", "100", "2024-01-01T00:00:00Z"),
		buy("WETH", "base", "2", "190", "2024-01-02T00:00:00Z"),
	})

	require.Len(t, positions, 2)
	assert.True(t, positions[domain.NewAssetKey("", "WETH", "arbitrum")].Quantity.Equal(decimal.NewFromInt(1)))
	assert.True(t, positions[domain.NewAssetKey("", "WETH", "base")].Quantity.Equal(decimal.NewFromInt(2)))
}

func TestPositions_EmptyHistory(t *testing.T) {
	l := New(stables)
	assert.Empty(t, l.Positions(nil))
}
