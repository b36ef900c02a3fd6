package pnl

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recallctl/internal/domain"
	"recallctl/internal/ledger"
)

var stables = domain.NewStableSet([]string{"USDC", "USDbC", "USDT"})

func TestReconcile_EndToEnd(t *testing.T) {
	// acquire 10 units for $100, dispose 4, hold 6 now worth $75
	l := ledger.New(stables)
	positions := l.Positions([]domain.TradeRecord{
		{
			FromSymbol: "USDC", FromVenue: "arbitrum", FromAmount: decimal.NewFromInt(100),
			ToSymbol: "WETH", ToVenue: "arbitrum", ToAmount: decimal.NewFromInt(10),
			ValueUsd: decimal.NewFromInt(100), Timestamp: "2024-01-01T00:00:00Z",
		},
		{
			FromSymbol: "WETH", FromVenue: "arbitrum", FromAmount: decimal.NewFromInt(4),
			ToSymbol: "USDC", ToVenue: "arbitrum", ToAmount: decimal.NewFromInt(40),
			ValueUsd: decimal.NewFromInt(40), Timestamp: "2024-01-02T00:00:00Z",
		},
	})

	report := New(stables).Reconcile(positions, []domain.Balance{
		{Symbol: "WETH", Venue: "arbitrum", Amount: decimal.NewFromInt(6), ValueUsd: decimal.NewFromInt(75)},
	})

	require.Len(t, report.Rows, 1)
	row := report.Rows[0]
	assert.True(t, row.AverageCost.Equal(decimal.NewFromInt(10)), "avg cost: %s", row.AverageCost)
	assert.True(t, row.Unrealized.Equal(decimal.NewFromInt(15)), "unrealized: %s", row.Unrealized)
	assert.True(t, report.TotalUnrealized.Equal(decimal.NewFromInt(15)))
}

func TestReconcile_Exclusions(t *testing.T) {
	key := domain.NewAssetKey("", "WETH", "arbitrum")
	positions := map[domain.AssetKey]*domain.Position{
		key: {Quantity: decimal.NewFromInt(2), CostUsd: decimal.NewFromInt(100)},
		domain.NewAssetKey("", "SOL", "solana"): {Quantity: decimal.Zero, CostUsd: decimal.Zero},
	}

	tests := []struct {
		name    string
		balance domain.Balance
	}{
		{
			name:    "stable balance",
			balance: domain.Balance{Symbol: "USDC", Venue: "arbitrum", Amount: decimal.NewFromInt(100), ValueUsd: decimal.NewFromInt(100)},
		},
		{
			name:    "no tracked position",
			balance: domain.Balance{Symbol: "WBTC", Venue: "ethereum", Amount: decimal.NewFromInt(1), ValueUsd: decimal.NewFromInt(60000)},
		},
		{
			name:    "zero-quantity position",
			balance: domain.Balance{Symbol: "SOL", Venue: "solana", Amount: decimal.NewFromInt(3), ValueUsd: decimal.NewFromInt(450)},
		},
		{
			name:    "zero held quantity",
			balance: domain.Balance{Symbol: "WETH", Venue: "arbitrum", Amount: decimal.Zero, ValueUsd: decimal.Zero},
		},
	}

	r := New(stables)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := r.Reconcile(positions, []domain.Balance{tt.balance})
			assert.Empty(t, report.Rows)
			assert.True(t, report.TotalUnrealized.IsZero())
		})
	}
}

func TestReconcile_PreservesBalanceOrder(t *testing.T) {
	positions := map[domain.AssetKey]*domain.Position{
		domain.NewAssetKey("", "B", "base"):    {Quantity: decimal.NewFromInt(1), CostUsd: decimal.NewFromInt(10)},
		domain.NewAssetKey("", "A", "base"):    {Quantity: decimal.NewFromInt(1), CostUsd: decimal.NewFromInt(20)},
		domain.NewAssetKey("", "C", "polygon"): {Quantity: decimal.NewFromInt(1), CostUsd: decimal.NewFromInt(30)},
	}
	balances := []domain.Balance{
		{Symbol: "B", Venue: "base", Amount: decimal.NewFromInt(1), ValueUsd: decimal.NewFromInt(12)},
		{Symbol: "C", Venue: "polygon", Amount: decimal.NewFromInt(1), ValueUsd: decimal.NewFromInt(28)},
		{Symbol: "A", Venue: "base", Amount: decimal.NewFromInt(1), ValueUsd: decimal.NewFromInt(25)},
	}

	report := New(stables).Reconcile(positions, balances)
	require.Len(t, report.Rows, 3)
	assert.Equal(t, "B", report.Rows[0].Symbol)
	assert.Equal(t, "C", report.Rows[1].Symbol)
	assert.Equal(t, "A", report.Rows[2].Symbol)
	assert.True(t, report.TotalUnrealized.Equal(decimal.NewFromInt(5)), "2 - 2 + 5")
}

func TestReconcile_EmptyInputs(t *testing.T) {
	r := New(stables)

	report := r.Reconcile(nil, nil)
	assert.Empty(t, report.Rows)
	assert.True(t, report.TotalUnrealized.IsZero())
}

func TestReconcile_NegativePnl(t *testing.T) {
	positions := map[domain.AssetKey]*domain.Position{
		domain.NewAssetKey("", "WETH", "base"): {Quantity: decimal.NewFromInt(2), CostUsd: decimal.NewFromInt(200)},
	}
	balances := []domain.Balance{
		{Symbol: "WETH", Venue: "base", Amount: decimal.NewFromInt(2), ValueUsd: decimal.NewFromInt(150)},
	}

	report := New(stables).Reconcile(positions, balances)
	require.Len(t, report.Rows, 1)
	assert.True(t, report.Rows[0].Unrealized.Equal(decimal.NewFromInt(-50)))
	assert.True(t, report.TotalUnrealized.Equal(decimal.NewFromInt(-50)))
}
