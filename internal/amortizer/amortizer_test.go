package amortizer

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recallctl/internal/domain"
)

type fakeExecutor struct {
	calls  []domain.OrderRequest
	failOn map[int]error
	reject map[int]bool
}

func (f *fakeExecutor) ExecuteTrade(_ context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	n := len(f.calls)
	f.calls = append(f.calls, req)
	if err, ok := f.failOn[n]; ok {
		return domain.OrderResult{}, err
	}
	if f.reject[n] {
		return domain.OrderResult{Success: false}, nil
	}
	return domain.OrderResult{Success: true, FromAmount: req.Amount}, nil
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name     string
		total    string
		step     string
		expected []string
		wantErr  bool
	}{
		{name: "ten by three", total: "10", step: "3", expected: []string{"3", "3", "3", "1"}},
		{name: "exact multiple", total: "9", step: "3", expected: []string{"3", "3", "3"}},
		{name: "step larger than total", total: "2", step: "5", expected: []string{"2"}},
		{name: "fractional", total: "1", step: "0.4", expected: []string{"0.4", "0.4", "0.2"}},
		{name: "zero total", total: "0", step: "3", wantErr: true},
		{name: "negative step", total: "10", step: "-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule, err := Plan(decimal.RequireFromString(tt.total), decimal.RequireFromString(tt.step))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			require.Len(t, schedule, len(tt.expected))
			sum := decimal.Zero
			step := decimal.RequireFromString(tt.step)
			for i, slice := range schedule {
				assert.True(t, slice.Equal(decimal.RequireFromString(tt.expected[i])),
					"slice %d: want %s got %s", i, tt.expected[i], slice)
				assert.True(t, slice.LessThanOrEqual(step))
				sum = sum.Add(slice)
			}
			assert.True(t, sum.Equal(decimal.RequireFromString(tt.total)))
		})
	}
}

func TestRun_SubmitsWholeSchedule(t *testing.T) {
	exec := &fakeExecutor{}
	a := New(exec, 0, zap.NewNop())

	req := domain.OrderRequest{FromToken: "USDC", ToToken: "WETH", FromVenue: "base", ToVenue: "base"}
	results, err := a.Run(context.Background(), req, decimal.NewFromInt(10), decimal.NewFromInt(3))
	require.NoError(t, err)

	require.Len(t, results, 4)
	require.Len(t, exec.calls, 4)
	assert.True(t, exec.calls[3].Amount.Equal(decimal.NewFromInt(1)))
	for _, r := range results {
		assert.False(t, r.Failed())
		assert.NotEmpty(t, r.ClientOrderID)
	}
}

func TestRun_FailureDoesNotAbortBatch(t *testing.T) {
	exec := &fakeExecutor{failOn: map[int]error{1: errors.New("venue unavailable")}}
	a := New(exec, 0, zap.NewNop())

	results, err := a.Run(context.Background(), domain.OrderRequest{}, decimal.NewFromInt(10), decimal.NewFromInt(3))
	require.NoError(t, err)

	require.Len(t, results, 4, "remaining slices still submitted")
	assert.False(t, results[0].Failed())
	assert.True(t, results[1].Failed())
	assert.Error(t, results[1].Err)
	assert.False(t, results[2].Failed())
}

func TestRun_RejectedOrderIsReportedNotErrored(t *testing.T) {
	exec := &fakeExecutor{reject: map[int]bool{0: true}}
	a := New(exec, 0, zap.NewNop())

	results, err := a.Run(context.Background(), domain.OrderRequest{}, decimal.NewFromInt(3), decimal.NewFromInt(3))
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.True(t, results[0].Failed())
	assert.NoError(t, results[0].Err)
}

func TestRun_InvalidPlan(t *testing.T) {
	a := New(&fakeExecutor{}, 0, zap.NewNop())

	_, err := a.Run(context.Background(), domain.OrderRequest{}, decimal.Zero, decimal.NewFromInt(3))
	assert.Error(t, err)
}
