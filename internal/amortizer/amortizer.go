// Package amortizer splits one large requested trade into a bounded sequence
// of fixed-size child orders submitted sequentially to the execution venue.
package amortizer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"recallctl/internal/domain"
)

// Executor submits a single order. Retry policy, if any, belongs to the
// implementation, never to the amortizer.
type Executor interface {
	ExecuteTrade(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error)
}

// SliceResult is the reported outcome of one child order.
type SliceResult struct {
	ClientOrderID string
	Quantity      decimal.Decimal
	Result        domain.OrderResult
	Err           error
}

// Failed reports whether the slice neither reached the venue nor filled.
func (s *SliceResult) Failed() bool {
	return s.Err != nil || !s.Result.Success
}

// Plan returns the child order quantities for the given total and step:
// min(step, remaining) per slice, summing exactly to total in
// ceil(total/step) slices.
func Plan(total, step decimal.Decimal) ([]decimal.Decimal, error) {
	if !total.IsPositive() {
		return nil, errors.Errorf("total quantity must be positive, got %s", total)
	}
	if !step.IsPositive() {
		return nil, errors.Errorf("step quantity must be positive, got %s", step)
	}

	var schedule []decimal.Decimal
	remaining := total
	for remaining.IsPositive() {
		slice := decimal.Min(step, remaining)
		schedule = append(schedule, slice)
		remaining = remaining.Sub(slice)
	}
	return schedule, nil
}

// Amortizer executes planned schedules against an executor, pausing between
// child orders so the venue is never hammered.
type Amortizer struct {
	exec  Executor
	pause time.Duration
	log   *zap.Logger
}

// New returns an amortizer with the given inter-order pause.
func New(exec Executor, pause time.Duration, log *zap.Logger) *Amortizer {
	return &Amortizer{exec: exec, pause: pause, log: log}
}

// Run submits the whole schedule for req, replacing req.Amount slice by
// slice. A failed child order is recorded and the schedule continues: this
// is best-effort batch submission, not an atomic multi-leg transaction. The
// only early exit is context cancellation during the inter-order pause, in
// which case the results so far are returned together with ctx.Err().
func (a *Amortizer) Run(ctx context.Context, req domain.OrderRequest, total, step decimal.Decimal) ([]SliceResult, error) {
	schedule, err := Plan(total, step)
	if err != nil {
		return nil, err
	}

	results := make([]SliceResult, 0, len(schedule))
	for i, slice := range schedule {
		child := req
		child.Amount = slice

		sr := SliceResult{
			ClientOrderID: uuid.NewString(),
			Quantity:      slice,
		}
		sr.Result, sr.Err = a.exec.ExecuteTrade(ctx, child)

		if sr.Failed() {
			a.log.Warn("child order failed",
				zap.String("client_order_id", sr.ClientOrderID),
				zap.String("quantity", slice.String()),
				zap.Int("slice", i+1),
				zap.Int("of", len(schedule)),
				zap.Error(sr.Err))
		} else {
			a.log.Info("child order filled",
				zap.String("client_order_id", sr.ClientOrderID),
				zap.String("quantity", slice.String()),
				zap.Int("slice", i+1),
				zap.Int("of", len(schedule)))
		}
		results = append(results, sr)

		if i == len(schedule)-1 || a.pause <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		case <-time.After(a.pause):
		}
	}

	return results, nil
}
