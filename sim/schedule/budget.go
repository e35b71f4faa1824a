package schedule

import (
	"context"
	"sync/atomic"
	"time"
)

// Budget tracks the wall-clock allowance of one scheduler run.
// It is polled between selections, never inside a kernel operation.
//
// Thread Safety: Safe for concurrent use by rollouts.
type Budget struct {
	ctx       context.Context
	limit     time.Duration
	startTime time.Time
	now       func() time.Time

	exhausted atomic.Bool
}

// NewBudget starts a budget of limit measured from now. A limit ≤ 0 is
// exhausted immediately. Cancelling ctx exhausts the budget as well.
func NewBudget(ctx context.Context, limit time.Duration) *Budget {
	return newBudgetWithClock(ctx, limit, time.Now)
}

func newBudgetWithClock(ctx context.Context, limit time.Duration, now func() time.Time) *Budget {
	return &Budget{
		ctx:       ctx,
		limit:     limit,
		startTime: now(),
		now:       now,
	}
}

// Limit returns the configured allowance.
func (b *Budget) Limit() time.Duration { return b.limit }

// Elapsed returns time elapsed since the budget was created.
func (b *Budget) Elapsed() time.Duration { return b.now().Sub(b.startTime) }

// Remaining returns the time left, never negative.
func (b *Budget) Remaining() time.Duration {
	if r := b.limit - b.Elapsed(); r > 0 {
		return r
	}
	return 0
}

// Exhausted reports whether the deadline has passed or the context is done.
// Once exhausted, it stays exhausted.
func (b *Budget) Exhausted() bool {
	if b.exhausted.Load() {
		return true
	}
	if b.limit <= 0 || b.Elapsed() >= b.limit || b.ctx.Err() != nil {
		b.exhausted.Store(true)
		return true
	}
	return false
}
