package parfor

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// errJoinExpired marks a join that stopped waiting because the call's
// time budget ran out. It never escapes the package: the loop translates
// it into silent truncation.
var errJoinExpired = errors.New("parfor: partition join expired")

// countdown is the join barrier for one partition: it starts at the
// partition's intended size and is decremented once per completed (or
// never-dispatched) work unit. The loop owner blocks on wait until the
// count reaches zero.
//
// Exactly one live countdown exists per partition; it is never shared
// across partitions and never reused.
type countdown struct {
	remaining atomic.Int64
	done      chan struct{}
}

func newCountdown(n int) *countdown {
	c := &countdown{done: make(chan struct{})}
	c.remaining.Store(int64(n))
	if n <= 0 {
		close(c.done)
	}
	return c
}

// arrive records one completion. The arrival that brings the count to
// zero releases waiters. Arriving more times than the countdown was
// sized for panics: every work unit must signal exactly once.
func (c *countdown) arrive() {
	c.arriveN(1)
}

// arriveN records n completions at once. The loop uses it to release the
// slots of a partition the iteration source could not fill.
func (c *countdown) arriveN(n int) {
	if n <= 0 {
		return
	}
	left := c.remaining.Add(int64(-n))
	if left == 0 {
		close(c.done)
	}
	if left < 0 {
		panic("parfor: countdown over-signaled")
	}
}

// wait blocks until every expected arrival has been recorded, budget
// elapses, or ctx is cancelled. A budget <= 0 means unbounded. It
// returns nil on a complete join, errJoinExpired on budget exhaustion,
// and ctx.Err() on cancellation.
func (c *countdown) wait(ctx context.Context, clk clock.Clock, budget time.Duration) error {
	if budget <= 0 {
		select {
		case <-c.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	timer := clk.Timer(budget)
	defer timer.Stop()

	select {
	case <-c.done:
		return nil
	case <-timer.C:
		return errJoinExpired
	case <-ctx.Done():
		return ctx.Err()
	}
}
