package parfor

import (
	"context"
	"errors"
	"time"
)

// For executes fn once per value of plan's progression, at most one
// partition's worth concurrently, and returns the collected results in
// ascending iteration order regardless of completion order.
//
// Errors and panics inside fn never stop sibling iterations; they are
// recorded and surfaced once, after the whole call, as an
// [*AggregateError]. The returned slice always holds the results of the
// iterations that completed successfully, alongside any error — partial
// results follow [io.Reader] conventions.
//
// Panics if fn is nil.
func For[T Number, R any](
	ctx context.Context,
	plan Plan[T],
	fn func(ctx context.Context, v T) (R, error),
	opts ...Option,
) ([]R, error) {
	if fn == nil {
		panic("parfor: For requires a non-nil work function")
	}

	cfg := newConfig(opts)
	results := newResultSet[R]()
	sink := &faultSink{}

	unit := func(ctx context.Context, index int, v T) error {
		r, err := fn(ctx, v)
		if err != nil {
			return err
		}
		results.put(index, r)
		return nil
	}

	runErr := run(ctx, "For", cfg, newIndexedDriver(plan.normalize()), unit, sink)
	return results.ordered(), finish("For", sink, runErr)
}

// ForEach executes fn once per value of plan's progression without
// collecting results. Partitioning, timeout, and fault aggregation
// behave exactly as in [For].
//
// Panics if fn is nil.
func ForEach[T Number](
	ctx context.Context,
	plan Plan[T],
	fn func(ctx context.Context, v T) error,
	opts ...Option,
) error {
	if fn == nil {
		panic("parfor: ForEach requires a non-nil work function")
	}

	cfg := newConfig(opts)
	sink := &faultSink{}

	unit := func(ctx context.Context, _ int, v T) error {
		return fn(ctx, v)
	}

	runErr := run(ctx, "ForEach", cfg, newIndexedDriver(plan.normalize()), unit, sink)
	return finish("ForEach", sink, runErr)
}

// While executes fn once per value produced by next, until next reports
// that none remain. next is invoked only by the loop owner, one call at
// a time, so it may mutate captured state without synchronization.
//
// There is no positional result collection in tester mode; only
// completion and fault aggregation semantics apply.
//
// Panics if next or fn is nil.
func While[T any](
	ctx context.Context,
	next Tester[T],
	fn func(ctx context.Context, v T) error,
	opts ...Option,
) error {
	if next == nil {
		panic("parfor: While requires a non-nil tester")
	}
	if fn == nil {
		panic("parfor: While requires a non-nil work function")
	}

	cfg := newConfig(opts)
	sink := &faultSink{}

	unit := func(ctx context.Context, _ int, v T) error {
		return fn(ctx, v)
	}

	runErr := run(ctx, "While", cfg, newTesterDriver(next), unit, sink)
	return finish("While", sink, runErr)
}

// run is the partitioned execution loop shared by every entry point. It
// repeatedly fills one partition's worth of iterations from the driver,
// dispatches them to the pool, joins the partition, and starts the next
// one, until the driver is exhausted, the time budget runs out, or ctx
// is cancelled.
//
// run itself is single-threaded: it is the only code path that creates
// partitions, dispatches into them, and joins them. No two partitions
// are ever in flight simultaneously, which gives a strict happens-before
// relationship between partition N and N+1.
func run[T any](
	ctx context.Context,
	op string,
	cfg config,
	d driver[T],
	unit func(ctx context.Context, index int, v T) error,
	sink *faultSink,
) error {
	pool := newWorkPool(cfg.partitionSize)
	defer pool.drain()

	var deadline time.Time
	if cfg.timeout > 0 {
		deadline = cfg.clock.Now().Add(cfg.timeout)
	}

	for seq := 0; ; seq++ {
		cd := newCountdown(cfg.partitionSize)

		dispatched := 0
		terminal := false
		for dispatched < cfg.partitionSize {
			v, index, ok := d.next()
			if !ok {
				terminal = true
				break
			}
			dispatched++
			pool.dispatch(func() {
				// The countdown must be signaled on every exit path,
				// exactly once per unit.
				defer cd.arrive()
				if err := runUnit(ctx, index, v, unit); err != nil {
					sink.record(&Fault{Index: index, Value: v, Err: err})
				}
			})
		}
		if !terminal {
			terminal = d.exhausted()
		}

		// Release the slots the driver could not fill so the join does
		// not block on units that were never dispatched.
		cd.arriveN(cfg.partitionSize - dispatched)

		joinErr := joinPartition(ctx, cfg, cd, deadline)
		timedOut := errors.Is(joinErr, errJoinExpired)

		cfg.log.Debug().
			Str("op", op).
			Int("partition", seq).
			Int("dispatched", dispatched).
			Bool("timed_out", timedOut).
			Msg("partition joined")

		if cfg.onPartition != nil {
			cfg.onPartition(PartitionInfo{
				Seq:        seq,
				Dispatched: dispatched,
				TimedOut:   timedOut,
				Faults:     sink.count(),
			})
		}

		if timedOut {
			// Silent truncation: remaining iterations are never
			// dispatched and the timeout is not an error. Units still
			// executing keep running in the background.
			return nil
		}
		if joinErr != nil {
			return joinErr
		}
		if terminal {
			return nil
		}
	}
}

// joinPartition blocks on the partition's countdown for at most the
// remaining budget of the whole call.
func joinPartition(ctx context.Context, cfg config, cd *countdown, deadline time.Time) error {
	if cfg.timeout <= 0 {
		return cd.wait(ctx, cfg.clock, 0)
	}

	remaining := deadline.Sub(cfg.clock.Now())
	if remaining <= 0 {
		return errJoinExpired
	}
	return cd.wait(ctx, cfg.clock, remaining)
}

// runUnit invokes one work unit with panic recovery. A recovered panic
// becomes the unit's error, carrying the stack via [*PanicError].
func runUnit[T any](
	ctx context.Context,
	index int,
	v T,
	unit func(ctx context.Context, index int, v T) error,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()
	return unit(ctx, index, v)
}

// finish converts the collected faults into the call's single error.
// Context errors from an interrupted join are joined with the aggregate
// so neither is lost.
func finish(op string, sink *faultSink, runErr error) error {
	faults := sink.snapshot()
	if len(faults) == 0 {
		return runErr
	}

	agg := &AggregateError{Op: op, Faults: faults}
	if runErr != nil {
		return errors.Join(agg, runErr)
	}
	return agg
}
