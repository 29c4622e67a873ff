// Package parfor provides bounded, partitioned parallel iteration.
//
// Given a logical iteration source and a unit of work to run per
// iteration, parfor executes the work concurrently across a capped
// number of workers, collects per-iteration results in original
// iteration order, aggregates per-iteration failures without aborting
// sibling work, and honors an overall timeout.
//
// # Iteration Modes
//
// Indexed mode iterates a numeric progression described by a [Plan]:
// an initial value, a bound, a comparison, and a step. [Range] builds
// the common ascending case; custom [Compare] and [Step] strategies
// ([GreaterThan], [Subtract], ...) drive descending or strided loops
// through the same engine:
//
//	squares, err := parfor.For(ctx, parfor.Range(0, 10),
//	    func(ctx context.Context, v int) (int, error) {
//	        return v * v, nil
//	    })
//
// Tester mode iterates values pulled from a caller-owned [Tester]
// function until it reports that none remain:
//
//	err := parfor.While(ctx, nextRow, func(ctx context.Context, row Row) error {
//	    return process(ctx, row)
//	})
//
// The tester is invoked only by the loop owner, sequentially, so it may
// mutate captured state without synchronization.
//
// # Partitions
//
// Work is dispatched in partitions: bounded batches of
// [WithPartitionSize] units (default [runtime.NumCPU]) that are filled,
// dispatched, and joined as one. A new partition starts only after the
// previous one fully joins, so the number of units in flight never
// exceeds the partition size and partition N+1 strictly happens after
// partition N. Completion order inside a partition is unspecified;
// result ordering is restored from iteration indices, not arrival order.
//
// # Faults
//
// An error or panic in one work unit never blocks or cancels its
// siblings. Every failure is recorded as a [*Fault] (panics wrapped in
// [*PanicError]) and surfaced once, after the whole call, as an
// [*AggregateError]. Indexed mode returns the successful results
// alongside the aggregate, so partial progress is never lost. Use
// [FaultsOf], [CauseOf], and [IsAggregate] to inspect failures.
//
// # Timeout
//
// [WithTimeout] sets one total budget for the whole call, spent across
// every partition join. A call that runs out of budget stops dispatching
// and returns what completed so far; the timeout itself is not an error.
// There is no cooperative cancellation: units still executing when the
// budget expires run to completion unobserved and may still publish
// results after the call has returned. Context cancellation, by
// contrast, interrupts the join and surfaces ctx.Err().
//
// # Binding Arguments
//
// Work that needs extra arguments binds them with an ordinary closure;
// there are no fixed-arity entry points:
//
//	rate := 0.2
//	taxed, err := parfor.For(ctx, parfor.Range(0, len(orders)),
//	    func(ctx context.Context, i int) (float64, error) {
//	        return orders[i].Total * (1 + rate), nil
//	    })
package parfor
