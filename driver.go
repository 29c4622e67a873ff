package parfor

// Tester produces the next value of a caller-owned sequence, or reports
// that none remain. It drives [While] the way a [Plan] drives [For].
//
// The engine invokes a Tester only from the goroutine that fills
// partitions, one call at a time, so it may freely mutate captured state
// without synchronization. Once it returns found == false it is never
// called again.
type Tester[T any] func() (value T, found bool)

// A driver feeds the partitioned loop one iteration at a time. Drivers
// are mutated only by the loop owner, never concurrently.
type driver[T any] interface {
	// next returns the next iteration input and its position in the
	// logical sequence, or ok == false once the source is exhausted.
	next() (value T, index int, ok bool)

	// exhausted reports whether another next call can succeed. It may
	// pull ahead and buffer one value to find out.
	exhausted() bool
}

// indexedDriver walks a numeric progression. The plan must already be
// normalized.
type indexedDriver[T Number] struct {
	plan Plan[T]
	cur  T
	idx  int
}

func newIndexedDriver[T Number](plan Plan[T]) *indexedDriver[T] {
	return &indexedDriver[T]{plan: plan, cur: plan.From}
}

func (d *indexedDriver[T]) next() (T, int, bool) {
	if !d.plan.Continue(d.cur, d.plan.To) {
		var zero T
		return zero, d.idx, false
	}
	v, i := d.cur, d.idx
	d.cur = d.plan.Advance(d.cur, d.plan.By)
	d.idx++
	return v, i, true
}

func (d *indexedDriver[T]) exhausted() bool {
	return !d.plan.Continue(d.cur, d.plan.To)
}

// testerDriver pulls values from a [Tester]. Positions are assigned in
// pull order so faults can still be attributed to an iteration.
type testerDriver[T any] struct {
	tester Tester[T]
	idx    int
	done   bool

	// pending holds a value pulled ahead by exhausted.
	pending  T
	buffered bool
}

func newTesterDriver[T any](tester Tester[T]) *testerDriver[T] {
	return &testerDriver[T]{tester: tester}
}

func (d *testerDriver[T]) next() (T, int, bool) {
	if d.buffered {
		d.buffered = false
		v, i := d.pending, d.idx
		var zero T
		d.pending = zero
		d.idx++
		return v, i, true
	}
	if d.done {
		var zero T
		return zero, d.idx, false
	}
	v, found := d.tester()
	if !found {
		d.done = true
		var zero T
		return zero, d.idx, false
	}
	i := d.idx
	d.idx++
	return v, i, true
}

func (d *testerDriver[T]) exhausted() bool {
	if d.buffered {
		return false
	}
	if d.done {
		return true
	}
	v, found := d.tester()
	if !found {
		d.done = true
		return true
	}
	d.pending = v
	d.buffered = true
	return false
}
