package parfor

import "sync/atomic"

// workPool is the execution substrate for one call: a fixed set of
// worker goroutines consuming dispatched work units. The partitioned
// loop creates a pool sized to the partition width when a call begins
// and drains it when the call returns, so at most one partition's worth
// of units is ever in flight.
type workPool struct {
	tasks   chan func()
	drained atomic.Bool
}

// newWorkPool starts a pool with n workers. The queue buffer matches the
// worker count: the loop dispatches at most n units between joins, so
// dispatch never blocks.
func newWorkPool(n int) *workPool {
	p := &workPool{tasks: make(chan func(), n)}
	for range n {
		go p.worker()
	}
	return p
}

func (p *workPool) worker() {
	for fn := range p.tasks {
		fn()
	}
}

// dispatch hands one work unit to the pool. The unit is responsible for
// its own panic recovery and for signaling its partition's countdown.
func (p *workPool) dispatch(fn func()) {
	p.tasks <- fn
}

// drain stops the pool without waiting: workers exit once the queue
// empties, each finishing its current unit first. After a timed-out
// join this lets the caller return promptly while orphaned units run to
// completion in the background.
//
// Safe to call multiple times.
func (p *workPool) drain() {
	if p.drained.CompareAndSwap(false, true) {
		close(p.tasks)
	}
}
