package parfor

import (
	"slices"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

// resultSet accumulates successful per-iteration results keyed by
// iteration index. Work units of one partition write concurrently;
// ordering is restored from the keys, not from arrival order.
type resultSet[R any] struct {
	m *xsync.Map[int, R]
}

func newResultSet[R any]() *resultSet[R] {
	return &resultSet[R]{m: xsync.NewMap[int, R]()}
}

func (rs *resultSet[R]) put(index int, value R) {
	rs.m.Store(index, value)
}

// ordered returns the collected results in ascending iteration order.
// It snapshots the map, so orphaned work units still running after a
// timed-out join do not disturb the returned slice.
func (rs *resultSet[R]) ordered() []R {
	keys := make([]int, 0, rs.m.Size())
	rs.m.Range(func(k int, _ R) bool {
		keys = append(keys, k)
		return true
	})
	slices.Sort(keys)

	out := make([]R, 0, len(keys))
	for _, k := range keys {
		if v, ok := rs.m.Load(k); ok {
			out = append(out, v)
		}
	}
	return out
}

// faultSink accumulates per-iteration faults for a whole call, in
// insertion order, under its own lock. Faults and results deliberately
// live in separate synchronization domains: neither needs to be
// consistent with the other at the granularity of a single iteration.
type faultSink struct {
	mu     sync.Mutex
	faults []*Fault
}

func (s *faultSink) record(f *Fault) {
	s.mu.Lock()
	s.faults = append(s.faults, f)
	s.mu.Unlock()
}

func (s *faultSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.faults)
}

func (s *faultSink) snapshot() []*Fault {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.faults) == 0 {
		return nil
	}
	return slices.Clone(s.faults)
}
