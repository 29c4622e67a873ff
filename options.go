package parfor

import (
	"runtime"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

// PartitionInfo describes one joined partition. It is passed to the hook
// registered via [WithOnPartition].
type PartitionInfo struct {
	// Seq is the partition's sequence number within the call, starting at 0.
	Seq int

	// Dispatched is the number of work units dispatched into the partition.
	// It is less than the partition size only for the terminal partition.
	Dispatched int

	// TimedOut reports whether the join stopped waiting because the
	// call's time budget ran out.
	TimedOut bool

	// Faults is the number of faults recorded across the call so far.
	Faults int
}

type config struct {
	partitionSize int
	timeout       time.Duration
	clock         clock.Clock
	log           zerolog.Logger
	onPartition   func(PartitionInfo)
}

// Option configures a single [For], [ForEach], or [While] call.
type Option func(*config)

func defaultConfig() config {
	return config{
		partitionSize: runtime.NumCPU(),
		clock:         clock.New(),
		log:           zerolog.Nop(),
	}
}

func newConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithPartitionSize sets the partition width: the number of work units
// dispatched together and joined together, and therefore the maximum
// number executing concurrently. Default is [runtime.NumCPU].
//
// Panics if n < 1.
func WithPartitionSize(n int) Option {
	return func(c *config) {
		if n < 1 {
			panic("parfor: WithPartitionSize requires n >= 1")
		}
		c.partitionSize = n
	}
}

// WithTimeout sets the total wall-clock budget for the whole call, spent
// across every partition join. When the budget runs out, no further
// partitions are dispatched and the call returns what completed so far;
// the timeout itself is not an error. Work units still executing are
// left to run to completion unobserved and may still publish results
// after the call has returned.
//
// Zero (the default) means unbounded. Panics if d is negative.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d < 0 {
			panic("parfor: WithTimeout requires a non-negative duration")
		}
		c.timeout = d
	}
}

// WithClock substitutes the clock used for the timeout budget. Intended
// for tests. Panics if clk is nil.
func WithClock(clk clock.Clock) Option {
	return func(c *config) {
		if clk == nil {
			panic("parfor: WithClock requires a non-nil clock")
		}
		c.clock = clk
	}
}

// WithLogger sets the logger used for partition lifecycle events,
// emitted at debug level. Default is [zerolog.Nop].
func WithLogger(log zerolog.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// WithOnPartition registers a hook invoked after each partition joins,
// from the loop owner's goroutine. Useful for observability and tests.
func WithOnPartition(fn func(PartitionInfo)) Option {
	return func(c *config) {
		c.onPartition = fn
	}
}
