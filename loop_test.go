package parfor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(_ context.Context, v int) (int, error) {
	return v * v, nil
}

func TestForSquares(t *testing.T) {
	// Reference scenario: 10 iterations, partition size 4.
	var infos []PartitionInfo

	got, err := For(
		context.Background(),
		Range(0, 10),
		square,
		WithPartitionSize(4),
		WithOnPartition(func(info PartitionInfo) { infos = append(infos, info) }),
	)

	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 4, 9, 16, 25, 36, 49, 64, 81}, got)

	require.Len(t, infos, 3, "10 iterations at width 4 should take 3 partitions")
	assert.Equal(t, []int{4, 4, 2},
		[]int{infos[0].Dispatched, infos[1].Dispatched, infos[2].Dispatched})
	for i, info := range infos {
		assert.Equal(t, i, info.Seq)
		assert.False(t, info.TimedOut)
		assert.Zero(t, info.Faults)
	}
}

func TestForExactPartitionMultiple(t *testing.T) {
	// 8 iterations at width 4 must take exactly 2 partitions, with no
	// trailing empty join.
	var partitions int

	got, err := For(
		context.Background(),
		Range(0, 8),
		square,
		WithPartitionSize(4),
		WithOnPartition(func(PartitionInfo) { partitions++ }),
	)

	require.NoError(t, err)
	assert.Len(t, got, 8)
	assert.Equal(t, 2, partitions)
}

func TestForPartitionSizeOne(t *testing.T) {
	var partitions int

	got, err := For(
		context.Background(),
		Range(0, 5),
		square,
		WithPartitionSize(1),
		WithOnPartition(func(PartitionInfo) { partitions++ }),
	)

	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 4, 9, 16}, got)
	assert.Equal(t, 5, partitions)
}

func TestForWiderThanIteration(t *testing.T) {
	var infos []PartitionInfo

	got, err := For(
		context.Background(),
		Range(0, 3),
		square,
		WithPartitionSize(16),
		WithOnPartition(func(info PartitionInfo) { infos = append(infos, info) }),
	)

	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 4}, got)
	require.Len(t, infos, 1)
	assert.Equal(t, 3, infos[0].Dispatched)
}

func TestForEmptyPlan(t *testing.T) {
	got, err := For(context.Background(), Range(5, 5), square, WithPartitionSize(4))

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestForDescending(t *testing.T) {
	plan := Plan[int]{
		From:     10,
		To:       0,
		Continue: GreaterThan[int],
		Advance:  Subtract[int],
	}

	got, err := For(context.Background(), plan, func(_ context.Context, v int) (int, error) {
		return v, nil
	}, WithPartitionSize(3))

	require.NoError(t, err)
	assert.Equal(t, []int{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, got,
		"descending plans keep iteration order, not numeric order")
}

func TestForStrided(t *testing.T) {
	got, err := For(context.Background(), Plan[int]{From: 0, To: 10, By: 2}, square,
		WithPartitionSize(2))

	require.NoError(t, err)
	assert.Equal(t, []int{0, 4, 16, 36, 64}, got)
}

func TestForInclusiveBound(t *testing.T) {
	got, err := For(context.Background(),
		Plan[int]{From: 1, To: 5, Continue: LessOrEqual[int]},
		func(_ context.Context, v int) (int, error) { return v, nil },
	)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
}

func TestForFloatPlan(t *testing.T) {
	got, err := For(context.Background(),
		Plan[float64]{From: 0, To: 1, By: 0.25},
		func(_ context.Context, v float64) (float64, error) { return v * 2, nil },
		WithPartitionSize(2),
	)

	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1.0, 1.5}, got, 1e-9)
}

func TestForOrderUnderJitter(t *testing.T) {
	// Skewed per-unit delays shuffle completion order; the returned
	// slice must still follow iteration order.
	got, err := For(context.Background(), Range(0, 24),
		func(_ context.Context, v int) (int, error) {
			time.Sleep(time.Duration((v*37)%5) * time.Millisecond)
			return v * v, nil
		},
		WithPartitionSize(8),
	)

	require.NoError(t, err)
	require.Len(t, got, 24)
	for i, v := range got {
		require.Equal(t, i*i, v)
	}
}

func TestForConcurrencyNeverExceedsPartitionSize(t *testing.T) {
	const width = 4

	var active, maxActive atomic.Int32
	_, err := For(context.Background(), Range(0, 32),
		func(_ context.Context, v int) (int, error) {
			cur := active.Add(1)
			for {
				old := maxActive.Load()
				if cur <= old || maxActive.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
			return v, nil
		},
		WithPartitionSize(width),
	)

	require.NoError(t, err)
	assert.LessOrEqual(t, maxActive.Load(), int32(width))
}

func TestForDeterministicRerun(t *testing.T) {
	run := func() []int {
		got, err := For(context.Background(), Range(0, 50), square, WithPartitionSize(7))
		require.NoError(t, err)
		return got
	}

	first, second := run(), run()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("identical runs diverged (-first +second):\n%s", diff)
	}
}

func TestForNilWorkPanics(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = For[int, int](context.Background(), Range(0, 1), nil)
	})
}

func TestForEachSum(t *testing.T) {
	var sum atomic.Int64

	err := ForEach(context.Background(), Range(0, 100),
		func(_ context.Context, v int) error {
			sum.Add(int64(v))
			return nil
		},
		WithPartitionSize(8),
	)

	require.NoError(t, err)
	assert.Equal(t, int64(4950), sum.Load())
}

func TestForEachNilWorkPanics(t *testing.T) {
	assert.Panics(t, func() {
		_ = ForEach[int](context.Background(), Range(0, 1), nil)
	})
}

func TestWhileDrainsTester(t *testing.T) {
	src := []int{3, 1, 4, 1, 5, 9, 2, 6}
	pos := 0
	next := func() (int, bool) {
		if pos >= len(src) {
			return 0, false
		}
		v := src[pos]
		pos++
		return v, true
	}

	var sum atomic.Int64
	err := While(context.Background(), next,
		func(_ context.Context, v int) error {
			sum.Add(int64(v))
			return nil
		},
		WithPartitionSize(3),
	)

	require.NoError(t, err)
	assert.Equal(t, int64(31), sum.Load())
	assert.Equal(t, len(src), pos, "tester must be drained exactly once")
}

func TestWhileEmpty(t *testing.T) {
	calls := 0
	err := While(context.Background(),
		func() (int, bool) { calls++; return 0, false },
		func(_ context.Context, _ int) error {
			t.Error("work function must not run for an empty tester")
			return nil
		},
	)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWhilePartitionCount(t *testing.T) {
	n := 10
	next := func() (int, bool) {
		if n == 0 {
			return 0, false
		}
		n--
		return n, true
	}

	var partitions int
	err := While(context.Background(), next,
		func(_ context.Context, _ int) error { return nil },
		WithPartitionSize(4),
		WithOnPartition(func(PartitionInfo) { partitions++ }),
	)

	require.NoError(t, err)
	assert.Equal(t, 3, partitions)
}

func TestWhileNilArgsPanic(t *testing.T) {
	assert.Panics(t, func() {
		_ = While[int](context.Background(), nil, func(context.Context, int) error { return nil })
	})
	assert.Panics(t, func() {
		_ = While(context.Background(), func() (int, bool) { return 0, false }, nil)
	})
}
