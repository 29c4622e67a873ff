package parfor

import "golang.org/x/exp/constraints"

// Number is the set of types a [Plan] can iterate over: any integer or
// floating-point type with defined comparison and arithmetic.
type Number interface {
	constraints.Integer | constraints.Float
}

// Compare reports whether iteration should continue, given the current
// value and the plan's bound. See [LessThan] for the default.
type Compare[T Number] func(current, bound T) bool

// Step advances the current value by the plan's step. See [Add] for
// the default.
type Step[T Number] func(current, step T) T

// LessThan continues while current < bound. It is the default [Compare]
// for a [Plan], driving the common ascending loop.
func LessThan[T Number](current, bound T) bool { return current < bound }

// LessOrEqual continues while current <= bound.
func LessOrEqual[T Number](current, bound T) bool { return current <= bound }

// GreaterThan continues while current > bound. Pair with [Subtract] for
// descending loops.
func GreaterThan[T Number](current, bound T) bool { return current > bound }

// GreaterOrEqual continues while current >= bound.
func GreaterOrEqual[T Number](current, bound T) bool { return current >= bound }

// Add advances by adding the step. It is the default [Step] for a [Plan].
func Add[T Number](current, step T) T { return current + step }

// Subtract advances by subtracting the step.
func Subtract[T Number](current, step T) T { return current - step }

// Plan describes a numeric progression for [For] and [ForEach]: start at
// From, continue while Continue(current, To) holds, and move from one
// value to the next via Advance(current, By).
//
// The zero values of Continue, Advance, and By mean [LessThan], [Add],
// and the unit step (1) respectively, so
//
//	parfor.Plan[int]{From: 0, To: 10}
//
// iterates 0 through 9. A Plan is a value; the engine never mutates it,
// and the same Plan can drive any number of calls.
type Plan[T Number] struct {
	From T
	To   T
	By   T

	Continue Compare[T]
	Advance  Step[T]
}

// Range returns a Plan iterating from (inclusive) to to (exclusive) with
// the default comparison and unit step.
func Range[T Number](from, to T) Plan[T] {
	return Plan[T]{From: from, To: to}
}

// normalize returns a copy of the plan with defaults filled in.
func (p Plan[T]) normalize() Plan[T] {
	var zero T
	if p.Continue == nil {
		p.Continue = LessThan[T]
	}
	if p.Advance == nil {
		p.Advance = Add[T]
	}
	if p.By == zero {
		p.By = 1
	}
	return p
}
