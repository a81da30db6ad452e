package cost

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Index domain sentinels. They render as -inf and inf in the plain format.
const (
	IndexMin int64 = math.MinInt64
	IndexMax int64 = math.MaxInt64
)

// Function construction errors.
var (
	// ErrEmptyFunction indicates a cost function without entries.
	ErrEmptyFunction = errors.New("cost function has no entries")
	// ErrFirstIndexNotMin indicates the first index is not the domain minimum.
	ErrFirstIndexNotMin = errors.New("first cost function index must be -inf")
	// ErrIndexOrder indicates indices that are not strictly increasing.
	ErrIndexOrder = errors.New("cost function indices must be strictly increasing")
)

// Entry is one step of a cost function: every index from Index up to the next
// entry's index (exclusive) costs Cost.
type Entry struct {
	Index int64
	Cost  Cost
}

// Function is a step function from signed offsets to costs.
//
// The first entry always starts at IndexMin, so every offset has a defined cost.
type Function struct {
	entries []Entry
}

// NewFunction builds a cost function and validates its invariants.
func NewFunction(entries ...Entry) (Function, error) {
	err := validateEntries(entries)
	if err != nil {
		return Function{}, err
	}

	return Function{entries: append([]Entry(nil), entries...)}, nil
}

// MustFunction is like NewFunction but panics on invalid entries.
// Intended for package-level defaults and tests.
func MustFunction(entries ...Entry) Function {
	f, err := NewFunction(entries...)
	if err != nil {
		panic(fmt.Sprintf("cost: %v", err))
	}

	return f
}

// Constant returns the function that maps every index to c.
func Constant(c Cost) Function {
	return Function{entries: []Entry{{Index: IndexMin, Cost: c}}}
}

func validateEntries(entries []Entry) error {
	if len(entries) == 0 {
		return ErrEmptyFunction
	}

	if entries[0].Index != IndexMin {
		return ErrFirstIndexNotMin
	}

	for i := 1; i < len(entries); i++ {
		if entries[i-1].Index >= entries[i].Index {
			return fmt.Errorf("%w: %d follows %d", ErrIndexOrder, entries[i].Index, entries[i-1].Index)
		}
	}

	return nil
}

// Entries returns a copy of the function's steps.
func (f Function) Entries() []Entry {
	return append([]Entry(nil), f.entries...)
}

// Len returns the number of steps.
func (f Function) Len() int {
	return len(f.entries)
}

// IsZero reports whether f was never initialised.
func (f Function) IsZero() bool {
	return len(f.entries) == 0
}

// Evaluate returns the cost at index. An uninitialised function evaluates to Inf.
func (f Function) Evaluate(index int64) Cost {
	if len(f.entries) == 0 {
		return Inf
	}

	// First entry whose index is greater, minus one, is the step containing index.
	pos := sort.Search(len(f.entries), func(i int) bool {
		return f.entries[i].Index > index
	})

	return f.entries[pos-1].Cost
}

// MinCost returns the smallest cost the function takes anywhere.
func (f Function) MinCost() Cost {
	result := Inf
	for _, e := range f.entries {
		result = result.Min(e.Cost)
	}

	return result
}

// Equal reports whether both functions have identical steps.
func (f Function) Equal(other Function) bool {
	if len(f.entries) != len(other.entries) {
		return false
	}

	for i := range f.entries {
		if f.entries[i] != other.entries[i] {
			return false
		}
	}

	return true
}

// Interval is an inclusive index range.
type Interval struct {
	From int64
	To   int64
}

// FiniteIntervals returns the maximal index ranges on which the function is
// finite, in increasing order.
func (f Function) FiniteIntervals() []Interval {
	var result []Interval

	for i, e := range f.entries {
		if e.Cost == Inf {
			continue
		}

		to := IndexMax
		if i+1 < len(f.entries) {
			to = f.entries[i+1].Index - 1
		}

		if n := len(result); n > 0 && result[n-1].To+1 == e.Index {
			result[n-1].To = to

			continue
		}

		result = append(result, Interval{From: e.Index, To: to})
	}

	return result
}
