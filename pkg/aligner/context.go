package aligner

import (
	"github.com/Sumatoshi-tech/tsalign/pkg/alignment"
	"github.com/Sumatoshi-tech/tsalign/pkg/alphabet"
	"github.com/Sumatoshi-tech/tsalign/pkg/cost"
)

// Context is the read-only state shared by the whole search: sequences, costs
// and tunables.
type Context struct {
	Reference []byte
	Query     []byte
	Alphabet  *alphabet.Alphabet
	Costs     *cost.Table

	LeftFlankLength  int32
	RightFlankLength int32

	offsetIntervals           []cost.Interval
	lengthDifferenceIntervals []cost.Interval
}

func newContext(reference, query []byte, costs *cost.Table, abc *alphabet.Alphabet, left, right int32) *Context {
	return &Context{
		Reference:                 reference,
		Query:                     query,
		Alphabet:                  abc,
		Costs:                     costs,
		LeftFlankLength:           left,
		RightFlankLength:          right,
		offsetIntervals:           costs.Offset.FiniteIntervals(),
		lengthDifferenceIntervals: costs.LengthDifference.FiniteIntervals(),
	}
}

// tracks returns the primary and secondary sequence of a switch copying from s.
func (c *Context) tracks(s alignment.Secondary) (primary, secondary []byte) {
	if s == alignment.SecondaryReference {
		return c.Query, c.Reference
	}

	return c.Reference, c.Query
}

// entranceCost is the base entrance cost for s.
func (c *Context) entranceCost(s alignment.Secondary) cost.Cost {
	if s == alignment.SecondaryReference {
		return c.Costs.EntranceReference
	}

	return c.Costs.EntranceQuery
}

// isGoal reports whether id has consumed both sequences in a primary state.
// A template switch exit is not a goal: the reentry always follows it.
func (c *Context) isGoal(id identifier) bool {
	switch id.Kind {
	case kindPrimary, kindRightFlank:
		return int(id.Reference) == len(c.Reference) && int(id.Query) == len(c.Query)
	default:
		return false
	}
}

// clampIntervals intersects each interval with [lo, hi] and calls fn for every
// index in the result.
func clampIntervals(intervals []cost.Interval, lo, hi int64, fn func(index int64)) {
	for _, iv := range intervals {
		from := max(iv.From, lo)
		to := min(iv.To, hi)

		for index := from; index <= to; index++ {
			fn(index)
		}
	}
}
