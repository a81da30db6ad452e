package cost

import (
	"errors"
	"fmt"
)

// ErrNegativeCost indicates a cost table entry below zero. Negative costs break
// the monotonicity the search relies on.
var ErrNegativeCost = errors.New("costs must not be negative")

// EditCosts prices the four classic edit operations on one track.
type EditCosts struct {
	Match        Cost
	Substitution Cost
	Insertion    Cost
	Deletion     Cost
}

// MinIndel returns the cheaper of insertion and deletion.
func (e EditCosts) MinIndel() Cost {
	return e.Insertion.Min(e.Deletion)
}

func (e EditCosts) validate(name string) error {
	for _, c := range []Cost{e.Match, e.Substitution, e.Insertion, e.Deletion} {
		if c < Zero {
			return fmt.Errorf("%w: %s", ErrNegativeCost, name)
		}
	}

	return nil
}

// Table holds every cost the template-switch aligner needs. It is immutable once
// built and shared read-only by the whole search.
type Table struct {
	Primary    EditCosts
	Secondary  EditCosts
	LeftFlank  EditCosts
	RightFlank EditCosts

	// EntranceReference is the base cost of a switch copying from the reference.
	EntranceReference Cost
	// EntranceQuery is the base cost of a switch copying from the query.
	EntranceQuery Cost
	// Exit is the base cost of leaving a template switch.
	Exit Cost

	// Offset prices the jump from the primary position to the secondary start.
	Offset Function
	// Length prices the number of primary characters consumed inside a switch.
	Length Function
	// LengthDifference prices the anti-primary gap minus the inner length.
	LengthDifference Function
}

// Validate checks that no cost is negative and every function is initialised.
func (t *Table) Validate() error {
	edits := []struct {
		name  string
		costs EditCosts
	}{
		{"primary", t.Primary},
		{"secondary", t.Secondary},
		{"left_flank", t.LeftFlank},
		{"right_flank", t.RightFlank},
	}

	for _, e := range edits {
		err := e.costs.validate(e.name)
		if err != nil {
			return err
		}
	}

	if t.EntranceReference < Zero || t.EntranceQuery < Zero || t.Exit < Zero {
		return fmt.Errorf("%w: template_switch", ErrNegativeCost)
	}

	functions := []struct {
		name string
		fn   Function
	}{
		{"offset", t.Offset},
		{"length", t.Length},
		{"length_difference", t.LengthDifference},
	}

	for _, f := range functions {
		if f.fn.IsZero() {
			return fmt.Errorf("template_switch.%s: %w", f.name, ErrEmptyFunction)
		}

		if f.fn.MinCost() < Zero {
			return fmt.Errorf("%w: template_switch.%s", ErrNegativeCost, f.name)
		}
	}

	return nil
}

// MinIndel is the cheapest way to change the primary diagonal by one without a
// template switch, across primary and flank tracks.
func (t *Table) MinIndel() Cost {
	return t.Primary.MinIndel().Min(t.LeftFlank.MinIndel()).Min(t.RightFlank.MinIndel())
}

// MinEntrance is a lower bound on the cost of any template-switch entrance.
func (t *Table) MinEntrance() Cost {
	return t.EntranceReference.Min(t.EntranceQuery).Add(t.Offset.MinCost())
}

// MinExit is a lower bound on the cost of any template-switch exit.
func (t *Table) MinExit() Cost {
	return t.Exit.Add(t.Length.MinCost()).Add(t.LengthDifference.MinCost())
}

// DefaultTable returns the cost table used when no configuration overrides it.
func DefaultTable() Table {
	edits := EditCosts{Match: 0, Substitution: 2, Insertion: 3, Deletion: 3}

	return Table{
		Primary:           edits,
		Secondary:         edits,
		LeftFlank:         edits,
		RightFlank:        edits,
		EntranceReference: 3,
		EntranceQuery:     3,
		Exit:              0,
		Offset: MustFunction(
			Entry{Index: IndexMin, Cost: Inf},
			Entry{Index: -1000, Cost: 0},
			Entry{Index: 1001, Cost: Inf},
		),
		Length: MustFunction(
			Entry{Index: IndexMin, Cost: Inf},
			Entry{Index: 0, Cost: 0},
		),
		LengthDifference: MustFunction(
			Entry{Index: IndexMin, Cost: Inf},
			Entry{Index: -100, Cost: 6},
			Entry{Index: -3, Cost: 3},
			Entry{Index: 0, Cost: 0},
			Entry{Index: 1, Cost: 3},
			Entry{Index: 4, Cost: 6},
			Entry{Index: 101, Cost: Inf},
		),
	}
}
