package aligner

import (
	"errors"
	"fmt"
)

// Unlimited disables a numeric bound in Selection.
const Unlimited = -1

// NodeOrd selects the frontier ordering.
type NodeOrd uint8

// Node orderings.
const (
	// NodeOrdCostOnly orders by estimated total cost, then insertion order.
	NodeOrdCostOnly NodeOrd = iota
	// NodeOrdAntiDiagonal breaks cost ties by the larger anti-diagonal.
	NodeOrdAntiDiagonal
)

// MinLength selects how the template switch minimum length is enforced.
type MinLength uint8

// Minimum length strategies.
const (
	MinLengthNone MinLength = iota
	MinLengthLookahead
)

// Chaining selects the remaining-cost lower bound.
type Chaining uint8

// Chaining strategies.
const (
	ChainingNone Chaining = iota
	ChainingPrecomputeOnly
	ChainingLowerBound
)

var (
	nodeOrdNames   = []string{"cost-only", "anti-diagonal"}
	minLengthNames = []string{"none", "lookahead"}
	chainingNames  = []string{"none", "precompute-only", "lower-bound"}
)

// ErrUnknownStrategy is returned when a strategy name cannot be parsed.
var ErrUnknownStrategy = errors.New("unknown strategy")

func (o NodeOrd) String() string   { return enumName(nodeOrdNames, int(o)) }
func (m MinLength) String() string { return enumName(minLengthNames, int(m)) }
func (c Chaining) String() string  { return enumName(chainingNames, int(c)) }

// ParseNodeOrd parses "cost-only" or "anti-diagonal".
func ParseNodeOrd(name string) (NodeOrd, error) {
	i, err := parseEnum("node ord", nodeOrdNames, name)

	return NodeOrd(i), err
}

// ParseMinLength parses "none" or "lookahead".
func ParseMinLength(name string) (MinLength, error) {
	i, err := parseEnum("min length", minLengthNames, name)

	return MinLength(i), err
}

// ParseChaining parses "none", "precompute-only" or "lower-bound".
func ParseChaining(name string) (Chaining, error) {
	i, err := parseEnum("chaining", chainingNames, name)

	return Chaining(i), err
}

func enumName(names []string, i int) string {
	if i >= 0 && i < len(names) {
		return names[i]
	}

	return fmt.Sprintf("unknown(%d)", i)
}

func parseEnum(axis string, names []string, name string) (int, error) {
	for i, n := range names {
		if n == name {
			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: %s %q (want one of %v)", ErrUnknownStrategy, axis, name, names)
}

// Selection picks one strategy per axis. It is an immutable value chosen once
// per search.
type Selection struct {
	NodeOrd   NodeOrd
	MinLength MinLength
	// MinLengthValue is the minimum number of secondary operations per
	// template switch under MinLengthLookahead.
	MinLengthValue int
	Chaining       Chaining

	// MaxTemplateSwitches bounds the number of template switches; Unlimited
	// disables the bound and 0 yields a plain primary alignment.
	MaxTemplateSwitches int
	// Shortcut adds direct edges over exact match runs.
	Shortcut bool
	// ForbidSecondaryDeletion removes SecondaryDeletion edges.
	ForbidSecondaryDeletion bool
	// MaxConsecutivePrimaryMatches bounds runs of PrimaryMatch, or Unlimited.
	MaxConsecutivePrimaryMatches int
}

// DefaultSelection returns the plain configuration: cost-only ordering, no
// minimum length, no chaining and no bounds.
func DefaultSelection() Selection {
	return Selection{
		NodeOrd:                      NodeOrdCostOnly,
		MinLength:                    MinLengthNone,
		Chaining:                     ChainingNone,
		MaxTemplateSwitches:          Unlimited,
		MaxConsecutivePrimaryMatches: Unlimited,
	}
}

// String describes the selection for logs.
func (s Selection) String() string {
	return fmt.Sprintf("node_ord=%s min_length=%s(%d) chaining=%s max_ts=%d shortcut=%t "+
		"secondary_deletion=%t max_consecutive_matches=%d",
		s.NodeOrd, s.MinLength, s.MinLengthValue, s.Chaining, s.MaxTemplateSwitches, s.Shortcut,
		!s.ForbidSecondaryDeletion, s.MaxConsecutivePrimaryMatches)
}
