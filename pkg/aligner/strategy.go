package aligner

import (
	"fmt"

	"github.com/Sumatoshi-tech/tsalign/pkg/alignment"
	"github.com/Sumatoshi-tech/tsalign/pkg/cost"
)

// Memory is the per-node auxiliary state owned by the strategies. Each axis
// writes only its own field, and fields of inactive axes stay zero so they
// never split otherwise identical states.
type Memory struct {
	TemplateSwitchCount       int32
	SecondaryLength           int32
	ConsecutivePrimaryMatches int32
}

// Edge is a candidate transition offered to the strategies.
type Edge struct {
	from identifier
	to   identifier

	Type alignment.Type
	Cost cost.Cost
	// Length is the number of primary matches covered by a shortcut edge.
	Length int32
}

// Strategy is one independently selectable search policy.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string
	// Root initialises the strategy's memory of the root node.
	Root(ctx *Context, mem *Memory)
	// Successor derives the child memory for edge in place. Returning false
	// removes the edge from the successor set.
	Successor(ctx *Context, edge *Edge, mem *Memory) bool
}

// NodeOrdStrategy orders the frontier.
type NodeOrdStrategy interface {
	Strategy
	Less(a, b *frontierEntry) bool
}

// TemplateSwitchMinLengthStrategy bounds the length of template switches.
type TemplateSwitchMinLengthStrategy interface {
	Strategy
	// AllowEntrance reports whether a switch with primaryRemaining characters
	// left on its primary track and firstSecondary characters available on its
	// secondary track can still reach the minimum length.
	AllowEntrance(ctx *Context, primaryRemaining, firstSecondary int32) bool
}

// ChainingStrategy supplies the remaining-cost lower bound.
type ChainingStrategy interface {
	Strategy
	Precompute(ctx *Context)
	// LowerBound never overestimates the cost from id to the goal.
	// canSwitch is false once no further template switch may be entered.
	LowerBound(ctx *Context, id identifier, canSwitch bool) cost.Cost
	// Anchors returns the number of chain anchors found by Precompute.
	Anchors() int
}

// TemplateSwitchCountStrategy limits the number of template switches.
type TemplateSwitchCountStrategy interface {
	Strategy
	CanEnter(mem Memory) bool
}

// ShortcutStrategy offers direct edges over runs of exact matches.
type ShortcutStrategy interface {
	Strategy
	// Shortcut returns the length of the shortcut starting at (r, q), or 0.
	Shortcut(ctx *Context, r, q int32) int32
}

// Strategies is the composition of one strategy per axis.
type Strategies struct {
	NodeOrd           NodeOrdStrategy
	MinLength         TemplateSwitchMinLengthStrategy
	Chaining          ChainingStrategy
	Count             TemplateSwitchCountStrategy
	Shortcut          ShortcutStrategy
	SecondaryDeletion Strategy
	PrimaryMatch      Strategy

	all []Strategy
}

// NewStrategies builds the composite for sel.
func NewStrategies(sel Selection) (*Strategies, error) {
	s := &Strategies{}

	switch sel.NodeOrd {
	case NodeOrdCostOnly:
		s.NodeOrd = costOnlyNodeOrd{}
	case NodeOrdAntiDiagonal:
		s.NodeOrd = antiDiagonalNodeOrd{}
	default:
		return nil, fmt.Errorf("%w: node ord %d", ErrUnknownStrategy, sel.NodeOrd)
	}

	switch sel.MinLength {
	case MinLengthNone:
		s.MinLength = noMinLength{}
	case MinLengthLookahead:
		if sel.MinLengthValue < 0 {
			return nil, fmt.Errorf("%w: negative template switch min length %d", ErrInvalidOptions, sel.MinLengthValue)
		}

		s.MinLength = lookaheadMinLength{min: int32(sel.MinLengthValue)}
	default:
		return nil, fmt.Errorf("%w: min length %d", ErrUnknownStrategy, sel.MinLength)
	}

	switch sel.Chaining {
	case ChainingNone:
		s.Chaining = &noChaining{}
	case ChainingPrecomputeOnly:
		s.Chaining = &precomputeOnlyChaining{}
	case ChainingLowerBound:
		s.Chaining = &lowerBoundChaining{}
	default:
		return nil, fmt.Errorf("%w: chaining %d", ErrUnknownStrategy, sel.Chaining)
	}

	if sel.MaxTemplateSwitches < 0 {
		s.Count = noTemplateSwitchCount{}
	} else {
		s.Count = maxTemplateSwitchCount{max: int32(sel.MaxTemplateSwitches)}
	}

	if sel.Shortcut {
		s.Shortcut = matchRunShortcut{}
	} else {
		s.Shortcut = noShortcut{}
	}

	if sel.ForbidSecondaryDeletion {
		s.SecondaryDeletion = forbidSecondaryDeletion{}
	} else {
		s.SecondaryDeletion = allowSecondaryDeletion{}
	}

	if sel.MaxConsecutivePrimaryMatches < 0 {
		s.PrimaryMatch = allowPrimaryMatch{}
	} else {
		s.PrimaryMatch = maxConsecutivePrimaryMatch{max: int32(sel.MaxConsecutivePrimaryMatches)}
	}

	s.all = []Strategy{s.NodeOrd, s.MinLength, s.Chaining, s.Count, s.Shortcut, s.SecondaryDeletion, s.PrimaryMatch}

	return s, nil
}

// Names lists the selected strategy names.
func (s *Strategies) Names() []string {
	names := make([]string, len(s.all))
	for i, st := range s.all {
		names[i] = st.Name()
	}

	return names
}

// Root delegates to every axis.
func (s *Strategies) Root(ctx *Context, mem *Memory) {
	for _, st := range s.all {
		st.Root(ctx, mem)
	}
}

// Successor delegates to every axis and rejects the edge if any axis does.
func (s *Strategies) Successor(ctx *Context, edge *Edge, mem *Memory) bool {
	for _, st := range s.all {
		if !st.Successor(ctx, edge, mem) {
			return false
		}
	}

	return true
}

// stateless provides the no-op Root and Successor of strategies without memory.
type stateless struct{}

func (stateless) Root(*Context, *Memory) {}

func (stateless) Successor(*Context, *Edge, *Memory) bool { return true }
