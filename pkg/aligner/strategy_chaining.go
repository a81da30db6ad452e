package aligner

import (
	"github.com/Sumatoshi-tech/tsalign/pkg/cost"
)

// chainAnchorK is the k-mer length of chain anchors.
const chainAnchorK = 8

// noChaining runs a uniform cost search.
type noChaining struct{ stateless }

func (*noChaining) Name() string { return "chaining=none" }

func (*noChaining) Precompute(*Context) {}

func (*noChaining) LowerBound(*Context, identifier, bool) cost.Cost { return cost.Zero }

func (*noChaining) Anchors() int { return 0 }

// precomputeOnlyChaining performs the lower bound precomputation and the
// anchor scan but searches without a heuristic.
type precomputeOnlyChaining struct {
	stateless

	bounds  lowerBounds
	anchors int
}

func (*precomputeOnlyChaining) Name() string { return "chaining=precompute-only" }

func (p *precomputeOnlyChaining) Precompute(ctx *Context) {
	p.bounds = newLowerBounds(ctx.Costs)
	p.anchors = countChainAnchors(ctx)
}

func (*precomputeOnlyChaining) LowerBound(*Context, identifier, bool) cost.Cost { return cost.Zero }

func (p *precomputeOnlyChaining) Anchors() int { return p.anchors }

// lowerBoundChaining guides the search with an admissible and consistent
// lower bound on the remaining cost.
//
// A primary-like node off the final diagonal by |Δ| needs either |Δ| indels,
// each costing at least minIndel, or a template switch, which costs at least
// minEntrance + minExit. A node inside a switch still has to pay an exit.
type lowerBoundChaining struct {
	stateless

	bounds  lowerBounds
	anchors int
}

func (*lowerBoundChaining) Name() string { return "chaining=lower-bound" }

func (l *lowerBoundChaining) Precompute(ctx *Context) {
	l.bounds = newLowerBounds(ctx.Costs)
	l.anchors = countChainAnchors(ctx)
}

func (l *lowerBoundChaining) LowerBound(ctx *Context, id identifier, canSwitch bool) cost.Cost {
	if !id.Kind.primaryLike() {
		return l.bounds.minExit
	}

	delta := (len(ctx.Reference) - int(id.Reference)) - (len(ctx.Query) - int(id.Query))
	if delta < 0 {
		delta = -delta
	}

	bound := l.bounds.minIndel.Mul(delta)
	if canSwitch {
		bound = bound.Min(l.bounds.minSwitch)
	}

	return bound
}

func (l *lowerBoundChaining) Anchors() int { return l.anchors }

type lowerBounds struct {
	minIndel  cost.Cost
	minSwitch cost.Cost
	minExit   cost.Cost
}

func newLowerBounds(costs *cost.Table) lowerBounds {
	return lowerBounds{
		minIndel:  costs.MinIndel(),
		minSwitch: costs.MinEntrance().Add(costs.MinExit()),
		minExit:   costs.MinExit(),
	}
}

// countChainAnchors counts k-mer hits between each sequence and the reverse
// complement of the other, the seeds a template switch chain is built from.
func countChainAnchors(ctx *Context) int {
	return kmerHits(ctx.Reference, ctx.Alphabet.ReverseComplement(ctx.Query)) +
		kmerHits(ctx.Query, ctx.Alphabet.ReverseComplement(ctx.Reference))
}

func kmerHits(seq, target []byte) int {
	if len(seq) < chainAnchorK || len(target) < chainAnchorK {
		return 0
	}

	index := make(map[string]int, len(target)-chainAnchorK+1)
	for i := 0; i+chainAnchorK <= len(target); i++ {
		index[string(target[i:i+chainAnchorK])]++
	}

	hits := 0
	for i := 0; i+chainAnchorK <= len(seq); i++ {
		hits += index[string(seq[i:i+chainAnchorK])]
	}

	return hits
}
