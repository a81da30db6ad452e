package aligner

// costOnlyNodeOrd orders by estimated total cost, then insertion order.
type costOnlyNodeOrd struct{ stateless }

func (costOnlyNodeOrd) Name() string { return "node_ord=cost-only" }

func (costOnlyNodeOrd) Less(a, b *frontierEntry) bool {
	if a.f != b.f {
		return a.f < b.f
	}

	return a.seq < b.seq
}

// antiDiagonalNodeOrd prefers nodes further along both sequences among equal
// cost candidates. The extra key makes heap operations more expensive, so it
// is not always faster than costOnlyNodeOrd.
type antiDiagonalNodeOrd struct{ stateless }

func (antiDiagonalNodeOrd) Name() string { return "node_ord=anti-diagonal" }

func (antiDiagonalNodeOrd) Less(a, b *frontierEntry) bool {
	if a.f != b.f {
		return a.f < b.f
	}

	if a.antiDiagonal != b.antiDiagonal {
		return a.antiDiagonal > b.antiDiagonal
	}

	return a.seq < b.seq
}
