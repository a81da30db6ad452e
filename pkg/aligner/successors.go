package aligner

import (
	"fmt"

	"github.com/Sumatoshi-tech/tsalign/pkg/alignment"
	"github.com/Sumatoshi-tech/tsalign/pkg/cost"
)

// editKinds names match, substitution, insertion and deletion of one track.
type editKinds [4]alignment.Kind

var (
	primaryKinds = editKinds{
		alignment.PrimaryMatch, alignment.PrimarySubstitution,
		alignment.PrimaryInsertion, alignment.PrimaryDeletion,
	}
	flankKinds = editKinds{
		alignment.PrimaryFlankMatch, alignment.PrimaryFlankSubstitution,
		alignment.PrimaryFlankInsertion, alignment.PrimaryFlankDeletion,
	}
	secondaryKinds = editKinds{
		alignment.SecondaryMatch, alignment.SecondarySubstitution,
		alignment.SecondaryInsertion, alignment.SecondaryDeletion,
	}
)

// successors calls emit for every structurally legal edge leaving id. Edges
// priced Inf are not emitted; strategy gating happens in the caller except
// for the entrance pruning of the min length and count axes.
func successors(ctx *Context, st *Strategies, id identifier, mem Memory, emit func(Edge)) {
	switch id.Kind {
	case kindPrimary:
		primaryEdits(ctx, id, ctx.Costs.Primary, primaryKinds, primaryID, emit)

		atStart := id.Reference == 0 && id.Query == 0

		if ctx.LeftFlankLength > 0 {
			primaryEdits(ctx, id, ctx.Costs.LeftFlank, flankKinds, leftFlankID(1, atStart, ctx.LeftFlankLength), emit)
		}

		// A left flank is truncated by the start of the sequences.
		if (ctx.LeftFlankLength == 0 || atStart) && st.Count.CanEnter(mem) {
			entrances(ctx, st, id, emit)
		}

		if run := st.Shortcut.Shortcut(ctx, id.Reference, id.Query); run > 0 {
			emitPriced(emit, Edge{
				from:   id,
				to:     primaryID(id.Reference+run, id.Query+run),
				Type:   alignment.Shortcut(int64(run), int64(run)),
				Cost:   ctx.Costs.Primary.Match.Mul(int(run)),
				Length: run,
			})
		}
	case kindLeftFlank:
		if id.Flank < ctx.LeftFlankLength {
			primaryEdits(ctx, id, ctx.Costs.LeftFlank, flankKinds,
				leftFlankID(id.Flank+1, id.FromStart, ctx.LeftFlankLength), emit)
		}

		if (id.Flank == ctx.LeftFlankLength || id.FromStart) && st.Count.CanEnter(mem) {
			entrances(ctx, st, id, emit)
		}
	case kindEntrance:
		primaryAnchor, _ := id.anchors()
		to := id
		to.Kind = kindSecondary
		to.Primary = primaryAnchor
		emit(Edge{from: id, to: to, Type: alignment.Of(alignment.SecondaryRoot)})
	case kindSecondary:
		secondaryEdits(ctx, id, emit)
		exits(ctx, id, emit)
	case kindExit:
		to := primaryID(id.Reference, id.Query)
		if ctx.RightFlankLength > 0 {
			to.Kind = kindRightFlank
		}

		emit(Edge{from: id, to: to, Type: alignment.Of(alignment.PrimaryReentry)})
	case kindRightFlank:
		next := id.Flank + 1

		target := primaryID
		if next < ctx.RightFlankLength {
			target = func(r, q int32) identifier {
				return identifier{Kind: kindRightFlank, Reference: r, Query: q, Flank: next}
			}
		}

		primaryEdits(ctx, id, ctx.Costs.RightFlank, flankKinds, target, emit)
	default:
		panic(fmt.Sprintf("aligner: no successors for node kind %s", id.Kind))
	}
}

// leftFlankID targets the left flank node after flank operations. A complete
// flank forgets where it started.
func leftFlankID(flank int32, fromStart bool, length int32) func(r, q int32) identifier {
	fromStart = fromStart && flank < length

	return func(r, q int32) identifier {
		return identifier{Kind: kindLeftFlank, Reference: r, Query: q, Flank: flank, FromStart: fromStart}
	}
}

// primaryEdits emits the edits that advance reference and query directly.
// Deletions consume a reference character, insertions a query character.
func primaryEdits(ctx *Context, id identifier, costs cost.EditCosts, kinds editKinds,
	target func(r, q int32) identifier, emit func(Edge),
) {
	r, q := id.Reference, id.Query
	hasRef := int(r) < len(ctx.Reference)
	hasQuery := int(q) < len(ctx.Query)

	if hasRef && hasQuery {
		kind, c := kinds[1], costs.Substitution
		if ctx.Reference[r] == ctx.Query[q] {
			kind, c = kinds[0], costs.Match
		}

		emitPriced(emit, Edge{from: id, to: target(r+1, q+1), Type: alignment.Of(kind), Cost: c})
	}

	if hasQuery {
		emitPriced(emit, Edge{from: id, to: target(r, q+1), Type: alignment.Of(kinds[2]), Cost: costs.Insertion})
	}

	if hasRef {
		emitPriced(emit, Edge{from: id, to: target(r+1, q), Type: alignment.Of(kinds[3]), Cost: costs.Deletion})
	}
}

// entrances emits every template switch entrance from the primary position
// of id. The secondary start is the anchor of the secondary sequence plus the
// first offset and must lie within that sequence.
func entrances(ctx *Context, st *Strategies, id identifier, emit func(Edge)) {
	for _, secondary := range alignment.Secondaries {
		probe := identifier{Secondary: secondary, Reference: id.Reference, Query: id.Query}
		primaryAnchor, secondaryAnchor := probe.anchors()
		primary, secondarySeq := ctx.tracks(secondary)
		primaryRemaining := int32(len(primary)) - primaryAnchor
		base := ctx.entranceCost(secondary)

		lo := -int64(secondaryAnchor)
		hi := int64(len(secondarySeq)) - int64(secondaryAnchor)

		clampIntervals(ctx.offsetIntervals, lo, hi, func(offset int64) {
			first := secondaryAnchor + int32(offset)
			if !st.MinLength.AllowEntrance(ctx, primaryRemaining, first) {
				return
			}

			to := probe
			to.Kind = kindEntrance
			to.SecondaryIndex = first

			emitPriced(emit, Edge{
				from: id,
				to:   to,
				Type: alignment.Entrance(secondary, offset),
				Cost: base.Add(ctx.Costs.Offset.Evaluate(offset)),
			})
		})
	}
}

// secondaryEdits walks the primary track forward and the secondary track
// backward, matching primary characters against the complement of the
// secondary.
func secondaryEdits(ctx *Context, id identifier, emit func(Edge)) {
	primary, secondary := ctx.tracks(id.Secondary)
	costs := ctx.Costs.Secondary
	p, s := id.Primary, id.SecondaryIndex
	hasPrimary := int(p) < len(primary)
	hasSecondary := s > 0

	move := func(dp, ds int32) identifier {
		to := id
		to.Primary += dp
		to.SecondaryIndex -= ds

		return to
	}

	if hasPrimary && hasSecondary {
		kind, c := secondaryKinds[1], costs.Substitution
		if primary[p] == ctx.Alphabet.Complement(secondary[s-1]) {
			kind, c = secondaryKinds[0], costs.Match
		}

		emitPriced(emit, Edge{from: id, to: move(1, 1), Type: alignment.Of(kind), Cost: c})
	}

	if hasPrimary {
		emitPriced(emit, Edge{from: id, to: move(1, 0), Type: alignment.Of(secondaryKinds[2]), Cost: costs.Insertion})
	}

	if hasSecondary {
		emitPriced(emit, Edge{from: id, to: move(0, 1), Type: alignment.Of(secondaryKinds[3]), Cost: costs.Deletion})
	}
}

// exits emits every template switch exit. The primary track continues where
// the switch stopped, the anti-primary sequence resumes at its anchor plus the
// anti-primary gap.
func exits(ctx *Context, id identifier, emit func(Edge)) {
	primaryAnchor, secondaryAnchor := id.anchors()
	_, secondary := ctx.tracks(id.Secondary)

	length := int64(id.Primary - primaryAnchor)
	base := ctx.Costs.Exit.Add(ctx.Costs.Length.Evaluate(length))

	if base.IsInf() {
		return
	}

	// The length difference ranges over gap - length, with the resumed
	// anti-primary position inside the secondary sequence.
	lo := -int64(secondaryAnchor) - length
	hi := int64(len(secondary)) - int64(secondaryAnchor) - length

	clampIntervals(ctx.lengthDifferenceIntervals, lo, hi, func(difference int64) {
		gap := length + difference
		resumed := secondaryAnchor + int32(gap)

		to := identifier{Kind: kindExit, Reference: resumed, Query: id.Primary}
		if id.Secondary == alignment.SecondaryQuery {
			to = identifier{Kind: kindExit, Reference: id.Primary, Query: resumed}
		}

		emitPriced(emit, Edge{
			from: id,
			to:   to,
			Type: alignment.Exit(gap),
			Cost: base.Add(ctx.Costs.LengthDifference.Evaluate(difference)),
		})
	})
}

func emitPriced(emit func(Edge), edge Edge) {
	if edge.Cost.IsInf() {
		return
	}

	emit(edge)
}
