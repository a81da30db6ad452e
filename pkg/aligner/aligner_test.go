package aligner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/tsalign/pkg/aligner"
	"github.com/Sumatoshi-tech/tsalign/pkg/alignment"
	"github.com/Sumatoshi-tech/tsalign/pkg/alphabet"
	"github.com/Sumatoshi-tech/tsalign/pkg/cost"
)

// Inversion fixture: the query carries the reverse complement of AAACCC.
const (
	inversionReference = "TTGAC" + "AAACCC" + "GTTCA"
	inversionQuery     = "TTGAC" + "GGGTTT" + "GTTCA"
)

type fixture struct {
	name      string
	reference string
	query     string
}

var fixtures = []fixture{
	{"identical", "ACGTACGT", "ACGTACGT"},
	{"substitution", "ACGTTGCA", "ACGATGCA"},
	{"deletion", "GATTACA", "GATACA"},
	{"block change", "AAAAGGGG", "AAAACCCC"},
	{"inversion", inversionReference, inversionQuery},
	{"empty query", "ACG", ""},
}

func align(t *testing.T, reference, query string, opts aligner.Options) *alignment.Alignment {
	t.Helper()

	result, err := aligner.Align(context.Background(), []byte(reference), []byte(query), opts)
	require.NoError(t, err)

	replayed, _ := replay(t, reference, query, &opts.Costs, result)
	require.Equal(t, result.TotalCost, replayed, "replayed cost of %s", result.CIGAR())

	return result
}

// replay re-derives the cost of an operation stream and checks that it
// consumes both sequences. It also returns the number of secondary operations
// of every template switch.
func replay(t *testing.T, reference, query string, costs *cost.Table, a *alignment.Alignment) (cost.Cost, []int) {
	t.Helper()

	ref, qry := []byte(reference), []byte(query)
	total := cost.Zero

	var (
		r, q                   int64
		primary, secondary     []byte
		p, s                   int64
		primaryAnchor, sAnchor int64
		inSwitch               bool
		sec                    alignment.Secondary
		switchOps              []int
	)

	edit := func(e cost.EditCosts, kind alignment.Kind, ops [4]alignment.Kind) {
		switch kind {
		case ops[0], ops[1]:
			require.Less(t, r, int64(len(ref)))
			require.Less(t, q, int64(len(qry)))
			require.Equal(t, kind == ops[0], ref[r] == qry[q], "match flag at (%d,%d)", r, q)

			if kind == ops[0] {
				total = total.Add(e.Match)
			} else {
				total = total.Add(e.Substitution)
			}

			r++
			q++
		case ops[2]:
			total = total.Add(e.Insertion)
			q++
		case ops[3]:
			total = total.Add(e.Deletion)
			r++
		}
	}

	primaryOps := [4]alignment.Kind{alignment.PrimaryMatch, alignment.PrimarySubstitution, alignment.PrimaryInsertion, alignment.PrimaryDeletion}
	flankOps := [4]alignment.Kind{alignment.PrimaryFlankMatch, alignment.PrimaryFlankSubstitution, alignment.PrimaryFlankInsertion, alignment.PrimaryFlankDeletion}

	for op := range a.Types() {
		switch {
		case op.Kind.IsPrimaryEdit():
			require.False(t, inSwitch)
			edit(costs.Primary, op.Kind, primaryOps)
		case op.Kind.IsFlank():
			require.False(t, inSwitch)
			edit(costs.LeftFlank, op.Kind, flankOps)
		case op.Kind == alignment.PrimaryShortcut:
			for range op.DeltaReference {
				edit(costs.Primary, alignment.PrimaryMatch, primaryOps)
			}
		case op.Kind == alignment.TemplateSwitchEntrance:
			require.False(t, inSwitch)
			inSwitch = true
			sec = op.Secondary
			base := costs.EntranceReference

			if sec == alignment.SecondaryReference {
				primary, secondary = qry, ref
				primaryAnchor, sAnchor = q, r
			} else {
				base = costs.EntranceQuery
				primary, secondary = ref, qry
				primaryAnchor, sAnchor = r, q
			}

			p, s = primaryAnchor, sAnchor+op.FirstOffset
			require.GreaterOrEqual(t, s, int64(0))
			require.LessOrEqual(t, s, int64(len(secondary)))
			total = total.Add(base).Add(costs.Offset.Evaluate(op.FirstOffset))
			switchOps = append(switchOps, 0)
		case op.Kind == alignment.SecondaryRoot, op.Kind == alignment.PrimaryReentry:
		case op.Kind.IsSecondary():
			require.True(t, inSwitch)
			switchOps[len(switchOps)-1]++

			switch op.Kind {
			case alignment.SecondaryMatch, alignment.SecondarySubstitution:
				match := primary[p] == alphabet.DNA.Complement(secondary[s-1])
				require.Equal(t, op.Kind == alignment.SecondaryMatch, match)

				if match {
					total = total.Add(costs.Secondary.Match)
				} else {
					total = total.Add(costs.Secondary.Substitution)
				}

				p++
				s--
			case alignment.SecondaryInsertion:
				total = total.Add(costs.Secondary.Insertion)
				p++
			default:
				total = total.Add(costs.Secondary.Deletion)
				s--
			}
		case op.Kind == alignment.TemplateSwitchExit:
			require.True(t, inSwitch)
			inSwitch = false
			length := p - primaryAnchor
			total = total.Add(costs.Exit).Add(costs.Length.Evaluate(length)).
				Add(costs.LengthDifference.Evaluate(op.AntiPrimaryGap - length))

			if sec == alignment.SecondaryReference {
				q, r = p, sAnchor+op.AntiPrimaryGap
			} else {
				r, q = p, sAnchor+op.AntiPrimaryGap
			}
		default:
			t.Fatalf("unexpected operation %s", op)
		}
	}

	require.False(t, inSwitch)
	require.Equal(t, int64(len(ref)), r)
	require.Equal(t, int64(len(qry)), q)

	return total, switchOps
}

// editDistance is the weighted primary-only edit distance.
func editDistance(reference, query string, e cost.EditCosts) cost.Cost {
	prev := make([]cost.Cost, len(query)+1)
	curr := make([]cost.Cost, len(query)+1)

	for j := 1; j <= len(query); j++ {
		prev[j] = prev[j-1].Add(e.Insertion)
	}

	for i := 1; i <= len(reference); i++ {
		curr[0] = prev[0].Add(e.Deletion)

		for j := 1; j <= len(query); j++ {
			diagonal := e.Substitution
			if reference[i-1] == query[j-1] {
				diagonal = e.Match
			}

			curr[j] = prev[j-1].Add(diagonal).
				Min(prev[j].Add(e.Deletion)).
				Min(curr[j-1].Add(e.Insertion))
		}

		prev, curr = curr, prev
	}

	return prev[len(query)]
}

func TestAlign_IdenticalSequences(t *testing.T) {
	t.Parallel()

	result := align(t, "ACGTACGT", "ACGTACGT", aligner.DefaultOptions())

	assert.Equal(t, cost.Zero, result.TotalCost)
	assert.Equal(t, []alignment.Run{{Count: 8, Type: alignment.Of(alignment.PrimaryMatch)}}, result.Operations)
	assert.Equal(t, "reference", result.ReferenceName)
	assert.Positive(t, result.Statistics.ClosedNodes)
}

func TestAlign_EmptySequences(t *testing.T) {
	t.Parallel()

	result := align(t, "", "", aligner.DefaultOptions())

	assert.Equal(t, cost.Zero, result.TotalCost)
	assert.Empty(t, result.Operations)
}

func TestAlign_TemplateSwitchBeatsPrimaryEdits(t *testing.T) {
	t.Parallel()

	opts := aligner.DefaultOptions()
	primaryOnly := editDistance(inversionReference, inversionQuery, opts.Costs.Primary)
	require.Greater(t, primaryOnly, cost.Cost(3))

	for _, ord := range []aligner.NodeOrd{aligner.NodeOrdCostOnly, aligner.NodeOrdAntiDiagonal} {
		opts.Selection.NodeOrd = ord
		result := align(t, inversionReference, inversionQuery, opts)

		assert.Equal(t, cost.Cost(3), result.TotalCost, ord.String())
		assert.Equal(t, 1, result.TemplateSwitches(), ord.String())
	}
}

func TestAlign_ZeroTemplateSwitchesIsEditDistance(t *testing.T) {
	t.Parallel()

	for _, fx := range fixtures {
		opts := aligner.DefaultOptions()
		unlimited := align(t, fx.reference, fx.query, opts)

		opts.Selection.MaxTemplateSwitches = 0
		limited := align(t, fx.reference, fx.query, opts)

		assert.Equal(t, editDistance(fx.reference, fx.query, opts.Costs.Primary), limited.TotalCost, fx.name)
		assert.Zero(t, limited.TemplateSwitches(), fx.name)
		assert.LessOrEqual(t, unlimited.TotalCost, limited.TotalCost, fx.name)
	}
}

func TestAlign_StrategiesPreserveOptimalCost(t *testing.T) {
	t.Parallel()

	variants := map[string]func(*aligner.Selection){
		"anti-diagonal":   func(s *aligner.Selection) { s.NodeOrd = aligner.NodeOrdAntiDiagonal },
		"lower-bound":     func(s *aligner.Selection) { s.Chaining = aligner.ChainingLowerBound },
		"precompute-only": func(s *aligner.Selection) { s.Chaining = aligner.ChainingPrecomputeOnly },
		"shortcut":        func(s *aligner.Selection) { s.Shortcut = true },
		"max one switch":  func(s *aligner.Selection) { s.MaxTemplateSwitches = 1 },
		"all": func(s *aligner.Selection) {
			s.NodeOrd = aligner.NodeOrdAntiDiagonal
			s.Chaining = aligner.ChainingLowerBound
			s.Shortcut = true
		},
	}

	for _, fx := range fixtures {
		baseline := align(t, fx.reference, fx.query, aligner.DefaultOptions())

		for name, apply := range variants {
			opts := aligner.DefaultOptions()
			apply(&opts.Selection)

			result := align(t, fx.reference, fx.query, opts)
			assert.Equal(t, baseline.TotalCost, result.TotalCost, "%s with %s", fx.name, name)
		}
	}
}

func TestAlign_RestrictionsNeverLowerCost(t *testing.T) {
	t.Parallel()

	restrictions := map[string]func(*aligner.Selection){
		"forbid secondary deletion": func(s *aligner.Selection) { s.ForbidSecondaryDeletion = true },
		"max three matches":         func(s *aligner.Selection) { s.MaxConsecutivePrimaryMatches = 3 },
	}

	for _, fx := range fixtures {
		baseline := align(t, fx.reference, fx.query, aligner.DefaultOptions())

		for name, apply := range restrictions {
			opts := aligner.DefaultOptions()
			apply(&opts.Selection)

			result := align(t, fx.reference, fx.query, opts)
			assert.GreaterOrEqual(t, result.TotalCost, baseline.TotalCost, "%s with %s", fx.name, name)
		}
	}
}

func TestAlign_MaxConsecutivePrimaryMatches(t *testing.T) {
	t.Parallel()

	opts := aligner.DefaultOptions()
	opts.Selection.MaxConsecutivePrimaryMatches = 2
	opts.Selection.MaxTemplateSwitches = 0

	result := align(t, "ACGTACGT", "ACGTACGT", opts)

	assert.Positive(t, result.TotalCost)

	for _, run := range result.Operations {
		if run.Type.Kind == alignment.PrimaryMatch {
			assert.LessOrEqual(t, run.Count, 2)
		}
	}
}

func TestAlign_ShortcutEdges(t *testing.T) {
	t.Parallel()

	opts := aligner.DefaultOptions()
	opts.Selection.Shortcut = true

	result := align(t, "ACGTACGT", "ACGTACGT", opts)

	assert.Equal(t, cost.Zero, result.TotalCost)
	assert.Equal(t, []alignment.Run{{Count: 1, Type: alignment.Shortcut(8, 8)}}, result.Operations)
}

func TestAlign_LookaheadMinLength(t *testing.T) {
	t.Parallel()

	unconstrained := align(t, inversionReference, inversionQuery, aligner.DefaultOptions())

	for _, minLength := range []int{3, 6, 8} {
		opts := aligner.DefaultOptions()
		opts.Selection.MinLength = aligner.MinLengthLookahead
		opts.Selection.MinLengthValue = minLength

		result := align(t, inversionReference, inversionQuery, opts)
		assert.GreaterOrEqual(t, result.TotalCost, unconstrained.TotalCost)

		_, switchOps := replay(t, inversionReference, inversionQuery, &opts.Costs, result)
		for _, ops := range switchOps {
			assert.GreaterOrEqual(t, ops, minLength)
		}

		if minLength <= 6 {
			assert.Equal(t, unconstrained.TotalCost, result.TotalCost)
		}
	}
}

func TestAlign_Flanks(t *testing.T) {
	t.Parallel()

	opts := aligner.DefaultOptions()
	opts.LeftFlankLength = 2
	opts.RightFlankLength = 2

	result := align(t, inversionReference, inversionQuery, opts)

	assert.Equal(t, cost.Cost(3), result.TotalCost)
	assert.Contains(t, result.Operations, alignment.Run{Count: 2, Type: alignment.Of(alignment.PrimaryFlankMatch)})
}

func TestAlign_LeftFlankTruncatedAtStart(t *testing.T) {
	t.Parallel()

	reference := "AAACCC" + "GTTCATTGAC"
	query := "GGGTTT" + "GTTCATTGAC"

	for _, left := range []int{0, 1, 2, 8} {
		opts := aligner.DefaultOptions()
		opts.LeftFlankLength = left
		opts.RightFlankLength = 2

		result := align(t, reference, query, opts)

		assert.Equal(t, cost.Cost(3), result.TotalCost, "left flank %d", left)
		require.NotEmpty(t, result.Operations)
		assert.Equal(t, alignment.TemplateSwitchEntrance, result.Operations[0].Type.Kind, "left flank %d", left)
	}
}

func TestAlign_SwitchAtEndReenters(t *testing.T) {
	t.Parallel()

	reference := "GTTCATTGAC" + "AAACCC"
	query := "GTTCATTGAC" + "GGGTTT"

	for _, right := range []int{0, 2} {
		opts := aligner.DefaultOptions()
		opts.RightFlankLength = right

		result := align(t, reference, query, opts)

		assert.Equal(t, cost.Cost(3), result.TotalCost, "right flank %d", right)
		require.NotEmpty(t, result.Operations)
		assert.Equal(t, alignment.Of(alignment.PrimaryReentry), result.Operations[len(result.Operations)-1].Type,
			"right flank %d: %s", right, result.CIGAR())
	}
}

func TestAlign_TinyLimitsAbort(t *testing.T) {
	t.Parallel()

	opts := aligner.DefaultOptions()
	opts.MemoryLimit = 1

	_, err := aligner.Align(context.Background(), []byte(inversionReference), []byte(inversionQuery), opts)
	require.ErrorIs(t, err, aligner.ErrSearchAborted)

	var aborted *aligner.SearchAbortedError
	require.True(t, errors.As(err, &aborted))
	assert.Equal(t, aligner.MemoryLimitExceeded, aborted.Reason)
	assert.Positive(t, aborted.Statistics.MemoryBytes)

	opts = aligner.DefaultOptions()
	opts.CostLimit = 1

	_, err = aligner.Align(context.Background(), []byte(inversionReference), []byte(inversionQuery), opts)
	require.True(t, errors.As(err, &aborted))
	assert.Equal(t, aligner.CostLimitExceeded, aborted.Reason)
	assert.Contains(t, err.Error(), "cost limit exceeded")

	opts.CostLimit = 3
	result := align(t, inversionReference, inversionQuery, opts)
	assert.Equal(t, cost.Cost(3), result.TotalCost)
}

func TestAlign_Exhausted(t *testing.T) {
	t.Parallel()

	opts := aligner.DefaultOptions()
	opts.Costs.Primary = cost.EditCosts{Match: 0, Substitution: cost.Inf, Insertion: cost.Inf, Deletion: cost.Inf}
	opts.Selection.MaxTemplateSwitches = 0

	_, err := aligner.Align(context.Background(), []byte("AC"), []byte("AG"), opts)
	require.ErrorIs(t, err, aligner.ErrSearchExhausted)
	assert.NotErrorIs(t, err, aligner.ErrSearchAborted)
}

func TestAlign_InvalidInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := aligner.Align(ctx, []byte("ACXT"), []byte("ACGT"), aligner.DefaultOptions())
	require.ErrorIs(t, err, alphabet.ErrInvalidCharacter)
	assert.Contains(t, err.Error(), "reference")

	opts := aligner.DefaultOptions()
	opts.LeftFlankLength = -1
	_, err = aligner.Align(ctx, []byte("A"), []byte("A"), opts)
	require.ErrorIs(t, err, aligner.ErrInvalidOptions)

	opts = aligner.DefaultOptions()
	opts.Costs.Exit = -1
	_, err = aligner.Align(ctx, []byte("A"), []byte("A"), opts)
	require.ErrorIs(t, err, cost.ErrNegativeCost)

	opts = aligner.DefaultOptions()
	opts.Selection.Chaining = 9
	_, err = aligner.Align(ctx, []byte("A"), []byte("A"), opts)
	require.ErrorIs(t, err, aligner.ErrUnknownStrategy)
}

func TestAlign_LowercaseInputIsNormalised(t *testing.T) {
	t.Parallel()

	result := align(t, "ACGT", "ACGT", aligner.DefaultOptions())
	lower, err := aligner.Align(context.Background(), []byte("acgt"), []byte("acgt"), aligner.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, result.Operations, lower.Operations)
}

func TestAlign_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := aligner.Align(ctx, []byte("ACGT"), []byte("ACGT"), aligner.DefaultOptions())
	require.ErrorIs(t, err, context.Canceled)
}

func TestSelection_Parse(t *testing.T) {
	t.Parallel()

	ord, err := aligner.ParseNodeOrd("anti-diagonal")
	require.NoError(t, err)
	assert.Equal(t, aligner.NodeOrdAntiDiagonal, ord)

	ml, err := aligner.ParseMinLength("lookahead")
	require.NoError(t, err)
	assert.Equal(t, aligner.MinLengthLookahead, ml)

	ch, err := aligner.ParseChaining("precompute-only")
	require.NoError(t, err)
	assert.Equal(t, aligner.ChainingPrecomputeOnly, ch)
	assert.Equal(t, "precompute-only", ch.String())

	_, err = aligner.ParseChaining("upper-bound")
	require.ErrorIs(t, err, aligner.ErrUnknownStrategy)

	assert.Contains(t, aligner.DefaultSelection().String(), "node_ord=cost-only")
}

func BenchmarkAlign_Inversion(b *testing.B) {
	for _, order := range []aligner.NodeOrd{aligner.NodeOrdCostOnly, aligner.NodeOrdAntiDiagonal} {
		for _, chaining := range []aligner.Chaining{aligner.ChainingNone, aligner.ChainingLowerBound} {
			opts := aligner.DefaultOptions()
			opts.Selection.NodeOrd = order
			opts.Selection.Chaining = chaining

			b.Run(order.String()+"/"+chaining.String(), func(b *testing.B) {
				for b.Loop() {
					_, err := aligner.Align(context.Background(), []byte(inversionReference), []byte(inversionQuery), opts)
					if err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
