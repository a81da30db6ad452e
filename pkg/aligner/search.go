// Package aligner finds minimum-cost template-switch alignments with an A*
// search over the alignment state graph. The search is parameterised by one
// strategy per axis (node ordering, minimum switch length, chaining, switch
// count, shortcuts, secondary deletions and primary matches).
package aligner

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"
	"unsafe"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/tsalign/pkg/alignment"
	"github.com/Sumatoshi-tech/tsalign/pkg/alphabet"
	"github.com/Sumatoshi-tech/tsalign/pkg/cost"
)

// tracerName is the OTel tracer name of the aligner.
const tracerName = "tsalign"

// cancelCheckInterval is the number of expansions between context checks.
const cancelCheckInterval = 4096

// mapEntryOverhead approximates the per-entry bucket overhead of the visited map.
const mapEntryOverhead = 16

// Options configures a single alignment.
type Options struct {
	Costs     cost.Table
	Selection Selection

	LeftFlankLength  int
	RightFlankLength int

	// CostLimit aborts the search once the cheapest open estimate exceeds it.
	// Zero disables the limit.
	CostLimit cost.Cost
	// MemoryLimit aborts the search once its estimated memory in bytes
	// exceeds it. Zero disables the limit.
	MemoryLimit uint64

	ReferenceName string
	QueryName     string

	// Alphabet validates the sequences and defines complements. Defaults to DNA.
	Alphabet *alphabet.Alphabet
	// Logger receives search summaries. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns options with the default cost table and strategies.
func DefaultOptions() Options {
	return Options{
		Costs:         cost.DefaultTable(),
		Selection:     DefaultSelection(),
		ReferenceName: "reference",
		QueryName:     "query",
		Alphabet:      alphabet.DNA,
	}
}

// node is an arena slot. pred is the arena index of the predecessor, or -1.
type node struct {
	id     identifier
	mem    Memory
	g      cost.Cost
	pred   int32
	op     alignment.Type
	closed bool
}

const (
	noPredecessor int32 = -1
	maxSeqLength        = math.MaxInt32 / 2
)

var (
	nodeBytes    = uint64(unsafe.Sizeof(node{}))
	entryBytes   = uint64(unsafe.Sizeof(frontierEntry{}))
	visitedBytes = uint64(unsafe.Sizeof(key{})) + uint64(unsafe.Sizeof(int32(0))) + mapEntryOverhead
)

type search struct {
	ctx        *Context
	strategies *Strategies
	opts       Options
	logger     *slog.Logger

	nodes   []node
	visited map[key]int32
	open    frontier
	stats   alignment.Statistics
}

// Align computes a minimum-cost alignment of query against reference.
//
// A search stopped by CostLimit or MemoryLimit returns a *SearchAbortedError;
// an unreachable goal returns ErrSearchExhausted. Cancellation of ctx is
// checked periodically.
func Align(ctx context.Context, reference, query []byte, opts Options) (*alignment.Alignment, error) {
	s, err := newSearch(reference, query, opts)
	if err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "tsalign.align",
		trace.WithAttributes(
			attribute.Int("align.reference_length", len(reference)),
			attribute.Int("align.query_length", len(query)),
			attribute.StringSlice("align.strategies", s.strategies.Names()),
		))
	defer span.End()

	result, err := s.run(ctx)

	span.SetAttributes(
		attribute.Int64("align.opened_nodes", int64(s.stats.OpenedNodes)),
		attribute.Int64("align.closed_nodes", int64(s.stats.ClosedNodes)),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	span.SetAttributes(attribute.Int64("align.cost", result.TotalCost.Int64()))

	return result, nil
}

func newSearch(reference, query []byte, opts Options) (*search, error) {
	if opts.Alphabet == nil {
		opts.Alphabet = alphabet.DNA
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.LeftFlankLength < 0 || opts.RightFlankLength < 0 {
		return nil, fmt.Errorf("%w: negative flank length", ErrInvalidOptions)
	}

	if opts.CostLimit < 0 {
		return nil, fmt.Errorf("%w: negative cost limit", ErrInvalidOptions)
	}

	if len(reference) > maxSeqLength || len(query) > maxSeqLength {
		return nil, fmt.Errorf("%w: sequences longer than %d", ErrInvalidOptions, maxSeqLength)
	}

	err := opts.Costs.Validate()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	reference, err = opts.Alphabet.Normalize(reference)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}

	query, err = opts.Alphabet.Normalize(query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	strategies, err := NewStrategies(opts.Selection)
	if err != nil {
		return nil, err
	}

	costs := opts.Costs

	return &search{
		ctx: newContext(reference, query, &costs, opts.Alphabet,
			int32(opts.LeftFlankLength), int32(opts.RightFlankLength)),
		strategies: strategies,
		opts:       opts,
		logger:     opts.Logger,
		visited:    make(map[key]int32),
		open:       frontier{order: strategies.NodeOrd},
		stats: alignment.Statistics{
			ReferenceLength: len(reference),
			QueryLength:     len(query),
		},
	}, nil
}

func (s *search) run(ctx context.Context) (*alignment.Alignment, error) {
	start := time.Now()

	s.strategies.Chaining.Precompute(s.ctx)
	s.stats.ChainAnchors = s.strategies.Chaining.Anchors()

	s.logger.DebugContext(ctx, "alignment search started",
		"reference", s.opts.ReferenceName, "query", s.opts.QueryName,
		"reference_length", len(s.ctx.Reference), "query_length", len(s.ctx.Query),
		"strategies", s.opts.Selection.String(), "chain_anchors", s.stats.ChainAnchors)

	var rootMem Memory

	s.strategies.Root(s.ctx, &rootMem)
	s.insert(primaryID(0, 0), rootMem, cost.Zero, noPredecessor, alignment.Of(alignment.Root))

	for s.open.Len() > 0 {
		if s.stats.ClosedNodes%cancelCheckInterval == 0 {
			err := ctx.Err()
			if err != nil {
				return nil, fmt.Errorf("align: %w", err)
			}
		}

		entry := s.open.pop()

		current := s.nodes[entry.node]
		if current.closed || entry.g != current.g {
			continue
		}

		if s.opts.CostLimit > 0 && entry.f > s.opts.CostLimit {
			return nil, s.abort(ctx, CostLimitExceeded, start)
		}

		s.nodes[entry.node].closed = true
		s.stats.ClosedNodes++

		if s.ctx.isGoal(current.id) {
			return s.finish(ctx, entry.node, start), nil
		}

		s.expand(entry.node, current)

		if s.opts.MemoryLimit > 0 && s.memory() > s.opts.MemoryLimit {
			return nil, s.abort(ctx, MemoryLimitExceeded, start)
		}
	}

	s.logger.InfoContext(ctx, "alignment search exhausted", "closed_nodes", s.stats.ClosedNodes)

	return nil, fmt.Errorf("%w after %d closed nodes", ErrSearchExhausted, s.stats.ClosedNodes)
}

func (s *search) expand(index int32, parent node) {
	successors(s.ctx, s.strategies, parent.id, parent.mem, func(edge Edge) {
		mem := parent.mem
		if !s.strategies.Successor(s.ctx, &edge, &mem) {
			return
		}

		s.relax(index, parent.g.Add(edge.Cost), edge.to, mem, edge.Type)
	})
}

// relax records a path of cost g to (id, mem) if it improves the best known one.
func (s *search) relax(pred int32, g cost.Cost, id identifier, mem Memory, op alignment.Type) {
	if g.IsInf() {
		return
	}

	index, seen := s.visited[key{id: id, mem: mem}]
	if !seen {
		s.insert(id, mem, g, pred, op)

		return
	}

	existing := &s.nodes[index]
	if existing.closed || g >= existing.g {
		return
	}

	existing.g = g
	existing.pred = pred
	existing.op = op
	s.stats.SuboptimalOpenedNodes++
	s.push(index)
}

func (s *search) insert(id identifier, mem Memory, g cost.Cost, pred int32, op alignment.Type) {
	index := int32(len(s.nodes))
	s.nodes = append(s.nodes, node{id: id, mem: mem, g: g, pred: pred, op: op})
	s.visited[key{id: id, mem: mem}] = index
	s.stats.OpenedNodes++
	s.push(index)
}

func (s *search) push(index int32) {
	n := &s.nodes[index]
	h := s.strategies.Chaining.LowerBound(s.ctx, n.id, s.strategies.Count.CanEnter(n.mem))

	s.open.push(frontierEntry{
		node:         index,
		antiDiagonal: n.id.antiDiagonal(),
		g:            n.g,
		f:            n.g.Add(h),
	})

	s.stats.FrontierPeak = max(s.stats.FrontierPeak, s.open.Len())
}

// memory estimates the bytes held by the arena, the visited map and the frontier.
func (s *search) memory() uint64 {
	return uint64(cap(s.nodes))*nodeBytes +
		uint64(len(s.visited))*visitedBytes +
		uint64(cap(s.open.entries))*entryBytes
}

func (s *search) finish(ctx context.Context, goal int32, start time.Time) *alignment.Alignment {
	var ops []alignment.Type

	for i := goal; s.nodes[i].pred != noPredecessor; i = s.nodes[i].pred {
		ops = append(ops, s.nodes[i].op)
	}

	slices.Reverse(ops)

	s.stats.MemoryBytes = s.memory()
	s.stats.Duration = time.Since(start)

	result := &alignment.Alignment{
		ReferenceName: s.opts.ReferenceName,
		QueryName:     s.opts.QueryName,
		TotalCost:     s.nodes[goal].g,
		Operations:    alignment.Compress(ops),
		Statistics:    s.stats,
	}

	s.logger.InfoContext(ctx, "alignment found",
		"cost", result.TotalCost.String(), "template_switches", result.TemplateSwitches(),
		"opened_nodes", s.stats.OpenedNodes, "closed_nodes", s.stats.ClosedNodes,
		"duration", s.stats.Duration)

	return result
}

func (s *search) abort(ctx context.Context, reason AbortReason, start time.Time) error {
	s.stats.MemoryBytes = s.memory()
	s.stats.Duration = time.Since(start)

	s.logger.InfoContext(ctx, "alignment search aborted",
		"reason", reason.String(), "closed_nodes", s.stats.ClosedNodes, "memory_bytes", s.stats.MemoryBytes)

	return &SearchAbortedError{Reason: reason, Statistics: s.stats}
}
