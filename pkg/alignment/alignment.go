package alignment

import (
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/tsalign/pkg/cost"
)

// Run is a maximal stretch of identical consecutive operations.
type Run struct {
	Count int
	Type  Type
}

// String renders the run as "<count><type>".
func (r Run) String() string {
	return fmt.Sprintf("%d%s", r.Count, r.Type)
}

// Statistics describes the search that produced an alignment.
type Statistics struct {
	ReferenceLength int `yaml:"reference_length"`
	QueryLength     int `yaml:"query_length"`

	OpenedNodes           uint64 `yaml:"opened_nodes"`
	ClosedNodes           uint64 `yaml:"closed_nodes"`
	SuboptimalOpenedNodes uint64 `yaml:"suboptimal_opened_nodes"`
	FrontierPeak          int    `yaml:"frontier_peak"`
	MemoryBytes           uint64 `yaml:"memory_bytes"`
	ChainAnchors          int    `yaml:"chain_anchors"`

	Duration time.Duration `yaml:"-"`
}

// Alignment is the minimum-cost path found by the aligner.
type Alignment struct {
	ReferenceName string
	QueryName     string
	TotalCost     cost.Cost
	Operations    []Run
	Statistics    Statistics
}

// Compress run-length encodes a sequence of operation types.
func Compress(types []Type) []Run {
	var runs []Run

	for _, t := range types {
		if n := len(runs); n > 0 && runs[n-1].Type == t {
			runs[n-1].Count++

			continue
		}

		runs = append(runs, Run{Count: 1, Type: t})
	}

	return runs
}

// Types yields every operation in order, expanding runs.
func (a *Alignment) Types() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		for _, run := range a.Operations {
			for range run.Count {
				if !yield(run.Type) {
					return
				}
			}
		}
	}
}

// TemplateSwitches returns the number of template switch entrances.
func (a *Alignment) TemplateSwitches() int {
	count := 0

	for _, run := range a.Operations {
		if run.Type.Kind == TemplateSwitchEntrance {
			count += run.Count
		}
	}

	return count
}

// CostPerBase returns the total cost divided by the mean sequence length.
func (a *Alignment) CostPerBase() float64 {
	total := a.Statistics.ReferenceLength + a.Statistics.QueryLength
	if total == 0 || a.TotalCost.IsInf() {
		return 0
	}

	return float64(a.TotalCost.Int64()) * 2 / float64(total)
}

// CIGAR returns the space separated operation stream.
func (a *Alignment) CIGAR() string {
	parts := make([]string, len(a.Operations))
	for i, run := range a.Operations {
		parts[i] = run.String()
	}

	return strings.Join(parts, " ")
}

// String renders the total cost and the operation stream.
func (a *Alignment) String() string {
	return fmt.Sprintf("%s vs %s: cost %s\n%s", a.ReferenceName, a.QueryName, a.TotalCost, a.CIGAR())
}
