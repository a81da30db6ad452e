package aligner

import (
	"container/heap"

	"github.com/Sumatoshi-tech/tsalign/pkg/cost"
)

// frontierEntry is an open node reference. Entries are never updated in
// place: an improved node is pushed again and stale entries are skipped on pop.
type frontierEntry struct {
	node         int32
	antiDiagonal int32
	g            cost.Cost
	f            cost.Cost
	seq          uint64
}

// frontier is a binary min-heap ordered by the node ord strategy.
type frontier struct {
	entries []frontierEntry
	order   NodeOrdStrategy
	seq     uint64
}

func (fr *frontier) Len() int { return len(fr.entries) }

func (fr *frontier) Less(i, j int) bool { return fr.order.Less(&fr.entries[i], &fr.entries[j]) }

func (fr *frontier) Swap(i, j int) { fr.entries[i], fr.entries[j] = fr.entries[j], fr.entries[i] }

func (fr *frontier) Push(x any) { fr.entries = append(fr.entries, x.(frontierEntry)) }

func (fr *frontier) Pop() any {
	n := len(fr.entries)
	e := fr.entries[n-1]
	fr.entries = fr.entries[:n-1]

	return e
}

func (fr *frontier) push(e frontierEntry) {
	e.seq = fr.seq
	fr.seq++

	heap.Push(fr, e)
}

func (fr *frontier) pop() frontierEntry {
	return heap.Pop(fr).(frontierEntry)
}
