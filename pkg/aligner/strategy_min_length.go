package aligner

import (
	"strconv"

	"github.com/Sumatoshi-tech/tsalign/pkg/alignment"
)

// noMinLength allows template switches of any length, including zero.
type noMinLength struct{ stateless }

func (noMinLength) Name() string { return "min_length=none" }

func (noMinLength) AllowEntrance(*Context, int32, int32) bool { return true }

// lookaheadMinLength requires at least min secondary operations per template
// switch. Entrances that cannot reach min are never generated, and exits are
// rejected until the counter in Memory.SecondaryLength reaches min.
type lookaheadMinLength struct {
	min int32
}

func (l lookaheadMinLength) Name() string {
	return "min_length=lookahead(" + strconv.Itoa(int(l.min)) + ")"
}

func (lookaheadMinLength) Root(_ *Context, mem *Memory) {
	mem.SecondaryLength = 0
}

// AllowEntrance bounds the switch length by the characters left on both tracks.
func (l lookaheadMinLength) AllowEntrance(_ *Context, primaryRemaining, firstSecondary int32) bool {
	return primaryRemaining+firstSecondary >= l.min
}

func (l lookaheadMinLength) Successor(_ *Context, edge *Edge, mem *Memory) bool {
	switch {
	case edge.Type.Kind == alignment.TemplateSwitchEntrance:
		mem.SecondaryLength = 0
	case edge.Type.Kind.IsSecondary():
		// Capped so longer switches share one state.
		mem.SecondaryLength = min(mem.SecondaryLength+1, l.min)
	case edge.Type.Kind == alignment.TemplateSwitchExit:
		if mem.SecondaryLength < l.min {
			return false
		}

		mem.SecondaryLength = 0
	}

	return true
}
