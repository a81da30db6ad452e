package aligner

import (
	"strconv"

	"github.com/Sumatoshi-tech/tsalign/pkg/alignment"
)

// noTemplateSwitchCount places no bound on the number of switches.
type noTemplateSwitchCount struct{ stateless }

func (noTemplateSwitchCount) Name() string { return "template_switch_count=none" }

func (noTemplateSwitchCount) CanEnter(Memory) bool { return true }

// maxTemplateSwitchCount counts entrances in Memory.TemplateSwitchCount and
// rejects the entrance that would exceed max. A left flank is only started
// while another switch is still possible, since it can only end in one.
type maxTemplateSwitchCount struct {
	max int32
}

func (m maxTemplateSwitchCount) Name() string {
	return "template_switch_count=max(" + strconv.Itoa(int(m.max)) + ")"
}

func (maxTemplateSwitchCount) Root(_ *Context, mem *Memory) {
	mem.TemplateSwitchCount = 0
}

func (m maxTemplateSwitchCount) CanEnter(mem Memory) bool {
	return mem.TemplateSwitchCount < m.max
}

func (m maxTemplateSwitchCount) Successor(_ *Context, edge *Edge, mem *Memory) bool {
	switch {
	case edge.Type.Kind == alignment.TemplateSwitchEntrance:
		if !m.CanEnter(*mem) {
			return false
		}

		mem.TemplateSwitchCount++
	case edge.Type.Kind.IsFlank() && edge.from.Kind == kindPrimary:
		return m.CanEnter(*mem)
	}

	return true
}

// noShortcut offers no shortcut edges.
type noShortcut struct{ stateless }

func (noShortcut) Name() string { return "shortcut=none" }

func (noShortcut) Shortcut(*Context, int32, int32) int32 { return 0 }

// minShortcutLength is the shortest match run worth a shortcut edge.
const minShortcutLength = 2

// matchRunShortcut jumps over a maximal run of exact primary matches. The
// per-character edges stay available, so the optimal cost is unchanged.
type matchRunShortcut struct{ stateless }

func (matchRunShortcut) Name() string { return "shortcut=match-run" }

func (matchRunShortcut) Shortcut(ctx *Context, r, q int32) int32 {
	n := min(len(ctx.Reference)-int(r), len(ctx.Query)-int(q))

	run := 0
	for run < n && ctx.Reference[int(r)+run] == ctx.Query[int(q)+run] {
		run++
	}

	if run < minShortcutLength {
		return 0
	}

	return int32(run)
}

type allowSecondaryDeletion struct{ stateless }

func (allowSecondaryDeletion) Name() string { return "secondary_deletion=allow" }

type forbidSecondaryDeletion struct{ stateless }

func (forbidSecondaryDeletion) Name() string { return "secondary_deletion=forbid" }

func (forbidSecondaryDeletion) Successor(_ *Context, edge *Edge, _ *Memory) bool {
	return edge.Type.Kind != alignment.SecondaryDeletion
}

type allowPrimaryMatch struct{ stateless }

func (allowPrimaryMatch) Name() string { return "primary_match=allow" }

// maxConsecutivePrimaryMatch bounds runs of primary matches, tracked in
// Memory.ConsecutivePrimaryMatches. Any other operation resets the run.
type maxConsecutivePrimaryMatch struct {
	max int32
}

func (m maxConsecutivePrimaryMatch) Name() string {
	return "primary_match=max-consecutive(" + strconv.Itoa(int(m.max)) + ")"
}

func (maxConsecutivePrimaryMatch) Root(_ *Context, mem *Memory) {
	mem.ConsecutivePrimaryMatches = 0
}

func (m maxConsecutivePrimaryMatch) Successor(_ *Context, edge *Edge, mem *Memory) bool {
	var run int32

	switch edge.Type.Kind {
	case alignment.PrimaryMatch:
		run = 1
	case alignment.PrimaryShortcut:
		run = edge.Length
	default:
		mem.ConsecutivePrimaryMatches = 0

		return true
	}

	if mem.ConsecutivePrimaryMatches+run > m.max {
		return false
	}

	mem.ConsecutivePrimaryMatches += run

	return true
}
