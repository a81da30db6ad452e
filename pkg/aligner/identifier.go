package aligner

import (
	"strconv"

	"github.com/Sumatoshi-tech/tsalign/pkg/alignment"
)

// nodeKind is the position of a node in the template switch state machine.
type nodeKind uint8

const (
	kindPrimary nodeKind = iota
	kindLeftFlank
	kindEntrance
	kindSecondary
	kindExit
	kindRightFlank
)

var nodeKindNames = [...]string{"Primary", "LeftFlank", "TemplateSwitchEntrance", "Secondary", "TemplateSwitchExit", "RightFlank"}

func (k nodeKind) String() string {
	if int(k) >= len(nodeKindNames) {
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}

	return nodeKindNames[k]
}

// primaryLike reports whether the node sits on the primary diagonal.
func (k nodeKind) primaryLike() bool {
	return k != kindEntrance && k != kindSecondary
}

// identifier locates a search state. Reference and Query are the primary
// offsets; inside a template switch they stay at the entrance anchor while
// Primary and SecondaryIndex move along the switch tracks.
type identifier struct {
	Kind      nodeKind
	Secondary alignment.Secondary

	Reference int32
	Query     int32
	// Flank counts flank operations taken so far.
	Flank int32
	// FromStart marks a left flank that began at the start of both
	// sequences. Such a flank may end early at an entrance.
	FromStart bool

	Primary        int32
	SecondaryIndex int32
}

func primaryID(r, q int32) identifier {
	return identifier{Kind: kindPrimary, Reference: r, Query: q}
}

// anchors returns the entrance anchors of the primary and secondary tracks.
func (id identifier) anchors() (primary, secondary int32) {
	if id.Secondary == alignment.SecondaryReference {
		return id.Query, id.Reference
	}

	return id.Reference, id.Query
}

// antiDiagonal measures progress through both sequences.
func (id identifier) antiDiagonal() int32 {
	if id.Kind.primaryLike() {
		return id.Reference + id.Query
	}

	primaryAnchor, secondaryAnchor := id.anchors()

	return id.Primary + secondaryAnchor + (id.Primary - primaryAnchor)
}

// key identifies a node in the visited map. Nodes at equal positions with
// different strategy memory are distinct states.
type key struct {
	id  identifier
	mem Memory
}
