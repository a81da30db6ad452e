// Package alignment holds the result model of a template-switch alignment: the
// closed set of operation types, the run-length encoded operation stream and
// its text and YAML representations.
package alignment

import (
	"errors"
	"fmt"
	"strconv"
)

// Kind enumerates the edit and event kinds produced along an alignment path.
type Kind uint8

// Alignment operation kinds.
const (
	Root Kind = iota
	PrimaryMatch
	PrimarySubstitution
	PrimaryInsertion
	PrimaryDeletion
	PrimaryFlankMatch
	PrimaryFlankSubstitution
	PrimaryFlankInsertion
	PrimaryFlankDeletion
	PrimaryReentry
	PrimaryShortcut
	SecondaryRoot
	SecondaryMatch
	SecondarySubstitution
	SecondaryInsertion
	SecondaryDeletion
	TemplateSwitchEntrance
	TemplateSwitchExit

	kindCount
)

var kindNames = [kindCount]string{
	Root:                     "Root",
	PrimaryMatch:             "PrimaryMatch",
	PrimarySubstitution:      "PrimarySubstitution",
	PrimaryInsertion:         "PrimaryInsertion",
	PrimaryDeletion:          "PrimaryDeletion",
	PrimaryFlankMatch:        "PrimaryFlankMatch",
	PrimaryFlankSubstitution: "PrimaryFlankSubstitution",
	PrimaryFlankInsertion:    "PrimaryFlankInsertion",
	PrimaryFlankDeletion:     "PrimaryFlankDeletion",
	PrimaryReentry:           "PrimaryReentry",
	PrimaryShortcut:          "PrimaryShortcut",
	SecondaryRoot:            "SecondaryRoot",
	SecondaryMatch:           "SecondaryMatch",
	SecondarySubstitution:    "SecondarySubstitution",
	SecondaryInsertion:       "SecondaryInsertion",
	SecondaryDeletion:        "SecondaryDeletion",
	TemplateSwitchEntrance:   "TemplateSwitchEntrance",
	TemplateSwitchExit:       "TemplateSwitchExit",
}

// ErrUnknownKind indicates an operation name that is not part of the taxonomy.
var ErrUnknownKind = errors.New("unknown alignment type")

// String returns the kind's name.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// IsSecondary reports whether the kind is an edit inside a template switch.
func (k Kind) IsSecondary() bool {
	return k >= SecondaryMatch && k <= SecondaryDeletion
}

// IsFlank reports whether the kind is a flank edit.
func (k Kind) IsFlank() bool {
	return k >= PrimaryFlankMatch && k <= PrimaryFlankDeletion
}

// IsPrimaryEdit reports whether the kind is a non-flank primary edit.
func (k Kind) IsPrimaryEdit() bool {
	return k >= PrimaryMatch && k <= PrimaryDeletion
}

// Secondary selects the sequence a template switch copies from. The other
// sequence is the primary track of that switch.
type Secondary uint8

// Template switch secondaries.
const (
	SecondaryReference Secondary = iota
	SecondaryQuery
)

// Secondaries lists both secondaries in a fixed order.
var Secondaries = [...]Secondary{SecondaryReference, SecondaryQuery}

// String returns "reference" or "query".
func (s Secondary) String() string {
	if s == SecondaryQuery {
		return "query"
	}

	return "reference"
}

// ParseSecondary parses "reference" or "query".
func ParseSecondary(name string) (Secondary, error) {
	switch name {
	case "reference":
		return SecondaryReference, nil
	case "query":
		return SecondaryQuery, nil
	default:
		return 0, fmt.Errorf("unknown template switch secondary %q", name)
	}
}

// Type is one step of the alignment state machine. Payload fields are only
// meaningful for the kinds that carry them and are zero otherwise, so Type
// values compare with ==.
type Type struct {
	Kind Kind

	// Secondary and FirstOffset describe a TemplateSwitchEntrance.
	Secondary   Secondary
	FirstOffset int64

	// AntiPrimaryGap describes a TemplateSwitchExit.
	AntiPrimaryGap int64

	// DeltaReference and DeltaQuery describe a PrimaryShortcut.
	DeltaReference int64
	DeltaQuery     int64
}

// Of returns the payload-free type of kind k.
func Of(k Kind) Type {
	return Type{Kind: k}
}

// Entrance returns a TemplateSwitchEntrance type.
func Entrance(secondary Secondary, firstOffset int64) Type {
	return Type{Kind: TemplateSwitchEntrance, Secondary: secondary, FirstOffset: firstOffset}
}

// Exit returns a TemplateSwitchExit type.
func Exit(antiPrimaryGap int64) Type {
	return Type{Kind: TemplateSwitchExit, AntiPrimaryGap: antiPrimaryGap}
}

// Shortcut returns a PrimaryShortcut type.
func Shortcut(deltaReference, deltaQuery int64) Type {
	return Type{Kind: PrimaryShortcut, DeltaReference: deltaReference, DeltaQuery: deltaQuery}
}

// String renders the type with its payload.
func (t Type) String() string {
	switch t.Kind {
	case TemplateSwitchEntrance:
		return fmt.Sprintf("%s(%s,%d)", t.Kind, t.Secondary, t.FirstOffset)
	case TemplateSwitchExit:
		return fmt.Sprintf("%s(%d)", t.Kind, t.AntiPrimaryGap)
	case PrimaryShortcut:
		return fmt.Sprintf("%s(%d,%d)", t.Kind, t.DeltaReference, t.DeltaQuery)
	default:
		return t.Kind.String()
	}
}
