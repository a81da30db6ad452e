package render

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/tsalign/pkg/alignment"
	"github.com/Sumatoshi-tech/tsalign/pkg/alphabet"
)

// ErrLayout indicates an operation stream that does not fit the sequences.
var ErrLayout = errors.New("alignment does not fit the sequences")

// class selects the color of a column.
type class uint8

const (
	classMatch class = iota
	classSubstitution
	classGap
	classFlank
	classSwitch
)

// column is one position of a three-row view.
type column struct {
	top, mark, bottom byte
	class             class
}

// switchBlock is the inner arrangement of one template switch: the primary
// track against the complement of the secondary read backwards.
type switchBlock struct {
	Secondary   alignment.Secondary
	Reference   int
	Query       int
	FirstOffset int64
	Gap         int64

	columns []column
}

type layout struct {
	columns  []column
	switches []*switchBlock
}

// walker replays an operation stream over the sequences.
type walker struct {
	reference, query []byte
	abc              *alphabet.Alphabet

	r, q int
	out  layout

	current         *switchBlock
	primary, second []byte
	p, s            int
	secondaryAnchor int
}

func lay(a *alignment.Alignment, reference, query []byte, abc *alphabet.Alphabet) (*layout, error) {
	w := &walker{reference: reference, query: query, abc: abc}

	step := 0

	for t := range a.Types() {
		err := w.apply(t)
		if err != nil {
			return nil, fmt.Errorf("%w: operation %d (%s): %w", ErrLayout, step, t, err)
		}

		step++
	}

	if w.current != nil {
		return nil, fmt.Errorf("%w: unterminated template switch", ErrLayout)
	}

	if w.r != len(reference) || w.q != len(query) {
		return nil, fmt.Errorf("%w: operations end at reference %d query %d, sequences have %d and %d",
			ErrLayout, w.r, w.q, len(reference), len(query))
	}

	return &w.out, nil
}

func (w *walker) apply(t alignment.Type) error {
	switch t.Kind {
	case alignment.Root, alignment.SecondaryRoot, alignment.PrimaryReentry:
		return nil
	case alignment.PrimaryMatch, alignment.PrimarySubstitution,
		alignment.PrimaryFlankMatch, alignment.PrimaryFlankSubstitution:
		return w.diagonal(t.Kind.IsFlank())
	case alignment.PrimaryShortcut:
		for range t.DeltaReference {
			err := w.diagonal(false)
			if err != nil {
				return err
			}
		}

		return nil
	case alignment.PrimaryInsertion, alignment.PrimaryFlankInsertion:
		if w.q >= len(w.query) {
			return errPastEnd
		}

		w.emit(column{top: '-', mark: ' ', bottom: w.query[w.q], class: gapClass(t.Kind.IsFlank())})
		w.q++
	case alignment.PrimaryDeletion, alignment.PrimaryFlankDeletion:
		if w.r >= len(w.reference) {
			return errPastEnd
		}

		w.emit(column{top: w.reference[w.r], mark: ' ', bottom: '-', class: gapClass(t.Kind.IsFlank())})
		w.r++
	case alignment.TemplateSwitchEntrance:
		return w.enter(t)
	case alignment.SecondaryMatch, alignment.SecondarySubstitution,
		alignment.SecondaryInsertion, alignment.SecondaryDeletion:
		return w.secondary(t.Kind)
	case alignment.TemplateSwitchExit:
		return w.exit(t)
	}

	return nil
}

var (
	errPastEnd     = errors.New("past the end of a sequence")
	errOutside     = errors.New("outside a template switch")
	errNestedEntry = errors.New("entrance inside a template switch")
)

func gapClass(flank bool) class {
	if flank {
		return classFlank
	}

	return classGap
}

func (w *walker) emit(c column) {
	w.out.columns = append(w.out.columns, c)
}

func (w *walker) diagonal(flank bool) error {
	if w.r >= len(w.reference) || w.q >= len(w.query) {
		return errPastEnd
	}

	top, bottom := w.reference[w.r], w.query[w.q]

	c := column{top: top, mark: '|', bottom: bottom, class: classMatch}
	if top != bottom {
		c.mark, c.class = '.', classSubstitution
	}

	if flank {
		c.class = classFlank
	}

	w.emit(c)
	w.r++
	w.q++

	return nil
}

func (w *walker) enter(t alignment.Type) error {
	if w.current != nil {
		return errNestedEntry
	}

	if t.Secondary == alignment.SecondaryQuery {
		w.primary, w.second = w.reference, w.query
		w.p, w.secondaryAnchor = w.r, w.q
	} else {
		w.primary, w.second = w.query, w.reference
		w.p, w.secondaryAnchor = w.q, w.r
	}

	w.s = w.secondaryAnchor + int(t.FirstOffset)
	if w.s < 0 || w.s > len(w.second) {
		return fmt.Errorf("secondary start %d %w", w.s, errPastEnd)
	}

	w.current = &switchBlock{
		Secondary:   t.Secondary,
		Reference:   w.r,
		Query:       w.q,
		FirstOffset: t.FirstOffset,
	}

	return nil
}

func (w *walker) secondary(kind alignment.Kind) error {
	if w.current == nil {
		return errOutside
	}

	block := w.current
	consumesPrimary := kind != alignment.SecondaryDeletion
	consumesSecondary := kind != alignment.SecondaryInsertion

	if (consumesPrimary && w.p >= len(w.primary)) || (consumesSecondary && w.s <= 0) {
		return errPastEnd
	}

	inner := column{top: '-', mark: ' ', bottom: '-', class: classGap}

	if consumesPrimary {
		inner.top = w.primary[w.p]
	}

	if consumesSecondary {
		inner.bottom = w.abc.Complement(w.second[w.s-1])
	}

	switch kind {
	case alignment.SecondaryMatch:
		inner.mark, inner.class = '|', classMatch
	case alignment.SecondarySubstitution:
		inner.mark, inner.class = '.', classSubstitution
	default:
	}

	block.columns = append(block.columns, inner)

	if consumesPrimary {
		outer := column{top: w.primary[w.p], mark: '~', bottom: ' ', class: classSwitch}
		if block.Secondary == alignment.SecondaryReference {
			outer.top, outer.bottom = outer.bottom, outer.top
		}

		w.emit(outer)
		w.p++
	}

	if consumesSecondary {
		w.s--
	}

	return nil
}

func (w *walker) exit(t alignment.Type) error {
	if w.current == nil {
		return errOutside
	}

	resumed := w.secondaryAnchor + int(t.AntiPrimaryGap)
	if resumed < 0 || resumed > len(w.second) {
		return fmt.Errorf("resumed position %d %w", resumed, errPastEnd)
	}

	// Characters of the anti-primary sequence jumped over by the switch.
	for i := w.secondaryAnchor; i < resumed; i++ {
		c := column{top: ' ', mark: ' ', bottom: w.second[i], class: classSwitch}
		if w.current.Secondary == alignment.SecondaryReference {
			c.top, c.bottom = c.bottom, c.top
		}

		w.emit(c)
	}

	if resumed < w.secondaryAnchor {
		w.emit(column{top: '/', mark: '/', bottom: '/', class: classSwitch})
	}

	if w.current.Secondary == alignment.SecondaryQuery {
		w.r, w.q = w.p, resumed
	} else {
		w.q, w.r = w.p, resumed
	}

	w.current.Gap = t.AntiPrimaryGap
	w.out.switches = append(w.out.switches, w.current)
	w.current = nil

	return nil
}
