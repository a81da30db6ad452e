// Package alphabet defines the nucleotide alphabets accepted by the aligner and
// the complement relation used when a template switch copies a reverse complement.
package alphabet

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCharacter indicates a sequence character outside the alphabet.
var ErrInvalidCharacter = errors.New("character not in alphabet")

// Alphabet is a set of upper-case characters closed under complement.
type Alphabet struct {
	name       string
	complement [256]byte
}

// Predefined alphabets.
var (
	// DNA accepts A, C, G and T.
	DNA = newAlphabet("dna", "ACGT", "TGCA")
	// DNAN additionally accepts the wildcard N, which complements to itself.
	DNAN = newAlphabet("dna-n", "ACGTN", "TGCAN")
	// RNA accepts A, C, G and U.
	RNA = newAlphabet("rna", "ACGU", "UGCA")
)

func newAlphabet(name, characters, complements string) *Alphabet {
	a := &Alphabet{name: name}
	for i := range len(characters) {
		a.complement[characters[i]] = complements[i]
	}

	return a
}

// ByName returns the predefined alphabet with the given name.
func ByName(name string) (*Alphabet, error) {
	switch strings.ToLower(name) {
	case DNA.name:
		return DNA, nil
	case DNAN.name:
		return DNAN, nil
	case RNA.name:
		return RNA, nil
	default:
		return nil, fmt.Errorf("unknown alphabet %q", name)
	}
}

// Name returns the alphabet identifier.
func (a *Alphabet) Name() string {
	return a.name
}

// Contains reports whether c is an alphabet character.
func (a *Alphabet) Contains(c byte) bool {
	return a.complement[c] != 0
}

// Complement returns the complementary character of c, or c itself if c is not
// part of the alphabet.
func (a *Alphabet) Complement(c byte) byte {
	if comp := a.complement[c]; comp != 0 {
		return comp
	}

	return c
}

// ReverseComplement returns the reverse complement of seq.
func (a *Alphabet) ReverseComplement(seq []byte) []byte {
	result := make([]byte, len(seq))
	for i, c := range seq {
		result[len(seq)-1-i] = a.Complement(c)
	}

	return result
}

// Normalize upper-cases seq and checks every character against the alphabet.
// The returned slice is a copy.
func (a *Alphabet) Normalize(seq []byte) ([]byte, error) {
	result := make([]byte, len(seq))

	for i, c := range seq {
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}

		if !a.Contains(c) {
			return nil, fmt.Errorf("%w %s: %q at position %d", ErrInvalidCharacter, a.name, seq[i], i)
		}

		result[i] = c
	}

	return result, nil
}
