// Package fasta reads reference and query sequences from FASTA files.
package fasta

import (
	"errors"
	"fmt"
	"io"
	"os"

	biogo "github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// Sentinel errors.
var (
	// ErrNoRecords indicates a FASTA input without any record.
	ErrNoRecords = errors.New("no FASTA records")
	// ErrPairLayout indicates inputs that do not describe one sequence pair.
	ErrPairLayout = errors.New("expected two files with one record each or one file with two records")
)

// Record is a named sequence.
type Record struct {
	Name        string
	Description string
	Sequence    []byte
}

// Read parses every record of a FASTA stream.
func Read(r io.Reader) ([]Record, error) {
	// DNAredundant accepts the IUPAC codes; validation happens in the aligner.
	scanner := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, biogo.DNAredundant)))

	var records []Record

	for scanner.Next() {
		s, ok := scanner.Seq().(*linear.Seq)
		if !ok {
			return nil, fmt.Errorf("unexpected sequence type %T", scanner.Seq())
		}

		letters := make([]byte, len(s.Seq))
		for i, l := range s.Seq {
			letters[i] = byte(l)
		}

		records = append(records, Record{Name: s.Name(), Description: s.Description(), Sequence: letters})
	}

	err := scanner.Error()
	if err != nil {
		return nil, fmt.Errorf("read FASTA: %w", err)
	}

	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	return records, nil
}

// ReadFile parses every record of a FASTA file.
func ReadFile(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA: %w", err)
	}
	defer file.Close()

	records, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return records, nil
}

// ReadPair loads the reference and query either from two files holding one
// record each, or from a single file holding exactly two records.
func ReadPair(paths ...string) (reference, query Record, err error) {
	switch len(paths) {
	case 1:
		records, readErr := ReadFile(paths[0])
		if readErr != nil {
			return Record{}, Record{}, readErr
		}

		if len(records) != 2 {
			return Record{}, Record{}, fmt.Errorf("%w: %s has %d records", ErrPairLayout, paths[0], len(records))
		}

		return records[0], records[1], nil
	case 2:
		pair := make([]Record, 2)

		for i, path := range paths {
			records, readErr := ReadFile(path)
			if readErr != nil {
				return Record{}, Record{}, readErr
			}

			if len(records) != 1 {
				return Record{}, Record{}, fmt.Errorf("%w: %s has %d records", ErrPairLayout, path, len(records))
			}

			pair[i] = records[0]
		}

		return pair[0], pair[1], nil
	default:
		return Record{}, Record{}, fmt.Errorf("%w: got %d files", ErrPairLayout, len(paths))
	}
}
