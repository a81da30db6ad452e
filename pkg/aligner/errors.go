package aligner

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/tsalign/pkg/alignment"
)

// Sentinel errors.
var (
	// ErrSearchAborted is matched by every SearchAbortedError.
	ErrSearchAborted = errors.New("search aborted")
	// ErrSearchExhausted means the frontier emptied without reaching the goal:
	// no alignment exists under the cost model and strategy restrictions.
	ErrSearchExhausted = errors.New("search exhausted without reaching the goal")
	// ErrInvalidOptions reports unusable aligner options.
	ErrInvalidOptions = errors.New("invalid aligner options")
)

// AbortReason tells which limit stopped a search.
type AbortReason uint8

// Abort reasons.
const (
	CostLimitExceeded AbortReason = iota
	MemoryLimitExceeded
)

func (r AbortReason) String() string {
	if r == MemoryLimitExceeded {
		return "memory limit exceeded"
	}

	return "cost limit exceeded"
}

// SearchAbortedError is returned when a configured limit stops the search
// before the goal was reached. It is an expected outcome of a bounded search.
type SearchAbortedError struct {
	Reason     AbortReason
	Statistics alignment.Statistics
}

// Error implements error.
func (e *SearchAbortedError) Error() string {
	return fmt.Sprintf("%v: %s after %d closed nodes", ErrSearchAborted, e.Reason, e.Statistics.ClosedNodes)
}

// Is makes errors.Is(err, ErrSearchAborted) hold.
func (e *SearchAbortedError) Is(target error) bool {
	return target == ErrSearchAborted
}
