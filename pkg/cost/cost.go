// Package cost provides the saturating cost type, piecewise cost functions and
// the cost table that prices every edit operation and template-switch event.
package cost

import (
	"math"
	"strconv"
)

// Cost is a totally ordered, saturating alignment cost.
//
// The extreme values of the underlying integer act as sentinels: Inf marks a
// forbidden transition and NegInf an unconstrained minimum. Arithmetic clamps at
// the sentinels instead of overflowing.
type Cost int64

// Sentinel and neutral values.
const (
	// Inf is the cost of a forbidden transition.
	Inf Cost = math.MaxInt64
	// NegInf is smaller than every finite cost.
	NegInf Cost = math.MinInt64
	// Zero is the neutral cost.
	Zero Cost = 0
)

const (
	literalInf    = "inf"
	literalNegInf = "-inf"
)

// FromInt converts a plain integer into a Cost.
func FromInt(v int) Cost {
	return Cost(v)
}

// Int64 returns the underlying integer value. Sentinels map to the integer extremes.
func (c Cost) Int64() int64 {
	return int64(c)
}

// IsInf reports whether c is either sentinel.
func (c Cost) IsInf() bool {
	return c == Inf || c == NegInf
}

// Add returns c + other. Inf absorbs everything, NegInf absorbs finite values,
// and finite overflow clamps to the nearest sentinel.
func (c Cost) Add(other Cost) Cost {
	switch {
	case c == Inf || other == Inf:
		return Inf
	case c == NegInf || other == NegInf:
		return NegInf
	}

	sum := c + other

	// Signed overflow flips the sign relative to both operands.
	if c > 0 && other > 0 && sum < 0 {
		return Inf
	}

	if c < 0 && other < 0 && sum >= 0 {
		return NegInf
	}

	if sum == Inf {
		return Inf
	}

	if sum == NegInf {
		return NegInf
	}

	return sum
}

// Sub returns c - other, saturating at the sentinels.
func (c Cost) Sub(other Cost) Cost {
	switch {
	case c == Inf:
		return Inf
	case other == Inf:
		return NegInf
	case c == NegInf:
		return NegInf
	case other == NegInf:
		return Inf
	}

	return c.Add(-other)
}

// SaturatingSub returns c - other floored at zero.
func (c Cost) SaturatingSub(other Cost) Cost {
	diff := c.Sub(other)
	if diff < Zero {
		return Zero
	}

	return diff
}

// Mul returns c scaled by a non-negative factor, saturating at Inf.
func (c Cost) Mul(factor int) Cost {
	if factor <= 0 || c == Zero {
		return Zero
	}

	if c.IsInf() {
		return c
	}

	f := Cost(factor)
	if c > 0 && c > Inf/f {
		return Inf
	}

	if c < 0 && c < NegInf/f {
		return NegInf
	}

	return c * f
}

// Min returns the smaller of c and other.
func (c Cost) Min(other Cost) Cost {
	return min(c, other)
}

// Max returns the larger of c and other.
func (c Cost) Max(other Cost) Cost {
	return max(c, other)
}

// Compare returns -1, 0 or +1 when c is less than, equal to or greater than other.
func (c Cost) Compare(other Cost) int {
	switch {
	case c < other:
		return -1
	case c > other:
		return 1
	default:
		return 0
	}
}

// String renders the cost, using inf and -inf for the sentinels.
func (c Cost) String() string {
	switch c {
	case Inf:
		return literalInf
	case NegInf:
		return literalNegInf
	default:
		return strconv.FormatInt(int64(c), 10)
	}
}
