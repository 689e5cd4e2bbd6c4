package featuremodel

import (
	"fmt"
	"strconv"
)

// Unbounded marks an open upper bound.
const Unbounded = -1

// Range is an inclusive cardinality interval [Lower, Upper].
// Upper may be Unbounded.
type Range struct {
	Lower int
	Upper int
}

// NewRange returns a validated range.
func NewRange(lower, upper int) (Range, error) {
	r := Range{Lower: lower, Upper: upper}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// Validate checks lower >= 0 and lower <= upper unless upper is unbounded.
func (r Range) Validate() error {
	if r.Lower < 0 {
		return fmt.Errorf("%w: lower bound %d is negative", ErrInvalidRange, r.Lower)
	}
	if r.Upper != Unbounded && r.Upper < 0 {
		return fmt.Errorf("%w: upper bound %d is negative", ErrInvalidRange, r.Upper)
	}
	if r.Upper != Unbounded && r.Lower > r.Upper {
		return fmt.Errorf("%w: lower bound %d exceeds upper bound %d", ErrInvalidRange, r.Lower, r.Upper)
	}
	return nil
}

// IsUpperBounded reports whether the range has a finite upper bound.
func (r Range) IsUpperBounded() bool {
	return r.Upper != Unbounded
}

// Contains reports whether n lies within the range.
func (r Range) Contains(n int) bool {
	return n >= r.Lower && (r.Upper == Unbounded || n <= r.Upper)
}

// String renders the range as "[lower..upper]" with "*" for an open bound.
func (r Range) String() string {
	return "[" + strconv.Itoa(r.Lower) + ".." + boundString(r.Upper) + "]"
}

func boundString(b int) string {
	if b == Unbounded {
		return "*"
	}
	return strconv.Itoa(b)
}

// ParseBound parses a bound rendered by String ("*" or a non-negative integer).
func ParseBound(s string) (int, error) {
	if s == "*" {
		return Unbounded, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: bound %q", ErrInvalidRange, s)
	}
	return n, nil
}
