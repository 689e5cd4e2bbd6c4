// Package identifier issues unique, stable identifiers for feature model entities.
//
// Two strategies implement Registry: a monotonically increasing counter and a
// random UUID generator. Both guarantee that a single registry never returns
// the same Identifier twice.
package identifier

import (
	"cmp"
	"errors"
	"strconv"
)

// ErrInvalidIdentifierFormat is returned by Registry.Parse for malformed input.
var ErrInvalidIdentifierFormat = errors.New("invalid identifier format")

// Identifier is an opaque, totally ordered token naming one entity.
// The zero value is not a valid identifier.
type Identifier struct {
	raw string
	seq uint64 // non-zero for counter identifiers
}

// String returns the textual form of the identifier.
func (id Identifier) String() string {
	return id.raw
}

// IsZero reports whether id is the zero value.
func (id Identifier) IsZero() bool {
	return id.raw == ""
}

// Compare orders identifiers. Counter identifiers compare numerically and sort
// before random ones; all others compare by their text.
func (id Identifier) Compare(other Identifier) int {
	switch {
	case id.seq != 0 && other.seq != 0:
		return cmp.Compare(id.seq, other.seq)
	case id.seq != 0:
		return -1
	case other.seq != 0:
		return 1
	default:
		return cmp.Compare(id.raw, other.raw)
	}
}

// Registry issues identifiers and parses their textual form.
type Registry interface {
	// Next returns an identifier never returned before by this registry.
	Next() Identifier
	// Parse converts the textual form back into an Identifier.
	Parse(s string) (Identifier, error)
}

func counterIdentifier(seq uint64) Identifier {
	return Identifier{raw: strconv.FormatUint(seq, 10), seq: seq}
}
