package identifier

import (
	"fmt"
	"strconv"
	"sync/atomic"
)

// CounterRegistry issues identifiers "1", "2", "3", ... in increasing order.
type CounterRegistry struct {
	last atomic.Uint64
}

// NewCounterRegistry creates a registry whose first identifier is "1".
func NewCounterRegistry() *CounterRegistry {
	return &CounterRegistry{}
}

// Next returns the next identifier in sequence.
func (r *CounterRegistry) Next() Identifier {
	return counterIdentifier(r.last.Add(1))
}

// Parse accepts the decimal form of a positive counter value.
func (r *CounterRegistry) Parse(s string) (Identifier, error) {
	seq, err := strconv.ParseUint(s, 10, 64)
	if err != nil || seq == 0 {
		return Identifier{}, fmt.Errorf("%w: %q is not a positive integer", ErrInvalidIdentifierFormat, s)
	}
	return counterIdentifier(seq), nil
}
