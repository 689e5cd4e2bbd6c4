package identifier

import (
	"fmt"

	"github.com/google/uuid"
)

// UUIDRegistry issues random version 4 UUIDs.
type UUIDRegistry struct{}

// NewUUIDRegistry creates a UUID based registry.
func NewUUIDRegistry() *UUIDRegistry {
	return &UUIDRegistry{}
}

// Next returns a new random identifier.
func (r *UUIDRegistry) Next() Identifier {
	return Identifier{raw: uuid.NewString()}
}

// Parse accepts any RFC 4122 UUID and normalizes it to lower case.
func (r *UUIDRegistry) Parse(s string) (Identifier, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Identifier{}, fmt.Errorf("%w: %v", ErrInvalidIdentifierFormat, err)
	}
	return Identifier{raw: u.String()}, nil
}
