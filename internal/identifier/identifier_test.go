package identifier

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCounterRegistry_Next(t *testing.T) {
	r := NewCounterRegistry()

	first := r.Next()
	second := r.Next()

	require.Equal(t, "1", first.String())
	require.Equal(t, "2", second.String())
	require.Equal(t, -1, first.Compare(second))
	require.Equal(t, 1, second.Compare(first))
	require.Equal(t, 0, first.Compare(first))
}

func TestCounterRegistry_NumericOrdering(t *testing.T) {
	r := NewCounterRegistry()
	for i := 0; i < 8; i++ {
		r.Next()
	}

	nine := r.Next()
	ten := r.Next()

	require.Equal(t, "9", nine.String())
	require.Equal(t, "10", ten.String())
	// "10" < "9" as text, but counter identifiers order numerically
	require.Negative(t, nine.Compare(ten))
}

func TestCounterRegistry_Parse(t *testing.T) {
	r := NewCounterRegistry()
	issued := r.Next()

	parsed, err := r.Parse("1")
	require.NoError(t, err)
	require.Equal(t, issued, parsed)

	tests := []string{"", "0", "-3", "abc", "1.5"}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := r.Parse(input)
			require.ErrorIs(t, err, ErrInvalidIdentifierFormat)
		})
	}
}

func TestUUIDRegistry_NextIsUnique(t *testing.T) {
	r := NewUUIDRegistry()
	seen := make(map[Identifier]bool)
	for i := 0; i < 1000; i++ {
		id := r.Next()
		require.False(t, seen[id], "duplicate identifier %s", id)
		require.False(t, id.IsZero())
		seen[id] = true
	}
}

func TestUUIDRegistry_Parse(t *testing.T) {
	r := NewUUIDRegistry()
	id := r.Next()

	parsed, err := r.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	upper, err := r.Parse("6BA7B810-9DAD-11D1-80B4-00C04FD430C8")
	require.NoError(t, err)
	require.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", upper.String())

	_, err = r.Parse("not-a-uuid")
	require.ErrorIs(t, err, ErrInvalidIdentifierFormat)
}

func TestIdentifier_CompareMixed(t *testing.T) {
	counter := NewCounterRegistry().Next()
	random := NewUUIDRegistry().Next()

	require.Negative(t, counter.Compare(random))
	require.Positive(t, random.Compare(counter))
	require.True(t, Identifier{}.IsZero())
}
