package codec

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/featmodel/internal/featuremodel"
	"github.com/zjrosen/featmodel/internal/formula"
)

func flatModel(t *testing.T, names []string, exprs ...string) *featuremodel.Model {
	t.Helper()
	m := featuremodel.New()
	t.Cleanup(m.Close)
	for _, name := range names {
		_, err := m.AddFeature(name)
		require.NoError(t, err)
	}
	for _, expr := range exprs {
		_, err := m.AddConstraintExpr(expr)
		require.NoError(t, err)
	}
	return m
}

func TestDIMACS_Encode(t *testing.T) {
	m := flatModel(t, []string{"A", "B", "C"}, "A implies B", "not B or C", "A and C", "true")

	got, err := EncodeToString(DIMACS{}, m)
	require.NoError(t, err)
	require.Equal(t, `c 1 A
c 2 B
c 3 C
p cnf 3 4
-1 2 0
-2 3 0
1 0
3 0
`, got)
}

func TestDIMACS_EncodeImplicationOfConjunction(t *testing.T) {
	m := flatModel(t, []string{"A", "B", "C", "D"}, "A and B implies C or not D")

	got, err := EncodeToString(DIMACS{}, m)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(got, "p cnf 4 1\n-1 -2 3 -4 0\n"), got)
}

func TestDIMACS_EncodeRejectsNonClausal(t *testing.T) {
	for _, expr := range []string{"A iff B", "not (A and B)", "A or (B and C)", "(A or B) implies C"} {
		m := flatModel(t, []string{"A", "B", "C"}, expr)
		_, err := EncodeToString(DIMACS{}, m)
		require.ErrorIs(t, err, ErrUnsupported, expr)
	}
}

func TestDIMACS_Decode(t *testing.T) {
	const input = `c a comment line
c 1 A
c 2 Long Name
p cnf 3 3
1 -2 0
3
-1 0
0
`
	m, err := DecodeString(DIMACS{}, input)
	require.NoError(t, err)
	t.Cleanup(m.Close)

	var names []string
	for _, f := range m.Features() {
		names = append(names, f.Name())
	}
	require.Equal(t, []string{"A", "Long Name", "Feature3"}, names)
	require.Empty(t, m.Roots())

	var formulas []string
	for _, c := range m.Constraints() {
		formulas = append(formulas, c.Formula().String())
	}
	require.Equal(t, []string{`A or not "Long Name"`, "Feature3 or not A", "false"}, formulas)
}

func TestDIMACS_RoundTripFlatModel(t *testing.T) {
	m := flatModel(t, []string{"A", "B", "C"}, "A or not B", "C", "not A or not C")

	text, err := EncodeToString(DIMACS{}, m)
	require.NoError(t, err)
	got, err := DecodeString(DIMACS{}, text)
	require.NoError(t, err)
	t.Cleanup(got.Close)

	again, err := EncodeToString(DIMACS{}, got)
	require.NoError(t, err)
	require.Equal(t, text, again)
}

func TestDIMACS_EncodeTree(t *testing.T) {
	m := carModel(t)

	got, err := EncodeToString(DIMACS{Tree: true}, m)
	require.NoError(t, err)
	require.Equal(t, `c 1 Car
c 2 Body
c 3 Engine
c 4 Petrol
c 5 Electric
c 6 Extras
c 7 Radio
c 8 Navi
p cnf 8 14
1 0
-2 1 0
-1 2 0
-3 1 0
-1 3 0
-6 1 0
-4 3 0
-5 3 0
-3 4 5 0
-4 -5 0
-7 6 0
-8 6 0
-6 7 8 0
-8 5 0
`, got)

	decoded, err := DecodeString(DIMACS{}, got)
	require.NoError(t, err)
	t.Cleanup(decoded.Close)
	require.Equal(t, 8, decoded.NumberOfFeatures())
	require.Equal(t, 14, decoded.NumberOfConstraints())
}

func TestDIMACS_EncodeTreeClausesHoldForValidConfigurations(t *testing.T) {
	m := carModel(t)
	text, err := EncodeToString(DIMACS{Tree: true}, m)
	require.NoError(t, err)
	decoded, err := DecodeString(DIMACS{}, text)
	require.NoError(t, err)
	t.Cleanup(decoded.Close)

	valid := map[string]bool{"Car": true, "Body": true, "Engine": true, "Electric": true, "Extras": true, "Navi": true}
	invalid := map[string]bool{"Car": true, "Body": true, "Engine": true, "Petrol": true, "Electric": true}
	holds := func(assignment map[string]bool) bool {
		for _, c := range decoded.Constraints() {
			if !formula.Evaluate(c.Formula(), assignment) {
				return false
			}
		}
		return true
	}
	require.True(t, holds(valid))
	require.False(t, holds(invalid))
}

func TestDIMACS_EncodeTreeRejectsCardinality(t *testing.T) {
	m := carModel(t)
	root := m.Roots()[0]
	require.NoError(t, root.SetGroupRange(0, 2, 3))

	_, err := EncodeToString(DIMACS{Tree: true}, m)
	require.ErrorIs(t, err, ErrUnsupported)

	_, err = EncodeToString(DIMACS{}, m)
	require.NoError(t, err)
}

func TestDIMACS_DecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no header", "c 1 A\n"},
		{"clause before header", "1 0\np cnf 1 1\n"},
		{"bad problem line", "p dnf 1 1\n"},
		{"bad counts", "p cnf x 1\n"},
		{"bad literal", "p cnf 2 1\n1 a 0\n"},
		{"literal out of range", "p cnf 2 1\n3 0\n"},
		{"duplicate names", "c 1 A\nc 2 A\np cnf 2 0\n"},
		{"too many variables", "p cnf 1000000000 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeString(DIMACS{}, tt.input)
			require.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDIMACS_DecodeVariableLimit(t *testing.T) {
	_, err := DecodeString(DIMACS{}, fmt.Sprintf("p cnf %d 0\n", MaxDIMACSVariables+1))
	require.ErrorIs(t, err, ErrMalformed)
	require.ErrorContains(t, err, "exceeds the limit")

	m, err := DecodeString(DIMACS{}, "p cnf 3 0\n")
	require.NoError(t, err)
	require.Equal(t, 3, m.NumberOfFeatures())
}
