package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestLexer_Operators(t *testing.T) {
	input := `a & b && c | d || !e ~f => g -> h <=> i <-> j`
	expected := []TokenType{
		TokenIdent, TokenAnd, TokenIdent, TokenAnd, TokenIdent, TokenOr, TokenIdent, TokenOr,
		TokenNot, TokenIdent, TokenNot, TokenIdent, TokenImplies, TokenIdent, TokenImplies,
		TokenIdent, TokenIff, TokenIdent, TokenIff, TokenIdent, TokenEOF,
	}

	l := NewLexer(input)
	for i, want := range expected {
		tok := l.NextToken()
		require.Equal(t, want, tok.Type, "token %d (%q)", i, tok.Literal)
	}
}

func TestLexer_HyphenatedNames(t *testing.T) {
	l := NewLexer("my-feature->other")

	tok := l.NextToken()
	require.Equal(t, TokenIdent, tok.Type)
	require.Equal(t, "my-feature", tok.Literal)
	require.Equal(t, TokenImplies, l.NextToken().Type)
	tok = l.NextToken()
	require.Equal(t, "other", tok.Literal)
}

func TestLexer_QuotedName(t *testing.T) {
	l := NewLexer(`"Base Feature" "say \"hi\""`)

	tok := l.NextToken()
	require.Equal(t, TokenString, tok.Type)
	require.Equal(t, "Base Feature", tok.Literal)
	tok = l.NextToken()
	require.Equal(t, `say "hi"`, tok.Literal)
}

func TestLexer_UnterminatedString(t *testing.T) {
	tok := NewLexer(`"open`).NextToken()
	require.Equal(t, TokenIllegal, tok.Type)
}

func TestLexer_Positions(t *testing.T) {
	l := NewLexer("a  and b")
	require.Equal(t, 0, l.NextToken().Pos)
	require.Equal(t, 3, l.NextToken().Pos)
	require.Equal(t, 7, l.NextToken().Pos)
}

func TestLookupKeyword_CaseInsensitive(t *testing.T) {
	assert.Equal(t, TokenAnd, LookupKeyword("AND"))
	assert.Equal(t, TokenImplies, LookupKeyword("Implies"))
	assert.Equal(t, TokenIdent, LookupKeyword("andy"))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Formula
	}{
		{"variable", "A", Var("A")},
		{"constant", "true", True()},
		{"not", "not A", Not(Var("A"))},
		{"double not", "!!A", Not(Not(Var("A")))},
		{"and chain is flattened", "A and B and C", And(Var("A"), Var("B"), Var("C"))},
		{"or chain is flattened", "A | B | C", Or(Var("A"), Var("B"), Var("C"))},
		{"and binds tighter than or", "A or B and C", Or(Var("A"), And(Var("B"), Var("C")))},
		{"not binds tighter than and", "not A and B", And(Not(Var("A")), Var("B"))},
		{"implies is right associative", "A => B => C", Implies(Var("A"), Implies(Var("B"), Var("C")))},
		{"iff is loosest", "A => B <=> C", Iff(Implies(Var("A"), Var("B")), Var("C"))},
		{"parentheses", "(A or B) and C", And(Or(Var("A"), Var("B")), Var("C"))},
		{"quoted name", `"Base Feature" implies X`, Implies(Var("Base Feature"), Var("X"))},
		{"keyword as quoted name", `"and"`, Var("and")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"only whitespace", "   "},
		{"dangling operator", "A and"},
		{"missing right paren", "(A or B"},
		{"extra right paren", "A)"},
		{"two variables", "A B"},
		{"illegal character", "A = B"},
		{"empty quoted name", `""`},
		{"unterminated quote", `"A`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestVariables_FirstOccurrenceOrder(t *testing.T) {
	f := MustParse("B and (A or B) => not C <=> A")
	require.Equal(t, []string{"B", "A", "C"}, f.Variables())
	require.Empty(t, True().Variables())
}

func TestString(t *testing.T) {
	tests := []struct {
		f    Formula
		want string
	}{
		{And(Var("A"), Or(Var("B"), Var("C"))), "A and (B or C)"},
		{Or(Var("A"), And(Var("B"), Var("C"))), "A or B and C"},
		{Not(And(Var("A"), Var("B"))), "not (A and B)"},
		{Implies(Implies(Var("A"), Var("B")), Var("C")), "(A implies B) implies C"},
		{Implies(Var("A"), Implies(Var("B"), Var("C"))), "A implies B implies C"},
		{Iff(Var("x y"), Var("or")), `"x y" iff "or"`},
		{And(), "true"},
		{Or(), "false"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, tt.f.String())
		})
	}
}

func TestQuoteName(t *testing.T) {
	assert.Equal(t, "my-feature", QuoteName("my-feature"))
	assert.Equal(t, `"-lead"`, QuoteName("-lead"))
	assert.Equal(t, `"a\"b"`, QuoteName(`a"b`))
	assert.Equal(t, `""`, QuoteName(""))
	assert.Equal(t, `"a->b"`, QuoteName("a->b"))
}

func TestRename(t *testing.T) {
	original := MustParse("A and (B or not A)")
	renamed := Rename(original, map[string]string{"A": "Z"})

	require.Equal(t, "Z and (B or not Z)", renamed.String())
	require.Equal(t, "A and (B or not A)", original.String())
}

func TestWalk_SkipsChildren(t *testing.T) {
	f := MustParse("A and not (B or C)")
	var seen []string
	Walk(f, func(n Formula) bool {
		if v, ok := n.(*Variable); ok {
			seen = append(seen, v.Name)
		}
		_, isNot := n.(*NotExpr)
		return !isNot
	})
	require.Equal(t, []string{"A"}, seen)
}

func TestEvaluate(t *testing.T) {
	f := MustParse("A => B")
	assert.True(t, Evaluate(f, map[string]bool{}))
	assert.False(t, Evaluate(f, map[string]bool{"A": true}))
	assert.True(t, Evaluate(f, map[string]bool{"A": true, "B": true}))
	assert.True(t, Evaluate(MustParse("A <=> B"), map[string]bool{}))
}

func genName(t *rapid.T) string {
	return rapid.SampledFrom([]string{"A", "B", "c_1", "my-feature", "Base Feature", "and", `q"t`}).Draw(t, "name")
}

func genFormula(t *rapid.T, depth int) Formula {
	if depth == 0 {
		return Var(genName(t))
	}
	switch rapid.IntRange(0, 6).Draw(t, "kind") {
	case 0:
		return Var(genName(t))
	case 1:
		return Constant{Value: rapid.Bool().Draw(t, "const")}
	case 2:
		return Not(genFormula(t, depth-1))
	case 3:
		return And(genFormula(t, depth-1), genFormula(t, depth-1))
	case 4:
		return Or(genFormula(t, depth-1), genFormula(t, depth-1))
	case 5:
		return Implies(genFormula(t, depth-1), genFormula(t, depth-1))
	default:
		return Iff(genFormula(t, depth-1), genFormula(t, depth-1))
	}
}

// Rendering and re-parsing must preserve the variable set and truth table.
func TestString_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := genFormula(t, 4)
		parsed, err := Parse(f.String())
		if err != nil {
			t.Fatalf("parse %q: %v", f.String(), err)
		}
		vars := f.Variables()
		if got := parsed.Variables(); len(got) != len(vars) {
			t.Fatalf("variables %v != %v for %q", got, vars, f.String())
		}
		for mask := 0; mask < 1<<len(vars); mask++ {
			assignment := map[string]bool{}
			for i, v := range vars {
				assignment[v] = mask&(1<<i) != 0
			}
			if Evaluate(f, assignment) != Evaluate(parsed, assignment) {
				t.Fatalf("truth table differs for %q under %v", f.String(), assignment)
			}
		}
	})
}
