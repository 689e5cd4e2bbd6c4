package formula

import (
	"strings"
)

// Formula is a propositional expression.
type Formula interface {
	// Variables returns the distinct variable names in order of first occurrence.
	Variables() []string
	// String renders the formula in the syntax accepted by Parse.
	String() string

	formula()
	precedence() int
	collect(seen map[string]bool, out []string) []string
}

// Operator precedence, higher binds tighter.
const (
	precIff = iota + 1
	precImplies
	precOr
	precAnd
	precNot
	precAtom
)

// Variable references a feature by name.
type Variable struct {
	Name string
}

// Constant is the literal true or false.
type Constant struct {
	Value bool
}

// NotExpr represents "not operand".
type NotExpr struct {
	Operand Formula
}

// AndExpr is the conjunction of its operands.
type AndExpr struct {
	Operands []Formula
}

// OrExpr is the disjunction of its operands.
type OrExpr struct {
	Operands []Formula
}

// ImpliesExpr represents "left implies right".
type ImpliesExpr struct {
	Left, Right Formula
}

// IffExpr represents "left iff right".
type IffExpr struct {
	Left, Right Formula
}

// Var creates a variable reference.
func Var(name string) *Variable { return &Variable{Name: name} }

// True is the constant true.
func True() Constant { return Constant{Value: true} }

// False is the constant false.
func False() Constant { return Constant{Value: false} }

// Not negates f.
func Not(f Formula) *NotExpr { return &NotExpr{Operand: f} }

// And conjoins operands.
func And(operands ...Formula) *AndExpr { return &AndExpr{Operands: operands} }

// Or disjoins operands.
func Or(operands ...Formula) *OrExpr { return &OrExpr{Operands: operands} }

// Implies creates "left implies right".
func Implies(left, right Formula) *ImpliesExpr { return &ImpliesExpr{Left: left, Right: right} }

// Iff creates "left iff right".
func Iff(left, right Formula) *IffExpr { return &IffExpr{Left: left, Right: right} }

func (*Variable) formula()    {}
func (Constant) formula()     {}
func (*NotExpr) formula()     {}
func (*AndExpr) formula()     {}
func (*OrExpr) formula()      {}
func (*ImpliesExpr) formula() {}
func (*IffExpr) formula()     {}

func (*Variable) precedence() int    { return precAtom }
func (Constant) precedence() int     { return precAtom }
func (*NotExpr) precedence() int     { return precNot }
func (*AndExpr) precedence() int     { return precAnd }
func (*OrExpr) precedence() int      { return precOr }
func (*ImpliesExpr) precedence() int { return precImplies }
func (*IffExpr) precedence() int     { return precIff }

func (v *Variable) Variables() []string    { return v.collect(map[string]bool{}, nil) }
func (c Constant) Variables() []string     { return nil }
func (n *NotExpr) Variables() []string     { return n.collect(map[string]bool{}, nil) }
func (a *AndExpr) Variables() []string     { return a.collect(map[string]bool{}, nil) }
func (o *OrExpr) Variables() []string      { return o.collect(map[string]bool{}, nil) }
func (i *ImpliesExpr) Variables() []string { return i.collect(map[string]bool{}, nil) }
func (i *IffExpr) Variables() []string     { return i.collect(map[string]bool{}, nil) }

func (v *Variable) collect(seen map[string]bool, out []string) []string {
	if seen[v.Name] {
		return out
	}
	seen[v.Name] = true
	return append(out, v.Name)
}

func (Constant) collect(_ map[string]bool, out []string) []string { return out }

func (n *NotExpr) collect(seen map[string]bool, out []string) []string {
	return n.Operand.collect(seen, out)
}

func (a *AndExpr) collect(seen map[string]bool, out []string) []string {
	for _, op := range a.Operands {
		out = op.collect(seen, out)
	}
	return out
}

func (o *OrExpr) collect(seen map[string]bool, out []string) []string {
	for _, op := range o.Operands {
		out = op.collect(seen, out)
	}
	return out
}

func (i *ImpliesExpr) collect(seen map[string]bool, out []string) []string {
	return i.Right.collect(seen, i.Left.collect(seen, out))
}

func (i *IffExpr) collect(seen map[string]bool, out []string) []string {
	return i.Right.collect(seen, i.Left.collect(seen, out))
}

func (v *Variable) String() string { return QuoteName(v.Name) }

func (c Constant) String() string {
	if c.Value {
		return "true"
	}
	return "false"
}

func (n *NotExpr) String() string {
	return "not " + wrap(n.Operand, precNot)
}

func (a *AndExpr) String() string {
	if len(a.Operands) == 0 {
		return "true"
	}
	return join(a.Operands, " and ", precAnd)
}

func (o *OrExpr) String() string {
	if len(o.Operands) == 0 {
		return "false"
	}
	return join(o.Operands, " or ", precOr)
}

// Implication is right associative, so a nested implication on the left needs parentheses.
func (i *ImpliesExpr) String() string {
	return wrap(i.Left, precImplies+1) + " implies " + wrap(i.Right, precImplies)
}

func (i *IffExpr) String() string {
	return wrap(i.Left, precIff+1) + " iff " + wrap(i.Right, precIff+1)
}

func wrap(f Formula, min int) string {
	if f.precedence() < min {
		return "(" + f.String() + ")"
	}
	return f.String()
}

func join(operands []Formula, sep string, prec int) string {
	parts := make([]string, len(operands))
	for i, op := range operands {
		parts[i] = wrap(op, prec+1)
	}
	return strings.Join(parts, sep)
}

// QuoteName renders a variable name, quoting it when it would not lex back as
// a single identifier.
func QuoteName(name string) string {
	if name != "" && LookupKeyword(name) == TokenIdent && bareName(name) {
		return name
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(name); i++ {
		if name[i] == '"' || name[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(name[i])
	}
	b.WriteByte('"')
	return b.String()
}

func bareName(name string) bool {
	l := NewLexer(name)
	tok := l.NextToken()
	return tok.Type == TokenIdent && tok.Literal == name && l.NextToken().Type == TokenEOF
}
