package codec

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zjrosen/featmodel/internal/featuremodel"
	"github.com/zjrosen/featmodel/internal/formula"
	"github.com/zjrosen/featmodel/internal/log"
)

// DIMACS reads and writes the CNF exchange format of SAT solvers.
//
// Every feature becomes one variable, numbered in model order and named by a
// "c <index> <name>" comment. Constraints must already be in clausal form.
// Decoding yields a flat model: one feature per variable and one Or
// constraint per clause, with no tree.
type DIMACS struct {
	// Tree additionally encodes the feature tree as clauses. Only optional
	// and mandatory features and groups with a lower bound of 0 or 1 and an
	// upper bound of 1 or open can be expressed.
	Tree bool
}

func (DIMACS) Name() string         { return "dimacs" }
func (DIMACS) Extensions() []string { return []string{".dimacs", ".cnf"} }

type clause []int

func (d DIMACS) Encode(w io.Writer, m featuremodel.Reader) error {
	features := m.Features()
	index := make(map[*featuremodel.Feature]int, len(features))
	for i, f := range features {
		index[f] = i + 1
	}
	resolve := featureResolver(m)
	variable := func(name string) (int, error) {
		if f, ok := resolve(name); ok {
			return index[f], nil
		}
		return 0, fmt.Errorf("%w: unknown variable %q", ErrUnsupported, name)
	}

	var clauses []clause
	if d.Tree {
		for _, root := range m.Roots() {
			treeClauses, err := encodeTree(root, index)
			if err != nil {
				return err
			}
			clauses = append(clauses, treeClauses...)
		}
	}
	for _, c := range m.Constraints() {
		cs, err := toClauses(c.Formula(), variable)
		if err != nil {
			return fmt.Errorf("constraint %s: %w", c.ID(), err)
		}
		clauses = append(clauses, cs...)
	}

	bw := bufio.NewWriter(w)
	for i, f := range features {
		fmt.Fprintf(bw, "c %d %s\n", i+1, f.Name())
	}
	fmt.Fprintf(bw, "p cnf %d %d\n", len(features), len(clauses))
	for _, cl := range clauses {
		for _, lit := range cl {
			bw.WriteString(strconv.Itoa(lit))
			bw.WriteByte(' ')
		}
		bw.WriteString("0\n")
	}
	return bw.Flush()
}

// toClauses converts a formula in conjunctive normal form to clauses.
// Implications between a conjunction of literals and a disjunction of
// literals are accepted as a single clause.
func toClauses(f formula.Formula, variable func(string) (int, error)) ([]clause, error) {
	switch e := f.(type) {
	case formula.Constant:
		if e.Value {
			return nil, nil
		}
		return []clause{{}}, nil
	case *formula.AndExpr:
		var out []clause
		for _, op := range e.Operands {
			cs, err := toClauses(op, variable)
			if err != nil {
				return nil, err
			}
			out = append(out, cs...)
		}
		return out, nil
	case *formula.ImpliesExpr:
		premise, err := conjunctionLiterals(e.Left, variable)
		if err != nil {
			return nil, err
		}
		conclusion, err := disjunctionLiterals(e.Right, variable)
		if err != nil {
			return nil, err
		}
		cl := make(clause, 0, len(premise)+len(conclusion))
		for _, lit := range premise {
			cl = append(cl, -lit)
		}
		return []clause{append(cl, conclusion...)}, nil
	default:
		cl, err := disjunctionLiterals(f, variable)
		if err != nil {
			return nil, err
		}
		return []clause{cl}, nil
	}
}

func disjunctionLiterals(f formula.Formula, variable func(string) (int, error)) (clause, error) {
	if or, ok := f.(*formula.OrExpr); ok {
		out := make(clause, 0, len(or.Operands))
		for _, op := range or.Operands {
			lit, err := literal(op, variable)
			if err != nil {
				return nil, err
			}
			out = append(out, lit)
		}
		return out, nil
	}
	lit, err := literal(f, variable)
	if err != nil {
		return nil, err
	}
	return clause{lit}, nil
}

func conjunctionLiterals(f formula.Formula, variable func(string) (int, error)) (clause, error) {
	if and, ok := f.(*formula.AndExpr); ok {
		out := make(clause, 0, len(and.Operands))
		for _, op := range and.Operands {
			lit, err := literal(op, variable)
			if err != nil {
				return nil, err
			}
			out = append(out, lit)
		}
		return out, nil
	}
	lit, err := literal(f, variable)
	if err != nil {
		return nil, err
	}
	return clause{lit}, nil
}

func literal(f formula.Formula, variable func(string) (int, error)) (int, error) {
	switch e := f.(type) {
	case *formula.Variable:
		return variable(e.Name)
	case *formula.NotExpr:
		if v, ok := e.Operand.(*formula.Variable); ok {
			idx, err := variable(v.Name)
			return -idx, err
		}
	}
	return 0, fmt.Errorf("%w: %s is not in clausal form", ErrUnsupported, f)
}

func encodeTree(root featuremodel.Node, index map[*featuremodel.Feature]int) ([]clause, error) {
	out := []clause{{index[root.Feature()]}}
	var err error
	root.Walk(func(n featuremodel.Node) bool {
		p := index[n.Feature()]
		children := n.Children()
		for _, c := range children {
			r := c.FeatureRange()
			if r.Upper != 1 {
				err = fmt.Errorf("%w: feature range %s of %q", ErrUnsupported, r, c.Feature().Name())
				return false
			}
			ci := index[c.Feature()]
			out = append(out, clause{-ci, p})
			if r.Lower == 1 {
				out = append(out, clause{-p, ci})
			}
		}
		for gi, g := range n.Groups() {
			var members []int
			for _, c := range children {
				if c.GroupIndex() == gi {
					members = append(members, index[c.Feature()])
				}
			}
			switch g.Lower {
			case 0:
			case 1:
				out = append(out, append(clause{-p}, members...))
			default:
				err = fmt.Errorf("%w: group range %s of %q", ErrUnsupported, g.Range, n.Feature().Name())
				return false
			}
			switch {
			case !g.IsUpperBounded() || g.Upper >= len(members):
			case g.Upper == 1:
				for i := range members {
					for j := i + 1; j < len(members); j++ {
						out = append(out, clause{-members[i], -members[j]})
					}
				}
			default:
				err = fmt.Errorf("%w: group range %s of %q", ErrUnsupported, g.Range, n.Feature().Name())
				return false
			}
		}
		return true
	})
	return out, err
}

// MaxDIMACSVariables bounds the variable count a problem line may declare.
// Every variable becomes a feature.
const MaxDIMACSVariables = 1 << 20

func (DIMACS) Decode(r io.Reader, opts ...featuremodel.Option) (*featuremodel.Model, error) {
	names := make(map[int]string)
	var (
		header             bool
		variables, declare int
		clauses            []clause
		current            clause
	)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		switch {
		case text == "" || text == "%":
			continue
		case text == "c" || strings.HasPrefix(text, "c "):
			idx, name, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(text, "c")), " ")
			if !ok {
				continue
			}
			n, err := strconv.Atoi(idx)
			if err != nil || n <= 0 {
				continue
			}
			names[n] = strings.TrimSpace(name)
		case strings.HasPrefix(text, "p "):
			fields := strings.Fields(text)
			if len(fields) != 4 || fields[1] != "cnf" {
				return nil, fmt.Errorf("%w: line %d: bad problem line %q", ErrMalformed, line, text)
			}
			var err error
			if variables, err = strconv.Atoi(fields[2]); err != nil || variables < 0 {
				return nil, fmt.Errorf("%w: line %d: bad variable count %q", ErrMalformed, line, fields[2])
			}
			if variables > MaxDIMACSVariables {
				return nil, fmt.Errorf("%w: line %d: %d variables exceeds the limit of %d", ErrMalformed, line, variables, MaxDIMACSVariables)
			}
			if declare, err = strconv.Atoi(fields[3]); err != nil || declare < 0 {
				return nil, fmt.Errorf("%w: line %d: bad clause count %q", ErrMalformed, line, fields[3])
			}
			header = true
		default:
			if !header {
				return nil, fmt.Errorf("%w: line %d: clause before problem line", ErrMalformed, line)
			}
			for _, tok := range strings.Fields(text) {
				lit, err := strconv.Atoi(tok)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: bad literal %q", ErrMalformed, line, tok)
				}
				if lit == 0 {
					clauses = append(clauses, current)
					current = nil
					continue
				}
				if abs(lit) > variables {
					return nil, fmt.Errorf("%w: line %d: literal %d exceeds %d variables", ErrMalformed, line, lit, variables)
				}
				current = append(current, lit)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !header {
		return nil, fmt.Errorf("%w: missing problem line", ErrMalformed)
	}
	if len(current) > 0 {
		clauses = append(clauses, current)
	}
	if len(clauses) != declare {
		log.Warn(log.CatCodec, "clause count differs from header", "declared", declare, "found", len(clauses))
	}

	m := featuremodel.New(opts...)
	seen := make(map[string]int, variables)
	for i := 1; i <= variables; i++ {
		name := names[i]
		if name == "" {
			name = "Feature" + strconv.Itoa(i)
		}
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: variables %d and %d are both named %q", ErrMalformed, prev, i, name)
		}
		seen[name] = i
		names[i] = name
		if _, err := m.AddFeature(name); err != nil {
			return nil, fmt.Errorf("variable %d: %w", i, err)
		}
	}
	for _, cl := range clauses {
		lits := make([]formula.Formula, 0, len(cl))
		for _, lit := range cl {
			v := formula.Var(names[abs(lit)])
			if lit < 0 {
				lits = append(lits, formula.Not(v))
			} else {
				lits = append(lits, v)
			}
		}
		if _, err := m.AddConstraint(formula.Or(lits...)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
