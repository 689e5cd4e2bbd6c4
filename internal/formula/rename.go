package formula

// Walk calls fn for every node of f in pre-order. Returning false from fn
// skips the node's children.
func Walk(f Formula, fn func(Formula) bool) {
	if f == nil || !fn(f) {
		return
	}
	switch n := f.(type) {
	case *NotExpr:
		Walk(n.Operand, fn)
	case *AndExpr:
		for _, op := range n.Operands {
			Walk(op, fn)
		}
	case *OrExpr:
		for _, op := range n.Operands {
			Walk(op, fn)
		}
	case *ImpliesExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *IffExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	}
}

// Rename returns a copy of f with variables renamed according to names.
// Variables missing from names are kept. f itself is not modified.
func Rename(f Formula, names map[string]string) Formula {
	switch n := f.(type) {
	case *Variable:
		if to, ok := names[n.Name]; ok {
			return Var(to)
		}
		return Var(n.Name)
	case Constant:
		return n
	case *NotExpr:
		return Not(Rename(n.Operand, names))
	case *AndExpr:
		return And(renameAll(n.Operands, names)...)
	case *OrExpr:
		return Or(renameAll(n.Operands, names)...)
	case *ImpliesExpr:
		return Implies(Rename(n.Left, names), Rename(n.Right, names))
	case *IffExpr:
		return Iff(Rename(n.Left, names), Rename(n.Right, names))
	default:
		return f
	}
}

func renameAll(operands []Formula, names map[string]string) []Formula {
	out := make([]Formula, len(operands))
	for i, op := range operands {
		out[i] = Rename(op, names)
	}
	return out
}

// Evaluate computes f under an assignment. Unassigned variables are false.
func Evaluate(f Formula, assignment map[string]bool) bool {
	switch n := f.(type) {
	case *Variable:
		return assignment[n.Name]
	case Constant:
		return n.Value
	case *NotExpr:
		return !Evaluate(n.Operand, assignment)
	case *AndExpr:
		for _, op := range n.Operands {
			if !Evaluate(op, assignment) {
				return false
			}
		}
		return true
	case *OrExpr:
		for _, op := range n.Operands {
			if Evaluate(op, assignment) {
				return true
			}
		}
		return false
	case *ImpliesExpr:
		return !Evaluate(n.Left, assignment) || Evaluate(n.Right, assignment)
	case *IffExpr:
		return Evaluate(n.Left, assignment) == Evaluate(n.Right, assignment)
	default:
		return false
	}
}
