package codec

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/zjrosen/featmodel/internal/featuremodel"
	"github.com/zjrosen/featmodel/internal/formula"
)

// FeatureIDE reads and writes the XML format of the FeatureIDE tool.
//
// The format identifies features by name and describes a single tree whose
// nodes each own one group, so only models with one root, unique names, no
// unbound features, and and/or/alternative groups can be encoded.
type FeatureIDE struct{}

func (FeatureIDE) Name() string         { return "featureide" }
func (FeatureIDE) Extensions() []string { return []string{".xml"} }

type xmlModel struct {
	XMLName     xml.Name       `xml:"featureModel"`
	Properties  *struct{}      `xml:"properties"`
	Struct      xmlStruct      `xml:"struct"`
	Constraints xmlConstraints `xml:"constraints"`
}

type xmlStruct struct {
	Roots []xmlFeature `xml:",any"`
}

type xmlConstraints struct {
	Rules []xmlRule `xml:"rule"`
}

// xmlFeature is a <feature>, <and>, <or> or <alt> element.
type xmlFeature struct {
	XMLName     xml.Name
	Name        string       `xml:"name,attr"`
	Abstract    bool         `xml:"abstract,attr,omitempty"`
	Mandatory   bool         `xml:"mandatory,attr,omitempty"`
	Hidden      bool         `xml:"hidden,attr,omitempty"`
	Description string       `xml:"description,omitempty"`
	Children    []xmlFeature `xml:",any"`
}

type xmlRule struct {
	Description string    `xml:"description,omitempty"`
	Exprs       []xmlExpr `xml:",any"`
}

// xmlExpr is one of <var>, <not>, <conj>, <disj>, <imp> or <eq>.
type xmlExpr struct {
	XMLName  xml.Name
	Text     string    `xml:",chardata"`
	Operands []xmlExpr `xml:",any"`
}

func (FeatureIDE) Encode(w io.Writer, m featuremodel.Reader) error {
	roots := m.Roots()
	if len(roots) != 1 {
		return fmt.Errorf("%w: featureide needs exactly one root, model has %d", ErrUnsupported, len(roots))
	}
	seen := make(map[string]bool)
	for _, f := range m.Features() {
		if _, bound := f.Tree(); !bound {
			return fmt.Errorf("%w: feature %q is not in the tree", ErrUnsupported, f.Name())
		}
		if seen[f.Name()] {
			return fmt.Errorf("%w: duplicate feature name %q", ErrUnsupported, f.Name())
		}
		seen[f.Name()] = true
	}

	root, err := xmlNode(roots[0])
	if err != nil {
		return err
	}
	doc := xmlModel{Properties: &struct{}{}, Struct: xmlStruct{Roots: []xmlFeature{root}}}

	resolve := featureResolver(m)
	for _, c := range m.Constraints() {
		expr, err := xmlFormula(c.Formula(), resolve)
		if err != nil {
			return fmt.Errorf("constraint %s: %w", c.ID(), err)
		}
		doc.Constraints.Rules = append(doc.Constraints.Rules, xmlRule{
			Description: c.Description(),
			Exprs:       []xmlExpr{expr},
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode xml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

func xmlNode(n featuremodel.Node) (xmlFeature, error) {
	f := n.Feature()
	out := xmlFeature{
		Name:        f.Name(),
		Abstract:    f.Abstract(),
		Hidden:      f.Hidden(),
		Description: f.Description(),
	}
	switch r := n.FeatureRange(); r {
	case featuremodel.Range{Lower: 0, Upper: 1}:
	case featuremodel.Range{Lower: 1, Upper: 1}:
		out.Mandatory = true
	default:
		return xmlFeature{}, fmt.Errorf("%w: feature range %s of %q", ErrUnsupported, r, f.Name())
	}

	groups := n.Groups()
	if len(groups) != 1 {
		return xmlFeature{}, fmt.Errorf("%w: %q has %d groups", ErrUnsupported, f.Name(), len(groups))
	}
	switch g := groups[0]; {
	case g.IsAnd() && n.NumberOfChildren() == 0:
		out.XMLName.Local = "feature"
	case g.IsAnd():
		out.XMLName.Local = "and"
	case g.IsOr():
		out.XMLName.Local = "or"
	case g.IsAlternative():
		out.XMLName.Local = "alt"
	default:
		return xmlFeature{}, fmt.Errorf("%w: group range %s of %q", ErrUnsupported, g.Range, f.Name())
	}

	for _, child := range n.Children() {
		c, err := xmlNode(child)
		if err != nil {
			return xmlFeature{}, err
		}
		out.Children = append(out.Children, c)
	}
	return out, nil
}

func xmlFormula(f formula.Formula, resolve func(string) (*featuremodel.Feature, bool)) (xmlExpr, error) {
	var (
		tag      string
		operands []formula.Formula
	)
	switch e := f.(type) {
	case *formula.Variable:
		feature, ok := resolve(e.Name)
		if !ok {
			return xmlExpr{}, fmt.Errorf("%w: unknown variable %q", ErrUnsupported, e.Name)
		}
		return xmlExpr{XMLName: xml.Name{Local: "var"}, Text: feature.Name()}, nil
	case *formula.NotExpr:
		tag, operands = "not", []formula.Formula{e.Operand}
	case *formula.AndExpr:
		tag, operands = "conj", e.Operands
	case *formula.OrExpr:
		tag, operands = "disj", e.Operands
	case *formula.ImpliesExpr:
		tag, operands = "imp", []formula.Formula{e.Left, e.Right}
	case *formula.IffExpr:
		tag, operands = "eq", []formula.Formula{e.Left, e.Right}
	default:
		return xmlExpr{}, fmt.Errorf("%w: %s has no featureide form", ErrUnsupported, f)
	}
	out := xmlExpr{XMLName: xml.Name{Local: tag}}
	for _, op := range operands {
		x, err := xmlFormula(op, resolve)
		if err != nil {
			return xmlExpr{}, err
		}
		out.Operands = append(out.Operands, x)
	}
	return out, nil
}

func (FeatureIDE) Decode(r io.Reader, opts ...featuremodel.Option) (*featuremodel.Model, error) {
	var doc xmlModel
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if len(doc.Struct.Roots) != 1 {
		return nil, fmt.Errorf("%w: struct must hold exactly one root, found %d", ErrMalformed, len(doc.Struct.Roots))
	}

	m := featuremodel.New(opts...)
	root := doc.Struct.Roots[0]
	f, err := xmlFeatureOf(m, root)
	if err != nil {
		return nil, err
	}
	node, err := m.AddTreeRoot(f)
	if err != nil {
		return nil, err
	}
	if err := buildXMLNode(m, node, root); err != nil {
		return nil, err
	}

	for i, rule := range doc.Constraints.Rules {
		if len(rule.Exprs) != 1 {
			return nil, fmt.Errorf("%w: rule %d must hold one expression", ErrMalformed, i)
		}
		expr, err := formulaOf(rule.Exprs[0])
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		c, err := m.AddConstraint(expr)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		c.SetDescription(strings.TrimSpace(rule.Description))
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func xmlFeatureOf(m *featuremodel.Model, x xmlFeature) (*featuremodel.Feature, error) {
	f, err := m.AddFeature(x.Name)
	if err != nil {
		return nil, fmt.Errorf("<%s name=%q>: %w", x.XMLName.Local, x.Name, err)
	}
	f.SetAbstract(x.Abstract)
	f.SetHidden(x.Hidden)
	f.SetDescription(strings.TrimSpace(x.Description))
	return f, nil
}

func buildXMLNode(m *featuremodel.Model, n featuremodel.Node, x xmlFeature) error {
	if x.Mandatory {
		if err := n.SetMandatory(); err != nil {
			return err
		}
	}
	var group featuremodel.Group
	switch x.XMLName.Local {
	case "feature", "and":
		group = featuremodel.AndGroup()
	case "or":
		group = featuremodel.OrGroup()
	case "alt":
		group = featuremodel.AlternativeGroup()
	default:
		return fmt.Errorf("%w: unknown element <%s>", ErrMalformed, x.XMLName.Local)
	}
	if err := n.SetGroups([]featuremodel.Group{group}); err != nil {
		return err
	}
	for _, cx := range x.Children {
		f, err := xmlFeatureOf(m, cx)
		if err != nil {
			return err
		}
		child, err := n.AddChild(f)
		if err != nil {
			return err
		}
		if err := buildXMLNode(m, child, cx); err != nil {
			return err
		}
	}
	return nil
}

func formulaOf(x xmlExpr) (formula.Formula, error) {
	operands := make([]formula.Formula, 0, len(x.Operands))
	for _, op := range x.Operands {
		f, err := formulaOf(op)
		if err != nil {
			return nil, err
		}
		operands = append(operands, f)
	}
	arity := func(n int) error {
		if len(operands) != n {
			return fmt.Errorf("%w: <%s> takes %d operands, got %d", ErrMalformed, x.XMLName.Local, n, len(operands))
		}
		return nil
	}
	switch x.XMLName.Local {
	case "var":
		name := strings.TrimSpace(x.Text)
		if name == "" {
			return nil, fmt.Errorf("%w: empty <var>", ErrMalformed)
		}
		return formula.Var(name), nil
	case "not":
		if err := arity(1); err != nil {
			return nil, err
		}
		return formula.Not(operands[0]), nil
	case "conj":
		return formula.And(operands...), nil
	case "disj":
		return formula.Or(operands...), nil
	case "imp":
		if err := arity(2); err != nil {
			return nil, err
		}
		return formula.Implies(operands[0], operands[1]), nil
	case "eq":
		if err := arity(2); err != nil {
			return nil, err
		}
		return formula.Iff(operands[0], operands[1]), nil
	}
	return nil, fmt.Errorf("%w: unknown element <%s>", ErrMalformed, x.XMLName.Local)
}
