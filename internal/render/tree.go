package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/featmodel/internal/featuremodel"
)

// Renderer draws models as indented trees.
type Renderer struct {
	styles      Styles
	constraints bool
	unbound     bool
	descWidth   int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithStyles replaces the default styles.
func WithStyles(s Styles) Option {
	return func(r *Renderer) {
		r.styles = s
	}
}

// WithConstraints toggles the constraint section. On by default.
func WithConstraints(show bool) Option {
	return func(r *Renderer) {
		r.constraints = show
	}
}

// WithUnbound toggles listing features without a tree position. On by default.
func WithUnbound(show bool) Option {
	return func(r *Renderer) {
		r.unbound = show
	}
}

// WithDescriptions prints each feature's description below its name,
// wrapped at width columns. Zero, the default, hides descriptions.
func WithDescriptions(width int) Option {
	return func(r *Renderer) {
		r.descWidth = width
	}
}

// New creates a renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{styles: DefaultStyles(), constraints: true, unbound: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Model renders every tree of m followed by unbound features and constraints.
func (r *Renderer) Model(m featuremodel.Reader) string {
	var sections []string
	sections = append(sections, r.styles.Heading.Render(m.Name()))
	for _, root := range m.Roots() {
		sections = append(sections, r.Node(root))
	}

	if r.unbound {
		var loose []string
		for _, f := range m.Features() {
			if _, bound := f.Tree(); !bound {
				loose = append(loose, f.Name())
			}
		}
		if len(loose) > 0 {
			sections = append(sections, r.styles.Heading.Render("unbound")+"\n"+r.list(loose, r.styles.Optional))
		}
	}

	if r.constraints {
		if cs := m.Constraints(); len(cs) > 0 {
			formulas := make([]string, len(cs))
			for i, c := range cs {
				formulas[i] = c.Formula().String()
			}
			sections = append(sections, r.styles.Heading.Render("constraints")+"\n"+r.list(formulas, r.styles.Constraint))
		}
	}
	return strings.Join(sections, "\n") + "\n"
}

// Node renders the subtree rooted at n.
func (r *Renderer) Node(n featuremodel.Node) string {
	lines := strings.Split(r.subtree(n).String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) subtree(n featuremodel.Node) *tree.Tree {
	t := tree.Root(r.label(n)).
		Enumerator(tree.DefaultEnumerator).
		EnumeratorStyle(r.styles.Enumerator)
	for _, c := range n.Children() {
		if c.NumberOfChildren() == 0 {
			t.Child(r.label(c))
			continue
		}
		t.Child(r.subtree(c))
	}
	return t
}

func (r *Renderer) list(items []string, style lipgloss.Style) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = r.styles.Enumerator.Render("- ") + style.Render(item)
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) label(n featuremodel.Node) string {
	name := n.Feature().Name()
	switch {
	case n.IsRoot():
		name = r.styles.Root.Render(name)
	case n.IsMandatory():
		name = r.styles.Mandatory.Render(name)
	default:
		name = r.styles.Optional.Render(name)
	}
	if notes := Annotations(n); len(notes) > 0 {
		name += " " + r.styles.Annotation.Render("("+strings.Join(notes, ", ")+")")
	}
	if desc := n.Feature().Description(); r.descWidth > 0 && desc != "" {
		name += "\n" + r.styles.Annotation.Render(wordwrap.String(desc, r.descWidth))
	}
	return name
}

// Annotations lists the markers shown after a feature name: cardinality,
// group kind and the abstract and hidden flags.
func Annotations(n featuremodel.Node) []string {
	var out []string
	f := n.Feature()
	rng := n.FeatureRange()
	switch {
	case rng == featuremodel.Range{Lower: 1, Upper: 1}:
		out = append(out, "mandatory")
	case rng != featuremodel.Range{Lower: 0, Upper: 1}:
		out = append(out, "range "+strings.Trim(rng.String(), "[]"))
	}
	if p, ok := n.Parent(); ok && len(p.Groups()) > 1 {
		out = append(out, fmt.Sprintf("group %d", n.GroupIndex()))
	}
	if groups := n.Groups(); len(groups) > 1 || (len(groups) == 1 && !groups[0].IsAnd()) {
		kinds := make([]string, len(groups))
		for i, g := range groups {
			kinds[i] = groupLabel(g)
		}
		out = append(out, strings.Join(kinds, " | "))
	}
	if f.Abstract() {
		out = append(out, "abstract")
	}
	if f.Hidden() {
		out = append(out, "hidden")
	}
	return out
}

func groupLabel(g featuremodel.Group) string {
	switch g.Kind() {
	case featuremodel.GroupAnd:
		return "and"
	case featuremodel.GroupOr:
		return "or"
	case featuremodel.GroupAlternative:
		return "alt"
	default:
		return "group " + strings.Trim(g.Range.String(), "[]")
	}
}
