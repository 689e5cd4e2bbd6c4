package codec

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/featmodel/internal/attribute"
	"github.com/zjrosen/featmodel/internal/featuremodel"
	"github.com/zjrosen/featmodel/internal/formula"
)

// YAML is the native, lossless file format.
//
// Features carry document-local ids that the tree section refers to.
// Identifiers are reissued on decode by the target model's registry, so the
// ids in a file only need to be unique within it.
type YAML struct{}

// ModelDoc is the top-level structure of a YAML model file.
type ModelDoc struct {
	// Name of the model
	Name string `yaml:"name,omitempty"`
	// Description of the model
	Description string `yaml:"description,omitempty"`
	// Attributes holds custom model metadata
	Attributes []AttributeDoc `yaml:"attributes,omitempty"`
	// Features lists every feature, bound or not, in model order
	Features []FeatureDoc `yaml:"features"`
	// Tree lists the roots of the feature forest
	Tree []NodeDoc `yaml:"tree,omitempty"`
	// Constraints lists cross-tree formulas in model order
	Constraints []ConstraintDoc `yaml:"constraints,omitempty"`
}

// FeatureDoc describes one feature.
type FeatureDoc struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Abstract    bool           `yaml:"abstract,omitempty"`
	Hidden      bool           `yaml:"hidden,omitempty"`
	Attributes  []AttributeDoc `yaml:"attributes,omitempty"`
}

// NodeDoc describes one tree node and its subtree.
type NodeDoc struct {
	// Feature is the id of a FeatureDoc
	Feature string `yaml:"feature"`
	// Range is the feature cardinality, e.g. "1..1"; defaults to "0..1"
	Range string `yaml:"range,omitempty"`
	// Groups lists the ranges of the node's groups; defaults to one and-group
	Groups []string `yaml:"groups,omitempty"`
	// Ungrouped marks a node whose group list was emptied
	Ungrouped bool `yaml:"ungrouped,omitempty"`
	// Group is the index of the parent's group this node belongs to
	Group    int       `yaml:"group,omitempty"`
	Children []NodeDoc `yaml:"children,omitempty"`
}

// ConstraintDoc describes one constraint. Formulas refer to features by name.
type ConstraintDoc struct {
	Formula     string         `yaml:"formula"`
	Description string         `yaml:"description,omitempty"`
	Tags        []string       `yaml:"tags,omitempty"`
	Attributes  []AttributeDoc `yaml:"attributes,omitempty"`
}

// AttributeDoc is one attribute entry.
type AttributeDoc struct {
	Key   string `yaml:"key"`
	Kind  string `yaml:"kind"`
	Value any    `yaml:"value"`
}

func (YAML) Name() string         { return "yaml" }
func (YAML) Extensions() []string { return []string{".yaml", ".yml"} }

// Encode writes m as a YAML document. It fails with ErrUnsupported when a
// constraint refers to a feature that name resolution would not find again,
// which can only happen with duplicate feature names.
func (y YAML) Encode(w io.Writer, m featuremodel.Reader) error {
	doc, err := y.document(m)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func (YAML) document(m featuremodel.Reader) (*ModelDoc, error) {
	doc := &ModelDoc{
		Name:        m.Name(),
		Description: m.Description(),
		Attributes:  attributeDocs(m.Attributes(), featuremodel.NameAttribute.Key(), featuremodel.DescriptionAttribute.Key()),
	}

	firstByName := make(map[string]*featuremodel.Feature)
	for _, f := range m.Features() {
		if _, ok := firstByName[f.Name()]; !ok {
			firstByName[f.Name()] = f
		}
		doc.Features = append(doc.Features, FeatureDoc{
			ID:          f.ID().String(),
			Name:        f.Name(),
			Description: f.Description(),
			Abstract:    f.Abstract(),
			Hidden:      f.Hidden(),
			Attributes: attributeDocs(f.Attributes(),
				featuremodel.NameAttribute.Key(),
				featuremodel.DescriptionAttribute.Key(),
				featuremodel.AbstractAttribute.Key(),
				featuremodel.HiddenAttribute.Key()),
		})
	}

	for _, root := range m.Roots() {
		doc.Tree = append(doc.Tree, nodeDoc(root))
	}

	for _, c := range m.Constraints() {
		for _, f := range c.ContainedFeatures() {
			if firstByName[f.Name()] != f {
				return nil, fmt.Errorf("%w: constraint %s refers to %q, which is not the first feature with that name",
					ErrUnsupported, c.ID(), f.Name())
			}
		}
		doc.Constraints = append(doc.Constraints, ConstraintDoc{
			Formula:     c.Formula().String(),
			Description: c.Description(),
			Tags:        c.Tags(),
			Attributes: attributeDocs(c.Attributes(),
				featuremodel.DescriptionAttribute.Key(),
				featuremodel.TagsAttribute.Key()),
		})
	}
	return doc, nil
}

func nodeDoc(n featuremodel.Node) NodeDoc {
	out := NodeDoc{
		Feature: n.Feature().ID().String(),
		Group:   n.GroupIndex(),
	}
	if r := n.FeatureRange(); r != (featuremodel.Range{Lower: 0, Upper: 1}) {
		out.Range = rangeText(r)
	}
	groups := n.Groups()
	if len(groups) == 0 {
		out.Ungrouped = true
	}
	if len(groups) != 1 || !groups[0].IsAnd() {
		for _, g := range groups {
			out.Groups = append(out.Groups, rangeText(g.Range))
		}
	}
	for _, child := range n.Children() {
		out.Children = append(out.Children, nodeDoc(child))
	}
	return out
}

func attributeDocs(s *attribute.Store, skip ...attribute.Key) []AttributeDoc {
	var out []AttributeDoc
	for _, e := range s.Entries() {
		if containsKey(skip, e.Key) {
			continue
		}
		out = append(out, AttributeDoc{Key: e.Key.String(), Kind: e.Kind.String(), Value: e.Value})
	}
	return out
}

func containsKey(keys []attribute.Key, k attribute.Key) bool {
	for _, other := range keys {
		if other == k {
			return true
		}
	}
	return false
}

// Decode reads a YAML document into a new model built with opts.
func (YAML) Decode(r io.Reader, opts ...featuremodel.Option) (*featuremodel.Model, error) {
	var doc ModelDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrMalformed)
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return FromDocument(&doc, opts...)
}

// FromDocument builds a model from an already parsed document.
func FromDocument(doc *ModelDoc, opts ...featuremodel.Option) (*featuremodel.Model, error) {
	m := featuremodel.New(opts...)
	if doc.Name != "" {
		if err := m.SetName(doc.Name); err != nil {
			return nil, err
		}
	}
	m.SetDescription(doc.Description)
	if err := applyAttributes(m.Attributes(), doc.Attributes); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	byDocID := make(map[string]*featuremodel.Feature, len(doc.Features))
	for i, fd := range doc.Features {
		if fd.ID == "" {
			return nil, fmt.Errorf("%w: feature %d has no id", ErrMalformed, i)
		}
		if _, dup := byDocID[fd.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate feature id %q", ErrMalformed, fd.ID)
		}
		f, err := m.AddFeature(fd.Name)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", fd.ID, err)
		}
		f.SetDescription(fd.Description)
		f.SetAbstract(fd.Abstract)
		f.SetHidden(fd.Hidden)
		if err := applyAttributes(f.Attributes(), fd.Attributes); err != nil {
			return nil, fmt.Errorf("feature %q: %w", fd.ID, err)
		}
		byDocID[fd.ID] = f
	}

	for _, nd := range doc.Tree {
		f, err := docFeature(byDocID, nd.Feature)
		if err != nil {
			return nil, err
		}
		root, err := m.AddTreeRoot(f)
		if err != nil {
			return nil, fmt.Errorf("tree root %q: %w", nd.Feature, err)
		}
		if err := buildNode(root, nd, byDocID); err != nil {
			return nil, err
		}
	}

	for i, cd := range doc.Constraints {
		expr, err := formula.Parse(cd.Formula)
		if err != nil {
			return nil, fmt.Errorf("constraint %d: %w", i, err)
		}
		c, err := m.AddConstraint(expr)
		if err != nil {
			return nil, fmt.Errorf("constraint %d: %w", i, err)
		}
		c.SetDescription(cd.Description)
		if len(cd.Tags) > 0 {
			c.SetTags(cd.Tags...)
		}
		if err := applyAttributes(c.Attributes(), cd.Attributes); err != nil {
			return nil, fmt.Errorf("constraint %d: %w", i, err)
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func buildNode(n featuremodel.Node, nd NodeDoc, byDocID map[string]*featuremodel.Feature) error {
	if nd.Range != "" {
		r, err := parseRangeText(nd.Range)
		if err != nil {
			return fmt.Errorf("node %q: %w", nd.Feature, err)
		}
		if err := n.SetFeatureRange(r.Lower, r.Upper); err != nil {
			return fmt.Errorf("node %q: %w", nd.Feature, err)
		}
	}
	if len(nd.Groups) > 0 || nd.Ungrouped {
		groups := make([]featuremodel.Group, 0, len(nd.Groups))
		for _, text := range nd.Groups {
			r, err := parseRangeText(text)
			if err != nil {
				return fmt.Errorf("node %q: %w", nd.Feature, err)
			}
			groups = append(groups, featuremodel.Group{Range: r})
		}
		if err := n.SetGroups(groups); err != nil {
			return fmt.Errorf("node %q: %w", nd.Feature, err)
		}
	}
	for i, cd := range nd.Children {
		f, err := docFeature(byDocID, cd.Feature)
		if err != nil {
			return err
		}
		child, err := n.AttachBelow(f, i, cd.Group)
		if err != nil {
			return fmt.Errorf("node %q: %w", cd.Feature, err)
		}
		if err := buildNode(child, cd, byDocID); err != nil {
			return err
		}
	}
	return nil
}

func docFeature(byDocID map[string]*featuremodel.Feature, id string) (*featuremodel.Feature, error) {
	f, ok := byDocID[id]
	if !ok {
		return nil, fmt.Errorf("%w: tree refers to unknown feature id %q", ErrMalformed, id)
	}
	return f, nil
}

func applyAttributes(s *attribute.Store, docs []AttributeDoc) error {
	for _, ad := range docs {
		kind, err := attribute.ParseKind(ad.Kind)
		if err != nil {
			return fmt.Errorf("attribute %q: %w", ad.Key, err)
		}
		v, err := attribute.Coerce(kind, ad.Value)
		if err != nil {
			return fmt.Errorf("attribute %q: %w", ad.Key, err)
		}
		if err := s.SetEntry(attribute.Entry{Key: attribute.ParseKey(ad.Key), Kind: kind, Value: v}); err != nil {
			return fmt.Errorf("attribute %q: %w", ad.Key, err)
		}
	}
	return nil
}

// rangeText renders r as "lower..upper" without brackets.
func rangeText(r featuremodel.Range) string {
	return strings.Trim(r.String(), "[]")
}

func parseRangeText(s string) (featuremodel.Range, error) {
	lo, hi, ok := strings.Cut(strings.Trim(strings.TrimSpace(s), "[]"), "..")
	if !ok {
		return featuremodel.Range{}, fmt.Errorf("%w: %w: range %q", ErrMalformed, featuremodel.ErrInvalidRange, s)
	}
	lower, err := featuremodel.ParseBound(strings.TrimSpace(lo))
	if err != nil {
		return featuremodel.Range{}, err
	}
	if lower == featuremodel.Unbounded {
		return featuremodel.Range{}, fmt.Errorf("%w: lower bound of %q cannot be open", featuremodel.ErrInvalidRange, s)
	}
	upper, err := featuremodel.ParseBound(strings.TrimSpace(hi))
	if err != nil {
		return featuremodel.Range{}, err
	}
	return featuremodel.NewRange(lower, upper)
}
