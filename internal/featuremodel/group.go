package featuremodel

// GroupKind classifies a group by its cardinality.
type GroupKind int

const (
	GroupAnd GroupKind = iota
	GroupOr
	GroupAlternative
	GroupCardinality
)

// String returns the lowercase name of the kind.
func (k GroupKind) String() string {
	switch k {
	case GroupAnd:
		return "and"
	case GroupOr:
		return "or"
	case GroupAlternative:
		return "alternative"
	default:
		return "cardinality"
	}
}

// Group constrains how many of the children sharing its index may be selected.
type Group struct {
	Range
}

// NewGroup returns a group with a validated range.
func NewGroup(lower, upper int) (Group, error) {
	r, err := NewRange(lower, upper)
	if err != nil {
		return Group{}, err
	}
	return Group{Range: r}, nil
}

// AndGroup is the [0..*] group: every member is decided independently.
func AndGroup() Group { return Group{Range{Lower: 0, Upper: Unbounded}} }

// OrGroup is the [1..*] group: at least one member.
func OrGroup() Group { return Group{Range{Lower: 1, Upper: Unbounded}} }

// AlternativeGroup is the [1..1] group: exactly one member.
func AlternativeGroup() Group { return Group{Range{Lower: 1, Upper: 1}} }

// Kind classifies the group.
func (g Group) Kind() GroupKind {
	switch {
	case g.Lower == 0 && g.Upper == Unbounded:
		return GroupAnd
	case g.Lower == 1 && g.Upper == Unbounded:
		return GroupOr
	case g.Lower == 1 && g.Upper == 1:
		return GroupAlternative
	default:
		return GroupCardinality
	}
}

func (g Group) IsAnd() bool         { return g.Kind() == GroupAnd }
func (g Group) IsOr() bool          { return g.Kind() == GroupOr }
func (g Group) IsAlternative() bool { return g.Kind() == GroupAlternative }
func (g Group) IsCardinality() bool { return g.Kind() == GroupCardinality }
