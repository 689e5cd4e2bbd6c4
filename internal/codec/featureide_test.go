package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/featmodel/internal/featuremodel"
)

func TestFeatureIDE_Encode(t *testing.T) {
	m := carModel(t)

	got, err := EncodeToString(FeatureIDE{}, m)
	require.NoError(t, err)
	require.Equal(t, `<?xml version="1.0" encoding="UTF-8"?>
<featureModel>
	<properties></properties>
	<struct>
		<and name="Car" abstract="true" mandatory="true">
			<feature name="Body" mandatory="true">
				<description>the chassis</description>
			</feature>
			<alt name="Engine" mandatory="true">
				<feature name="Petrol"></feature>
				<feature name="Electric"></feature>
			</alt>
			<or name="Extras">
				<feature name="Radio"></feature>
				<feature name="Navi" hidden="true"></feature>
			</or>
		</and>
	</struct>
	<constraints>
		<rule>
			<description>navigation needs the big battery</description>
			<imp>
				<var>Navi</var>
				<var>Electric</var>
			</imp>
		</rule>
	</constraints>
</featureModel>
`, got)
}

func TestFeatureIDE_RoundTrip(t *testing.T) {
	m := carModel(t)
	_, err := m.AddConstraintExpr("not (Radio iff Navi) or Petrol and Body")
	require.NoError(t, err)

	text, err := EncodeToString(FeatureIDE{}, m)
	require.NoError(t, err)
	got, err := DecodeString(FeatureIDE{}, text)
	require.NoError(t, err)
	t.Cleanup(got.Close)

	require.Equal(t, describeWithoutName(m), describeWithoutName(got))
}

func TestFeatureIDE_Decode(t *testing.T) {
	const input = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<featureModel>
	<struct>
		<and abstract="true" mandatory="true" name="Root">
			<description>
				the root
			</description>
			<feature name="A"/>
			<or name="B">
				<feature name="C"/>
				<feature name="D"/>
			</or>
		</and>
	</struct>
	<constraints>
		<rule>
			<disj>
				<not><var>A</var></not>
				<conj><var>C</var><var>D</var></conj>
			</disj>
		</rule>
		<rule><eq><var>A</var><var>B</var></eq></rule>
	</constraints>
</featureModel>
`
	m, err := DecodeString(FeatureIDE{}, input)
	require.NoError(t, err)
	t.Cleanup(m.Close)

	require.Len(t, m.Roots(), 1)
	root := m.Roots()[0]
	require.Equal(t, "Root", root.Feature().Name())
	require.Equal(t, "the root", root.Feature().Description())
	require.True(t, root.IsMandatory())

	children := root.Children()
	require.Len(t, children, 2)
	require.True(t, children[0].IsOptional())
	require.True(t, children[1].Groups()[0].IsOr())
	require.Equal(t, 2, children[1].NumberOfChildren())

	var formulas []string
	for _, c := range m.Constraints() {
		formulas = append(formulas, c.Formula().String())
	}
	require.Equal(t, []string{"not A or C and D", "A iff B"}, formulas)
}

func TestFeatureIDE_EncodeUnsupported(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, m *featuremodel.Model)
	}{
		{"second root", func(t *testing.T, m *featuremodel.Model) {
			f, err := m.AddFeature("Other")
			require.NoError(t, err)
			_, err = m.AddTreeRoot(f)
			require.NoError(t, err)
		}},
		{"unbound feature", func(t *testing.T, m *featuremodel.Model) {
			_, err := m.AddFeature("Loose")
			require.NoError(t, err)
		}},
		{"duplicate name", func(t *testing.T, m *featuremodel.Model) {
			f, err := m.AddFeature("Radio")
			require.NoError(t, err)
			_, err = m.Roots()[0].AddChild(f)
			require.NoError(t, err)
		}},
		{"feature range", func(t *testing.T, m *featuremodel.Model) {
			require.NoError(t, m.Roots()[0].Children()[0].SetFeatureRange(0, 4))
		}},
		{"cardinality group", func(t *testing.T, m *featuremodel.Model) {
			require.NoError(t, m.Roots()[0].SetGroupRange(0, 2, 2))
		}},
		{"two groups", func(t *testing.T, m *featuremodel.Model) {
			_, err := m.Roots()[0].AddGroup(featuremodel.OrGroup())
			require.NoError(t, err)
		}},
		{"constant", func(t *testing.T, m *featuremodel.Model) {
			_, err := m.AddConstraintExpr("Radio or false")
			require.NoError(t, err)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := carModel(t)
			tt.mutate(t, m)
			_, err := EncodeToString(FeatureIDE{}, m)
			require.ErrorIs(t, err, ErrUnsupported)
		})
	}
}

func TestFeatureIDE_DecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"not xml", "<featureModel>", ErrMalformed},
		{"no root", "<featureModel><struct/></featureModel>", ErrMalformed},
		{"two roots", `<featureModel><struct><feature name="A"/><feature name="B"/></struct></featureModel>`, ErrMalformed},
		{"unknown element", `<featureModel><struct><xor name="A"/></struct></featureModel>`, ErrMalformed},
		{"empty name", `<featureModel><struct><feature/></struct></featureModel>`, featuremodel.ErrEmptyName},
		{"bad arity", `<featureModel><struct><feature name="A"/></struct><constraints><rule><imp><var>A</var></imp></rule></constraints></featureModel>`, ErrMalformed},
		{"unknown variable", `<featureModel><struct><feature name="A"/></struct><constraints><rule><var>B</var></rule></constraints></featureModel>`, featuremodel.ErrUnknownFeatureReference},
		{"empty rule", `<featureModel><struct><feature name="A"/></struct><constraints><rule/></constraints></featureModel>`, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeString(FeatureIDE{}, tt.input)
			require.ErrorIs(t, err, tt.want)
		})
	}
}
