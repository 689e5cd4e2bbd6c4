package testutil

import (
	"testing"

	"github.com/zjrosen/featmodel/internal/featuremodel"
)

// WithCarModel adds the standard car product line.
//
// Structure:
//
//	Car (abstract, mandatory)
//	  ├── Body (mandatory)
//	  ├── Engine (mandatory, alt)
//	  │     ├── Petrol
//	  │     └── Electric
//	  └── Extras (or)
//	        ├── Radio
//	        └── Navi (hidden)
//
//	Navi implies Electric
func (b *Builder) WithCarModel() *Builder {
	return b.
		WithName("car").
		WithRoot("Car", Abstract(), Mandatory()).
		WithChild("Car", "Body", Mandatory(), Description("the chassis")).
		WithChild("Car", "Engine", Mandatory(), Alternative()).
		WithChild("Engine", "Petrol").
		WithChild("Engine", "Electric").
		WithChild("Car", "Extras", Or()).
		WithChild("Extras", "Radio").
		WithChild("Extras", "Navi", Hidden()).
		WithConstraint("Navi implies Electric")
}

// CarModel builds the standard car product line.
func CarModel(t *testing.T, opts ...featuremodel.Option) *featuremodel.Model {
	t.Helper()
	return NewBuilder(t, opts...).WithCarModel().Build()
}

// WithPhoneModel adds a second product line that differs from the car in
// every section, for diff and storage tests.
//
// Structure:
//
//	Phone (abstract)
//	  ├── Screen (mandatory)
//	  └── Camera [0..2]
//	Accessory (unbound)
//
//	Camera implies Screen
func (b *Builder) WithPhoneModel() *Builder {
	return b.
		WithName("phone").
		WithRoot("Phone", Abstract()).
		WithChild("Phone", "Screen", Mandatory()).
		WithChild("Phone", "Camera", FeatureRange(0, 2)).
		WithFeature("Accessory").
		WithConstraint("Camera implies Screen")
}
