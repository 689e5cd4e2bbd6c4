package featuremodel

import "github.com/zjrosen/featmodel/internal/attribute"

// Namespace of the attributes the model itself maintains.
const Namespace = "featuremodel"

// Common attributes shared by models, features and constraints.
var (
	NameAttribute        = attribute.New[string](Namespace, "name").WithValidator(attribute.NonEmpty)
	DescriptionAttribute = attribute.New[string](Namespace, "description")
	TagsAttribute        = attribute.New[[]string](Namespace, "tags")
	AbstractAttribute    = attribute.New[bool](Namespace, "abstract").WithDefault(false)
	HiddenAttribute      = attribute.New[bool](Namespace, "hidden").WithDefault(false)
)

// IsReserved reports whether k is maintained by the model. Codecs use it to
// tell common attributes from custom metadata.
func IsReserved(k attribute.Key) bool {
	return k.Namespace == Namespace
}

func mustSet[T attribute.Value](s *attribute.Store, a attribute.Attribute[T], v T) {
	if err := attribute.Set(s, a, v); err != nil {
		panic(err)
	}
}
