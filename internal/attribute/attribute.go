// Package attribute implements typed key/value metadata attached to model entities.
//
// An Attribute[T] is a descriptor naming a key and carrying the runtime kind of
// its values. Values live in a Store as a tagged union, so reads never need an
// unchecked cast: Get only succeeds when the stored kind matches the descriptor.
package attribute

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Attribute errors
var (
	ErrTypeMismatch = errors.New("attribute type mismatch")
	ErrInvalidValue = errors.New("invalid attribute value")
	ErrUnknownKind  = errors.New("unknown attribute kind")
)

// Kind is the runtime type tag of an attribute value.
type Kind int

const (
	KindString Kind = iota + 1
	KindBool
	KindInt
	KindFloat
	KindStringSet
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStringSet:
		return "string-set"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{KindString, KindBool, KindInt, KindFloat, KindStringSet} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Value is the set of Go types an attribute may hold.
type Value interface {
	string | bool | int64 | float64 | []string
}

// Key identifies an attribute independent of its value type.
type Key struct {
	Namespace string
	Name      string
}

func (k Key) String() string {
	if k.Namespace == "" {
		return k.Name
	}
	return k.Namespace + ":" + k.Name
}

// Attribute describes one typed attribute.
type Attribute[T Value] struct {
	key          Key
	kind         Kind
	validator    func(T) error
	defaultValue T
	hasDefault   bool
}

// New creates a descriptor for namespace:name holding values of type T.
func New[T Value](namespace, name string) Attribute[T] {
	return Attribute[T]{
		key:  Key{Namespace: namespace, Name: name},
		kind: kindOf[T](),
	}
}

// WithValidator returns a copy of a that rejects values for which fn fails.
func (a Attribute[T]) WithValidator(fn func(T) error) Attribute[T] {
	a.validator = fn
	return a
}

// WithDefault returns a copy of a reporting v when no value is stored.
func (a Attribute[T]) WithDefault(v T) Attribute[T] {
	a.defaultValue = v
	a.hasDefault = true
	return a
}

// Key returns the attribute key.
func (a Attribute[T]) Key() Key {
	return a.key
}

// Kind returns the runtime type tag of the attribute.
func (a Attribute[T]) Kind() Kind {
	return a.kind
}

// Default returns the default value and whether one was declared.
func (a Attribute[T]) Default() (T, bool) {
	return a.defaultValue, a.hasDefault
}

// CheckType reports whether v has the attribute's value type.
func (a Attribute[T]) CheckType(v any) error {
	if _, ok := v.(T); !ok {
		return fmt.Errorf("%w: %s expects %s, got %T", ErrTypeMismatch, a.key, a.kind, v)
	}
	return nil
}

// Validate runs the attribute's validator, if any.
func (a Attribute[T]) Validate(v T) error {
	if a.validator == nil {
		return nil
	}
	if err := a.validator(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, a.key, err)
	}
	return nil
}

func kindOf[T Value]() Kind {
	var zero T
	switch any(zero).(type) {
	case string:
		return KindString
	case bool:
		return KindBool
	case int64:
		return KindInt
	case float64:
		return KindFloat
	case []string:
		return KindStringSet
	}
	return 0
}

// NonEmpty is a validator rejecting empty strings.
func NonEmpty(s string) error {
	if s == "" {
		return errors.New("must not be empty")
	}
	return nil
}

// normalizeSet sorts and deduplicates a string set.
func normalizeSet(values []string) []string {
	out := slices.Clone(values)
	slices.Sort(out)
	return slices.Compact(out)
}

// ParseKey is the inverse of Key.String.
func ParseKey(s string) Key {
	if ns, name, ok := strings.Cut(s, ":"); ok {
		return Key{Namespace: ns, Name: name}
	}
	return Key{Name: s}
}

// Coerce converts a loosely typed value, as produced by generic decoders, to
// the Go type of kind. Integers widen to int64 and float64; sequences of
// strings become []string.
func Coerce(kind Kind, raw any) (any, error) {
	switch kind {
	case KindString:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	case KindBool:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
	case KindInt:
		switch n := raw.(type) {
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		case uint64:
			if n <= math.MaxInt64 {
				return int64(n), nil
			}
		}
	case KindFloat:
		switch n := raw.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
	case KindStringSet:
		switch v := raw.(type) {
		case []string:
			return normalizeSet(v), nil
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("%w: %s element %v is %T", ErrTypeMismatch, kind, item, item)
				}
				out = append(out, s)
			}
			return normalizeSet(out), nil
		case nil:
			return []string{}, nil
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
	return nil, fmt.Errorf("%w: %s cannot hold %T", ErrTypeMismatch, kind, raw)
}
