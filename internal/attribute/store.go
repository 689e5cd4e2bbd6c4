package attribute

import (
	"fmt"
	"slices"
)

// value is the tagged union stored per key.
type value struct {
	kind Kind
	str  string
	b    bool
	i    int64
	f    float64
	set  []string
}

func wrap[T Value](kind Kind, v T) value {
	out := value{kind: kind}
	switch x := any(v).(type) {
	case string:
		out.str = x
	case bool:
		out.b = x
	case int64:
		out.i = x
	case float64:
		out.f = x
	case []string:
		out.set = normalizeSet(x)
	}
	return out
}

func (v value) unwrap() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindStringSet:
		return slices.Clone(v.set)
	}
	return nil
}

// Entry is an untyped view of one stored attribute, used by codecs.
type Entry struct {
	Key   Key
	Kind  Kind
	Value any
}

// Store holds attribute values in insertion order.
// The zero value is not usable; call NewStore.
type Store struct {
	values map[Key]value
	order  []Key
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{values: make(map[Key]value)}
}

// Set stores v under a after type checking and validation.
// A key already holding a value of a different kind is rejected.
func Set[T Value](s *Store, a Attribute[T], v T) error {
	if existing, ok := s.values[a.key]; ok && existing.kind != a.kind {
		return fmt.Errorf("%w: %s holds %s, cannot store %s", ErrTypeMismatch, a.key, existing.kind, a.kind)
	}
	if err := a.Validate(v); err != nil {
		return err
	}
	s.put(a.key, wrap(a.kind, v))
	return nil
}

// Get returns the stored value of a. A missing value or a value of another
// kind reports false.
func Get[T Value](s *Store, a Attribute[T]) (T, bool) {
	var zero T
	stored, ok := s.values[a.key]
	if !ok || stored.kind != a.kind {
		return zero, false
	}
	v, ok := stored.unwrap().(T)
	return v, ok
}

// ValueOf returns the stored value of a, falling back to its default.
func ValueOf[T Value](s *Store, a Attribute[T]) T {
	if v, ok := Get(s, a); ok {
		return v
	}
	return a.defaultValue
}

// Remove deletes a and returns the value it held.
func Remove[T Value](s *Store, a Attribute[T]) (T, bool) {
	v, ok := Get(s, a)
	if !ok {
		return v, false
	}
	s.delete(a.key)
	return v, true
}

// Has reports whether any value is stored under k.
func (s *Store) Has(k Key) bool {
	_, ok := s.values[k]
	return ok
}

// Len returns the number of stored attributes.
func (s *Store) Len() int {
	return len(s.order)
}

// Keys returns stored keys in insertion order.
func (s *Store) Keys() []Key {
	return slices.Clone(s.order)
}

// Entries returns every stored value in insertion order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, k := range s.order {
		v := s.values[k]
		out = append(out, Entry{Key: k, Kind: v.kind, Value: v.unwrap()})
	}
	return out
}

// SetEntry stores an untyped entry after checking its dynamic type against
// its kind. Validators of typed descriptors are not consulted.
func (s *Store) SetEntry(e Entry) error {
	var v value
	switch e.Kind {
	case KindString:
		x, ok := e.Value.(string)
		if !ok {
			return entryMismatch(e)
		}
		v = wrap(e.Kind, x)
	case KindBool:
		x, ok := e.Value.(bool)
		if !ok {
			return entryMismatch(e)
		}
		v = wrap(e.Kind, x)
	case KindInt:
		x, ok := e.Value.(int64)
		if !ok {
			return entryMismatch(e)
		}
		v = wrap(e.Kind, x)
	case KindFloat:
		x, ok := e.Value.(float64)
		if !ok {
			return entryMismatch(e)
		}
		v = wrap(e.Kind, x)
	case KindStringSet:
		x, ok := e.Value.([]string)
		if !ok {
			return entryMismatch(e)
		}
		v = wrap(e.Kind, x)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownKind, e.Kind)
	}
	if existing, ok := s.values[e.Key]; ok && existing.kind != e.Kind {
		return fmt.Errorf("%w: %s holds %s, cannot store %s", ErrTypeMismatch, e.Key, existing.kind, e.Kind)
	}
	s.put(e.Key, v)
	return nil
}

// Clone returns an independent copy of the store.
func (s *Store) Clone() *Store {
	out := NewStore()
	for _, k := range s.order {
		v := s.values[k]
		v.set = slices.Clone(v.set)
		out.put(k, v)
	}
	return out
}

func (s *Store) put(k Key, v value) {
	if _, ok := s.values[k]; !ok {
		s.order = append(s.order, k)
	}
	s.values[k] = v
}

func (s *Store) delete(k Key) {
	delete(s.values, k)
	s.order = slices.DeleteFunc(s.order, func(other Key) bool { return other == k })
}

func entryMismatch(e Entry) error {
	return fmt.Errorf("%w: %s expects %s, got %T", ErrTypeMismatch, e.Key, e.Kind, e.Value)
}
