package domain

import "strings"

// KeyValue is one dimension-value pair of a key.
type KeyValue struct {
	ID    string
	Value string
}

// Key is an ordered set of dimension-value pairs. Keys may be shared
// between observations and collections, so every derivation copies;
// a Key is never mutated after construction.
type Key struct {
	values []KeyValue
}

// NewKey builds a key from ordered dimension-value pairs.
func NewKey(pairs ...KeyValue) Key {
	vs := make([]KeyValue, len(pairs))
	copy(vs, pairs)
	return Key{values: vs}
}

// Len returns the number of dimension-value pairs.
func (k Key) Len() int { return len(k.values) }

// Get returns the value for the given dimension id.
func (k Key) Get(id string) (string, bool) {
	for _, kv := range k.values {
		if kv.ID == id {
			return kv.Value, true
		}
	}
	return "", false
}

// Has reports whether the key fixes the given dimension.
func (k Key) Has(id string) bool {
	_, ok := k.Get(id)
	return ok
}

// Values returns a copy of the ordered dimension-value pairs.
func (k Key) Values() []KeyValue {
	out := make([]KeyValue, len(k.values))
	copy(out, k.values)
	return out
}

// WithValue returns a new key with the value for id overridden, or
// appended when the dimension was not fixed. The receiver is left
// untouched.
func (k Key) WithValue(id, value string) Key {
	out := make([]KeyValue, len(k.values), len(k.values)+1)
	copy(out, k.values)
	for i := range out {
		if out[i].ID == id {
			out[i].Value = value
			return Key{values: out}
		}
	}
	out = append(out, KeyValue{ID: id, Value: value})
	return Key{values: out}
}

// Without returns a new key with the given dimension removed.
func (k Key) Without(id string) Key {
	out := make([]KeyValue, 0, len(k.values))
	for _, kv := range k.values {
		if kv.ID != id {
			out = append(out, kv)
		}
	}
	return Key{values: out}
}

// Ordered returns a new key with pairs rearranged into the given
// dimension order. Dimensions absent from the key are skipped;
// dimensions of the key absent from order are dropped.
func (k Key) Ordered(order []string) Key {
	out := make([]KeyValue, 0, len(k.values))
	for _, id := range order {
		if v, ok := k.Get(id); ok {
			out = append(out, KeyValue{ID: id, Value: v})
		}
	}
	return Key{values: out}
}

// Matches reports whether every pair of k is present with an equal
// value in other. Used for group membership: a group key matches the
// observations whose full key agrees on all dimensions the group fixes.
func (k Key) Matches(other Key) bool {
	for _, kv := range k.values {
		v, ok := other.Get(kv.ID)
		if !ok || v != kv.Value {
			return false
		}
	}
	return true
}

// Equal reports whether two keys fix the same dimensions to the same
// values in the same order.
func (k Key) Equal(other Key) bool {
	if len(k.values) != len(other.values) {
		return false
	}
	for i, kv := range k.values {
		if other.values[i] != kv {
			return false
		}
	}
	return true
}

// String renders the key as its "."-joined positional value string.
func (k Key) String() string {
	parts := make([]string, len(k.values))
	for i, kv := range k.values {
		parts[i] = kv.Value
	}
	return strings.Join(parts, ".")
}

// AttributeValue instantiates a DataAttribute: the attribute id it
// names plus the attached value.
type AttributeValue struct {
	ID    string
	Value string
}

// SeriesKey fixes all dimensions except the dimension-at-observation.
type SeriesKey struct {
	Key

	Attributes []AttributeValue
}

// NewSeriesKey builds a series key from ordered pairs.
func NewSeriesKey(pairs ...KeyValue) SeriesKey {
	return SeriesKey{Key: NewKey(pairs...)}
}

// GroupKey fixes a proper subset of dimensions for attribute
// attachment. Construct through NewGroupKey so the free-dimension
// invariant is enforced.
type GroupKey struct {
	Key

	// GroupID is the group definition name (e.g. "Sibling").
	GroupID string

	Attributes []AttributeValue
}

// NewGroupKey builds a group key over a dataset with totalDims
// dimensions and the given dimension-at-observation. The key must
// leave the dimension-at-observation and at least one other dimension
// free: a group fixing all dimensions, or all but one, degenerates to
// a single observation or series and is rejected.
func NewGroupKey(groupID string, totalDims int, dimAtObs string, pairs ...KeyValue) (GroupKey, error) {
	k := NewKey(pairs...)
	if dimAtObs != AllDimensions && k.Has(dimAtObs) {
		return GroupKey{}, KeyValidationError{
			Dimension: dimAtObs,
			Reason:    "group keys may not fix the dimension at observation",
		}
	}
	if free := totalDims - k.Len(); free < 2 {
		return GroupKey{}, KeyValidationError{
			Dimension: dimAtObs,
			Reason:    "group keys must leave the dimension at observation and at least one other dimension free",
		}
	}
	return GroupKey{Key: k, GroupID: groupID}, nil
}
