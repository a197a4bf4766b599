package remix

import (
	"encoding/json"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindMapping
	KindSequence
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	case KindUnknown:
		return "unknown"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a decoded node. The concrete type is one of Mapping, Sequence,
// String, Number, Bool, Null or Unknown; no other package can add variants.
type Value interface {
	Kind() Kind
	value()
}

// Null is an explicit null, produced by the -5 sentinel or a JSON null entry.
type Null struct{}

func (Null) Kind() Kind { return KindNull }
func (Null) value()     {}

// MarshalJSON implements json.Marshaler.
func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// String is a JSON string scalar.
type String string

func (String) Kind() Kind { return KindString }
func (String) value()     {}

// Number holds the literal text of a JSON number so no precision is lost.
type Number string

func (Number) Kind() Kind { return KindNumber }
func (Number) value()     {}

// Int64 returns the number as an integer.
func (n Number) Int64() (int64, error) { return strconv.ParseInt(string(n), 10, 64) }

// Float64 returns the number as a float.
func (n Number) Float64() (float64, error) { return strconv.ParseFloat(string(n), 64) }

// IsInteger reports whether the literal has no fraction or exponent.
func (n Number) IsInteger() bool {
	return n != "" && !strings.ContainsAny(string(n), ".eE")
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) { return []byte(n), nil }

// Bool is a JSON boolean scalar.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (Bool) value()     {}

// Unknown stands in for a negative node index whose meaning is not known.
// Index is the raw index found in the payload.
type Unknown struct {
	Index int
}

func (Unknown) Kind() Kind { return KindUnknown }
func (Unknown) value()     {}

// MarshalJSON implements json.Marshaler.
func (u Unknown) MarshalJSON() ([]byte, error) {
	return []byte(`{"unknownNode":` + strconv.Itoa(u.Index) + `}`), nil
}

// Sequence is an ordered list of values.
type Sequence []Value

func (Sequence) Kind() Kind { return KindSequence }
func (Sequence) value()     {}

// MarshalJSON implements json.Marshaler. A nil sequence encodes as [].
func (s Sequence) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Value(s))
}

// Mapping is an ordered set of named values. Field order is the order in
// which names appeared in the payload.
type Mapping struct {
	fields *orderedmap.OrderedMap[string, Value]
}

// NewMapping returns an empty Mapping.
func NewMapping() Mapping {
	return Mapping{fields: orderedmap.New[string, Value]()}
}

func (Mapping) Kind() Kind { return KindMapping }
func (Mapping) value()     {}

// Set stores v under name. An existing name keeps its original position.
func (m Mapping) Set(name string, v Value) {
	m.fields.Set(name, v)
}

// Get returns the value stored under name.
func (m Mapping) Get(name string) (Value, bool) {
	if m.fields == nil {
		return nil, false
	}
	return m.fields.Get(name)
}

// Len returns the number of fields.
func (m Mapping) Len() int {
	if m.fields == nil {
		return 0
	}
	return m.fields.Len()
}

// Keys returns field names in payload order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, m.Len())
	m.Each(func(name string, _ Value) bool {
		keys = append(keys, name)
		return true
	})
	return keys
}

// Each calls fn for every field in order until fn returns false.
func (m Mapping) Each(fn func(name string, v Value) bool) {
	if m.fields == nil {
		return
	}
	for pair := m.fields.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// MarshalJSON implements json.Marshaler, keeping field order.
func (m Mapping) MarshalJSON() ([]byte, error) {
	if m.fields == nil {
		return []byte("{}"), nil
	}
	return m.fields.MarshalJSON()
}

// Native converts v into plain Go values: map[string]any, []any, string,
// int64 or float64, bool and nil. Unknown becomes {"unknownNode": index}.
// Field order is lost; use Mapping.Keys when order matters.
func Native(v Value) any {
	switch t := v.(type) {
	case nil, Null:
		return nil
	case String:
		return string(t)
	case Number:
		if t.IsInteger() {
			if i, err := t.Int64(); err == nil {
				return i
			}
		}
		f, _ := t.Float64()
		return f
	case Bool:
		return bool(t)
	case Unknown:
		return map[string]any{"unknownNode": int64(t.Index)}
	case Sequence:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Native(item)
		}
		return out
	case Mapping:
		out := make(map[string]any, t.Len())
		t.Each(func(name string, item Value) bool {
			out[name] = Native(item)
			return true
		})
		return out
	default:
		return nil
	}
}

// Equal reports whether a and b hold the same structure, including field order.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch at := a.(type) {
	case Sequence:
		bt := b.(Sequence)
		if len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !Equal(at[i], bt[i]) {
				return false
			}
		}
		return true
	case Mapping:
		bt := b.(Mapping)
		if at.Len() != bt.Len() {
			return false
		}
		ak, bk := at.Keys(), bt.Keys()
		for i := range ak {
			if ak[i] != bk[i] {
				return false
			}
			av, _ := at.Get(ak[i])
			bv, _ := bt.Get(bk[i])
			if !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
