// Package valuetree provides a loosely-typed JSON value graph and a
// shape-driven search over it, for payloads whose structural path is not
// stable across versions of the producing site.
package valuetree

import (
	"sort"

	json "github.com/goccy/go-json"
)

// Kind tags the variant held by a Value
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return "null"
}

// Value is one node of a decoded JSON document. The zero Value is Null.
// Object fields are kept sorted by name so traversal order is deterministic.
type Value struct {
	kind   Kind
	b      bool
	n      float64
	s      string
	items  []Value
	keys   []string
	fields map[string]Value
}

// Parse decodes a JSON document into a Value
func Parse(data []byte) (Value, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Value{}, err
	}
	return FromAny(raw), nil
}

// FromAny converts the output of a generic JSON decode (maps, slices,
// float64, string, bool, nil) into a Value. Unknown types become Null.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{}
	case bool:
		return Value{kind: Bool, b: t}
	case float64:
		return Value{kind: Number, n: t}
	case int:
		return Value{kind: Number, n: float64(t)}
	case int64:
		return Value{kind: Number, n: float64(t)}
	case json.Number:
		f, _ := t.Float64()
		return Value{kind: Number, n: f}
	case string:
		return Value{kind: String, s: t}
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = FromAny(e)
		}
		return Value{kind: Array, items: items}
	case map[string]any:
		keys := make([]string, 0, len(t))
		fields := make(map[string]Value, len(t))
		for k, e := range t {
			keys = append(keys, k)
			fields[k] = FromAny(e)
		}
		sort.Strings(keys)
		return Value{kind: Object, keys: keys, fields: fields}
	}
	return Value{}
}

// Kind returns the variant tag
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool   { return v.kind == Null }
func (v Value) IsObject() bool { return v.kind == Object }
func (v Value) IsArray() bool  { return v.kind == Array }

// Field returns the named field of an object
func (v Value) Field(name string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	f, ok := v.fields[name]
	return f, ok
}

// Has reports whether an object has the named field, whatever its value
func (v Value) Has(name string) bool {
	_, ok := v.Field(name)
	return ok
}

// Get walks a chain of object fields, returning Null when any link is missing
func (v Value) Get(path ...string) Value {
	cur := v
	for _, name := range path {
		next, ok := cur.Field(name)
		if !ok {
			return Value{}
		}
		cur = next
	}
	return cur
}

// Keys returns object field names in sorted order
func (v Value) Keys() []string { return v.keys }

// Items returns array elements (nil for non-arrays)
func (v Value) Items() []Value { return v.items }

// Index returns the i-th array element, or Null when out of range
func (v Value) Index(i int) Value {
	if v.kind != Array || i < 0 || i >= len(v.items) {
		return Value{}
	}
	return v.items[i]
}

// Str returns the string payload, or "" for non-strings
func (v Value) Str() string {
	if v.kind != String {
		return ""
	}
	return v.s
}

// Float returns the numeric payload, or 0 for non-numbers
func (v Value) Float() float64 {
	if v.kind != Number {
		return 0
	}
	return v.n
}

// Int returns the numeric payload truncated to int64, or 0 for non-numbers
func (v Value) Int() int64 {
	return int64(v.Float())
}

// Bool returns the boolean payload, or false for non-bools
func (v Value) Bool() bool {
	return v.kind == Bool && v.b
}

// Interface converts the Value back into plain Go values
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		return v.n
	case String:
		return v.s
	case Array:
		out := make([]any, len(v.items))
		for i, e := range v.items {
			out[i] = e.Interface()
		}
		return out
	case Object:
		out := make(map[string]any, len(v.fields))
		for k, e := range v.fields {
			out[k] = e.Interface()
		}
		return out
	}
	return nil
}
