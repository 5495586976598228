package models

import (
	"encoding/json"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is a parsed JSON value. Objects keep their keys in first-seen order;
// a repeated key keeps its original position and takes the latest value.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Number json.Number
	Str    string
	Array  []*Value
	Object *orderedmap.OrderedMap[string, *Value]
}

// NewObject returns an empty object value.
func NewObject() *Value {
	return &Value{Kind: KindObject, Object: orderedmap.New[string, *Value]()}
}

// NewArray returns an array value holding elems.
func NewArray(elems ...*Value) *Value {
	return &Value{Kind: KindArray, Array: elems}
}

// NewNull returns a JSON null.
func NewNull() *Value { return &Value{Kind: KindNull} }

// NewBool returns a JSON boolean.
func NewBool(b bool) *Value { return &Value{Kind: KindBool, Bool: b} }

// NewNumber returns a JSON number with the given literal text.
func NewNumber(n string) *Value { return &Value{Kind: KindNumber, Number: json.Number(n)} }

// NewString returns a JSON string.
func NewString(s string) *Value { return &Value{Kind: KindString, Str: s} }

// Set stores val under key. It is a no-op for non-object values.
func (v *Value) Set(key string, val *Value) {
	if v == nil || v.Kind != KindObject {
		return
	}
	v.Object.Set(key, val)
}

// Get returns the value stored under key.
func (v *Value) Get(key string) (*Value, bool) {
	if v == nil || v.Kind != KindObject {
		return nil, false
	}
	return v.Object.Get(key)
}

// Keys returns the object's keys in encounter order.
func (v *Value) Keys() []string {
	if v == nil || v.Kind != KindObject {
		return nil
	}
	keys := make([]string, 0, v.Object.Len())
	for pair := v.Object.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Len returns the number of object keys or array elements.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.Kind {
	case KindObject:
		return v.Object.Len()
	case KindArray:
		return len(v.Array)
	}
	return 0
}

// IsInteger reports whether a number literal has no fraction or exponent.
func (v *Value) IsInteger() bool {
	if v == nil || v.Kind != KindNumber {
		return false
	}
	return !strings.ContainsAny(string(v.Number), ".eE")
}

// IntermediateRepresentation is the parsed document handed to the analyzer.
type IntermediateRepresentation struct {
	Root *Value
}
