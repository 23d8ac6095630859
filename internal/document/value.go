// =============================================================================
// EDI JSON Consolidator - Document Values
// =============================================================================
//
// This file defines Value, the tagged variant used to hold a parsed EDI
// document. A Value is one of:
//   - Null
//   - String
//   - Number (kept as its literal source text)
//   - Bool
//   - Object (ordered members, in source order)
//   - Array
//
// Accessors never panic: asking an Array for a member, or a String for its
// elements, simply reports absence.
//
// =============================================================================

package document

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

// String returns the lower-case kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value Value
}

// Value is a node of a parsed document. The zero Value is Null.
type Value struct {
	kind    Kind
	text    string // string contents or number literal
	flag    bool
	members []Member
	elems   []Value
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// Null returns the null value.
func Null() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, text: s} }

// Number returns a number value holding the literal text, e.g. "10.50".
func Number(literal string) Value { return Value{kind: KindNumber, text: literal} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Object returns an object value with members in the given order.
func Object(members ...Member) Value { return Value{kind: KindObject, members: members} }

// Array returns an array value.
func Array(elems ...Value) Value { return Value{kind: KindArray, elems: elems} }

// =============================================================================
// ACCESSORS
// =============================================================================

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsScalar reports whether v is null, a string, a number or a boolean.
func (v Value) IsScalar() bool {
	return v.kind != KindObject && v.kind != KindArray
}

// Text returns the string contents or number literal. It is empty for other kinds.
func (v Value) Text() string {
	if v.kind == KindString || v.kind == KindNumber {
		return v.text
	}
	return ""
}

// Truth returns the boolean held by v, or false for other kinds.
func (v Value) Truth() bool { return v.kind == KindBool && v.flag }

// Members returns the members of an object, or nil.
func (v Value) Members() []Member {
	if v.kind != KindObject {
		return nil
	}
	return v.members
}

// Elems returns the elements of an array, or nil.
func (v Value) Elems() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.elems
}

// Get returns the value stored under key. The second result is false when v is
// not an object or has no such key. Duplicate keys resolve to the last one,
// matching what a map-based decoder would keep.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	for i := len(v.members) - 1; i >= 0; i-- {
		if v.members[i].Key == key {
			return v.members[i].Value, true
		}
	}
	return Value{}, false
}

// equal reports whether two values are structurally identical.
func (v Value) equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.flag == o.flag
	case KindString, KindNumber:
		return v.text == o.text
	case KindObject:
		if len(v.members) != len(o.members) {
			return false
		}
		for i := range v.members {
			if v.members[i].Key != o.members[i].Key || !v.members[i].Value.equal(o.members[i].Value) {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.elems) != len(o.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].equal(o.elems[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// =============================================================================
// RENDERING
// =============================================================================

// CellText renders a scalar for tabular output. Null renders as "", strings as
// themselves, numbers as their literal, booleans as "true"/"false". Objects and
// arrays render as compact JSON.
func (v Value) CellText() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString, KindNumber:
		return v.text
	case KindBool:
		return strconv.FormatBool(v.flag)
	default:
		return v.JSON()
	}
}

// JSON renders v as compact JSON text.
func (v Value) JSON() string {
	var buf bytes.Buffer
	v.writeJSON(&buf)
	return buf.String()
}

func (v Value) writeJSON(buf *bytes.Buffer) {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.flag))
	case KindNumber:
		buf.WriteString(v.text)
	case KindString:
		writeJSONString(buf, v.text)
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			e.writeJSON(buf)
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, m.Key)
			buf.WriteByte(':')
			m.Value.writeJSON(buf)
		}
		buf.WriteByte('}')
	}
}

// writeJSONString quotes s the way encoding/json does, without HTML escaping.
func writeJSONString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	// Encode terminates its output with a newline.
	buf.Truncate(buf.Len() - 1)
}
