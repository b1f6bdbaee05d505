// Package value defines the JSON value tree produced by parsing.
// A Value is a tagged sum over the seven JSON shapes; objects preserve
// member insertion order.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

// String returns the JSON type name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInt, KindFloat:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// Value is a decoded JSON node. The zero value is JSON null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	arr  []Value
	obj  *Object
}

// Null returns the JSON null value.
func Null() Value {
	return Value{kind: KindNull}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Int returns an integer number value.
func Int(i int64) Value {
	return Value{kind: KindInt, i: i}
}

// Float returns a floating point number value.
func Float(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Array returns an array value holding the given elements.
func Array(elements []Value) Value {
	if elements == nil {
		elements = []Value{}
	}
	return Value{kind: KindArray, arr: elements}
}

// ObjectOf returns an object value wrapping the given object.
func ObjectOf(obj *Object) Value {
	if obj == nil {
		obj = NewObject()
	}
	return Value{kind: KindObject, obj: obj}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is JSON null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// BoolVal returns the boolean payload. Valid only for KindBool.
func (v Value) BoolVal() bool {
	return v.b
}

// IntVal returns the integer payload. Valid only for KindInt.
func (v Value) IntVal() int64 {
	return v.i
}

// FloatVal returns the float payload. Valid only for KindFloat.
func (v Value) FloatVal() float64 {
	return v.f
}

// StringVal returns the string payload. Valid only for KindString.
func (v Value) StringVal() string {
	return v.s
}

// ArrayVal returns the element slice. Valid only for KindArray.
func (v Value) ArrayVal() []Value {
	return v.arr
}

// ObjectVal returns the ordered object. Valid only for KindObject.
func (v Value) ObjectVal() *Object {
	return v.obj
}

// IsNumber reports whether the value is an integer or float.
func (v Value) IsNumber() bool {
	return v.kind == KindInt || v.kind == KindFloat
}

// AsFloat returns the numeric payload widened to float64.
// Returns false for non-numeric values.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// Len returns the number of children for arrays and objects, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return v.obj.Len()
	}
	return 0
}

// At returns the array element at index i.
// Returns null and false if the value is not an array or i is out of range.
func (v Value) At(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Null(), false
	}
	return v.arr[i], true
}

// Get returns the object member with the given key.
// Returns null and false if the value is not an object or the key is absent.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Null(), false
	}
	return v.obj.Get(key)
}

// Equal reports structural equality. Object member order is ignored;
// integer and float values compare equal when they represent the same number.
func (v Value) Equal(other Value) bool {
	if v.IsNumber() && other.IsNumber() {
		a, _ := v.AsFloat()
		b, _ := other.AsFloat()
		return a == b
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindString:
		return v.s == other.s
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if v.obj.Len() != other.obj.Len() {
			return false
		}
		for _, key := range v.obj.Keys() {
			ov, ok := other.obj.Get(key)
			if !ok {
				return false
			}
			mv, _ := v.obj.Get(key)
			if !mv.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// Interface converts the value into plain Go types: nil, bool, int64,
// float64, string, []interface{} and map[string]interface{}.
// Object member order is lost in the map representation.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindArray:
		out := make([]interface{}, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, v.obj.Len())
		for i := 0; i < v.obj.Len(); i++ {
			k, m := v.obj.At(i)
			out[k] = m.Interface()
		}
		return out
	}
	return nil
}

// String returns a compact JSON-like rendering, useful for debugging.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	case KindArray:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(e.String())
		}
		sb.WriteByte(']')
		return sb.String()
	case KindObject:
		var sb strings.Builder
		sb.WriteByte('{')
		for i := 0; i < v.obj.Len(); i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			k, m := v.obj.At(i)
			sb.WriteString(strconv.Quote(k))
			sb.WriteByte(':')
			sb.WriteString(m.String())
		}
		sb.WriteByte('}')
		return sb.String()
	}
	return fmt.Sprintf("<invalid kind %d>", v.kind)
}
