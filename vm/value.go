package vm

import (
	"fmt"
	"reflect"
	"strconv"
)

// ---------------------------------------------------------------------------
// Value: runtime values on the operand stack
// ---------------------------------------------------------------------------

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindString
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Value is a script value: a 32-bit int, a string, a borrowed host object
// reference, or null. The zero Value is Null.
type Value struct {
	kind Kind
	i    int32
	s    string
	obj  any
}

// Null is the value of void calls and absent host references.
var Null = Value{}

// Int returns an int value.
func Int(n int32) Value {
	return Value{kind: KindInt, i: n}
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Object wraps a host object. A nil object yields Null.
func Object(o any) Value {
	if o == nil {
		return Null
	}
	return Value{kind: KindObject, obj: o}
}

// ObjectOf wraps a typed host reference, mapping its zero value (a nil
// pointer) to Null.
func ObjectOf[T comparable](o T) Value {
	var zero T
	if o == zero {
		return Null
	}
	return Value{kind: KindObject, obj: o}
}

// FromIntPtr converts a nullable Go integer to a Value.
func FromIntPtr[T ~int | ~int8 | ~int16 | ~int32 | ~int64](p *T) Value {
	if p == nil {
		return Null
	}
	return Int(int32(*p))
}

// IntPtr converts an int-or-null Value to a nullable Go integer.
func IntPtr[T ~int | ~int8 | ~int16 | ~int32 | ~int64](v Value) *T {
	if v.kind != KindInt {
		return nil
	}
	n := T(v.i)
	return &n
}

// ObjectAs returns the host object held by v as T, or T's zero value.
func ObjectAs[T any](v Value) T {
	t, _ := v.obj.(T)
	return t
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Int returns the int payload (0 for non-int values).
func (v Value) Int() int32 { return v.i }

// Str returns the string payload ("" for non-string values).
func (v Value) Str() string { return v.s }

// Object returns the host object payload (nil for non-object values).
func (v Value) Object() any { return v.obj }

// AsInt returns the int payload and whether v is an int.
func (v Value) AsInt() (int32, bool) {
	return v.i, v.kind == KindInt
}

// String renders the value's natural form: ints in decimal, strings
// verbatim, null as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(int64(v.i), 10)
	case KindString:
		return v.s
	case KindObject:
		if s, ok := v.obj.(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprintf("%T", v.obj)
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and payload.
// Objects compare by identity; host objects of an incomparable Go type
// (maps, slices, funcs) are never equal.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == other.i
	case KindString:
		return v.s == other.s
	case KindObject:
		return objectsEqual(v.obj, other.obj)
	default:
		return true
	}
}

func objectsEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
