// Package value implements the polymorphic runtime Value representation
// (C1) and its arithmetic rules, unifying scalars, strings, and
// reference-counted audio buffers.
package value

import (
	"fmt"
	"strconv"

	"github.com/ryanjeffares/ral-go/internal/audiobuffer"
)

// Type is the closed enumeration of score-language variable types.
type Type int

const (
	Int Type = iota
	Float
	String
	Audio
)

func (t Type) String() string {
	switch t {
	case Int:
		return "Int"
	case Float:
		return "Float"
	case String:
		return "String"
	case Audio:
		return "Audio"
	default:
		return "<invalid type>"
	}
}

// Value is a tagged union of Int, Float, String, and Audio. The zero value
// is Int(0), matching the language's documented default.
type Value struct {
	typ   Type
	i     int64
	f     float32
	s     string
	audio *audiobuffer.Buffer
}

// NewInt constructs an Int-typed Value.
func NewInt(v int64) Value { return Value{typ: Int, i: v} }

// NewFloat constructs a Float-typed Value.
func NewFloat(v float32) Value { return Value{typ: Float, f: v} }

// NewString constructs a String-typed Value.
func NewString(v string) Value { return Value{typ: String, s: v} }

// NewAudio constructs an Audio-typed Value wrapping a shared buffer handle.
// buf is retained (its reference count incremented).
func NewAudio(buf *audiobuffer.Buffer) Value {
	buf.Retain()
	return Value{typ: Audio, audio: buf}
}

// Type reports the Value's tag.
func (v Value) Type() Type { return v.typ }

// GetInt returns the wrapped int64. It is a programmer error to call this on
// a non-Int Value.
func (v Value) GetInt() int64 {
	if v.typ != Int {
		panic(fmt.Sprintf("value: GetInt called on %s value", v.typ))
	}
	return v.i
}

// GetFloat returns the wrapped float32. It is a programmer error to call
// this on a non-Float Value.
func (v Value) GetFloat() float32 {
	if v.typ != Float {
		panic(fmt.Sprintf("value: GetFloat called on %s value", v.typ))
	}
	return v.f
}

// GetString returns the wrapped string. It is a programmer error to call
// this on a non-String Value.
func (v Value) GetString() string {
	if v.typ != String {
		panic(fmt.Sprintf("value: GetString called on %s value", v.typ))
	}
	return v.s
}

// GetAudio returns the wrapped buffer handle. It is a programmer error to
// call this on a non-Audio Value.
func (v Value) GetAudio() *audiobuffer.Buffer {
	if v.typ != Audio {
		panic(fmt.Sprintf("value: GetAudio called on %s value", v.typ))
	}
	return v.audio
}

// Release drops this Value's reference to its Audio buffer, if any. No-op
// for other types. Call when a Value goes out of scope (e.g. a member or
// local slot is overwritten).
func (v Value) Release() {
	if v.typ == Audio && v.audio != nil {
		v.audio.Release()
	}
}

// Default returns the type-default Value for t, used to initialise member
// and local storage.
func Default(t Type) Value {
	switch t {
	case Int:
		return NewInt(0)
	case Float:
		return NewFloat(0)
	case String:
		return NewString("")
	case Audio:
		return Value{typ: Audio, audio: nil}
	default:
		panic("value: Default called with invalid type")
	}
}

// ResultType computes the static result type of a binary operator applied
// to operands of type a and b, per the language's type-compatibility
// table. ok is false if the combination is not legal for arithmetic.
func ResultType(a, b Type) (result Type, ok bool) {
	if a == String && b == String {
		return String, true
	}
	numeric := func(t Type) bool { return t == Int || t == Float }
	switch {
	case a == Audio && (b == Audio || numeric(b)):
		return Audio, true
	case b == Audio && numeric(a):
		return Audio, true
	case numeric(a) && numeric(b):
		if a == Float || b == Float {
			return Float, true
		}
		return Int, true
	default:
		return 0, false
	}
}

// Add evaluates a + b. It is a programmer error to call this on a type
// combination the compiler should already have rejected.
func Add(a, b Value) Value { return arith(a, b, '+') }

// Subtract evaluates a - b.
func Subtract(a, b Value) Value { return arith(a, b, '-') }

// Multiply evaluates a * b.
func Multiply(a, b Value) Value { return arith(a, b, '*') }

// Divide evaluates a / b.
func Divide(a, b Value) Value { return arith(a, b, '/') }

func arith(a, b Value, op byte) Value {
	resultType, ok := ResultType(a.typ, b.typ)
	if !ok {
		panic(fmt.Sprintf("value: operator %c not defined for %s and %s", op, a.typ, b.typ))
	}

	if resultType == String {
		if op != '+' {
			panic("value: only + is defined for String")
		}
		return NewString(a.s + b.s)
	}

	if resultType == Audio {
		return arithAudio(a, b, op)
	}

	if resultType == Float {
		af := toFloat(a)
		bf := toFloat(b)
		return NewFloat(floatOp(af, bf, op))
	}

	return NewInt(intOp(a.GetInt(), b.GetInt(), op))
}

func toFloat(v Value) float32 {
	switch v.typ {
	case Float:
		return v.f
	case Int:
		return float32(v.i)
	default:
		panic(fmt.Sprintf("value: cannot coerce %s to Float", v.typ))
	}
}

func toScalar(v Value) float32 {
	switch v.typ {
	case Int, Float:
		return toFloat(v)
	default:
		panic(fmt.Sprintf("value: cannot coerce %s to scalar", v.typ))
	}
}

func floatOp(a, b float32, op byte) float32 {
	switch op {
	case '+':
		return a + b
	case '-':
		return a - b
	case '*':
		return a * b
	case '/':
		return a / b
	default:
		panic("value: unknown operator")
	}
}

func intOp(a, b int64, op byte) int64 {
	switch op {
	case '+':
		return a + b
	case '-':
		return a - b
	case '*':
		return a * b
	case '/':
		return a / b
	default:
		panic("value: unknown operator")
	}
}

// arithAudio implements the Audio arithmetic clone-then-mutate rule: the
// operator never mutates an operand's buffer in place, since it may be
// aliased by other live Values.
func arithAudio(a, b Value, op byte) Value {
	switch {
	case a.typ == Audio && b.typ == Audio:
		clone := a.audio.Clone()
		switch op {
		case '+':
			clone.Add(b.audio)
		case '-':
			clone.Subtract(b.audio)
		case '*':
			clone.Multiply(b.audio)
		case '/':
			clone.Divide(b.audio)
		}
		result := NewAudio(clone)
		clone.Release()
		return result
	case a.typ == Audio:
		scalar := toScalar(b)
		clone := a.audio.Clone()
		applyScalar(clone, scalar, op, false)
		result := NewAudio(clone)
		clone.Release()
		return result
	default:
		scalar := toScalar(a)
		clone := b.audio.Clone()
		applyScalar(clone, scalar, op, true)
		result := NewAudio(clone)
		clone.Release()
		return result
	}
}

func applyScalar(buf *audiobuffer.Buffer, scalar float32, op byte, scalarIsLeft bool) {
	switch op {
	case '+':
		buf.AddScalar(scalar)
	case '*':
		buf.Gain(scalar)
	case '-':
		if scalarIsLeft {
			buf.Negate()
			buf.AddScalar(scalar)
		} else {
			buf.AddScalar(-scalar)
		}
	case '/':
		if scalarIsLeft {
			buf.ReciprocalThenScale(scalar)
		} else {
			buf.Gain(1 / scalar)
		}
	}
}

// Format renders v for print/println statements. Int/Float/String have a
// defined textual form; Audio's format is left unspecified by the language
// (see spec §9) — this is a deliberate filler, not a guarantee.
func (v Value) Format() string {
	switch v.typ {
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(float64(v.f), 'g', -1, 32)
	case String:
		return v.s
	case Audio:
		if v.audio == nil {
			return "audio<nil>"
		}
		return fmt.Sprintf("audio<channels=%d frames=%d>", v.audio.Channels(), v.audio.Frames())
	default:
		return "<invalid value>"
	}
}
