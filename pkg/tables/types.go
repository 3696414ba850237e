// Package tables holds the shared, append-only stores every pass reads:
// the literal table, the variable table and the block scope stack.
package tables

import "fmt"

// ScalarKind is a simple type tag
type ScalarKind int

const (
	Unknown ScalarKind = iota
	Int
	Double
	String
	Bool
	Void
	Library
	Namespace
)

var scalarNames = [...]string{
	Unknown:   "unknown",
	Int:       "int",
	Double:    "double",
	String:    "string",
	Bool:      "bool",
	Void:      "void",
	Library:   "library",
	Namespace: "namespace",
}

func (k ScalarKind) String() string {
	if int(k) < len(scalarNames) {
		return scalarNames[k]
	}
	return fmt.Sprintf("ScalarKind(%d)", int(k))
}

// CompoundTag is the outer tag of a (tag, element) type pair
type CompoundTag int

const (
	Pointer CompoundTag = iota
	Reference
	Array
	Function
)

var tagNames = [...]string{
	Pointer:   "pointer",
	Reference: "reference",
	Array:     "array",
	Function:  "function",
}

func (t CompoundTag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return fmt.Sprintf("CompoundTag(%d)", int(t))
}

// Type is either a Scalar or a Compound.
type Type interface {
	isType()
	String() string
}

type Scalar struct{ Kind ScalarKind }

type Compound struct {
	Tag  CompoundTag
	Elem Type
}

func (Scalar) isType()   {}
func (Compound) isType() {}

func (s Scalar) String() string { return s.Kind.String() }

func (c Compound) String() string {
	switch c.Tag {
	case Pointer:
		return c.Elem.String() + "*"
	case Reference:
		return c.Elem.String() + "&"
	case Array:
		return c.Elem.String() + "[]"
	case Function:
		return c.Elem.String() + "()"
	}
	return fmt.Sprintf("%s(%s)", c.Tag, c.Elem)
}

// Predeclared scalar types
var (
	TypeUnknown   Type = Scalar{Unknown}
	TypeInt       Type = Scalar{Int}
	TypeDouble    Type = Scalar{Double}
	TypeString    Type = Scalar{String}
	TypeBool      Type = Scalar{Bool}
	TypeVoid      Type = Scalar{Void}
	TypeLibrary   Type = Scalar{Library}
	TypeNamespace Type = Scalar{Namespace}
)

func NewPointer(elem Type) Type   { return Compound{Tag: Pointer, Elem: elem} }
func NewReference(elem Type) Type { return Compound{Tag: Reference, Elem: elem} }
func NewArray(elem Type) Type     { return Compound{Tag: Array, Elem: elem} }
func NewFunction(ret Type) Type   { return Compound{Tag: Function, Elem: ret} }

// Equal compares two types structurally
func Equal(a, b Type) bool {
	switch x := a.(type) {
	case Scalar:
		y, ok := b.(Scalar)
		return ok && x.Kind == y.Kind
	case Compound:
		y, ok := b.(Compound)
		return ok && x.Tag == y.Tag && Equal(x.Elem, y.Elem)
	}
	return a == nil && b == nil
}

// IsUnknown reports whether t is the forward-slot placeholder
func IsUnknown(t Type) bool {
	s, ok := t.(Scalar)
	return t == nil || (ok && s.Kind == Unknown)
}

// ScalarOf returns the scalar kind of t and whether t is a scalar
func ScalarOf(t Type) (ScalarKind, bool) {
	s, ok := t.(Scalar)
	return s.Kind, ok
}

// CompoundOf returns t as a compound and whether it was one with the given tag
func CompoundOf(t Type, tag CompoundTag) (Compound, bool) {
	c, ok := t.(Compound)
	return c, ok && c.Tag == tag
}

// Deref strips a reference, yielding the referred-to type
func Deref(t Type) Type {
	if c, ok := CompoundOf(t, Reference); ok {
		return c.Elem
	}
	return t
}

// ElementOf returns the element type of an array or pointer
func ElementOf(t Type) (Type, bool) {
	c, ok := Deref(t).(Compound)
	if !ok || (c.Tag != Array && c.Tag != Pointer) {
		return nil, false
	}
	return c.Elem, true
}

// IsFunction reports whether t is a function binding
func IsFunction(t Type) bool {
	_, ok := CompoundOf(t, Function)
	return ok
}

// Is reports whether t, with any reference stripped, is the scalar k
func Is(t Type, k ScalarKind) bool {
	s, ok := ScalarOf(Deref(t))
	return ok && s == k
}
