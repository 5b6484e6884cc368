package clause

import (
	"fmt"
	"strings"
)

// Kind enumerates the primitive value kinds the compiler reasons
// about. There is deliberately no float kind: floating-point values
// break deterministic comparison and are rejected at the definition
// layer, matching the rest of the toolchain.
type Kind int

const (
	// KindInvalid is the zero Kind. Allocating a placeholder with it
	// is a configuration error.
	KindInvalid Kind = iota

	// KindText is a string value. The only kind that can case fold.
	KindText

	// KindInt is a 64-bit integer value.
	KindInt

	// KindBool is a boolean value.
	KindBool

	// KindTime is a timestamp value.
	KindTime

	// KindBlob is an opaque byte-string value.
	KindBlob

	// KindList is a collection value, used by membership operators.
	KindList
)

var kindNames = map[Kind]string{
	KindText: "text",
	KindInt:  "int",
	KindBool: "bool",
	KindTime: "time",
	KindBlob: "blob",
	KindList: "list",
}

// String returns the definition-file spelling of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts a definition-file spelling to a Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("unknown type %q", name)
}

// ValueType is the declared type of a parameter or the runtime type
// of a resolved expression. Elem is only meaningful for KindList and
// names the element kind; a zero Elem means "list of anything".
type ValueType struct {
	Kind Kind
	Elem Kind
}

// Scalar value types.
var (
	Text = ValueType{Kind: KindText}
	Int  = ValueType{Kind: KindInt}
	Bool = ValueType{Kind: KindBool}
	Time = ValueType{Kind: KindTime}
	Blob = ValueType{Kind: KindBlob}
)

// ListOf returns a list type with the given element kind.
func ListOf(elem Kind) ValueType {
	return ValueType{Kind: KindList, Elem: elem}
}

// IsZero reports whether the type is the zero value.
func (t ValueType) IsZero() bool {
	return t.Kind == KindInvalid
}

// String returns the definition-file spelling, e.g. "text" or
// "list<int>".
func (t ValueType) String() string {
	if t.Kind == KindList {
		if t.Elem == KindInvalid {
			return "list"
		}
		return fmt.Sprintf("list<%s>", t.Elem)
	}
	return t.Kind.String()
}

// AssignableTo reports whether a value of type t can satisfy a slot
// declared as want. Kinds must match; a list with a declared element
// kind satisfies a request for any list, and a request for a specific
// element kind is satisfied only by that element kind.
func (t ValueType) AssignableTo(want ValueType) bool {
	if t.Kind != want.Kind {
		return false
	}
	if t.Kind == KindList && want.Elem != KindInvalid && t.Elem != want.Elem {
		return false
	}
	return true
}

// ParseValueType converts a definition-file spelling to a ValueType.
// Accepts scalar kinds, "list", and "list<kind>".
func ParseValueType(name string) (ValueType, error) {
	if name == "list" {
		return ValueType{Kind: KindList}, nil
	}
	if strings.HasPrefix(name, "list<") && strings.HasSuffix(name, ">") {
		elem, err := ParseKind(name[len("list<") : len(name)-1])
		if err != nil {
			return ValueType{}, fmt.Errorf("invalid list type %q: %w", name, err)
		}
		if elem == KindList {
			return ValueType{}, fmt.Errorf("invalid list type %q: nested lists are not supported", name)
		}
		return ListOf(elem), nil
	}
	k, err := ParseKind(name)
	if err != nil {
		return ValueType{}, err
	}
	return ValueType{Kind: k}, nil
}

// Param is one declared parameter slot: an optional name and the type
// the caller will bind. Params are declared in definition order, one
// per value-consuming clause slot.
type Param struct {
	Name string
	Type ValueType
}

// Placeholder is one allocated parameter slot. Ordinal is 1-based
// creation order and is the positional binding contract with the
// caller. Name is carried from the declared Param when the declared
// type was used as-is, and empty when the allocator forced a
// different type.
type Placeholder struct {
	Ordinal int
	Name    string
	Type    ValueType
}

// String renders the placeholder for diagnostics, e.g. "?1(text)".
func (p Placeholder) String() string {
	if p.Name != "" {
		return fmt.Sprintf("?%d(%s %s)", p.Ordinal, p.Name, p.Type)
	}
	return fmt.Sprintf("?%d(%s)", p.Ordinal, p.Type)
}
