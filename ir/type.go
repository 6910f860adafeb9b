package ir

import "fmt"

// TypeKind discriminates the type variants.
type TypeKind uint8

const (
	KindInt TypeKind = iota
	KindFloat
	KindPtr
)

// Type describes the shape of a value. Types are immutable after
// construction; compare with Equal, not pointer identity.
type Type struct {
	Elem *Type // pointee, for KindPtr
	Kind TypeKind
	Bits int // scalar width; pointers are PtrBits wide
}

// PtrBits is the width of a pointer on the target.
const PtrBits = 64

// Predefined scalar types.
var (
	I8   = &Type{Kind: KindInt, Bits: 8}
	I16  = &Type{Kind: KindInt, Bits: 16}
	I32  = &Type{Kind: KindInt, Bits: 32}
	I64  = &Type{Kind: KindInt, Bits: 64}
	I128 = &Type{Kind: KindInt, Bits: 128}
	F32  = &Type{Kind: KindFloat, Bits: 32}
	F64  = &Type{Kind: KindFloat, Bits: 64}
)

// PtrTo returns the pointer type to elem.
func PtrTo(elem *Type) *Type {
	return &Type{Kind: KindPtr, Elem: elem, Bits: PtrBits}
}

// Size returns the type's size in bytes.
func (t *Type) Size() int64 {
	return int64(t.Bits / 8)
}

// IsPtr reports whether t is a pointer type.
func (t *Type) IsPtr() bool {
	return t.Kind == KindPtr
}

// Equal reports structural type equality.
func (t *Type) Equal(u *Type) bool {
	if t == u {
		return true
	}
	if t == nil || u == nil {
		return false
	}
	if t.Kind != u.Kind || t.Bits != u.Bits {
		return false
	}
	if t.Kind == KindPtr {
		return t.Elem.Equal(u.Elem)
	}
	return true
}

// Compatible reports whether a value of type t can be reinterpreted as u
// without changing its bit pattern. The types must have the same size,
// and pointers only reinterpret as other pointers: a pointer's bit
// pattern is not observable as an integer or float through a cast.
func Compatible(t, u *Type) bool {
	if t == nil || u == nil {
		return false
	}
	return t.Size() == u.Size() && t.IsPtr() == u.IsPtr()
}

func (t *Type) String() string {
	switch t.Kind {
	case KindInt:
		return fmt.Sprintf("i%d", t.Bits)
	case KindFloat:
		return fmt.Sprintf("f%d", t.Bits)
	case KindPtr:
		return fmt.Sprintf("(ptr %s)", t.Elem)
	}
	return "?"
}
