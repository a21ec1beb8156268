package vm

import "unsafe"

// ObjKind tags the concrete type of a heap Object.
type ObjKind byte

const (
	// ObjStringKind is the only object kind the covered language
	// fragment produces.
	ObjStringKind ObjKind = iota + 1
)

// Object is the header shared by every heap-allocated value. Concrete
// object types (currently only StringObj) embed Object as their first
// field, so a *Object can be reinterpreted as the concrete type once
// its Kind is known — the same header/payload layout a C interpreter
// uses, expressed with an unsafe.Pointer conversion instead of a union.
type Object struct {
	Kind ObjKind
}

// asString reinterprets o as its concrete *StringObj. Callers must
// have already checked o.Kind == ObjStringKind.
func (o *Object) asString() *StringObj {
	return (*StringObj)(unsafe.Pointer(o))
}

// equal implements object equality by dispatching on Kind.
func (o *Object) equal(other *Object) bool {
	if o.Kind != other.Kind {
		return false
	}
	switch o.Kind {
	case ObjStringKind:
		return StructuralEqual(o.asString(), other.asString())
	default:
		return o == other
	}
}

// String renders o for printing.
func (o *Object) String() string {
	switch o.Kind {
	case ObjStringKind:
		return o.asString().Content()
	default:
		return "<object>"
	}
}

// StringObj is a heap-allocated, variable-length, byte-oriented Lumen
// string. It owns its byte storage and carries a hash computed once at
// construction time.
type StringObj struct {
	Object
	Chars []byte
	Hash  uint32
}

// Content returns the string's bytes as a Go string.
func (s *StringObj) Content() string {
	return string(s.Chars)
}

// Len returns the string's byte length.
func (s *StringObj) Len() int {
	return len(s.Chars)
}

// NewStringObj allocates an owned copy of data as a StringObj.
func NewStringObj(data []byte) *StringObj {
	chars := make([]byte, len(data))
	copy(chars, data)
	return &StringObj{
		Object: Object{Kind: ObjStringKind},
		Chars:  chars,
		Hash:   fnv1a(chars),
	}
}

// ConcatStringObj builds a new StringObj from the concatenation of two
// byte slices, per §4/§9's runtime ADD-on-strings behavior.
func ConcatStringObj(a, b []byte) *StringObj {
	chars := make([]byte, len(a)+len(b))
	copy(chars, a)
	copy(chars[len(a):], b)
	return &StringObj{
		Object: Object{Kind: ObjStringKind},
		Chars:  chars,
		Hash:   fnv1a(chars),
	}
}

// fnv1a computes the 32-bit FNV-1a hash of data. Bit-exact per §6:
// h := 0x811c9dc5; for each byte b: h ^= b; h *= 0x01000193.
func fnv1a(data []byte) uint32 {
	h := uint32(0x811c9dc5)
	for _, b := range data {
		h ^= uint32(b)
		h *= 0x01000193
	}
	return h
}

// IsString reports whether v holds a string object.
func (v Value) IsString() bool {
	return v.IsObject() && v.AsObject().Kind == ObjStringKind
}

// AsStringObj returns v's underlying StringObj. Panics if v is not a
// string object.
func (v Value) AsStringObj() *StringObj {
	obj := v.AsObject()
	if obj.Kind != ObjStringKind {
		panic("vm: Value.AsStringObj called on a non-string object")
	}
	return obj.asString()
}

// StringValue wraps s as a Value.
func StringValue(s *StringObj) Value {
	return ObjectValue(&s.Object)
}

// StringPool interns byte sequences to a single canonical *StringObj
// so that structurally-equal strings compare equal by pointer. The
// pool owns every StringObj it interns.
type StringPool struct {
	table *Table
}

// NewStringPool creates an empty pool.
func NewStringPool() *StringPool {
	return &StringPool{table: NewTable(StructuralEqual)}
}

// Intern returns the canonical StringObj for data, allocating and
// storing a new one only the first time this content is seen.
func (p *StringPool) Intern(data []byte) *StringObj {
	probe := &StringObj{Object: Object{Kind: ObjStringKind}, Chars: data, Hash: fnv1a(data)}
	if existing, ok := p.table.findKey(probe); ok {
		return existing
	}
	owned := NewStringObj(data)
	p.table.Set(owned, Nil)
	return owned
}

// Len returns the number of distinct strings interned.
func (p *StringPool) Len() int {
	return p.table.Len()
}
