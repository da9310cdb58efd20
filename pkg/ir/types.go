// Package ir models the language-level intermediate representation of
// a binary's public surface: types, declarations, ELF symbols and
// corpora. The suppression engine only inspects these values, it never
// mutates them.
package ir

// Location is a source position. The zero value means "no location",
// which is meaningful: opaque types not defined in public headers have
// none.
type Location struct {
	Path   string
	Line   int
	Column int
}

// IsSet reports whether the location carries a source path.
func (l Location) IsSet() bool { return l.Path != "" }

// Type is the read-only interface shared by all IR types.
type Type interface {
	// QualifiedName is the fully qualified spelling of the type.
	QualifiedName() string
	// Location is where the type is declared, if known.
	Location() Location
	// SizeInBits is the laid-out size, 0 when unknown.
	SizeInBits() uint64
}

// BasicType is a language builtin such as int or char.
type BasicType struct {
	Name string
	Size uint64
}

func (t *BasicType) QualifiedName() string { return t.Name }
func (t *BasicType) Location() Location    { return Location{} }
func (t *BasicType) SizeInBits() uint64    { return t.Size }

// DataMember is a non-static data member of a class or union. LaidOut
// is false for members without a recorded in-class offset.
type DataMember struct {
	Name         string
	Type         Type
	OffsetInBits uint64
	LaidOut      bool
}

// ClassType is a class or a struct.
type ClassType struct {
	Name            string
	Loc             Location
	Size            uint64
	Struct          bool
	DeclarationOnly bool
	Members         []*DataMember
}

func (t *ClassType) QualifiedName() string { return t.Name }
func (t *ClassType) Location() Location    { return t.Loc }
func (t *ClassType) SizeInBits() uint64    { return t.Size }

// LastLaidOutMember returns the laid-out member with the greatest
// offset, or nil when the class has none.
func (t *ClassType) LastLaidOutMember() *DataMember {
	var last *DataMember
	for _, m := range t.Members {
		if !m.LaidOut {
			continue
		}
		if last == nil || m.OffsetInBits >= last.OffsetInBits {
			last = m
		}
	}
	return last
}

// UnionType is a union.
type UnionType struct {
	Name    string
	Loc     Location
	Size    uint64
	Members []*DataMember
}

func (t *UnionType) QualifiedName() string { return t.Name }
func (t *UnionType) Location() Location    { return t.Loc }
func (t *UnionType) SizeInBits() uint64    { return t.Size }

// Enumerator is a named enum constant.
type Enumerator struct {
	Name  string
	Value int64
}

// EnumType is an enumeration.
type EnumType struct {
	Name        string
	Loc         Location
	Size        uint64
	Enumerators []Enumerator
}

func (t *EnumType) QualifiedName() string { return t.Name }
func (t *EnumType) Location() Location    { return t.Loc }
func (t *EnumType) SizeInBits() uint64    { return t.Size }

// ArrayType is an array of a fixed or unknown element count.
type ArrayType struct {
	Name    string
	Loc     Location
	Size    uint64
	Element Type
}

func (t *ArrayType) QualifiedName() string { return t.Name }
func (t *ArrayType) Location() Location    { return t.Loc }
func (t *ArrayType) SizeInBits() uint64    { return t.Size }

// TypedefType names another type. Its size is the underlying type's.
type TypedefType struct {
	Name       string
	Loc        Location
	Underlying Type
}

func (t *TypedefType) QualifiedName() string { return t.Name }
func (t *TypedefType) Location() Location    { return t.Loc }
func (t *TypedefType) SizeInBits() uint64 {
	if t.Underlying == nil {
		return 0
	}
	return t.Underlying.SizeInBits()
}

// PointerType points at another type.
type PointerType struct {
	Pointee Type
	Size    uint64
}

func (t *PointerType) QualifiedName() string {
	if t.Pointee == nil {
		return "void*"
	}
	return t.Pointee.QualifiedName() + "*"
}
func (t *PointerType) Location() Location { return Location{} }
func (t *PointerType) SizeInBits() uint64 { return t.Size }

// ReferenceType refers to another type.
type ReferenceType struct {
	Referenced Type
	Size       uint64
	RValue     bool
}

func (t *ReferenceType) QualifiedName() string {
	suffix := "&"
	if t.RValue {
		suffix = "&&"
	}
	if t.Referenced == nil {
		return suffix
	}
	return t.Referenced.QualifiedName() + suffix
}
func (t *ReferenceType) Location() Location { return Location{} }
func (t *ReferenceType) SizeInBits() uint64 { return t.Size }

// QualifiedType decorates another type with cv qualifiers.
type QualifiedType struct {
	Underlying Type
	Qualifiers string
}

func (t *QualifiedType) QualifiedName() string {
	if t.Underlying == nil {
		return t.Qualifiers
	}
	return t.Qualifiers + " " + t.Underlying.QualifiedName()
}
func (t *QualifiedType) Location() Location { return Location{} }
func (t *QualifiedType) SizeInBits() uint64 {
	if t.Underlying == nil {
		return 0
	}
	return t.Underlying.SizeInBits()
}

// PeelTypedef removes one level of typedef, returning t unchanged when
// it is not a typedef.
func PeelTypedef(t Type) Type {
	if td, ok := t.(*TypedefType); ok && td.Underlying != nil {
		return td.Underlying
	}
	return t
}

// PeelQualifiers removes any outer qualified-type layers.
func PeelQualifiers(t Type) Type {
	for {
		q, ok := t.(*QualifiedType)
		if !ok || q.Underlying == nil {
			return t
		}
		t = q.Underlying
	}
}
