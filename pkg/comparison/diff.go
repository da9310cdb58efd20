// Package comparison models the nodes of an ABI comparison graph.
// Each node pairs a first and a second IR subject; the suppression
// engine dispatches on the node kind and never mutates a node.
package comparison

import "github.com/abi-scope/abiscope/pkg/ir"

// Context is the ambient state of one comparison: the two corpora
// whose file paths and SONAMEs binary-scoped suppressions test.
type Context struct {
	First  *ir.Corpus
	Second *ir.Corpus
}

// Diff is one node of the comparison graph.
type Diff interface {
	isDiff()
}

// TypeDiff is a diff node whose two subjects are types.
type TypeDiff interface {
	Diff
	FirstType() ir.Type
	SecondType() ir.Type
}

// AsTypeDiff returns d as a TypeDiff when it is one. It tolerates a
// nil input.
func AsTypeDiff(d Diff) (TypeDiff, bool) {
	td, ok := d.(TypeDiff)
	return td, ok && td != nil
}

// BasicTypeDiff is a change between two types of the same kind with no
// finer-grained structure of its own.
type BasicTypeDiff struct {
	First  ir.Type
	Second ir.Type
}

func (*BasicTypeDiff) isDiff()               {}
func (d *BasicTypeDiff) FirstType() ir.Type  { return d.First }
func (d *BasicTypeDiff) SecondType() ir.Type { return d.Second }

// DistinctDiff is a change between two IR subjects of incomparable
// kinds. It deliberately is not a TypeDiff.
type DistinctDiff struct {
	First  ir.Type
	Second ir.Type
}

func (*DistinctDiff) isDiff() {}

// ClassDiff is a change between two class types.
type ClassDiff struct {
	First  *ir.ClassType
	Second *ir.ClassType

	DeletedMembers  map[string]*ir.DataMember
	InsertedMembers map[string]*ir.DataMember
}

func (*ClassDiff) isDiff() {}
func (d *ClassDiff) FirstType() ir.Type {
	if d.First == nil {
		return nil
	}
	return d.First
}

func (d *ClassDiff) SecondType() ir.Type {
	if d.Second == nil {
		return nil
	}
	return d.Second
}

// NewClassDiff builds a class diff, deriving the deleted and inserted
// data-member maps from the two member lists.
func NewClassDiff(first, second *ir.ClassType) *ClassDiff {
	d := &ClassDiff{
		First:           first,
		Second:          second,
		DeletedMembers:  map[string]*ir.DataMember{},
		InsertedMembers: map[string]*ir.DataMember{},
	}
	firstByName := map[string]*ir.DataMember{}
	for _, m := range first.Members {
		firstByName[m.Name] = m
	}
	secondByName := map[string]*ir.DataMember{}
	for _, m := range second.Members {
		secondByName[m.Name] = m
	}
	for name, m := range firstByName {
		if _, ok := secondByName[name]; !ok {
			d.DeletedMembers[name] = m
		}
	}
	for name, m := range secondByName {
		if _, ok := firstByName[name]; !ok {
			d.InsertedMembers[name] = m
		}
	}
	return d
}

// EnumeratorChange pairs the first and second value of an enumerator
// that changed.
type EnumeratorChange struct {
	Old ir.Enumerator
	New ir.Enumerator
}

// EnumDiff is a change between two enumerations.
type EnumDiff struct {
	First  *ir.EnumType
	Second *ir.EnumType

	DeletedEnumerators  map[string]ir.Enumerator
	InsertedEnumerators map[string]ir.Enumerator
	ChangedEnumerators  map[string]EnumeratorChange
}

func (*EnumDiff) isDiff() {}
func (d *EnumDiff) FirstType() ir.Type {
	if d.First == nil {
		return nil
	}
	return d.First
}

func (d *EnumDiff) SecondType() ir.Type {
	if d.Second == nil {
		return nil
	}
	return d.Second
}

// NewEnumDiff builds an enum diff, deriving the deleted, inserted and
// changed enumerator maps from the two enumerator lists.
func NewEnumDiff(first, second *ir.EnumType) *EnumDiff {
	d := &EnumDiff{
		First:               first,
		Second:              second,
		DeletedEnumerators:  map[string]ir.Enumerator{},
		InsertedEnumerators: map[string]ir.Enumerator{},
		ChangedEnumerators:  map[string]EnumeratorChange{},
	}
	firstByName := map[string]ir.Enumerator{}
	for _, e := range first.Enumerators {
		firstByName[e.Name] = e
	}
	for _, e := range second.Enumerators {
		old, ok := firstByName[e.Name]
		switch {
		case !ok:
			d.InsertedEnumerators[e.Name] = e
		case old.Value != e.Value:
			d.ChangedEnumerators[e.Name] = EnumeratorChange{Old: old, New: e}
		}
	}
	secondByName := map[string]ir.Enumerator{}
	for _, e := range second.Enumerators {
		secondByName[e.Name] = e
	}
	for _, e := range first.Enumerators {
		if _, ok := secondByName[e.Name]; !ok {
			d.DeletedEnumerators[e.Name] = e
		}
	}
	return d
}

// TypedefDiff is a change between two typedefs.
type TypedefDiff struct {
	First  *ir.TypedefType
	Second *ir.TypedefType

	Underlying Diff
}

func (*TypedefDiff) isDiff() {}
func (d *TypedefDiff) FirstType() ir.Type {
	if d.First == nil {
		return nil
	}
	return d.First
}

func (d *TypedefDiff) SecondType() ir.Type {
	if d.Second == nil {
		return nil
	}
	return d.Second
}

// PointerDiff is a change between two pointer types.
type PointerDiff struct {
	First  *ir.PointerType
	Second *ir.PointerType

	Underlying Diff
}

func (*PointerDiff) isDiff() {}
func (d *PointerDiff) FirstType() ir.Type {
	if d.First == nil {
		return nil
	}
	return d.First
}

func (d *PointerDiff) SecondType() ir.Type {
	if d.Second == nil {
		return nil
	}
	return d.Second
}

// ReferenceDiff is a change between two reference types.
type ReferenceDiff struct {
	First  *ir.ReferenceType
	Second *ir.ReferenceType

	Underlying Diff
}

func (*ReferenceDiff) isDiff() {}
func (d *ReferenceDiff) FirstType() ir.Type {
	if d.First == nil {
		return nil
	}
	return d.First
}

func (d *ReferenceDiff) SecondType() ir.Type {
	if d.Second == nil {
		return nil
	}
	return d.Second
}

// QualifiedTypeDiff is a change between two cv-qualified types.
type QualifiedTypeDiff struct {
	First  *ir.QualifiedType
	Second *ir.QualifiedType

	Underlying Diff
}

func (*QualifiedTypeDiff) isDiff() {}
func (d *QualifiedTypeDiff) FirstType() ir.Type {
	if d.First == nil {
		return nil
	}
	return d.First
}

func (d *QualifiedTypeDiff) SecondType() ir.Type {
	if d.Second == nil {
		return nil
	}
	return d.Second
}

// FunctionDiff is a change between two function declarations.
// VirtualOffsetChanged is set when the vtable index of a virtual
// member function moved.
type FunctionDiff struct {
	First  *ir.FunctionDecl
	Second *ir.FunctionDecl

	VirtualOffsetChanged bool
}

func (*FunctionDiff) isDiff() {}

// VarDiff is a change between two variable declarations.
type VarDiff struct {
	First  *ir.VarDecl
	Second *ir.VarDecl
}

func (*VarDiff) isDiff() {}

// PeelQualifiedDiff strips any outer qualified-type diff layers,
// returning the first non-qualified type diff underneath. When a
// qualified diff has no type diff underneath, the qualified diff
// itself is returned.
func PeelQualifiedDiff(d TypeDiff) TypeDiff {
	for {
		q, ok := d.(*QualifiedTypeDiff)
		if !ok {
			return d
		}
		u, ok := AsTypeDiff(q.Underlying)
		if !ok {
			return d
		}
		d = u
	}
}

// TypedefUnderlyingDiff descends through a typedef diff to the type
// diff underneath it. It returns nil when d is not a typedef diff or
// has no underlying type diff.
func TypedefUnderlyingDiff(d TypeDiff) TypeDiff {
	td, ok := d.(*TypedefDiff)
	if !ok {
		return nil
	}
	u, ok := AsTypeDiff(td.Underlying)
	if !ok {
		return nil
	}
	return u
}
