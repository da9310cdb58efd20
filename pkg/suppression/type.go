package suppression

import (
	"path/filepath"
	"regexp"

	"github.com/abi-scope/abiscope/pkg/comparison"
	"github.com/abi-scope/abiscope/pkg/ir"
)

// TypeKind selects the family of types a type suppression is about.
type TypeKind int

const (
	UnknownTypeKind TypeKind = iota
	ClassTypeKind
	StructTypeKind
	UnionTypeKind
	EnumTypeKind
	ArrayTypeKind
	TypedefTypeKind
	BuiltinTypeKind
)

var typeKindNames = map[string]TypeKind{
	"class":   ClassTypeKind,
	"struct":  StructTypeKind,
	"union":   UnionTypeKind,
	"enum":    EnumTypeKind,
	"array":   ArrayTypeKind,
	"typedef": TypedefTypeKind,
	"builtin": BuiltinTypeKind,
}

func (k TypeKind) String() string {
	for name, kind := range typeKindNames {
		if kind == k {
			return name
		}
	}
	return "unspecified"
}

// ParseTypeKind parses the value of the type_kind property.
func ParseTypeKind(s string) (TypeKind, bool) {
	k, ok := typeKindNames[s]
	return k, ok
}

// ReachKind is the syntactic path by which a type must be reached at a
// diff site for the suppression to consider it.
type ReachKind int

const (
	DirectReach ReachKind = iota
	PointerReach
	ReferenceReach
	ReferenceOrPointerReach
)

var reachKindNames = map[string]ReachKind{
	"direct":               DirectReach,
	"pointer":              PointerReach,
	"reference":            ReferenceReach,
	"reference-or-pointer": ReferenceOrPointerReach,
}

func (k ReachKind) String() string {
	for name, kind := range reachKindNames {
		if kind == k {
			return name
		}
	}
	return "direct"
}

// ParseReachKind parses the value of the accessed_through property.
func ParseReachKind(s string) (ReachKind, bool) {
	k, ok := reachKindNames[s]
	return k, ok
}

// TypeSuppression suppresses change reports about types.
type TypeSuppression struct {
	Base

	TypeName         string
	TypeNameRegex    *regexp.Regexp
	TypeNameNotRegex *regexp.Regexp

	ConsiderTypeKind bool
	TypeKind         TypeKind

	ConsiderReachKind bool
	ReachKind         ReachKind

	InsertionRanges []*OffsetRange

	SourceLocationsToKeep     map[string]struct{}
	SourceLocationToKeepRegex *regexp.Regexp

	// ChangedEnumeratorNames is meaningful only when TypeKind is
	// EnumTypeKind; the parser clears it otherwise.
	ChangedEnumeratorNames []string
}

// Common returns the shared base fields.
func (s *TypeSuppression) Common() *Base { return &s.Base }

// SuppressesDiff reports whether the rule suppresses the diff node d.
func (s *TypeSuppression) SuppressesDiff(d comparison.Diff, ctx *comparison.Context) bool {
	td, ok := comparison.AsTypeDiff(d)
	if !ok {
		// A type suppression can still silence one narrow kind of
		// function change: a virtual member function whose vtable
		// index moved, when the rule matches the enclosing class.
		fd, isFn := d.(*comparison.FunctionDiff)
		if isFn && fd.VirtualOffsetChanged && fd.First != nil && fd.First.Class != nil {
			return s.SuppressesType(fd.First.Class, ctx)
		}
		return false
	}

	if s.ConsiderReachKind {
		td, ok = s.shapeByReachKind(td)
		if !ok {
			return false
		}
	}

	ft, st := td.FirstType(), td.SecondType()
	if ft == nil || st == nil {
		return false
	}

	if !s.SuppressesType(ft, ctx) && !s.SuppressesType(st, ctx) {
		// A private-type rule considers that a type can be private
		// while typedefs of it stay public, so it must not peel the
		// typedef away.
		if IsPrivateTypeSupprSpec(s) {
			return false
		}
		ft = ir.PeelTypedef(ft)
		st = ir.PeelTypedef(st)
		if !s.SuppressesType(ft, ctx) && !s.SuppressesType(st, ctx) {
			return false
		}
		td = comparison.TypedefUnderlyingDiff(td)
	}

	if cd, ok := td.(*comparison.ClassDiff); ok && len(s.InsertionRanges) > 0 {
		if !s.insertionRangesAdmit(cd) {
			return false
		}
	}

	if ed, ok := td.(*comparison.EnumDiff); ok {
		if !s.changedEnumeratorsAdmit(ed) {
			return false
		}
	}

	return true
}

// shapeByReachKind rewrites the node under examination according to
// the accessed_through property: a pointer (or reference) diff is
// required and its underlying type diff, stripped of outer qualifiers,
// becomes the node to match.
func (s *TypeSuppression) shapeByReachKind(td comparison.TypeDiff) (comparison.TypeDiff, bool) {
	descend := func(underlying comparison.Diff) (comparison.TypeDiff, bool) {
		u, ok := comparison.AsTypeDiff(underlying)
		if !ok {
			// The underlying node may be a distinct diff; nothing
			// to match in that case.
			return nil, false
		}
		return comparison.PeelQualifiedDiff(u), true
	}

	switch s.ReachKind {
	case PointerReach:
		if pd, ok := td.(*comparison.PointerDiff); ok {
			return descend(pd.Underlying)
		}
		return nil, false
	case ReferenceReach:
		if rd, ok := td.(*comparison.ReferenceDiff); ok {
			return descend(rd.Underlying)
		}
		return nil, false
	case ReferenceOrPointerReach:
		if pd, ok := td.(*comparison.PointerDiff); ok {
			return descend(pd.Underlying)
		}
		if rd, ok := td.(*comparison.ReferenceDiff); ok {
			return descend(rd.Underlying)
		}
		return nil, false
	default:
		return td, true
	}
}

// SuppressesType reports whether the rule matches the type under the
// given comparison context.
func (s *TypeSuppression) SuppressesType(t ir.Type, ctx *comparison.Context) bool {
	if t == nil {
		return false
	}
	if !binaryScopeAllows(&s.Base, ctx) {
		return false
	}
	if !s.matchesTypeNoName(t) {
		return false
	}
	return s.MatchesTypeName(t.QualifiedName())
}

// matchesTypeNoName checks the kind and source-location predicates,
// leaving the name aside.
func (s *TypeSuppression) matchesTypeNoName(t ir.Type) bool {
	if s.ConsiderTypeKind && !typeKindMatches(s.TypeKind, t) {
		return false
	}
	return s.matchesTypeLocation(t)
}

func typeKindMatches(k TypeKind, t ir.Type) bool {
	switch k {
	case UnknownTypeKind, ClassTypeKind:
		_, ok := t.(*ir.ClassType)
		return ok
	case StructTypeKind:
		c, ok := t.(*ir.ClassType)
		return ok && c.Struct
	case UnionTypeKind:
		_, ok := t.(*ir.UnionType)
		return ok
	case EnumTypeKind:
		_, ok := t.(*ir.EnumType)
		return ok
	case ArrayTypeKind:
		_, ok := t.(*ir.ArrayType)
		return ok
	case TypedefTypeKind:
		_, ok := t.(*ir.TypedefType)
		return ok
	case BuiltinTypeKind:
		_, ok := t.(*ir.BasicType)
		return ok
	default:
		return false
	}
}

// MatchesTypeName evaluates the exact/regex/not-regex name triple
// against a fully qualified type name. When the exact name is set the
// regexes are not consulted.
func (s *TypeSuppression) MatchesTypeName(typeName string) bool {
	if s.TypeName == "" && s.TypeNameRegex == nil && s.TypeNameNotRegex == nil {
		return true
	}
	if s.TypeName != "" {
		return s.TypeName == typeName
	}
	if s.TypeNameRegex != nil && !s.TypeNameRegex.MatchString(typeName) {
		return false
	}
	if s.TypeNameNotRegex != nil && s.TypeNameNotRegex.MatchString(typeName) {
		return false
	}
	return true
}

// MatchesLocation evaluates the source-location keep predicates
// against a known location: a location accepted by the keep filters
// must NOT be suppressed.
func (s *TypeSuppression) MatchesLocation(loc ir.Location) bool {
	if loc.IsSet() {
		if s.SourceLocationToKeepRegex != nil && s.SourceLocationToKeepRegex.MatchString(loc.Path) {
			return false
		}
		if _, ok := s.SourceLocationsToKeep[filepath.Base(loc.Path)]; ok {
			return false
		}
		if _, ok := s.SourceLocationsToKeep[loc.Path]; ok {
			return false
		}
		return true
	}
	// The location is unknown, so a keep filter cannot have been
	// triggered; a rule carrying one does not apply.
	if len(s.SourceLocationsToKeep) > 0 || s.SourceLocationToKeepRegex != nil {
		return false
	}
	return true
}

// matchesTypeLocation is the location predicate over a full type. A
// type with no location is normally rejected by a rule carrying a
// location filter, except for the artificial private-type rule, which
// treats a declaration-only class as an opaque type not defined in the
// public headers, hence a match.
func (s *TypeSuppression) matchesTypeLocation(t ir.Type) bool {
	loc := t.Location()
	if loc.IsSet() {
		return s.MatchesLocation(loc)
	}
	if s.Artificial && s.Label == PrivateTypesSupprSpecLabel {
		if c, ok := t.(*ir.ClassType); ok && c.DeclarationOnly {
			return true
		}
	}
	if len(s.SourceLocationsToKeep) > 0 || s.SourceLocationToKeepRegex != nil {
		return false
	}
	return true
}

// insertionRangesAdmit applies the has_data_member_inserted_* clauses
// to a class diff: no data member may have been deleted, the class may
// not have shrunk, and every inserted member's laid-out offset must be
// admitted by at least one range. Ranges whose two bounds both
// evaluate to "end" admit exactly the members sitting strictly beyond
// the first type's last laid-out member. Out-of-order ranges are
// ignored per range.
func (s *TypeSuppression) insertionRangesAdmit(cd *comparison.ClassDiff) bool {
	if len(cd.DeletedMembers) > 0 {
		return false
	}
	if cd.First == nil || cd.Second == nil || cd.First.Size > cd.Second.Size {
		return false
	}

	for _, member := range cd.InsertedMembers {
		offset := member.OffsetInBits
		matched := false
		for _, r := range s.InsertionRanges {
			begin, ok := r.Begin.Eval(cd.First)
			if !ok {
				break
			}
			end, ok := r.End.Eval(cd.First)
			if !ok {
				break
			}

			if IsEndValue(begin) && IsEndValue(end) {
				// The "inserted at end" idiom.
				if last := cd.First.LastLaidOutMember(); last != nil && offset > last.OffsetInBits {
					matched = true
					continue
				}
			}

			if begin > end {
				continue
			}
			if offset < begin || offset > end {
				continue
			}
			matched = true
		}
		if !matched {
			return false
		}
	}
	return true
}

// changedEnumeratorsAdmit applies the changed_enumerators clause: an
// enum diff with no deleted enumerator, an unchanged size and a
// non-empty set of changed enumerators is admitted only when every
// changed enumerator is listed in the rule.
func (s *TypeSuppression) changedEnumeratorsAdmit(ed *comparison.EnumDiff) bool {
	if len(ed.DeletedEnumerators) > 0 || len(ed.ChangedEnumerators) == 0 {
		return true
	}
	if ed.First == nil || ed.Second == nil || ed.First.Size != ed.Second.Size {
		return true
	}
	for name := range ed.ChangedEnumerators {
		listed := false
		for _, allowed := range s.ChangedEnumeratorNames {
			if allowed == name {
				listed = true
				break
			}
		}
		if !listed {
			return false
		}
	}
	return true
}
