package suppression

import (
	"regexp"

	"github.com/abi-scope/abiscope/pkg/comparison"
	"github.com/abi-scope/abiscope/pkg/ir"
)

// VariableChangeKind is a bitset of the variable change categories a
// rule applies to.
type VariableChangeKind uint8

const (
	VariableSubtypeChange VariableChangeKind = 1 << iota
	AddedVariable
	DeletedVariable
)

// AllVariableChanges is the default change kind of a variable rule.
const AllVariableChanges = VariableSubtypeChange | AddedVariable | DeletedVariable

// ParseVariableChangeKind parses the change_kind property of a
// suppress_variable section.
func ParseVariableChangeKind(s string) (VariableChangeKind, bool) {
	switch s {
	case "variable-subtype-change":
		return VariableSubtypeChange, true
	case "added-variable":
		return AddedVariable, true
	case "deleted-variable":
		return DeletedVariable, true
	case "all":
		return AllVariableChanges, true
	default:
		return 0, false
	}
}

func (k VariableChangeKind) String() string {
	switch k {
	case VariableSubtypeChange:
		return "variable-subtype-change"
	case AddedVariable:
		return "added-variable"
	case DeletedVariable:
		return "deleted-variable"
	case AllVariableChanges:
		return "all"
	default:
		return "undefined"
	}
}

// VariableSuppression suppresses change reports about variables.
type VariableSuppression struct {
	Base

	ChangeKind VariableChangeKind

	Name         string
	NameRegex    *regexp.Regexp
	NameNotRegex *regexp.Regexp

	SymbolName         string
	SymbolNameRegex    *regexp.Regexp
	SymbolNameNotRegex *regexp.Regexp

	SymbolVersion      string
	SymbolVersionRegex *regexp.Regexp

	TypeName      string
	TypeNameRegex *regexp.Regexp
}

// Common returns the shared base fields.
func (s *VariableSuppression) Common() *Base { return &s.Base }

// SuppressesDiff reports whether the rule suppresses a variable diff:
// both sides are evaluated independently, and either matching
// suffices.
func (s *VariableSuppression) SuppressesDiff(d comparison.Diff, ctx *comparison.Context) bool {
	vd, ok := d.(*comparison.VarDiff)
	if !ok {
		return false
	}
	return s.SuppressesVariable(vd.First, VariableSubtypeChange, ctx) ||
		s.SuppressesVariable(vd.Second, VariableSubtypeChange, ctx)
}

// SuppressesVariable reports whether the rule suppresses a change of
// kind k involving v.
func (s *VariableSuppression) SuppressesVariable(v *ir.VarDecl, k VariableChangeKind, ctx *comparison.Context) bool {
	if v == nil {
		return false
	}
	if s.ChangeKind&k == 0 {
		return false
	}
	if !binaryScopeAllows(&s.Base, ctx) {
		return false
	}

	if s.Name != "" {
		if s.Name != v.Name {
			return false
		}
	} else {
		if s.NameRegex != nil && !s.NameRegex.MatchString(v.Name) {
			return false
		}
		if s.NameNotRegex != nil && s.NameNotRegex.MatchString(v.Name) {
			return false
		}
	}

	symName := ""
	if v.Symbol != nil {
		symName = v.Symbol.Name
	}
	if s.SymbolName != "" {
		if s.SymbolName != symName {
			return false
		}
	} else {
		if s.SymbolNameRegex != nil && !s.SymbolNameRegex.MatchString(symName) {
			return false
		}
		if s.SymbolNameNotRegex != nil && s.SymbolNameNotRegex.MatchString(symName) {
			return false
		}
	}

	symVersion := ""
	if v.Symbol != nil {
		symVersion = v.Symbol.Version.String()
	}
	if s.SymbolVersion != "" {
		if s.SymbolVersion != symVersion {
			return false
		}
	} else if s.SymbolVersionRegex != nil {
		if !s.SymbolVersionRegex.MatchString(symVersion) {
			return false
		}
	}

	typeName := ""
	if v.Type != nil {
		typeName = v.Type.QualifiedName()
	}
	if s.TypeName != "" {
		if s.TypeName != typeName {
			return false
		}
	} else if s.TypeNameRegex != nil {
		if !s.TypeNameRegex.MatchString(typeName) {
			return false
		}
	}

	return true
}

// SuppressesVariableSymbol reports whether the rule suppresses a
// change of kind k reported for a bare variable symbol. Only the name,
// symbol name, symbol version, binary-scope and change-kind predicates
// apply; a rule specifying none of the name or version predicates
// cannot match.
func (s *VariableSuppression) SuppressesVariableSymbol(sym *ir.Symbol, k VariableChangeKind, ctx *comparison.Context) bool {
	if sym == nil {
		return false
	}
	if s.ChangeKind&k == 0 {
		return false
	}
	if !sym.IsVariable() {
		return false
	}
	if !binaryScopeAllows(&s.Base, ctx) {
		return false
	}

	noSymbolName, noSymbolVersion := false, false

	switch {
	case s.Name != "":
		if s.Name != sym.Name {
			return false
		}
	case s.SymbolName != "":
		if s.SymbolName != sym.Name {
			return false
		}
	case s.SymbolNameRegex != nil:
		if !s.SymbolNameRegex.MatchString(sym.Name) {
			return false
		}
	default:
		noSymbolName = true
	}

	version := sym.Version.String()
	switch {
	case s.SymbolVersion != "":
		if s.SymbolVersion != version {
			return false
		}
	case s.SymbolVersionRegex != nil:
		if !s.SymbolVersionRegex.MatchString(version) {
			return false
		}
	default:
		noSymbolVersion = true
	}

	return !noSymbolName || !noSymbolVersion
}
