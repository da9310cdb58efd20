package suppression

import (
	"github.com/abi-scope/abiscope/pkg/ir"
)

// The functions in this file are consulted by IR loaders while an ABI
// corpus is being built, to decide whether a candidate artifact should
// be materialized at all. They work from names alone: at load time
// there is no diff node and often no declaration yet.

// matchesFunctionName evaluates a function rule's name predicates
// against a qualified function name.
func matchesFunctionName(s *FunctionSuppression, name string) bool {
	switch {
	case s.NameRegex != nil:
		if !s.NameRegex.MatchString(name) {
			return false
		}
	case s.NameNotRegex != nil:
		if s.NameNotRegex.MatchString(name) {
			return false
		}
	case s.Name == "":
		return false
	default:
		if s.Name != name {
			return false
		}
	}
	return true
}

// matchesFunctionSymbolName evaluates a function rule's symbol-name
// predicates against an ELF symbol name.
func matchesFunctionSymbolName(s *FunctionSuppression, symbolName string) bool {
	switch {
	case s.SymbolNameRegex != nil:
		if !s.SymbolNameRegex.MatchString(symbolName) {
			return false
		}
	case s.SymbolNameNotRegex != nil:
		if s.SymbolNameNotRegex.MatchString(symbolName) {
			return false
		}
	case s.SymbolName == "":
		return false
	default:
		if s.SymbolName != symbolName {
			return false
		}
	}
	return true
}

// matchesVariableName evaluates a variable rule's name predicates
// against a qualified variable name.
func matchesVariableName(s *VariableSuppression, name string) bool {
	switch {
	case s.NameRegex != nil:
		if !s.NameRegex.MatchString(name) {
			return false
		}
	case s.NameNotRegex != nil:
		if s.NameNotRegex.MatchString(name) {
			return false
		}
	case s.Name == "":
		return false
	default:
		if s.Name != name {
			return false
		}
	}
	return true
}

// matchesVariableSymbolName evaluates a variable rule's symbol-name
// predicates against an ELF symbol name.
func matchesVariableSymbolName(s *VariableSuppression, symbolName string) bool {
	switch {
	case s.SymbolNameRegex != nil:
		if !s.SymbolNameRegex.MatchString(symbolName) {
			return false
		}
	case s.SymbolNameNotRegex != nil:
		if s.SymbolNameNotRegex.MatchString(symbolName) {
			return false
		}
	case s.SymbolName == "":
		return false
	default:
		if s.SymbolName != symbolName {
			return false
		}
	}
	return true
}

// FunctionIsSuppressed reports whether a function designated by its
// qualified name and/or ELF symbol name is matched by a function rule.
// With requireDrop set, only rules that drop their artifact from the
// IR are considered; that is the mode loaders use.
func FunctionIsSuppressed(supprs []Suppression, name, symbolName string, requireDrop bool) bool {
	for _, s := range supprs {
		fs := AsFunctionSuppression(s)
		if fs == nil {
			continue
		}
		if requireDrop && !fs.DropsArtifact {
			continue
		}
		if name != "" && matchesFunctionName(fs, name) {
			return true
		}
		if symbolName != "" && matchesFunctionSymbolName(fs, symbolName) {
			return true
		}
	}
	return false
}

// VariableIsSuppressed reports whether a variable designated by its
// qualified name and/or ELF symbol name is matched by a variable rule.
func VariableIsSuppressed(supprs []Suppression, name, symbolName string, requireDrop bool) bool {
	for _, s := range supprs {
		vs := AsVariableSuppression(s)
		if vs == nil {
			continue
		}
		if requireDrop && !vs.DropsArtifact {
			continue
		}
		if name != "" && matchesVariableName(vs, name) {
			return true
		}
		if symbolName != "" && matchesVariableSymbolName(vs, symbolName) {
			return true
		}
	}
	return false
}

// SymbolIsSuppressed classifies a bare ELF symbol by kind and
// delegates to the function or variable filter.
func SymbolIsSuppressed(supprs []Suppression, symbolName string, kind ir.SymbolKind, requireDrop bool) bool {
	switch kind {
	case ir.FunctionSymbol:
		return FunctionIsSuppressed(supprs, "", symbolName, requireDrop)
	case ir.VariableSymbol:
		return VariableIsSuppressed(supprs, "", symbolName, requireDrop)
	default:
		return false
	}
}

// TypeIsSuppressed reports whether a type candidate designated by its
// name and source location is matched by a type rule. The second
// result is set when the matching rule is the artificial private-type
// rule, so loaders can record that the type is private rather than
// merely suppressed.
func TypeIsSuppressed(supprs []Suppression, typeName string, loc ir.Location, requireDrop bool) (suppressed, private bool) {
	for _, s := range supprs {
		ts := AsTypeSuppression(s)
		if ts == nil {
			continue
		}
		if requireDrop && !ts.DropsArtifact {
			continue
		}
		if !ts.MatchesTypeName(typeName) {
			continue
		}
		if !ts.MatchesLocation(loc) {
			continue
		}
		return true, IsPrivateTypeSupprSpec(ts)
	}
	return false, false
}
