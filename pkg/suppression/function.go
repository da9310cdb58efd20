package suppression

import (
	"regexp"

	"github.com/abi-scope/abiscope/pkg/comparison"
	"github.com/abi-scope/abiscope/pkg/ir"
)

// FunctionChangeKind is a bitset of the function change categories a
// rule applies to.
type FunctionChangeKind uint8

const (
	FunctionSubtypeChange FunctionChangeKind = 1 << iota
	AddedFunction
	DeletedFunction
)

// AllFunctionChanges is the default change kind of a function rule.
const AllFunctionChanges = FunctionSubtypeChange | AddedFunction | DeletedFunction

// ParseFunctionChangeKind parses the change_kind property of a
// suppress_function section.
func ParseFunctionChangeKind(s string) (FunctionChangeKind, bool) {
	switch s {
	case "function-subtype-change":
		return FunctionSubtypeChange, true
	case "added-function":
		return AddedFunction, true
	case "deleted-function":
		return DeletedFunction, true
	case "all":
		return AllFunctionChanges, true
	default:
		return 0, false
	}
}

func (k FunctionChangeKind) String() string {
	switch k {
	case FunctionSubtypeChange:
		return "function-subtype-change"
	case AddedFunction:
		return "added-function"
	case DeletedFunction:
		return "deleted-function"
	case AllFunctionChanges:
		return "all"
	default:
		return "undefined"
	}
}

// ParameterSpec designates one function parameter by index, counted
// across non-implicit parameters, and constrains its type name either
// exactly or by regex.
type ParameterSpec struct {
	Index         int
	TypeName      string
	TypeNameRegex *regexp.Regexp
}

// FunctionSuppression suppresses change reports about functions.
type FunctionSuppression struct {
	Base

	ChangeKind FunctionChangeKind

	Name         string
	NameRegex    *regexp.Regexp
	NameNotRegex *regexp.Regexp

	ReturnTypeName  string
	ReturnTypeRegex *regexp.Regexp

	ParameterSpecs []*ParameterSpec

	SymbolName         string
	SymbolNameRegex    *regexp.Regexp
	SymbolNameNotRegex *regexp.Regexp

	SymbolVersion      string
	SymbolVersionRegex *regexp.Regexp

	// AllowOtherAliases, the default, widens every name and symbol
	// predicate to the whole alias cluster: a matching symbol is
	// suppressed only when all of its aliases satisfy the predicate
	// too.
	AllowOtherAliases bool
}

// Common returns the shared base fields.
func (s *FunctionSuppression) Common() *Base { return &s.Base }

// SuppressesDiff reports whether the rule suppresses a function
// declaration diff: both sides are evaluated independently, and either
// matching suffices.
func (s *FunctionSuppression) SuppressesDiff(d comparison.Diff, ctx *comparison.Context) bool {
	fd, ok := d.(*comparison.FunctionDiff)
	if !ok {
		return false
	}
	return s.SuppressesFunction(fd.First, FunctionSubtypeChange, ctx) ||
		s.SuppressesFunction(fd.Second, FunctionSubtypeChange, ctx)
}

// allAliasesSatisfy walks the alias ring of sym (the main symbol
// excluded) and reports whether pred holds for every alias name. The
// walk stops when it comes back around to the main symbol.
func allAliasesSatisfy(sym *ir.Symbol, pred func(name string) bool) bool {
	for a := sym.NextAlias(); a != nil && !a.IsMainSymbol(); a = a.NextAlias() {
		if !pred(a.Name) {
			return false
		}
	}
	return true
}

// namedAliasing reports whether fn is in a symbol-equals-name aliasing
// situation: its symbol cluster contains a symbol spelled exactly like
// the function's qualified name.
func namedAliasing(fn *ir.FunctionDecl, name string) bool {
	return fn.Symbol != nil && fn.Symbol.AliasByName(name) != nil
}

// SuppressesFunction reports whether the rule suppresses a change of
// kind k involving fn.
func (s *FunctionSuppression) SuppressesFunction(fn *ir.FunctionDecl, k FunctionChangeKind, ctx *comparison.Context) bool {
	if fn == nil {
		return false
	}
	if s.ChangeKind&k == 0 {
		return false
	}
	if !binaryScopeAllows(&s.Base, ctx) {
		return false
	}

	name := fn.Name
	sym := fn.Symbol

	if s.Name != "" {
		if s.Name != name {
			return false
		}
		if s.AllowOtherAliases && namedAliasing(fn, name) && sym.HasAliases() {
			symName := sym.Name
			if !allAliasesSatisfy(sym, func(alias string) bool { return alias == symName }) {
				return false
			}
		}
	}

	if s.NameRegex != nil {
		if !s.NameRegex.MatchString(name) {
			return false
		}
		if s.AllowOtherAliases && namedAliasing(fn, name) && sym.HasAliases() {
			if !allAliasesSatisfy(sym, s.NameRegex.MatchString) {
				return false
			}
		}
	}

	if s.NameNotRegex != nil {
		if s.NameNotRegex.MatchString(name) {
			return false
		}
		if s.AllowOtherAliases && namedAliasing(fn, name) && sym.HasAliases() {
			if !allAliasesSatisfy(sym, func(alias string) bool { return !s.NameNotRegex.MatchString(alias) }) {
				return false
			}
		}
	}

	returnTypeName := ""
	if fn.ReturnType != nil {
		returnTypeName = fn.ReturnType.QualifiedName()
	}
	if s.ReturnTypeName != "" {
		if returnTypeName != s.ReturnTypeName {
			return false
		}
	} else if s.ReturnTypeRegex != nil {
		if !s.ReturnTypeRegex.MatchString(returnTypeName) {
			return false
		}
	}

	if sym != nil {
		if s.SymbolName != "" {
			if sym.Name != s.SymbolName {
				return false
			}
			if s.AllowOtherAliases && sym.HasAliases() {
				symName := sym.Name
				if !allAliasesSatisfy(sym, func(alias string) bool { return alias == symName }) {
					return false
				}
			}
		} else if s.SymbolNameRegex != nil || s.SymbolNameNotRegex != nil {
			if s.SymbolNameRegex != nil && !s.SymbolNameRegex.MatchString(sym.Name) {
				return false
			}
			if s.SymbolNameNotRegex != nil && s.SymbolNameNotRegex.MatchString(sym.Name) {
				return false
			}
			if s.AllowOtherAliases && sym.HasAliases() {
				ok := allAliasesSatisfy(sym, func(alias string) bool {
					if s.SymbolNameRegex != nil && !s.SymbolNameRegex.MatchString(alias) {
						return false
					}
					if s.SymbolNameNotRegex != nil && s.SymbolNameNotRegex.MatchString(alias) {
						return false
					}
					return true
				})
				if !ok {
					return false
				}
			}
		}

		version := sym.Version.String()
		if s.SymbolVersion != "" {
			if version != s.SymbolVersion {
				return false
			}
		} else if s.SymbolVersionRegex != nil {
			if !s.SymbolVersionRegex.MatchString(version) {
				return false
			}
		}
	}

	for _, spec := range s.ParameterSpecs {
		parm := fn.ParameterFromNonImplicit(spec.Index)
		if parm == nil {
			return false
		}
		parmTypeName := ""
		if parm.Type != nil {
			parmTypeName = parm.Type.QualifiedName()
		}
		if spec.TypeName != "" {
			if spec.TypeName != parmTypeName {
				return false
			}
		} else if spec.TypeNameRegex != nil {
			if !spec.TypeNameRegex.MatchString(parmTypeName) {
				return false
			}
		}
	}

	return true
}

// SuppressesFunctionSymbol reports whether the rule suppresses a
// change of kind k reported for a bare function symbol, with no
// declaration attached. Only the symbol name, symbol version,
// binary-scope and change-kind predicates apply; a rule specifying
// neither a symbol name nor a symbol version cannot match.
func (s *FunctionSuppression) SuppressesFunctionSymbol(sym *ir.Symbol, k FunctionChangeKind, ctx *comparison.Context) bool {
	if sym == nil {
		return false
	}
	if s.ChangeKind&k == 0 {
		return false
	}
	if !sym.IsFunction() {
		return false
	}
	if !binaryScopeAllows(&s.Base, ctx) {
		return false
	}

	noSymbolName, noSymbolVersion := false, false

	switch {
	case s.SymbolName != "":
		if sym.Name != s.SymbolName {
			return false
		}
		if s.AllowOtherAliases && sym.HasAliases() {
			if !allAliasesSatisfy(sym, func(alias string) bool { return alias == s.SymbolName }) {
				return false
			}
		}
	case s.SymbolNameRegex != nil:
		if !s.SymbolNameRegex.MatchString(sym.Name) {
			return false
		}
		if s.AllowOtherAliases && sym.HasAliases() {
			if !allAliasesSatisfy(sym, s.SymbolNameRegex.MatchString) {
				return false
			}
		}
	default:
		noSymbolName = true
	}

	version := sym.Version.String()
	switch {
	case s.SymbolVersion != "":
		if version != s.SymbolVersion {
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
