// Package suppression implements the suppression engine: a declarative
// rule language that decides, for every candidate ABI change and for
// every candidate IR artifact at load time, whether it must be
// withheld from the report or from the IR itself.
//
// Rules are parsed from INI-like specification files (see ReadSuppressions),
// are immutable once built, and are evaluated against diff-graph nodes
// (SuppressesDiff) or raw artifact names (the *IsSuppressed functions).
// Evaluation is total: no rule ever fails, it just does not match.
package suppression

import (
	"regexp"

	"github.com/abi-scope/abiscope/pkg/comparison"
)

// Suppression is one rule of any kind. The concrete types are
// *TypeSuppression, *FunctionSuppression, *VariableSuppression and
// *FileSuppression, all sharing a Base by composition.
//
// A rule is read-only after construction and may be shared freely
// across goroutines.
type Suppression interface {
	// Common returns the fields shared by every rule kind.
	Common() *Base

	// SuppressesDiff reports whether the rule suppresses the given
	// diff node under the given comparison context. ctx may be nil,
	// in which case binary-scope predicates are not evaluated.
	SuppressesDiff(d comparison.Diff, ctx *comparison.Context) bool
}

// Base carries the fields shared by all rule kinds: an optional label,
// the drop-from-IR and artificial flags, and the binary-scope regexes.
// A rule is bound to binaries iff at least one of the file-name or
// SONAME regex pairs is present; an unbound rule applies to every
// binary.
type Base struct {
	Label         string
	Artificial    bool
	DropsArtifact bool

	FileNameRegex    *regexp.Regexp
	FileNameNotRegex *regexp.Regexp
	SonameRegex      *regexp.Regexp
	SonameNotRegex   *regexp.Regexp
}

// HasFileNameRelatedProperty reports whether either file-name regex is set.
func (b *Base) HasFileNameRelatedProperty() bool {
	return b.FileNameRegex != nil || b.FileNameNotRegex != nil
}

// HasSonameRelatedProperty reports whether either SONAME regex is set.
func (b *Base) HasSonameRelatedProperty() bool {
	return b.SonameRegex != nil || b.SonameNotRegex != nil
}

// MatchesSoname reports whether the rule's SONAME pair accepts soname.
// A rule with no SONAME-related property accepts nothing.
func (b *Base) MatchesSoname(soname string) bool {
	if !b.HasSonameRelatedProperty() {
		return false
	}
	if b.SonameRegex != nil && !b.SonameRegex.MatchString(soname) {
		return false
	}
	if b.SonameNotRegex != nil && b.SonameNotRegex.MatchString(soname) {
		return false
	}
	return true
}

// MatchesBinaryName reports whether the rule's file-name pair accepts
// the full path of a binary. A rule with no file-name-related property
// accepts nothing.
func (b *Base) MatchesBinaryName(binaryName string) bool {
	if !b.HasFileNameRelatedProperty() {
		return false
	}
	if b.FileNameRegex != nil && !b.FileNameRegex.MatchString(binaryName) {
		return false
	}
	if b.FileNameNotRegex != nil && b.FileNameNotRegex.MatchString(binaryName) {
		return false
	}
	return true
}

// namesOfBinariesMatch reports whether the file-name pair accepts at
// least one of the two binaries under comparison.
func namesOfBinariesMatch(b *Base, ctx *comparison.Context) bool {
	if !b.HasFileNameRelatedProperty() {
		return false
	}
	return b.MatchesBinaryName(ctx.First.Path) || b.MatchesBinaryName(ctx.Second.Path)
}

// sonamesOfBinariesMatch reports whether the SONAME pair accepts at
// least one of the two corpora's SONAMEs.
func sonamesOfBinariesMatch(b *Base, ctx *comparison.Context) bool {
	if !b.HasSonameRelatedProperty() {
		return false
	}
	return b.MatchesSoname(ctx.First.Soname) || b.MatchesSoname(ctx.Second.Soname)
}

// binaryScopeAllows evaluates the common precondition of every rule:
// when the rule is bound to binaries, one of the two binaries must be
// accepted by each pair that is present.
func binaryScopeAllows(b *Base, ctx *comparison.Context) bool {
	if ctx == nil || ctx.First == nil || ctx.Second == nil {
		return true
	}
	if b.HasFileNameRelatedProperty() && !namesOfBinariesMatch(b, ctx) {
		return false
	}
	if b.HasSonameRelatedProperty() && !sonamesOfBinariesMatch(b, ctx) {
		return false
	}
	return true
}

// IsDiffSuppressed reports whether any rule suppresses the diff node,
// and returns the first matching rule for diagnostics. Rules are tried
// in order; the outcome is order-independent, only the returned rule
// is not.
func IsDiffSuppressed(supprs []Suppression, d comparison.Diff, ctx *comparison.Context) (bool, Suppression) {
	for _, s := range supprs {
		if s.SuppressesDiff(d, ctx) {
			return true, s
		}
	}
	return false, nil
}

// AsTypeSuppression returns s as a type suppression, or nil.
func AsTypeSuppression(s Suppression) *TypeSuppression {
	t, _ := s.(*TypeSuppression)
	return t
}

// AsFunctionSuppression returns s as a function suppression, or nil.
func AsFunctionSuppression(s Suppression) *FunctionSuppression {
	f, _ := s.(*FunctionSuppression)
	return f
}

// AsVariableSuppression returns s as a variable suppression, or nil.
func AsVariableSuppression(s Suppression) *VariableSuppression {
	v, _ := s.(*VariableSuppression)
	return v
}

// AsFileSuppression returns s as a file suppression, or nil.
func AsFileSuppression(s Suppression) *FileSuppression {
	f, _ := s.(*FileSuppression)
	return f
}
