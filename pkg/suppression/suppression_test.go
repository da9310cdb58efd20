package suppression

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abi-scope/abiscope/pkg/comparison"
	"github.com/abi-scope/abiscope/pkg/ir"
)

// parseRules parses a suppression specification and requires a clean
// parse.
func parseRules(t *testing.T, text string) []Suppression {
	t.Helper()
	res, err := ReadSuppressions(strings.NewReader(text), "test.suppr")
	require.NoError(t, err)
	require.Zero(t, res.RejectedSections, "diagnostics: %v", res.Diagnostics)
	return res.Suppressions
}

// parseOne parses a specification holding exactly one rule.
func parseOne(t *testing.T, text string) Suppression {
	t.Helper()
	rules := parseRules(t, text)
	require.Len(t, rules, 1)
	return rules[0]
}

// diffContext builds a comparison context over two synthetic corpora.
func diffContext(firstPath, firstSoname, secondPath, secondSoname string) *comparison.Context {
	return &comparison.Context{
		First:  &ir.Corpus{Path: firstPath, Soname: firstSoname},
		Second: &ir.Corpus{Path: secondPath, Soname: secondSoname},
	}
}

func classNamed(name, path string) *ir.ClassType {
	c := &ir.ClassType{Name: name, Size: 64}
	if path != "" {
		c.Loc = ir.Location{Path: path, Line: 1, Column: 1}
	}
	return c
}

func typeDiffOf(name, path string) *comparison.BasicTypeDiff {
	return &comparison.BasicTypeDiff{
		First:  classNamed(name, path),
		Second: classNamed(name, path),
	}
}

func TestMatchingIsIdempotent(t *testing.T) {
	rule := parseOne(t, `
[suppress_type]
name_regexp = ^std::.*
`)
	node := typeDiffOf("std::widget", "include/bar.h")
	first := rule.SuppressesDiff(node, nil)
	for i := 0; i < 3; i++ {
		require.Equal(t, first, rule.SuppressesDiff(node, nil))
	}
	require.True(t, first)
}

func TestCompositionIsMonotone(t *testing.T) {
	listA := parseRules(t, `
[suppress_type]
name = first::type
`)
	listB := parseRules(t, `
[suppress_type]
name = second::type
`)
	combined := append(append([]Suppression{}, listA...), listB...)

	nodes := []comparison.Diff{
		typeDiffOf("first::type", ""),
		typeDiffOf("second::type", ""),
		typeDiffOf("third::type", ""),
	}
	for _, node := range nodes {
		gotA, _ := IsDiffSuppressed(listA, node, nil)
		gotB, _ := IsDiffSuppressed(listB, node, nil)
		gotBoth, _ := IsDiffSuppressed(combined, node, nil)
		require.Equal(t, gotA || gotB, gotBoth)
	}
}

func TestBinaryScopeIsNecessary(t *testing.T) {
	matching := parseOne(t, `
[suppress_type]
name = foo::type
soname_regexp = ^libfoo\.so\..*
`)
	nonMatching := parseOne(t, `
[suppress_type]
name = foo::type
soname_regexp = ^libzzz\.so\..*
`)

	node := typeDiffOf("foo::type", "")
	ctx := diffContext("/usr/lib/libfoo.so.3", "libfoo.so.3", "/usr/lib/libfoo.so.4", "libfoo.so.4")

	require.True(t, matching.SuppressesDiff(node, ctx))
	require.False(t, nonMatching.SuppressesDiff(node, ctx))
}

func TestFileNameScope(t *testing.T) {
	rule := parseOne(t, `
[suppress_function]
name = do_something
file_name_regexp = libfoo
file_name_not_regexp = \.debug$
`)
	fs := AsFunctionSuppression(rule)
	require.NotNil(t, fs)
	fn := &ir.FunctionDecl{Name: "do_something"}

	okCtx := diffContext("/usr/lib/libfoo.so.3", "", "/usr/lib/libfoo.so.4", "")
	require.True(t, fs.SuppressesFunction(fn, FunctionSubtypeChange, okCtx))

	excluded := diffContext("/usr/lib/libfoo.so.3.debug", "", "/usr/lib/libfoo.so.4.debug", "")
	require.False(t, fs.SuppressesFunction(fn, FunctionSubtypeChange, excluded))

	other := diffContext("/usr/lib/libbar.so.1", "", "/usr/lib/libbar.so.2", "")
	require.False(t, fs.SuppressesFunction(fn, FunctionSubtypeChange, other))
}

func TestFirstMatchingRuleIsReported(t *testing.T) {
	rules := parseRules(t, `
[suppress_type]
label = first
name_regexp = .*

[suppress_type]
label = second
name_regexp = .*
`)
	suppressed, match := IsDiffSuppressed(rules, typeDiffOf("anything", ""), nil)
	require.True(t, suppressed)
	require.Equal(t, "first", match.Common().Label)
}
