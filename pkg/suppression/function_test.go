package suppression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abi-scope/abiscope/pkg/comparison"
	"github.com/abi-scope/abiscope/pkg/ir"
)

func fnWithSymbol(name string, sym *ir.Symbol) *ir.FunctionDecl {
	return &ir.FunctionDecl{
		Name:       name,
		ReturnType: &ir.BasicType{Name: "int", Size: 32},
		Symbol:     sym,
	}
}

func symbolWithAliases(main string, aliases ...string) *ir.Symbol {
	sym := &ir.Symbol{Name: main, Kind: ir.FunctionSymbol, Value: 0x1000}
	for _, a := range aliases {
		sym.AddAlias(&ir.Symbol{Name: a, Kind: ir.FunctionSymbol, Value: 0x1000})
	}
	return sym
}

func TestFunctionNamePredicates(t *testing.T) {
	var tests = []struct {
		name    string
		section string
		fnName  string
		want    bool
	}{
		{"exact match", "name = ns::fn", "ns::fn", true},
		{"exact mismatch", "name = ns::fn", "ns::other", false},
		{"regex match", "name_regexp = ^ns::.*", "ns::anything", true},
		{"regex mismatch", "name_regexp = ^ns::.*", "other::fn", false},
		{"not-regex excludes", "name_regexp = ^ns::.*\nname_not_regexp = internal", "ns::internal_fn", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := AsFunctionSuppression(parseOne(t, "[suppress_function]\n"+tt.section+"\n"))
			require.NotNil(t, rule)
			fn := fnWithSymbol(tt.fnName, nil)
			assert.Equal(t, tt.want, rule.SuppressesFunction(fn, FunctionSubtypeChange, nil))
		})
	}
}

func TestFunctionChangeKindGates(t *testing.T) {
	rule := AsFunctionSuppression(parseOne(t, `
[suppress_function]
change_kind = deleted-function
name = gone
`))
	require.NotNil(t, rule)
	fn := fnWithSymbol("gone", nil)

	assert.True(t, rule.SuppressesFunction(fn, DeletedFunction, nil))
	assert.False(t, rule.SuppressesFunction(fn, AddedFunction, nil))
	assert.False(t, rule.SuppressesFunction(fn, FunctionSubtypeChange, nil))

	// A diff node carries the subtype-change kind, so a
	// deleted-function rule ignores it.
	node := &comparison.FunctionDiff{First: fn, Second: fn}
	assert.False(t, rule.SuppressesDiff(node, nil))
}

func TestFunctionReturnTypeAndParameters(t *testing.T) {
	intType := &ir.BasicType{Name: "int", Size: 32}
	charPtr := &ir.PointerType{Pointee: &ir.BasicType{Name: "char", Size: 8}, Size: 64}
	fn := &ir.FunctionDecl{
		Name:       "frob",
		ReturnType: intType,
		Parameters: []*ir.Parameter{
			{Name: "this", Type: charPtr, Artificial: true},
			{Name: "count", Type: intType},
			{Name: "buf", Type: charPtr},
		},
	}

	rule := AsFunctionSuppression(parseOne(t, `
[suppress_function]
name = frob
return_type_name = int
parameter = '0 int
parameter = '1 /char.*/
`))
	require.NotNil(t, rule)
	assert.True(t, rule.SuppressesFunction(fn, FunctionSubtypeChange, nil))

	badReturn := AsFunctionSuppression(parseOne(t, `
[suppress_function]
name = frob
return_type_name = void
`))
	assert.False(t, badReturn.SuppressesFunction(fn, FunctionSubtypeChange, nil))

	badParm := AsFunctionSuppression(parseOne(t, `
[suppress_function]
name = frob
parameter = '0 char*
`))
	assert.False(t, badParm.SuppressesFunction(fn, FunctionSubtypeChange, nil))

	outOfRange := AsFunctionSuppression(parseOne(t, `
[suppress_function]
name = frob
parameter = '7 int
`))
	assert.False(t, outOfRange.SuppressesFunction(fn, FunctionSubtypeChange, nil))
}

func TestFunctionRepeatedParameterIndex(t *testing.T) {
	intType := &ir.BasicType{Name: "int", Size: 32}
	fn := &ir.FunctionDecl{
		Name:       "f",
		Parameters: []*ir.Parameter{{Name: "x", Type: intType}},
	}

	// Two specs for the same index must both hold.
	both := AsFunctionSuppression(parseOne(t, `
[suppress_function]
name = f
parameter = '0 int
parameter = '0 /i.t/
`))
	assert.True(t, both.SuppressesFunction(fn, FunctionSubtypeChange, nil))

	conflicting := AsFunctionSuppression(parseOne(t, `
[suppress_function]
name = f
parameter = '0 int
parameter = '0 long
`))
	assert.False(t, conflicting.SuppressesFunction(fn, FunctionSubtypeChange, nil))
}

func TestFunctionSymbolVersion(t *testing.T) {
	sym := &ir.Symbol{
		Name:    "fn",
		Kind:    ir.FunctionSymbol,
		Version: ir.SymbolVersion{Name: "LIBFOO_1.2", Default: true},
	}
	fn := fnWithSymbol("fn", sym)

	exact := AsFunctionSuppression(parseOne(t, `
[suppress_function]
symbol_version = LIBFOO_1.2
`))
	assert.True(t, exact.SuppressesFunction(fn, FunctionSubtypeChange, nil))

	regex := AsFunctionSuppression(parseOne(t, `
[suppress_function]
symbol_version_regexp = ^LIBFOO_1\..*
`))
	assert.True(t, regex.SuppressesFunction(fn, FunctionSubtypeChange, nil))

	mismatch := AsFunctionSuppression(parseOne(t, `
[suppress_function]
symbol_version = LIBFOO_2.0
`))
	assert.False(t, mismatch.SuppressesFunction(fn, FunctionSubtypeChange, nil))
}

func TestAliasAllOrNothingForSymbolNames(t *testing.T) {
	rule := AsFunctionSuppression(parseOne(t, `
[suppress_function]
change_kind = added-function
symbol_name_regexp = ^_ZN3foo.*
allow_other_aliases = yes
`))
	require.NotNil(t, rule)

	allFoo := symbolWithAliases("_ZN3foo3barEv", "_ZN3foo3bazEv")
	assert.True(t, rule.SuppressesFunctionSymbol(allFoo, AddedFunction, nil))

	mixed := symbolWithAliases("_ZN3foo3barEv", "_ZN4quux3barEv")
	assert.False(t, rule.SuppressesFunctionSymbol(mixed, AddedFunction, nil))

	// With the alias check disabled the main symbol alone decides.
	lenient := AsFunctionSuppression(parseOne(t, `
[suppress_function]
change_kind = added-function
symbol_name_regexp = ^_ZN3foo.*
allow_other_aliases = no
`))
	assert.True(t, lenient.SuppressesFunctionSymbol(mixed, AddedFunction, nil))
}

func TestAliasAllOrNothingForDeclNames(t *testing.T) {
	// In a symbol-equals-name language, a name-regex rule must match
	// every alias of the function's symbol.
	sym := symbolWithAliases("foo_bar", "foo_baz")
	fn := fnWithSymbol("foo_bar", sym)

	rule := AsFunctionSuppression(parseOne(t, `
[suppress_function]
name_regexp = ^foo_.*
`))
	assert.True(t, rule.SuppressesFunction(fn, FunctionSubtypeChange, nil))

	mixedSym := symbolWithAliases("foo_bar", "quux_bar")
	mixedFn := fnWithSymbol("foo_bar", mixedSym)
	assert.False(t, rule.SuppressesFunction(mixedFn, FunctionSubtypeChange, nil))
}

func TestSymbolOnlyRuleNeedsSymbolPredicate(t *testing.T) {
	// A rule with neither a symbol name nor a symbol version cannot
	// match a bare symbol, whatever else it carries.
	rule := AsFunctionSuppression(parseOne(t, `
[suppress_function]
name_regexp = .*
`))
	sym := &ir.Symbol{Name: "anything", Kind: ir.FunctionSymbol}
	assert.False(t, rule.SuppressesFunctionSymbol(sym, AddedFunction, nil))

	versionOnly := AsFunctionSuppression(parseOne(t, `
[suppress_function]
symbol_version = V1
`))
	versioned := &ir.Symbol{Name: "fn", Kind: ir.FunctionSymbol, Version: ir.SymbolVersion{Name: "V1"}}
	assert.True(t, versionOnly.SuppressesFunctionSymbol(versioned, AddedFunction, nil))
}

func TestSymbolOnlyRuleChecksSymbolKind(t *testing.T) {
	rule := AsFunctionSuppression(parseOne(t, `
[suppress_function]
symbol_name = sym
`))
	variable := &ir.Symbol{Name: "sym", Kind: ir.VariableSymbol}
	assert.False(t, rule.SuppressesFunctionSymbol(variable, AddedFunction, nil))

	function := &ir.Symbol{Name: "sym", Kind: ir.FunctionSymbol}
	assert.True(t, rule.SuppressesFunctionSymbol(function, AddedFunction, nil))
}
