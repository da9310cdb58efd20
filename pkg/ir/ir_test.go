package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolAliasRing(t *testing.T) {
	main := &Symbol{Name: "_ZN3foo3barEv", Kind: FunctionSymbol, Value: 0x1000}
	a1 := &Symbol{Name: "_ZN3foo3bazEv", Kind: FunctionSymbol, Value: 0x1000}
	a2 := &Symbol{Name: "_ZN3foo4quuxEv", Kind: FunctionSymbol, Value: 0x1000}
	main.AddAlias(a1)
	main.AddAlias(a2)

	assert.True(t, main.IsMainSymbol())
	assert.False(t, a1.IsMainSymbol())
	assert.True(t, main.HasAliases())
	assert.True(t, a1.HasAliases())
	assert.Same(t, main, a2.MainSymbol())

	names := []string{}
	for a := main.NextAlias(); a != nil && !a.IsMainSymbol(); a = a.NextAlias() {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"_ZN3foo3bazEv", "_ZN3foo4quuxEv"}, names)

	require.NotNil(t, main.AliasByName("_ZN3foo4quuxEv"))
	require.NotNil(t, a1.AliasByName("_ZN3foo3barEv"))
	assert.Nil(t, main.AliasByName("_ZN4quux3barEv"))
}

func TestSymbolWithoutAliases(t *testing.T) {
	s := &Symbol{Name: "lonely", Kind: VariableSymbol}
	assert.True(t, s.IsMainSymbol())
	assert.False(t, s.HasAliases())
	assert.Empty(t, s.Aliases())
	// NextAlias of an alias-less main symbol must come straight back
	// to the main symbol so walks terminate.
	assert.Same(t, s, s.NextAlias())
}

func TestParameterFromNonImplicit(t *testing.T) {
	intType := &BasicType{Name: "int", Size: 32}
	charPtr := &PointerType{Pointee: &BasicType{Name: "char", Size: 8}, Size: 64}
	fn := &FunctionDecl{
		Name: "foo::method",
		Parameters: []*Parameter{
			{Name: "this", Type: charPtr, Artificial: true},
			{Name: "a", Type: intType},
			{Name: "b", Type: charPtr},
		},
	}

	require.NotNil(t, fn.ParameterFromNonImplicit(0))
	assert.Equal(t, "a", fn.ParameterFromNonImplicit(0).Name)
	assert.Equal(t, "b", fn.ParameterFromNonImplicit(1).Name)
	assert.Nil(t, fn.ParameterFromNonImplicit(2))
}

func TestQualifiedNames(t *testing.T) {
	char := &BasicType{Name: "char", Size: 8}
	assert.Equal(t, "char*", (&PointerType{Pointee: char}).QualifiedName())
	assert.Equal(t, "char&", (&ReferenceType{Referenced: char}).QualifiedName())
	assert.Equal(t, "char&&", (&ReferenceType{Referenced: char, RValue: true}).QualifiedName())
	assert.Equal(t, "const char", (&QualifiedType{Underlying: char, Qualifiers: "const"}).QualifiedName())
}

func TestPeelHelpers(t *testing.T) {
	base := &ClassType{Name: "S", Size: 64}
	td := &TypedefType{Name: "S_t", Underlying: base}
	td2 := &TypedefType{Name: "S_tt", Underlying: td}

	assert.Same(t, td, PeelTypedef(td2))
	assert.Same(t, base, PeelTypedef(td))
	assert.Same(t, base, PeelTypedef(base))

	q := &QualifiedType{Underlying: &QualifiedType{Underlying: base, Qualifiers: "volatile"}, Qualifiers: "const"}
	assert.Same(t, base, PeelQualifiers(q))
}

func TestLastLaidOutMember(t *testing.T) {
	c := &ClassType{
		Name: "S",
		Members: []*DataMember{
			{Name: "a", OffsetInBits: 0, LaidOut: true},
			{Name: "b", OffsetInBits: 64, LaidOut: true},
			{Name: "static_like", LaidOut: false},
			{Name: "c", OffsetInBits: 32, LaidOut: true},
		},
	}
	require.NotNil(t, c.LastLaidOutMember())
	assert.Equal(t, "b", c.LastLaidOutMember().Name)

	empty := &ClassType{Name: "E"}
	assert.Nil(t, empty.LastLaidOutMember())
}

func TestTypedefSize(t *testing.T) {
	base := &BasicType{Name: "int", Size: 32}
	td := &TypedefType{Name: "int_t", Underlying: base}
	assert.Equal(t, uint64(32), td.SizeInBits())
}
