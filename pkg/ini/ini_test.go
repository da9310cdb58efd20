package ini

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSectionsAndProperties(t *testing.T) {
	input := `
# leading comment
[suppress_type]
name = std::vector    ; trailing comment
name_regexp = ^std::.*

[suppress_function]
label = some functions
parameter = '0 int
parameter = '1 /char.*/
`
	cfg, err := Read(strings.NewReader(input), "test.ini")
	require.NoError(t, err)
	require.Len(t, cfg.Sections, 2)

	first := cfg.Sections[0]
	assert.Equal(t, "suppress_type", first.Name)
	require.NotNil(t, first.FindProperty("name"))
	assert.Equal(t, "std::vector", first.FindProperty("name").Value.String())
	assert.Equal(t, "^std::.*", first.FindProperty("name_regexp").Value.String())

	second := cfg.Sections[1]
	assert.Equal(t, "suppress_function", second.Name)
	assert.Equal(t, "some functions", second.FindProperty("label").Value.String())
	assert.Len(t, second.FindProperties("parameter"), 2)
}

func TestReadPropertyLines(t *testing.T) {
	input := "[s]\na = 1\nb = 2\n\n[u]\nc = 3\n"
	cfg, err := Read(strings.NewReader(input), "")
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Sections[0].Line)
	assert.Equal(t, 2, cfg.Sections[0].FindProperty("a").Line)
	assert.Equal(t, 3, cfg.Sections[0].FindProperty("b").Line)
	assert.Equal(t, 6, cfg.Sections[1].FindProperty("c").Line)
}

func TestReadValueShapes(t *testing.T) {
	input := `[s]
scalar = hello world
quoted = "a, b # c"
list = red, green, blue
braced = {red, blue}
pair = {0, end}
nested = {{8, 24}, {32, 64}, {128, end}}
`
	cfg, err := Read(strings.NewReader(input), "")
	require.NoError(t, err)
	sec := cfg.Sections[0]

	scalar, ok := sec.FindProperty("scalar").Value.(*StringValue)
	require.True(t, ok)
	assert.Equal(t, "hello world", scalar.Content)

	quoted, ok := sec.FindProperty("quoted").Value.(*StringValue)
	require.True(t, ok)
	assert.Equal(t, "a, b # c", quoted.Content)

	list, ok := sec.FindProperty("list").Value.(*ListValue)
	require.True(t, ok)
	assert.Equal(t, []string{"red", "green", "blue"}, list.Items)

	// A braced scalar group reads as a tuple wrapping one list.
	braced, ok := sec.FindProperty("braced").Value.(*TupleValue)
	require.True(t, ok)
	require.Len(t, braced.Items, 1)
	assert.Equal(t, []string{"red", "blue"}, braced.Items[0].(*ListValue).Items)

	pair, ok := sec.FindProperty("pair").Value.(*TupleValue)
	require.True(t, ok)
	require.Len(t, pair.Items, 1)
	assert.Equal(t, []string{"0", "end"}, pair.Items[0].(*ListValue).Items)

	nested, ok := sec.FindProperty("nested").Value.(*TupleValue)
	require.True(t, ok)
	require.Len(t, nested.Items, 3)
	inner, ok := nested.Items[2].(*TupleValue)
	require.True(t, ok)
	require.Len(t, inner.Items, 1)
	assert.Equal(t, []string{"128", "end"}, inner.Items[0].(*ListValue).Items)
}

func TestReadMultilineBracedValue(t *testing.T) {
	input := "[s]\nranges = {{8, 24},\n           {32, 64}}\n"
	cfg, err := Read(strings.NewReader(input), "")
	require.NoError(t, err)
	tuple, ok := cfg.Sections[0].FindProperty("ranges").Value.(*TupleValue)
	require.True(t, ok)
	assert.Len(t, tuple.Items, 2)
}

func TestReadStructuralErrors(t *testing.T) {
	var tests = []struct {
		name  string
		input string
	}{
		{"property outside section", "a = b\n"},
		{"missing equals", "[s]\njust a line\n"},
		{"unterminated section", "[s\n"},
		{"empty section name", "[]\n"},
		{"unbalanced braces", "[s]\na = {1, 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), "bad.ini")
			assert.Error(t, err)
		})
	}
}

func TestReadFunctionCallExpr(t *testing.T) {
	expr, err := ReadFunctionCallExpr("offset_of(member_one)")
	require.NoError(t, err)
	assert.Equal(t, "offset_of", expr.Name)
	assert.Equal(t, []string{"member_one"}, expr.Args)

	expr, err = ReadFunctionCallExpr("f(a, b, c)")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, expr.Args)

	expr, err = ReadFunctionCallExpr("nullary()")
	require.NoError(t, err)
	assert.Empty(t, expr.Args)

	for _, bad := range []string{"", "no_parens", "(args)", "1bad(x)", "open(x"} {
		_, err := ReadFunctionCallExpr(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestFormatSectionRoundTrip(t *testing.T) {
	input := `[suppress_type]
name = S
changed_enumerators = red, blue
has_data_members_inserted_between = {{8, 24}, {32, end}}
`
	cfg, err := Read(strings.NewReader(input), "")
	require.NoError(t, err)

	rendered := FormatSection(cfg.Sections[0])
	cfg2, err := Read(strings.NewReader(rendered), "")
	require.NoError(t, err)

	sec, sec2 := cfg.Sections[0], cfg2.Sections[0]
	require.Len(t, sec2.Properties, len(sec.Properties))
	for i, p := range sec.Properties {
		assert.Equal(t, p.Name, sec2.Properties[i].Name)
		assert.Equal(t, p.Value.String(), sec2.Properties[i].Value.String())
	}
}
