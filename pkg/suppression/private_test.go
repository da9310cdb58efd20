package suppression

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abi-scope/abiscope/pkg/ir"
)

func TestGenSuppressionsFromPublicHeaders(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "nested"), 0o755))
	for _, name := range []string{"api.h", "types.hpp", "nested/extra.hh", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("// header\n"), 0o644))
	}

	rule, err := GenSuppressionsFromPublicHeaders(root)
	require.NoError(t, err)

	assert.Equal(t, PrivateTypesSupprSpecLabel, rule.Label)
	assert.True(t, rule.Artificial)
	assert.True(t, rule.DropsArtifact)
	assert.True(t, IsPrivateTypeSupprSpec(rule))

	assert.Contains(t, rule.SourceLocationsToKeep, "api.h")
	assert.Contains(t, rule.SourceLocationsToKeep, "types.hpp")
	assert.Contains(t, rule.SourceLocationsToKeep, "extra.hh")
	assert.NotContains(t, rule.SourceLocationsToKeep, "notes.txt")

	public := &ir.ClassType{Name: "api::thing", Loc: ir.Location{Path: "include/api.h", Line: 2}}
	assert.False(t, rule.SuppressesType(public, nil))

	hidden := &ir.ClassType{Name: "impl::thing", Loc: ir.Location{Path: "src/impl.h", Line: 2}}
	assert.True(t, rule.SuppressesType(hidden, nil))
}

func TestRuleSetIsConcurrencySafe(t *testing.T) {
	rules := parseRules(t, `
[suppress_type]
name_regexp = ^std::.*

[suppress_function]
symbol_name_regexp = ^_ZSt.*
`)
	node := typeDiffOf("std::string", "")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				suppressed, _ := IsDiffSuppressed(rules, node, nil)
				if !suppressed {
					t.Error("expected suppression")
					return
				}
			}
		}()
	}
	wg.Wait()
}
