package suppression

import (
	"path/filepath"

	"github.com/abi-scope/abiscope/pkg/comparison"
)

// FileSuppression refuses to load whole binaries. It never matches a
// diff node; it matches file paths by their base name, and SONAMEs
// through the inherited pair.
type FileSuppression struct {
	Base
}

// Common returns the shared base fields.
func (s *FileSuppression) Common() *Base { return &s.Base }

// SuppressesDiff always reports false: a file suppression acts at load
// time, not on the comparison graph.
func (s *FileSuppression) SuppressesDiff(comparison.Diff, *comparison.Context) bool {
	return false
}

// SuppressesFile reports whether the base name of filePath is accepted
// by the file-name regex pair. A rule with no file-name-related
// property suppresses nothing.
func (s *FileSuppression) SuppressesFile(filePath string) bool {
	if filePath == "" {
		return false
	}
	return s.MatchesBinaryName(filepath.Base(filePath))
}

// FileIsSuppressed returns the first file suppression matching
// filePath, or nil when none does.
func FileIsSuppressed(filePath string, supprs []Suppression) *FileSuppression {
	for _, s := range supprs {
		if fs := AsFileSuppression(s); fs != nil && fs.SuppressesFile(filePath) {
			return fs
		}
	}
	return nil
}
