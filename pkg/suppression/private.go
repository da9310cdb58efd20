package suppression

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// PrivateTypesSupprSpecLabel is the reserved label of the artificial
// type suppression synthesized from a list of public headers. Types
// matched by that rule are private: they are not part of the surface
// declared in the public headers.
const PrivateTypesSupprSpecLabel = "Artificial private types suppression specification"

// IsPrivateTypeSupprSpec reports whether s is the artificial
// private-type rule.
func IsPrivateTypeSupprSpec(s Suppression) bool {
	t := AsTypeSuppression(s)
	return t != nil && t.Label == PrivateTypesSupprSpecLabel
}

// headerSuffixes are the file extensions considered to declare public
// types when walking a headers directory.
var headerSuffixes = []string{".h", ".hh", ".hpp", ".hxx"}

func isHeaderFile(name string) bool {
	for _, suffix := range headerSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// GenSuppressionsFromPublicHeaders synthesizes the artificial
// private-type suppression from a directory of public headers: every
// type NOT declared in one of the headers found under headersRoot is
// suppressed and dropped from the IR.
func GenSuppressionsFromPublicHeaders(headersRoot string) (*TypeSuppression, error) {
	keep := map[string]struct{}{}
	err := filepath.WalkDir(headersRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isHeaderFile(d.Name()) {
			keep[d.Name()] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s := &TypeSuppression{
		SourceLocationsToKeep: keep,
	}
	s.Label = PrivateTypesSupprSpecLabel
	s.Artificial = true
	s.DropsArtifact = true
	return s, nil
}
