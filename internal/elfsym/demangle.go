package elfsym

import "github.com/ianlancetaylor/demangle"

// Demangle returns the human-readable form of a mangled C++ symbol
// name, or the name unchanged when it does not demangle.
func Demangle(name string) string {
	return demangle.Filter(name)
}
