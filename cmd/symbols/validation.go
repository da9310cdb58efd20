package symbols

import (
	"fmt"

	"github.com/abi-scope/abiscope/pkg/shared/files"
)

// validateSymbolsArgs validates the arguments provided to the symbols command.
func validateSymbolsArgs(options *RunOptionsSymbols, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one binary path is required")
	}

	expanded, err := files.ExpandPath(args[0])
	if err != nil {
		return fmt.Errorf("failed to expand path %q: %w", args[0], err)
	}
	if err := files.ValidatePath(expanded); err != nil {
		return fmt.Errorf("binary path is not readable: %w", err)
	}

	for _, path := range options.SupprPaths {
		expanded, err := files.ExpandPath(path)
		if err != nil {
			return fmt.Errorf("failed to expand path %q: %w", path, err)
		}
		if err := files.ValidatePath(expanded); err != nil {
			return fmt.Errorf("suppression specification is not readable: %w", err)
		}
	}

	return nil
}
