package check

import "fmt"

// validateCheckArgs validates the arguments provided to the check command.
func validateCheckArgs(options *RunOptionsCheck, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one suppression specification file is required")
	}

	switch options.Format {
	case "text", "sarif":
	default:
		return fmt.Errorf("unknown format %q, expected 'text' or 'sarif'", options.Format)
	}

	return nil
}
