package check

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/abi-scope/abiscope/cmd/version"
	"github.com/abi-scope/abiscope/internal/sarifout"
	"github.com/abi-scope/abiscope/pkg/shared/config"
	"github.com/abi-scope/abiscope/pkg/shared/errors"
	"github.com/abi-scope/abiscope/pkg/shared/files"
	"github.com/abi-scope/abiscope/pkg/suppression"
)

// RunOptionsCheck holds the flags of the check command.
type RunOptionsCheck struct {
	Format     string
	OutputPath string
}

var (
	AppConfig    *config.Config
	logger       hclog.Logger
	checkOptions RunOptionsCheck

	exampleCheckUsage = `  # Lint a suppression specification
  abiscope check libfoo.suppr

  # Lint several files and write the diagnostics as SARIF
  abiscope check --format sarif -o report.sarif libfoo.suppr libbar.suppr`
)

// CheckCmd lints suppression specification files.
var CheckCmd = &cobra.Command{
	Use:                   "check [--format text|sarif] [--output/-o PATH] FILE...",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleCheckUsage,
	Short:                 "Parse suppression specifications and report every diagnostic",
	RunE:                  runCheckCommand,
}

// Init wires the global configuration and logger into the command.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func init() {
	CheckCmd.Flags().StringVar(&checkOptions.Format, "format", "text", "diagnostics format: text or sarif")
	CheckCmd.Flags().StringVarP(&checkOptions.OutputPath, "output", "o", "", "write the report to a file instead of stdout")
}

func runCheckCommand(cmd *cobra.Command, args []string) error {
	if err := validateCheckArgs(&checkOptions, args); err != nil {
		logger.Error("invalid check arguments", "error", err)
		return errors.NewCommandError(fmt.Errorf("invalid check arguments: %w", err), 1)
	}

	var diags []suppression.Diagnostic
	rejected, accepted := 0, 0
	for _, path := range args {
		expanded, err := files.ExpandPath(path)
		if err != nil {
			return errors.NewCommandError(errors.NewSpecError(path, err), 2)
		}
		res, err := suppression.ReadSuppressionsFile(expanded)
		if err != nil {
			logger.Error("failed to read suppression specification", "path", expanded, "error", err)
			return errors.NewCommandError(errors.NewSpecError(expanded, err), 2)
		}
		logger.Debug("parsed suppression specification",
			"path", expanded,
			"rules", len(res.Suppressions),
			"rejected_sections", res.RejectedSections)
		diags = append(diags, res.Diagnostics...)
		rejected += res.RejectedSections
		accepted += len(res.Suppressions)
	}

	out, closeOut, err := openOutput(checkOptions.OutputPath)
	if err != nil {
		return errors.NewCommandError(err, 2)
	}
	defer closeOut()

	switch checkOptions.Format {
	case "sarif":
		if err := sarifout.WriteReport(out, version.CoreVersion, diags); err != nil {
			return errors.NewCommandError(fmt.Errorf("failed to write SARIF report: %w", err), 2)
		}
	default:
		for _, d := range diags {
			fmt.Fprintln(out, d.String())
		}
		fmt.Fprintf(out, "%d rule(s) accepted, %d section(s) rejected, %d warning(s)\n",
			accepted, rejected, len(diags))
	}

	if rejected > 0 {
		return errors.NewCommandError(fmt.Errorf("%d suppression section(s) rejected", rejected), 1)
	}
	return nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
