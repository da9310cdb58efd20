package symbols

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/abi-scope/abiscope/internal/elfsym"
	"github.com/abi-scope/abiscope/pkg/ir"
	"github.com/abi-scope/abiscope/pkg/shared/config"
	"github.com/abi-scope/abiscope/pkg/shared/errors"
	"github.com/abi-scope/abiscope/pkg/shared/files"
	"github.com/abi-scope/abiscope/pkg/suppression"
)

// RunOptionsSymbols holds the flags of the symbols command.
type RunOptionsSymbols struct {
	SupprPaths  []string
	ShowDropped bool
	NoDemangle  bool
}

var (
	AppConfig      *config.Config
	logger         hclog.Logger
	symbolsOptions RunOptionsSymbols

	exampleSymbolsUsage = `  # List the exported symbols of a shared library
  abiscope symbols /usr/lib/libfoo.so.3

  # Apply drop-annotated suppression rules while listing
  abiscope symbols --suppr libfoo.suppr /usr/lib/libfoo.so.3

  # Show what the rules dropped instead of what they kept
  abiscope symbols --suppr libfoo.suppr --dropped /usr/lib/libfoo.so.3`
)

// SymbolsCmd lists the exported ELF symbols of a binary, optionally
// filtered through suppression specifications.
var SymbolsCmd = &cobra.Command{
	Use:                   "symbols [--suppr FILE]... [--dropped] BINARY",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleSymbolsUsage,
	Short:                 "List exported ELF symbols, applying suppression specifications",
	RunE:                  runSymbolsCommand,
}

// Init wires the global configuration and logger into the command.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func init() {
	SymbolsCmd.Flags().StringSliceVar(&symbolsOptions.SupprPaths, "suppr", nil, "suppression specification file, repeatable")
	SymbolsCmd.Flags().BoolVar(&symbolsOptions.ShowDropped, "dropped", false, "show the symbols dropped by the rules instead of the kept ones")
	SymbolsCmd.Flags().BoolVar(&symbolsOptions.NoDemangle, "no-demangle", false, "print mangled names only")
}

func runSymbolsCommand(cmd *cobra.Command, args []string) error {
	if err := validateSymbolsArgs(&symbolsOptions, args); err != nil {
		logger.Error("invalid symbols arguments", "error", err)
		return errors.NewCommandError(fmt.Errorf("invalid symbols arguments: %w", err), 1)
	}

	rules, err := loadSuppressions(&symbolsOptions)
	if err != nil {
		return errors.NewCommandError(err, 2)
	}

	binaryPath, err := files.ExpandPath(args[0])
	if err != nil {
		return errors.NewCommandError(err, 2)
	}

	if fs := suppression.FileIsSuppressed(binaryPath, rules); fs != nil {
		label := fs.Label
		if label == "" {
			label = "a [suppress_file] rule"
		}
		fmt.Printf("%s: file suppressed by %s\n", binaryPath, label)
		return nil
	}

	bin, err := elfsym.Read(binaryPath)
	if err != nil {
		logger.Error("failed to read binary", "path", binaryPath, "error", err)
		return errors.NewCommandError(err, 2)
	}
	logger.Debug("read binary", "path", bin.Path, "soname", bin.Soname, "symbols", len(bin.Symbols))

	printSymbols(bin, rules, &symbolsOptions)
	return nil
}

// loadSuppressions reads every rule file named by the flags and the
// configuration, in that order.
func loadSuppressions(options *RunOptionsSymbols) ([]suppression.Suppression, error) {
	paths := append([]string{}, options.SupprPaths...)
	if AppConfig != nil {
		paths = append(paths, AppConfig.Suppressions.DefaultPaths...)
	}

	var rules []suppression.Suppression
	for _, path := range paths {
		expanded, err := files.ExpandPath(path)
		if err != nil {
			return nil, errors.NewSpecError(path, err)
		}
		res, err := suppression.ReadSuppressionsFile(expanded)
		if err != nil {
			return nil, errors.NewSpecError(expanded, err)
		}
		for _, d := range res.Diagnostics {
			logger.Warn(d.Message, "path", d.Path, "line", d.Line)
		}
		rules = append(rules, res.Suppressions...)
	}
	return rules, nil
}

func printSymbols(bin *elfsym.Binary, rules []suppression.Suppression, options *RunOptionsSymbols) {
	symbols := append([]*ir.Symbol{}, bin.Symbols...)
	sort.Slice(symbols, func(i, j int) bool { return symbols[i].Name < symbols[j].Name })

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	defer w.Flush()

	if bin.Soname != "" {
		fmt.Fprintf(w, "# soname: %s\n", bin.Soname)
	}
	for _, sym := range symbols {
		dropped := suppression.SymbolIsSuppressed(rules, sym.Name, sym.Kind, true)
		if dropped != options.ShowDropped {
			continue
		}

		name := sym.Name
		if !options.NoDemangle {
			if demangled := elfsym.Demangle(sym.Name); demangled != sym.Name {
				name = fmt.Sprintf("%s [%s]", sym.Name, demangled)
			}
		}
		version := sym.Version.String()
		if version != "" && sym.Version.Default {
			version = "@@" + version
		} else if version != "" {
			version = "@" + version
		}

		marker := ""
		if !sym.IsMainSymbol() {
			marker = fmt.Sprintf(" (alias of %s)", sym.MainSymbol().Name)
		}
		fmt.Fprintf(w, "%s\t%s%s%s\n", sym.Kind, name, version, marker)
	}
}
