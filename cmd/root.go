package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abi-scope/abiscope/cmd/check"
	"github.com/abi-scope/abiscope/cmd/symbols"
	"github.com/abi-scope/abiscope/cmd/version"
	"github.com/abi-scope/abiscope/pkg/shared/config"
	"github.com/abi-scope/abiscope/pkg/shared/errors"
	"github.com/abi-scope/abiscope/pkg/shared/logger"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "abiscope [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Abiscope analyzes the ABI surface of ELF binaries.",
		Long: `Abiscope works with suppression specifications: declarative rule files
	that decide which ABI artifacts and which ABI changes are withheld from
	reports. It lints rule files and applies them to the exported symbols of
	ELF binaries.
	`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(check.CheckCmd)
	rootCmd.AddCommand(symbols.SymbolsCmd)
}

// Execute runs the root command and maps failures to process exit
// codes.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		var cmdErr *errors.CommandError
		if stderrors.As(err, &cmdErr) {
			return cmdErr.ExitCode
		}
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = "config.yml"
	}
	AppConfig, err = config.NewConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(AppConfig, "abiscope")
	check.Init(AppConfig, log)
	symbols.Init(AppConfig, log)
}
