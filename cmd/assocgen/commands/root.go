// Package commands provides the CLI commands for the assocgen tool.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"martianoff/assocgen/internal/config"
	"martianoff/assocgen/internal/diag"
)

// errReported signals a failure whose diagnostics were already printed.
var errReported = errors.New("generation failed")

// Global flags.
var (
	configPath string
	colorMode  string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "assocgen [packages]",
	Short: "Generate association functions for tagged unions",
	Long: `assocgen generates forward and reverse association functions for
tagged unions declared with //assoc:func and //assoc:bind directives.

A tagged union is either a set of typed constants (enum) or an interface
with a single unexported marker method (sealed interface). Each union that
declares functions gets one generated file next to its declaration.

Usage:
  assocgen                      Generate for the package in the current directory
  assocgen ./...                Generate for every package of the module
  assocgen -t Kind -o kind.go   Generate a single union into a chosen file
  assocgen check ./...          Verify that generated files are up to date
  assocgen version              Print version

Typically invoked through go generate:
  //go:generate assocgen`,
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runGenerate,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to "+config.FileName+" (default: nearest one upwards)")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "", "Colorize output: auto, always or never")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	// The root command generates, so it carries the generate flags too.
	addGenerateFlags(rootCmd)
}

// setup loads the configuration for dir, applies command-line overrides
// and creates the printer.
func setup(cmd *cobra.Command, dir string) (*config.Config, *diag.Printer, error) {
	cfg, err := config.Load(dir, configPath)
	if err != nil {
		return nil, nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("suffix") {
		cfg.Suffix = genSuffix
	}
	if flags.Changed("strict") {
		cfg.Strict = genStrict
	}
	if flags.Changed("type") {
		cfg.Types = genTypes
	}
	if colorMode != "" {
		cfg.Color = colorMode
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	printer := diag.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Color, verbose)
	if cfg.Path != "" {
		printer.Infof("using config %s", cfg.Path)
	}
	return cfg, printer, nil
}
