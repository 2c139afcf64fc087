package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [packages]",
	Short: "Verify that generated files are up to date",
	Long: `Check regenerates every file in memory and compares it with the file on
disk. Stale or missing files are reported with a diff and the command
exits with a non-zero status. Nothing is written.

Examples:
  assocgen check ./...`,
	Args: cobra.ArbitraryArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringSliceVarP(&genTypes, "type", "t", nil, "Comma-separated union type names (default: every annotated type)")
	checkCmd.Flags().StringVar(&genSuffix, "suffix", "", "Generated file name suffix (default _assoc.go)")
	checkCmd.Flags().BoolVar(&genStrict, "strict", false, "Reject reverse functions without a fallback")
	checkCmd.Flags().BoolVar(&genChanged, "changed", false, "Only process packages with uncommitted changes")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, printer, err := setup(cmd, cwd)
	if err != nil {
		return err
	}

	outputs, genErr := generate(cwd, args, cfg, printer)
	stale := 0
	for _, out := range outputs {
		existing, err := os.ReadFile(out.Path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", out.Path, err)
		}
		if string(existing) == string(out.Content) {
			printer.Infof("%s is up to date", relPath(cwd, out.Path))
			continue
		}
		stale++
		printer.Diff(relPath(cwd, out.Path), string(existing), string(out.Content))
	}

	if genErr != nil {
		printer.Error(genErr)
		return errReported
	}
	if stale > 0 {
		printer.Warnf("%d generated file(s) out of date, run assocgen", stale)
		return errReported
	}
	return nil
}
