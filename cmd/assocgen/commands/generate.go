package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"martianoff/assocgen/assocerr"
	"martianoff/assocgen/internal/config"
	"martianoff/assocgen/internal/diag"
	"martianoff/assocgen/internal/generator"
	"martianoff/assocgen/internal/loader"
	"martianoff/assocgen/internal/vcs"
)

var (
	genTypes   []string
	genOutput  string
	genSuffix  string
	genStrict  bool
	genChanged bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [packages]",
	Short: "Generate association functions",
	Long: `Generate writes one file per tagged union that declares functions.

Packages are Go package patterns resolved from the current directory;
none means the package in the current directory.

Examples:
  assocgen generate                  # Current package
  assocgen generate ./...            # Every package of the module
  assocgen generate -t Kind,Shape    # Only the named unions
  assocgen generate --changed ./...  # Only packages with uncommitted changes`,
	Args: cobra.ArbitraryArgs,
	RunE: runGenerate,
}

func init() {
	addGenerateFlags(generateCmd)
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&genTypes, "type", "t", nil, "Comma-separated union type names (default: every annotated type)")
	cmd.Flags().StringVarP(&genOutput, "output", "o", "", "Output file, only with a single --type")
	cmd.Flags().StringVar(&genSuffix, "suffix", "", "Generated file name suffix (default _assoc.go)")
	cmd.Flags().BoolVar(&genStrict, "strict", false, "Reject reverse functions without a fallback")
	cmd.Flags().BoolVar(&genChanged, "changed", false, "Only process packages with uncommitted changes")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, printer, err := setup(cmd, cwd)
	if err != nil {
		return err
	}
	if genOutput != "" && len(cfg.Types) != 1 {
		return fmt.Errorf("--output requires exactly one --type")
	}

	outputs, genErr := generate(cwd, args, cfg, printer)
	if genOutput != "" && len(outputs) == 1 {
		outputs[0].Path = genOutput
		if !filepath.IsAbs(genOutput) {
			outputs[0].Path = filepath.Join(cwd, genOutput)
		}
	}

	for _, out := range outputs {
		existing, err := os.ReadFile(out.Path)
		if err == nil && bytes.Equal(existing, out.Content) {
			printer.Infof("%s is up to date", relPath(cwd, out.Path))
			continue
		}
		if err := os.WriteFile(out.Path, out.Content, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out.Path, err)
		}
		printer.Printf("Generated %s", relPath(cwd, out.Path))
	}

	if genErr != nil {
		printer.Error(genErr)
		return errReported
	}
	return nil
}

// generate runs the pipeline over every selected package. Errors of one
// package do not stop the others.
func generate(dir string, patterns []string, cfg *config.Config, printer *diag.Printer) ([]generator.Output, error) {
	pkgs, err := loadPackages(dir, patterns, printer)
	if err != nil {
		return nil, err
	}

	pipeline := generator.NewPipeline(generator.Options{
		Suffix: cfg.Suffix,
		Strict: cfg.Strict,
	})
	errs := &assocerr.MultiError{}
	var outputs []generator.Output
	for _, pkg := range pkgs {
		printer.Infof("processing %s", pkg.Dir)
		out, err := pipeline.Run(pkg, cfg.Types)
		errs.Add(err)
		if len(out) == 0 && err == nil {
			printer.Infof("no tagged unions with functions in %s", pkg.Dir)
		}
		outputs = append(outputs, out...)
	}
	return outputs, errs.ErrOrNil()
}

// loadPackages resolves patterns and parses each package, honoring
// --changed.
func loadPackages(dir string, patterns []string, printer *diag.Printer) ([]*loader.Package, error) {
	infos, err := loader.Discover(dir, patterns...)
	if err != nil {
		return nil, err
	}

	var changes *vcs.Changes
	if genChanged {
		if changes, err = vcs.Changed(dir, config.FileName); err != nil {
			return nil, err
		}
	}

	var pkgs []*loader.Package
	for _, info := range infos {
		if changes != nil && !changes.Includes(info.Dir) {
			printer.Infof("skipping %s: no changes", info.Path)
			continue
		}
		pkg, err := loader.ParseFiles(info.Files)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", info.Path, err)
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}

func relPath(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}
