package generator

import (
	"path/filepath"

	"martianoff/assocgen/assocerr"
	"martianoff/assocgen/internal/assoc"
	"martianoff/assocgen/internal/loader"
)

// Options configures a Pipeline.
type Options struct {
	// Suffix names generated files: lower-cased union name + Suffix.
	Suffix string
	Strict bool
}

// Output is one generated file.
type Output struct {
	Union   string
	Path    string
	Content []byte
}

// Pipeline orchestrates union discovery, synthesis and rendering.
type Pipeline struct {
	engine    *assoc.Engine
	generator CodeGenerator
	suffix    string
}

// NewPipeline creates a Pipeline with its dependencies.
func NewPipeline(opts Options) *Pipeline {
	return &Pipeline{
		engine:    assoc.NewEngine(assoc.Options{Strict: opts.Strict}),
		generator: NewGoCodeGenerator(opts.Suffix),
		suffix:    opts.Suffix,
	}
}

// Run generates one file per union of pkg that declares functions. Unions
// are processed independently and every error is returned together with
// the files that could be generated.
func (p *Pipeline) Run(pkg *loader.Package, types []string) ([]Output, error) {
	errs := &assocerr.MultiError{}

	unions, err := loader.FindUnions(pkg, types)
	errs.Add(err)

	var outputs []Output
	for _, u := range unions {
		if len(u.Functions) == 0 {
			continue
		}
		block, err := p.engine.Synthesize(u)
		if err != nil {
			errs.Add(err)
			continue
		}
		content, err := p.generator.Generate(pkg.Name, block)
		if err != nil {
			errs.Add(err)
			continue
		}
		outputs = append(outputs, Output{
			Union:   u.Name,
			Path:    filepath.Join(filepath.Dir(u.Pos.Filename), Filename(u.Name, p.suffix)),
			Content: content,
		})
	}
	return outputs, errs.ErrOrNil()
}
