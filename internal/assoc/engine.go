package assoc

import (
	"fmt"

	"martianoff/assocgen/assocerr"
)

// Options tunes synthesis.
type Options struct {
	// Strict rejects non-optional reverse functions that have neither a
	// wildcard association nor a default body, instead of generating a
	// function that panics on unmatched input.
	Strict bool
}

// Engine synthesizes dispatch functions for tagged unions.
type Engine struct {
	opts Options
}

// NewEngine creates an Engine.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Synthesize builds every function declared on u. A structural problem
// is fatal; otherwise each function is synthesized independently, stops at
// its first error, and all errors are returned together.
func (e *Engine) Synthesize(u *TaggedUnionDecl) (*ImplBlock, error) {
	if err := checkStructure(u); err != nil {
		return nil, err
	}

	errs := &assocerr.MultiError{}
	var decls []*DeclaredFunction
	declared := make(map[string]bool)
	for _, a := range u.Functions {
		fn, err := ParseSignature(u, a)
		if err != nil {
			errs.Add(err)
			continue
		}
		if declared[fn.Name] {
			errs.Add(assocerr.NewAt(assocerr.TypeSignatureParse, a.Pos,
				fmt.Sprintf("function %s is declared more than once on %s", fn.Name, u.Name)).In(u.Name, "", fn.Name))
			continue
		}
		declared[fn.Name] = true
		decls = append(decls, fn)
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	if err := checkBindings(u, declared); err != nil {
		return nil, err
	}

	block := &ImplBlock{Union: u}
	for _, fn := range decls {
		f, err := e.synthesizeFunction(u, fn)
		if err != nil {
			errs.Add(err)
			continue
		}
		block.Functions = append(block.Functions, f)
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return block, nil
}

func (e *Engine) synthesizeFunction(u *TaggedUnionDecl, fn *DeclaredFunction) (*Function, error) {
	f := &Function{
		Decl:      fn,
		Direction: Classify(fn),
		Optional:  DetectOptional(fn.Results),
	}
	var err error
	switch f.Direction {
	case Forward:
		f.Arms, err = buildForwardArms(u, fn, f.Optional)
		f.Tail = forwardTail(u, fn, f.Optional)
	case Reverse:
		f.Arms, f.Tail, err = buildReverseArms(u, fn, f.Optional, reverseOptions{strict: e.opts.Strict})
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func checkStructure(u *TaggedUnionDecl) error {
	if u.Kind != EnumUnion && u.Kind != SealedUnion {
		return assocerr.NewAt(assocerr.TypeStructural, u.Pos,
			fmt.Sprintf("%s is not a tagged union", u.Name)).In(u.Name, "", "")
	}
	if len(u.Variants) == 0 {
		return assocerr.NewAt(assocerr.TypeStructural, u.Pos,
			fmt.Sprintf("%s %s has no variants", u.Kind, u.Name)).In(u.Name, "", "")
	}
	return nil
}
