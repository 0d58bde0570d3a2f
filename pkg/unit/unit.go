// Package unit drives the CFG phase for whole source files: it parses a
// file, builds the graph of every function in it, and merges empty blocks.
package unit

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/l3aro/tscfg/internal/log"
	"github.com/l3aro/tscfg/pkg/ast"
	"github.com/l3aro/tscfg/pkg/cfg"
	"github.com/l3aro/tscfg/pkg/tsparse"
	"golang.org/x/sync/errgroup"
)

// ErrFunctionNotFound is returned by Find when no function has the name.
var ErrFunctionNotFound = errors.New("function not found")

// Options controls how a unit is built.
type Options struct {
	// NoMerge keeps the graph exactly as the builder produced it.
	NoMerge bool
	Logger  log.Logger
}

func (o Options) logger() log.Logger {
	if o.Logger == nil {
		return log.Nop()
	}
	return o.Logger
}

// Unit is one parsed source file together with its graph. The graph is
// read-only once Load returns.
type Unit struct {
	Path    string
	Program *ast.Program
	CFG     *cfg.CFG
}

// Load parses the file at path and builds every function it declares into a
// single graph.
func Load(ctx context.Context, path string, opts Options) (*Unit, error) {
	prog, err := tsparse.ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	u := FromProgram(path, prog, opts)
	opts.logger().Debug("built unit", "file", path, "functions", len(u.CFG.Functions()),
		"blocks", len(u.CFG.BasicBlocks()), "merged", u.CFG.Merged())
	return u, nil
}

// FromProgram builds the graph of an already parsed program.
func FromProgram(path string, prog *ast.Program, opts Options) *Unit {
	g := cfg.New()
	for _, fn := range ast.Functions(prog) {
		g.Build(fn)
	}
	if !opts.NoMerge {
		g.MergeEmptyBlocks()
	}
	return &Unit{Path: path, Program: prog, CFG: g}
}

// Find returns the first function named name, or the anonymous function
// whose generated name matches.
func (u *Unit) Find(name string) (*ast.Function, error) {
	for _, fn := range u.CFG.Functions() {
		if fn.Name == name || cfg.FunctionName(fn) == name {
			return fn, nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrFunctionNotFound, name, u.Path)
}

// Infos summarizes every function of the unit in declaration order.
func (u *Unit) Infos() []cfg.Info {
	fns := u.CFG.Functions()
	out := make([]cfg.Info, 0, len(fns))
	for _, fn := range fns {
		if info := u.CFG.Describe(fn); info != nil {
			out = append(out, *info)
		}
	}
	return out
}

// Result is the outcome of loading one file in LoadAll.
type Result struct {
	Path string
	Unit *Unit
	Err  error
}

// LoadAll loads paths concurrently with at most workers files in flight.
// Each file gets its own graph. Per-file failures are reported in the
// results; the returned error is only set when ctx is cancelled.
func LoadAll(ctx context.Context, paths []string, workers int, opts Options) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			u, err := Load(ctx, path, opts)
			if err != nil {
				opts.logger().Warn("skipping file", "file", path, "err", err)
			}
			results[i] = Result{Path: path, Unit: u, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
