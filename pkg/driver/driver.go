// Package driver orchestrates the compilation pipeline: lex, parse,
// analyze, lower to three-address code, optimize, and generate target
// assembly. Each stage's output is kept on the Result so callers can
// inspect any intermediate form.
package driver

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/ObscureBrandon/toyc/pkg/codegen"
	toyerrors "github.com/ObscureBrandon/toyc/pkg/errors"
	"github.com/ObscureBrandon/toyc/pkg/icg"
	"github.com/ObscureBrandon/toyc/pkg/interp"
	"github.com/ObscureBrandon/toyc/pkg/optimizer"
	"github.com/ObscureBrandon/toyc/pkg/parser"
	"github.com/ObscureBrandon/toyc/pkg/semantic"
	"github.com/ObscureBrandon/toyc/pkg/source"
)

// Result carries every intermediate form of a compilation. Fields past
// the point of failure are left zero.
type Result struct {
	Source    *source.SourceFile
	Program   *parser.Program
	Annotated *parser.Program
	Symbols   semantic.SymbolTable

	TAC           []icg.Instruction
	Optimized     []icg.Instruction
	Stats         optimizer.Stats
	IdentifierMap map[string]string
	TypeMap       map[string]semantic.Type

	Assembly []codegen.AssemblyInstruction

	Errors []toyerrors.ToyError
}

// HasErrors reports whether compilation failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// Compiler runs the pipeline under a Config.
type Compiler struct {
	cfg Config
}

// NewCompiler creates a Compiler. A zero Config is usable; see
// DefaultConfig for what the defaults are.
func NewCompiler(cfg Config) *Compiler {
	return &Compiler{cfg: cfg}
}

// Compile runs the whole pipeline over a source file. The returned
// Result always carries whatever stages completed; the error is non-nil
// exactly when Result.Errors is non-empty.
func (c *Compiler) Compile(ctx context.Context, sf *source.SourceFile) (*Result, error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "compile", "file", sf.Name)
	defer tr.Finish()

	result := &Result{Source: sf}

	program, parseErrors := parser.ParseSource(sf)
	result.Program = program
	if len(parseErrors) != 0 {
		result.Errors = parseErrors
		tr.Printw("parse failed", "errors", len(parseErrors))
		return result, errors.New("parse: %d error(s)", len(parseErrors))
	}
	tr.Printw("parsed", "statements", len(program.Statements))

	result.Annotated, result.Symbols = semantic.NewAnalyzer().Analyze(program)
	tr.Printw("analyzed", "symbols", len(result.Symbols))

	gen := icg.NewGenerator(result.Symbols)
	result.TAC = gen.Generate(result.Annotated)
	result.IdentifierMap = gen.IdentifierMap()
	result.TypeMap = gen.TypeMap()
	tr.Printw("lowered", "instructions", len(result.TAC), "temps", gen.TempCount(), "labels", gen.LabelCount())

	if c.cfg.Optimize {
		result.Optimized, result.Stats = optimizer.NewOptimizer().Optimize(result.TAC)
		tr.Printw("optimized",
			"before", result.Stats.OriginalInstructionCount,
			"after", result.Stats.OptimizedInstructionCount,
			"reduction_pct", result.Stats.ReductionPercentage())
	} else {
		result.Optimized = result.TAC
	}

	if c.cfg.EmitAssembly {
		result.Assembly = codegen.NewGenerator(result.TypeMap).Generate(result.Optimized)
		tr.Printw("generated", "instructions", len(result.Assembly))
	}

	return result, nil
}

// CompileString compiles source text held in memory.
func (c *Compiler) CompileString(ctx context.Context, name, text string) (*Result, error) {
	return c.Compile(ctx, source.NewSourceFile(name, "", text))
}

// CompileFile reads and compiles a file from disk.
func (c *Compiler) CompileFile(ctx context.Context, path string) (*Result, error) {
	sf, err := source.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read %v", path)
	}
	return c.Compile(ctx, sf)
}

// Execute compiles and then runs the program directly on the AST
// interpreter, feeding reads from inputs.
func (c *Compiler) Execute(ctx context.Context, sf *source.SourceFile, inputs ...float64) (*Result, interp.Result, error) {
	result, err := c.Compile(ctx, sf)
	if err != nil {
		return result, interp.Result{}, err
	}
	run := interp.NewInterpreter(inputs...).Run(result.Annotated)

	tr := tlog.SpanFromContext(ctx)
	tr.Printw("executed", "variables", len(run.Variables), "output", len(run.Output))

	return result, run, nil
}
