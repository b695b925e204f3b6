package main

import (
	"context"
	"fmt"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/ObscureBrandon/toyc/pkg/driver"
	"github.com/ObscureBrandon/toyc/pkg/lexer"
	"github.com/ObscureBrandon/toyc/pkg/source"
)

func main() {
	tokensCmd := &cli.Command{
		Name:        "tokens",
		Description: "dump the token stream of source files",
		Action:      tokensAct,
		Args:        cli.Args{},
	}

	parseCmd := &cli.Command{
		Name:        "parse",
		Description: "parse source files and print the syntax tree",
		Action:      parseAct,
		Args:        cli.Args{},
	}

	icgCmd := &cli.Command{
		Name:        "icg",
		Description: "lower source files to three-address code",
		Action:      icgAct,
		Args:        cli.Args{},
	}

	optimizeCmd := &cli.Command{
		Name:        "optimize",
		Description: "lower and optimize, printing TAC and statistics",
		Action:      optimizeAct,
		Args:        cli.Args{},
	}

	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "run the full pipeline down to two-register assembly",
		Action:      compileAct,
		Args:        cli.Args{},
	}

	runCmd := &cli.Command{
		Name:        "run",
		Description: "compile and execute directly on the AST interpreter",
		Action:      runAct,
		Args:        cli.Args{},
	}

	app := &cli.Command{
		Name:        "toyc",
		Description: "toyc is a compiler for the Toy imperative language",
		Commands: []*cli.Command{
			tokensCmd,
			parseCmd,
			icgCmd,
			optimizeCmd,
			compileCmd,
			runCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func newContext() context.Context {
	return tlog.ContextWithSpan(context.Background(), tlog.Root())
}

func newCompiler() (*driver.Compiler, driver.Config, error) {
	cfg, err := driver.LoadConfigIfPresent(".")
	if err != nil {
		return nil, cfg, errors.Wrap(err, "load config")
	}
	return driver.NewCompiler(cfg), cfg, nil
}

func tokensAct(c *cli.Command) error {
	for _, a := range c.Args {
		sf, err := source.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		l := lexer.NewLexerFromSource(sf)
		for tok := l.NextToken(); tok.Type != lexer.EOF; tok = l.NextToken() {
			fmt.Printf("%d:%d\t%s\t%q\n", tok.Line, tok.Column, tok.Type, tok.Literal)
		}
	}
	return nil
}

func parseAct(c *cli.Command) error {
	comp, _, err := newCompiler()
	if err != nil {
		return err
	}
	ctx := newContext()

	for _, a := range c.Args {
		result, err := comp.CompileFile(ctx, a)
		if err != nil {
			reportErrors(result)
			return errors.Wrap(err, "parse %v", a)
		}
		fmt.Println(result.Program.String())
	}
	return nil
}

func icgAct(c *cli.Command) error {
	comp, _, err := newCompiler()
	if err != nil {
		return err
	}
	ctx := newContext()

	for _, a := range c.Args {
		result, err := comp.CompileFile(ctx, a)
		if err != nil {
			reportErrors(result)
			return errors.Wrap(err, "compile %v", a)
		}
		printTAC(a, result.TAC, result.IdentifierMap)
	}
	return nil
}

func optimizeAct(c *cli.Command) error {
	comp, _, err := newCompiler()
	if err != nil {
		return err
	}
	ctx := newContext()

	for _, a := range c.Args {
		result, err := comp.CompileFile(ctx, a)
		if err != nil {
			reportErrors(result)
			return errors.Wrap(err, "compile %v", a)
		}
		printTAC(a, result.Optimized, result.IdentifierMap)
		printStats(result.Stats)
	}
	return nil
}

func compileAct(c *cli.Command) error {
	comp, cfg, err := newCompiler()
	if err != nil {
		return err
	}
	ctx := newContext()

	for _, a := range c.Args {
		result, err := comp.CompileFile(ctx, a)
		if err != nil {
			reportErrors(result)
			return errors.Wrap(err, "compile %v", a)
		}

		if cfg.Output.TAC {
			printTAC(a, result.Optimized, result.IdentifierMap)
		}
		printAssembly(a, result.Assembly)
		if cfg.Output.Stats {
			printStats(result.Stats)
		}
	}
	return nil
}

func runAct(c *cli.Command) error {
	comp, _, err := newCompiler()
	if err != nil {
		return err
	}
	ctx := newContext()

	for _, a := range c.Args {
		sf, err := source.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		result, run, err := comp.Execute(ctx, sf)
		if err != nil {
			reportErrors(result)
			return errors.Wrap(err, "run %v", a)
		}
		for _, v := range run.Output {
			fmt.Println(formatValue(v))
		}
	}
	return nil
}
