package interp

import (
	"math"
	"testing"

	"github.com/ObscureBrandon/toyc/pkg/icg"
	"github.com/ObscureBrandon/toyc/pkg/parser"
	"github.com/ObscureBrandon/toyc/pkg/semantic"
)

func run(t *testing.T, input string, inputs ...float64) Result {
	t.Helper()
	program, errs := parser.Parse(input)
	if len(errs) != 0 {
		t.Fatalf("parser errors for %q: %v", input, errs)
	}
	annotated, _ := semantic.NewAnalyzer().Analyze(program)
	return NewInterpreter(inputs...).Run(annotated)
}

func runTAC(t *testing.T, input string, inputs ...float64) Result {
	t.Helper()
	program, errs := parser.Parse(input)
	if len(errs) != 0 {
		t.Fatalf("parser errors for %q: %v", input, errs)
	}
	annotated, symbols := semantic.NewAnalyzer().Analyze(program)
	instructions := icg.NewGenerator(symbols).Generate(annotated)
	return NewEvaluator(inputs...).Run(instructions)
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		input string
		name  string
		want  float64
	}{
		{"x := 2 + 3 * 4;", "x", 14},
		{"x := (2 + 3) * 4;", "x", 20},
		{"x := 7 / 2;", "x", 3.5},
		{"x := 10 % 3;", "x", 1},
		{"x := 1.5 + 2;", "x", 3.5},
		{"x := 5 - 8;", "x", -3},
	}

	for _, tt := range tests {
		result := run(t, tt.input)
		if got := result.Variables[tt.name]; got != tt.want {
			t.Errorf("input %q: %s = %v, want %v", tt.input, tt.name, got, tt.want)
		}
	}
}

func TestDivisionByZero(t *testing.T) {
	result := run(t, "x := 1 / 0;")
	if !math.IsInf(result.Variables["x"], 1) {
		t.Errorf("x = %v, want +Inf", result.Variables["x"])
	}
}

func TestModuloByZero(t *testing.T) {
	result := run(t, "x := 1 % 0;")
	if result.Variables["x"] != 0 {
		t.Errorf("x = %v, want 0", result.Variables["x"])
	}
}

func TestModuloFollowsDivisorSign(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"x := 0 - 7; y := x % 3;", 2},
		{"x := 0 - 3; y := 7 % x;", -2},
	}
	for _, tt := range tests {
		result := run(t, tt.input)
		if got := result.Variables["y"]; got != tt.want {
			t.Errorf("input %q: y = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIfBranching(t *testing.T) {
	result := run(t, `x := 5;
	if (x > 3) then
		y := 1;
	else
		y := 2;
	end`)
	if result.Variables["y"] != 1 {
		t.Errorf("y = %v, want 1", result.Variables["y"])
	}

	result = run(t, `x := 2;
	if (x > 3) then
		y := 1;
	else
		y := 2;
	end`)
	if result.Variables["y"] != 2 {
		t.Errorf("y = %v, want 2", result.Variables["y"])
	}
}

func TestRepeatUntil(t *testing.T) {
	result := run(t, `x := 0;
	repeat
		x := x + 1;
	until x >= 5;`)
	if result.Variables["x"] != 5 {
		t.Errorf("x = %v, want 5", result.Variables["x"])
	}
}

func TestRepeatBodyRunsAtLeastOnce(t *testing.T) {
	result := run(t, `x := 100;
	repeat
		x := x + 1;
	until x > 0;`)
	if result.Variables["x"] != 101 {
		t.Errorf("x = %v, want 101", result.Variables["x"])
	}
}

func TestRunawayLoopIsCapped(t *testing.T) {
	result := run(t, `x := 0;
	repeat
		x := x + 1;
	until x < 0;`)
	if result.Variables["x"] != 1000 {
		t.Errorf("x = %v, want 1000 (iteration cap)", result.Variables["x"])
	}
}

func TestReadAndWrite(t *testing.T) {
	result := run(t, "read a; read b; write a + b;", 3, 4)
	if len(result.Output) != 1 || result.Output[0] != 7 {
		t.Errorf("output = %v, want [7]", result.Output)
	}
}

func TestReadDefaultsToZero(t *testing.T) {
	result := run(t, "read a; write a + 1;")
	if len(result.Output) != 1 || result.Output[0] != 1 {
		t.Errorf("output = %v, want [1]", result.Output)
	}
}

func TestUndefinedVariableDefaultsToZero(t *testing.T) {
	result := run(t, "x := y + 1;")
	if result.Variables["x"] != 1 {
		t.Errorf("x = %v, want 1", result.Variables["x"])
	}
}

func TestLogicalOperators(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"x := 1 && 1;", 1},
		{"x := 1 && 0;", 0},
		{"x := 0 || 1;", 1},
		{"x := 0 || 0;", 0},
		{"x := 1 < 2 && 3 < 4;", 1},
	}
	for _, tt := range tests {
		result := run(t, tt.input)
		if got := result.Variables["x"]; got != tt.want {
			t.Errorf("input %q: x = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// The AST walker and the TAC machine must agree on every observable:
// final user-variable values and write output.
func TestASTAndTACAgree(t *testing.T) {
	programs := []string{
		"x := 2 + 3 * 4; write x;",
		"x := 7 / 2; y := x * 2; write y;",
		`n := 5;
		f := 1;
		repeat
			f := f * n;
			n := n - 1;
		until n <= 1;
		write f;`,
		`read a;
		if (a % 2 == 0) then
			write 0;
		else
			write 1;
		end`,
		"x := 1.5; y := x + 2; write y;",
	}

	for _, src := range programs {
		astResult := run(t, src, 9)
		tacResult := runTAC(t, src, 9)

		if len(astResult.Output) != len(tacResult.Output) {
			t.Errorf("program %q: output lengths differ: AST %v, TAC %v", src, astResult.Output, tacResult.Output)
			continue
		}
		for i := range astResult.Output {
			if astResult.Output[i] != tacResult.Output[i] {
				t.Errorf("program %q: output[%d]: AST %v, TAC %v", src, i, astResult.Output[i], tacResult.Output[i])
			}
		}
	}
}

func TestTACControlFlow(t *testing.T) {
	result := runTAC(t, `x := 0;
	repeat
		x := x + 2;
	until x >= 10;
	if (x == 10) then
		y := 1;
	else
		y := 2;
	end`)
	if result.Variables["id1"] != 10 {
		t.Errorf("id1 = %v, want 10", result.Variables["id1"])
	}
	if result.Variables["id2"] != 1 {
		t.Errorf("id2 = %v, want 1", result.Variables["id2"])
	}
}
