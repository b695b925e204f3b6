package icg

import (
	"testing"

	"github.com/ObscureBrandon/toyc/pkg/parser"
	"github.com/ObscureBrandon/toyc/pkg/semantic"
)

func generate(t *testing.T, input string) (*Generator, []Instruction) {
	t.Helper()
	program, errs := parser.Parse(input)
	if len(errs) != 0 {
		t.Fatalf("parser errors for %q: %v", input, errs)
	}
	annotated, symbols := semantic.NewAnalyzer().Analyze(program)
	gen := NewGenerator(symbols)
	return gen, gen.Generate(annotated)
}

func assertTAC(t *testing.T, instructions []Instruction, want []string) {
	t.Helper()
	if len(instructions) != len(want) {
		t.Fatalf("instruction count = %d, want %d:\n%s", len(instructions), len(want), Format(instructions))
	}
	for i, w := range want {
		if got := instructions[i].String(); got != w {
			t.Errorf("instr[%d] = %q, want %q", i, got, w)
		}
	}
}

func TestSimpleAddition(t *testing.T) {
	_, instructions := generate(t, "x := 5 + 3;")

	assertTAC(t, instructions, []string{
		"temp1 = #5 + #3",
		"id1 = temp1",
	})
}

func TestFloatCoercionLowering(t *testing.T) {
	_, instructions := generate(t, "result := 5 + 3.14;")

	assertTAC(t, instructions, []string{
		"temp1 = int2float(#5)",
		"temp2 = temp1 + #3.14",
		"id1 = temp2",
	})
}

func TestIdentifierNumberingDeterminism(t *testing.T) {
	// The assignment target is registered before the RHS is scanned, so
	// the target gets the lower id even when a RHS variable appears
	// earlier lexically.
	gen, _ := generate(t, "a := b + a;")

	idMap := gen.IdentifierMap()
	if idMap["a"] != "id1" {
		t.Errorf(`idMap["a"] = %q, want "id1"`, idMap["a"])
	}
	if idMap["b"] != "id2" {
		t.Errorf(`idMap["b"] = %q, want "id2"`, idMap["b"])
	}
}

func TestLeftToRightEvaluation(t *testing.T) {
	_, instructions := generate(t, "x := (1 + 2) * (3 + 4);")

	assertTAC(t, instructions, []string{
		"temp1 = #1 + #2",
		"temp2 = #3 + #4",
		"temp3 = temp1 * temp2",
		"id1 = temp3",
	})
}

func TestIfLowering(t *testing.T) {
	input := `if (x < 10) then
		y := 1;
	end`
	_, instructions := generate(t, input)

	assertTAC(t, instructions, []string{
		"temp1 = id1 < #10",
		"if_false temp1 goto L1",
		"id2 = #1",
		"label L1:",
	})
}

func TestIfElseLowering(t *testing.T) {
	input := `if (x < 10) then
		y := 1;
	else
		y := 2;
	end`
	_, instructions := generate(t, input)

	assertTAC(t, instructions, []string{
		"temp1 = id1 < #10",
		"if_false temp1 goto L1",
		"id2 = #1",
		"goto L2",
		"label L1:",
		"id2 = #2",
		"label L2:",
	})
}

func TestRepeatUntilLowering(t *testing.T) {
	input := `repeat
		x := x - 1;
	until x == 0;`
	_, instructions := generate(t, input)

	assertTAC(t, instructions, []string{
		"label L1:",
		"temp1 = id1 - #1",
		"id1 = temp1",
		"temp2 = id1 == #0",
		"if_false temp2 goto L1",
	})
}

func TestReadWriteLowering(t *testing.T) {
	_, instructions := generate(t, "read n; write n + 1;")

	assertTAC(t, instructions, []string{
		"read id1",
		"temp1 = id1 + #1",
		"write temp1",
	})
}

func TestEmptyProgram(t *testing.T) {
	gen, instructions := generate(t, "")
	if len(instructions) != 0 {
		t.Errorf("instruction count = %d, want 0", len(instructions))
	}
	if gen.TempCount() != 0 || gen.LabelCount() != 0 {
		t.Errorf("counters = (%d, %d), want (0, 0)", gen.TempCount(), gen.LabelCount())
	}
}

func TestCountersMonotonic(t *testing.T) {
	input := `x := 1 + 2;
	if (x > 0) then
		y := x * 3;
	end
	repeat
		x := x - 1;
	until x == 0;`

	gen, instructions := generate(t, input)

	// Temps never repeat: each definition creates a fresh name.
	seen := map[string]bool{}
	for _, instr := range instructions {
		if instr.IsTemp && instr.Result != "" {
			if seen[instr.Result] {
				t.Errorf("temp %s defined twice", instr.Result)
			}
			seen[instr.Result] = true
		}
	}
	if gen.TempCount() != len(seen) {
		t.Errorf("TempCount = %d, want %d", gen.TempCount(), len(seen))
	}
	if gen.LabelCount() != 2 {
		t.Errorf("LabelCount = %d, want 2", gen.LabelCount())
	}
}

func TestJumpTargetsResolve(t *testing.T) {
	inputs := []string{
		"if (a > 1) then b := 1; end",
		"if (a > 1) then b := 1; else b := 2; end",
		"repeat a := a - 1; until a == 0;",
		`if (a > 0) then
			repeat a := a - 1; until a == 0;
		else
			a := 0;
		end`,
	}

	for _, input := range inputs {
		_, instructions := generate(t, input)
		checkLabelIntegrity(t, input, instructions)
	}
}

// checkLabelIntegrity asserts that every jump target names exactly one
// label instruction present in the same list.
func checkLabelIntegrity(t *testing.T, input string, instructions []Instruction) {
	t.Helper()
	labels := map[string]int{}
	for _, instr := range instructions {
		if instr.Op == "label" {
			labels[instr.Label]++
		}
	}
	for _, instr := range instructions {
		var target string
		switch instr.Op {
		case "goto":
			target = instr.Arg1
		case "if_false", "if_true":
			target = instr.Arg2
		default:
			continue
		}
		if labels[target] != 1 {
			t.Errorf("input %q: jump target %q has %d label instructions, want 1", input, target, labels[target])
		}
	}
}

func TestTypeMap(t *testing.T) {
	gen, _ := generate(t, "x := 5; y := 2.5; z := x + y;")

	typeMap := gen.TypeMap()
	if typeMap["id1"] != semantic.Int {
		t.Errorf(`typeMap["id1"] = %q, want int`, typeMap["id1"])
	}
	if typeMap["id2"] != semantic.Float {
		t.Errorf(`typeMap["id2"] = %q, want float`, typeMap["id2"])
	}
	if typeMap["id3"] != semantic.Float {
		t.Errorf(`typeMap["id3"] = %q, want float`, typeMap["id3"])
	}
}

func TestFloatLiteralFormatting(t *testing.T) {
	// Float literals render in decimal form at every magnitude. Exponent
	// notation would drop the decimal point that marks them as float.
	tests := []struct {
		input string
		want  string
	}{
		{"x := 5.0;", "id1 = #5.0"},
		{"x := 1000000.0;", "id1 = #1000000.0"},
		{"x := 20000000.5;", "id1 = #20000000.5"},
		{"x := 0.00001;", "id1 = #0.00001"},
	}

	for _, tt := range tests {
		_, instructions := generate(t, tt.input)
		assertTAC(t, instructions, []string{tt.want})
	}
}

func TestLargeFloatOperandsStayFloat(t *testing.T) {
	_, instructions := generate(t, "x := 1000000.0 + 2000000.0;")

	assertTAC(t, instructions, []string{
		"temp1 = #1000000.0 + #2000000.0",
		"id1 = temp1",
	})
}
