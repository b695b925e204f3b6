// Package optimizer rewrites three-address code into a shorter,
// semantically equivalent instruction list.
//
// The optimizer runs a bounded fixed-point loop: each round applies five
// passes in a fixed order and the loop stops as soon as a round fails to
// shrink the instruction list (or after ten rounds). A final cosmetic
// pass renumbers the surviving temps sequentially by first appearance.
package optimizer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ObscureBrandon/toyc/pkg/icg"
)

const maxRounds = 10

// Stats records what the optimization passes did. All fields are
// reporting data only; nothing downstream depends on them.
type Stats struct {
	OriginalInstructionCount  int
	OptimizedInstructionCount int
	Int2FloatInlined          int
	TempsEliminated           int
	CopiesPropagated          int
	AlgebraicSimplifications  int
	DeadCodeEliminated        int
}

// InstructionsSaved returns how many instructions optimization removed.
func (s Stats) InstructionsSaved() int {
	return s.OriginalInstructionCount - s.OptimizedInstructionCount
}

// ReductionPercentage returns the relative shrinkage of the list.
func (s Stats) ReductionPercentage() float64 {
	if s.OriginalInstructionCount == 0 {
		return 0.0
	}
	return float64(s.InstructionsSaved()) / float64(s.OriginalInstructionCount) * 100
}

// Optimizer applies TAC-to-TAC rewrites. A single Optimizer may be
// reused; stats are reset at the start of every Optimize call.
type Optimizer struct {
	stats Stats
}

// NewOptimizer creates an Optimizer.
func NewOptimizer() *Optimizer {
	return &Optimizer{}
}

// Stats returns the statistics collected by the last Optimize call.
func (o *Optimizer) Stats() Stats { return o.stats }

// Optimize rewrites the instruction list and returns the optimized list
// together with the collected statistics. The input slice is not
// modified.
func (o *Optimizer) Optimize(instructions []icg.Instruction) ([]icg.Instruction, Stats) {
	o.stats = Stats{OriginalInstructionCount: len(instructions)}

	optimized := make([]icg.Instruction, len(instructions))
	copy(optimized, instructions)

	for round := 0; round < maxRounds; round++ {
		prevLength := len(optimized)

		optimized = o.inlineInt2Float(optimized)
		optimized = o.eliminateSingleUseTemps(optimized)
		optimized = o.algebraicSimplification(optimized)
		optimized = o.copyPropagation(optimized)
		optimized = o.deadCodeElimination(optimized)

		if len(optimized) == prevLength {
			break
		}
	}

	optimized = renumberTemps(optimized)

	o.stats.OptimizedInstructionCount = len(optimized)
	return optimized, o.stats
}

// inlineInt2Float removes int2float instructions. A literal operand
// folds into a float literal (`#5` becomes `#5.0`); a variable or temp
// operand is rewritten to a float-tagged reference (`id1` becomes
// `id1(f)`). Every later reference to the eliminated temp is
// substituted.
func (o *Optimizer) inlineInt2Float(instructions []icg.Instruction) []icg.Instruction {
	result := make([]icg.Instruction, 0, len(instructions))
	replacements := map[string]string{}

	for _, instr := range instructions {
		if instr.Op == "int2float" && instr.Arg1 != "" && instr.Result != "" {
			operand := instr.Arg1
			if icg.IsLiteral(operand) {
				if n, err := strconv.Atoi(operand[1:]); err == nil {
					replacements[instr.Result] = fmt.Sprintf("#%d.0", n)
				} else {
					// Already a float literal, nothing to fold
					replacements[instr.Result] = operand
				}
			} else {
				replacements[instr.Result] = operand + "(f)"
			}
			o.stats.Int2FloatInlined++
			continue
		}

		result = append(result, applyReplacements(instr, replacements))
	}

	return result
}

// eliminateSingleUseTemps collapses the pattern
//
//	tempN = <op>
//	dest = tempN
//
// into a single instruction writing dest directly, when tempN is used
// exactly once and that use is the immediately following bare copy.
// Temps feeding computed operators are deliberately left alone.
func (o *Optimizer) eliminateSingleUseTemps(instructions []icg.Instruction) []icg.Instruction {
	useCount := countVariableUses(instructions)

	result := make([]icg.Instruction, 0, len(instructions))
	for i := 0; i < len(instructions); i++ {
		instr := instructions[i]

		if isPinned(instr) {
			result = append(result, instr)
			continue
		}

		if icg.IsTempName(instr.Result) && useCount[instr.Result] == 1 && i+1 < len(instructions) {
			next := instructions[i+1]
			if next.Op == "assign" && next.Arg1 == instr.Result && next.Arg2 == "" {
				result = append(result, icg.Instruction{
					Op:     instr.Op,
					Arg1:   instr.Arg1,
					Arg2:   instr.Arg2,
					Result: next.Result,
					IsTemp: icg.IsTempName(next.Result),
				})
				o.stats.TempsEliminated++
				i++ // the copy is consumed too
				continue
			}
		}

		result = append(result, instr)
	}

	return result
}

// algebraicSimplification rewrites identity and annihilator forms:
// x+0, 0+x, x-0, x*1, 1*x become plain copies; x*0 and 0*x become #0.
func (o *Optimizer) algebraicSimplification(instructions []icg.Instruction) []icg.Instruction {
	result := make([]icg.Instruction, 0, len(instructions))
	for _, instr := range instructions {
		simplified, changed := simplifyInstruction(instr)
		if changed {
			o.stats.AlgebraicSimplifications++
		}
		result = append(result, simplified)
	}
	return result
}

func simplifyInstruction(instr icg.Instruction) (icg.Instruction, bool) {
	copyOf := func(src string) icg.Instruction {
		return icg.Instruction{Op: "assign", Arg1: src, Result: instr.Result, IsTemp: instr.IsTemp}
	}

	switch instr.Op {
	case "+":
		if instr.Arg2 == "#0" {
			return copyOf(instr.Arg1), true
		}
		if instr.Arg1 == "#0" {
			return copyOf(instr.Arg2), true
		}
	case "-":
		if instr.Arg2 == "#0" {
			return copyOf(instr.Arg1), true
		}
	case "*":
		if instr.Arg2 == "#1" {
			return copyOf(instr.Arg1), true
		}
		if instr.Arg1 == "#1" {
			return copyOf(instr.Arg2), true
		}
		if instr.Arg1 == "#0" || instr.Arg2 == "#0" {
			return copyOf("#0"), true
		}
	}

	return instr, false
}

// copyPropagation substitutes plain temp copies into later operand
// references. Only temp destinations with non-literal sources are
// tracked, and the tracking map is cleared at every label: values
// reaching a merge point may differ by path.
func (o *Optimizer) copyPropagation(instructions []icg.Instruction) []icg.Instruction {
	result := make([]icg.Instruction, 0, len(instructions))
	copies := map[string]string{}

	for _, instr := range instructions {
		if instr.Op == "label" {
			copies = map[string]string{}
			result = append(result, instr)
			continue
		}

		if instr.Op == "assign" && instr.Arg1 != "" && instr.Arg2 == "" &&
			icg.IsTempName(instr.Result) && !icg.IsLiteral(instr.Arg1) {
			copies[instr.Result] = instr.Arg1
			o.stats.CopiesPropagated++
			continue
		}

		result = append(result, applyReplacements(instr, copies))
	}

	return result
}

// deadCodeElimination drops instructions whose result is a temp with no
// remaining uses. Labels, control flow, I/O and writes to user
// identifiers are always retained: user variables are externally
// observable outputs.
func (o *Optimizer) deadCodeElimination(instructions []icg.Instruction) []icg.Instruction {
	useCount := countVariableUses(instructions)

	result := make([]icg.Instruction, 0, len(instructions))
	for _, instr := range instructions {
		if isPinned(instr) {
			result = append(result, instr)
			continue
		}

		if icg.IsTempName(instr.Result) && useCount[instr.Result] == 0 {
			o.stats.DeadCodeEliminated++
			continue
		}

		result = append(result, instr)
	}

	return result
}

// isPinned reports whether an instruction may never be deleted or
// collapsed: labels, control flow and I/O have effects beyond their
// result operand.
func isPinned(instr icg.Instruction) bool {
	switch instr.Op {
	case "label", "goto", "if_false", "if_true", "read", "write":
		return true
	}
	return false
}

func applyReplacements(instr icg.Instruction, replacements map[string]string) icg.Instruction {
	if len(replacements) == 0 {
		return instr
	}
	instr.Arg1 = replaceOperand(instr.Arg1, replacements)
	instr.Arg2 = replaceOperand(instr.Arg2, replacements)
	return instr
}

// replaceOperand substitutes an operand reference, matching through a
// float tag. A tagged reference keeps its tag unless the replacement is
// a literal, which is already float after folding.
func replaceOperand(operand string, replacements map[string]string) string {
	base := baseName(operand)
	r, ok := replacements[base]
	if !ok {
		return operand
	}
	if base == operand || icg.IsLiteral(r) || strings.HasSuffix(r, "(f)") {
		return r
	}
	return r + "(f)"
}

// countVariableUses counts operand references per name. Result fields
// are definitions, not uses. A float-tagged reference `name(f)` counts
// as a use of `name`, so a tagged temp's definition is not mistaken for
// dead code.
func countVariableUses(instructions []icg.Instruction) map[string]int {
	useCount := map[string]int{}
	count := func(operand string) {
		if operand == "" || icg.IsLiteral(operand) {
			return
		}
		useCount[baseName(operand)]++
	}
	for _, instr := range instructions {
		count(instr.Arg1)
		count(instr.Arg2)
	}
	return useCount
}

// baseName strips a float tag from an operand reference.
func baseName(operand string) string {
	return strings.TrimSuffix(operand, "(f)")
}

// renumberTemps renames surviving temps sequentially by first
// appearance. Purely cosmetic; float tags on operand references are
// preserved.
func renumberTemps(instructions []icg.Instruction) []icg.Instruction {
	tempMap := map[string]string{}
	next := 1

	assign := func(operand string) {
		base := baseName(operand)
		if !icg.IsTempName(base) {
			return
		}
		if _, ok := tempMap[base]; !ok {
			tempMap[base] = fmt.Sprintf("temp%d", next)
			next++
		}
	}
	rename := func(operand string) string {
		base := baseName(operand)
		renamed, ok := tempMap[base]
		if !ok {
			return operand
		}
		if base != operand {
			return renamed + "(f)"
		}
		return renamed
	}

	for _, instr := range instructions {
		assign(instr.Result)
		assign(instr.Arg1)
		assign(instr.Arg2)
	}

	result := make([]icg.Instruction, 0, len(instructions))
	for _, instr := range instructions {
		instr.Result = rename(instr.Result)
		instr.Arg1 = rename(instr.Arg1)
		instr.Arg2 = rename(instr.Arg2)
		result = append(result, instr)
	}
	return result
}
