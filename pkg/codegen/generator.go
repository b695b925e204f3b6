// Package codegen lowers optimized three-address code onto a two
// register target. Registers R1 and R2 plus memory slots addressed by
// normalized identifier; LOAD/STR move values between them, with F
// suffixed float variants throughout.
//
// Temps live in registers only and are never spilled: a STR is emitted
// solely when a TAC result is a normalized identifier. Control flow,
// comparisons and I/O are intentionally not lowered by this generator.
package codegen

import (
	"strings"

	"github.com/ObscureBrandon/toyc/pkg/icg"
	"github.com/ObscureBrandon/toyc/pkg/semantic"
)

// AssemblyInstruction is one target instruction: a mnemonic and its
// operand list. Three-operand arithmetic is dest, src1, src2; src2 may
// be a literal or memory operand.
type AssemblyInstruction struct {
	Op       string
	Operands []string
}

func (a AssemblyInstruction) String() string {
	return a.Op + " " + strings.Join(a.Operands, ", ")
}

// Format renders a whole instruction list, one per line.
func Format(instructions []AssemblyInstruction) string {
	out := ""
	for _, instr := range instructions {
		out += instr.String() + "\n"
	}
	return out
}

var opMapInt = map[string]string{
	"+": "ADD",
	"-": "SUB",
	"*": "MUL",
	"/": "DIV",
	"%": "MOD",
}

var opMapFloat = map[string]string{
	"+": "ADDF",
	"-": "SUBF",
	"*": "MULF",
	"/": "DIVF",
	"%": "MODF",
}

func isCommutative(op string) bool { return op == "+" || op == "*" }

// Generator holds the register association table: which live temp
// currently occupies which register. At most one temp per register;
// claiming a register evicts its previous occupant.
type Generator struct {
	typeMap   map[string]semantic.Type
	code      []AssemblyInstruction
	registers map[string]string // temp name -> "R1" / "R2"
}

// NewGenerator creates a Generator. The type map (from the intermediate
// code generator) drives int-vs-float instruction selection.
func NewGenerator(typeMap map[string]semantic.Type) *Generator {
	return &Generator{typeMap: typeMap}
}

// Generate lowers the instruction list. The association table resets at
// the start of every call, so Generate is a pure function of the
// instruction list and the type map.
func (g *Generator) Generate(instructions []icg.Instruction) []AssemblyInstruction {
	g.code = []AssemblyInstruction{}
	g.registers = map[string]string{}

	for _, instr := range instructions {
		g.generateInstruction(instr)
	}

	return g.code
}

func (g *Generator) emit(op string, operands ...string) {
	g.code = append(g.code, AssemblyInstruction{Op: op, Operands: operands})
}

// baseName strips the optimizer's float tag from an operand reference.
func baseName(operand string) string {
	return strings.TrimSuffix(operand, "(f)")
}

func (g *Generator) isResident(operand string) bool {
	_, ok := g.registers[baseName(operand)]
	return ok
}

func (g *Generator) registerOf(operand string) string {
	return g.registers[baseName(operand)]
}

// claim records that a temp now occupies a register, evicting whatever
// occupied it before.
func (g *Generator) claim(temp, reg string) {
	for name, r := range g.registers {
		if r == reg {
			delete(g.registers, name)
		}
	}
	g.registers[temp] = reg
}

// isFloat reports whether an operand selects the float instruction
// variant: a literal with a decimal point, a `(f)` tagged reference, or
// a name the type map records as float.
func (g *Generator) isFloat(operand string) bool {
	if operand == "" {
		return false
	}
	if icg.IsLiteral(operand) {
		return strings.Contains(operand, ".")
	}
	if strings.HasSuffix(operand, "(f)") {
		return true
	}
	return g.typeMap[operand] == semantic.Float
}

func loadOp(isFloat bool) string {
	if isFloat {
		return "LOADF"
	}
	return "LOAD"
}

func storeOp(isFloat bool) string {
	if isFloat {
		return "STRF"
	}
	return "STR"
}

func arithOp(op string, isFloat bool) string {
	if isFloat {
		return opMapFloat[op]
	}
	return opMapInt[op]
}

// freeRegister picks a register not holding a live temp, preferring R1.
// With both occupied, R1 is sacrificed.
func (g *Generator) freeRegister() string {
	r1Busy, r2Busy := false, false
	for _, reg := range g.registers {
		switch reg {
		case "R1":
			r1Busy = true
		case "R2":
			r2Busy = true
		}
	}
	if !r1Busy {
		return "R1"
	}
	if !r2Busy {
		return "R2"
	}
	return "R1"
}

func (g *Generator) registerBusy(reg string) bool {
	for _, r := range g.registers {
		if r == reg {
			return true
		}
	}
	return false
}

func (g *Generator) generateInstruction(instr icg.Instruction) {
	switch {
	case instr.Op == "assign":
		g.generateAssign(instr)
	case opMapInt[instr.Op] != "":
		g.generateBinaryOp(instr)
	}
	// Everything else (labels, jumps, comparisons, read/write) is out
	// of scope for this target and skipped.
}

// generateAssign lowers `result = arg1`:
//
//	id1 = #5      STR id1, #5
//	id1 = id2     LOAD R1, id2; STR id1, R1
//	id1 = temp1   STR id1, R1        (temp1 resident in R1)
//	temp1 = id1   LOAD R1, id1       (no store, temp stays put)
//	temp1 = temp2 association only   (no code)
func (g *Generator) generateAssign(instr icg.Instruction) {
	arg1, result := instr.Arg1, instr.Result
	if arg1 == "" || result == "" {
		return
	}

	isFloat := g.isFloat(arg1) || g.isFloat(result)
	arg1 = baseName(arg1) // the float tag must not leak into assembly

	if instr.IsTemp || icg.IsTempName(result) {
		if g.isResident(arg1) {
			g.claim(result, g.registerOf(arg1))
			return
		}
		g.emit(loadOp(isFloat), "R1", arg1)
		g.claim(result, "R1")
		return
	}

	// Destination is a user identifier: a store is mandatory.
	if g.isResident(arg1) {
		g.emit(storeOp(isFloat), result, g.registerOf(arg1))
		return
	}
	if icg.IsLiteral(arg1) {
		g.emit(storeOp(isFloat), result, arg1)
		return
	}
	g.emit(loadOp(isFloat), "R1", arg1)
	g.emit(storeOp(isFloat), result, "R1")
}

// generateBinaryOp lowers `result = arg1 op arg2` by operand residency:
// both resident, one resident, or neither. The accumulator reuses a
// resident operand's register where possible; commutative operators
// swap a leading literal behind the variable so the literal feeds the
// arithmetic source slot directly instead of costing a load.
func (g *Generator) generateBinaryOp(instr icg.Instruction) {
	arg1, arg2, result, op := instr.Arg1, instr.Arg2, instr.Result, instr.Op
	if arg1 == "" || arg2 == "" || result == "" {
		return
	}

	isFloat := g.isFloat(arg1) || g.isFloat(arg2) || g.isFloat(result)
	load := loadOp(isFloat)
	arith := arithOp(op, isFloat)
	arg1, arg2 = baseName(arg1), baseName(arg2)

	arg1Resident := g.isResident(arg1)
	arg2Resident := g.isResident(arg2)
	arg1Literal := icg.IsLiteral(arg1)

	resultReg := "R1"

	switch {
	case arg1Resident && arg2Resident:
		g.emit(arith, "R1", g.registerOf(arg1), g.registerOf(arg2))

	case arg1Resident:
		reg := g.registerOf(arg1)
		if icg.IsLiteral(arg2) {
			g.emit(arith, reg, reg, arg2)
		} else {
			g.emit(load, "R2", arg2)
			g.emit(arith, reg, reg, "R2")
		}
		resultReg = reg

	case arg2Resident:
		reg := g.registerOf(arg2)
		if arg1Literal && isCommutative(op) {
			g.emit(arith, reg, reg, arg1)
			resultReg = reg
			break
		}
		// The other operand must materialize in the register the
		// resident one does not hold.
		if reg == "R1" {
			g.emit(load, "R2", arg1)
			g.emit(arith, "R1", "R2", "R1")
		} else {
			g.emit(load, "R1", arg1)
			g.emit(arith, "R1", "R1", reg)
		}

	default:
		resultReg = g.generateBothFromMemory(op, arg1, arg2, load, arith)
	}

	if instr.IsTemp || icg.IsTempName(result) {
		g.claim(result, resultReg)
	} else {
		g.emit(storeOp(isFloat), result, resultReg)
	}
}

// generateBothFromMemory handles the neither-resident case. The primary
// register is chosen to avoid clobbering a live temp; when the
// secondary register is also occupied, the second operand is used as a
// memory operand instead of being loaded.
func (g *Generator) generateBothFromMemory(op, arg1, arg2, load, arith string) string {
	primary := g.freeRegister()
	secondary := "R2"
	if primary == "R2" {
		secondary = "R1"
	}
	secondaryBusy := g.registerBusy(secondary)

	arg1Literal := icg.IsLiteral(arg1)
	arg2Literal := icg.IsLiteral(arg2)

	switch {
	case arg1Literal && arg2Literal:
		// Should have been folded away; lower it anyway
		g.emit(load, primary, arg1)
		g.emit(arith, primary, primary, arg2)

	case arg1Literal:
		if isCommutative(op) {
			g.emit(load, primary, arg2)
			g.emit(arith, primary, primary, arg1)
		} else if secondaryBusy {
			g.emit(load, primary, arg1)
			g.emit(arith, primary, primary, arg2)
		} else {
			g.emit(load, primary, arg1)
			g.emit(load, secondary, arg2)
			g.emit(arith, primary, primary, secondary)
		}

	case arg2Literal:
		g.emit(load, primary, arg1)
		g.emit(arith, primary, primary, arg2)

	default:
		if secondaryBusy {
			g.emit(load, primary, arg1)
			g.emit(arith, primary, primary, arg2)
		} else {
			g.emit(load, primary, arg1)
			g.emit(load, secondary, arg2)
			g.emit(arith, primary, primary, secondary)
		}
	}

	return primary
}
