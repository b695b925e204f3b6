package icg

import "fmt"

// Instruction is a single three-address code (TAC) instruction: an
// operator, up to two source operands, a destination, and (for label
// instructions) a label name.
//
// Operands are plain strings in one of three shapes, distinguished only
// by their sigil: a literal `#<value>`, a temp `tempN`, or a normalized
// identifier `idN`. The `#` sigil is the sole way downstream passes tell
// literals from names. Control-flow targets live in Arg1 (`goto`) or
// Arg2 (`if_false`/`if_true`).
type Instruction struct {
	Op     string // 'assign', '+', '-', 'int2float', 'label', 'goto', 'if_false', 'if_true', 'read', 'write', ...
	Arg1   string // First operand, empty when unused
	Arg2   string // Second operand, empty when unused
	Result string // Destination (temp or normalized identifier)
	Label  string // For label instructions
	IsTemp bool   // Whether Result is a compiler temp
}

// IsLiteral reports whether an operand string is a `#`-prefixed literal.
func IsLiteral(operand string) bool {
	return len(operand) > 0 && operand[0] == '#'
}

// IsTempName reports whether an operand string names a compiler temp.
func IsTempName(operand string) bool {
	return len(operand) > 4 && operand[:4] == "temp"
}

// String renders the instruction in the conventional TAC notation.
func (i Instruction) String() string {
	switch i.Op {
	case "label":
		return fmt.Sprintf("label %s:", i.Label)
	case "goto":
		return fmt.Sprintf("goto %s", i.Arg1)
	case "if_false":
		return fmt.Sprintf("if_false %s goto %s", i.Arg1, i.Arg2)
	case "if_true":
		return fmt.Sprintf("if_true %s goto %s", i.Arg1, i.Arg2)
	case "assign":
		return fmt.Sprintf("%s = %s", i.Result, i.Arg1)
	case "read":
		return fmt.Sprintf("read %s", i.Arg1)
	case "write":
		return fmt.Sprintf("write %s", i.Arg1)
	case "int2float":
		return fmt.Sprintf("%s = int2float(%s)", i.Result, i.Arg1)
	default:
		if i.Arg2 == "" {
			return fmt.Sprintf("%s = %s %s", i.Result, i.Op, i.Arg1)
		}
		return fmt.Sprintf("%s = %s %s %s", i.Result, i.Arg1, i.Op, i.Arg2)
	}
}

// Format renders a whole instruction list, one instruction per line.
func Format(instructions []Instruction) string {
	out := ""
	for _, instr := range instructions {
		out += instr.String() + "\n"
	}
	return out
}
