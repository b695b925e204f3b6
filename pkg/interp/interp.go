// Package interp executes programs directly, without going through
// code generation. It holds two evaluators sharing one arithmetic core:
// an AST walker and a three-address code machine. Running the same
// program through both, or running TAC before and after optimization,
// must produce the same variable state and output.
package interp

import (
	"math"
	"strconv"
	"strings"

	"github.com/ObscureBrandon/toyc/pkg/icg"
	"github.com/ObscureBrandon/toyc/pkg/parser"
)

// Loop and step caps keep diverging programs from hanging the caller.
const (
	maxLoopIterations = 1000
	maxSteps          = 100000
)

// Result is the observable outcome of a run: final variable values and
// everything the program wrote, in order.
type Result struct {
	Variables map[string]float64
	Output    []float64
}

// Interpreter walks an analyzed AST. Values are float64 throughout;
// division is true division, so 7 / 2 yields 3.5 regardless of operand
// types.
type Interpreter struct {
	vars   map[string]float64
	output []float64
	inputs []float64
}

// NewInterpreter creates an Interpreter. The inputs feed `read`
// statements in order; once exhausted, reads yield 0.
func NewInterpreter(inputs ...float64) *Interpreter {
	return &Interpreter{vars: map[string]float64{}, inputs: inputs}
}

// Run executes the program and returns the final state.
func (in *Interpreter) Run(program *parser.Program) Result {
	for _, stmt := range program.Statements {
		in.execStatement(stmt)
	}
	return Result{Variables: in.vars, Output: in.output}
}

func (in *Interpreter) execStatement(stmt parser.Statement) {
	switch node := stmt.(type) {
	case *parser.AssignmentStatement:
		in.vars[node.Name.Value] = in.eval(node.Value)
	case *parser.IfStatement:
		if truthy(in.eval(node.Condition)) {
			in.execBlock(node.Consequence)
		} else {
			in.execBlock(node.Alternative)
		}
	case *parser.RepeatUntilStatement:
		for i := 0; i < maxLoopIterations; i++ {
			in.execBlock(node.Body)
			if truthy(in.eval(node.Condition)) {
				break
			}
		}
	case *parser.ReadStatement:
		in.vars[node.Name.Value] = in.nextInput()
	case *parser.WriteStatement:
		in.output = append(in.output, in.eval(node.Value))
	case *parser.BlockStatement:
		in.execBlock(node)
	case *parser.ExpressionStatement:
		in.eval(node.Expression)
	}
}

func (in *Interpreter) execBlock(block *parser.BlockStatement) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		in.execStatement(stmt)
	}
}

func (in *Interpreter) eval(expr parser.Expression) float64 {
	switch node := expr.(type) {
	case *parser.NumberLiteral:
		return float64(node.Value)
	case *parser.FloatLiteral:
		return node.Value
	case *parser.Identifier:
		return in.vars[node.Value]
	case *parser.Int2FloatExpression:
		return in.eval(node.Operand)
	case *parser.InfixExpression:
		left := in.eval(node.Left)
		right := in.eval(node.Right)
		return apply(node.Operator, left, right)
	default:
		return 0
	}
}

func (in *Interpreter) nextInput() float64 {
	if len(in.inputs) == 0 {
		return 0
	}
	v := in.inputs[0]
	in.inputs = in.inputs[1:]
	return v
}

// Evaluator executes a three-address code list. Names (temps and
// normalized identifiers) live in one flat store and default to 0 when
// read before any write.
type Evaluator struct {
	vars   map[string]float64
	output []float64
	inputs []float64
}

// NewEvaluator creates an Evaluator. The inputs feed `read`
// instructions in order; once exhausted, reads yield 0.
func NewEvaluator(inputs ...float64) *Evaluator {
	return &Evaluator{vars: map[string]float64{}, inputs: inputs}
}

// Run executes the instruction list and returns the final state.
// Execution stops at the end of the list or after the step cap.
func (ev *Evaluator) Run(instructions []icg.Instruction) Result {
	labels := map[string]int{}
	for i, instr := range instructions {
		if instr.Op == "label" {
			labels[instr.Label] = i
		}
	}

	pc := 0
	for steps := 0; pc < len(instructions) && steps < maxSteps; steps++ {
		instr := instructions[pc]
		switch instr.Op {
		case "label":
			// No effect
		case "goto":
			pc = labels[instr.Arg1]
			continue
		case "if_false":
			if !truthy(ev.operand(instr.Arg1)) {
				pc = labels[instr.Arg2]
				continue
			}
		case "if_true":
			if truthy(ev.operand(instr.Arg1)) {
				pc = labels[instr.Arg2]
				continue
			}
		case "assign", "int2float":
			// int2float is the identity on the flat float64 store
			ev.vars[instr.Result] = ev.operand(instr.Arg1)
		case "read":
			ev.vars[instr.Arg1] = ev.nextInput()
		case "write":
			ev.output = append(ev.output, ev.operand(instr.Arg1))
		default:
			ev.vars[instr.Result] = apply(instr.Op, ev.operand(instr.Arg1), ev.operand(instr.Arg2))
		}
		pc++
	}

	return Result{Variables: ev.vars, Output: ev.output}
}

// operand resolves a TAC operand: a `#` literal parses directly, a name
// reads the store. A `(f)` float tag is transparent here since the
// store is float64 already.
func (ev *Evaluator) operand(s string) float64 {
	if icg.IsLiteral(s) {
		v, _ := strconv.ParseFloat(s[1:], 64)
		return v
	}
	return ev.vars[strings.TrimSuffix(s, "(f)")]
}

func (ev *Evaluator) nextInput() float64 {
	if len(ev.inputs) == 0 {
		return 0
	}
	v := ev.inputs[0]
	ev.inputs = ev.inputs[1:]
	return v
}

func truthy(v float64) bool { return v != 0 }

func boolVal(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// apply computes a binary operation. Division by zero yields +Inf and
// modulo by zero yields 0 rather than failing; the modulo result takes
// the sign of the divisor.
func apply(op string, left, right float64) float64 {
	switch op {
	case "+":
		return left + right
	case "-":
		return left - right
	case "*":
		return left * right
	case "/":
		if right == 0 {
			return math.Inf(1)
		}
		return left / right
	case "%":
		if right == 0 {
			return 0
		}
		r := math.Mod(left, right)
		if r != 0 && (r < 0) != (right < 0) {
			r += right
		}
		return r
	case "==":
		return boolVal(left == right)
	case "!=":
		return boolVal(left != right)
	case "<":
		return boolVal(left < right)
	case ">":
		return boolVal(left > right)
	case "<=":
		return boolVal(left <= right)
	case ">=":
		return boolVal(left >= right)
	case "&&":
		return boolVal(truthy(left) && truthy(right))
	case "||":
		return boolVal(truthy(left) || truthy(right))
	default:
		return 0
	}
}
