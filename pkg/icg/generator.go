package icg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ObscureBrandon/toyc/pkg/parser"
	"github.com/ObscureBrandon/toyc/pkg/semantic"
)

// Generator lowers an annotated AST into three-address code.
//
// Generation is two passes. Pass 1 walks the whole tree purely to assign
// normalized names (id1, id2, ...) in order of first appearance; for an
// assignment the target is registered before the pass descends into the
// RHS expression. Pass 2 emits the instructions. The temp, label and
// identifier counters are monotonic for the whole generation call and
// are never reset mid-pass.
type Generator struct {
	symbols semantic.SymbolTable

	tempCounter       int
	labelCounter      int
	identifierCounter int

	code          []Instruction
	identifierMap map[string]string        // source name -> normalized name
	typeMap       map[string]semantic.Type // normalized name / temp -> type
}

// NewGenerator creates a Generator. The symbol table (from semantic
// analysis) seeds the type map for normalized identifiers.
func NewGenerator(symbols semantic.SymbolTable) *Generator {
	return &Generator{symbols: symbols}
}

// IdentifierMap returns the source-name to normalized-name mapping built
// by the last Generate call.
func (g *Generator) IdentifierMap() map[string]string { return g.identifierMap }

// TypeMap returns the normalized-name/temp to type mapping built by the
// last Generate call. The code generator consumes it to pick int or
// float instruction variants.
func (g *Generator) TypeMap() map[string]semantic.Type { return g.typeMap }

// TempCount returns the number of temps created by the last Generate call.
func (g *Generator) TempCount() int { return g.tempCounter }

// LabelCount returns the number of labels created by the last Generate call.
func (g *Generator) LabelCount() int { return g.labelCounter }

func (g *Generator) newTemp() string {
	g.tempCounter++
	return fmt.Sprintf("temp%d", g.tempCounter)
}

func (g *Generator) newLabel() string {
	g.labelCounter++
	return fmt.Sprintf("L%d", g.labelCounter)
}

// getIdentifier returns the normalized name for a variable, creating one
// on first sight.
func (g *Generator) getIdentifier(name string) string {
	if norm, ok := g.identifierMap[name]; ok {
		return norm
	}
	g.identifierCounter++
	norm := fmt.Sprintf("id%d", g.identifierCounter)
	g.identifierMap[name] = norm
	if t, ok := g.symbols[name]; ok {
		g.typeMap[norm] = t
	}
	return norm
}

func (g *Generator) emit(instr Instruction) {
	instr.IsTemp = IsTempName(instr.Result)
	g.code = append(g.code, instr)
}

// Generate lowers the program and returns the instruction list.
func (g *Generator) Generate(program *parser.Program) []Instruction {
	g.code = []Instruction{}
	g.tempCounter = 0
	g.labelCounter = 0
	g.identifierCounter = 0
	g.identifierMap = map[string]string{}
	g.typeMap = map[string]semantic.Type{}

	// Pass 1: collect all identifiers in order of appearance
	for _, stmt := range program.Statements {
		g.collectIdentifiers(stmt)
	}

	// Pass 2: emit the actual code
	for _, stmt := range program.Statements {
		g.generateStatement(stmt)
	}

	return g.code
}

// collectIdentifiers registers identifiers in order of first appearance.
// For an assignment the target comes first, before the RHS expression:
// in `a := b + a;` the target `a` gets id1 and `b` gets id2 even though
// `b` appears earlier lexically on the RHS.
func (g *Generator) collectIdentifiers(stmt parser.Statement) {
	switch node := stmt.(type) {
	case *parser.AssignmentStatement:
		g.getIdentifier(node.Name.Value)
		g.collectExpressionIdentifiers(node.Value)
	case *parser.IfStatement:
		g.collectExpressionIdentifiers(node.Condition)
		g.collectBlockIdentifiers(node.Consequence)
		g.collectBlockIdentifiers(node.Alternative)
	case *parser.RepeatUntilStatement:
		g.collectBlockIdentifiers(node.Body)
		g.collectExpressionIdentifiers(node.Condition)
	case *parser.ReadStatement:
		g.getIdentifier(node.Name.Value)
	case *parser.WriteStatement:
		g.collectExpressionIdentifiers(node.Value)
	case *parser.BlockStatement:
		g.collectBlockIdentifiers(node)
	case *parser.ExpressionStatement:
		g.collectExpressionIdentifiers(node.Expression)
	}
}

func (g *Generator) collectBlockIdentifiers(block *parser.BlockStatement) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		g.collectIdentifiers(stmt)
	}
}

func (g *Generator) collectExpressionIdentifiers(expr parser.Expression) {
	switch node := expr.(type) {
	case *parser.Identifier:
		g.getIdentifier(node.Value)
	case *parser.InfixExpression:
		g.collectExpressionIdentifiers(node.Left)
		g.collectExpressionIdentifiers(node.Right)
	case *parser.Int2FloatExpression:
		g.collectExpressionIdentifiers(node.Operand)
	}
	// Literals carry no identifiers
}

func (g *Generator) generateStatement(stmt parser.Statement) {
	switch node := stmt.(type) {
	case *parser.AssignmentStatement:
		g.generateAssignment(node)
	case *parser.IfStatement:
		g.generateIf(node)
	case *parser.RepeatUntilStatement:
		g.generateRepeatUntil(node)
	case *parser.ReadStatement:
		g.emit(Instruction{Op: "read", Arg1: g.getIdentifier(node.Name.Value)})
	case *parser.WriteStatement:
		result := g.generateExpression(node.Value)
		g.emit(Instruction{Op: "write", Arg1: result})
	case *parser.BlockStatement:
		g.generateBlock(node)
	case *parser.ExpressionStatement:
		g.generateExpression(node.Expression)
	}
}

func (g *Generator) generateBlock(block *parser.BlockStatement) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		g.generateStatement(stmt)
	}
}

// generateExpression lowers an expression and returns its result
// location: a `#` literal, a temp, or a normalized identifier.
func (g *Generator) generateExpression(expr parser.Expression) string {
	switch node := expr.(type) {
	case *parser.NumberLiteral:
		return fmt.Sprintf("#%d", node.Value)
	case *parser.FloatLiteral:
		return "#" + formatFloat(node.Value)
	case *parser.Identifier:
		return g.getIdentifier(node.Value)
	case *parser.InfixExpression:
		return g.generateInfix(node)
	case *parser.Int2FloatExpression:
		return g.generateInt2Float(node)
	default:
		// Unknown expression kinds are handled permissively
		temp := g.newTemp()
		g.emit(Instruction{Op: "unknown", Result: temp})
		return temp
	}
}

// generateInfix lowers `left op right`: operands are always evaluated
// left-then-right before the operator instruction is emitted.
func (g *Generator) generateInfix(node *parser.InfixExpression) string {
	left := g.generateExpression(node.Left)
	right := g.generateExpression(node.Right)
	temp := g.newTemp()

	if g.operandIsFloat(left) || g.operandIsFloat(right) {
		g.typeMap[temp] = semantic.Float
	} else {
		g.typeMap[temp] = semantic.Int
	}

	g.emit(Instruction{Op: node.Operator, Arg1: left, Arg2: right, Result: temp})
	return temp
}

func (g *Generator) generateInt2Float(node *parser.Int2FloatExpression) string {
	operand := g.generateExpression(node.Operand)
	temp := g.newTemp()
	g.typeMap[temp] = semantic.Float
	g.emit(Instruction{Op: "int2float", Arg1: operand, Result: temp})
	return temp
}

func (g *Generator) generateAssignment(node *parser.AssignmentStatement) {
	value := g.generateExpression(node.Value)
	normalized := g.getIdentifier(node.Name.Value)
	g.emit(Instruction{Op: "assign", Arg1: value, Result: normalized})
}

// generateIf lowers an if statement.
//
// Without else:            With else:
//
//	cond                     cond
//	if_false cond goto L1    if_false cond goto L1
//	<then>                   <then>
//	label L1:                goto L2
//	                         label L1:
//	                         <else>
//	                         label L2:
func (g *Generator) generateIf(node *parser.IfStatement) {
	cond := g.generateExpression(node.Condition)

	elseLabel := g.newLabel()
	endLabel := ""
	if node.Alternative != nil {
		endLabel = g.newLabel()
	}

	g.emit(Instruction{Op: "if_false", Arg1: cond, Arg2: elseLabel})

	g.generateBlock(node.Consequence)

	if node.Alternative != nil {
		g.emit(Instruction{Op: "goto", Arg1: endLabel})
	}

	g.emit(Instruction{Op: "label", Label: elseLabel})

	if node.Alternative != nil {
		g.generateBlock(node.Alternative)
		g.emit(Instruction{Op: "label", Label: endLabel})
	}
}

// generateRepeatUntil lowers a repeat loop:
//
//	label L1:
//	<body>
//	cond
//	if_false cond goto L1
//
// The loop repeats while the condition is false and exits once it
// becomes true.
func (g *Generator) generateRepeatUntil(node *parser.RepeatUntilStatement) {
	loopStart := g.newLabel()

	g.emit(Instruction{Op: "label", Label: loopStart})

	g.generateBlock(node.Body)

	cond := g.generateExpression(node.Condition)
	g.emit(Instruction{Op: "if_false", Arg1: cond, Arg2: loopStart})
}

// operandIsFloat reports whether an operand location is float-typed:
// a literal with a decimal point, or a name recorded as float.
func (g *Generator) operandIsFloat(operand string) bool {
	if IsLiteral(operand) {
		for i := 0; i < len(operand); i++ {
			if operand[i] == '.' {
				return true
			}
		}
		return false
	}
	return g.typeMap[operand] == semantic.Float
}

// formatFloat renders a float literal the way it will appear in TAC:
// decimal form with a decimal point, never exponent notation, so the
// point alone marks the literal as float downstream.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
