package semantic

import (
	"github.com/ObscureBrandon/toyc/pkg/parser"
)

// Type is the inferred type of an expression or variable.
type Type string

const (
	Int     Type = "int"
	Float   Type = "float"
	Unknown Type = "unknown"
)

// SymbolTable maps variable names to their inferred types. It is mutated
// only by the analyzer, forward-only: a later assignment overwrites the
// recorded type for a name. There is no unification across reassignments.
type SymbolTable map[string]Type

// Analyzer performs a single forward pass over the AST, inferring types
// and inserting Int2Float coercion markers where an int operand meets a
// float operand (C-like promotion: float dominates). The input tree is
// never mutated; Analyze returns a freshly built annotated tree.
type Analyzer struct {
	symbols SymbolTable
}

// NewAnalyzer creates an Analyzer with an empty symbol table.
func NewAnalyzer() *Analyzer {
	return &Analyzer{symbols: SymbolTable{}}
}

// SymbolTable returns the symbol table built by the last Analyze call.
func (a *Analyzer) SymbolTable() SymbolTable {
	return a.symbols
}

// Analyze walks the program and returns the annotated copy plus the
// symbol table. Analysis has no failure modes on a structurally valid
// AST: unknown types flow through permissively.
func (a *Analyzer) Analyze(program *parser.Program) (*parser.Program, SymbolTable) {
	annotated := &parser.Program{Statements: make([]parser.Statement, 0, len(program.Statements))}
	for _, stmt := range program.Statements {
		annotated.Statements = append(annotated.Statements, a.analyzeStatement(stmt))
	}
	return annotated, a.symbols
}

func (a *Analyzer) analyzeStatement(stmt parser.Statement) parser.Statement {
	switch node := stmt.(type) {
	case *parser.AssignmentStatement:
		return a.analyzeAssignment(node)
	case *parser.IfStatement:
		return &parser.IfStatement{
			Token:       node.Token,
			Condition:   a.analyzeExpression(node.Condition),
			Consequence: a.analyzeBlock(node.Consequence),
			Alternative: a.analyzeBlock(node.Alternative),
		}
	case *parser.RepeatUntilStatement:
		// Body first: the loop body executes before the condition is
		// evaluated, so its assignments are visible to the condition.
		body := a.analyzeBlock(node.Body)
		return &parser.RepeatUntilStatement{
			Token:     node.Token,
			Body:      body,
			Condition: a.analyzeExpression(node.Condition),
		}
	case *parser.ReadStatement:
		// The value read is unknowable until runtime.
		a.symbols[node.Name.Value] = Unknown
		return &parser.ReadStatement{Token: node.Token, Name: node.Name}
	case *parser.WriteStatement:
		return &parser.WriteStatement{Token: node.Token, Value: a.analyzeExpression(node.Value)}
	case *parser.BlockStatement:
		return a.analyzeBlock(node)
	case *parser.ExpressionStatement:
		return &parser.ExpressionStatement{Token: node.Token, Expression: a.analyzeExpression(node.Expression)}
	default:
		return stmt
	}
}

func (a *Analyzer) analyzeBlock(block *parser.BlockStatement) *parser.BlockStatement {
	if block == nil {
		return nil
	}
	out := &parser.BlockStatement{Token: block.Token, Statements: make([]parser.Statement, 0, len(block.Statements))}
	for _, stmt := range block.Statements {
		out.Statements = append(out.Statements, a.analyzeStatement(stmt))
	}
	return out
}

func (a *Analyzer) analyzeAssignment(node *parser.AssignmentStatement) *parser.AssignmentStatement {
	value := a.analyzeExpression(node.Value)
	a.symbols[node.Name.Value] = a.ExpressionType(value)
	return &parser.AssignmentStatement{Token: node.Token, Name: node.Name, Value: value}
}

func (a *Analyzer) analyzeExpression(expr parser.Expression) parser.Expression {
	switch node := expr.(type) {
	case *parser.InfixExpression:
		return a.analyzeInfix(node)
	default:
		// Literals and identifiers need no annotation
		return expr
	}
}

// analyzeInfix analyzes both operands and wraps the int side in an
// Int2Float marker when exactly one side is float.
func (a *Analyzer) analyzeInfix(node *parser.InfixExpression) *parser.InfixExpression {
	left := a.analyzeExpression(node.Left)
	right := a.analyzeExpression(node.Right)

	leftType := a.ExpressionType(left)
	rightType := a.ExpressionType(right)

	if leftType == Float && rightType == Int {
		right = &parser.Int2FloatExpression{Operand: right}
	} else if leftType == Int && rightType == Float {
		left = &parser.Int2FloatExpression{Operand: left}
	}

	return &parser.InfixExpression{
		Token:    node.Token,
		Operator: node.Operator,
		Left:     left,
		Right:    right,
	}
}

// ExpressionType determines the type of an expression against the current
// symbol table.
func (a *Analyzer) ExpressionType(expr parser.Expression) Type {
	switch node := expr.(type) {
	case *parser.NumberLiteral:
		return Int
	case *parser.FloatLiteral:
		return Float
	case *parser.Int2FloatExpression:
		return Float
	case *parser.Identifier:
		if t, ok := a.symbols[node.Value]; ok {
			return t
		}
		return Unknown
	case *parser.InfixExpression:
		leftType := a.ExpressionType(node.Left)
		rightType := a.ExpressionType(node.Right)
		if leftType == Float || rightType == Float {
			return Float
		}
		if leftType == Int && rightType == Int {
			return Int
		}
		return Unknown
	default:
		return Unknown
	}
}
