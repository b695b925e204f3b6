package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ObscureBrandon/toyc/pkg/lexer"
)

// --- Interfaces ---

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string // Returns the literal value of the token associated with the node
	String() string       // Returns a string representation of the node (for debugging)
}

// Statement represents a statement node in the AST.
type Statement interface {
	Node
	statementNode() // Dummy method for distinguishing statement types
}

// Expression represents an expression node in the AST.
type Expression interface {
	Node
	expressionNode() // Dummy method for distinguishing expression types
}

// --- Program Node ---

// Program is the root node of the AST.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// --- Statement Nodes ---

// AssignmentStatement represents `<Name> := <Value>;`.
type AssignmentStatement struct {
	Token lexer.Token // The identifier token on the left-hand side
	Name  *Identifier // The variable being assigned
	Value Expression  // The expression being assigned
}

func (as *AssignmentStatement) statementNode()       {}
func (as *AssignmentStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignmentStatement) String() string {
	var out bytes.Buffer
	out.WriteString(as.Name.String())
	out.WriteString(" := ")
	if as.Value != nil {
		out.WriteString(as.Value.String())
	}
	out.WriteString(";")
	return out.String()
}

// ExpressionStatement represents a bare expression used as a statement.
type ExpressionStatement struct {
	Token      lexer.Token // The first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

// BlockStatement represents a run of statements inside an if branch or a
// repeat body. Blocks carry no scope of their own; they exist only to group
// statements between keywords.
type BlockStatement struct {
	Token      lexer.Token // The token that opened the block (then/else/repeat)
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer
	for _, s := range bs.Statements {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	return strings.TrimRight(out.String(), " ")
}

// IfStatement represents `if (<Condition>) then <Consequence> [else <Alternative>] end`.
type IfStatement struct {
	Token       lexer.Token // The lexer.IF token
	Condition   Expression
	Consequence *BlockStatement
	Alternative *BlockStatement // nil when there is no else branch
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if (")
	out.WriteString(is.Condition.String())
	out.WriteString(") then ")
	out.WriteString(is.Consequence.String())
	if is.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(is.Alternative.String())
	}
	out.WriteString(" end")
	return out.String()
}

// RepeatUntilStatement represents `repeat <Body> until <Condition>;`.
// The body always executes at least once; the loop exits when the
// condition becomes true.
type RepeatUntilStatement struct {
	Token     lexer.Token // The lexer.REPEAT token
	Body      *BlockStatement
	Condition Expression
}

func (rs *RepeatUntilStatement) statementNode()       {}
func (rs *RepeatUntilStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *RepeatUntilStatement) String() string {
	var out bytes.Buffer
	out.WriteString("repeat ")
	out.WriteString(rs.Body.String())
	out.WriteString(" until ")
	out.WriteString(rs.Condition.String())
	out.WriteString(";")
	return out.String()
}

// ReadStatement represents `read <Name>;`.
type ReadStatement struct {
	Token lexer.Token // The lexer.READ token
	Name  *Identifier
}

func (rs *ReadStatement) statementNode()       {}
func (rs *ReadStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReadStatement) String() string {
	return "read " + rs.Name.String() + ";"
}

// WriteStatement represents `write <Value>;`.
type WriteStatement struct {
	Token lexer.Token // The lexer.WRITE token
	Value Expression
}

func (ws *WriteStatement) statementNode()       {}
func (ws *WriteStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WriteStatement) String() string {
	return "write " + ws.Value.String() + ";"
}

// --- Expression Nodes ---

// Identifier represents a variable reference.
type Identifier struct {
	Token lexer.Token // The lexer.IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// NumberLiteral represents an integer literal.
type NumberLiteral struct {
	Token lexer.Token // The lexer.NUMBER token
	Value int64
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NumberLiteral) String() string       { return nl.Token.Literal }

// FloatLiteral represents a float literal.
type FloatLiteral struct {
	Token lexer.Token // The lexer.FLOAT token
	Value float64
}

func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FloatLiteral) String() string       { return fl.Token.Literal }

// InfixExpression represents `<Left> <Operator> <Right>`.
type InfixExpression struct {
	Token    lexer.Token // The operator token
	Operator string
	Left     Expression
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", ie.Left.String(), ie.Operator, ie.Right.String())
}

// Int2FloatExpression is a coercion marker wrapping an int-typed operand
// that participates in a float operation. It is never produced by the
// parser; the semantic analyzer inserts it during type analysis.
type Int2FloatExpression struct {
	Operand Expression
}

func (ife *Int2FloatExpression) expressionNode()      {}
func (ife *Int2FloatExpression) TokenLiteral() string { return ife.Operand.TokenLiteral() }
func (ife *Int2FloatExpression) String() string {
	return "int2float(" + ife.Operand.String() + ")"
}
