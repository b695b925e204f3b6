package parser

import (
	"strconv"

	"github.com/ObscureBrandon/toyc/pkg/errors"
	"github.com/ObscureBrandon/toyc/pkg/lexer"
	"github.com/ObscureBrandon/toyc/pkg/source"
)

// Precedence levels for operators, lowest to highest. Parentheses reset
// the level back to LOWEST.
const (
	_ int = iota
	LOWEST
	LOGICAL_OR  // ||
	LOGICAL_AND // &&
	COMPARISON  // ==, !=, <, >, <=, >=
	SUM         // + or -
	PRODUCT     // * or / or %
)

// Precedences map for operator tokens
var precedences = map[lexer.TokenType]int{
	lexer.OR:       LOGICAL_OR,
	lexer.AND:      LOGICAL_AND,
	lexer.EQ:       COMPARISON,
	lexer.NOT_EQ:   COMPARISON,
	lexer.LT:       COMPARISON,
	lexer.GT:       COMPARISON,
	lexer.LT_EQ:    COMPARISON,
	lexer.GT_EQ:    COMPARISON,
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.ASTERISK: PRODUCT,
	lexer.SLASH:    PRODUCT,
	lexer.PERCENT:  PRODUCT,
}

// Parsing function types for the Pratt parser
type (
	prefixParseFn func() (Expression, error)
	infixParseFn  func(Expression) (Expression, error) // Arg is the left side expression
)

// Parser takes a lexer and builds an AST.
//
// Error discipline: every parse method propagates a *errors.SyntaxError to
// its caller. Only the top-level statement loop in ParseProgram recovers,
// by recording the error and skipping exactly one token before scanning
// for the next statement. The resync is best-effort and can cascade on
// inputs missing a closing keyword.
type Parser struct {
	l      *lexer.Lexer
	source *source.SourceFile // cached from lexer, may be nil
	errors []errors.ToyError

	curToken  lexer.Token
	peekToken lexer.Token
	position  int // count of tokens consumed, for error reporting

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

// NewParser creates a new Parser from a Lexer.
func NewParser(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		source: l.Source(),
		errors: []errors.ToyError{},
	}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(lexer.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for tokType := range precedences {
		p.registerInfix(tokType, p.parseInfixExpression)
	}

	// Load the first two tokens
	p.nextToken()
	p.nextToken()

	return p
}

// Parse is a convenience function that parses source code in one call.
func Parse(input string) (*Program, []errors.ToyError) {
	l := lexer.NewLexer(input)
	return NewParser(l).ParseProgram()
}

// ParseSource parses a SourceFile, attaching it to reported error positions.
func ParseSource(sf *source.SourceFile) (*Program, []errors.ToyError) {
	l := lexer.NewLexerFromSource(sf)
	return NewParser(l).ParseProgram()
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	p.position++
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

// expectPeek advances onto the peek token if it has the expected type, or
// returns a SyntaxError positioned at the offending token.
func (p *Parser) expectPeek(t lexer.TokenType) error {
	if !p.peekTokenIs(t) {
		return p.syntaxErrorAt(p.peekToken, "Expected %s, got %s", t, p.peekToken.Type)
	}
	p.nextToken()
	return nil
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) syntaxErrorAt(tok lexer.Token, format string, args ...interface{}) *errors.SyntaxError {
	pos := errors.Position{
		Line:     tok.Line,
		Column:   tok.Column,
		StartPos: tok.StartPos,
		EndPos:   tok.EndPos,
		Source:   p.source,
	}
	return errors.NewSyntaxError(pos, format, args...)
}

// Errors returns the parse errors collected so far.
func (p *Parser) Errors() []errors.ToyError {
	return p.errors
}

// ParseProgram parses the whole token stream.
//
// Program → Statement*
//
// A malformed statement is dropped: its error is recorded, the parser
// advances one token past the point of failure, and scanning resumes.
// Surrounding well-formed statements still parse (partial-result
// philosophy); rejecting the program outright is the caller's decision.
func (p *Parser) ParseProgram() (*Program, []errors.ToyError) {
	program := &Program{Statements: []Statement{}}

	for !p.curTokenIs(lexer.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			if te, ok := err.(errors.ToyError); ok {
				p.errors = append(p.errors, te)
			}
			p.nextToken() // skip exactly one token, then resume
			continue
		}
		program.Statements = append(program.Statements, stmt)
		p.nextToken()
	}

	return program, p.errors
}

// parseStatement parses a single statement. On success the current token
// is the last token of the statement (usually ';' or 'end').
//
// Statement → IfStmt | RepeatStmt | ReadStmt | WriteStmt | Assignment | ExprStmt
func (p *Parser) parseStatement() (Statement, error) {
	switch p.curToken.Type {
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.REPEAT:
		return p.parseRepeatUntilStatement()
	case lexer.READ:
		return p.parseReadStatement()
	case lexer.WRITE:
		return p.parseWriteStatement()
	case lexer.IDENT:
		if p.peekTokenIs(lexer.ASSIGN) {
			return p.parseAssignmentStatement()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// parseBlock parses statements until one of the terminator keywords
// appears as the current token. Errors inside a block propagate to the
// caller without local recovery.
//
// Block → Statement*
func (p *Parser) parseBlock(openTok lexer.Token, terminators ...lexer.TokenType) (*BlockStatement, error) {
	block := &BlockStatement{Token: openTok, Statements: []Statement{}}

	for {
		if p.curTokenIs(lexer.EOF) {
			return nil, p.syntaxErrorAt(p.curToken, "Expected one of %s before end of file", tokenTypeList(terminators))
		}
		for _, t := range terminators {
			if p.curTokenIs(t) {
				return block, nil
			}
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
		p.nextToken()
	}
}

func tokenTypeList(types []lexer.TokenType) string {
	out := ""
	for i, t := range types {
		if i > 0 {
			out += ", "
		}
		out += string(t)
	}
	return out
}

// parseIfStatement parses an if statement, leaving 'end' as the current token.
//
// IfStmt → IF '(' Expr ')' THEN Block (ELSE Block)? END
func (p *Parser) parseIfStatement() (Statement, error) {
	stmt := &IfStatement{Token: p.curToken}

	if err := p.expectPeek(lexer.LPAREN); err != nil {
		return nil, err
	}
	p.nextToken()

	condition, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	stmt.Condition = condition

	if err := p.expectPeek(lexer.RPAREN); err != nil {
		return nil, err
	}
	if err := p.expectPeek(lexer.THEN); err != nil {
		return nil, err
	}
	thenTok := p.curToken
	p.nextToken()

	stmt.Consequence, err = p.parseBlock(thenTok, lexer.ELSE, lexer.END)
	if err != nil {
		return nil, err
	}

	if p.curTokenIs(lexer.ELSE) {
		elseTok := p.curToken
		p.nextToken()
		stmt.Alternative, err = p.parseBlock(elseTok, lexer.END)
		if err != nil {
			return nil, err
		}
	}

	// parseBlock stopped on END
	return stmt, nil
}

// parseRepeatUntilStatement parses a repeat loop, leaving ';' as the
// current token.
//
// RepeatStmt → REPEAT Block UNTIL Expr ';'
func (p *Parser) parseRepeatUntilStatement() (Statement, error) {
	stmt := &RepeatUntilStatement{Token: p.curToken}

	repeatTok := p.curToken
	p.nextToken()

	body, err := p.parseBlock(repeatTok, lexer.UNTIL)
	if err != nil {
		return nil, err
	}
	stmt.Body = body

	// parseBlock stopped on UNTIL; move onto the condition
	p.nextToken()

	stmt.Condition, err = p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}

	if err := p.expectPeek(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return stmt, nil
}

// ReadStmt → READ IDENT ';'
func (p *Parser) parseReadStatement() (Statement, error) {
	stmt := &ReadStatement{Token: p.curToken}

	if err := p.expectPeek(lexer.IDENT); err != nil {
		return nil, err
	}
	stmt.Name = &Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if err := p.expectPeek(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return stmt, nil
}

// WriteStmt → WRITE Expr ';'
func (p *Parser) parseWriteStatement() (Statement, error) {
	stmt := &WriteStatement{Token: p.curToken}

	p.nextToken()

	value, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	stmt.Value = value

	if err := p.expectPeek(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return stmt, nil
}

// Assignment → IDENT ':=' Expr ';'
func (p *Parser) parseAssignmentStatement() (Statement, error) {
	stmt := &AssignmentStatement{Token: p.curToken}
	stmt.Name = &Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if err := p.expectPeek(lexer.ASSIGN); err != nil {
		return nil, err
	}
	p.nextToken()

	value, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	stmt.Value = value

	if err := p.expectPeek(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return stmt, nil
}

// ExprStmt → Expr (';')?
func (p *Parser) parseExpressionStatement() (Statement, error) {
	stmt := &ExpressionStatement{Token: p.curToken}

	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	stmt.Expression = expr

	// The terminating semicolon is optional for bare expressions
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt, nil
}

// parseExpression is the core of the Pratt parser. On success the current
// token is the last token of the expression.
func (p *Parser) parseExpression(precedence int) (Expression, error) {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		if p.curTokenIs(lexer.EOF) {
			return nil, p.syntaxErrorAt(p.curToken, "Unexpected end of input")
		}
		return nil, p.syntaxErrorAt(p.curToken, "Unexpected token in expression: %s %q", p.curToken.Type, p.curToken.Literal)
	}
	leftExp, err := prefix()
	if err != nil {
		return nil, err
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp, nil
		}
		p.nextToken()
		leftExp, err = infix(leftExp)
		if err != nil {
			return nil, err
		}
	}

	return leftExp, nil
}

func (p *Parser) parseIdentifier() (Expression, error) {
	return &Identifier{Token: p.curToken, Value: p.curToken.Literal}, nil
}

func (p *Parser) parseNumberLiteral() (Expression, error) {
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		return nil, p.syntaxErrorAt(p.curToken, "Could not parse %q as integer", p.curToken.Literal)
	}
	return &NumberLiteral{Token: p.curToken, Value: value}, nil
}

func (p *Parser) parseFloatLiteral() (Expression, error) {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		return nil, p.syntaxErrorAt(p.curToken, "Could not parse %q as float", p.curToken.Literal)
	}
	return &FloatLiteral{Token: p.curToken, Value: value}, nil
}

// parseInfixExpression parses `<left> <op> <right>` with left
// associativity: the right side binds at the operator's own precedence.
func (p *Parser) parseInfixExpression(left Expression) (Expression, error) {
	expr := &InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()

	right, err := p.parseExpression(precedence)
	if err != nil {
		return nil, err
	}
	expr.Right = right

	return expr, nil
}

func (p *Parser) parseGroupedExpression() (Expression, error) {
	p.nextToken()

	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}

	if err := p.expectPeek(lexer.RPAREN); err != nil {
		return nil, err
	}
	return expr, nil
}
