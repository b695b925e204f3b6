package lexer

import "github.com/ObscureBrandon/toyc/pkg/source"

// TokenType represents the type of a token.
type TokenType string

// Token represents a lexical token.
type Token struct {
	Type     TokenType
	Literal  string // The actual text of the token (lexeme)
	Line     int    // 1-based line number where the token starts
	Column   int    // 1-based column number where the token starts
	StartPos int    // 0-based byte offset where the token starts
	EndPos   int    // 0-based byte offset of the token's last byte
}

// --- Token Types ---
const (
	// Special
	ILLEGAL TokenType = "ILLEGAL" // Unknown token/character
	EOF     TokenType = "EOF"     // End Of File

	// Identifiers + Literals
	IDENT  TokenType = "IDENT"  // variableName
	NUMBER TokenType = "NUMBER" // 123
	FLOAT  TokenType = "FLOAT"  // 45.67

	// Operators
	ASSIGN   TokenType = ":="
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	PERCENT  TokenType = "%"
	LT       TokenType = "<"
	GT       TokenType = ">"
	EQ       TokenType = "=="
	NOT_EQ   TokenType = "!="
	LT_EQ    TokenType = "<="
	GT_EQ    TokenType = ">="

	// Logical Operators
	AND TokenType = "&&"
	OR  TokenType = "||"

	// Delimiters
	SEMICOLON TokenType = ";"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"

	// Keywords
	IF     TokenType = "IF"
	THEN   TokenType = "THEN"
	ELSE   TokenType = "ELSE"
	END    TokenType = "END"
	REPEAT TokenType = "REPEAT"
	UNTIL  TokenType = "UNTIL"
	READ   TokenType = "READ"
	WRITE  TokenType = "WRITE"
)

var keywords = map[string]TokenType{
	"if":     IF,
	"then":   THEN,
	"else":   ELSE,
	"end":    END,
	"repeat": REPEAT,
	"until":  UNTIL,
	"read":   READ,
	"write":  WRITE,
}

// LookupIdent checks the keywords table for an identifier.
func LookupIdent(ident string) TokenType {
	if tokType, ok := keywords[ident]; ok {
		return tokType
	}
	return IDENT
}

// Lexer holds the state of the scanner. It is a single-pass, pull-based
// scanner: each call to NextToken consumes just enough input to produce
// one token. Malformed input never fails the lexer; it degrades to an
// ILLEGAL token for the parser to reject.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char's byte offset)
	readPosition int  // current reading position in input (byte offset after current char)
	ch           byte // current char under examination
	line         int  // current 1-based line number
	column       int  // current 1-based column number (position of l.position on l.line)

	source *source.SourceFile // optional, for error reporting downstream
}

// NewLexer creates a new Lexer.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar() // Initialize l.ch, l.position, l.readPosition
	return l
}

// NewLexerFromSource creates a new Lexer over a SourceFile, so that
// consumers (the parser) can attach the file to reported positions.
func NewLexerFromSource(sf *source.SourceFile) *Lexer {
	l := NewLexer(sf.Content)
	l.source = sf
	return l
}

// Source returns the SourceFile this lexer reads from, or nil.
func (l *Lexer) Source() *source.SourceFile {
	return l.source
}

// readChar gives us the next character and advances our position in the input
// string. It also updates the line and column count.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // 0 is ASCII for NUL, signifies EOF
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

// peekChar looks ahead in the input without consuming the character.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// skipWhitespace consumes whitespace characters (space, tab, newline, carriage return).
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// skipLineComment consumes the remainder of a `%%` comment up to (not
// including) the newline.
func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// skipBlockComment consumes a `{ ... }` comment. Block comments do not nest;
// the first '}' closes the comment. An unterminated comment simply runs to EOF.
func (l *Lexer) skipBlockComment() {
	for l.ch != '}' && l.ch != 0 {
		l.readChar()
	}
	if l.ch == '}' {
		l.readChar()
	}
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// NextToken scans the input and returns the next token.
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	// Capture token start position *after* skipping whitespace
	startLine := l.line
	startCol := l.column
	startPos := l.position

	switch l.ch {
	case '+':
		tok = Token{Type: PLUS, Literal: string(l.ch), Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
	case '-':
		tok = Token{Type: MINUS, Literal: string(l.ch), Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
	case '*':
		tok = Token{Type: ASTERISK, Literal: string(l.ch), Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
	case '/':
		tok = Token{Type: SLASH, Literal: string(l.ch), Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
	case '(':
		tok = Token{Type: LPAREN, Literal: string(l.ch), Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
	case ')':
		tok = Token{Type: RPAREN, Literal: string(l.ch), Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
	case ';':
		tok = Token{Type: SEMICOLON, Literal: string(l.ch), Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
	case '%':
		if l.peekChar() == '%' {
			// `%%` starts a line comment; `%` alone is the modulo operator.
			l.readChar() // Consume second '%'
			l.readChar()
			l.skipLineComment()
			return l.NextToken()
		}
		tok = Token{Type: PERCENT, Literal: string(l.ch), Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
	case '{':
		l.readChar() // Consume '{'
		l.skipBlockComment()
		return l.NextToken()
	case ':':
		if l.peekChar() == '=' {
			l.readChar() // Consume '='
			literal := l.input[startPos : l.position+1]
			tok = Token{Type: ASSIGN, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		} else {
			// ':' on its own is not an operator in this language
			tok = Token{Type: ILLEGAL, Literal: string(l.ch), Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			literal := l.input[startPos : l.position+1]
			tok = Token{Type: LT_EQ, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		} else {
			tok = Token{Type: LT, Literal: string(l.ch), Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			literal := l.input[startPos : l.position+1]
			tok = Token{Type: GT_EQ, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		} else {
			tok = Token{Type: GT, Literal: string(l.ch), Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
		}
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			literal := l.input[startPos : l.position+1]
			tok = Token{Type: EQ, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		} else {
			// Assignment is ':=', a bare '=' is always illegal
			tok = Token{Type: ILLEGAL, Literal: string(l.ch), Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			literal := l.input[startPos : l.position+1]
			tok = Token{Type: NOT_EQ, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		} else {
			tok = Token{Type: ILLEGAL, Literal: string(l.ch), Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			literal := l.input[startPos : l.position+1]
			tok = Token{Type: AND, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		} else {
			tok = Token{Type: ILLEGAL, Literal: string(l.ch), Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			literal := l.input[startPos : l.position+1]
			tok = Token{Type: OR, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		} else {
			tok = Token{Type: ILLEGAL, Literal: string(l.ch), Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
		}
	case 0:
		tok = Token{Type: EOF, Literal: "", Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
	default:
		if isLetter(l.ch) {
			literal := l.readIdentifier()
			tok = Token{Type: LookupIdent(literal), Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position - 1}
			return tok // readIdentifier already advanced past the token
		} else if isDigit(l.ch) {
			return l.readNumber(startLine, startCol, startPos)
		}
		tok = Token{Type: ILLEGAL, Literal: string(l.ch), Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
	}

	l.readChar()
	return tok
}

// readIdentifier reads a maximal run of identifier characters.
func (l *Lexer) readIdentifier() string {
	startPosition := l.position
	for isLetter(l.ch) {
		l.readChar()
	}
	return l.input[startPosition:l.position]
}

// readNumber reads an integer or float literal. A letter immediately
// following the digit run makes the whole run an ILLEGAL token: `12abc`
// is a malformed literal, not a number followed by an identifier.
func (l *Lexer) readNumber(startLine, startCol, startPos int) Token {
	l.readDigits()
	tokType := NUMBER

	if l.ch == '.' {
		l.readChar() // Consume '.'
		l.readDigits()
		tokType = FLOAT
	}

	if isLetter(l.ch) {
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		tokType = ILLEGAL
	}

	literal := l.input[startPos:l.position]
	return Token{Type: tokType, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position - 1}
}

func (l *Lexer) readDigits() {
	for isDigit(l.ch) {
		l.readChar()
	}
}
