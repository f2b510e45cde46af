// Package lexer provides lexical analysis for endpoint definition files.
// It tokenizes .ruma sources into a stream of tokens for the parser.
package lexer

import (
	"fmt"
	"strings"
)

// Lexer tokenizes endpoint definition source code.
//
// Thread Safety: Lexer instances are NOT thread-safe. Each goroutine must
// create its own Lexer instance via New().
type Lexer struct {
	source  string     // Source code to tokenize
	start   int        // Start position of current token
	current int        // Current position in source
	line    int        // Current line number (1-indexed)
	column  int        // Current column number (1-indexed)
	tokens  []Token    // Collected tokens
	errors  []LexError // Collected errors
}

// New creates a new Lexer for the given source code
func New(source string) *Lexer {
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
		tokens: make([]Token, 0),
		errors: make([]LexError, 0),
	}
}

// ScanTokens tokenizes the entire source and returns tokens and errors
func (l *Lexer) ScanTokens() ([]Token, []LexError) {
	for !l.isAtEnd() {
		l.start = l.current
		l.scanToken()
	}

	l.tokens = append(l.tokens, Token{
		Type:   TOKEN_EOF,
		Lexeme: "",
		Line:   l.line,
		Column: l.column,
	})

	return l.tokens, l.errors
}

func (l *Lexer) scanToken() {
	c := l.advance()

	switch c {
	case '{':
		l.addToken(TOKEN_LBRACE)
	case '}':
		l.addToken(TOKEN_RBRACE)
	case '(':
		l.addToken(TOKEN_LPAREN)
	case ')':
		l.addToken(TOKEN_RPAREN)
	case ':':
		l.addToken(TOKEN_COLON)
	case '?':
		l.addToken(TOKEN_QUESTION)
	case ',':
		l.addToken(TOKEN_COMMA)
	case '<':
		l.addToken(TOKEN_LT)
	case '>':
		l.addToken(TOKEN_GT)
	case '@':
		l.annotation()
	case '#':
		l.comment()
	case '"':
		l.string()
	case ' ', '\r', '\t':
		// Ignore whitespace
	case '\n':
		l.line++
		l.column = 0
	default:
		if l.isAlpha(c) {
			l.identifier()
		} else {
			l.addError(fmt.Sprintf("Unexpected character: '%c'", c))
		}
	}
}

// annotation handles @ location markers
func (l *Lexer) annotation() {
	// We've already consumed the @
	if !l.isAlpha(l.peek()) {
		// Just an @ symbol by itself
		l.addToken(TOKEN_AT)
		return
	}

	startPos := l.current
	for l.isAlphaNumeric(l.peek()) {
		l.advance()
	}

	name := l.source[startPos:l.current]
	atColumn := l.column - (l.current - l.start)

	if tokenType, ok := AnnotationKeywords[name]; ok {
		l.tokens = append(l.tokens, Token{
			Type:   tokenType,
			Lexeme: "@" + name,
			Line:   l.line,
			Column: atColumn,
		})
		return
	}

	// Unknown marker - emit @ and identifier separately so the parser can
	// report it with the marker name
	l.tokens = append(l.tokens, Token{
		Type:   TOKEN_AT,
		Lexeme: "@",
		Line:   l.line,
		Column: atColumn,
	})
	l.tokens = append(l.tokens, Token{
		Type:   TOKEN_IDENTIFIER,
		Lexeme: name,
		Line:   l.line,
		Column: atColumn + 1,
	})
}

// comment handles single-line comments starting with #
func (l *Lexer) comment() {
	for l.peek() != '\n' && !l.isAtEnd() {
		l.advance()
	}
}

// string handles string literals with escape support
func (l *Lexer) string() {
	startLine := l.line
	startColumn := l.column - 1
	value := strings.Builder{}

	for !l.isAtEnd() && l.peek() != '"' {
		if l.peek() == '\\' {
			l.advance() // consume backslash
			if l.isAtEnd() {
				break
			}
			escaped := l.advance()
			switch escaped {
			case 'n':
				value.WriteByte('\n')
			case 't':
				value.WriteByte('\t')
			case '\\':
				value.WriteByte('\\')
			case '"':
				value.WriteByte('"')
			default:
				// Unknown escape sequence - keep as-is
				value.WriteByte('\\')
				value.WriteByte(escaped)
			}
		} else if l.peek() == '\n' {
			value.WriteByte('\n')
			l.line++
			l.column = 0
			l.advance()
		} else {
			value.WriteByte(l.advance())
		}
	}

	if l.isAtEnd() {
		l.addError(fmt.Sprintf("Unterminated string starting at %d:%d", startLine, startColumn))
		return
	}

	// Consume closing "
	l.advance()

	l.tokens = append(l.tokens, Token{
		Type:    TOKEN_STRING_LITERAL,
		Lexeme:  l.source[l.start:l.current],
		Literal: value.String(),
		Line:    startLine,
		Column:  startColumn,
	})
}

// identifier handles identifiers and keywords
func (l *Lexer) identifier() {
	for l.isAlphaNumeric(l.peek()) {
		l.advance()
	}

	text := l.source[l.start:l.current]

	tokenType, isKeyword := Keywords[text]
	if !isKeyword {
		tokenType = TOKEN_IDENTIFIER
	}

	switch tokenType {
	case TOKEN_TRUE:
		l.addTokenWithLiteral(tokenType, true)
	case TOKEN_FALSE:
		l.addTokenWithLiteral(tokenType, false)
	default:
		l.addToken(tokenType)
	}
}

// Helper methods

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	c := l.source[l.current]
	l.current++
	l.column++
	return c
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

func (l *Lexer) isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		c == '_'
}

func (l *Lexer) isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (l *Lexer) isAlphaNumeric(c byte) bool {
	return l.isAlpha(c) || l.isDigit(c)
}

func (l *Lexer) addToken(tokenType TokenType) {
	l.addTokenWithLiteral(tokenType, nil)
}

func (l *Lexer) addTokenWithLiteral(tokenType TokenType, literal interface{}) {
	lexeme := l.source[l.start:l.current]
	l.tokens = append(l.tokens, Token{
		Type:    tokenType,
		Lexeme:  lexeme,
		Literal: literal,
		Line:    l.line,
		Column:  l.column - (l.current - l.start),
	})
}

func (l *Lexer) addError(message string) {
	lexeme := ""
	if l.start < len(l.source) {
		end := l.current
		if end > l.start+20 {
			end = l.start + 20
		}
		lexeme = l.source[l.start:end]
	}

	l.errors = append(l.errors, LexError{
		Message: message,
		Line:    l.line,
		Column:  l.column - (l.current - l.start),
		Lexeme:  lexeme,
	})
}

// IsKeyword checks if a string is a definition-language keyword
func IsKeyword(s string) bool {
	_, ok := Keywords[s]
	return ok
}

// IsType checks if a token type represents a primitive type
func IsType(t TokenType) bool {
	return t >= TOKEN_STRING && t <= TOKEN_HASH
}
