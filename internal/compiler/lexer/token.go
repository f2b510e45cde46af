package lexer

import "fmt"

// TokenType represents the type of a token in the endpoint definition language
type TokenType int

const (
	// TOKEN_EOF marks the end of the token stream.
	TOKEN_EOF TokenType = iota
	// TOKEN_ERROR represents a lexical error encountered during scanning.
	TOKEN_ERROR

	// TOKEN_ENDPOINT marks the 'endpoint' keyword opening a definition.
	TOKEN_ENDPOINT
	// TOKEN_METADATA marks the 'metadata' block keyword.
	TOKEN_METADATA
	// TOKEN_REQUEST marks the 'request' block keyword.
	TOKEN_REQUEST
	// TOKEN_RESPONSE marks the 'response' block keyword.
	TOKEN_RESPONSE
	// TOKEN_ERROR_KW marks the 'error' keyword of the error-type clause.
	TOKEN_ERROR_KW

	// Location markers
	TOKEN_PATH         // @path
	TOKEN_QUERY        // @query
	TOKEN_QUERY_MAP    // @query_map
	TOKEN_HEADER       // @header
	TOKEN_BODY         // @body
	TOKEN_NEWTYPE_BODY // @newtype_body

	// Primitive types
	TOKEN_STRING // string
	TOKEN_INT    // int
	TOKEN_FLOAT  // float
	TOKEN_BOOL   // bool
	TOKEN_JSON   // json
	TOKEN_ARRAY  // array
	TOKEN_HASH   // hash

	// Literals
	TOKEN_IDENTIFIER     // room_id, AccessToken, MatrixError, ...
	TOKEN_STRING_LITERAL // "hello"
	TOKEN_TRUE           // true
	TOKEN_FALSE          // false

	// Operators and delimiters
	TOKEN_COLON    // :
	TOKEN_QUESTION // ?
	TOKEN_COMMA    // ,
	TOKEN_AT       // @
	TOKEN_LT       // <
	TOKEN_GT       // >
	TOKEN_LBRACE   // {
	TOKEN_RBRACE   // }
	TOKEN_LPAREN   // (
	TOKEN_RPAREN   // )
)

// TokenTypeNames maps token types to their string representations
var TokenTypeNames = map[TokenType]string{
	TOKEN_EOF:            "EOF",
	TOKEN_ERROR:          "ERROR",
	TOKEN_ENDPOINT:       "ENDPOINT",
	TOKEN_METADATA:       "METADATA",
	TOKEN_REQUEST:        "REQUEST",
	TOKEN_RESPONSE:       "RESPONSE",
	TOKEN_ERROR_KW:       "ERROR_KW",
	TOKEN_PATH:           "PATH",
	TOKEN_QUERY:          "QUERY",
	TOKEN_QUERY_MAP:      "QUERY_MAP",
	TOKEN_HEADER:         "HEADER",
	TOKEN_BODY:           "BODY",
	TOKEN_NEWTYPE_BODY:   "NEWTYPE_BODY",
	TOKEN_STRING:         "STRING",
	TOKEN_INT:            "INT",
	TOKEN_FLOAT:          "FLOAT",
	TOKEN_BOOL:           "BOOL",
	TOKEN_JSON:           "JSON",
	TOKEN_ARRAY:          "ARRAY",
	TOKEN_HASH:           "HASH",
	TOKEN_IDENTIFIER:     "IDENTIFIER",
	TOKEN_STRING_LITERAL: "STRING_LITERAL",
	TOKEN_TRUE:           "TRUE",
	TOKEN_FALSE:          "FALSE",
	TOKEN_COLON:          "COLON",
	TOKEN_QUESTION:       "QUESTION",
	TOKEN_COMMA:          "COMMA",
	TOKEN_AT:             "AT",
	TOKEN_LT:             "LT",
	TOKEN_GT:             "GT",
	TOKEN_LBRACE:         "LBRACE",
	TOKEN_RBRACE:         "RBRACE",
	TOKEN_LPAREN:         "LPAREN",
	TOKEN_RPAREN:         "RPAREN",
}

// String returns the string representation of a TokenType
func (t TokenType) String() string {
	if name, ok := TokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", t)
}

// Token represents a single lexical token in an endpoint definition
type Token struct {
	Type    TokenType   // The type of the token
	Lexeme  string      // The raw text of the token
	Literal interface{} // The parsed value (for literals)
	Line    int         // Line number (1-indexed)
	Column  int         // Column number (1-indexed)
}

// String returns a string representation of the token
func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("%s '%s' (%v) at %d:%d",
			t.Type.String(), t.Lexeme, t.Literal, t.Line, t.Column)
	}
	return fmt.Sprintf("%s '%s' at %d:%d",
		t.Type.String(), t.Lexeme, t.Line, t.Column)
}

// Keywords maps reserved words to their token types
var Keywords = map[string]TokenType{
	"endpoint": TOKEN_ENDPOINT,
	"metadata": TOKEN_METADATA,
	"request":  TOKEN_REQUEST,
	"response": TOKEN_RESPONSE,
	"error":    TOKEN_ERROR_KW,

	// Primitive types
	"string": TOKEN_STRING,
	"int":    TOKEN_INT,
	"float":  TOKEN_FLOAT,
	"bool":   TOKEN_BOOL,
	"json":   TOKEN_JSON,
	"array":  TOKEN_ARRAY,
	"hash":   TOKEN_HASH,

	// Boolean literals
	"true":  TOKEN_TRUE,
	"false": TOKEN_FALSE,
}

// AnnotationKeywords maps location marker names (without @) to their token
// types. An annotation outside this set is a definition syntax error, which
// the lexer surfaces by emitting TOKEN_AT followed by the identifier.
var AnnotationKeywords = map[string]TokenType{
	"path":         TOKEN_PATH,
	"query":        TOKEN_QUERY,
	"query_map":    TOKEN_QUERY_MAP,
	"header":       TOKEN_HEADER,
	"body":         TOKEN_BODY,
	"newtype_body": TOKEN_NEWTYPE_BODY,
}

// LexError represents an error encountered during lexical analysis
type LexError struct {
	Message string // Error message
	Line    int    // Line number where error occurred
	Column  int    // Column number where error occurred
	Lexeme  string // The problematic text
}

// Error implements the error interface
func (e LexError) Error() string {
	return fmt.Sprintf("Lexical error at %d:%d: %s (near '%s')",
		e.Line, e.Column, e.Message, e.Lexeme)
}
