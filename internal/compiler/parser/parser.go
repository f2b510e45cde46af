package parser

import (
	"fmt"

	"github.com/strct/ruma/internal/compiler/ast"
	"github.com/strct/ruma/internal/compiler/lexer"
)

// Parser transforms a stream of tokens into an Abstract Syntax Tree (AST)
type Parser struct {
	tokens  []lexer.Token
	current int
	errors  []ParseError
}

// New creates a new parser for the given token stream
func New(tokens []lexer.Token) *Parser {
	return &Parser{
		tokens:  tokens,
		current: 0,
		errors:  make([]ParseError, 0),
	}
}

// Parse parses the token stream and returns the AST and any errors
func (p *Parser) Parse() (*ast.Program, []ParseError) {
	program := &ast.Program{
		Endpoints: make([]*ast.EndpointNode, 0),
	}

	for !p.isAtEnd() {
		if endpoint := p.parseEndpoint(); endpoint != nil {
			program.Endpoints = append(program.Endpoints, endpoint)
		}
	}

	return program, p.errors
}

// parseEndpoint parses one endpoint definition
func (p *Parser) parseEndpoint() *ast.EndpointNode {
	endpointToken := p.consume(lexer.TOKEN_ENDPOINT, "Expected 'endpoint' keyword")
	if endpointToken.Type == lexer.TOKEN_ERROR {
		p.synchronize()
		return nil
	}

	nameToken := p.consume(lexer.TOKEN_IDENTIFIER, "Expected endpoint name")
	if nameToken.Type == lexer.TOKEN_ERROR {
		p.synchronize()
		return nil
	}

	if !p.match(lexer.TOKEN_LBRACE) {
		p.error(p.peek(), "Expected '{' after endpoint name")
		p.synchronize()
		return nil
	}

	endpoint := &ast.EndpointNode{
		Name:     nameToken.Lexeme,
		Request:  make([]*ast.FieldNode, 0),
		Response: make([]*ast.FieldNode, 0),
		Loc:      ast.TokenLocation(endpointToken),
	}

	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		switch {
		case p.check(lexer.TOKEN_METADATA):
			p.advance()
			if endpoint.Metadata != nil {
				p.error(p.previous(), "Duplicate metadata block")
			}
			endpoint.Metadata = p.parseMetadata()
		case p.check(lexer.TOKEN_REQUEST):
			p.advance()
			endpoint.Request = p.parseSchema("request")
		case p.check(lexer.TOKEN_RESPONSE):
			p.advance()
			endpoint.Response = p.parseSchema("response")
		case p.check(lexer.TOKEN_ERROR_KW):
			errToken := p.advance()
			p.parseErrorClause(endpoint, errToken)
		default:
			p.error(p.peek(), fmt.Sprintf("Unexpected token in endpoint body: %s", p.peek().Lexeme))
			p.advance()
		}
	}

	if !p.match(lexer.TOKEN_RBRACE) {
		p.error(p.peek(), "Expected '}' after endpoint body")
	}

	if endpoint.Metadata == nil {
		p.error(endpointToken, fmt.Sprintf("Endpoint %q has no metadata block", endpoint.Name))
		return nil
	}

	return endpoint
}

// parseMetadata parses the metadata block: a brace-delimited list of
// key: value declarations.
func (p *Parser) parseMetadata() *ast.MetadataNode {
	meta := &ast.MetadataNode{
		Declared: make(map[string]bool),
		Loc:      ast.TokenLocation(p.previous()),
	}

	if !p.match(lexer.TOKEN_LBRACE) {
		p.error(p.peek(), "Expected '{' after 'metadata'")
		p.synchronize()
		return meta
	}

	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		keyToken := p.advance()
		key := keyToken.Lexeme

		if !p.match(lexer.TOKEN_COLON) {
			p.error(p.peek(), fmt.Sprintf("Expected ':' after metadata key %q", key))
			p.synchronizeToLineEnd(keyToken.Line)
			continue
		}

		if meta.Declared[key] {
			p.error(keyToken, fmt.Sprintf("Duplicate metadata key %q", key))
		}
		meta.Declared[key] = true

		switch key {
		case "description":
			meta.Description = p.stringValue(key)
		case "method":
			meta.Method = p.identValue(key)
		case "name":
			meta.Name = p.stringValue(key)
		case "path":
			meta.Path = p.stringValue(key)
		case "rate_limited":
			meta.RateLimited = p.boolValue(key)
		case "authentication":
			meta.Authentication = p.identValue(key)
		default:
			p.error(keyToken, fmt.Sprintf("Unknown metadata key %q", key))
			p.advance()
		}
	}

	if !p.match(lexer.TOKEN_RBRACE) {
		p.error(p.peek(), "Expected '}' after metadata block")
	}

	return meta
}

// parseSchema parses a request or response block: an ordered list of field
// declarations.
func (p *Parser) parseSchema(side string) []*ast.FieldNode {
	fields := make([]*ast.FieldNode, 0)

	if !p.match(lexer.TOKEN_LBRACE) {
		p.error(p.peek(), fmt.Sprintf("Expected '{' after '%s'", side))
		p.synchronize()
		return fields
	}

	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		if field := p.parseField(); field != nil {
			fields = append(fields, field)
		}
	}

	if !p.match(lexer.TOKEN_RBRACE) {
		p.error(p.peek(), fmt.Sprintf("Expected '}' after %s block", side))
	}

	return fields
}

// parseField parses one field declaration: name ':' type '?'? marker?
func (p *Parser) parseField() *ast.FieldNode {
	nameToken := p.consumeFieldName()
	if nameToken.Type == lexer.TOKEN_ERROR {
		p.synchronizeToNextField()
		return nil
	}

	if !p.match(lexer.TOKEN_COLON) {
		p.error(p.peek(), "Expected ':' after field name")
		p.synchronizeToNextField()
		return nil
	}

	fieldType := p.parseType()
	if fieldType == nil {
		p.synchronizeToNextField()
		return nil
	}

	field := &ast.FieldNode{
		Name:     nameToken.Lexeme,
		Type:     fieldType,
		Optional: p.match(lexer.TOKEN_QUESTION),
		Location: ast.LocationBody, // unmarked fields default to body
		Loc:      ast.TokenLocation(nameToken),
	}

	p.parseLocationMarker(field)

	return field
}

// parseLocationMarker parses an optional @marker after a field declaration.
// An unrecognized marker name is a definition syntax error.
func (p *Parser) parseLocationMarker(field *ast.FieldNode) {
	switch {
	case p.match(lexer.TOKEN_PATH):
		field.Location = ast.LocationPath
	case p.match(lexer.TOKEN_QUERY):
		field.Location = ast.LocationQuery
	case p.match(lexer.TOKEN_QUERY_MAP):
		field.Location = ast.LocationQueryMap
	case p.match(lexer.TOKEN_BODY):
		field.Location = ast.LocationBody
	case p.match(lexer.TOKEN_NEWTYPE_BODY):
		field.Location = ast.LocationNewtypeBody
	case p.match(lexer.TOKEN_HEADER):
		field.Location = ast.LocationHeader
		p.parseHeaderName(field)
	case p.check(lexer.TOKEN_AT):
		atToken := p.advance()
		if p.check(lexer.TOKEN_IDENTIFIER) {
			marker := p.advance()
			p.error(marker, fmt.Sprintf("Unknown location marker @%s", marker.Lexeme))
		} else {
			p.error(atToken, "Expected location marker name after '@'")
		}
	}
}

// parseHeaderName parses the optional ("Wire-Name") argument of @header.
func (p *Parser) parseHeaderName(field *ast.FieldNode) {
	if !p.match(lexer.TOKEN_LPAREN) {
		return
	}
	nameToken := p.consume(lexer.TOKEN_STRING_LITERAL, "Expected header name string after '('")
	if nameToken.Type != lexer.TOKEN_ERROR {
		if s, ok := nameToken.Literal.(string); ok {
			field.HeaderName = s
		}
	}
	if !p.match(lexer.TOKEN_RPAREN) {
		p.error(p.peek(), "Expected ')' after header name")
	}
}

// parseType parses a type reference
func (p *Parser) parseType() *ast.TypeNode {
	loc := ast.TokenLocation(p.peek())

	if p.check(lexer.TOKEN_ARRAY) {
		p.advance()
		return p.parseArrayType(loc)
	}
	if p.check(lexer.TOKEN_HASH) {
		p.advance()
		return p.parseHashType(loc)
	}
	if lexer.IsType(p.peek().Type) {
		typeToken := p.advance()
		return &ast.TypeNode{Kind: ast.TypePrimitive, Name: typeToken.Lexeme, Loc: loc}
	}
	if p.check(lexer.TOKEN_IDENTIFIER) {
		typeToken := p.advance()
		return &ast.TypeNode{Kind: ast.TypeOpaque, Name: typeToken.Lexeme, Loc: loc}
	}

	p.error(p.peek(), "Expected type name")
	return nil
}

// parseArrayType parses an array type (array<T>)
func (p *Parser) parseArrayType(loc ast.SourceLocation) *ast.TypeNode {
	if !p.match(lexer.TOKEN_LT) {
		p.error(p.peek(), "Expected '<' after 'array'")
		return nil
	}

	elementType := p.parseType()
	if elementType == nil {
		return nil
	}

	if !p.match(lexer.TOKEN_GT) {
		p.error(p.peek(), "Expected '>' after array element type")
		return nil
	}

	return &ast.TypeNode{
		Kind:        ast.TypeArray,
		Name:        "array",
		ElementType: elementType,
		Loc:         loc,
	}
}

// parseHashType parses a hash type (hash<K, V>)
func (p *Parser) parseHashType(loc ast.SourceLocation) *ast.TypeNode {
	if !p.match(lexer.TOKEN_LT) {
		p.error(p.peek(), "Expected '<' after 'hash'")
		return nil
	}

	keyType := p.parseType()
	if keyType == nil {
		return nil
	}

	if !p.match(lexer.TOKEN_COMMA) {
		p.error(p.peek(), "Expected ',' after hash key type")
		return nil
	}

	valueType := p.parseType()
	if valueType == nil {
		return nil
	}

	if !p.match(lexer.TOKEN_GT) {
		p.error(p.peek(), "Expected '>' after hash value type")
		return nil
	}

	return &ast.TypeNode{
		Kind:      ast.TypeHash,
		Name:      "hash",
		KeyType:   keyType,
		ValueType: valueType,
		Loc:       loc,
	}
}

// parseErrorClause parses the trailing 'error: Type' clause
func (p *Parser) parseErrorClause(endpoint *ast.EndpointNode, errToken lexer.Token) {
	if !p.match(lexer.TOKEN_COLON) {
		p.error(p.peek(), "Expected ':' after 'error'")
		return
	}
	typeToken := p.consume(lexer.TOKEN_IDENTIFIER, "Expected error type name")
	if typeToken.Type == lexer.TOKEN_ERROR {
		return
	}
	if endpoint.ErrorType != "" {
		p.error(errToken, "Duplicate error clause")
		return
	}
	endpoint.ErrorType = typeToken.Lexeme
	endpoint.ErrorLoc = ast.TokenLocation(errToken)
}

// Value parsers for metadata entries

func (p *Parser) stringValue(key string) string {
	token := p.consume(lexer.TOKEN_STRING_LITERAL, fmt.Sprintf("Expected string value for %q", key))
	if token.Type == lexer.TOKEN_ERROR {
		return ""
	}
	if s, ok := token.Literal.(string); ok {
		return s
	}
	return token.Lexeme
}

func (p *Parser) identValue(key string) string {
	token := p.consume(lexer.TOKEN_IDENTIFIER, fmt.Sprintf("Expected identifier value for %q", key))
	if token.Type == lexer.TOKEN_ERROR {
		return ""
	}
	return token.Lexeme
}

func (p *Parser) boolValue(key string) bool {
	if p.match(lexer.TOKEN_TRUE) {
		return true
	}
	if p.match(lexer.TOKEN_FALSE) {
		return false
	}
	p.error(p.peek(), fmt.Sprintf("Expected true or false for %q", key))
	p.advance()
	return false
}

// consumeFieldName accepts any token that can be a field name: identifiers
// and type keywords (a field may be named "body" or "error").
func (p *Parser) consumeFieldName() lexer.Token {
	t := p.peek()
	if t.Type == lexer.TOKEN_IDENTIFIER || lexer.IsType(t.Type) ||
		t.Type == lexer.TOKEN_ERROR_KW || t.Type == lexer.TOKEN_METADATA ||
		t.Type == lexer.TOKEN_REQUEST || t.Type == lexer.TOKEN_RESPONSE {
		return p.advance()
	}
	p.error(t, "Expected field name")
	return lexer.Token{Type: lexer.TOKEN_ERROR, Line: t.Line, Column: t.Column}
}

// Parser primitives

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == lexer.TOKEN_EOF
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() lexer.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(t lexer.TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) match(t lexer.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consume(t lexer.TokenType, message string) lexer.Token {
	if p.check(t) {
		return p.advance()
	}
	bad := p.peek()
	p.error(bad, message)
	return lexer.Token{Type: lexer.TOKEN_ERROR, Line: bad.Line, Column: bad.Column}
}

func (p *Parser) error(token lexer.Token, message string) {
	p.errors = append(p.errors, NewParseError(message, token))
}

// synchronize skips tokens until the next endpoint definition, the standard
// panic-mode recovery point.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.check(lexer.TOKEN_ENDPOINT) {
			return
		}
		p.advance()
	}
}

// synchronizeToNextField skips the rest of a malformed field declaration.
// Field declarations are line-oriented, so the next line starts the next
// field (or closes the block).
func (p *Parser) synchronizeToNextField() {
	startLine := p.peek().Line
	for !p.isAtEnd() && !p.check(lexer.TOKEN_RBRACE) && p.peek().Line == startLine {
		p.advance()
	}
}

// synchronizeToLineEnd skips the remainder of a malformed metadata entry.
func (p *Parser) synchronizeToLineEnd(line int) {
	for !p.isAtEnd() && !p.check(lexer.TOKEN_RBRACE) && p.peek().Line == line {
		p.advance()
	}
}
