// Package formula implements propositional formulas over feature names.
//
// A Formula is an immutable AST built either with the constructors in this
// package or by Parse. The feature model only relies on Variables, which
// enumerates the distinct variable names a formula mentions.
package formula

import "strings"

// TokenType represents the type of lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal

	// Literals
	TokenIdent  // unquoted variable names
	TokenString // "quoted variable name"

	// Delimiters
	TokenLParen // (
	TokenRParen // )

	// Connectives
	TokenNot     // not, !, ~
	TokenAnd     // and, &, &&
	TokenOr      // or, |, ||
	TokenImplies // implies, =>, ->
	TokenIff     // iff, <=>, <->

	// Constants
	TokenTrue  // true
	TokenFalse // false
)

// String returns the string representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenIllegal:
		return "ILLEGAL"
	case TokenIdent:
		return "IDENT"
	case TokenString:
		return "STRING"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenNot:
		return "NOT"
	case TokenAnd:
		return "AND"
	case TokenOr:
		return "OR"
	case TokenImplies:
		return "IMPLIES"
	case TokenIff:
		return "IFF"
	case TokenTrue:
		return "TRUE"
	case TokenFalse:
		return "FALSE"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int // Position in input for error reporting
}

var keywords = map[string]TokenType{
	"not":     TokenNot,
	"and":     TokenAnd,
	"or":      TokenOr,
	"implies": TokenImplies,
	"iff":     TokenIff,
	"true":    TokenTrue,
	"false":   TokenFalse,
}

// LookupKeyword returns the token type for the given identifier.
// If the identifier is a keyword, returns the keyword token type.
// Otherwise, returns TokenIdent.
func LookupKeyword(ident string) TokenType {
	if tok, ok := keywords[strings.ToLower(ident)]; ok {
		return tok
	}
	return TokenIdent
}
