package formula

import (
	"errors"
	"fmt"
)

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("formula syntax error")

// Parser parses formula tokens into an AST.
//
// Grammar, loosest binding first:
//
//	iff     = implies { "iff" implies }
//	implies = or [ "implies" implies ]
//	or      = and { "or" and }
//	and     = unary { "and" unary }
//	unary   = "not" unary | "(" iff ")" | name | "true" | "false"
type Parser struct {
	lexer   *Lexer
	current Token
	peek    Token
}

// NewParser creates a parser for the input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	// Prime the parser with two tokens
	p.nextToken()
	p.nextToken()
	return p
}

// Parse is shorthand for NewParser(input).Parse().
func Parse(input string) (Formula, error) {
	return NewParser(input).Parse()
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(input string) Formula {
	f, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return f
}

// Parse parses the whole input as one formula.
func (p *Parser) Parse() (Formula, error) {
	if p.current.Type == TokenEOF {
		return nil, fmt.Errorf("%w: empty formula", ErrSyntax)
	}
	f, err := p.parseIff()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenEOF {
		return nil, p.unexpected("end of input")
	}
	return f, nil
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.current = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) parseIff() (Formula, error) {
	left, err := p.parseImplies()
	if err != nil {
		return nil, err
	}
	for p.current.Type == TokenIff {
		p.nextToken() // consume IFF
		right, err := p.parseImplies()
		if err != nil {
			return nil, err
		}
		left = Iff(left, right)
	}
	return left, nil
}

func (p *Parser) parseImplies() (Formula, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenImplies {
		return left, nil
	}
	p.nextToken() // consume IMPLIES
	right, err := p.parseImplies()
	if err != nil {
		return nil, err
	}
	return Implies(left, right), nil
}

func (p *Parser) parseOr() (Formula, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	operands := []Formula{first}
	for p.current.Type == TokenOr {
		p.nextToken() // consume OR
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return first, nil
	}
	return Or(operands...), nil
}

func (p *Parser) parseAnd() (Formula, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	operands := []Formula{first}
	for p.current.Type == TokenAnd {
		p.nextToken() // consume AND
		next, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return first, nil
	}
	return And(operands...), nil
}

func (p *Parser) parseUnary() (Formula, error) {
	switch p.current.Type {
	case TokenNot:
		p.nextToken() // consume NOT
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not(operand), nil

	case TokenLParen:
		p.nextToken() // consume (
		f, err := p.parseIff()
		if err != nil {
			return nil, err
		}
		if p.current.Type != TokenRParen {
			return nil, p.unexpected("')'")
		}
		p.nextToken() // consume )
		return f, nil

	case TokenIdent, TokenString:
		name := p.current.Literal
		if name == "" {
			return nil, fmt.Errorf("%w: empty variable name at position %d", ErrSyntax, p.current.Pos)
		}
		p.nextToken()
		return Var(name), nil

	case TokenTrue:
		p.nextToken()
		return True(), nil

	case TokenFalse:
		p.nextToken()
		return False(), nil

	default:
		return nil, p.unexpected("variable, constant, 'not' or '('")
	}
}

func (p *Parser) unexpected(expected string) error {
	if p.current.Type == TokenEOF {
		return fmt.Errorf("%w: expected %s at position %d, got end of input", ErrSyntax, expected, p.current.Pos)
	}
	return fmt.Errorf("%w: expected %s at position %d, got %q", ErrSyntax, expected, p.current.Pos, p.current.Literal)
}
