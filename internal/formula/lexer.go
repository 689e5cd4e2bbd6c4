package formula

// Lexer tokenizes formula input.
type Lexer struct {
	input string
	pos   int  // current position in input
	ch    byte // current character under examination
}

// NewLexer creates a new lexer for the input string.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	tok := Token{Pos: l.pos - 1}

	switch l.ch {
	case '(':
		tok.Type, tok.Literal = TokenLParen, "("
	case ')':
		tok.Type, tok.Literal = TokenRParen, ")"
	case '!', '~':
		tok.Type, tok.Literal = TokenNot, string(l.ch)
	case '&':
		tok.Type, tok.Literal = TokenAnd, "&"
		if l.peekChar() == '&' {
			l.readChar()
			tok.Literal = "&&"
		}
	case '|':
		tok.Type, tok.Literal = TokenOr, "|"
		if l.peekChar() == '|' {
			l.readChar()
			tok.Literal = "||"
		}
	case '=':
		if l.peekChar() == '>' {
			l.readChar()
			tok.Type, tok.Literal = TokenImplies, "=>"
		} else {
			tok.Type, tok.Literal = TokenIllegal, "="
		}
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			tok.Type, tok.Literal = TokenImplies, "->"
		} else {
			tok.Type, tok.Literal = TokenIllegal, "-"
		}
	case '<':
		if l.peekAt(1) == '=' && l.peekAt(2) == '>' {
			l.readChar()
			l.readChar()
			tok.Type, tok.Literal = TokenIff, "<=>"
		} else if l.peekAt(1) == '-' && l.peekAt(2) == '>' {
			l.readChar()
			l.readChar()
			tok.Type, tok.Literal = TokenIff, "<->"
		} else {
			tok.Type, tok.Literal = TokenIllegal, "<"
		}
	case '"':
		lit, ok := l.readString()
		if !ok {
			tok.Type, tok.Literal = TokenIllegal, lit
			return tok
		}
		tok.Type, tok.Literal = TokenString, lit
		return tok
	case 0:
		tok.Type = TokenEOF
		return tok
	default:
		if isIdentChar(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupKeyword(tok.Literal)
			return tok
		}
		tok.Type, tok.Literal = TokenIllegal, string(l.ch)
	}

	l.readChar()
	return tok
}

// readChar reads the next character and advances position.
func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.pos]
	}
	l.pos++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	return l.peekAt(1)
}

func (l *Lexer) peekAt(offset int) byte {
	i := l.pos - 1 + offset
	if i >= len(l.input) {
		return 0
	}
	return l.input[i]
}

// skipWhitespace advances past whitespace characters.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readIdentifier reads a bare name. A hyphen belongs to the name unless it
// starts an "->" arrow.
func (l *Lexer) readIdentifier() string {
	start := l.pos - 1
	for isIdentChar(l.ch) || (l.ch == '-' && l.peekChar() != '>') {
		l.readChar()
	}
	return l.input[start : l.pos-1]
}

// readString reads a double quoted name. Backslash escapes the next byte.
// Reports false when the closing quote is missing.
func (l *Lexer) readString() (string, bool) {
	l.readChar() // skip opening quote
	var buf []byte
	for l.ch != '"' {
		if l.ch == 0 {
			return string(buf), false
		}
		if l.ch == '\\' && l.peekChar() != 0 {
			l.readChar()
		}
		buf = append(buf, l.ch)
		l.readChar()
	}
	l.readChar() // skip closing quote
	return string(buf), true
}

func isIdentChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c == '_' || c == '.' || c == '$' || c >= 0x80
}
