package chdr

import (
	"fmt"
	"strings"
)

// LexError is a fatal tokenization failure: an unterminated string, char or
// block comment, or a byte the lexer cannot classify. It aborts the run.
type LexError struct {
	Pos Pos
	Msg string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %s: %s", e.Pos, e.Msg)
}

// Lexer converts header source text into tokens. It strips comments, treats
// whitespace as a separator only and captures each preprocessor line
// (including backslash continuations) as a single TokenDirective token.
//
// A Lexer is single-use; construct a new one to restart from the beginning.
type Lexer struct {
	src  string
	off  int
	pos  Pos
	bol  bool // only whitespace seen since the last newline
	done bool
}

// NewLexer returns a Lexer over the given header source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, pos: Pos{Line: 1, Col: 1}, bol: true}
}

// Lex tokenizes the whole source. The returned slice always ends with a
// TokenEOF token on success.
func (lx *Lexer) Lex() ([]Token, error) {
	if lx.done {
		return nil, &LexError{Pos: lx.pos, Msg: "lexer already consumed"}
	}
	lx.done = true
	var toks []Token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == TokenEOF {
			return toks, nil
		}
	}
}

func (lx *Lexer) errf(pos Pos, format string, args ...any) error {
	return &LexError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (lx *Lexer) peek() byte {
	if lx.off >= len(lx.src) {
		return 0
	}
	return lx.src[lx.off]
}

func (lx *Lexer) peekAt(n int) byte {
	if lx.off+n >= len(lx.src) {
		return 0
	}
	return lx.src[lx.off+n]
}

// advance consumes one byte, keeping line/column and beginning-of-line state.
func (lx *Lexer) advance() byte {
	c := lx.src[lx.off]
	lx.off++
	if c == '\n' {
		lx.pos.Line++
		lx.pos.Col = 1
		lx.bol = true
	} else {
		lx.pos.Col++
		if c != ' ' && c != '\t' && c != '\r' {
			lx.bol = false
		}
	}
	return c
}

func (lx *Lexer) next() (Token, error) {
	if err := lx.skipSpaceAndComments(); err != nil {
		return Token{}, err
	}
	start := lx.pos
	if lx.off >= len(lx.src) {
		return Token{Kind: TokenEOF, Pos: start}, nil
	}

	c := lx.peek()
	switch {
	case c == '#' && lx.bol:
		return lx.lexDirective()
	case isIdentStart(c):
		return lx.lexIdent(), nil
	case isDigit(c) || (c == '.' && isDigit(lx.peekAt(1))):
		return lx.lexNumber(), nil
	case c == '"':
		return lx.lexString()
	case c == '\'':
		return lx.lexChar()
	default:
		return lx.lexPunct()
	}
}

func (lx *Lexer) skipSpaceAndComments() error {
	for lx.off < len(lx.src) {
		c := lx.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			lx.advance()
		case c == '/' && lx.peekAt(1) == '/':
			for lx.off < len(lx.src) && lx.peek() != '\n' {
				lx.advance()
			}
		case c == '/' && lx.peekAt(1) == '*':
			openAt := lx.pos
			lx.advance()
			lx.advance()
			closed := false
			for lx.off < len(lx.src) {
				if lx.peek() == '*' && lx.peekAt(1) == '/' {
					lx.advance()
					lx.advance()
					closed = true
					break
				}
				lx.advance()
			}
			if !closed {
				return lx.errf(openAt, "unterminated block comment")
			}
		default:
			return nil
		}
	}
	return nil
}

// lexDirective captures one logical preprocessor line, splicing
// backslash-newline continuations into a single space. The leading '#' is
// dropped from the token text, so "#define N 8" carries "define N 8".
func (lx *Lexer) lexDirective() (Token, error) {
	start := lx.pos
	lx.advance() // '#'
	var b strings.Builder
	for lx.off < len(lx.src) {
		c := lx.peek()
		if c == '\\' && (lx.peekAt(1) == '\n' || (lx.peekAt(1) == '\r' && lx.peekAt(2) == '\n')) {
			lx.advance()
			for lx.peek() == '\r' {
				lx.advance()
			}
			lx.advance() // '\n'
			b.WriteByte(' ')
			continue
		}
		if c == '\n' {
			break
		}
		// Comments end the directive body the same way a newline does.
		if c == '/' && lx.peekAt(1) == '/' {
			break
		}
		lx.advance()
		b.WriteByte(c)
	}
	text := strings.TrimSpace(b.String())
	return Token{Kind: TokenDirective, Text: text, Pos: start}, nil
}

func (lx *Lexer) lexIdent() Token {
	start := lx.pos
	begin := lx.off
	for lx.off < len(lx.src) && isIdentPart(lx.peek()) {
		lx.advance()
	}
	text := lx.src[begin:lx.off]
	kind := TokenIdent
	if keywords[text] {
		kind = TokenKeyword
	}
	return Token{Kind: kind, Text: text, Pos: start}
}

// lexNumber consumes a C pp-number: digits, hex digits, '.', integer and
// real suffixes, and signed exponents (1e-5, 0x1p+3).
func (lx *Lexer) lexNumber() Token {
	start := lx.pos
	begin := lx.off
	for lx.off < len(lx.src) {
		c := lx.peek()
		if isIdentPart(c) || c == '.' {
			lx.advance()
			continue
		}
		if (c == '+' || c == '-') && lx.off > begin {
			prev := lx.src[lx.off-1]
			if prev == 'e' || prev == 'E' || prev == 'p' || prev == 'P' {
				lx.advance()
				continue
			}
		}
		break
	}
	return Token{Kind: TokenNumber, Text: lx.src[begin:lx.off], Pos: start}
}

func (lx *Lexer) lexString() (Token, error) {
	start := lx.pos
	begin := lx.off
	lx.advance() // opening quote
	for lx.off < len(lx.src) {
		c := lx.peek()
		if c == '\n' {
			return Token{}, lx.errf(start, "unterminated string literal")
		}
		lx.advance()
		if c == '\\' && lx.off < len(lx.src) {
			lx.advance()
			continue
		}
		if c == '"' {
			return Token{Kind: TokenString, Text: lx.src[begin:lx.off], Pos: start}, nil
		}
	}
	return Token{}, lx.errf(start, "unterminated string literal")
}

func (lx *Lexer) lexChar() (Token, error) {
	start := lx.pos
	begin := lx.off
	lx.advance() // opening quote
	for lx.off < len(lx.src) {
		c := lx.peek()
		if c == '\n' {
			return Token{}, lx.errf(start, "unterminated character literal")
		}
		lx.advance()
		if c == '\\' && lx.off < len(lx.src) {
			lx.advance()
			continue
		}
		if c == '\'' {
			return Token{Kind: TokenChar, Text: lx.src[begin:lx.off], Pos: start}, nil
		}
	}
	return Token{}, lx.errf(start, "unterminated character literal")
}

// multiPuncts are matched longest-first before single-byte punctuation.
var multiPuncts = []string{"...", "<<", ">>", "->", "&&", "||", "==", "!=", "<=", ">="}

func (lx *Lexer) lexPunct() (Token, error) {
	start := lx.pos
	rest := lx.src[lx.off:]
	for _, p := range multiPuncts {
		if strings.HasPrefix(rest, p) {
			for range p {
				lx.advance()
			}
			return Token{Kind: TokenPunct, Text: p, Pos: start}, nil
		}
	}
	c := lx.peek()
	if strings.IndexByte("{}()[];,*=+-/%&|^~<>!.?:#", c) >= 0 {
		lx.advance()
		return Token{Kind: TokenPunct, Text: string(c), Pos: start}, nil
	}
	return Token{}, lx.errf(start, "unexpected character %q", string(c))
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
