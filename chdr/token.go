// Package chdr parses the declaration surface of a C header: object-like
// macro constants, typedef'd enums and structs, callback typedefs and
// function prototypes. It deliberately covers only the grammar subset needed
// to generate foreign-function bindings; everything else is skipped with a
// recorded diagnostic.
package chdr

import "fmt"

// Pos is a position in the header source, 1-based.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// TokenKind discriminates the tokens produced by the Lexer.
type TokenKind int

//go:generate go tool enumer -type=TokenKind token.go

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenKeyword
	TokenNumber
	TokenString
	TokenChar
	TokenPunct
	TokenDirective
)

// Token is one lexical unit of the header. Tokens are immutable: produced
// once by the Lexer and consumed linearly by the Parser.
type Token struct {
	Kind TokenKind
	Text string
	Pos  Pos
}

// IsPunct reports whether the token is the given punctuation.
func (t Token) IsPunct(s string) bool {
	return t.Kind == TokenPunct && t.Text == s
}

// IsKeyword reports whether the token is the given C keyword.
func (t Token) IsKeyword(s string) bool {
	return t.Kind == TokenKeyword && t.Text == s
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Text, t.Pos)
}

// keywords are the C keywords the parser cares about. Identifiers not in
// this set lex as TokenIdent even if they are reserved words in full C.
var keywords = map[string]bool{
	"typedef":  true,
	"struct":   true,
	"enum":     true,
	"union":    true,
	"const":    true,
	"unsigned": true,
	"signed":   true,
	"extern":   true,
	"static":   true,
	"inline":   true,
	"volatile": true,
	"void":     true,
}
