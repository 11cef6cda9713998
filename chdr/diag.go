package chdr

import "fmt"

// DiagKind classifies a recoverable diagnostic. Fatal conditions are errors
// (*LexError, *ParseError), not diagnostics.
type DiagKind int

//go:generate go tool enumer -type=DiagKind diag.go

const (
	// DiagParseSkip marks a declaration shape outside the recognized
	// grammar subset (function-like macro, variadic prototype, union, ...).
	DiagParseSkip DiagKind = iota

	// DiagUnresolvedType marks a declaration dropped because a type name it
	// references never resolved.
	DiagUnresolvedType

	// DiagUnresolvedConstant marks a macro constant (or enum member) whose
	// value expression references names that never resolved.
	DiagUnresolvedConstant

	// DiagShadowed marks an earlier declaration replaced by a later one of
	// the same name.
	DiagShadowed
)

// Diagnostic is one recoverable problem found during parsing or resolution.
// Diagnostics accumulate on the Header and are surfaced to the caller, never
// printed and discarded.
type Diagnostic struct {
	Kind    DiagKind
	Pos     Pos
	Name    string
	Message string
}

func (d Diagnostic) String() string {
	if d.Name == "" {
		return fmt.Sprintf("%s at %s: %s", d.Kind, d.Pos, d.Message)
	}
	return fmt.Sprintf("%s at %s: %s: %s", d.Kind, d.Pos, d.Name, d.Message)
}

// ParseError is a fatal structural failure of the token stream itself, e.g.
// unbalanced braces or parentheses at end of input.
type ParseError struct {
	Pos Pos
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Pos, e.Msg)
}
