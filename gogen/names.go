package gogen

import (
	"strings"
	"unicode"
)

// GoName converts a C declaration name to an exported Go name. Snake-case
// segments are title-cased, all-caps segments (enum members, macro names)
// are folded to one capital, and names that are already CamelCase pass
// through untouched. The transform is cosmetic only: generated wrappers
// always bind with the original exported symbol string, so nothing has to be
// converted back.
func GoName(name string) string {
	if name == "" {
		return ""
	}
	parts := strings.Split(name, "_")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		if isAllUpper(part) && len(part) > 1 {
			b.WriteString(part[:1])
			b.WriteString(strings.ToLower(part[1:]))
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	out := b.String()
	if out == "" {
		return ""
	}
	// C names can't start with a digit, but a leading underscore can leave
	// one after the split.
	if out[0] >= '0' && out[0] <= '9' {
		out = "X" + out
	}
	return out
}

// loweredName is GoName with a lowercase first rune, for parameter names and
// unexported function variables.
func loweredName(name string) string {
	goName := GoName(name)
	if goName == "" {
		return ""
	}
	runes := []rune(goName)
	runes[0] = unicode.ToLower(runes[0])
	lowered := string(runes)
	if reservedWords[lowered] {
		lowered += "_"
	}
	return lowered
}

func isAllUpper(s string) bool {
	hasLetter := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			return false
		}
		if c >= 'A' && c <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

// reservedWords are Go keywords, predeclared names and wrapper-internal
// identifiers a lowered parameter name must not collide with. "result" is the
// wrapper's return cell.
var reservedWords = map[string]bool{
	"result": true,
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true,
	"for": true, "func": true, "go": true, "goto": true, "if": true,
	"import": true, "interface": true, "map": true, "package": true,
	"range": true, "return": true, "select": true, "struct": true,
	"switch": true, "type": true, "var": true,
	"len": true, "cap": true, "new": true, "make": true, "string": true,
}
