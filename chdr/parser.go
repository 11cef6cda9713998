package chdr

import (
	"fmt"
	"strings"
)

// Parse tokenizes and parses header source into a Header. The returned
// Header still needs Finalize before emission: constant values, enum member
// values and named type references are resolved there, after the whole
// declaration set is known, so forward references are legal.
func Parse(src string) (*Header, error) {
	toks, err := NewLexer(src).Lex()
	if err != nil {
		return nil, err
	}
	return ParseTokens(toks)
}

// ParseTokens parses an already-lexed token stream.
func ParseTokens(toks []Token) (*Header, error) {
	if err := checkBalance(toks); err != nil {
		return nil, err
	}
	p := &parser{toks: toks, hdr: newHeader()}
	p.run()
	return p.hdr, nil
}

// checkBalance verifies brace/paren/bracket nesting over the whole stream.
// A malformed stream is the only condition that aborts the run; every other
// unrecognized shape is skipped with a diagnostic.
func checkBalance(toks []Token) error {
	var stack []Token
	pairs := map[string]string{"}": "{", ")": "(", "]": "["}
	for _, t := range toks {
		if t.Kind != TokenPunct {
			continue
		}
		switch t.Text {
		case "{", "(", "[":
			stack = append(stack, t)
		case "}", ")", "]":
			if len(stack) == 0 || stack[len(stack)-1].Text != pairs[t.Text] {
				return &ParseError{Pos: t.Pos, Msg: fmt.Sprintf("unbalanced %q", t.Text)}
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		open := stack[len(stack)-1]
		return &ParseError{Pos: open.Pos, Msg: fmt.Sprintf("unclosed %q", open.Text)}
	}
	return nil
}

type parser struct {
	toks []Token
	i    int
	hdr  *Header
}

func (p *parser) cur() Token { return p.toks[p.i] }
func (p *parser) peek() Token {
	if p.i+1 < len(p.toks) {
		return p.toks[p.i+1]
	}
	return p.toks[len(p.toks)-1] // EOF
}

func (p *parser) next() Token {
	t := p.toks[p.i]
	if p.i < len(p.toks)-1 {
		p.i++
	}
	return t
}

func (p *parser) atEOF() bool { return p.cur().Kind == TokenEOF }

func (p *parser) skipDiag(pos Pos, name, format string, args ...any) {
	p.hdr.Diags = append(p.hdr.Diags, Diagnostic{
		Kind:    DiagParseSkip,
		Pos:     pos,
		Name:    name,
		Message: fmt.Sprintf(format, args...),
	})
}

// skipStatement consumes tokens through the next ';' at nesting depth zero,
// stepping over balanced braces and parens on the way.
func (p *parser) skipStatement() {
	depth := 0
	for !p.atEOF() {
		t := p.next()
		if t.Kind != TokenPunct {
			continue
		}
		switch t.Text {
		case "{", "(", "[":
			depth++
		case "}", ")", "]":
			depth--
		case ";":
			if depth <= 0 {
				return
			}
		}
	}
}

func (p *parser) run() {
	for !p.atEOF() {
		t := p.cur()
		switch {
		case t.Kind == TokenDirective:
			p.next()
			p.parseDirective(t)
		case t.IsKeyword("typedef"):
			p.parseTypedef()
		case t.IsPunct(";"):
			p.next()
		default:
			p.parsePrototype()
		}
	}
}

// --- #define constants -------------------------------------------------

// parseDirective handles one preprocessor line. Only object-like
// `#define NAME value` contributes declarations; function-like macros are
// recorded as skips, valueless defines (include guards) and every other
// directive are dropped silently.
func (p *parser) parseDirective(t Token) {
	body, ok := strings.CutPrefix(t.Text, "define")
	if !ok || (body != "" && body[0] != ' ' && body[0] != '\t') {
		return
	}
	body = strings.TrimLeft(body, " \t")
	nameEnd := 0
	for nameEnd < len(body) && isIdentPart(body[nameEnd]) {
		nameEnd++
	}
	if nameEnd == 0 || !isIdentStart(body[0]) {
		p.skipDiag(t.Pos, "", "malformed #define")
		return
	}
	name := body[:nameEnd]
	rest := body[nameEnd:]
	if strings.HasPrefix(rest, "(") {
		// Function-like macro: '(' immediately after the name.
		p.skipDiag(t.Pos, name, "function-like macro is not bindable")
		return
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		// Include guard or feature flag, nothing to bind.
		return
	}
	expr, err := lexFragment(rest)
	if err != nil {
		p.skipDiag(t.Pos, name, "unparsable macro value %q", rest)
		return
	}
	if !constExprShape(expr) && !compositeShape(expr) {
		p.skipDiag(t.Pos, name, "macro value %q is not a constant expression", rest)
		return
	}
	p.hdr.add(&ConstantDecl{Name: name, Pos: t.Pos, Expr: expr})
}

// lexFragment tokenizes an expression fragment, dropping the trailing EOF.
func lexFragment(src string) ([]Token, error) {
	toks, err := NewLexer(src).Lex()
	if err != nil {
		return nil, err
	}
	return toks[:len(toks)-1], nil
}

// constExprShape reports whether the token sequence looks like a foldable
// constant expression: a single string literal, or numbers, character
// literals and constant names combined with arithmetic/bitwise operators.
func constExprShape(toks []Token) bool {
	if len(toks) == 0 {
		return false
	}
	if toks[0].Kind == TokenString {
		return len(toks) == 1
	}
	for _, t := range toks {
		switch t.Kind {
		case TokenNumber, TokenChar, TokenIdent:
		case TokenPunct:
			if !strings.Contains("()+-*/%&|^~", t.Text) && t.Text != "<<" && t.Text != ">>" {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compositeShape reports whether the token sequence is a compound-literal
// macro value, `CLITERAL(Type){ elems }` or `(Type){ elems }`, with scalar
// constant expressions between top-level commas.
func compositeShape(toks []Token) bool {
	_, elems, ok := splitComposite(toks)
	if !ok {
		return false
	}
	for _, elem := range elems {
		if !constExprShape(elem) || (len(elem) == 1 && elem[0].Kind == TokenString) {
			return false
		}
	}
	return true
}

// splitComposite decomposes a compound-literal macro value into its type name
// and per-element token runs. ok is false when the tokens do not carry the
// `(Type){ ... }` prefix at all.
func splitComposite(toks []Token) (typeName string, elems [][]Token, ok bool) {
	if len(toks) > 0 && toks[0].Kind == TokenIdent && toks[0].Text == "CLITERAL" {
		toks = toks[1:]
	}
	if len(toks) < 5 || !toks[0].IsPunct("(") || toks[1].Kind != TokenIdent || !toks[2].IsPunct(")") ||
		!toks[3].IsPunct("{") || !toks[len(toks)-1].IsPunct("}") {
		return "", nil, false
	}
	inner := toks[4 : len(toks)-1]
	start := 0
	for i, t := range inner {
		if t.IsPunct(",") {
			elems = append(elems, inner[start:i])
			start = i + 1
		}
	}
	if start < len(inner) {
		elems = append(elems, inner[start:])
	}
	return toks[1].Text, elems, true
}

// --- typedefs -----------------------------------------------------------

func (p *parser) parseTypedef() {
	start := p.cur().Pos
	p.next() // typedef
	switch {
	case p.cur().IsKeyword("struct"):
		p.parseStruct(start)
	case p.cur().IsKeyword("enum"):
		p.parseEnum(start)
	case p.cur().IsKeyword("union"):
		p.skipDiag(start, "", "unions are not bindable")
		p.skipStatement()
	default:
		p.parseAliasOrCallback(start)
	}
}

// parseStruct handles `typedef struct Tag? { fields } Name;` plus the opaque
// forms `typedef struct Tag Name;` and `typedef struct Tag *Name;`.
func (p *parser) parseStruct(start Pos) {
	p.next() // struct
	tag := ""
	if p.cur().Kind == TokenIdent {
		tag = p.next().Text
	}

	if !p.cur().IsPunct("{") {
		// Opaque: no body in this header.
		opaque := &StructDecl{Tag: tag, Pos: start, Opaque: true}
		if p.cur().IsPunct("*") {
			p.next()
		}
		if p.cur().Kind != TokenIdent {
			p.skipDiag(start, tag, "malformed struct typedef")
			p.skipStatement()
			return
		}
		opaque.Name = p.next().Text
		p.expectSemi()
		p.hdr.add(opaque)
		return
	}

	p.next() // '{'
	fields, nested, reason := p.parseFieldBlock()
	// '}' was consumed by parseFieldBlock.
	if p.cur().Kind != TokenIdent {
		p.skipDiag(start, tag, "struct body without a typedef name")
		p.skipStatement()
		return
	}
	name := p.next().Text
	p.expectSemi()

	if reason != "" {
		p.skipDiag(start, name, "%s", reason)
		return
	}
	// Synthesized declarations for anonymous nested field groups are named
	// after the enclosing typedef and emitted ahead of it.
	for _, n := range nested {
		n.decl.Name = name + "_" + n.field
		fields[n.index].Type = &Named{Name: n.decl.Name}
		p.hdr.add(n.decl)
	}
	p.hdr.add(&StructDecl{Name: name, Tag: tag, Pos: start, Fields: fields})
}

type nestedStruct struct {
	decl  *StructDecl
	field string
	index int
}

// parseFieldBlock consumes struct fields up to and including the closing
// '}'. A non-empty reason means the whole struct must be skipped (nested
// union, bit-field, or a field shape the grammar subset cannot express).
func (p *parser) parseFieldBlock() (fields []Field, nested []nestedStruct, reason string) {
	for !p.atEOF() && !p.cur().IsPunct("}") {
		if p.cur().IsKeyword("union") {
			reason = "nested union"
			p.consumeBlockRemainder()
			return nil, nil, reason
		}
		if p.cur().IsKeyword("struct") && (p.peek().IsPunct("{") || p.peek().Kind == TokenIdent) {
			// Anonymous nested group: struct { ... } name;
			if p.peek().IsPunct("{") {
				pos := p.cur().Pos
				p.next() // struct
				p.next() // '{'
				inner, innerNested, innerReason := p.parseFieldBlock()
				if innerReason != "" || len(innerNested) > 0 {
					reason = "unsupported nested field group"
					p.consumeBlockRemainder()
					return nil, nil, reason
				}
				if p.cur().Kind != TokenIdent {
					reason = "anonymous field group without a name"
					p.consumeBlockRemainder()
					return nil, nil, reason
				}
				fname := p.next().Text
				if !p.cur().IsPunct(";") {
					reason = "malformed nested field group"
					p.consumeBlockRemainder()
					return nil, nil, reason
				}
				p.next() // ';'
				nested = append(nested, nestedStruct{
					decl:  &StructDecl{Pos: pos, Fields: inner},
					field: fname,
					index: len(fields),
				})
				fields = append(fields, Field{Name: fname, Pos: pos})
				continue
			}
		}

		fs, ok, bad := p.parseFieldDecl()
		if bad != "" {
			reason = bad
			p.consumeBlockRemainder()
			return nil, nil, reason
		}
		if !ok {
			reason = "unrecognized field declaration"
			p.consumeBlockRemainder()
			return nil, nil, reason
		}
		fields = append(fields, fs...)
	}
	if p.cur().IsPunct("}") {
		p.next()
	}
	return fields, nested, ""
}

// consumeBlockRemainder steps past the rest of the current brace block,
// leaving the parser just after its closing '}'.
func (p *parser) consumeBlockRemainder() {
	depth := 1
	for !p.atEOF() && depth > 0 {
		t := p.next()
		if t.IsPunct("{") {
			depth++
		} else if t.IsPunct("}") {
			depth--
		}
	}
}

// parseFieldDecl parses `Type name ([N])? (, name2 ([M])?)* ;` where every
// comma-separated declarator shares the base type but carries its own
// pointer stars and array length.
func (p *parser) parseFieldDecl() (fields []Field, ok bool, bad string) {
	base, ok := p.parseBaseType()
	if !ok {
		return nil, false, ""
	}
	for {
		pos := p.cur().Pos
		typ := base
		for p.cur().IsPunct("*") {
			p.next()
			typ = &Pointer{Elem: typ}
		}
		if p.cur().Kind != TokenIdent {
			return nil, false, ""
		}
		name := p.next().Text
		if p.cur().IsPunct(":") {
			return nil, false, "bit-field"
		}
		if p.cur().IsPunct("[") {
			arr, aok := p.parseArraySuffix(typ)
			if !aok {
				return nil, false, ""
			}
			typ = arr
		}
		fields = append(fields, Field{Name: name, Pos: pos, Type: typ})
		if p.cur().IsPunct(",") {
			p.next()
			continue
		}
		break
	}
	if !p.cur().IsPunct(";") {
		return nil, false, ""
	}
	p.next()
	return fields, true, ""
}

// parseArraySuffix consumes `[N]` where N is an integer literal or a macro
// constant name (resolved during Finalize).
func (p *parser) parseArraySuffix(elem Type) (Type, bool) {
	p.next() // '['
	arr := &Array{Elem: elem}
	switch p.cur().Kind {
	case TokenNumber:
		n, err := parseIntLiteral(p.next().Text)
		if err != nil || n <= 0 {
			return nil, false
		}
		arr.Len = int(n)
	case TokenIdent:
		arr.LenName = p.next().Text
	default:
		return nil, false
	}
	if !p.cur().IsPunct("]") {
		return nil, false
	}
	p.next()
	return arr, true
}

// parseEnum handles `typedef enum Tag? { A, B = expr, ... } Name;`. Member
// value expressions are kept as tokens and evaluated during Finalize, with
// auto-increment for omitted values.
func (p *parser) parseEnum(start Pos) {
	p.next() // enum
	if p.cur().Kind == TokenIdent {
		p.next() // tag
	}
	if !p.cur().IsPunct("{") {
		p.skipDiag(start, "", "enum without a body")
		p.skipStatement()
		return
	}
	p.next()
	var members []EnumMember
	for !p.atEOF() && !p.cur().IsPunct("}") {
		if p.cur().Kind != TokenIdent {
			p.skipDiag(start, "", "malformed enum member")
			p.skipStatement()
			return
		}
		m := EnumMember{Name: p.cur().Text, Pos: p.cur().Pos}
		p.next()
		if p.cur().IsPunct("=") {
			p.next()
			for !p.atEOF() && !p.cur().IsPunct(",") && !p.cur().IsPunct("}") {
				m.Expr = append(m.Expr, p.next())
			}
			if len(m.Expr) == 0 {
				p.skipDiag(start, m.Name, "enum member with empty value")
				p.skipStatement()
				return
			}
		}
		members = append(members, m)
		if p.cur().IsPunct(",") {
			p.next()
		}
	}
	if p.cur().IsPunct("}") {
		p.next()
	}
	if p.cur().Kind != TokenIdent {
		p.skipDiag(start, "", "enum body without a typedef name")
		p.skipStatement()
		return
	}
	name := p.next().Text
	p.expectSemi()
	if len(members) == 0 {
		p.skipDiag(start, name, "empty enum")
		return
	}
	p.hdr.add(&EnumDecl{Name: name, Pos: start, Members: members})
}

// parseAliasOrCallback handles the two remaining typedef forms:
//
//	typedef <type> Name;          -> TypeAliasDecl
//	typedef <type> (*Name)(...);  -> CallbackDecl
func (p *parser) parseAliasOrCallback(start Pos) {
	base, ok := p.parseBaseType()
	if !ok {
		p.skipDiag(start, "", "unrecognized typedef")
		p.skipStatement()
		return
	}
	for p.cur().IsPunct("*") {
		p.next()
		base = &Pointer{Elem: base}
	}

	if p.cur().IsPunct("(") {
		// Callback notation: (*Name)(params)
		p.next()
		if !p.cur().IsPunct("*") {
			p.skipDiag(start, "", "unrecognized typedef declarator")
			p.skipStatement()
			return
		}
		p.next()
		if p.cur().Kind != TokenIdent {
			p.skipDiag(start, "", "callback typedef without a name")
			p.skipStatement()
			return
		}
		name := p.next().Text
		if !p.cur().IsPunct(")") {
			p.skipDiag(start, name, "malformed callback typedef")
			p.skipStatement()
			return
		}
		p.next()
		params, perr := p.parseParamList()
		if perr != "" {
			p.skipDiag(start, name, "%s", perr)
			p.skipStatement()
			return
		}
		p.expectSemi()
		p.hdr.add(&CallbackDecl{Name: name, Pos: start, Ret: base, Params: params})
		return
	}

	if p.cur().Kind != TokenIdent {
		p.skipDiag(start, "", "unrecognized typedef")
		p.skipStatement()
		return
	}
	name := p.next().Text
	p.expectSemi()
	p.hdr.add(&TypeAliasDecl{Name: name, Pos: start, Target: base})
}

// --- function prototypes -------------------------------------------------

// parsePrototype handles any other top-level run of tokens. A shape of
// `ReturnType Name ( params ) ;` becomes a FunctionDecl; a body instead of
// ';' or any unrecognized shape is skipped with a diagnostic.
func (p *parser) parsePrototype() {
	start := p.cur().Pos

	for p.cur().IsKeyword("extern") {
		p.next()
	}
	if p.cur().IsKeyword("static") || p.cur().IsKeyword("inline") {
		p.skipDiag(start, "", "static/inline definition is not part of the exported surface")
		p.skipBody()
		return
	}

	// An all-caps identifier in front of the return type is an export
	// annotation macro (RLAPI, MYLIB_API, ...) and carries no type meaning.
	if p.cur().Kind == TokenIdent && isExportMacro(p.cur().Text) && looksLikeType(p.peek()) {
		p.next()
	}

	ret, ok := p.parseBaseType()
	if !ok {
		p.skipDiag(start, "", "unrecognized top-level declaration")
		p.skipBody()
		return
	}
	for p.cur().IsPunct("*") {
		p.next()
		ret = &Pointer{Elem: ret}
	}
	if p.cur().Kind != TokenIdent {
		p.skipDiag(start, "", "unrecognized top-level declaration")
		p.skipBody()
		return
	}
	name := p.next().Text
	if !p.cur().IsPunct("(") {
		p.skipDiag(start, name, "top-level object declarations are not bindable")
		p.skipBody()
		return
	}
	params, perr := p.parseParamList()
	if perr != "" {
		p.skipDiag(start, name, "%s", perr)
		p.skipBody()
		return
	}
	if p.cur().IsPunct("{") {
		p.skipDiag(start, name, "function with inline body")
		p.skipBody()
		return
	}
	p.expectSemi()
	p.hdr.add(&FunctionDecl{Name: name, Pos: start, Ret: ret, Params: params})
}

// skipBody consumes a malformed or unsupported top-level declaration: either
// through the next ';' at depth zero, or over one balanced brace block.
func (p *parser) skipBody() {
	for !p.atEOF() {
		t := p.cur()
		if t.IsPunct(";") {
			p.next()
			return
		}
		if t.IsPunct("{") {
			p.next()
			p.consumeBlockRemainder()
			if p.cur().IsPunct(";") {
				p.next()
			}
			return
		}
		if t.Kind == TokenDirective || t.IsKeyword("typedef") {
			return
		}
		p.next()
	}
}

// parseParamList consumes '(' ... ')'. It returns a human-readable skip
// reason instead of an error type: every failure here downgrades the owning
// declaration to a ParseSkip, never aborts the run.
func (p *parser) parseParamList() ([]Param, string) {
	if !p.cur().IsPunct("(") {
		return nil, "missing parameter list"
	}
	p.next()

	// `(void)` declares zero parameters.
	if p.cur().IsKeyword("void") && p.peek().IsPunct(")") {
		p.next()
		p.next()
		return nil, ""
	}
	if p.cur().IsPunct(")") {
		p.next()
		return nil, ""
	}

	var params []Param
	for {
		if p.cur().IsPunct("...") {
			return nil, "variadic parameters are not bindable"
		}
		param, reason := p.parseParam()
		if reason != "" {
			return nil, reason
		}
		params = append(params, param)
		if p.cur().IsPunct(",") {
			p.next()
			continue
		}
		break
	}
	if !p.cur().IsPunct(")") {
		return nil, "malformed parameter list"
	}
	p.next()
	return params, ""
}

func (p *parser) parseParam() (Param, string) {
	base, ok := p.parseBaseType()
	if !ok {
		return Param{}, "unrecognized parameter type"
	}
	typ := base
	for p.cur().IsPunct("*") {
		p.next()
		typ = &Pointer{Elem: typ}
	}

	if p.cur().IsPunct("(") {
		// Inline function-pointer parameter: ret (*name)(types...)
		p.next()
		if !p.cur().IsPunct("*") {
			return Param{}, "unrecognized parameter declarator"
		}
		p.next()
		name := ""
		if p.cur().Kind == TokenIdent {
			name = p.next().Text
		}
		if !p.cur().IsPunct(")") {
			return Param{}, "malformed function-pointer parameter"
		}
		p.next()
		inner, reason := p.parseParamList()
		if reason != "" {
			return Param{}, reason
		}
		fp := &FuncPtr{Ret: typ}
		for _, ip := range inner {
			fp.Params = append(fp.Params, ip.Type)
		}
		return Param{Name: name, Type: fp}, ""
	}

	name := ""
	if p.cur().Kind == TokenIdent {
		name = p.next().Text
	}
	if p.cur().IsPunct("[") {
		// Array parameters decay to pointers.
		if _, aok := p.parseArraySuffix(typ); !aok {
			return Param{}, "malformed array parameter"
		}
		typ = &Pointer{Elem: typ}
	}
	return Param{Name: name, Type: typ}, ""
}

// --- shared type-spelling parsing ----------------------------------------

// primWords are the tokens that may combine into a multi-word primitive
// spelling ("unsigned long long int").
var primWords = map[string]bool{
	"void": true, "bool": true, "_Bool": true, "char": true, "short": true,
	"int": true, "long": true, "float": true, "double": true,
	"signed": true, "unsigned": true, "_Float16": true, "__fp16": true,
}

// parseBaseType consumes qualifiers and one base type: a (possibly
// multi-word) primitive, `struct Tag`/`enum Tag`, or a named reference.
// Pointer stars belong to the declarator and are not consumed here.
func (p *parser) parseBaseType() (Type, bool) {
	for p.cur().IsKeyword("const") || p.cur().IsKeyword("volatile") {
		p.next()
	}
	t := p.cur()

	if t.IsKeyword("struct") || t.IsKeyword("enum") {
		p.next()
		if p.cur().Kind != TokenIdent {
			return nil, false
		}
		return &Named{Name: p.next().Text}, true
	}

	if primWords[t.Text] {
		words := []string{p.next().Text}
		for primWords[p.cur().Text] {
			words = append(words, p.next().Text)
		}
		for p.cur().IsKeyword("const") || p.cur().IsKeyword("volatile") {
			p.next()
		}
		typ, ok := lookupPrimitive(strings.Join(words, " "))
		return typ, ok
	}

	if t.Kind == TokenIdent {
		p.next()
		for p.cur().IsKeyword("const") || p.cur().IsKeyword("volatile") {
			p.next()
		}
		if typ, ok := lookupPrimitive(t.Text); ok {
			return typ, true
		}
		return &Named{Name: t.Text}, true
	}
	return nil, false
}

// expectSemi consumes the declaration-ending ';' when present; a missing one
// is tolerated so a single sloppy line does not take down its neighbours.
func (p *parser) expectSemi() {
	if p.cur().IsPunct(";") {
		p.next()
	}
}

// isExportMacro matches the ALL_CAPS export annotations libraries put in
// front of their prototypes (RLAPI, GLFWAPI, MYLIB_EXPORT).
func isExportMacro(s string) bool {
	if len(s) < 2 {
		return false
	}
	upper := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			upper = true
		case c == '_' || isDigit(c):
		default:
			return false
		}
	}
	return upper && !primWords[s]
}

// looksLikeType reports whether a token can start a type spelling.
func looksLikeType(t Token) bool {
	if t.Kind == TokenIdent {
		return true
	}
	return t.Kind == TokenKeyword && (primWords[t.Text] || t.Text == "const" ||
		t.Text == "struct" || t.Text == "enum" || t.Text == "void")
}
