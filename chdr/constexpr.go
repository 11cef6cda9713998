package chdr

import (
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// errUnresolvedRef signals that an expression references a constant whose
// value is not known yet. The fixpoint loop in resolveConstants retries such
// expressions until no further progress is possible.
var errUnresolvedRef = errors.New("unresolved constant reference")

// resolveConstants evaluates every ConstantDecl expression after the whole
// header has been parsed. Running as a fixpoint over the remaining pending
// constants makes macro-to-macro forward references order-independent: a
// deterministic choice for the disambiguation the original tool left open.
func resolveConstants(h *Header) {
	env := make(map[string]ConstValue)
	var pending []*ConstantDecl
	for _, d := range h.Decls {
		if c, ok := d.(*ConstantDecl); ok && !h.excluded[c] {
			pending = append(pending, c)
		}
	}

	for len(pending) > 0 {
		progress := false
		var next []*ConstantDecl
		for _, c := range pending {
			v, err := evalConstExpr(c.Expr, env)
			switch {
			case err == nil:
				if v.Kind == ConstComposite {
					if cerr := h.checkCompositeType(&v); cerr != nil {
						h.exclude(c, DiagUnresolvedType, cerr.Error())
						progress = true
						continue
					}
				}
				c.Value = &v
				env[c.Name] = v
				progress = true
			case errors.Is(err, errUnresolvedRef):
				next = append(next, c)
			default:
				h.exclude(c, DiagUnresolvedConstant, err.Error())
				progress = true
			}
		}
		pending = next
		if !progress {
			break
		}
	}
	// `#define Quaternion Vector4` never resolves as a constant, but when the
	// right-hand side names a declared type the define is a type alias.
	for _, c := range pending {
		if h.promoteTypeAlias(c) {
			continue
		}
		h.exclude(c, DiagUnresolvedConstant, "value expression references undefined constants")
	}
}

// evalConstExpr folds a macro value expression: a single string literal, or
// integer/float arithmetic with the usual bitwise operators, over literals
// and previously resolved constant names.
func evalConstExpr(toks []Token, env map[string]ConstValue) (ConstValue, error) {
	if len(toks) == 1 && toks[0].Kind == TokenString {
		s, err := strconv.Unquote(toks[0].Text)
		if err != nil {
			return ConstValue{}, errors.Errorf("bad string literal %s", toks[0].Text)
		}
		return ConstValue{Kind: ConstString, Str: s, GoType: "string"}, nil
	}
	if typeName, elems, ok := splitComposite(toks); ok {
		v := ConstValue{Kind: ConstComposite, Type: typeName}
		for _, et := range elems {
			ev, err := evalConstExpr(et, env)
			if err != nil {
				return ConstValue{}, err
			}
			if ev.Kind != ConstInt && ev.Kind != ConstFloat {
				return ConstValue{}, errors.Errorf("compound literal element is not numeric at %s", et[0].Pos)
			}
			v.Elems = append(v.Elems, inferConstType(ev))
		}
		return v, nil
	}
	ev := &constEval{toks: toks, env: env}
	v, err := ev.parseBinary(0)
	if err != nil {
		return ConstValue{}, err
	}
	if ev.i != len(ev.toks) {
		return ConstValue{}, errors.Errorf("trailing tokens in constant expression at %s", ev.toks[ev.i].Pos)
	}
	return inferConstType(v), nil
}

// inferConstType fills GoType: integers stay int64; floating values become
// float32 when they fit in a float32's range, float64 otherwise.
func inferConstType(v ConstValue) ConstValue {
	switch v.Kind {
	case ConstInt:
		v.GoType = "int64"
	case ConstFloat:
		f := v.Float
		if f < 0 {
			f = -f
		}
		if f <= float64(math32.MaxFloat32) {
			v.GoType = "float32"
		} else {
			v.GoType = "float64"
		}
	}
	return v
}

type constEval struct {
	toks []Token
	env  map[string]ConstValue
	i    int
}

// binaryPrec returns the precedence of a binary operator token, 0 when the
// token is not one. C precedence order, comparisons excluded.
func binaryPrec(t Token) int {
	if t.Kind != TokenPunct {
		return 0
	}
	switch t.Text {
	case "|":
		return 1
	case "^":
		return 2
	case "&":
		return 3
	case "<<", ">>":
		return 4
	case "+", "-":
		return 5
	case "*", "/", "%":
		return 6
	}
	return 0
}

func (ev *constEval) parseBinary(minPrec int) (ConstValue, error) {
	left, err := ev.parseUnary()
	if err != nil {
		return ConstValue{}, err
	}
	for ev.i < len(ev.toks) {
		op := ev.toks[ev.i]
		prec := binaryPrec(op)
		if prec == 0 || prec < minPrec {
			break
		}
		ev.i++
		right, err := ev.parseBinary(prec + 1)
		if err != nil {
			return ConstValue{}, err
		}
		left, err = applyBinary(op, left, right)
		if err != nil {
			return ConstValue{}, err
		}
	}
	return left, nil
}

func (ev *constEval) parseUnary() (ConstValue, error) {
	if ev.i >= len(ev.toks) {
		return ConstValue{}, errors.New("unexpected end of constant expression")
	}
	t := ev.toks[ev.i]
	if t.Kind == TokenPunct {
		switch t.Text {
		case "-":
			ev.i++
			v, err := ev.parseUnary()
			if err != nil {
				return ConstValue{}, err
			}
			switch v.Kind {
			case ConstFloat:
				v.Float = -v.Float
			case ConstInt:
				v.Int = -v.Int
			default:
				return ConstValue{}, errors.Errorf("operator - needs a numeric operand at %s", t.Pos)
			}
			return v, nil
		case "+":
			ev.i++
			return ev.parseUnary()
		case "~":
			ev.i++
			v, err := ev.parseUnary()
			if err != nil {
				return ConstValue{}, err
			}
			if v.Kind != ConstInt {
				return ConstValue{}, errors.Errorf("operator ~ needs an integer operand at %s", t.Pos)
			}
			v.Int = ^v.Int
			return v, nil
		}
	}
	return ev.parsePrimary()
}

func (ev *constEval) parsePrimary() (ConstValue, error) {
	t := ev.toks[ev.i]
	switch t.Kind {
	case TokenNumber:
		ev.i++
		return parseNumberLiteral(t)
	case TokenChar:
		ev.i++
		return parseCharLiteral(t)
	case TokenIdent:
		ev.i++
		v, ok := ev.env[t.Text]
		if !ok {
			return ConstValue{}, errors.Wrapf(errUnresolvedRef, "%s at %s", t.Text, t.Pos)
		}
		if v.Kind == ConstString {
			return ConstValue{}, errors.Errorf("string constant %s used in arithmetic at %s", t.Text, t.Pos)
		}
		return v, nil
	case TokenPunct:
		if t.Text == "(" {
			ev.i++
			v, err := ev.parseBinary(0)
			if err != nil {
				return ConstValue{}, err
			}
			if ev.i >= len(ev.toks) || !ev.toks[ev.i].IsPunct(")") {
				return ConstValue{}, errors.Errorf("missing ')' in constant expression at %s", t.Pos)
			}
			ev.i++
			return v, nil
		}
	}
	return ConstValue{}, errors.Errorf("unexpected token %s in constant expression", t)
}

func applyBinary(op Token, a, b ConstValue) (ConstValue, error) {
	if a.Kind == ConstComposite || b.Kind == ConstComposite {
		return ConstValue{}, errors.Errorf("compound-literal constant used in arithmetic at %s", op.Pos)
	}
	if a.Kind == ConstFloat || b.Kind == ConstFloat {
		af, bf := a.asFloat(), b.asFloat()
		switch op.Text {
		case "+":
			return ConstValue{Kind: ConstFloat, Float: af + bf}, nil
		case "-":
			return ConstValue{Kind: ConstFloat, Float: af - bf}, nil
		case "*":
			return ConstValue{Kind: ConstFloat, Float: af * bf}, nil
		case "/":
			if bf == 0 {
				return ConstValue{}, errors.Errorf("division by zero at %s", op.Pos)
			}
			return ConstValue{Kind: ConstFloat, Float: af / bf}, nil
		}
		return ConstValue{}, errors.Errorf("operator %q needs integer operands at %s", op.Text, op.Pos)
	}

	ai, bi := a.Int, b.Int
	var r int64
	switch op.Text {
	case "+":
		r = ai + bi
	case "-":
		r = ai - bi
	case "*":
		r = ai * bi
	case "/":
		if bi == 0 {
			return ConstValue{}, errors.Errorf("division by zero at %s", op.Pos)
		}
		r = ai / bi
	case "%":
		if bi == 0 {
			return ConstValue{}, errors.Errorf("division by zero at %s", op.Pos)
		}
		r = ai % bi
	case "<<":
		r = ai << uint64(bi)
	case ">>":
		r = ai >> uint64(bi)
	case "&":
		r = ai & bi
	case "|":
		r = ai | bi
	case "^":
		r = ai ^ bi
	default:
		return ConstValue{}, errors.Errorf("unsupported operator %q at %s", op.Text, op.Pos)
	}
	return ConstValue{Kind: ConstInt, Int: r}, nil
}

func (v ConstValue) asFloat() float64 {
	if v.Kind == ConstFloat {
		return v.Float
	}
	return float64(v.Int)
}

// parseNumberLiteral handles C numeric literals, stripping integer suffixes
// (u/U/l/L) and real suffixes (f/F/d/D) before conversion.
func parseNumberLiteral(t Token) (ConstValue, error) {
	text := t.Text
	if isFloatLiteral(text) {
		trimmed := strings.TrimRight(text, "fFdD")
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return ConstValue{}, errors.Errorf("bad float literal %q at %s", text, t.Pos)
		}
		return ConstValue{Kind: ConstFloat, Float: f}, nil
	}
	n, err := parseIntLiteral(text)
	if err != nil {
		return ConstValue{}, errors.Errorf("bad integer literal %q at %s", text, t.Pos)
	}
	return ConstValue{Kind: ConstInt, Int: n}, nil
}

func isFloatLiteral(text string) bool {
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		return strings.ContainsAny(text, "pP.")
	}
	return strings.ContainsAny(text, ".eE") || strings.HasSuffix(strings.TrimRight(text, "fFdD"), ".") ||
		(strings.ContainsAny(text, "fFdD") && !strings.ContainsAny(text, "xX"))
}

// parseIntLiteral converts a C integer literal (decimal, hex, octal) with
// optional u/U/l/L suffixes.
func parseIntLiteral(text string) (int64, error) {
	trimmed := strings.TrimRight(text, "uUlL")
	if trimmed == "" {
		return 0, errors.Errorf("empty integer literal %q", text)
	}
	u, err := strconv.ParseUint(trimmed, 0, 64)
	if err != nil {
		n, err2 := strconv.ParseInt(trimmed, 0, 64)
		if err2 != nil {
			return 0, err
		}
		return n, nil
	}
	return int64(u), nil
}

// parseCharLiteral evaluates a character literal to its byte value.
func parseCharLiteral(t Token) (ConstValue, error) {
	body := strings.TrimSuffix(strings.TrimPrefix(t.Text, "'"), "'")
	if body == "" {
		return ConstValue{}, errors.Errorf("empty character literal at %s", t.Pos)
	}
	if body[0] != '\\' {
		return ConstValue{Kind: ConstInt, Int: int64(body[0])}, nil
	}
	if len(body) < 2 {
		return ConstValue{}, errors.Errorf("bad character literal %q at %s", t.Text, t.Pos)
	}
	escapes := map[byte]int64{
		'n': '\n', 't': '\t', 'r': '\r', '0': 0, '\\': '\\', '\'': '\'', '"': '"',
		'a': 7, 'b': 8, 'f': 12, 'v': 11,
	}
	if v, ok := escapes[body[1]]; ok {
		return ConstValue{Kind: ConstInt, Int: v}, nil
	}
	return ConstValue{}, errors.Errorf("unsupported escape in character literal %q at %s", t.Text, t.Pos)
}
