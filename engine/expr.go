package engine

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Evaluation 表达式求值结果及求值过程中的观察
type Evaluation struct {
	Value *big.Rat
	// InexactDivision 任一步除法的商不是整数
	InexactDivision bool
	// NegativeIntermediate 任一步运算（含最终结果）出现负数
	NegativeIntermediate bool
}

// Evaluate 计算只含数字、小数点、+ - × ÷（或 * /）和括号的算式
func Evaluate(expr string) (*big.Rat, error) {
	ev, err := EvaluateTrace(expr)
	if err != nil {
		return nil, err
	}
	return ev.Value, nil
}

// EvaluateTrace 同 Evaluate，并报告整除性与负中间值。
// 按 big.Rat 精确计算，×÷ 优先于 +-，同级左结合。全角字符先转为半角。
func EvaluateTrace(expr string) (Evaluation, error) {
	toks, err := tokenize(width.Narrow.String(expr))
	if err != nil {
		return Evaluation{}, err
	}
	if len(toks) == 0 {
		return Evaluation{}, fmt.Errorf("%w: empty expression", ErrMalformedExpression)
	}
	p := &exprParser{toks: toks}
	v, err := p.parseSum()
	if err != nil {
		return Evaluation{}, err
	}
	if p.pos != len(p.toks) {
		return Evaluation{}, fmt.Errorf("%w: unexpected %q at token %d", ErrMalformedExpression, p.toks[p.pos].text, p.pos)
	}
	if v.Sign() < 0 {
		p.negative = true
	}
	return Evaluation{Value: v, InexactDivision: p.inexact, NegativeIntermediate: p.negative}, nil
}

// FormatRat 按 places 位小数四舍五入（远离零），并去掉末尾的 0
func FormatRat(r *big.Rat, places int) string {
	if places < 0 {
		places = 0
	}
	s := r.FloatString(places)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	num  *big.Rat
}

func tokenize(s string) ([]token, error) {
	var out []token
	rs := []rune(s)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r >= '0' && r <= '9' || r == '.':
			j := i
			dots := 0
			for j < len(rs) && (rs[j] >= '0' && rs[j] <= '9' || rs[j] == '.') {
				if rs[j] == '.' {
					dots++
				}
				j++
			}
			text := string(rs[i:j])
			if dots > 1 || text == "." {
				return nil, fmt.Errorf("%w: bad number %q", ErrMalformedExpression, text)
			}
			num, ok := new(big.Rat).SetString(text)
			if !ok {
				return nil, fmt.Errorf("%w: bad number %q", ErrMalformedExpression, text)
			}
			out = append(out, token{kind: tokNumber, text: text, num: num})
			i = j
		case r == '+' || r == '-' || r == '−':
			op := "+"
			if r != '+' {
				op = "-"
			}
			out = append(out, token{kind: tokOp, text: op})
			i++
		case r == '×' || r == '*':
			out = append(out, token{kind: tokOp, text: "×"})
			i++
		case r == '÷' || r == '/':
			out = append(out, token{kind: tokOp, text: "÷"})
			i++
		case r == '(':
			out = append(out, token{kind: tokLParen, text: "("})
			i++
		case r == ')':
			out = append(out, token{kind: tokRParen, text: ")"})
			i++
		default:
			return nil, fmt.Errorf("%w: unexpected character %q", ErrMalformedExpression, r)
		}
	}
	return out, nil
}

// exprParser 递归下降：sum := product {(+|-) product}；product := atom {(×|÷) atom}
type exprParser struct {
	toks     []token
	pos      int
	inexact  bool
	negative bool
}

func (p *exprParser) peekOp(ops ...string) (string, bool) {
	if p.pos >= len(p.toks) || p.toks[p.pos].kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if p.toks[p.pos].text == op {
			return op, true
		}
	}
	return "", false
}

func (p *exprParser) parseSum() (*big.Rat, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOp("+", "-")
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		if op == "+" {
			left = new(big.Rat).Add(left, right)
		} else {
			left = new(big.Rat).Sub(left, right)
		}
		if left.Sign() < 0 {
			p.negative = true
		}
	}
}

func (p *exprParser) parseProduct() (*big.Rat, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOp("×", "÷")
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		if op == "×" {
			left = new(big.Rat).Mul(left, right)
		} else {
			if right.Sign() == 0 {
				return nil, fmt.Errorf("%w: %s ÷ 0", ErrDivisionByZero, left.RatString())
			}
			left = new(big.Rat).Quo(left, right)
			if !left.IsInt() {
				p.inexact = true
			}
		}
		if left.Sign() < 0 {
			p.negative = true
		}
	}
}

func (p *exprParser) parseAtom() (*big.Rat, error) {
	if p.pos >= len(p.toks) {
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrMalformedExpression)
	}
	t := p.toks[p.pos]
	switch t.kind {
	case tokNumber:
		p.pos++
		return new(big.Rat).Set(t.num), nil
	case tokLParen:
		p.pos++
		v, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.toks) || p.toks[p.pos].kind != tokRParen {
			return nil, fmt.Errorf("%w: missing ')'", ErrMalformedExpression)
		}
		p.pos++
		return v, nil
	default:
		return nil, fmt.Errorf("%w: unexpected %q at token %d", ErrMalformedExpression, t.text, p.pos)
	}
}
