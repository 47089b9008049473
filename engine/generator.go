package engine

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/neumathe/kousuan/catalog"
)

// generator 按规则生成一道题，约束无法满足时返回 ErrConstraintUnsatisfiable
type generator func(s sampler, r catalog.Rule) (Question, error)

func defaultGenerators() map[catalog.Kind]generator {
	return map[catalog.Kind]generator{
		catalog.KindAddition:       genAddition,
		catalog.KindSubtraction:    genSubtraction,
		catalog.KindMultiplication: genMultiplication,
		catalog.KindDivision:       genDivision,
		catalog.KindMixed:          genMixed,
		catalog.KindDecimal:        genDecimal,
		catalog.KindFraction:       genFraction,
		catalog.KindFillBlank:      genFillBlank,
		catalog.KindComparison:     genComparison,
		catalog.KindUnitFill:       genUnitFill,
	}
}

// sampler 带重试上限的随机抽样器
type sampler struct {
	src     Source
	retries int
}

// intn 返回 [lo, hi] 内的均匀随机整数；lo == hi 时不消耗随机数
func (s sampler) intn(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.src.Intn(hi-lo+1)
}

func (s sampler) pick(xs []string) string {
	return xs[s.intn(0, len(xs)-1)]
}

func unsatisfiable(r catalog.Rule, attempts int) error {
	return fmt.Errorf("%w: %s rule after %d attempts", ErrConstraintUnsatisfiable, r.Kind, attempts)
}

// valueRange 规则未给出数值范围时使用默认范围
func valueRange(r catalog.Rule, defLo, defHi int) (int, int) {
	if r.MinValue == 0 && r.MaxValue == 0 {
		return defLo, defHi
	}
	return r.MinValue, r.MaxValue
}

func operatorsOr(r catalog.Rule, def ...string) []string {
	if len(r.Operators) == 0 {
		return def
	}
	return r.Operators
}

func joinExpression(operands, operators []string) string {
	var b strings.Builder
	b.WriteString(operands[0])
	for i, op := range operators {
		b.WriteString(" " + op + " " + operands[i+1])
	}
	return b.String()
}

// newQuestion 组装 "算式 = ( )" 形式的题目
func newQuestion(typ, expr string, operands, operators []string, answer string) Question {
	return Question{
		Type:       typ,
		Expression: expr,
		Display:    expr + " = " + blankPlaceholder("ans"),
		Answer:     answer,
		Blanks:     []Blank{{ID: "ans", Answer: answer}},
		Operands:   operands,
		Operators:  operators,
	}
}

func binaryQuestion(typ string, a int, op string, b int, answer string) Question {
	operands := []string{strconv.Itoa(a), strconv.Itoa(b)}
	operators := []string{op}
	return newQuestion(typ, joinExpression(operands, operators), operands, operators, answer)
}

// genAddition a ∈ [min,max]，b ∈ [min, max-a]，保证和不超过 max
func genAddition(s sampler, r catalog.Rule) (Question, error) {
	lo, hi := valueRange(r, 0, 20)
	for attempt := 0; attempt < s.retries; attempt++ {
		a := s.intn(lo, hi)
		if hi-a < lo {
			continue
		}
		b := s.intn(lo, hi-a)
		carries := CountCarries(a, b)
		if r.RequireCarry && !HasCarry(a, b) {
			continue
		}
		if !r.CarryAllowed() && carries > 0 {
			continue
		}
		if r.MultipleCarry && carries < 2 {
			continue
		}
		if r.MaxResult > 0 && a+b > r.MaxResult {
			continue
		}
		return binaryQuestion(TypeAddition, a, catalog.OpAdd, b, strconv.Itoa(a+b)), nil
	}
	return Question{}, unsatisfiable(r, s.retries)
}

// genSubtraction 两数独立抽取，不允许负数时交换保证被减数不小于减数
func genSubtraction(s sampler, r catalog.Rule) (Question, error) {
	lo, hi := valueRange(r, 0, 20)
	for attempt := 0; attempt < s.retries; attempt++ {
		a := s.intn(lo, hi)
		b := s.intn(lo, hi)
		if a < b && !r.AllowNegative {
			a, b = b, a
		}
		borrows := CountBorrows(a, b)
		if r.RequireBorrow && !HasBorrow(a, b) {
			continue
		}
		if !r.BorrowAllowed() && borrows > 0 {
			continue
		}
		if r.MultipleBorrow && borrows < 2 {
			continue
		}
		return binaryQuestion(TypeSubtraction, a, catalog.OpSub, b, strconv.Itoa(a-b)), nil
	}
	return Question{}, unsatisfiable(r, s.retries)
}

func operandFloor(r catalog.Rule) int {
	if r.AllowZero {
		return 0
	}
	return 1
}

func genMultiplication(s sampler, r catalog.Rule) (Question, error) {
	floor := operandFloor(r)
	am := r.MultiplicandMax
	if am <= 0 {
		am = 99
	}
	bm := r.MultiplierMax
	if bm <= 0 {
		bm = 9
	}
	for attempt := 0; attempt < s.retries; attempt++ {
		a := s.intn(floor, am)
		b := s.intn(floor, bm)
		if r.MaxResult > 0 && a*b > r.MaxResult {
			continue
		}
		return binaryQuestion(TypeMultiplication, a, catalog.OpMul, b, strconv.Itoa(a*b)), nil
	}
	return Question{}, unsatisfiable(r, s.retries)
}

// genDivision 先抽除数和商再求被除数，保证整除；允许余数时被除数与除数独立抽取
func genDivision(s sampler, r catalog.Rule) (Question, error) {
	floor := operandFloor(r)
	dmax := r.DivisorMax
	if dmax <= 0 {
		dmax = r.MultiplierMax
	}
	if dmax <= 0 {
		dmax = 9
	}
	mmax := r.MultiplicandMax
	if mmax <= 0 {
		mmax = 99
	}

	if r.AllowRemainder {
		divisor := s.intn(1, dmax)
		dividend := s.intn(floor, mmax)
		return remainderQuestion(dividend, divisor), nil
	}

	for attempt := 0; attempt < s.retries; attempt++ {
		divisor := s.intn(1, dmax)
		qmax := r.QuotientMax
		if qmax <= 0 {
			qmax = mmax / divisor
		}
		if qmax < floor {
			continue
		}
		quotient := s.intn(floor, qmax)
		dividend := divisor * quotient
		if r.MultiplicandMax > 0 && dividend > r.MultiplicandMax {
			continue
		}
		return binaryQuestion(TypeDivision, dividend, catalog.OpDiv, divisor, strconv.Itoa(quotient)), nil
	}
	return Question{}, unsatisfiable(r, s.retries)
}

// remainderQuestion 有余数除法，答案形如 "3……2"；整除时与普通除法一致
func remainderQuestion(dividend, divisor int) Question {
	q, rem := dividend/divisor, dividend%divisor
	if rem == 0 {
		return binaryQuestion(TypeDivision, dividend, catalog.OpDiv, divisor, strconv.Itoa(q))
	}
	operands := []string{strconv.Itoa(dividend), strconv.Itoa(divisor)}
	operators := []string{catalog.OpDiv}
	expr := joinExpression(operands, operators)
	qs, rs := strconv.Itoa(q), strconv.Itoa(rem)
	return Question{
		Type:       TypeDivision,
		Expression: expr,
		Display:    expr + " = " + blankPlaceholder("quotient") + "……" + blankPlaceholder("remainder"),
		Answer:     qs + "……" + rs,
		Blanks:     []Blank{{ID: "quotient", Answer: qs}, {ID: "remainder", Answer: rs}},
		Operands:   operands,
		Operators:  operators,
	}
}

// genMixed 多步混合运算：抽 steps 个运算符与 steps+1 个数，
// 可选地给前两个数加括号，再用表达式求值器检查结果
func genMixed(s sampler, r catalog.Rule) (Question, error) {
	steps := r.Steps
	if steps <= 0 {
		steps = 2
	}
	maxSteps := maxInt(r.MaxSteps, steps)
	lo, hi := valueRange(r, 1, 20)
	ops := operatorsOr(r, catalog.OpAdd, catalog.OpSub, catalog.OpMul, catalog.OpDiv)
	places := r.DecimalPlaces
	if places <= 0 {
		places = 2
	}
	for attempt := 0; attempt < s.retries; attempt++ {
		n := s.intn(steps, maxSteps)
		used := make([]string, n)
		for i := range used {
			used[i] = s.pick(ops)
		}
		nums := make([]string, n+1)
		for i := range nums {
			nums[i] = strconv.Itoa(s.intn(lo, hi))
		}
		expr := joinExpression(nums, used)
		if r.AllowParentheses && n >= 2 && s.src.Float64() < 0.5 {
			expr = "(" + joinExpression(nums[:2], used[:1]) + ")"
			for i := 1; i < n; i++ {
				expr += " " + used[i] + " " + nums[i+1]
			}
		}
		ev, err := EvaluateTrace(expr)
		if err != nil {
			continue
		}
		if !r.AllowNegative && ev.NegativeIntermediate {
			continue
		}
		if r.ExactDivisionRequired() && ev.InexactDivision {
			continue
		}
		if r.MaxResult > 0 && ev.Value.Cmp(big.NewRat(int64(r.MaxResult), 1)) > 0 {
			continue
		}
		return newQuestion(TypeMixed, expr, nums, used, FormatRat(ev.Value, places)), nil
	}
	return Question{}, unsatisfiable(r, s.retries)
}

// genDecimal 以 10^p 为分辨率抽取小数，操作数固定写出 p 位小数（末尾的 0 不省略），
// 答案按题面上可见的位数舍入。除法先抽商与一位除数，被除数取二者之积，保证除尽
func genDecimal(s sampler, r catalog.Rule) (Question, error) {
	minP := r.DecimalPlaces
	if minP <= 0 {
		minP = 1
	}
	maxP := maxInt(r.MaxDecimalPlaces, minP)
	maxV := r.MaxValue
	if maxV <= 0 {
		maxV = 100
	}
	ops := operatorsOr(r, catalog.OpAdd, catalog.OpSub, catalog.OpMul, catalog.OpDiv)
	for attempt := 0; attempt < s.retries; attempt++ {
		p := s.intn(minP, maxP)
		f := pow10(p)
		op := s.pick(ops)
		var a, b, v *big.Rat
		switch op {
		case catalog.OpAdd:
			a, b = s.decimal(maxV, f), s.decimal(maxV, f)
			v = new(big.Rat).Add(a, b)
		case catalog.OpSub:
			a, b = s.decimal(maxV, f), s.decimal(maxV, f)
			if a.Cmp(b) < 0 && !r.AllowNegative {
				a, b = b, a
			}
			v = new(big.Rat).Sub(a, b)
		case catalog.OpMul:
			a, b = s.decimal(maxV, f), s.decimal(maxV, f)
			v = new(big.Rat).Mul(a, b)
		case catalog.OpDiv:
			d := s.intn(1, 9)
			qmax := maxV * f / d
			if qmax < 1 {
				continue
			}
			v = big.NewRat(int64(s.intn(1, qmax)), int64(f))
			b = big.NewRat(int64(d), 1)
			a = new(big.Rat).Mul(v, b)
		default:
			return Question{}, fmt.Errorf("%w: decimal operator %q", ErrConstraintUnsatisfiable, op)
		}
		if r.MaxResult > 0 && v.Cmp(big.NewRat(int64(r.MaxResult), 1)) > 0 {
			continue
		}
		operands := []string{a.FloatString(p), b.FloatString(p)}
		if op == catalog.OpDiv {
			operands[1] = b.RatString()
		}
		operators := []string{op}
		answer := FormatRat(v, visiblePlaces(operands))
		return newQuestion(TypeDecimal, joinExpression(operands, operators), operands, operators, answer), nil
	}
	return Question{}, unsatisfiable(r, s.retries)
}

// decimal 返回 (0, maxV] 内分辨率为 1/f 的小数
func (s sampler) decimal(maxV, f int) *big.Rat {
	return big.NewRat(int64(s.intn(1, maxV*f)), int64(f))
}

// visiblePlaces 操作数中最多的小数位数
func visiblePlaces(operands []string) int {
	places := 0
	for _, o := range operands {
		if i := strings.IndexByte(o, '.'); i >= 0 {
			places = maxInt(places, len(o)-i-1)
		}
	}
	return places
}

// genFraction 同分母：一个分母两个真分数分子；异分母：d2 = d1×k（k ∈ {2,3}），
// 在公倍数上交叉相乘。答案总是化成最简分数，分母为 1 时写成整数。
func genFraction(s sampler, r catalog.Rule) (Question, error) {
	maxDen := r.MaxDenominator
	if maxDen < 2 {
		maxDen = 20
	}
	ops := operatorsOr(r, catalog.OpAdd, catalog.OpSub)
	for attempt := 0; attempt < s.retries; attempt++ {
		op := s.pick(ops)
		var n1, d1, n2, d2 int
		if r.SameDenominator {
			d := s.intn(2, maxDen)
			d1, d2 = d, d
			n1 = s.intn(1, d-1)
			n2 = s.intn(1, d-1)
		} else {
			base := minInt(10, maxDen/2)
			if base < 2 {
				return Question{}, fmt.Errorf("%w: max_denominator %d too small for unlike denominators", ErrConstraintUnsatisfiable, maxDen)
			}
			d1 = s.intn(2, base)
			d2 = d1 * s.intn(2, 3)
			if d2 > maxDen {
				continue
			}
			n1 = s.intn(1, d1-1)
			n2 = s.intn(1, d2-1)
		}
		if r.MaxNumerator > 0 && (n1 > r.MaxNumerator || n2 > r.MaxNumerator) {
			continue
		}
		common := Lcm(d1, d2)
		x, y := n1*(common/d1), n2*(common/d2)
		if op == catalog.OpSub && x < y && !r.AllowNegative {
			n1, d1, n2, d2 = n2, d2, n1, d1
			x, y = y, x
		}
		var num int
		switch op {
		case catalog.OpAdd:
			num = x + y
		case catalog.OpSub:
			num = x - y
		default:
			return Question{}, fmt.Errorf("%w: fraction operator %q", ErrConstraintUnsatisfiable, op)
		}
		sn, sd, err := SimplifyFraction(num, common)
		if err != nil {
			return Question{}, err
		}
		operands := []string{formatFraction(n1, d1), formatFraction(n2, d2)}
		operators := []string{op}
		return newQuestion(TypeFraction, joinExpression(operands, operators), operands, operators, formatFraction(sn, sd)), nil
	}
	return Question{}, unsatisfiable(r, s.retries)
}

// formatFraction 分母为 1 时写成整数
func formatFraction(n, d int) string {
	if d == 1 {
		return strconv.Itoa(n)
	}
	return strconv.Itoa(n) + "/" + strconv.Itoa(d)
}

// genFillBlank 凑数填空：抽总数 total 和其中一部分 part，另一部分留空。
// 加法形如 "7 + ( ) = 10"、"( ) + 3 = 10"；减法形如 "10 - ( ) = 7"、"( ) - 3 = 7"。
// Operands 为完整等式 a op b = c 的三个数
func genFillBlank(s sampler, r catalog.Rule) (Question, error) {
	lo, hi := valueRange(r, 0, 10)
	ops := operatorsOr(r, catalog.OpAdd)
	for attempt := 0; attempt < s.retries; attempt++ {
		op := s.pick(ops)
		total := s.intn(lo, hi)
		if total-lo < lo {
			continue
		}
		part := s.intn(lo, total-lo)
		rest := total - part
		if r.RequireCarry && !HasCarry(part, rest) {
			continue
		}
		if !r.CarryAllowed() && HasCarry(part, rest) {
			continue
		}
		var nums []int
		switch op {
		case catalog.OpAdd:
			nums = []int{part, rest, total}
		case catalog.OpSub:
			nums = []int{total, rest, part}
		default:
			return Question{}, fmt.Errorf("%w: fill_blank operator %q", ErrConstraintUnsatisfiable, op)
		}
		hidden := s.intn(0, 1)
		operands := make([]string, len(nums))
		cells := make([]string, len(nums))
		for i, n := range nums {
			operands[i] = strconv.Itoa(n)
			cells[i] = operands[i]
		}
		cells[hidden] = blankPlaceholder("ans")
		display := cells[0] + " " + op + " " + cells[1] + " = " + cells[2]
		blanks := []Blank{{ID: "ans", Answer: operands[hidden]}}
		return Question{
			Type:       TypeFillBlank,
			Expression: fillPrompt(display, blanks),
			Display:    display,
			Answer:     operands[hidden],
			Blanks:     blanks,
			Operands:   operands,
			Operators:  []string{op},
		}, nil
	}
	return Question{}, unsatisfiable(r, s.retries)
}

// genComparison 比较大小，答案为 >、< 或 =
func genComparison(s sampler, r catalog.Rule) (Question, error) {
	lo, hi := valueRange(r, 0, 100)
	a := s.intn(lo, hi)
	b := s.intn(lo, hi)
	ans := "="
	switch {
	case a > b:
		ans = ">"
	case a < b:
		ans = "<"
	}
	operands := []string{strconv.Itoa(a), strconv.Itoa(b)}
	return Question{
		Type:       TypeComparison,
		Expression: operands[0] + " ○ " + operands[1],
		Display:    operands[0] + " " + blankPlaceholder("ans") + " " + operands[1],
		Answer:     ans,
		Blanks:     []Blank{{ID: "ans", Answer: ans}},
		Operands:   operands,
		Operators:  []string{"○"},
	}, nil
}
