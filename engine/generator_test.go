package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/neumathe/kousuan/catalog"
)

func TestAdditionScenario(t *testing.T) {
	e := defaultEngine(t, WithRandSource(&seqSource{ints: []int{3, 5}}))
	q, err := e.GenerateQuestion("grade_1", "1_1")
	require.NoError(t, err)
	require.Equal(t, "3 + 5", q.Expression)
	require.Equal(t, "8", q.Answer)
	require.Equal(t, TypeAddition, q.Type)
	require.Equal(t, "grade_1", q.GradeKey)
	require.Equal(t, "1_1", q.CategoryID)
	require.Equal(t, "3 + 5 = ( )", Render(q, false))
	require.Equal(t, "3 + 5 = 8", Render(q, true))
}

func TestDivisionScenario(t *testing.T) {
	rule := catalog.Rule{Operators: []string{catalog.OpDiv}, DivisorMax: 9, MultiplicandMax: 99}
	e := singleRuleEngine(t, catalog.KindDivision, rule, WithRandSource(&seqSource{ints: []int{5, 6}}))
	q, err := e.GenerateQuestion("g", "c")
	require.NoError(t, err)
	require.Equal(t, "42 ÷ 6", q.Expression)
	require.Equal(t, "7", q.Answer)
	require.Equal(t, []string{"42", "6"}, q.Operands)
}

func TestRemainderDivision(t *testing.T) {
	rule := catalog.Rule{DivisorMax: 9, MultiplicandMax: 99, AllowRemainder: true}
	e := singleRuleEngine(t, catalog.KindDivision, rule, WithRandSource(&seqSource{ints: []int{4, 16}}))
	q, err := e.GenerateQuestion("g", "c")
	require.NoError(t, err)
	require.Equal(t, "17 ÷ 5", q.Expression)
	require.Equal(t, "3……2", q.Answer)
	require.Equal(t, "17 ÷ 5 = ( )……( )", Render(q, false))
	require.Equal(t, "17 ÷ 5 = 3……2", Render(q, true))
}

func TestFractionScenario(t *testing.T) {
	rule := catalog.Rule{Operators: []string{catalog.OpAdd}, SameDenominator: true, MaxDenominator: 10}
	e := singleRuleEngine(t, catalog.KindFraction, rule, WithRandSource(&seqSource{ints: []int{3, 2, 1}}))
	q, err := e.GenerateQuestion("g", "c")
	require.NoError(t, err)
	require.Equal(t, "3/5 + 2/5", q.Expression)
	require.Equal(t, "1", q.Answer)
}

func TestMixedScripted(t *testing.T) {
	rule := catalog.Rule{Operators: []string{catalog.OpAdd, catalog.OpSub}, MinValue: 1, MaxValue: 10, MaxResult: 10, Steps: 2}
	e := singleRuleEngine(t, catalog.KindMixed, rule, WithRandSource(&seqSource{ints: []int{0, 1, 2, 4, 1}}))
	q, err := e.GenerateQuestion("g", "c")
	require.NoError(t, err)
	require.Equal(t, "3 + 5 - 2", q.Expression)
	require.Equal(t, "6", q.Answer)
	require.Equal(t, []string{"+", "-"}, q.Operators)

	rule = catalog.Rule{Operators: []string{catalog.OpAdd, catalog.OpMul}, MinValue: 1, MaxValue: 10, Steps: 2, AllowParentheses: true}
	e = singleRuleEngine(t, catalog.KindMixed, rule, WithRandSource(&seqSource{ints: []int{0, 1, 1, 4, 1}, floats: []float64{0.2}}))
	q, err = e.GenerateQuestion("g", "c")
	require.NoError(t, err)
	require.Equal(t, "(2 + 5) × 2", q.Expression)
	require.Equal(t, "14", q.Answer)
}

func TestComparisonScripted(t *testing.T) {
	e := defaultEngine(t, WithRandSource(&seqSource{ints: []int{12, 15}}))
	q, err := e.GenerateQuestion("grade_1", "1_7")
	require.NoError(t, err)
	require.Equal(t, "12 ○ 15", q.Expression)
	require.Equal(t, "<", q.Answer)
	require.Equal(t, "12 ( ) 15", Render(q, false))
}

func TestUnitFillForms(t *testing.T) {
	money := catalog.Rule{Units: []string{"money"}}

	e := singleRuleEngine(t, catalog.KindUnitFill, money, WithRandSource(&seqSource{ints: []int{0, 4}, floats: []float64{0.9}}))
	q, err := e.GenerateQuestion("g", "c")
	require.NoError(t, err)
	require.Equal(t, TypeUnitConversion, q.Type)
	require.Equal(t, "5元 = ?角", q.Expression)
	require.Equal(t, "50", q.Answer)
	require.Equal(t, "5元 = 50角", Render(q, true))

	e = singleRuleEngine(t, catalog.KindUnitFill, money, WithRandSource(&seqSource{ints: []int{0, 2}, floats: []float64{0.4}}))
	q, err = e.GenerateQuestion("g", "c")
	require.NoError(t, err)
	require.Equal(t, "30角 = ?元", q.Expression)
	require.Equal(t, "3", q.Answer)

	length := catalog.Rule{Units: []string{"length"}}
	e = singleRuleEngine(t, catalog.KindUnitFill, length, WithRandSource(&seqSource{ints: []int{2, 149}, floats: []float64{0.1}}))
	q, err = e.GenerateQuestion("g", "c")
	require.NoError(t, err)
	require.Equal(t, "250厘米 = ?米?厘米", q.Expression)
	require.Equal(t, "2米50厘米", q.Answer)
	require.Equal(t, "250厘米 = ( )米( )厘米", Render(q, false))
	require.Len(t, q.Blanks, 2)
}

func TestUnsatisfiableRule(t *testing.T) {
	rule := catalog.Rule{Operators: []string{catalog.OpAdd}, MinValue: 5, MaxValue: 6, RequireCarry: true}
	e := singleRuleEngine(t, catalog.KindAddition, rule, WithRandSource(NewLockedSource(1)), WithMaxRetries(50))
	_, err := e.GenerateQuestion("g", "c")
	require.True(t, errors.Is(err, ErrConstraintUnsatisfiable), "got %v", err)
}

func TestGenerateQuestionUnknownCategory(t *testing.T) {
	e := defaultEngine(t)
	_, err := e.GenerateQuestion("grade_1", "missing")
	require.True(t, errors.Is(err, ErrCategoryNotFound))
	_, err = e.GenerateQuestion("grade_0", "1_1")
	require.True(t, errors.Is(err, ErrCategoryNotFound))
}

// drawMany 用固定种子从题型连续出题
func drawMany(t *testing.T, e *Engine, grade, cat string, n int) []Question {
	t.Helper()
	out := make([]Question, 0, n)
	for i := 0; i < n; i++ {
		q, err := e.GenerateQuestion(grade, cat)
		require.NoError(t, err, "%s/%s", grade, cat)
		out = append(out, q)
	}
	return out
}

func TestAdditionProperties(t *testing.T) {
	e := defaultEngine(t, WithRandSource(NewLockedSource(7)))
	for _, q := range drawMany(t, e, "grade_1", "1_1", 200) {
		ops, ok := q.IntOperands()
		require.True(t, ok)
		sum := ops[0] + ops[1]
		require.True(t, sum >= 0 && sum <= 10, q.Expression)
		require.Equal(t, strconv.Itoa(sum), q.Answer)
	}
	for _, q := range drawMany(t, e, "grade_1", "1_3", 200) {
		ops, _ := q.IntOperands()
		require.False(t, HasCarry(ops[0], ops[1]), q.Expression)
	}
	for _, q := range drawMany(t, e, "grade_1", "1_4", 200) {
		ops, _ := q.IntOperands()
		require.True(t, HasCarry(ops[0], ops[1]), q.Expression)
		require.LessOrEqual(t, ops[0]+ops[1], 20)
	}
	for _, q := range drawMany(t, e, "grade_3", "3_1", 100) {
		ops, _ := q.IntOperands()
		require.GreaterOrEqual(t, CountCarries(ops[0], ops[1]), 2, q.Expression)
	}
}

func TestSubtractionProperties(t *testing.T) {
	e := defaultEngine(t, WithRandSource(NewLockedSource(11)))
	for _, q := range drawMany(t, e, "grade_1", "1_6", 200) {
		ops, _ := q.IntOperands()
		require.True(t, HasBorrow(ops[0], ops[1]), q.Expression)
		ans, err := strconv.Atoi(q.Answer)
		require.NoError(t, err)
		require.GreaterOrEqual(t, ans, 0)
		require.Equal(t, ops[0]-ops[1], ans)
	}
	for _, q := range drawMany(t, e, "grade_1", "1_5", 200) {
		ops, _ := q.IntOperands()
		require.False(t, HasBorrow(ops[0], ops[1]), q.Expression)
	}
	for _, q := range drawMany(t, e, "grade_3", "3_2", 100) {
		ops, _ := q.IntOperands()
		require.GreaterOrEqual(t, CountBorrows(ops[0], ops[1]), 2, q.Expression)
	}
}

func TestMultiplicationDivisionProperties(t *testing.T) {
	e := defaultEngine(t, WithRandSource(NewLockedSource(3)))
	for _, q := range drawMany(t, e, "grade_2", "2_3", 100) {
		ops, _ := q.IntOperands()
		require.True(t, ops[0] >= 1 && ops[0] <= 9 && ops[1] >= 1 && ops[1] <= 9, q.Expression)
		require.Equal(t, strconv.Itoa(ops[0]*ops[1]), q.Answer)
	}
	for _, cat := range []string{"2_4", "3_4"} {
		grade := "grade_" + cat[:1]
		for _, q := range drawMany(t, e, grade, cat, 200) {
			ops, _ := q.IntOperands()
			require.Zero(t, ops[0]%ops[1], q.Expression)
			require.Equal(t, strconv.Itoa(ops[0]/ops[1]), q.Answer)
		}
	}
	for _, q := range drawMany(t, e, "grade_3", "3_5", 200) {
		ops, _ := q.IntOperands()
		want := strconv.Itoa(ops[0] / ops[1])
		if r := ops[0] % ops[1]; r != 0 {
			want += "……" + strconv.Itoa(r)
		}
		require.Equal(t, want, q.Answer)
	}
}

func TestMixedProperties(t *testing.T) {
	e := defaultEngine(t, WithRandSource(NewLockedSource(5)))
	for _, ref := range [][2]string{{"grade_1", "1_8"}, {"grade_4", "4_5"}, {"grade_5", "5_3"}, {"grade_6", "6_2"}} {
		for _, q := range drawMany(t, e, ref[0], ref[1], 100) {
			ev, err := EvaluateTrace(q.Expression)
			require.NoError(t, err)
			require.False(t, ev.NegativeIntermediate, q.Expression)
			require.False(t, ev.InexactDivision, q.Expression)
			require.Equal(t, ev.Value.RatString(), q.Answer, q.Expression)
		}
	}
	for _, q := range drawMany(t, e, "grade_1", "1_8", 100) {
		v, _ := strconv.Atoi(q.Answer)
		require.LessOrEqual(t, v, 10)
	}
}

func TestDecimalProperties(t *testing.T) {
	e := defaultEngine(t, WithRandSource(NewLockedSource(9)))
	for _, q := range drawMany(t, e, "grade_4", "4_6", 200) {
		v, err := Evaluate(q.Expression)
		require.NoError(t, err)
		require.Equal(t, FormatRat(v, 1), q.Answer, q.Expression)
		require.GreaterOrEqual(t, v.Sign(), 0)
		require.Regexp(t, `^\d+\.\d$`, q.Operands[0])
		if q.Operators[0] == catalog.OpDiv {
			d, err := strconv.Atoi(q.Operands[1])
			require.NoError(t, err)
			require.True(t, d >= 1 && d <= 9)
			ans, ok := q.AnswerRat()
			require.True(t, ok)
			require.Zero(t, v.Cmp(ans), "%s = %s", q.Expression, q.Answer)
		}
	}
}

// 位数可变的小数题：同一算式只能有一个答案，答案按题面可见的小数位数舍入
func TestDecimalAnswerFollowsVisiblePlaces(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	e := defaultEngine(t, WithRandSource(NewLockedSource(29)))
	for _, ref := range [][2]string{{"grade_5", "5_1"}, {"grade_6", "6_3"}} {
		c, ok := cat.Category(ref[0], ref[1])
		require.True(t, ok)
		rule := c.Rule
		answers := map[string]string{}
		placesSeen := map[int]bool{}
		for _, q := range drawMany(t, e, ref[0], ref[1], 3000) {
			if prev, ok := answers[q.Expression]; ok {
				require.Equal(t, prev, q.Answer, "%s has two answers", q.Expression)
			}
			answers[q.Expression] = q.Answer

			places := visiblePlaces(q.Operands)
			require.GreaterOrEqual(t, places, rule.DecimalPlaces, q.Expression)
			require.LessOrEqual(t, places, maxInt(rule.MaxDecimalPlaces, rule.DecimalPlaces), q.Expression)
			placesSeen[places] = true

			v, err := Evaluate(q.Expression)
			require.NoError(t, err)
			require.Equal(t, FormatRat(v, places), q.Answer, q.Expression)
			if q.Operators[0] == catalog.OpDiv {
				ans, _ := q.AnswerRat()
				require.Zero(t, v.Cmp(ans), "%s does not divide exactly", q.Expression)
			}
		}
		for p := rule.DecimalPlaces; p <= maxInt(rule.MaxDecimalPlaces, rule.DecimalPlaces); p++ {
			require.True(t, placesSeen[p], "%s/%s never drew %d places", ref[0], ref[1], p)
		}
	}
}

func TestDecimalTrailingZerosStayVisible(t *testing.T) {
	rule := catalog.Rule{Operators: []string{catalog.OpDiv}, DecimalPlaces: 1, MaxDecimalPlaces: 2, MaxValue: 1000}
	// p = 2，除数 6，商 56.50
	e := singleRuleEngine(t, catalog.KindDecimal, rule, WithRandSource(&seqSource{ints: []int{1, 5, 5649}}))
	q, err := e.GenerateQuestion("g", "c")
	require.NoError(t, err)
	require.Equal(t, "339.00 ÷ 6", q.Expression)
	require.Equal(t, "56.5", q.Answer)
	require.Equal(t, []string{"339.00", "6"}, q.Operands)
}

func TestFractionProperties(t *testing.T) {
	e := defaultEngine(t, WithRandSource(NewLockedSource(13)))
	for _, ref := range [][2]string{{"grade_3", "3_7"}, {"grade_5", "5_2"}, {"grade_6", "6_1"}} {
		for _, q := range drawMany(t, e, ref[0], ref[1], 200) {
			v, err := Evaluate(q.Expression)
			require.NoError(t, err)
			ans, ok := q.AnswerRat()
			require.True(t, ok, q.Answer)
			require.Zero(t, v.Cmp(ans), "%s = %s", q.Expression, q.Answer)
			require.GreaterOrEqual(t, ans.Sign(), 0)

			parts := strings.Split(q.Answer, "/")
			if len(parts) == 2 {
				n, _ := strconv.Atoi(parts[0])
				d, _ := strconv.Atoi(parts[1])
				require.Equal(t, 1, Gcd(n, d), q.Answer)
				require.NotEqual(t, 1, d)
			}
		}
	}
}

// need_simplify 只约分答案，不挑选题目：结果本身已是最简的题也会出现
func TestNeedSimplifyOnlyReduces(t *testing.T) {
	rule := catalog.Rule{Operators: []string{catalog.OpAdd}, NeedSimplify: true, MaxDenominator: 10}
	e := singleRuleEngine(t, catalog.KindFraction, rule, WithRandSource(&seqSource{ints: []int{0, 0, 0}}))
	q, err := e.GenerateQuestion("g", "c")
	require.NoError(t, err)
	require.Equal(t, "1/2 + 1/4", q.Expression)
	require.Equal(t, "3/4", q.Answer)

	e = defaultEngine(t, WithRandSource(NewLockedSource(17)))
	reachable := false
	for _, q := range drawMany(t, e, "grade_5", "5_2", 5000) {
		if q.Expression == "1/2 + 1/4" {
			reachable = true
			require.Equal(t, "3/4", q.Answer)
		}
	}
	require.True(t, reachable)

	same := catalog.Rule{Operators: []string{catalog.OpAdd}, SameDenominator: true, NeedSimplify: true, MaxDenominator: 7}
	e = singleRuleEngine(t, catalog.KindFraction, same, WithRandSource(NewLockedSource(31)))
	proper := 0
	for _, q := range drawMany(t, e, "g", "c", 2000) {
		if parts := strings.Split(q.Answer, "/"); len(parts) == 2 {
			n, _ := strconv.Atoi(parts[0])
			d, _ := strconv.Atoi(parts[1])
			require.Equal(t, 1, Gcd(n, d), q.Answer)
			proper++
		}
	}
	require.Greater(t, proper, 500)
}

func TestFillBlankScripted(t *testing.T) {
	rule := catalog.Rule{Operators: []string{catalog.OpAdd}, MinValue: 0, MaxValue: 10}
	// total 10，part 7，空位在第二个数
	e := singleRuleEngine(t, catalog.KindFillBlank, rule, WithRandSource(&seqSource{ints: []int{10, 7, 1}}))
	q, err := e.GenerateQuestion("g", "c")
	require.NoError(t, err)
	require.Equal(t, TypeFillBlank, q.Type)
	require.Equal(t, "7 + ? = 10", q.Expression)
	require.Equal(t, "3", q.Answer)
	require.Equal(t, "7 + ( ) = 10", Render(q, false))
	require.Equal(t, "7 + 3 = 10", Render(q, true))
	require.Equal(t, []string{"7", "3", "10"}, q.Operands)

	rule.Operators = []string{catalog.OpSub}
	e = singleRuleEngine(t, catalog.KindFillBlank, rule, WithRandSource(&seqSource{ints: []int{9, 4, 0}}))
	q, err = e.GenerateQuestion("g", "c")
	require.NoError(t, err)
	require.Equal(t, "? - 5 = 4", q.Expression)
	require.Equal(t, "9", q.Answer)
}

func TestFillBlankProperties(t *testing.T) {
	e := defaultEngine(t, WithRandSource(NewLockedSource(37)))
	positions := map[int]bool{}
	for _, ref := range [][3]string{{"grade_1", "1_11", "10"}, {"grade_2", "2_8", "100"}} {
		limit, _ := strconv.Atoi(ref[2])
		for _, q := range drawMany(t, e, ref[0], ref[1], 300) {
			require.Equal(t, TypeFillBlank, q.Type)
			require.Len(t, q.Blanks, 1)
			require.Equal(t, fillPrompt(q.Display, q.Blanks), q.Expression)
			require.Equal(t, 1, strings.Count(q.Expression, "?"), q.Expression)

			ops, ok := q.IntOperands()
			require.True(t, ok)
			require.Len(t, ops, 3)
			a, b, c := ops[0], ops[1], ops[2]
			switch q.Operators[0] {
			case catalog.OpAdd:
				require.Equal(t, c, a+b, q.Expression)
				require.LessOrEqual(t, c, limit)
			case catalog.OpSub:
				require.Equal(t, c, a-b, q.Expression)
				require.LessOrEqual(t, a, limit)
			default:
				t.Fatalf("unexpected operator %q", q.Operators[0])
			}
			for _, n := range ops {
				require.GreaterOrEqual(t, n, 0)
			}

			filled := Render(q, true)
			require.Equal(t, fmt.Sprintf("%d %s %d = %d", a, q.Operators[0], b, c), filled)
			cells := strings.Fields(q.Display)
			for i, cell := range []string{cells[0], cells[2]} {
				if cell == blankPlaceholder("ans") {
					require.Equal(t, q.Operands[i], q.Answer, q.Display)
					positions[i] = true
				}
			}
		}
	}
	require.True(t, positions[0] && positions[1], "blank should appear in both operand positions")
}

func TestComparisonProperties(t *testing.T) {
	e := defaultEngine(t, WithRandSource(NewLockedSource(19)))
	for _, q := range drawMany(t, e, "grade_6", "6_4", 100) {
		ops, _ := q.IntOperands()
		want := "="
		if ops[0] > ops[1] {
			want = ">"
		} else if ops[0] < ops[1] {
			want = "<"
		}
		require.Equal(t, want, q.Answer)
		require.True(t, ops[0] >= 1000 && ops[1] <= 9999)
	}
}

func TestUnitFillProperties(t *testing.T) {
	e := defaultEngine(t, WithRandSource(NewLockedSource(23)))
	for _, q := range drawMany(t, e, "grade_6", "6_5", 200) {
		require.Equal(t, TypeUnitConversion, q.Type)
		require.NotEmpty(t, q.Blanks)
		require.NotContains(t, Render(q, true), "{{")
		require.Equal(t, fillPrompt(q.Display, q.Blanks), q.Expression)
	}
}
