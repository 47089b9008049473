package engine

import (
	"fmt"
	"strconv"

	"github.com/neumathe/kousuan/catalog"
)

// genUnitFill 从规则声明的单位族中抽一条换算事实，生成填空题：
//
//	大化小  5元 = ( )角
//	小化大  300厘米 = ( )米
//	复名数  250厘米 = ( )米( )厘米（仅倍率 >= 60 的换算）
func genUnitFill(s sampler, r catalog.Rule) (Question, error) {
	if len(r.Units) == 0 {
		return Question{}, fmt.Errorf("%w: unit_fill rule without units", ErrConstraintUnsatisfiable)
	}
	family := s.pick(r.Units)
	table := catalog.Conversions(family)
	if len(table) == 0 {
		return Question{}, fmt.Errorf("%w: unknown unit family %q", ErrConstraintUnsatisfiable, family)
	}
	c := table[s.intn(0, len(table)-1)]

	u := s.src.Float64()
	switch {
	case u < 0.3 && c.Rate >= 60:
		for attempt := 0; attempt < s.retries; attempt++ {
			total := s.intn(c.Rate+1, c.Rate*10)
			whole, small := total/c.Rate, total%c.Rate
			if small == 0 {
				continue
			}
			return unitQuestion(c, "{{total}}{{to}} = {{blank:big}}{{from}}{{blank:small}}{{to}}",
				map[string]string{"total": strconv.Itoa(total)},
				[]Blank{{ID: "big", Answer: strconv.Itoa(whole)}, {ID: "small", Answer: strconv.Itoa(small)}},
				strconv.Itoa(total)+c.To,
				strconv.Itoa(whole)+c.From+strconv.Itoa(small)+c.To), nil
		}
		return Question{}, unsatisfiable(r, s.retries)
	case u < 0.55:
		k := s.intn(1, 10)
		v := strconv.Itoa(k * c.Rate)
		return unitQuestion(c, "{{value}}{{to}} = {{blank:ans}}{{from}}",
			map[string]string{"value": v},
			[]Blank{{ID: "ans", Answer: strconv.Itoa(k)}},
			v+c.To, strconv.Itoa(k)), nil
	default:
		k := s.intn(1, 10)
		v := strconv.Itoa(k)
		ans := strconv.Itoa(k * c.Rate)
		return unitQuestion(c, "{{value}}{{from}} = {{blank:ans}}{{to}}",
			map[string]string{"value": v},
			[]Blank{{ID: "ans", Answer: ans}},
			v+c.From, ans), nil
	}
}

func unitQuestion(c catalog.Conversion, tpl string, vars map[string]string, blanks []Blank, operand, answer string) Question {
	vars["from"] = c.From
	vars["to"] = c.To
	display := displayFor(tpl, vars)
	return Question{
		Type:       TypeUnitConversion,
		Expression: fillPrompt(display, blanks),
		Display:    display,
		Answer:     answer,
		Blanks:     blanks,
		Operands:   []string{operand},
		Operators:  []string{"="},
	}
}
