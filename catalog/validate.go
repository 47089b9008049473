package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCatalog 题型表数据不合法
var ErrInvalidCatalog = errors.New("invalid catalog")

func validate(grades []Grade) error {
	if len(grades) == 0 {
		return fmt.Errorf("%w: no grades", ErrInvalidCatalog)
	}
	var problems []string
	seenGrade := map[string]bool{}
	for _, g := range grades {
		if strings.TrimSpace(g.Key) == "" {
			problems = append(problems, "grade with empty key")
			continue
		}
		if seenGrade[g.Key] {
			problems = append(problems, fmt.Sprintf("duplicate grade %s", g.Key))
		}
		seenGrade[g.Key] = true
		seenCat := map[string]bool{}
		for _, cat := range g.Categories {
			where := g.Key + "/" + cat.ID
			if strings.TrimSpace(cat.ID) == "" {
				problems = append(problems, fmt.Sprintf("%s: category with empty id", g.Key))
				continue
			}
			if seenCat[cat.ID] {
				problems = append(problems, fmt.Sprintf("%s: duplicate category", where))
			}
			seenCat[cat.ID] = true
			if !cat.Kind.Valid() {
				problems = append(problems, fmt.Sprintf("%s: unknown kind %q", where, cat.Kind))
				continue
			}
			if cat.Weight < 0 {
				problems = append(problems, fmt.Sprintf("%s: negative weight", where))
			}
			for _, p := range validateRule(cat.Kind, cat.Rule) {
				problems = append(problems, where+": "+p)
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(problems, "; "))
	}
	return nil
}

var kindOperators = map[Kind][]string{
	KindMixed:     {OpAdd, OpSub, OpMul, OpDiv},
	KindDecimal:   {OpAdd, OpSub, OpMul, OpDiv},
	KindFraction:  {OpAdd, OpSub},
	KindFillBlank: {OpAdd, OpSub},
}

func validateRule(k Kind, r Rule) []string {
	var out []string
	if r.MinValue > r.MaxValue && r.MaxValue != 0 {
		out = append(out, "min_value > max_value")
	}
	if r.RequireCarry && !r.CarryAllowed() {
		out = append(out, "require_carry conflicts with allow_carry=false")
	}
	if r.RequireBorrow && !r.BorrowAllowed() {
		out = append(out, "require_borrow conflicts with allow_borrow=false")
	}
	if allowed, ok := kindOperators[k]; ok {
		if len(r.Operators) == 0 {
			out = append(out, "operators required")
		}
		for _, op := range r.Operators {
			if !containsString(allowed, op) {
				out = append(out, fmt.Sprintf("operator %q not allowed", op))
			}
		}
	}
	switch k {
	case KindMixed:
		if r.MaxSteps != 0 && r.MaxSteps < r.Steps {
			out = append(out, "max_steps < steps")
		}
	case KindDecimal:
		if r.MaxDecimalPlaces != 0 && r.MaxDecimalPlaces < r.DecimalPlaces {
			out = append(out, "max_decimal_places < decimal_places")
		}
	case KindFraction:
		if r.MaxDenominator != 0 && r.MaxDenominator < 2 {
			out = append(out, "max_denominator must be at least 2")
		}
	case KindUnitFill:
		if len(r.Units) == 0 {
			out = append(out, "units required")
		}
		for _, u := range r.Units {
			if _, ok := unitTables[u]; !ok {
				out = append(out, fmt.Sprintf("unknown unit family %q", u))
			}
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
