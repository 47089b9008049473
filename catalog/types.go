package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Kind 标识一个题型族，决定由哪个生成器出题
type Kind string

const (
	KindAddition       Kind = "addition"
	KindSubtraction    Kind = "subtraction"
	KindMultiplication Kind = "multiplication"
	KindDivision       Kind = "division"
	KindMixed          Kind = "mixed"
	KindDecimal        Kind = "decimal"
	KindFraction       Kind = "fraction"
	KindFillBlank      Kind = "fill_blank"
	KindComparison     Kind = "comparison"
	KindUnitFill       Kind = "unit_fill"
)

var allKinds = []Kind{
	KindAddition,
	KindSubtraction,
	KindMultiplication,
	KindDivision,
	KindMixed,
	KindDecimal,
	KindFraction,
	KindFillBlank,
	KindComparison,
	KindUnitFill,
}

// Kinds 返回全部已知题型族（顺序固定）
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// Valid 判断 k 是否为已知题型族
func (k Kind) Valid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

// 规则与题面中使用的运算符
const (
	OpAdd = "+"
	OpSub = "-"
	OpMul = "×"
	OpDiv = "÷"
)

// Rule 描述一个题型的出题约束，加载后不再修改
type Rule struct {
	Kind      Kind     `yaml:"-" json:"kind"`
	Operators []string `yaml:"operators,omitempty" json:"operators,omitempty"`

	// 数值范围：加法约束和的范围，减法约束被减数/减数，比较约束两个数
	MinValue  int `yaml:"min_value" json:"min_value"`
	MaxValue  int `yaml:"max_value" json:"max_value"`
	MaxResult int `yaml:"max_result,omitempty" json:"max_result,omitempty"`

	// 乘除法按角色的上界
	MultiplicandMax int  `yaml:"multiplicand_max,omitempty" json:"multiplicand_max,omitempty"`
	MultiplierMax   int  `yaml:"multiplier_max,omitempty" json:"multiplier_max,omitempty"`
	DivisorMax      int  `yaml:"divisor_max,omitempty" json:"divisor_max,omitempty"`
	QuotientMax     int  `yaml:"quotient_max,omitempty" json:"quotient_max,omitempty"`
	AllowZero       bool `yaml:"allow_zero,omitempty" json:"allow_zero,omitempty"`
	AllowRemainder  bool `yaml:"allow_remainder,omitempty" json:"allow_remainder,omitempty"`

	// 进位 / 退位；AllowCarry、AllowBorrow 缺省为 true
	AllowCarry     *bool `yaml:"allow_carry,omitempty" json:"allow_carry,omitempty"`
	RequireCarry   bool  `yaml:"require_carry,omitempty" json:"require_carry,omitempty"`
	MultipleCarry  bool  `yaml:"multiple_carry,omitempty" json:"multiple_carry,omitempty"`
	AllowBorrow    *bool `yaml:"allow_borrow,omitempty" json:"allow_borrow,omitempty"`
	RequireBorrow  bool  `yaml:"require_borrow,omitempty" json:"require_borrow,omitempty"`
	MultipleBorrow bool  `yaml:"multiple_borrow,omitempty" json:"multiple_borrow,omitempty"`
	AllowNegative  bool  `yaml:"allow_negative,omitempty" json:"allow_negative,omitempty"`

	// 混合运算
	Steps            int   `yaml:"steps,omitempty" json:"steps,omitempty"`
	MaxSteps         int   `yaml:"max_steps,omitempty" json:"max_steps,omitempty"`
	AllowParentheses bool  `yaml:"allow_parentheses,omitempty" json:"allow_parentheses,omitempty"`
	ExactDivision    *bool `yaml:"exact_division,omitempty" json:"exact_division,omitempty"`

	// 小数
	DecimalPlaces    int `yaml:"decimal_places,omitempty" json:"decimal_places,omitempty"`
	MaxDecimalPlaces int `yaml:"max_decimal_places,omitempty" json:"max_decimal_places,omitempty"`

	// 分数
	SameDenominator bool `yaml:"same_denominator,omitempty" json:"same_denominator,omitempty"`
	NeedSimplify    bool `yaml:"need_simplify,omitempty" json:"need_simplify,omitempty"`
	MaxNumerator    int  `yaml:"max_numerator,omitempty" json:"max_numerator,omitempty"`
	MaxDenominator  int  `yaml:"max_denominator,omitempty" json:"max_denominator,omitempty"`

	// 单位换算：单位族，如 length、money、time
	Units []string `yaml:"units,omitempty" json:"units,omitempty"`
}

// CarryAllowed 是否允许进位，未配置时允许
func (r Rule) CarryAllowed() bool { return r.AllowCarry == nil || *r.AllowCarry }

// BorrowAllowed 是否允许退位，未配置时允许
func (r Rule) BorrowAllowed() bool { return r.AllowBorrow == nil || *r.AllowBorrow }

// ExactDivisionRequired 混合运算是否要求整除，缺省为 true
func (r Rule) ExactDivisionRequired() bool { return r.ExactDivision == nil || *r.ExactDivision }

// Category 年级下的一个题型
type Category struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Kind        Kind     `yaml:"kind" json:"kind"`
	Weight      int      `yaml:"weight,omitempty" json:"weight"`
	Difficulty  string   `yaml:"difficulty,omitempty" json:"difficulty,omitempty"`
	Examples    []string `yaml:"examples,omitempty" json:"examples,omitempty"`
	Rule        Rule     `yaml:"rule" json:"rule"`
}

// EffectiveWeight 返回配比权重，未设置时为 1
func (c Category) EffectiveWeight() int {
	if c.Weight <= 0 {
		return 1
	}
	return c.Weight
}

// PracticeRange 年级推荐练习配置
type PracticeRange struct {
	QuestionCounts []int    `yaml:"question_counts" json:"question_counts"`
	TimeLimit      Duration `yaml:"time_limit" json:"time_limit_seconds"`
	TargetAccuracy int      `yaml:"target_accuracy" json:"target_accuracy"`
}

// Grade 一个年级及其题型列表
type Grade struct {
	Key        string        `yaml:"key" json:"key"`
	Name       string        `yaml:"name" json:"name"`
	Level      int           `yaml:"level" json:"level"`
	Practice   PracticeRange `yaml:"practice" json:"practice"`
	Categories []Category    `yaml:"categories" json:"categories,omitempty"`
}

// Duration 支持 "5m" 这类写法的时长；YAML 整数按秒解析
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	s := strings.TrimSpace(value.Value)
	if s == "" {
		d.Duration = 0
		return nil
	}
	if value.Tag == "!!int" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		d.Duration = time.Duration(n) * time.Second
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = dd
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%d", int64(d.Duration/time.Second))), nil
}
