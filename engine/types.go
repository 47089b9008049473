package engine

import (
	"math/big"
	"strconv"

	"github.com/neumathe/kousuan/catalog"
)

// Question 一道生成好的口算题，返回后不再修改。
// 批内去重只看 Expression。
type Question struct {
	GradeKey   string `json:"grade_key"`
	CategoryID string `json:"category_id"`
	Type       string `json:"type"`
	// Expression 规范算式（不含 "= ?"），如 "3 + 5"
	Expression string `json:"expression"`
	// Display 题面，用 {{blank:ID}} 标记填空位置，见 Render
	Display string `json:"display"`
	// Answer 规范答案文本：整数、按位数舍入的小数、"n/d"、比较符号、"q……r" 等
	Answer    string   `json:"answer"`
	Blanks    []Blank  `json:"blanks"`
	Operands  []string `json:"operands"`
	Operators []string `json:"operators"`
}

// Blank 题面中的一个填空及其标准答案
type Blank struct {
	ID     string `json:"id"`
	Answer string `json:"answer"`
}

// IntOperands 将操作数解析为整数；存在非整数操作数时 ok 为 false
func (q Question) IntOperands() ([]int, bool) {
	out := make([]int, 0, len(q.Operands))
	for _, s := range q.Operands {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}

// AnswerRat 将数值型答案解析为有理数；比较、余数、单位题返回 false
func (q Question) AnswerRat() (*big.Rat, bool) {
	return new(big.Rat).SetString(q.Answer)
}

// 题型标签
const (
	TypeAddition       = "addition"
	TypeSubtraction    = "subtraction"
	TypeMultiplication = "multiplication"
	TypeDivision       = "division"
	TypeMixed          = "mixed"
	TypeDecimal        = "decimal"
	TypeFraction       = "fraction"
	TypeFillBlank      = "fill_blank"
	TypeComparison     = "comparison"
	TypeUnitConversion = "unit_conversion"
)

// AllocationEntry 智能配比中一个题型分到的题量
type AllocationEntry struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Count        int    `json:"count"`
	Weight       int    `json:"weight"`
}

// MixResult 智能组卷的结果：实际使用的配比与打乱后的题目
type MixResult struct {
	Requested  int               `json:"requested"`
	Allocation []AllocationEntry `json:"allocation"`
	Questions  []Question        `json:"questions"`
}

// Shortfall 实际题量与请求题量的差
func (m *MixResult) Shortfall() int {
	if d := m.Requested - len(m.Questions); d > 0 {
		return d
	}
	return 0
}

// RuleSource 出题所需的只读规则表，*catalog.Catalog 即满足该接口
type RuleSource interface {
	LookupRule(gradeKey, categoryID string) (catalog.Rule, bool)
	ListCategories(gradeKey string) []catalog.Category
}
