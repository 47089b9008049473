package engine

import (
	"strings"
)

// EmptyBlank 学生作答版题面中的空位
const EmptyBlank = "( )"

func blankPlaceholder(id string) string {
	return "{{blank:" + id + "}}"
}

// Render 将题面中的 {{blank:ID}} 占位符替换为空位或标准答案
func Render(q Question, withAnswers bool) string {
	out := q.Display
	for _, b := range q.Blanks {
		v := EmptyBlank
		if withAnswers {
			v = b.Answer
		}
		out = strings.ReplaceAll(out, blankPlaceholder(b.ID), v)
	}
	return out
}

// displayFor 按模板拼出题面，模板中的 {{key}} 取自 vars
func displayFor(tpl string, vars map[string]string) string {
	out := tpl
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}

// fillPrompt 把题面中的填空替换为 "?"，作为单位换算等填空题的规范算式
func fillPrompt(display string, blanks []Blank) string {
	out := display
	for _, b := range blanks {
		out = strings.ReplaceAll(out, blankPlaceholder(b.ID), "?")
	}
	return out
}
