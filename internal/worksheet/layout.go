package worksheet

import (
	"fmt"
	"strings"

	"github.com/neumathe/kousuan/engine"
)

// Lines 按列数排版练习卷：标题一行，随后每行 Columns 道题，题目带序号。
// withAnswers 为 true 时空位填入标准答案。
func Lines(ws *Worksheet, withAnswers bool) []string {
	cols := ws.Columns
	if cols <= 0 {
		cols = DefaultColumns
	}
	out := []string{ws.Title}
	if ws.GradeName != "" {
		out[0] += "（" + ws.GradeName + "）"
	}
	var row []string
	for i, q := range ws.Questions {
		row = append(row, fmt.Sprintf("%d. %s", i+1, engine.Render(q, withAnswers)))
		if len(row) == cols {
			out = append(out, strings.Join(row, "    "))
			row = row[:0]
		}
	}
	if len(row) > 0 {
		out = append(out, strings.Join(row, "    "))
	}
	return out
}
