package qa

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/neumathe/kousuan/engine"
)

// 每个题型单独出一道题，检查题型标签和典型约束
func TestGenerateQuestion_EveryCategory(t *testing.T) {
	eng, cat := newEngine(t)
	eng = eng.WithSource(engine.SeededSource("every-category", "salt"))
	for _, g := range cat.Grades() {
		for _, c := range cat.ListCategories(g.Key) {
			q, err := eng.GenerateQuestion(g.Key, c.ID)
			if err != nil {
				t.Fatalf("%s/%s: %v", g.Key, c.ID, err)
			}
			if q.CategoryID != c.ID {
				t.Fatalf("%s/%s: tagged %s", g.Key, c.ID, q.CategoryID)
			}
			checkPlaceholders(t, q)
			t.Logf("[QA] %s/%s %s → %s", g.Key, c.ID, engine.Render(q, false), q.Answer)
		}
	}
}

func TestGenerateQuestion_RemainderDivision(t *testing.T) {
	eng, _ := newEngine(t)
	eng = eng.WithSource(engine.SeededSource("remainder", "salt"))
	for i := 0; i < 50; i++ {
		q, err := eng.GenerateQuestion("grade_3", "3_5")
		if err != nil {
			t.Fatalf("GenerateQuestion: %v", err)
		}
		ops, ok := q.IntOperands()
		if !ok || len(ops) != 2 {
			t.Fatalf("unexpected operands %v", q.Operands)
		}
		quot, rem := ops[0]/ops[1], ops[0]%ops[1]
		if rem == 0 {
			if len(q.Blanks) != 1 {
				t.Fatalf("%q divides exactly but has %d blanks", q.Expression, len(q.Blanks))
			}
			continue
		}
		if len(q.Blanks) != 2 || q.Blanks[0].ID != "quotient" || q.Blanks[1].ID != "remainder" {
			t.Fatalf("%q: unexpected blanks %+v", q.Expression, q.Blanks)
		}
		parts := strings.Split(q.Answer, "……")
		if len(parts) != 2 || parts[0] != strconv.Itoa(quot) || parts[1] != strconv.Itoa(rem) {
			t.Fatalf("%q: answer %q, expected %d……%d", q.Expression, q.Answer, quot, rem)
		}
		if rem >= ops[1] {
			t.Fatalf("%q: remainder %d not below divisor", q.Expression, rem)
		}
	}
}

func TestGenerateQuestion_Unknown(t *testing.T) {
	eng, _ := newEngine(t)
	for _, k := range [][2]string{{"grade_1", "6_1"}, {"grade_0", "1_1"}, {"", ""}} {
		_, err := eng.GenerateQuestion(k[0], k[1])
		if !errors.Is(err, engine.ErrCategoryNotFound) {
			t.Fatalf("%v: expected ErrCategoryNotFound, got %v", k, err)
		}
	}
}
