package worksheet

import (
	"errors"
	"time"

	"github.com/neumathe/kousuan/engine"
)

var (
	ErrNotFound       = errors.New("worksheet not found")
	ErrInvalidRequest = errors.New("invalid worksheet request")
)

const (
	DefaultTitle   = "口算练习题"
	DefaultColumns = 3
	MinColumns     = 2
	MaxColumns     = 5
)

// Request 组卷请求。Smart 为 true 时按题型权重配比，
// 否则在 Categories 间平均分配（靠前的题型多分余数）。
type Request struct {
	Title       string   `json:"title"`
	GradeKey    string   `json:"grade_key"`
	Count       int      `json:"count"`
	Categories  []string `json:"categories,omitempty"`
	Smart       bool     `json:"smart"`
	Columns     int      `json:"columns"`
	ShowAnswers bool     `json:"show_answers"`
	Seed        string   `json:"seed,omitempty"`
}

// Worksheet 一份已生成的练习卷，保存后可凭 ID 再次取回（含答案）
type Worksheet struct {
	ID          string                   `json:"id"`
	Title       string                   `json:"title"`
	GradeKey    string                   `json:"grade_key"`
	GradeName   string                   `json:"grade_name"`
	Columns     int                      `json:"columns"`
	ShowAnswers bool                     `json:"show_answers"`
	Seed        string                   `json:"seed,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	Requested   int                      `json:"requested"`
	Shortfall   int                      `json:"shortfall"`
	Allocation  []engine.AllocationEntry `json:"allocation"`
	Questions   []engine.Question        `json:"questions"`
}
