package engine

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// preallocLimit 结果切片预分配的上限，更大的批次按需扩容
const preallocLimit = 1024

// attemptBudget 返回 count×k，乘积溢出时取 math.MaxInt
func attemptBudget(count, k int) int {
	if count <= 0 || k <= 0 {
		return 0
	}
	if count > math.MaxInt/k {
		return math.MaxInt
	}
	return count * k
}

// GenerateQuestions 为一个题型批量出题，按规范算式去重。
//
// 最多尝试 count×K 次（K 见 WithAttemptFactor），重复题和约束失败都消耗一次尝试。
// 尝试用尽时返回已得到的题目，调用方需自行比较返回数量与 count。
// 未知题型返回 ErrCategoryNotFound，不做部分返回。
func (e *Engine) GenerateQuestions(gradeKey, categoryID string, count int) ([]Question, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	rule, gen, err := e.resolve(gradeKey, categoryID)
	if err != nil {
		return nil, err
	}
	s := e.sampler()
	out := make([]Question, 0, minInt(count, preallocLimit))
	seen := make(map[string]struct{}, minInt(count, preallocLimit))
	maxAttempts := attemptBudget(count, e.attemptFactor)
	attempts := 0
	for ; len(out) < count && attempts < maxAttempts; attempts++ {
		q, err := gen(s, rule)
		if err != nil {
			e.log.Debug("candidate rejected",
				zap.String("grade", gradeKey),
				zap.String("category", categoryID),
				zap.Error(err))
			continue
		}
		if _, dup := seen[q.Expression]; dup {
			continue
		}
		seen[q.Expression] = struct{}{}
		q.GradeKey, q.CategoryID = gradeKey, categoryID
		out = append(out, q)
	}
	if len(out) < count {
		e.log.Info("batch short",
			zap.String("grade", gradeKey),
			zap.String("category", categoryID),
			zap.Int("requested", count),
			zap.Int("generated", len(out)),
			zap.Int("attempts", attempts))
	}
	return out, nil
}
