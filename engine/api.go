package engine

// 面向上层的封装 API：
// 上层只需给出 (年级, 题型) 或 (年级, 总题量)，
// 即可得到带填空 ID 与标准答案的口算题。
//
// 同一 Engine 可被多个 goroutine 共享；需要可复现结果时，
// 用 WithSource(SeededSource(seed, salt)) 得到绑定确定性随机源的副本。

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/neumathe/kousuan/catalog"
)

const (
	defaultMaxRetries    = 200
	defaultAttemptFactor = 10
)

// Engine 出题引擎，只持有只读规则表和随机源
type Engine struct {
	rules         RuleSource
	src           Source
	log           *zap.Logger
	maxRetries    int
	attemptFactor int
	generators    map[catalog.Kind]generator
}

// Option 配置 Engine
type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRandSource 替换默认随机源
func WithRandSource(src Source) Option {
	return func(e *Engine) {
		if src != nil {
			e.src = src
		}
	}
}

// WithMaxRetries 单个出题器的最大重试次数，默认 200
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxRetries = n
		}
	}
}

// WithAttemptFactor 批量出题的尝试倍数 K（上限 count×K），默认 10
func WithAttemptFactor(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.attemptFactor = k
		}
	}
}

// New 创建出题引擎；每个已知题型族都必须有对应的出题器
func New(rules RuleSource, opts ...Option) (*Engine, error) {
	if rules == nil {
		return nil, errors.New("engine: nil rule source")
	}
	e := &Engine{
		rules:         rules,
		log:           zap.NewNop(),
		maxRetries:    defaultMaxRetries,
		attemptFactor: defaultAttemptFactor,
		generators:    defaultGenerators(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.src == nil {
		e.src = newDefaultSource()
	}
	for _, k := range catalog.Kinds() {
		if _, ok := e.generators[k]; !ok {
			return nil, fmt.Errorf("engine: no generator for kind %q", k)
		}
	}
	return e, nil
}

// WithSource 返回绑定到 src 的副本，原 Engine 不受影响
func (e *Engine) WithSource(src Source) *Engine {
	cp := *e
	cp.src = src
	return &cp
}

func (e *Engine) sampler() sampler {
	return sampler{src: e.src, retries: e.maxRetries}
}

func (e *Engine) resolve(gradeKey, categoryID string) (catalog.Rule, generator, error) {
	rule, ok := e.rules.LookupRule(gradeKey, categoryID)
	if !ok {
		return catalog.Rule{}, nil, fmt.Errorf("%w: %s/%s", ErrCategoryNotFound, gradeKey, categoryID)
	}
	gen, ok := e.generators[rule.Kind]
	if !ok {
		return catalog.Rule{}, nil, fmt.Errorf("%w: %s/%s has unknown kind %q", ErrCategoryNotFound, gradeKey, categoryID, rule.Kind)
	}
	return rule, gen, nil
}

// GenerateQuestion 为 (gradeKey, categoryID) 生成一道题
func (e *Engine) GenerateQuestion(gradeKey, categoryID string) (Question, error) {
	rule, gen, err := e.resolve(gradeKey, categoryID)
	if err != nil {
		return Question{}, err
	}
	q, err := gen(e.sampler(), rule)
	if err != nil {
		return Question{}, fmt.Errorf("%s/%s: %w", gradeKey, categoryID, err)
	}
	q.GradeKey, q.CategoryID = gradeKey, categoryID
	return q, nil
}

// SmartAllocation 按题型权重把 count 道题分配到年级下的各题型
func (e *Engine) SmartAllocation(gradeKey string, count int) ([]AllocationEntry, error) {
	cats := e.rules.ListCategories(gradeKey)
	if len(cats) == 0 {
		return nil, fmt.Errorf("%w: grade %s has no categories", ErrInvalidAllocationRequest, gradeKey)
	}
	return Allocate(cats, count, e.src)
}

// SmartGenerate 先配比、再按题型批量出题，拼接后整体打乱
func (e *Engine) SmartGenerate(gradeKey string, count int) ([]Question, error) {
	res, err := e.SmartMix(gradeKey, count)
	if err != nil {
		return nil, err
	}
	return res.Questions, nil
}

// SmartMix 同 SmartGenerate，同时返回实际使用的配比，便于上层报告缺题
func (e *Engine) SmartMix(gradeKey string, count int) (*MixResult, error) {
	alloc, err := e.SmartAllocation(gradeKey, count)
	if err != nil {
		return nil, err
	}
	qs := make([]Question, 0, minInt(count, preallocLimit))
	for _, a := range alloc {
		if a.Count == 0 {
			continue
		}
		batch, err := e.GenerateQuestions(gradeKey, a.CategoryID, a.Count)
		if err != nil {
			return nil, err
		}
		qs = append(qs, batch...)
	}
	e.ShuffleQuestions(qs)
	return &MixResult{Requested: count, Allocation: alloc, Questions: qs}, nil
}

// ShuffleQuestions 用引擎的随机源原地打乱 qs
func (e *Engine) ShuffleQuestions(qs []Question) {
	Shuffle(qs, e.src)
}

// Shuffle Fisher–Yates 原地打乱
func Shuffle(qs []Question, src Source) {
	for i := len(qs) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		qs[i], qs[j] = qs[j], qs[i]
	}
}
