package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/neumathe/kousuan/catalog"
)

// seqSource 按脚本返回随机数，用于断言精确输出
type seqSource struct {
	ints   []int
	floats []float64
	i, f   int
}

func (s *seqSource) Intn(n int) int {
	if s.i >= len(s.ints) {
		return 0
	}
	v := s.ints[s.i] % n
	s.i++
	return v
}

func (s *seqSource) Float64() float64 {
	if s.f >= len(s.floats) {
		return 0.99
	}
	v := s.floats[s.f]
	s.f++
	return v
}

func defaultEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	e, err := New(cat, opts...)
	require.NoError(t, err)
	return e
}

// singleRuleEngine 只含一个题型 g/c 的引擎
func singleRuleEngine(t *testing.T, kind catalog.Kind, rule catalog.Rule, opts ...Option) *Engine {
	t.Helper()
	cat, err := catalog.New([]catalog.Grade{{
		Key: "g",
		Categories: []catalog.Category{{
			ID:   "c",
			Name: "test",
			Kind: kind,
			Rule: rule,
		}},
	}})
	require.NoError(t, err)
	e, err := New(cat, opts...)
	require.NoError(t, err)
	return e
}

func boolPtr(b bool) *bool { return &b }
