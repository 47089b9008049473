package engine

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
	"sync"
	"time"
)

// Source 出题和配比使用的随机源，*rand.Rand 即满足该接口。
// 测试中可注入确定性的实现以断言精确输出。
type Source interface {
	Intn(n int) int
	Float64() float64
}

// lockedSource 并发安全的随机源，作为 Engine 的默认随机源
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLockedSource 返回可被多个 goroutine 共享的随机源
func NewLockedSource(seed int64) Source {
	return &lockedSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func newDefaultSource() Source {
	return NewLockedSource(time.Now().UnixNano())
}

// SeededSource 由 (seedStr, salt) 派生确定性的随机源。
// 同一 seedStr + salt 总是得到相同的随机序列；返回值不可并发使用，每次请求单独创建。
func SeededSource(seedStr, salt string) Source {
	return rand.New(rand.NewSource(deriveSeed(seedStr, salt)))
}

// deriveSeed 将 (seedStr, salt) 映射为稳定的 int64 种子
func deriveSeed(seedStr, salt string) int64 {
	h := sha256.Sum256([]byte(seedStr + "|" + salt))
	v := int64(binary.LittleEndian.Uint64(h[:8]))
	if v < 0 {
		v = -v
	}
	return v
}
