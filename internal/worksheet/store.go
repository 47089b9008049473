package worksheet

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Store 保存练习卷。实现需可被多个 goroutine 并发使用。
type Store interface {
	Save(ctx context.Context, ws *Worksheet) error
	// Get 不存在或已过期时返回 ErrNotFound
	Get(ctx context.Context, id string) (*Worksheet, error)
	Close() error
}

func encode(ws *Worksheet) ([]byte, error) {
	return json.Marshal(ws)
}

func decode(id string, b []byte) (*Worksheet, error) {
	var ws Worksheet
	if err := json.Unmarshal(b, &ws); err != nil {
		return nil, fmt.Errorf("decode worksheet %s: %w", id, err)
	}
	return &ws, nil
}

// MemoryStore 进程内存储，重启即丢失，用于开发和测试
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Save 保存编码后的副本，调用方之后修改 ws 不影响已保存的内容
func (m *MemoryStore) Save(_ context.Context, ws *Worksheet) error {
	b, err := encode(ws)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[ws.ID] = b
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Worksheet, error) {
	m.mu.RLock()
	b, ok := m.data[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return decode(id, b)
}

func (m *MemoryStore) Close() error { return nil }
