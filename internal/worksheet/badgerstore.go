package worksheet

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore 本地持久化存储，键为 "worksheet:<id>"
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenBadgerStore 在 dataDir/badger 下打开数据库；ttl 为 0 表示永不过期
func OpenBadgerStore(dataDir string, ttl time.Duration) (*BadgerStore, error) {
	dbPath := filepath.Join(dataDir, "badger")
	db, err := badger.Open(badger.DefaultOptions(dbPath).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger %s: %w", dbPath, err)
	}
	return &BadgerStore{db: db, ttl: ttl}, nil
}

// OpenInMemoryBadgerStore 不落盘的 badger 实例，测试用
func OpenInMemoryBadgerStore(ttl time.Duration) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db, ttl: ttl}, nil
}

func badgerKey(id string) []byte {
	return []byte("worksheet:" + id)
}

func (s *BadgerStore) Save(_ context.Context, ws *Worksheet) error {
	val, err := encode(ws)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(badgerKey(ws.ID), val)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
}

func (s *BadgerStore) Get(_ context.Context, id string) (*Worksheet, error) {
	var ws *Worksheet
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			w, err := decode(id, val)
			if err != nil {
				return err
			}
			ws = w
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return ws, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
