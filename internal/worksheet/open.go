package worksheet

import (
	"context"
	"fmt"

	"github.com/neumathe/kousuan/internal/config"
)

// OpenStore 按配置选择存储驱动
func OpenStore(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", config.StoreMemory:
		return NewMemoryStore(), nil
	case config.StoreBadger:
		s, err := OpenBadgerStore(cfg.BadgerDir, cfg.TTL.Duration)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreRedis:
		s, err := NewRedisStore(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.KeyPrefix,
			TTL:      cfg.TTL.Duration,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
