package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

func defaultConfig() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxRequestBytes:   1 << 20,
			AllowOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://127.0.0.1:3000",
				"http://127.0.0.1:5173",
			},
		},
		Engine: EngineConfig{
			MaxRetries:    200,
			AttemptFactor: 10,
			MaxCount:      200,
		},
		Store: StoreConfig{
			Driver:    StoreMemory,
			BadgerDir: "data",
			KeyPrefix: "kousuan:worksheet:",
			TTL:       Duration{Duration: 7 * 24 * time.Hour},
		},
	}
}

// Load 读取配置：文件路径取自 KOUSUAN_CONFIG_PATH，
// 未设置时尝试 ./config/config.yaml；随后应用环境变量覆盖并校验。
func Load() (*Config, error) {
	cfgPath := strings.TrimSpace(os.Getenv("KOUSUAN_CONFIG_PATH"))
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.yaml")
			if _, err := os.Stat(p); err == nil {
				cfgPath = p
			}
		}
	}
	return LoadFile(cfgPath)
}

// LoadFile 同 Load，但使用给定路径；path 为空时只用默认值和环境变量
func LoadFile(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("LOG_MODE")); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(os.Getenv("KOUSUAN_HTTP_ADDR")); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("KOUSUAN_CATALOG_PATH")); v != "" {
		cfg.Catalog.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("KOUSUAN_STORE_DRIVER")); v != "" {
		cfg.Store.Driver = v
	}
	if v := strings.TrimSpace(os.Getenv("KOUSUAN_BADGER_DIR")); v != "" {
		cfg.Store.BadgerDir = v
	}
	if v := strings.TrimSpace(os.Getenv("KOUSUAN_SEED_SALT")); v != "" {
		cfg.Engine.SeedSalt = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_ADDR")); v != "" {
		cfg.Store.RedisAddr = v
	}
}

func (cfg *Config) normalize() error {
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.MaxRequestBytes <= 0 {
		cfg.HTTP.MaxRequestBytes = 1 << 20
	}
	if cfg.HTTP.ShutdownTimeout.Duration <= 0 {
		cfg.HTTP.ShutdownTimeout = Duration{Duration: 15 * time.Second}
	}
	if cfg.Engine.MaxRetries < 0 || cfg.Engine.AttemptFactor < 0 {
		return errors.New("engine.max_retries and engine.attempt_factor must not be negative")
	}
	if cfg.Engine.MaxCount <= 0 {
		cfg.Engine.MaxCount = 200
	}

	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	switch cfg.Store.Driver {
	case "", StoreMemory:
		cfg.Store.Driver = StoreMemory
	case StoreBadger:
		if strings.TrimSpace(cfg.Store.BadgerDir) == "" {
			return errors.New("store.badger_dir is required for the badger driver")
		}
	case StoreRedis:
		if strings.TrimSpace(cfg.Store.RedisAddr) == "" {
			return errors.New("store.redis_addr (or REDIS_ADDR) is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", cfg.Store.Driver)
	}
	if cfg.Store.KeyPrefix == "" {
		cfg.Store.KeyPrefix = "kousuan:worksheet:"
	}
	if cfg.Store.TTL.Duration < 0 {
		return errors.New("store.ttl must not be negative")
	}
	return nil
}
