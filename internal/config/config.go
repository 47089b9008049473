package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration 接受 "5s" 形式的字符串或整数秒
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	s := strings.TrimSpace(n.Value)
	if s == "" {
		d.Duration = 0
		return nil
	}
	if n.Tag == "!!int" {
		var secs int64
		if err := n.Decode(&secs); err != nil {
			return err
		}
		d.Duration = time.Duration(secs) * time.Second
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration must be a string like \"5s\" or integer seconds: %w", err)
	}
	d.Duration = dd
	return nil
}

type HTTPConfig struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	IdleTimeout       Duration `yaml:"idle_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
	MaxRequestBytes   int64    `yaml:"max_request_bytes"`
	AllowOrigins      []string `yaml:"allow_origins"`
}

type EngineConfig struct {
	MaxRetries    int `yaml:"max_retries"`
	AttemptFactor int `yaml:"attempt_factor"`
	// MaxCount 单次请求的题量上限
	MaxCount int `yaml:"max_count"`
	// SeedSalt 与请求中的 seed 一起派生确定性随机源
	SeedSalt string `yaml:"seed_salt"`
}

type CatalogConfig struct {
	// Path 为空时使用内置题型表
	Path string `yaml:"path"`
}

const (
	StoreMemory = "memory"
	StoreBadger = "badger"
	StoreRedis  = "redis"
)

type StoreConfig struct {
	Driver        string   `yaml:"driver"`
	BadgerDir     string   `yaml:"badger_dir"`
	RedisAddr     string   `yaml:"redis_addr"`
	RedisPassword string   `yaml:"redis_password"`
	RedisDB       int      `yaml:"redis_db"`
	KeyPrefix     string   `yaml:"key_prefix"`
	TTL           Duration `yaml:"ttl"`
}

type Config struct {
	Env     string        `yaml:"env"`
	HTTP    HTTPConfig    `yaml:"http"`
	Engine  EngineConfig  `yaml:"engine"`
	Catalog CatalogConfig `yaml:"catalog"`
	Store   StoreConfig   `yaml:"store"`
}
