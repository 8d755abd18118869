package config

import (
	"fmt"
	"strings"
	"time"

	"lingoflow/pkg/constraints"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	File      FileConfig      `mapstructure:"file"`
	Remote    RemoteConfig    `mapstructure:"remote"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Etcd      EtcdConfig      `mapstructure:"etcd"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

type ServerConfig struct {
	Environment string `mapstructure:"environment"`
	Port        string `mapstructure:"port"`
}

// StoreConfig selects the storage backend. CacheSize 0 disables the LRU.
type StoreConfig struct {
	Backend   string `mapstructure:"backend"`
	CacheSize int    `mapstructure:"cache_size"`
}

type FileConfig struct {
	Path string `mapstructure:"path"`
	Lock string `mapstructure:"lock"`
}

type RemoteConfig struct {
	Dialect     string `mapstructure:"dialect"`
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type EtcdConfig struct {
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	LockKey     string        `mapstructure:"lock_key"`
	SessionTTL  int           `mapstructure:"session_ttl"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `mapstructure:"requests_per_second"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.environment", "dev")
	v.SetDefault("server.port", ":8080")

	v.SetDefault("store.backend", constraints.BackendFile)
	v.SetDefault("store.cache_size", 0)

	v.SetDefault("file.path", "data/features.json")
	v.SetDefault("file.lock", constraints.LockMutex)

	v.SetDefault("remote.dialect", constraints.DialectSQLite)
	v.SetDefault("remote.dsn", "data/lingoflow.db")
	v.SetDefault("remote.auto_migrate", true)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("etcd.endpoints", []string{})
	v.SetDefault("etcd.dial_timeout", 5*time.Second)
	v.SetDefault("etcd.lock_key", "/lingoflow/locks/file-store")
	v.SetDefault("etcd.session_ttl", 10)

	v.SetDefault("ratelimit.requests_per_second", 5)
}

// Load reads config.yaml from . or ./config, overlays LINGO_* environment
// variables and validates the result. It panics on any error.
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	cfg, err := load(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix("LINGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine: defaults and env still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case constraints.BackendFile:
		switch c.File.Lock {
		case constraints.LockMutex, constraints.LockNone:
		case constraints.LockEtcd:
			if len(c.Etcd.Endpoints) == 0 {
				return fmt.Errorf("config: file.lock=etcd requires etcd.endpoints")
			}
		default:
			return fmt.Errorf("config: unknown file.lock %q", c.File.Lock)
		}
		if strings.TrimSpace(c.File.Path) == "" {
			return fmt.Errorf("config: file.path is required")
		}
	case constraints.BackendRemote:
		switch c.Remote.Dialect {
		case constraints.DialectMySQL, constraints.DialectPostgres, constraints.DialectSQLite:
		default:
			return fmt.Errorf("config: unknown remote.dialect %q", c.Remote.Dialect)
		}
		if strings.TrimSpace(c.Remote.DSN) == "" {
			return fmt.Errorf("config: remote.dsn is required")
		}
	default:
		return fmt.Errorf("config: unknown store.backend %q", c.Store.Backend)
	}
	if c.Store.CacheSize < 0 {
		return fmt.Errorf("config: store.cache_size must not be negative")
	}
	return nil
}
