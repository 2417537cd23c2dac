package config

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sethvargo/go-envconfig"
	"tangled.org/repobrowser/appview/pagination"
)

type CoreConfig struct {
	CookieSecret string        `env:"COOKIE_SECRET, default=00000000000000000000000000000000"`
	ListenAddr   string        `env:"LISTEN_ADDR, default=0.0.0.0:3000"`
	Dev          bool          `env:"DEV, default=false"`
	LogLevel     string        `env:"LOG_LEVEL, default=info"`
	SessionTTL   time.Duration `env:"SESSION_TTL, default=30m"`
	// repositories suggested on the index page
	Examples     []string      `env:"EXAMPLES, default=octocat/Hello-World,golang/go"`
}

type GitHubConfig struct {
	BaseURL string        `env:"BASE_URL, default=https://api.github.com/"`
	Token   string        `env:"TOKEN"`
	PerPage int           `env:"PER_PAGE, default=30"`
	Timeout time.Duration `env:"TIMEOUT, default=10s"`
}

type CacheBackend string

const (
	CacheMemory CacheBackend = "memory"
	CacheRedis  CacheBackend = "redis"
	CacheNone   CacheBackend = "none"
)

type CacheConfig struct {
	Backend CacheBackend  `env:"BACKEND, default=memory"`
	TTL     time.Duration `env:"TTL, default=60s"`
	MaxCost int64         `env:"MAX_COST, default=67108864"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR, default=localhost:6379"`
	Password string `env:"PASS"`
	DB       int    `env:"DB, default=0"`
}

func (cfg RedisConfig) ToURL() string {
	u := &url.URL{
		Scheme: "redis",
		Host:   cfg.Addr,
		Path:   fmt.Sprintf("/%d", cfg.DB),
	}

	if cfg.Password != "" {
		u.User = url.UserPassword("", cfg.Password)
	}

	return u.String()
}

type Config struct {
	Core   CoreConfig   `env:",prefix=REPOBROWSER_"`
	GitHub GitHubConfig `env:",prefix=REPOBROWSER_GITHUB_"`
	Cache  CacheConfig  `env:",prefix=REPOBROWSER_CACHE_"`
	Redis  RedisConfig  `env:",prefix=REPOBROWSER_REDIS_"`
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if err := pagination.ValidateLimit(c.GitHub.PerPage); err != nil {
		return fmt.Errorf("github per-page: %w", err)
	}
	return nil
}

func LoadConfig(ctx context.Context) (*Config, error) {
	return LoadConfigFrom(ctx, envconfig.OsLookuper())
}

func LoadConfigFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	})
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
