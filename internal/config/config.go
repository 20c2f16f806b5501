package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type AppConfig struct {
	// Server
	HTTPAddr        string        `yaml:"http_addr" env:"HTTP_ADDR" env-default:":8000"`
	AppEnv          string        `yaml:"app_env" env:"APP_ENV" env-default:"production"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:","`

	API   APIConfig   `yaml:"api"`
	Redis RedisConfig `yaml:"redis"`
	Guard GuardConfig `yaml:"guard"`

	// DatabaseURL enables the sign-in audit trail when set.
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`

	// JWTPublicKeyPath turns on signature checks of backend tokens at login.
	JWTPublicKeyPath string `yaml:"jwt_public_key_path" env:"JWT_PUBLIC_KEY_PATH"`

	SessionTTL      time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"24h"`
	DefaultRedirect string        `yaml:"default_redirect" env:"DEFAULT_REDIRECT" env-default:"/admin/users/clients"`
}

type APIConfig struct {
	BaseURL      string        `yaml:"base_url" env:"API_BASE_URL" env-default:"http://localhost:8080/api"`
	Timeout      time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"15s"`
	TenantHeader string        `yaml:"tenant_header" env:"API_TENANT_HEADER" env-default:"X-Tenant-ID"`
	RefreshPath  string        `yaml:"refresh_path" env:"API_REFRESH_PATH" env-default:"auth/refresh"`
}

type RedisConfig struct {
	// Addr may list several comma-separated nodes for cluster mode.
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	// Cluster forces cluster mode for a single seed address.
	Cluster  bool   `yaml:"cluster" env:"REDIS_CLUSTER" env-default:"false"`
	Pass     string `yaml:"pass" env:"REDIS_PASS"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	PoolSize int    `yaml:"pool_size" env:"REDIS_POOL_SIZE" env-default:"10"`
}

func (r RedisConfig) Addresses() []string {
	var out []string
	for _, a := range strings.Split(r.Addr, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

type GuardConfig struct {
	Scope         string `yaml:"scope" env:"GUARD_SCOPE" env-default:"admin-only"`
	AdminPrefix   string `yaml:"admin_prefix" env:"ADMIN_PREFIX" env-default:"/admin"`
	LoginPath     string `yaml:"login_path" env:"LOGIN_PATH" env-default:"/login"`
	ForbiddenPath string `yaml:"forbidden_path" env:"FORBIDDEN_PATH" env-default:"/403"`
	AssetPrefix   string `yaml:"asset_prefix" env:"ASSET_PREFIX" env-default:"/static"`
}

func (c AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// Load reads the config from the environment, or from the YAML file at
// path (with environment overrides) when path is not empty.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
