// 包 config：读取 .env、可选 TOML 配置文件与环境变量，环境变量优先级最高
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type Postgres struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DB       string `toml:"db"`
	SSLMode  string `toml:"sslmode"`
}

type Redis struct {
	Host   string `toml:"host"`
	Port   string `toml:"port"`
	Pass   string `toml:"pass"`
	DB     int    `toml:"db"`
	Prefix string `toml:"prefix"`
}

type Config struct {
	Source     string   `toml:"source"`
	DataDir    string   `toml:"data_dir"`
	SQLitePath string   `toml:"sqlite_path"`
	LogLevel   string   `toml:"log_level"`
	LogFormat  string   `toml:"log_format"`
	Postgres   Postgres `toml:"postgres"`
	Redis      Redis    `toml:"redis"`
}

// Default：未配置任何来源时使用内置数据
func Default() Config {
	return Config{
		Source:     "embedded",
		DataDir:    filepath.Join("data", "bdgeo"),
		SQLitePath: filepath.Join("data", "bdgeo.db"),
		LogLevel:   "info",
		Postgres: Postgres{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			DB:      "bdgeo",
			SSLMode: "disable",
		},
		Redis: Redis{
			Host:   "127.0.0.1",
			Port:   "6379",
			Prefix: "bdgeo",
		},
	}
}

// 文档注释：加载配置
// 约束：.env 缺失时静默忽略；BDGEO_CONFIG 指定的文件不存在或格式错误则返回 error。
func Load() (Config, error) {
	_ = godotenv.Load(".env")
	cfg := Default()
	if p := os.Getenv("BDGEO_CONFIG"); p != "" {
		if err := LoadFile(p, &cfg); err != nil {
			return cfg, err
		}
	}
	ApplyEnv(&cfg)
	return cfg, nil
}

// LoadFile：把 TOML 文件覆盖到 cfg 上，文件中未出现的键保持原值
func LoadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := toml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv：环境变量覆盖；REDIS_DB 解析失败时忽略
func ApplyEnv(cfg *Config) {
	set(&cfg.Source, "DATA_SOURCE")
	set(&cfg.DataDir, "DATA_DIR")
	set(&cfg.SQLitePath, "SQLITE_PATH")
	set(&cfg.LogLevel, "LOG_LEVEL")
	set(&cfg.LogFormat, "LOG_FORMAT")
	set(&cfg.Postgres.Host, "PG_HOST")
	set(&cfg.Postgres.Port, "PG_PORT")
	set(&cfg.Postgres.User, "PG_USER")
	set(&cfg.Postgres.Password, "PG_PASSWORD")
	set(&cfg.Postgres.DB, "PG_DB")
	set(&cfg.Postgres.SSLMode, "PG_SSLMODE")
	set(&cfg.Redis.Host, "REDIS_HOST")
	set(&cfg.Redis.Port, "REDIS_PORT")
	set(&cfg.Redis.Pass, "REDIS_PASS")
	set(&cfg.Redis.Prefix, "REDIS_PREFIX")
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Redis.DB = n
		}
	}
}

func set(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// PostgresDSN：拼装 lib/pq 可识别的 URL 形式 DSN；用户名与密码按 URL 规则转义
func (c Config) PostgresDSN() string {
	p := c.Postgres
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(p.Host, p.Port),
		Path:     "/" + p.DB,
		RawQuery: url.Values{"sslmode": {p.SSLMode}}.Encode(),
	}
	if p.Password != "" {
		u.User = url.UserPassword(p.User, p.Password)
	} else {
		u.User = url.User(p.User)
	}
	return u.String()
}

func (c Config) RedisAddr() string { return c.Redis.Host + ":" + c.Redis.Port }
