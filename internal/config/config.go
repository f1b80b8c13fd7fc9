package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel    string `toml:"log_level"`
	LogsPath    string `toml:"logs_path"`
	LogToStdout bool   `toml:"log_to_stdout"`
	SentryEnabled bool `toml:"sentry_enabled"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// prometheus metrics server
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// static game data
	QuestsPath      string `toml:"quests_path"`
	AvatarsRootPath string `toml:"avatars_root_path"`

	// gameplay
	MaxEquippedShadows int `toml:"max_equipped_shadows"`
	LeaderboardSize    int `toml:"leaderboard_size"`

	// ai assistant
	AiBaseURL string `toml:"ai_base_url"`

	LoginRateLimitAllowedPerMin int `toml:"login_rate_limit_allowed_per_min"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var confToml Toml
	if _, err := toml.DecodeFile(path, &confToml); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	cfg, err := confToml.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env %s is empty", env)
	}

	cfg.Environment = env
	if cfg.MaxEquippedShadows <= 0 {
		cfg.MaxEquippedShadows = 3
	}
	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = 20
	}

	return cfg, nil
}
