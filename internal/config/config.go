// Package config loads client and server settings from defaults, an optional
// YAML file, .env files, PODSYNC_* environment variables and command flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables, e.g. PODSYNC_SERVER_URL
const EnvPrefix = "PODSYNC"

// Log содержит настройки логирования
type Log struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // text или json
	File       string `mapstructure:"file"`   // пусто: stderr
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Client содержит настройки клиента синхронизации
type Client struct {
	Log               Log           `mapstructure:"log"`
	ServerURL         string        `mapstructure:"server_url"`
	Token             string        `mapstructure:"token"`
	DataDir           string        `mapstructure:"data_dir"`
	Debounce          time.Duration `mapstructure:"debounce"`
	PullTTL           time.Duration `mapstructure:"pull_ttl"`
	RecencyWindow     time.Duration `mapstructure:"recency_window"`
	NetworkTimeout    time.Duration `mapstructure:"network_timeout"`
	ZeroGuardMin      float64       `mapstructure:"zero_guard_min"`
	ProgressTolerance float64       `mapstructure:"progress_tolerance"`
	FlushConcurrency  int           `mapstructure:"flush_concurrency"`
}

// Server содержит настройки сервера-источника истины
type Server struct {
	Log               Log           `mapstructure:"log"`
	Addr              string        `mapstructure:"addr"`
	DBPath            string        `mapstructure:"db_path"`
	JWTSecret         string        `mapstructure:"jwt_secret"`
	TokenTTL          time.Duration `mapstructure:"token_ttl"`
	RateInterval      time.Duration `mapstructure:"rate_interval"`
	FeedWriteTimeout  time.Duration `mapstructure:"feed_write_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	ProgressTolerance float64       `mapstructure:"progress_tolerance"`
	RateBurst         int           `mapstructure:"rate_burst"`
	FeedBuffer        int           `mapstructure:"feed_buffer"`
	PartialEvents     bool          `mapstructure:"partial_events"`
}

func setLogDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}

// SetClientDefaults registers client defaults on v
func SetClientDefaults(v *viper.Viper) {
	setLogDefaults(v)
	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("token", "")
	v.SetDefault("data_dir", ".podsync")
	v.SetDefault("debounce", 30*time.Second)
	v.SetDefault("pull_ttl", 5*time.Minute)
	v.SetDefault("recency_window", 3*time.Second)
	v.SetDefault("network_timeout", 15*time.Second)
	v.SetDefault("zero_guard_min", 1.0)
	v.SetDefault("progress_tolerance", 5.0)
	v.SetDefault("flush_concurrency", 8)
}

// SetServerDefaults registers server defaults on v
func SetServerDefaults(v *viper.Viper) {
	setLogDefaults(v)
	v.SetDefault("addr", ":8080")
	v.SetDefault("db_path", "podsync.db")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", 24*time.Hour)
	v.SetDefault("rate_interval", 600*time.Millisecond)
	v.SetDefault("rate_burst", 20)
	v.SetDefault("feed_buffer", 64)
	v.SetDefault("feed_write_timeout", 5*time.Second)
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("progress_tolerance", 5.0)
	v.SetDefault("partial_events", false)
}

// prepare подключает .env, переменные окружения, файл конфигурации и флаги
func prepare(v *viper.Viper, file string, flags *pflag.FlagSet) error {
	// .env необязателен
	_ = godotenv.Load()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}

	if flags != nil {
		// Флаги называются как ключи, но через дефис: --server-url → server_url,
		// --log-level → log.level
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			if bindErr != nil || f.Name == "config" {
				return
			}
			bindErr = v.BindPFlag(flagKey(f.Name), f)
		})
		if bindErr != nil {
			return fmt.Errorf("failed to bind flags: %w", bindErr)
		}
	}

	return nil
}

func flagKey(name string) string {
	key := strings.ReplaceAll(name, "-", "_")
	if rest, ok := strings.CutPrefix(key, "log_"); ok {
		return "log." + rest
	}
	return key
}

// LoadClient читает настройки клиента. file и flags необязательны.
func LoadClient(v *viper.Viper, file string, flags *pflag.FlagSet) (*Client, error) {
	SetClientDefaults(v)
	if err := prepare(v, file, flags); err != nil {
		return nil, err
	}

	var cfg Client
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode client config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadServer читает настройки сервера. file и flags необязательны.
func LoadServer(v *viper.Viper, file string, flags *pflag.FlagSet) (*Server, error) {
	SetServerDefaults(v)
	if err := prepare(v, file, flags); err != nil {
		return nil, err
	}

	var cfg Server
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode server config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the log settings
func (l Log) Validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", l.Level)
	}
	switch l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", l.Format)
	}
	return nil
}

// Validate checks the client settings
func (c *Client) Validate() error {
	var errs []error

	if err := c.Log.Validate(); err != nil {
		errs = append(errs, err)
	}
	if u, err := url.Parse(c.ServerURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid server_url %q: must be an http(s) URL", c.ServerURL))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce must not be negative, got %s", c.Debounce))
	}
	if c.PullTTL < 0 {
		errs = append(errs, fmt.Errorf("pull_ttl must not be negative, got %s", c.PullTTL))
	}
	if c.RecencyWindow < 0 {
		errs = append(errs, fmt.Errorf("recency_window must not be negative, got %s", c.RecencyWindow))
	}
	if c.NetworkTimeout <= 0 {
		errs = append(errs, fmt.Errorf("network_timeout must be positive, got %s", c.NetworkTimeout))
	}
	if c.ZeroGuardMin < 0 {
		errs = append(errs, fmt.Errorf("zero_guard_min must not be negative, got %v", c.ZeroGuardMin))
	}
	if c.ProgressTolerance < 0 {
		errs = append(errs, fmt.Errorf("progress_tolerance must not be negative, got %v", c.ProgressTolerance))
	}
	if c.FlushConcurrency < 1 {
		errs = append(errs, fmt.Errorf("flush_concurrency must be at least 1, got %d", c.FlushConcurrency))
	}

	return errors.Join(errs...)
}

// Validate checks the server settings
func (s *Server) Validate() error {
	var errs []error

	if err := s.Log.Validate(); err != nil {
		errs = append(errs, err)
	}
	if s.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if s.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if len(s.JWTSecret) < 16 {
		errs = append(errs, errors.New("jwt_secret must be at least 16 characters"))
	}
	if s.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("token_ttl must be positive, got %s", s.TokenTTL))
	}
	if s.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("rate_burst must be at least 1, got %d", s.RateBurst))
	}
	if s.FeedBuffer < 1 {
		errs = append(errs, fmt.Errorf("feed_buffer must be at least 1, got %d", s.FeedBuffer))
	}
	if s.ProgressTolerance < 0 {
		errs = append(errs, fmt.Errorf("progress_tolerance must not be negative, got %v", s.ProgressTolerance))
	}

	return errors.Join(errs...)
}
