package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Supported database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// Config holds application configuration
type Config struct {
	// データベース接続設定
	DBDriver   string `envconfig:"DB_DRIVER" default:"mysql"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"3306"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"dmrelay.db"`

	// サーバー設定
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`
	Env        string `envconfig:"ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"INFO"`

	// CORS設定
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://127.0.0.1:3000"`

	// 認証
	JWTSecret         string        `envconfig:"JWT_SECRET"`
	TokenTTL          time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	RequireLoginToken bool          `envconfig:"REQUIRE_LOGIN_TOKEN" default:"true"`
	BcryptCost        int           `envconfig:"BCRYPT_COST" default:"10"`
	MinPasswordBits   float64       `envconfig:"MIN_PASSWORD_BITS" default:"50"`

	// リレー
	StoreTimeout  time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`
	MaxFrameBytes int64         `envconfig:"MAX_FRAME_BYTES" default:"8388608"`
	SendBuffer    int           `envconfig:"SEND_BUFFER" default:"64"`
	WriteTimeout  time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s"`
	PongTimeout   time.Duration `envconfig:"PONG_TIMEOUT" default:"60s"`
}

// IsDevelopment reports whether the server runs in the development environment.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}

	origins := make([]string, 0, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	cfg.AllowedOrigins = origins

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that have no safe fallback.
func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" && !c.IsDevelopment() {
		return errors.New("JWT_SECRET is required outside development")
	}
	if c.StoreTimeout <= 0 || c.WriteTimeout <= 0 || c.PongTimeout <= 0 || c.TokenTTL <= 0 {
		return errors.New("timeouts must be positive")
	}
	if c.SendBuffer <= 0 {
		return errors.New("SEND_BUFFER must be positive")
	}
	if c.MaxFrameBytes <= 0 {
		return errors.New("MAX_FRAME_BYTES must be positive")
	}
	return nil
}
