package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	TokenTTL    time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
	RefreshTTL  time.Duration `mapstructure:"refresh_ttl" yaml:"refresh_ttl"`

	HistoryLimit   int    `mapstructure:"history_limit" yaml:"history_limit"`
	UploadDir      string `mapstructure:"upload_dir" yaml:"upload_dir"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
	PublicBaseURL  string `mapstructure:"public_base_url" yaml:"public_base_url"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "chatroom.db",
		LogLevel:          "info",
		JWTSecret:         "change-me",
		JWTIssuer:         "chatroom",
		JWTAudience:       "chatroom",
		TokenTTL:          7 * 24 * time.Hour,
		RefreshTTL:        30 * 24 * time.Hour,
		HistoryLimit:      50,
		UploadDir:         "uploads",
		MaxUploadBytes:    10 << 20,
		PublicBaseURL:     "http://localhost:8080",
	}
}
