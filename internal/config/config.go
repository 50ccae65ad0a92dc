package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Superuser SuperuserConfig `mapstructure:"superuser"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// RateLimitPerMinute caps requests per client IP on the auth endpoints.
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute" validate:"gte=0"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication settings.
type AuthConfig struct {
	BcryptCost        int `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
	PasswordMinLength int `mapstructure:"password_min_length" validate:"gte=1"`
	PasswordMaxLength int `mapstructure:"password_max_length" validate:"gtefield=PasswordMinLength,lte=72"`
	// SessionTTL bounds how long a token's session entry stays cached.
	SessionTTL time.Duration `mapstructure:"session_ttl" validate:"gt=0"`
}

// RedisConfig configures the optional session cache. An empty URL disables it.
type RedisConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// SuperuserConfig holds the administrator account created on bootstrap.
// Seeding is skipped unless all three values are set.
type SuperuserConfig struct {
	Username string `mapstructure:"username"`
	Email    string `mapstructure:"email" validate:"omitempty,email"`
	Password string `mapstructure:"password"`
}

// Complete reports whether enough superuser settings are present to seed one.
func (s SuperuserConfig) Complete() bool {
	return s.Username != "" && s.Email != "" && s.Password != ""
}
