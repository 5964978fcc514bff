// Package config handles application config.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ServerConfig holds server-related config.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// AWSConfig holds settings for the AWS SDK.
// Empty values fall back to the SDK's default credential and region chain.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	CognitoEndpoint string
}

// CognitoConfig identifies the user pool and the app client used for authentication.
type CognitoConfig struct {
	UserPoolID string
	ClientID   string
}

// RedisConfig holds connection settings for the verification code store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig holds authentication-related config.
type AuthConfig struct {
	AccessTokenExpiry   time.Duration
	RefreshTokenExpiry  time.Duration
	VerificationCodeTTL time.Duration
	// ExposeVerificationCodes returns codes in API responses. Local development only.
	ExposeVerificationCodes bool
}

// Config holds all application config.
type Config struct {
	Server  ServerConfig
	AWS     AWSConfig
	Cognito CognitoConfig
	Redis   RedisConfig
	Auth    AuthConfig
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

// getEnvInt retrieves an environment variable as an integer or returns a default value.
// If the value cannot be parsed as an int, the default is returned.
func getEnvInt(key string, defaultVal int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultVal
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultVal
	}
	return value
}

// getEnvDuration retrieves an environment variable as a duration or returns a default value.
// The value should be a string parseable by time.ParseDuration (e.g. "30m", "24h" etc.).
// If the value cannot be parsed as a duration, the default is returned.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultVal
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultVal
	}
	return value
}

// getEnvBool retrieves an environment variable as a bool or returns a default value.
func getEnvBool(key string, defaultVal bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return value
}

// load reads every setting from env variables without validating.
func load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     getEnv("API_PORT", "8080"),
			LogLevel: getEnv("APP_LOG_LEVEL", "info"),
		},
		AWS: AWSConfig{
			Region:          os.Getenv("AWS_REGION"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			CognitoEndpoint: os.Getenv("COGNITO_ENDPOINT"),
		},
		Cognito: CognitoConfig{
			UserPoolID: os.Getenv("COGNITO_USER_POOL_ID"),
			ClientID:   os.Getenv("COGNITO_CLIENT_ID"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			AccessTokenExpiry:       getEnvDuration("ACCESS_TOKEN_EXPIRY", time.Hour),
			RefreshTokenExpiry:      getEnvDuration("REFRESH_TOKEN_EXPIRY", 30*24*time.Hour),
			VerificationCodeTTL:     getEnvDuration("VERIFICATION_CODE_TTL", 15*time.Minute),
			ExposeVerificationCodes: getEnvBool("EXPOSE_VERIFICATION_CODES", false),
		},
	}
}

// validateAPI checks the values the API server cannot start without.
func (c *Config) validateAPI() error {
	if c.Cognito.UserPoolID == "" {
		return fmt.Errorf("COGNITO_USER_POOL_ID is required")
	}
	if c.Cognito.ClientID == "" {
		return fmt.Errorf("COGNITO_CLIENT_ID is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}
	if c.Auth.RefreshTokenExpiry <= 0 {
		return fmt.Errorf("REFRESH_TOKEN_EXPIRY must be positive")
	}
	return nil
}

// LoadAPI reads configuration for the API server from env variables.
func LoadAPI() (*Config, error) {
	cfg := load()

	if err := cfg.validateAPI(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadTrigger reads configuration for the Lambda triggers from env variables.
// The user pool comes from each event, so nothing is required.
func LoadTrigger() (*Config, error) {
	return load(), nil
}
