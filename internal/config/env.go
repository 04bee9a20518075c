package config

import (
	"os"
	"strconv"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TokenKey string
}

func GetRedisConfig() RedisConfig {
	db := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsed, err := strconv.Atoi(dbStr); err == nil {
			db = parsed
		}
	}

	return RedisConfig{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
		TokenKey: getEnv("REDIS_TOKEN_KEY", "agroscan:imagery_token"),
	}
}

// ImageryCredentials are the OAuth client credentials of the imagery provider
type ImageryCredentials struct {
	ClientID     string
	ClientSecret string
}

// Complete reports whether both halves of the credentials are set
func (c ImageryCredentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

func GetImageryCredentials() ImageryCredentials {
	return ImageryCredentials{
		ClientID:     os.Getenv("SH_CLIENT_ID"),
		ClientSecret: os.Getenv("SH_CLIENT_SECRET"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
