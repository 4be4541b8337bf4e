package config

import (
	"log"
	"os"
	"sync"
	"time"
)

type JWTConfig struct {
	AccessSecret    []byte
	RefreshSecret   []byte
	ResetSecret     []byte
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ResetTokenTTL   time.Duration
}

var (
	jwtConfig JWTConfig
	jwtOnce   sync.Once
)

func LoadJWTConfig() JWTConfig {
	jwtOnce.Do(func() {
		LoadEnv()

		access := os.Getenv("JWT_SECRET")
		if access == "" {
			log.Fatal("JWT_SECRET environment variable is not set")
		}

		refresh := os.Getenv("JWT_REFRESH_SECRET")
		if refresh == "" {
			log.Fatal("JWT_REFRESH_SECRET environment variable is not set")
		}

		reset := os.Getenv("JWT_RESET_SECRET")
		if reset == "" {
			log.Fatal("JWT_RESET_SECRET environment variable is not set")
		}

		issuer := os.Getenv("JWT_ISSUER")
		if issuer == "" {
			issuer = "man-app"
		}

		jwtConfig = JWTConfig{
			AccessSecret:    []byte(access),
			RefreshSecret:   []byte(refresh),
			ResetSecret:     []byte(reset),
			Issuer:          issuer,
			AccessTokenTTL:  durationEnv("JWT_ACCESS_TTL", 15*time.Minute),
			RefreshTokenTTL: durationEnv("JWT_REFRESH_TTL", 7*24*time.Hour),
			ResetTokenTTL:   durationEnv("JWT_RESET_TTL", 15*time.Minute),
		}
	})

	return jwtConfig
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("invalid %s value %q, using default %s", key, raw, fallback)
		return fallback
	}
	return parsed
}
