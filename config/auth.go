package config

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type AuthConfig struct {
	BcryptCost        int
	MinPasswordLength int
	ResetCodeTTL      time.Duration
}

var (
	authConfig AuthConfig
	authOnce   sync.Once
)

func LoadAuthConfig() AuthConfig {
	authOnce.Do(func() {
		LoadEnv()

		cost := bcrypt.DefaultCost
		if raw := os.Getenv("BCRYPT_COST"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < bcrypt.MinCost || parsed > bcrypt.MaxCost {
				log.Printf("invalid BCRYPT_COST value %q, using default %d", raw, cost)
			} else {
				cost = parsed
			}
		}

		minLen := 6
		if raw := os.Getenv("MIN_PASSWORD_LENGTH"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				minLen = parsed
			}
		}

		authConfig = AuthConfig{
			BcryptCost:        cost,
			MinPasswordLength: minLen,
			ResetCodeTTL:      durationEnv("RESET_CODE_TTL", 10*time.Minute),
		}
	})

	return authConfig
}
