package config

import (
	"github.com/rs/zerolog/log"
)

// GetRedisURL returns the Redis address, or "" when Redis is not configured.
func GetRedisURL() string {
	value := GetEnvOrDefault("REDIS_URL", "")
	if value == "" {
		log.Debug().Msg("Redis URL not set - falling back to in-memory stores")
	}
	return value
}

// GetRedisPassword returns the Redis password, empty for unauthenticated instances.
func GetRedisPassword() string {
	return GetEnvOrDefault("REDIS_PASSWORD", "")
}
