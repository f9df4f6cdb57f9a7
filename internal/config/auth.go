package config

import (
	"sync"
)

var (
	authMu sync.RWMutex

	// AuthPassword is the expected login credential.
	AuthPassword = GetEnvOrDefault("AUTH_PASSWORD", "password")

	// JWTSecret is the secret key used to sign session tokens.
	// In production, this should be loaded from environment variables.
	JWTSecret = []byte(GetEnvOrDefault("JWT_SECRET", "your-256-bit-secret"))
)

// GetAuthPassword returns the expected login credential in a thread-safe manner
func GetAuthPassword() string {
	authMu.RLock()
	defer authMu.RUnlock()
	return AuthPassword
}

// SetAuthPassword temporarily changes the expected credential and returns a
// function to restore it. This is primarily used for testing.
func SetAuthPassword(password string) func() {
	authMu.Lock()
	previous := AuthPassword
	AuthPassword = password
	authMu.Unlock()

	return func() {
		authMu.Lock()
		AuthPassword = previous
		authMu.Unlock()
	}
}

// GetJWTSecret returns the current JWT secret in a thread-safe manner
func GetJWTSecret() []byte {
	authMu.RLock()
	defer authMu.RUnlock()
	return JWTSecret
}

// SetJWTSecret temporarily changes the JWT secret and returns a function to
// restore it. This is primarily used for testing.
func SetJWTSecret(secret []byte) func() {
	authMu.Lock()
	previous := JWTSecret
	JWTSecret = secret
	authMu.Unlock()

	return func() {
		authMu.Lock()
		JWTSecret = previous
		authMu.Unlock()
	}
}
