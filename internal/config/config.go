// Package config loads environment-style configuration for the
// control-panel server. Presence of a password or password hash decides
// whether request authentication is enforced at all.
package config

import "os"

const (
	passwordEnvVar     = "GATEHOUSE_PASSWORD"
	passwordHashEnvVar = "GATEHOUSE_PASSWORD_HASH"
	trustedProxyEnvVar = "GATEHOUSE_TRUSTED_PROXY"
	envEnvVar          = "GATEHOUSE_ENV"
)

// EnvProduction marks a production-like deployment: cookies are marked
// Secure and surfaced error text is replaced with a generic message.
const EnvProduction = "production"

// Config holds the security-relevant settings read from the environment.
type Config struct {
	// Password is the plaintext operator password. Ignored when
	// PasswordHash is set.
	Password string
	// PasswordHash is a "salt:iterations:hex-hash" PBKDF2 descriptor.
	// Takes precedence over Password when both are set.
	PasswordHash string
	// TrustedProxy is the address of the reverse proxy in front of the
	// service. Forwarded headers are only honored when this is set.
	TrustedProxy string
	// Env names the deployment environment ("production" or anything else).
	Env string
}

// FromEnv reads the configuration from process environment variables.
func FromEnv() Config {
	return Config{
		Password:     os.Getenv(passwordEnvVar),
		PasswordHash: os.Getenv(passwordHashEnvVar),
		TrustedProxy: os.Getenv(trustedProxyEnvVar),
		Env:          GetEnv(envEnvVar, "development"),
	}
}

// IsProduction reports whether the deployment is production-like.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
