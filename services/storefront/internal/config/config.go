package config

import (
	"crypto/rand"
	"os"
	"time"

	pkgconfig "github.com/NunnaRupaSri/terraform-sample/pkg/config"
)

type Config struct {
	ServiceName     string
	Port            int
	APIURL          string
	DatabaseURL     string
	SessionTTL      time.Duration
	VisitorSecret   []byte
	GeneratedSecret bool
	SecureCookies   bool
	KafkaBrokers    []string
	LogLevel        string
}

func Load() *Config {
	secret, generated := visitorSecret()
	return &Config{
		ServiceName:     pkgconfig.EnvDefault("SERVICE_NAME", "storefront"),
		Port:            pkgconfig.EnvIntDefault("SERVER_PORT", 8081),
		APIURL:          pkgconfig.MustEnv("API_URL"),
		DatabaseURL:     pkgconfig.EnvDefault("SESSION_DATABASE_URL", "storefront.db"),
		SessionTTL:      pkgconfig.EnvDurationDefault("SESSION_TTL", 0),
		VisitorSecret:   secret,
		GeneratedSecret: generated,
		SecureCookies:   pkgconfig.EnvBoolDefault("COOKIE_SECURE", false),
		KafkaBrokers:    pkgconfig.CSV(os.Getenv("KAFKA_BROKERS")),
		LogLevel:        pkgconfig.EnvDefault("LOG_LEVEL", "info"),
	}
}

// visitorSecret reads VISITOR_SECRET. Without it a random key is generated, so visitor
// cookies do not survive a restart.
func visitorSecret() ([]byte, bool) {
	if s := os.Getenv("VISITOR_SECRET"); s != "" {
		return []byte(s), false
	}
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return b, true
}
