package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("API_URL", "http://api.local")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SESSION_TTL", "12h")
	t.Setenv("VISITOR_SECRET", "s3cret")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("SESSION_DATABASE_URL", "")

	cfg := Load()
	assert.Equal(t, "storefront", cfg.ServiceName)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "http://api.local", cfg.APIURL)
	assert.Equal(t, "storefront.db", cfg.DatabaseURL)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []byte("s3cret"), cfg.VisitorSecret)
	assert.False(t, cfg.GeneratedSecret)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.SecureCookies)
}

func TestLoad_GeneratesVisitorSecret(t *testing.T) {
	t.Setenv("API_URL", "http://api.local")
	t.Setenv("VISITOR_SECRET", "")

	a, b := Load(), Load()
	assert.True(t, a.GeneratedSecret)
	assert.Len(t, a.VisitorSecret, 32)
	assert.NotEqual(t, a.VisitorSecret, b.VisitorSecret)
}
