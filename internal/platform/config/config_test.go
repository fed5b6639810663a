package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{"BALLOTBOX_ADDR", "JWT_SIGNING_KEY", "TOKEN_TTL", "DELETE_POLICY", "KAFKA_BROKERS", "REDIS_URL", "DATABASE_URL"} {
			t.Setenv(key, "")
		}
		cfg := FromEnv()
		assert.Equal(t, ":4000", cfg.Addr)
		assert.Equal(t, "dev_secret", cfg.JWTSigningKey)
		assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
		assert.Equal(t, DeletePreserve, cfg.DeletePolicy)
		assert.Empty(t, cfg.Kafka.Brokers)
		assert.Equal(t, "ballotbox:registry", cfg.Redis.Channel)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("BALLOTBOX_ADDR", ":9090")
		t.Setenv("TOKEN_TTL", "1h")
		t.Setenv("DELETE_POLICY", "REJECT")
		t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
		cfg := FromEnv()
		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, time.Hour, cfg.TokenTTL)
		assert.Equal(t, DeleteReject, cfg.DeletePolicy)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	})

	t.Run("unknown delete policy falls back to preserve", func(t *testing.T) {
		t.Setenv("DELETE_POLICY", "shred")
		assert.Equal(t, DeletePreserve, FromEnv().DeletePolicy)
	})
}
