package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DeletePolicy decides what happens when a candidate that already received
// votes is deleted.
type DeletePolicy string

const (
	// DeletePreserve allows the delete and keeps every vote already cast.
	DeletePreserve DeletePolicy = "preserve"
	// DeleteReject refuses to delete candidates that received votes.
	DeleteReject DeletePolicy = "reject"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	TokenTTL      time.Duration
	CORSOrigin    string
	DatabaseURL   string
	DeletePolicy  DeletePolicy
	LogLevel      string
	LogFormat     string
	Redis         RedisConfig
	Kafka         KafkaConfig
}

// RedisConfig configures the optional Redis client used for the cross-instance
// snapshot relay. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	Channel      string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional audit event sink. No brokers disables it.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
	Partitions int32
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("BALLOTBOX_ADDR")
	if addr == "" {
		addr = ":4000"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev_secret"
	}

	policy := DeletePolicy(strings.ToLower(os.Getenv("DELETE_POLICY")))
	if policy != DeleteReject {
		policy = DeletePreserve
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		TokenTTL:      durationEnv("TOKEN_TTL", 24*time.Hour),
		CORSOrigin:    stringEnv("CORS_ORIGIN", "*"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DeletePolicy:  policy,
		LogLevel:      stringEnv("LOG_LEVEL", "info"),
		LogFormat:     stringEnv("LOG_FORMAT", "text"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			Channel:      stringEnv("REDIS_CHANNEL", "ballotbox:registry"),
			PoolSize:     intEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: intEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: stringEnv("KAFKA_AUDIT_TOPIC", "ballotbox.audit"),
			Partitions: int32(intEnv("KAFKA_AUDIT_PARTITIONS", 1)),
		},
	}
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
