package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName string
	LogLevel    string

	ServerPort int

	DatabaseURL string
	RedisAddr   string

	JWTAccessSecret []byte

	EventsBroker string
	KafkaBrokers []string
	AMQPURL      string
	AMQPExchange string
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "fulfillment"),
		LogLevel:    os.Getenv("LOG_LEVEL"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),

		JWTAccessSecret: []byte(os.Getenv("JWT_SECRET")),

		EventsBroker: strings.ToLower(EnvDefault("EVENTS_BROKER", "none")),
		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: EnvDefault("AMQP_EXCHANGE", "fulfillment"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// EnvDurationDefault accepts Go duration strings ("5s", "250ms").
func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
