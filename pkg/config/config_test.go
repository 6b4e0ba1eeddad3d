package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "single", in: "kafka:9092", want: []string{"kafka:9092"}},
		{name: "trims and skips blanks", in: " a:1 , ,b:2,", want: []string{"a:1", "b:2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CSV(tt.in))
		})
	}
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("BAKERY_TEST_STR", "value")
	t.Setenv("BAKERY_TEST_INT", "42")
	t.Setenv("BAKERY_TEST_BAD_INT", "forty")
	t.Setenv("BAKERY_TEST_DUR", "250ms")
	t.Setenv("BAKERY_TEST_BAD_DUR", "-1s")

	assert.Equal(t, "value", EnvDefault("BAKERY_TEST_STR", "def"))
	assert.Equal(t, "def", EnvDefault("BAKERY_TEST_MISSING", "def"))

	assert.Equal(t, 42, EnvIntDefault("BAKERY_TEST_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("BAKERY_TEST_BAD_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("BAKERY_TEST_MISSING", 1))

	assert.Equal(t, 250*time.Millisecond, EnvDurationDefault("BAKERY_TEST_DUR", time.Second))
	assert.Equal(t, time.Second, EnvDurationDefault("BAKERY_TEST_BAD_DUR", time.Second))
}

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite:file.db")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("EVENTS_BROKER", "KAFKA")
	t.Setenv("SERVER_PORT", "")

	cfg := Load()
	assert.Equal(t, "sqlite:file.db", cfg.DatabaseURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "kafka", cfg.EventsBroker)
	assert.Equal(t, 8080, cfg.ServerPort)
}
