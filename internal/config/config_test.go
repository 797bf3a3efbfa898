package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"HTTP_ADDR", "RECORD_BACKEND", "REDIS_ADDR", "KAFKA_BROKERS",
		"PAYMENT_DELAY", "PAYMENT_FAILURE_RATE", "WORKER_COUNT",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, BackendMemory, cfg.RecordBackend)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, time.Second, cfg.PaymentDelay)
	assert.Equal(t, 0.1, cfg.PaymentFailureRate)
	assert.Equal(t, 8, cfg.WorkerCount)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RECORD_BACKEND", "Postgres")
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("PAYMENT_DELAY", "250ms")
	t.Setenv("PAYMENT_FAILURE_RATE", "0.5")
	t.Setenv("WORKER_COUNT", "3")

	cfg := Load()
	assert.Equal(t, BackendPostgres, cfg.RecordBackend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 250*time.Millisecond, cfg.PaymentDelay)
	assert.Equal(t, 0.5, cfg.PaymentFailureRate)
	assert.Equal(t, 3, cfg.WorkerCount)
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("PAYMENT_DELAY", "soon")
	t.Setenv("PAYMENT_FAILURE_RATE", "2")
	t.Setenv("WORKER_COUNT", "-1")

	cfg := Load()
	assert.Equal(t, time.Second, cfg.PaymentDelay)
	assert.Equal(t, 0.1, cfg.PaymentFailureRate)
	assert.Equal(t, 8, cfg.WorkerCount)
}
