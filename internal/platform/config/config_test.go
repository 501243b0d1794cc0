package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"DVI_STORE", "DATABASE_URL", "TRACKER_BACKEND", "KAFKA_BROKERS", "DVI_TX_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, StoreMemory, cfg.Database.Store)
	assert.Equal(t, TrackerMemory, cfg.Tracker.Backend)
	assert.Equal(t, 5*time.Second, cfg.Database.TxTimeout)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DVI_STORE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://dvi@localhost/dvi")
	t.Setenv("TRACKER_BACKEND", "postgres")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("DVI_TX_TIMEOUT", "2")
	t.Setenv("DVI_TRACKER_TIMEOUT", "750ms")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.Database.Store)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Second, cfg.Database.TxTimeout)
	assert.Equal(t, 750*time.Millisecond, cfg.Tracker.Timeout)
}

func TestLoad_TrackerFollowsStore(t *testing.T) {
	t.Setenv("DVI_STORE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://dvi@localhost/dvi")
	t.Setenv("TRACKER_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, TrackerPostgres, cfg.Tracker.Backend)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"DVI_STORE": "postgres", "DATABASE_URL": ""}},
		{"unknown store", map[string]string{"DVI_STORE": "mongo"}},
		{"postgres tracker on memory store", map[string]string{"DVI_STORE": "memory", "TRACKER_BACKEND": "postgres"}},
		{"sqlite tracker on postgres store", map[string]string{
			"DVI_STORE": "postgres", "DATABASE_URL": "postgres://dvi@localhost/dvi", "TRACKER_BACKEND": "sqlite",
		}},
		{"bad duration", map[string]string{"DVI_STORE": "memory", "TRACKER_BACKEND": "memory", "DVI_TX_TIMEOUT": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
