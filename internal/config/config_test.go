package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "10s", cfg.ShutdownTimeout.String())
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes)
	assert.Empty(t, cfg.SitesFile)
	assert.Equal(t, 100.0, cfg.VerifiedRadiusM)
	assert.Equal(t, 300.0, cfg.ReviewRadiusM)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("SITES_FILE", "/data/sites.csv")
	t.Setenv("FENCE_VERIFIED_M", "50")
	t.Setenv("FENCE_REVIEW_M", "200")
	t.Setenv("KAFKA_SINK_TOPIC", "attendance.classified")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "30s", cfg.ShutdownTimeout.String())
	assert.Equal(t, int64(1048576), cfg.MaxUploadBytes)
	assert.Equal(t, "/data/sites.csv", cfg.SitesFile)
	assert.Equal(t, 50.0, cfg.VerifiedRadiusM)
	assert.Equal(t, 200.0, cfg.ReviewRadiusM)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, "attendance.classified", cfg.KafkaSinkTopic)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_SinkTopicEnablesKafka(t *testing.T) {
	t.Setenv("KAFKA_SINK_TOPIC", "attendance.classified")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.KafkaEnabled)
}

func TestLoad_KafkaEnabledOverride(t *testing.T) {
	t.Setenv("KAFKA_SINK_TOPIC", "attendance.classified")
	t.Setenv("KAFKA_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "negative verified radius",
			env:  map[string]string{"FENCE_VERIFIED_M": "-10"},
		},
		{
			name: "zero review radius",
			env:  map[string]string{"FENCE_REVIEW_M": "0"},
		},
		{
			name: "verified radius exceeds review radius",
			env:  map[string]string{"FENCE_VERIFIED_M": "500"},
		},
		{
			name: "non-numeric radius",
			env:  map[string]string{"FENCE_VERIFIED_M": "close"},
		},
		{
			name: "bad shutdown timeout",
			env:  map[string]string{"SHUTDOWN_TIMEOUT": "soon"},
		},
		{
			name: "bad upload cap",
			env:  map[string]string{"MAX_UPLOAD_BYTES": "-1"},
		},
		{
			name: "kafka enabled without topic",
			env:  map[string]string{"KAFKA_ENABLED": "true"},
		},
		{
			name: "kafka topic without brokers",
			env: map[string]string{
				"KAFKA_SINK_TOPIC": "attendance.classified",
				"KAFKA_BROKERS":    " , ",
			},
		},
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
