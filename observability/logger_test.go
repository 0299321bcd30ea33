package observability_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-vmanage/observability"
)

func TestNoopLogger(t *testing.T) {
	t.Parallel()

	logger := observability.NoopLogger()

	// All methods should execute without panicking
	logger.Debug("test debug")
	logger.Info("test info")
	logger.Warn("test warn")
	logger.Error("test error")

	// With should return a logger
	newLogger := logger.With(observability.Field{Key: "key", Value: "value"})
	require.NotNil(t, newLogger)

	// With'd logger should also work
	newLogger.Info("test with logger")
}

func TestNoopMetricsRecorder(t *testing.T) {
	t.Parallel()

	metrics := observability.NoopMetricsRecorder()

	metrics.RecordHTTPRequest("GET", "/device", 200, time.Millisecond)
	metrics.RecordRateLimit("/device", time.Millisecond)
	metrics.RecordFanout(3, 40)
	metrics.RecordError("login", "ConnectivityError")
}

func TestField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field observability.Field
		key   string
		value any
	}{
		{
			name:  "string value",
			field: observability.Field{Key: "host", Value: "vmanage.local"},
			key:   "host",
			value: "vmanage.local",
		},
		{
			name:  "int value",
			field: observability.Field{Key: "count", Value: 42},
			key:   "count",
			value: 42,
		},
		{
			name:  "bool value",
			field: observability.Field{Key: "reachable", Value: true},
			key:   "reachable",
			value: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.key, tt.field.Key)
			assert.Equal(t, tt.value, tt.field.Value)
		})
	}
}
