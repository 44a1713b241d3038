package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSet_RoutesPackageFunctions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	previous := Logger
	Set(zap.New(core))
	t.Cleanup(func() { Set(previous) })

	Info("car listed", zap.String("event", "car_listed"))
	WithRequestID("req-1").Warn("slow request")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "car listed", entries[0].Message)
		assert.Equal(t, "car_listed", entries[0].ContextMap()["event"])
		assert.Equal(t, "req-1", entries[1].ContextMap()["request_id"])
	}
}

func TestInit(t *testing.T) {
	previous := Logger
	t.Cleanup(func() { Set(previous) })

	assert.NoError(t, Init("production"))
	assert.NotNil(t, Logger)
	assert.NoError(t, Init("development"))
}
