package logger_test

import (
	"net/http/httptest"
	"taskCalendar/internal/logger"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit_Levels(t *testing.T) {
	t.Cleanup(func() { logger.Logger = zap.NewNop() })

	require.NoError(t, logger.Init(false, "warn"))
	assert.False(t, logger.Logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Logger.Core().Enabled(zapcore.WarnLevel))

	require.NoError(t, logger.Init(true, ""))
	assert.True(t, logger.Logger.Core().Enabled(zapcore.InfoLevel))

	assert.Error(t, logger.Init(false, "verbose"))
}

func TestHttpRequestInfo_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Logger = zap.New(core)
	t.Cleanup(func() { logger.Logger = zap.NewNop() })

	req := httptest.NewRequest("GET", "/api/tasks?date=2024-03-05", nil)
	logger.HttpRequestInfo(req, "HTTP_IN:", zap.String("extra", "1"))
	logger.Error("Service: сбой", nil)

	entries := logs.All()
	require.Len(t, entries, 2)

	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/api/tasks", fields["path"])
	assert.Equal(t, "date=2024-03-05", fields["query"])
	assert.Equal(t, "1", fields["extra"])

	assert.NotContains(t, entries[1].ContextMap(), "error")
}
