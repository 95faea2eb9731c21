package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs(t *testing.T) {
	got := sanitizeKVs([]interface{}{"plan_id", "p1", "password", "hunter2", "Auth_Token", "abc", "dangling"})
	assert.Equal(t, []interface{}{"plan_id", "p1", "password", "[REDACTED]", "Auth_Token", "[REDACTED]", "dangling"}, got)
}

func TestLoggerRedactsFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("run_id", "r1").Info("import committed", "jwt_secret", "s", "created_items", 3)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "r1", fields["run_id"])
		assert.Equal(t, "[REDACTED]", fields["jwt_secret"])
		assert.EqualValues(t, 3, fields["created_items"])
	}
}
