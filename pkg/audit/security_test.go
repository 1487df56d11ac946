package audit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// setupTestLogger creates a test logger with an observer to capture log entries.
func setupTestLogger(t *testing.T) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, recorded := observer.New(zapcore.DebugLevel)
	return zap.New(core), recorded
}

func TestCheckStatement(t *testing.T) {
	assert.NotNil(t, CheckStatement("1' OR '1'='1"))
	assert.Nil(t, CheckStatement("hello world"))
}

func TestSessionIDContext(t *testing.T) {
	ctx := WithSessionID(context.Background(), "abc")
	assert.Equal(t, "abc", SessionIDFromContext(ctx))
	assert.Empty(t, SessionIDFromContext(context.Background()))
}

func TestAuditStatement_InjectionPattern(t *testing.T) {
	logger, recorded := setupTestLogger(t)
	auditor := NewSecurityAuditor(logger)
	ctx := WithSessionID(context.Background(), "session-1")

	finding := auditor.AuditStatement(ctx, SourceUI, "postgres", "1' OR '1'='1")
	require.NotNil(t, finding)
	assert.NotEmpty(t, finding.Fingerprint)

	warns := recorded.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warns, 1)
	assert.Equal(t, "security_audit", warns[0].LoggerName)
	fields := warns[0].ContextMap()
	assert.Equal(t, "session-1", fields["session_id"])
	assert.Equal(t, SourceUI, fields["source"])

	var event SecurityEvent
	require.NoError(t, json.Unmarshal([]byte(fields["event_json"].(string)), &event))
	assert.Equal(t, EventSQLInjectionPattern, event.EventType)
	assert.Equal(t, "warning", event.Severity)
}

func TestAuditStatement_Clean(t *testing.T) {
	logger, recorded := setupTestLogger(t)
	auditor := NewSecurityAuditor(logger)

	assert.Nil(t, auditor.AuditStatement(context.Background(), SourceCLI, "sqlite", "hello world"))
	assert.Zero(t, recorded.FilterLevelExact(zapcore.WarnLevel).Len())
	assert.Equal(t, 1, recorded.FilterMessage("Statement executed").Len())
}

func TestAuditStatement_NilAuditor(t *testing.T) {
	var auditor *SecurityAuditor
	assert.Nil(t, auditor.AuditStatement(context.Background(), SourceUI, "postgres", "1' OR '1'='1"))
}
