// Package audit provides security audit logging for executed SQL.
// Events are structured JSON under the "security_audit" logger so they can be
// filtered out of the main log stream.
package audit

import (
	"context"
	"encoding/json"
	"time"

	libinjection "github.com/corazawaf/libinjection-go"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/logging"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventSQLInjectionPattern is logged when libinjection fingerprints an executed statement.
	EventSQLInjectionPattern SecurityEventType = "sql_injection_pattern"
	// EventQueryExecution is logged for every executed statement at debug level.
	EventQueryExecution SecurityEventType = "query_execution"
)

// Statement sources.
const (
	SourceUI        = "ui"
	SourceGenerated = "generated"
	SourceMCP       = "mcp"
	SourceCLI       = "cli"
)

// SecurityEvent is one auditable event.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	SessionID string            `json:"session_id,omitempty"`
	Source    string            `json:"source"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"` // info, warning
}

// InjectionDetails describes a statement that libinjection flagged.
type InjectionDetails struct {
	Statement   string `json:"statement"`
	Fingerprint string `json:"fingerprint"`
	Driver      string `json:"driver"`
}

// Finding is the result of a positive injection check.
type Finding struct {
	Fingerprint string
}

type sessionKey struct{}

// WithSessionID attaches the dashboard session ID to ctx for audit records.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionIDFromContext returns the session ID set by WithSessionID, or "".
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// CheckStatement runs libinjection over sqlText. It returns nil when nothing is detected.
func CheckStatement(sqlText string) *Finding {
	isSQLi, fingerprint := libinjection.IsSQLi(sqlText)
	if !isSQLi {
		return nil
	}
	return &Finding{Fingerprint: string(fingerprint)}
}

// SecurityAuditor logs security events.
// The dashboard runs user SQL unchanged; the auditor only records what it sees.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates a new security auditor with a dedicated logger namespace.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

// AuditStatement records an execution and, when libinjection fingerprints the
// statement, a warning. It never blocks execution. A nil auditor is a no-op.
func (a *SecurityAuditor) AuditStatement(ctx context.Context, source, driver, sqlText string) *Finding {
	if a == nil {
		return nil
	}

	sessionID := SessionIDFromContext(ctx)
	statement := logging.SanitizeQuery(sqlText)

	a.logger.Debug("Statement executed",
		zap.String("event_type", string(EventQueryExecution)),
		zap.String("session_id", sessionID),
		zap.String("source", source),
		zap.String("driver", driver),
		zap.String("statement", statement),
	)

	finding := CheckStatement(sqlText)
	if finding == nil {
		return nil
	}

	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventSQLInjectionPattern,
		SessionID: sessionID,
		Source:    source,
		Details: InjectionDetails{
			Statement:   statement,
			Fingerprint: finding.Fingerprint,
			Driver:      driver,
		},
		Severity: "warning",
	}

	// Marshaling known types cannot fail.
	eventJSON, _ := json.Marshal(event)

	a.logger.Warn("Statement matches SQL injection pattern",
		zap.String("event_json", string(eventJSON)),
		zap.String("session_id", sessionID),
		zap.String("source", source),
		zap.String("fingerprint", finding.Fingerprint),
		zap.String("severity", "warning"),
	)
	return finding
}
