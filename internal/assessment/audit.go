package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Grading event types written to the audit log.
const (
	EventAttemptStarted   = "AttemptStarted"
	EventAttemptSubmitted = "AttemptSubmitted"
	EventManualGraded     = "ManualGraded"
	EventRegraded         = "Regraded"
)

// AuditLog records grading events so every score change stays explainable
// after question edits or regrades.
type AuditLog interface {
	Append(ctx context.Context, typ, submissionID string, payload interface{}) error
}

type sqlAuditLog struct{ db *sql.DB }

func NewAuditLog(db *sql.DB) AuditLog { return &sqlAuditLog{db: db} }

func (l *sqlAuditLog) Append(ctx context.Context, typ, submissionID string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte("{}")
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, submissionID, string(data), time.Now().Unix())
	return err
}

type nopAuditLog struct{}

// NopAuditLog discards events; used by tests.
func NopAuditLog() AuditLog { return nopAuditLog{} }

func (nopAuditLog) Append(context.Context, string, string, interface{}) error { return nil }
