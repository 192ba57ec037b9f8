package audit

import (
	"context"

	"github.com/firdaus0729/shoplive/pkg/log"
)

// Audit actions for stream lifecycle changes.
const (
	ActionCreateStream = "stream.create"
	ActionStartStream  = "stream.start"
	ActionStopStream   = "stream.stop"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID string, streamID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(log.FieldStreamID, streamID).
		Msg(msg)
}

// LogWithDetail emits an audit log with an extra detail field.
func LogWithDetail(ctx context.Context, action string, userID string, streamID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(log.FieldStreamID, streamID).
		Str(FieldDetail, detail).
		Msg(msg)
}
