package reconciliation

import (
	"context"
	"time"

	"forecast-recon/feature/reconciliation/models"

	"go.uber.org/zap"
)

// AuditEvent describes one human override.
type AuditEvent struct {
	Action   string            `json:"action"`
	Actor    string            `json:"actor"`
	Kind     models.RecordKind `json:"kind"`
	IDs      []uint            `json:"ids"`
	GLID     uint              `json:"gl_id,omitempty"`
	Reason   *string           `json:"reason,omitempty"`
	Occurred time.Time         `json:"occurred"`
}

// Auditor records override events after they commit.
type Auditor interface {
	Record(ctx context.Context, event AuditEvent)
}

// LogAuditor writes audit events to a zap logger.
type LogAuditor struct {
	logger *zap.Logger
}

// NewLogAuditor creates an auditor on logger.
func NewLogAuditor(logger *zap.Logger) *LogAuditor {
	return &LogAuditor{logger: logger.Named("audit")}
}

// Record logs the event at info level.
func (a *LogAuditor) Record(_ context.Context, event AuditEvent) {
	fields := []zap.Field{
		zap.String("action", event.Action),
		zap.String("actor", event.Actor),
		zap.String("kind", string(event.Kind)),
		zap.Uints("ids", event.IDs),
		zap.Time("occurred", event.Occurred),
	}
	if event.GLID != 0 {
		fields = append(fields, zap.Uint("gl_id", event.GLID))
	}
	if event.Reason != nil {
		fields = append(fields, zap.String("reason", *event.Reason))
	}
	a.logger.Info("Reconciliation override", fields...)
}
