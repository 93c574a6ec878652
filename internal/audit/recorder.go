// Package audit persists audit-trail records. Recording is fire-and-forget:
// the insert runs on its own goroutine and a failure is logged, never
// returned, so a broken audit table cannot block order flow.
package audit

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"loyalty-platform/internal/model"
	"loyalty-platform/internal/order"
)

// Recorder writes audit entries to the audit_logs table.
type Recorder struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewRecorder creates a Recorder on the given database handle.
func NewRecorder(db *gorm.DB, log *zap.Logger) *Recorder {
	return &Recorder{db: db, log: log}
}

var _ order.Auditor = (*Recorder)(nil)

// Record inserts the entry asynchronously. The caller's context is not used
// for the insert so a finished request cannot cancel its own audit trail.
func (r *Recorder) Record(ctx context.Context, e order.AuditEntry) {
	entry := &model.AuditLog{
		Level:      e.Level,
		Category:   e.Category,
		Message:    e.Message,
		BusinessID: e.BusinessID,
		CustomerID: e.CustomerID,
		Metadata:   e.Metadata,
	}
	go func() {
		if err := r.db.Create(entry).Error; err != nil {
			r.log.Warn("audit record failed",
				zap.String("category", e.Category),
				zap.String("message", e.Message),
				zap.Error(err))
		}
	}()
}

// Nop is an Auditor that drops every entry; tests use it when the audit
// trail is irrelevant.
type Nop struct{}

func (Nop) Record(ctx context.Context, e order.AuditEntry) {}
