package audit

import (
	"context"
	"time"

	"github.com/adralidus/lgl-portal/internal/domain"
)

type DatabaseRepo interface {
	// SaveAuditEntry appends an audit entry. Entries are write-once.
	SaveAuditEntry(ctx context.Context, entry *domain.AuditEntry) error
	// GetAllAuditEntries retrieves all audit entries from the database.
	// The entries are ordered by timestamp, with the newest entries first.
	GetAllAuditEntries(ctx context.Context) ([]domain.AuditEntry, error)
	// FindAuditEntries retrieves audit entries, newest first, optionally restricted
	// to a creation time window and an action verb.
	FindAuditEntries(ctx context.Context, since time.Time, action string) ([]domain.AuditEntry, error)
}
