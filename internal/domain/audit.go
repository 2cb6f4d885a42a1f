package domain

import (
	"encoding/json"
	"time"
)

type AuditSeverityLevel string

const AuditSeverityLevelLow AuditSeverityLevel = "low"
const AuditSeverityLevelMedium AuditSeverityLevel = "medium"
const AuditSeverityLevelHigh AuditSeverityLevel = "high"

// AuditEntry is an immutable record of an administrative action.
// Entries are write-once, there are no update or delete paths.
type AuditEntry struct {
	UniqueId  uint64    `gorm:"primaryKey;autoIncrement:true;column:id"`
	CreatedAt time.Time `gorm:"column:created_at;index:idx_au_created"`

	Severity AuditSeverityLevel `gorm:"column:severity;index:idx_au_severity"`

	ContextUser     string `gorm:"column:context_user;index:idx_au_user"`
	ContextUserRole string `gorm:"column:context_user_role"`

	Action     string `gorm:"column:action;index:idx_au_action"` // verb: create, delete, terminate_all, ...
	EntityType string `gorm:"column:entity_type"`
	EntityId   string `gorm:"column:entity_id"` // optional, empty for bulk actions

	Details string `gorm:"column:details"` // JSON snapshot of what changed
}

// AuditDetails serializes a key/value snapshot for the audit details column.
// Map keys are marshalled in sorted order, so the output is deterministic.
func AuditDetails(details map[string]any) string {
	if len(details) == 0 {
		return "{}"
	}

	raw, err := json.Marshal(details)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
