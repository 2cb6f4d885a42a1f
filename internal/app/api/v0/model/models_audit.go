package model

import (
	"time"

	"github.com/adralidus/lgl-portal/internal/domain"
)

type AuditEntry struct {
	Id        uint64    `json:"Id"`
	Timestamp time.Time `json:"Timestamp"`
	Severity  string    `json:"Severity"`

	ContextUser     string `json:"ContextUser"`
	ContextUserRole string `json:"ContextUserRole"`

	Action     string `json:"Action"`
	EntityType string `json:"EntityType"`
	EntityId   string `json:"EntityId,omitempty"`

	Details string `json:"Details"`
}

func NewAuditEntry(src *domain.AuditEntry) *AuditEntry {
	return &AuditEntry{
		Id:              src.UniqueId,
		Timestamp:       src.CreatedAt,
		Severity:        string(src.Severity),
		ContextUser:     src.ContextUser,
		ContextUserRole: src.ContextUserRole,
		Action:          src.Action,
		EntityType:      src.EntityType,
		EntityId:        src.EntityId,
		Details:         src.Details,
	}
}

func NewAuditEntries(src []domain.AuditEntry) []AuditEntry {
	results := make([]AuditEntry, len(src))
	for i := range src {
		results[i] = *NewAuditEntry(&src[i])
	}
	return results
}
