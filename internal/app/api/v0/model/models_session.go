package model

import (
	"time"

	"github.com/adralidus/lgl-portal/internal/domain"
)

type Session struct {
	Identifier     string `json:"Identifier"`
	UserIdentifier string `json:"UserIdentifier"`

	LastActivity time.Time `json:"LastActivity"`
	ExpiresAt    time.Time `json:"ExpiresAt"`
	CreatedAt    time.Time `json:"CreatedAt"`

	ClientIP string `json:"ClientIP"`

	// Status is derived from the stored timestamps, it is never stored itself.
	Status string `json:"Status"`
}

func NewSession(src *domain.MonitoredSession) *Session {
	return &Session{
		Identifier:     string(src.Identifier),
		UserIdentifier: string(src.UserIdentifier),
		LastActivity:   src.LastActivity,
		ExpiresAt:      src.ExpiresAt,
		CreatedAt:      src.CreatedAt,
		ClientIP:       src.ClientIP,
		Status:         string(src.Status),
	}
}

func NewSessions(src []domain.MonitoredSession) []Session {
	results := make([]Session, len(src))
	for i := range src {
		results[i] = *NewSession(&src[i])
	}
	return results
}
