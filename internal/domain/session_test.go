package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_Status(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		session Session
		want    SessionStatus
	}{
		{
			name: "terminated flag dominates recent activity",
			session: Session{
				IsActive:     false,
				LastActivity: now.Add(-1 * time.Minute),
				ExpiresAt:    now.Add(1 * time.Hour),
			},
			want: SessionStatusTerminated,
		},
		{
			name: "expiry checked before idle window",
			session: Session{
				IsActive:     true,
				LastActivity: now.Add(-1 * time.Minute),
				ExpiresAt:    now.Add(-1 * time.Minute),
			},
			want: SessionStatusExpired,
		},
		{
			name: "idle after 45 minutes of inactivity",
			session: Session{
				IsActive:     true,
				LastActivity: now.Add(-45 * time.Minute),
				ExpiresAt:    now.Add(1 * time.Hour),
			},
			want: SessionStatusIdle,
		},
		{
			name: "active otherwise",
			session: Session{
				IsActive:     true,
				LastActivity: now.Add(-1 * time.Minute),
				ExpiresAt:    now.Add(1 * time.Hour),
			},
			want: SessionStatusActive,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.session.Status(now, DefaultSessionIdleTimeout))
		})
	}
}

func TestSession_Status_CustomIdleTimeout(t *testing.T) {
	now := time.Now()
	session := Session{
		IsActive:     true,
		LastActivity: now.Add(-10 * time.Minute),
		ExpiresAt:    now.Add(1 * time.Hour),
	}

	assert.Equal(t, SessionStatusActive, session.Status(now, DefaultSessionIdleTimeout))
	assert.Equal(t, SessionStatusIdle, session.Status(now, 5*time.Minute))

	// non-positive timeout falls back to the default window
	assert.Equal(t, SessionStatusActive, session.Status(now, 0))
}

func TestSession_Elapsed(t *testing.T) {
	now := time.Now()
	session := Session{BaseModel: BaseModel{CreatedAt: now.Add(-2 * time.Hour)}}

	assert.Equal(t, 2*time.Hour, session.Elapsed(now))
}
