package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotification_Enrich_TypeSeedsPriority(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		typ  NotificationType
		want NotificationPriority
	}{
		{"error is critical", NotificationTypeError, NotificationPriorityCritical},
		{"warning is high", NotificationTypeWarning, NotificationPriorityHigh},
		{"success is low", NotificationTypeSuccess, NotificationPriorityLow},
		{"info is medium", NotificationTypeInfo, NotificationPriorityMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Notification{Title: "maintenance window", Message: "scheduled downtime", Type: tt.typ}
			assert.Equal(t, tt.want, n.Enrich(now).Priority)
		})
	}
}

func TestNotification_Enrich_KeywordEscalationIsMonotone(t *testing.T) {
	now := time.Now()

	// "urgent" raises an info notification to critical
	n := Notification{Title: "urgent maintenance", Message: "", Type: NotificationTypeInfo}
	assert.Equal(t, NotificationPriorityCritical, n.Enrich(now).Priority)

	// "important" never lowers an error notification below its critical baseline
	n = Notification{Title: "important notice", Message: "", Type: NotificationTypeError}
	assert.Equal(t, NotificationPriorityCritical, n.Enrich(now).Priority)

	// keyword scan is case-insensitive over title and message
	n = Notification{Title: "notice", Message: "please pay ATTENTION", Type: NotificationTypeSuccess}
	assert.Equal(t, NotificationPriorityHigh, n.Enrich(now).Priority)
}

func TestNotification_Enrich_ComponentClassification(t *testing.T) {
	now := time.Now()

	n := Notification{Title: "Critical database outage", Message: "", Type: NotificationTypeError}
	e := n.Enrich(now)
	assert.Equal(t, NotificationPriorityCritical, e.Priority)
	assert.Equal(t, ComponentDatabase, e.Component)
	assert.NotEmpty(t, e.ActionItems)

	n = Notification{Title: "backup job finished", Message: "", Type: NotificationTypeSuccess}
	e = n.Enrich(now)
	assert.Equal(t, ComponentBackup, e.Component)
	assert.Equal(t, []string{"Verify backup integrity"}, e.ActionItems)
}

func TestNotification_Enrich_SecurityForcesHighPriority(t *testing.T) {
	now := time.Now()

	n := Notification{Title: "security review done", Message: "", Type: NotificationTypeSuccess}
	e := n.Enrich(now)
	assert.Equal(t, ComponentSecurity, e.Component)
	assert.Equal(t, NotificationPriorityHigh, e.Priority)

	// an already critical record stays critical
	n = Notification{Title: "security breach", Message: "", Type: NotificationTypeError}
	assert.Equal(t, NotificationPriorityCritical, n.Enrich(now).Priority)
}

func TestNotification_Enrich_InquiryPrefixOverridesEverything(t *testing.T) {
	now := time.Now()

	n := Notification{Title: "New Inquiry: urgent database emergency", Message: "critical", Type: NotificationTypeError}
	e := n.Enrich(now)
	assert.Equal(t, NotificationPriorityHigh, e.Priority)
	assert.Equal(t, ComponentContact, e.Component)
	assert.Equal(t, []string{"Review inquiry", "Respond to sender"}, e.ActionItems)
}

func TestNotification_Enrich_IsDeterministic(t *testing.T) {
	now := time.Now()
	n := Notification{Title: "urgent security backup", Message: "database user", Type: NotificationTypeWarning}

	first := n.Enrich(now)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, n.Enrich(now))
	}
}

func TestNotificationTarget_Validate(t *testing.T) {
	assert.NoError(t, SystemTarget().Validate())
	assert.NoError(t, RoleTarget(UserRoleStudent).Validate())
	assert.NoError(t, UserTarget("user1").Validate())

	// more than one populated arm is inconsistent
	assert.Error(t, NotificationTarget{Mode: NotificationTargetSystem, Role: UserRoleAdmin}.Validate())
	assert.Error(t, NotificationTarget{Mode: NotificationTargetRole, Role: UserRoleAdmin, User: "user1"}.Validate())
	assert.Error(t, NotificationTarget{Mode: NotificationTargetUser}.Validate())
	assert.Error(t, NotificationTarget{Mode: "broadcast"}.Validate())
}

func TestNotification_Validate(t *testing.T) {
	n := Notification{
		Identifier: "n1",
		Title:      "hello",
		Type:       NotificationTypeInfo,
		Target:     SystemTarget(),
	}
	assert.NoError(t, n.Validate())

	n.Type = "verbose"
	assert.ErrorIs(t, n.Validate(), ErrInvalidData)

	n.Type = NotificationTypeInfo
	n.Title = ""
	assert.ErrorIs(t, n.Validate(), ErrInvalidData)
}

func TestNotification_IsExpired(t *testing.T) {
	now := time.Now()
	n := Notification{}
	assert.False(t, n.IsExpired(now))

	past := now.Add(-time.Hour)
	n.ExpiresAt = &past
	assert.True(t, n.IsExpired(now))
}
