package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	evbus "github.com/vardius/message-bus"

	"github.com/adralidus/lgl-portal/internal/domain"
)

type fakeAuditRepo struct {
	entries []domain.AuditEntry
	saveErr error
}

func (f *fakeAuditRepo) SaveAuditEntry(_ context.Context, entry *domain.AuditEntry) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) GetAllAuditEntries(_ context.Context) ([]domain.AuditEntry, error) {
	return f.entries, nil
}

func (f *fakeAuditRepo) FindAuditEntries(_ context.Context, since time.Time, action string) (
	[]domain.AuditEntry,
	error,
) {
	var result []domain.AuditEntry
	for _, e := range f.entries {
		if !since.IsZero() && e.CreatedAt.Before(since) {
			continue
		}
		if action != "" && e.Action != action {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

func adminCtx(t *testing.T) context.Context {
	return domain.SetUserInfo(t.Context(), &domain.ContextUserInfo{Id: "boss", Role: domain.UserRoleAdmin})
}

func TestManager_Record(t *testing.T) {
	repo := &fakeAuditRepo{}
	m, err := NewManager(evbus.New(10), repo)
	require.NoError(t, err)

	err = m.Record(adminCtx(t), domain.AuditSeverityLevelHigh, "delete", "notification", "n1",
		map[string]any{"count": 1})
	require.NoError(t, err)

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	assert.Equal(t, "boss", entry.ContextUser)
	assert.Equal(t, string(domain.UserRoleAdmin), entry.ContextUserRole)
	assert.Equal(t, "delete", entry.Action)
	assert.Equal(t, "notification", entry.EntityType)
	assert.Equal(t, "n1", entry.EntityId)
	assert.Equal(t, `{"count":1}`, entry.Details)
}

func TestManager_RecordSurfacesWriteFailure(t *testing.T) {
	repo := &fakeAuditRepo{saveErr: errors.New("disk full")}
	m, err := NewManager(evbus.New(10), repo)
	require.NoError(t, err)

	err = m.Record(adminCtx(t), domain.AuditSeverityLevelLow, "create", "user", "u1", nil)
	assert.Error(t, err)
}

func TestManager_GetAllRequiresAdmin(t *testing.T) {
	repo := &fakeAuditRepo{}
	m, err := NewManager(evbus.New(10), repo)
	require.NoError(t, err)

	_, err = m.GetAll(t.Context())
	assert.ErrorIs(t, err, domain.ErrNoPermission)

	_, err = m.GetAll(adminCtx(t))
	assert.NoError(t, err)
}

func TestManager_QueryFilters(t *testing.T) {
	now := time.Now()
	repo := &fakeAuditRepo{entries: []domain.AuditEntry{
		{CreatedAt: now.Add(-2 * time.Hour), Action: "create"},
		{CreatedAt: now.Add(-10 * time.Minute), Action: "delete"},
		{CreatedAt: now.Add(-5 * time.Minute), Action: "create"},
	}}
	m, err := NewManager(evbus.New(10), repo)
	require.NoError(t, err)

	entries, err := m.Query(adminCtx(t), time.Hour, "")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = m.Query(adminCtx(t), 0, "create")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = m.Query(adminCtx(t), time.Hour, "delete")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
