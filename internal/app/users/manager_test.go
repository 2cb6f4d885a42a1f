package users

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	evbus "github.com/vardius/message-bus"

	"github.com/adralidus/lgl-portal/internal/config"
	"github.com/adralidus/lgl-portal/internal/domain"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	items map[domain.UserIdentifier]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: make(map[domain.UserIdentifier]*domain.User)}
}

func (f *fakeUserRepo) GetUser(_ context.Context, id domain.UserIdentifier) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cpy := *u
	return &cpy, nil
}

func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.items {
		if u.Username == username {
			cpy := *u
			return &cpy, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.items {
		if u.Email == email {
			cpy := *u
			return &cpy, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetAllUsers(_ context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.User, 0, len(f.items))
	for _, u := range f.items {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) FindUsers(_ context.Context, search string) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.items {
		if strings.Contains(u.Username, search) || strings.Contains(u.Email, search) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) SaveUser(_ context.Context, id domain.UserIdentifier,
	updateFunc func(u *domain.User) (*domain.User, error),
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[id]
	if !ok {
		u = &domain.User{Identifier: id, Role: domain.UserRoleStudent}
	}
	updated, err := updateFunc(u)
	if err != nil {
		return err
	}
	f.items[id] = updated
	return nil
}

func (f *fakeUserRepo) DeleteUser(_ context.Context, id domain.UserIdentifier) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

type fakeTerminator struct {
	mu    sync.Mutex
	calls []domain.UserIdentifier
}

func (f *fakeTerminator) TerminateUserSessions(_ context.Context, id domain.UserIdentifier) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	return 1, nil
}

type recordedAudit struct {
	Action   string
	EntityId string
}

type fakeAuditor struct {
	mu      sync.Mutex
	entries []recordedAudit
}

func (f *fakeAuditor) Record(_ context.Context, _ domain.AuditSeverityLevel,
	action, _, entityId string, _ map[string]any,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, recordedAudit{Action: action, EntityId: entityId})
	return nil
}

func testManager(t *testing.T) (*Manager, *fakeUserRepo, *fakeTerminator, *fakeAuditor) {
	t.Helper()

	repo := newFakeUserRepo()
	terminator := &fakeTerminator{}
	auditor := &fakeAuditor{}
	mgr, err := NewManager(&config.Config{}, evbus.New(10), repo, terminator, auditor)
	require.NoError(t, err)
	return mgr, repo, terminator, auditor
}

func superAdminCtx(t *testing.T) context.Context {
	t.Helper()
	return domain.SetUserInfo(t.Context(), &domain.ContextUserInfo{
		Id:   "root@test",
		Role: domain.UserRoleSuperAdmin,
	})
}

func adminCtx(t *testing.T) context.Context {
	t.Helper()
	return domain.SetUserInfo(t.Context(), &domain.ContextUserInfo{
		Id:   "admin@test",
		Role: domain.UserRoleAdmin,
	})
}

func sampleUser(id, username string) *domain.User {
	return &domain.User{
		Identifier: domain.UserIdentifier(id),
		Username:   username,
		Email:      username + "@example.com",
		Role:       domain.UserRoleStudent,
		Password:   "secret-password",
	}
}

func TestManager_CreateHashesPasswordAndAudits(t *testing.T) {
	mgr, repo, _, auditor := testManager(t)

	created, err := mgr.Create(superAdminCtx(t), sampleUser("u1", "jdoe"))
	require.NoError(t, err)
	assert.NotEqual(t, domain.PrivateString("secret-password"), created.Password)

	stored, err := repo.GetUser(t.Context(), "u1")
	require.NoError(t, err)
	require.NoError(t, stored.CheckPassword("secret-password"))

	require.Len(t, auditor.entries, 1)
	assert.Equal(t, "create", auditor.entries[0].Action)
	assert.Equal(t, "u1", auditor.entries[0].EntityId)
}

func TestManager_CreateRequiresSuperAdmin(t *testing.T) {
	mgr, _, _, _ := testManager(t)

	_, err := mgr.Create(adminCtx(t), sampleUser("u1", "jdoe"))
	assert.ErrorIs(t, err, domain.ErrNoPermission)
}

func TestManager_CreateRejectsDuplicates(t *testing.T) {
	mgr, _, _, _ := testManager(t)
	ctx := superAdminCtx(t)

	_, err := mgr.Create(ctx, sampleUser("u1", "jdoe"))
	require.NoError(t, err)

	_, err = mgr.Create(ctx, sampleUser("u1", "other"))
	assert.ErrorIs(t, err, domain.ErrDuplicateEntry)

	_, err = mgr.Create(ctx, sampleUser("u2", "jdoe"))
	assert.ErrorIs(t, err, domain.ErrDuplicateEntry)

	dupMail := sampleUser("u3", "someone")
	dupMail.Email = "jdoe@example.com"
	_, err = mgr.Create(ctx, dupMail)
	assert.ErrorIs(t, err, domain.ErrDuplicateEntry)
}

func TestManager_UpdateKeepsPasswordIfUnchanged(t *testing.T) {
	mgr, repo, _, _ := testManager(t)
	ctx := superAdminCtx(t)

	created, err := mgr.Create(ctx, sampleUser("u1", "jdoe"))
	require.NoError(t, err)
	oldHash := created.Password

	update := *created
	update.Firstname = "Jane"
	update.Password = "" // no password change intended
	_, err = mgr.Update(ctx, &update)
	require.NoError(t, err)

	stored, err := repo.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, oldHash, stored.Password)
	assert.Equal(t, "Jane", stored.Firstname)
	require.NoError(t, stored.CheckPassword("secret-password"))
}

func TestManager_DisablingUserTerminatesSessions(t *testing.T) {
	mgr, _, terminator, _ := testManager(t)
	ctx := superAdminCtx(t)

	created, err := mgr.Create(ctx, sampleUser("u1", "jdoe"))
	require.NoError(t, err)
	require.Empty(t, terminator.calls)

	now := time.Now()
	update := *created
	update.Disabled = &now
	update.DisabledReason = domain.DisabledReasonAdminEdit
	_, err = mgr.Update(ctx, &update)
	require.NoError(t, err)

	require.Len(t, terminator.calls, 1)
	assert.Equal(t, domain.UserIdentifier("u1"), terminator.calls[0])
}

func TestManager_DeleteTerminatesSessionsAndAudits(t *testing.T) {
	mgr, repo, terminator, auditor := testManager(t)
	ctx := superAdminCtx(t)

	_, err := mgr.Create(ctx, sampleUser("u1", "jdoe"))
	require.NoError(t, err)

	require.NoError(t, mgr.Delete(ctx, "u1"))

	_, err = repo.GetUser(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, []domain.UserIdentifier{"u1"}, terminator.calls)

	var actions []string
	for _, e := range auditor.entries {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, "delete")
}

func TestManager_DeleteMissingUserFails(t *testing.T) {
	mgr, _, _, _ := testManager(t)

	err := mgr.Delete(superAdminCtx(t), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestManager_StartupCheckCreatesDefaultAdmin(t *testing.T) {
	repo := newFakeUserRepo()
	cfg := &config.Config{}
	cfg.Core.AdminUser = "admin@lgl.local"
	cfg.Core.AdminPassword = "changeme"
	cfg.Core.AdminEmail = "admin@lgl.local"

	mgr, err := NewManager(cfg, evbus.New(10), repo, &fakeTerminator{}, &fakeAuditor{})
	require.NoError(t, err)

	bootCtx := domain.SetUserInfo(t.Context(), domain.SystemAdminContextUserInfo())
	require.NoError(t, mgr.StartupCheck(bootCtx))

	admin, err := repo.GetUserByUsername(bootCtx, "admin@lgl.local")
	require.NoError(t, err)
	assert.Equal(t, domain.UserRoleSuperAdmin, admin.Role)
	require.NoError(t, admin.CheckPassword("changeme"))

	// a second run must not recreate or overwrite the account
	require.NoError(t, mgr.StartupCheck(bootCtx))
}
