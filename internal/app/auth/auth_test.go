package auth

import (
	"context"
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
	users map[string]*domain.User
}

func (f *fakeUserRepo) GetUser(_ context.Context, id domain.UserIdentifier) (*domain.User, error) {
	for _, u := range f.users {
		if u.Identifier == id {
			cpy := *u
			return &cpy, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cpy := *u
	return &cpy, nil
}

type fakeSessionRepo struct {
	mu    sync.Mutex
	items map[domain.SessionIdentifier]*domain.Session
}

func (f *fakeSessionRepo) GetSession(_ context.Context, id domain.SessionIdentifier) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cpy := *s
	return &cpy, nil
}

func (f *fakeSessionRepo) SaveSession(_ context.Context, id domain.SessionIdentifier,
	updateFunc func(s *domain.Session) (*domain.Session, error),
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.items[id]
	if !ok {
		s = &domain.Session{Identifier: id}
		s.CreatedAt = time.Now()
	}
	updated, err := updateFunc(s)
	if err != nil {
		return err
	}
	f.items[id] = updated
	return nil
}

func testAuthenticator(t *testing.T) (*Authenticator, *fakeSessionRepo) {
	t.Helper()

	user := &domain.User{
		Identifier: "u1",
		Username:   "jdoe",
		Role:       domain.UserRoleAdmin,
		Password:   "secret-password",
	}
	require.NoError(t, user.HashPassword())

	disabledAt := time.Now()
	disabled := &domain.User{
		Identifier: "u2",
		Username:   "locked",
		Role:       domain.UserRoleStudent,
		Password:   user.Password,
		Disabled:   &disabledAt,
	}

	users := &fakeUserRepo{users: map[string]*domain.User{
		"jdoe":   user,
		"locked": disabled,
	}}
	sessions := &fakeSessionRepo{items: make(map[domain.SessionIdentifier]*domain.Session)}

	a, err := NewAuthenticator(&config.Config{}, evbus.New(10), users, sessions)
	require.NoError(t, err)
	return a, sessions
}

func TestAuthenticator_PlainLogin(t *testing.T) {
	a, sessions := testAuthenticator(t)

	user, session, err := a.PlainLogin(t.Context(), "jdoe", "secret-password", "10.1.2.3")
	require.NoError(t, err)
	assert.Equal(t, domain.UserIdentifier("u1"), user.Identifier)
	assert.True(t, session.IsActive)
	assert.Equal(t, "10.1.2.3", session.ClientIP)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	stored, err := sessions.GetSession(t.Context(), session.Identifier)
	require.NoError(t, err)
	assert.Equal(t, domain.UserIdentifier("u1"), stored.UserIdentifier)
}

func TestAuthenticator_LoginFailuresLookIdentical(t *testing.T) {
	a, _ := testAuthenticator(t)

	_, _, errUnknown := a.PlainLogin(t.Context(), "nobody", "secret-password", "")
	_, _, errWrongPw := a.PlainLogin(t.Context(), "jdoe", "wrong", "")
	_, _, errDisabled := a.PlainLogin(t.Context(), "locked", "secret-password", "")
	_, _, errEmpty := a.PlainLogin(t.Context(), "", "", "")

	require.Error(t, errUnknown)
	assert.EqualError(t, errWrongPw, errUnknown.Error())
	assert.EqualError(t, errDisabled, errUnknown.Error())
	assert.EqualError(t, errEmpty, errUnknown.Error())
}

func TestAuthenticator_LogoutClosesSession(t *testing.T) {
	a, sessions := testAuthenticator(t)

	_, session, err := a.PlainLogin(t.Context(), "jdoe", "secret-password", "")
	require.NoError(t, err)

	require.NoError(t, a.Logout(t.Context(), session.Identifier))
	stored, err := sessions.GetSession(t.Context(), session.Identifier)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	// repeated and unknown logouts are no-ops
	require.NoError(t, a.Logout(t.Context(), session.Identifier))
	require.NoError(t, a.Logout(t.Context(), "unknown"))
}

func TestAuthenticator_TouchKeepsSessionAlive(t *testing.T) {
	a, sessions := testAuthenticator(t)

	_, session, err := a.PlainLogin(t.Context(), "jdoe", "secret-password", "")
	require.NoError(t, err)

	before := session.LastActivity
	time.Sleep(5 * time.Millisecond)

	alive, err := a.Touch(t.Context(), session.Identifier)
	require.NoError(t, err)
	assert.True(t, alive)

	stored, err := sessions.GetSession(t.Context(), session.Identifier)
	require.NoError(t, err)
	assert.True(t, stored.LastActivity.After(before))
}

func TestAuthenticator_TouchRejectsTerminatedSession(t *testing.T) {
	a, _ := testAuthenticator(t)

	_, session, err := a.PlainLogin(t.Context(), "jdoe", "secret-password", "")
	require.NoError(t, err)
	require.NoError(t, a.Logout(t.Context(), session.Identifier))

	alive, err := a.Touch(t.Context(), session.Identifier)
	require.NoError(t, err)
	assert.False(t, alive)
}

func TestAuthenticator_IsUserValid(t *testing.T) {
	a, _ := testAuthenticator(t)

	assert.True(t, a.IsUserValid(t.Context(), "u1"))
	assert.False(t, a.IsUserValid(t.Context(), "u2"))
	assert.False(t, a.IsUserValid(t.Context(), "missing"))
}
