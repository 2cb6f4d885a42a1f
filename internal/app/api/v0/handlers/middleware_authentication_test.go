package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adralidus/lgl-portal/internal/domain"
)

type fakeSession struct {
	data      SessionData
	destroyed bool
}

func (f *fakeSession) SetData(_ context.Context, val SessionData) { f.data = val }
func (f *fakeSession) GetData(_ context.Context) SessionData      { return f.data }
func (f *fakeSession) DestroyData(_ context.Context)              { f.destroyed = true }

type fakeUserValidator struct {
	valid bool
}

func (f *fakeUserValidator) IsUserValid(context.Context, domain.UserIdentifier) bool {
	return f.valid
}

func TestUserHasScopes(t *testing.T) {
	admin := SessionData{LoggedIn: true, IsAdmin: true}
	superAdmin := SessionData{LoggedIn: true, IsAdmin: true, IsSuperAdmin: true}
	student := SessionData{LoggedIn: true}

	assert.True(t, UserHasScopes(student))
	assert.True(t, UserHasScopes(student, ScopeUser))
	assert.False(t, UserHasScopes(student, ScopeAdmin))
	assert.False(t, UserHasScopes(student, ScopeSuperAdmin))

	assert.True(t, UserHasScopes(admin, ScopeAdmin))
	assert.False(t, UserHasScopes(admin, ScopeSuperAdmin))

	assert.True(t, UserHasScopes(superAdmin, ScopeAdmin))
	assert.True(t, UserHasScopes(superAdmin, ScopeSuperAdmin))
}

func TestLoggedIn_RejectsAnonymous(t *testing.T) {
	h := NewAuthenticationHandler(&fakeUserValidator{valid: true}, &fakeSession{})

	var called bool
	handler := h.LoggedIn()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestLoggedIn_RejectsMissingScope(t *testing.T) {
	session := &fakeSession{data: SessionData{LoggedIn: true, UserIdentifier: "u1"}}
	h := NewAuthenticationHandler(&fakeUserValidator{valid: true}, session)

	handler := h.LoggedIn(ScopeAdmin)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLoggedIn_DestroysSessionOfRemovedUser(t *testing.T) {
	session := &fakeSession{data: SessionData{LoggedIn: true, IsAdmin: true, UserIdentifier: "u1"}}
	h := NewAuthenticationHandler(&fakeUserValidator{valid: false}, session)

	handler := h.LoggedIn(ScopeAdmin)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, session.destroyed)
}

func TestLoggedIn_SetsContextUserInfo(t *testing.T) {
	session := &fakeSession{data: SessionData{
		LoggedIn:       true,
		IsAdmin:        true,
		IsSuperAdmin:   true,
		UserIdentifier: "u1",
	}}
	h := NewAuthenticationHandler(&fakeUserValidator{valid: true}, session)

	var info *domain.ContextUserInfo
	handler := h.LoggedIn(ScopeSuperAdmin)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		info = domain.GetUserInfo(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.UserIdentifier("u1"), info.Id)
	assert.Equal(t, domain.UserRoleSuperAdmin, info.Role)
}
