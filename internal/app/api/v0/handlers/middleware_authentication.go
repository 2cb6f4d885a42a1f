package handlers

import (
	"context"
	"net/http"

	"github.com/adralidus/lgl-portal/internal/app/api/core/respond"
	"github.com/adralidus/lgl-portal/internal/app/api/v0/model"
	"github.com/adralidus/lgl-portal/internal/domain"
)

type Scope string

const (
	// ScopeAdmin grants access to the oversight console.
	ScopeAdmin Scope = "ADMIN"
	// ScopeSuperAdmin grants access to platform-wide destructive actions.
	ScopeSuperAdmin Scope = "SUPER_ADMIN"
	// ScopeUser only requires a valid login.
	ScopeUser Scope = "USER"
)

type UserValidator interface {
	// IsUserValid reports whether the user may still use the platform.
	IsUserValid(ctx context.Context, id domain.UserIdentifier) bool
}

type AuthenticationHandler struct {
	validator UserValidator
	session   Session
}

func NewAuthenticationHandler(validator UserValidator, session Session) *AuthenticationHandler {
	return &AuthenticationHandler{
		validator: validator,
		session:   session,
	}
}

// LoggedIn checks if a user is logged in. If scopes are given, they are validated as well.
func (h *AuthenticationHandler) LoggedIn(scopes ...Scope) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := h.session.GetData(r.Context())

			if !session.LoggedIn {
				respond.JSON(w, http.StatusUnauthorized,
					model.Error{Code: http.StatusUnauthorized, Message: "not logged in"})
				return
			}

			if !UserHasScopes(session, scopes...) {
				respond.JSON(w, http.StatusForbidden,
					model.Error{Code: http.StatusForbidden, Message: "not enough permissions"})
				return
			}

			// check if the logged-in user still exists and is not disabled
			if !h.validator.IsUserValid(r.Context(), domain.UserIdentifier(session.UserIdentifier)) {
				h.session.DestroyData(r.Context())
				respond.JSON(w, http.StatusUnauthorized,
					model.Error{Code: http.StatusUnauthorized, Message: "session no longer available"})
				return
			}

			ctx := domain.SetUserInfo(r.Context(), &domain.ContextUserInfo{
				Id:   domain.UserIdentifier(session.UserIdentifier),
				Role: sessionRole(session),
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionRole(session SessionData) domain.UserRole {
	switch {
	case session.IsSuperAdmin:
		return domain.UserRoleSuperAdmin
	case session.IsAdmin:
		return domain.UserRoleAdmin
	default:
		return domain.UserRoleStudent
	}
}

func UserHasScopes(session SessionData, scopes ...Scope) bool {
	if len(scopes) == 0 {
		return true
	}

	for _, scope := range scopes {
		switch scope {
		case ScopeSuperAdmin:
			if !session.IsSuperAdmin {
				return false
			}
		case ScopeAdmin:
			if !session.IsAdmin && !session.IsSuperAdmin {
				return false
			}
		case ScopeUser:
			if !session.LoggedIn {
				return false
			}
		}
	}

	return true
}
