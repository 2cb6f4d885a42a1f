package handlers

import (
	"context"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/adralidus/lgl-portal/internal/app/api/core/request"
	"github.com/adralidus/lgl-portal/internal/app/api/core/respond"
	"github.com/adralidus/lgl-portal/internal/app/api/v0/model"
	"github.com/adralidus/lgl-portal/internal/domain"
)

type AuthenticationService interface {
	// PlainLogin checks the given credentials and opens a new platform session.
	PlainLogin(ctx context.Context, username, password, clientIP string) (*domain.User, *domain.Session, error)
	// Logout closes the given platform session.
	Logout(ctx context.Context, sessionId domain.SessionIdentifier) error
}

type AuthEndpoint struct {
	auth    AuthenticationService
	session Session
}

func NewAuthEndpoint(auth AuthenticationService, session Session) AuthEndpoint {
	return AuthEndpoint{
		auth:    auth,
		session: session,
	}
}

func (e AuthEndpoint) GetName() string {
	return "AuthEndpoint"
}

func (e AuthEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/auth")

	apiGroup.HandleFunc("POST /login", e.handleLoginPost())
	apiGroup.HandleFunc("POST /logout", e.handleLogoutPost())
	apiGroup.HandleFunc("GET /session", e.handleSessionInfoGet())
}

type loginRequest struct {
	Username string `json:"Username"`
	Password string `json:"Password"`
}

// handleLoginPost authenticates the user and opens a web session.
// All login failure modes return the same error response.
func (e AuthEndpoint) handleLoginPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := request.BodyJson(r, &req); err != nil {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		user, platformSession, err := e.auth.PlainLogin(r.Context(), req.Username, req.Password, request.ClientIp(r))
		if err != nil {
			respond.JSON(w, http.StatusUnauthorized,
				model.Error{Code: http.StatusUnauthorized, Message: "login failed"})
			return
		}

		e.session.SetData(r.Context(), SessionData{
			LoggedIn:          true,
			IsAdmin:           user.Role == domain.UserRoleAdmin || user.Role == domain.UserRoleSuperAdmin,
			IsSuperAdmin:      user.Role == domain.UserRoleSuperAdmin,
			UserIdentifier:    string(user.Identifier),
			SessionIdentifier: string(platformSession.Identifier),
			Firstname:         user.Firstname,
			Lastname:          user.Lastname,
			Email:             user.Email,
		})

		respond.JSON(w, http.StatusOK, model.NewUser(user))
	}
}

func (e AuthEndpoint) handleLogoutPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := e.session.GetData(r.Context())

		if session.SessionIdentifier != "" {
			if err := e.auth.Logout(r.Context(), domain.SessionIdentifier(session.SessionIdentifier)); err != nil {
				respond.JSON(w, http.StatusInternalServerError,
					model.Error{Code: http.StatusInternalServerError, Message: err.Error()})
				return
			}
		}

		e.session.DestroyData(r.Context())

		respond.Status(w, http.StatusNoContent)
	}
}

func (e AuthEndpoint) handleSessionInfoGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := e.session.GetData(r.Context())

		respond.JSON(w, http.StatusOK, map[string]any{
			"LoggedIn":       session.LoggedIn,
			"IsAdmin":        session.IsAdmin,
			"IsSuperAdmin":   session.IsSuperAdmin,
			"UserIdentifier": session.UserIdentifier,
		})
	}
}
