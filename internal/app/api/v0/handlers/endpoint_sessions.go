package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-pkgz/routegroup"

	"github.com/adralidus/lgl-portal/internal/app/api/core/request"
	"github.com/adralidus/lgl-portal/internal/app/api/core/respond"
	"github.com/adralidus/lgl-portal/internal/app/api/v0/model"
	"github.com/adralidus/lgl-portal/internal/app/triage"
	"github.com/adralidus/lgl-portal/internal/domain"
)

type SessionService interface {
	GetAll(ctx context.Context) ([]domain.MonitoredSession, error)
	Get(ctx context.Context, id domain.SessionIdentifier) (*domain.MonitoredSession, error)
	GetUserSessions(ctx context.Context, id domain.UserIdentifier) ([]domain.MonitoredSession, error)

	Refresh(ctx context.Context) error
	UpdateView(ctx context.Context, view triage.View) error
	Visible(ctx context.Context) ([]domain.MonitoredSession, error)

	Terminate(ctx context.Context, id domain.SessionIdentifier) error
	TerminateAll(ctx context.Context) (int, error)
}

type SessionEndpoint struct {
	service       SessionService
	authenticator Authenticator
}

func NewSessionEndpoint(service SessionService, authenticator Authenticator) SessionEndpoint {
	return SessionEndpoint{
		service:       service,
		authenticator: authenticator,
	}
}

func (e SessionEndpoint) GetName() string {
	return "SessionEndpoint"
}

func (e SessionEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/session")
	apiGroup.Use(e.authenticator.LoggedIn(ScopeAdmin))

	apiGroup.HandleFunc("GET /all", e.handleAllGet())
	apiGroup.HandleFunc("GET /visible", e.handleVisibleGet())
	apiGroup.HandleFunc("POST /view", e.handleViewPost())
	apiGroup.HandleFunc("POST /refresh", e.handleRefreshPost())
	apiGroup.HandleFunc("GET /user/{id}", e.handleUserSessionsGet())
	apiGroup.HandleFunc("GET /{id}", e.handleSingleGet())
	apiGroup.HandleFunc("POST /{id}/terminate", e.handleTerminatePost())

	// terminating every session on the platform requires the super admin role
	apiGroup.With(e.authenticator.LoggedIn(ScopeSuperAdmin)).
		HandleFunc("POST /terminate-all", e.handleTerminateAllPost())
}

func (e SessionEndpoint) handleAllGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := e.service.GetAll(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewSessions(sessions))
	}
}

func (e SessionEndpoint) handleVisibleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := e.service.Visible(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewSessions(sessions))
	}
}

func (e SessionEndpoint) handleViewPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var view model.TriageView
		if err := request.BodyJson(r, &view); err != nil {
			respond.JSON(w, http.StatusBadRequest, model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		err := e.service.UpdateView(r.Context(), triage.View{
			Search:  view.Search,
			Status:  view.Status,
			Window:  time.Duration(view.WindowHours) * time.Hour,
			SortBy:  view.SortBy,
			SortDir: triage.SortDirection(view.SortDir),
		})
		if err != nil {
			respondError(w, err)
			return
		}

		sessions, err := e.service.Visible(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewSessions(sessions))
	}
}

func (e SessionEndpoint) handleRefreshPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := e.service.Refresh(r.Context()); err != nil {
			respondError(w, err)
			return
		}

		sessions, err := e.service.Visible(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewSessions(sessions))
	}
}

func (e SessionEndpoint) handleSingleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing session id"})
			return
		}

		session, err := e.service.Get(r.Context(), domain.SessionIdentifier(id))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewSession(session))
	}
}

func (e SessionEndpoint) handleUserSessionsGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing user id"})
			return
		}

		sessions, err := e.service.GetUserSessions(r.Context(), domain.UserIdentifier(id))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewSessions(sessions))
	}
}

func (e SessionEndpoint) handleTerminatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing session id"})
			return
		}

		if err := e.service.Terminate(r.Context(), domain.SessionIdentifier(id)); err != nil {
			respondError(w, err)
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}

func (e SessionEndpoint) handleTerminateAllPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := e.service.TerminateAll(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, map[string]int{"TerminatedCount": count})
	}
}
