package handlers

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/go-pkgz/routegroup"

	"github.com/adralidus/lgl-portal/internal/app/api/core"
)

type SessionMiddleware interface {
	// SetData sets the session data for the given context.
	SetData(ctx context.Context, val SessionData)
	// GetData returns the session data for the given context. If no data is found, the default session data is returned.
	GetData(ctx context.Context) SessionData
	// DestroyData destroys the session data for the given context.
	DestroyData(ctx context.Context)

	// LoadAndSave is a middleware that loads the session data for the given
	// request and saves it after the request has finished.
	LoadAndSave(next http.Handler) http.Handler
}

type Handler interface {
	// GetName returns the name of the handler.
	GetName() string
	// RegisterRoutes registers the routes of the handler on the given group.
	RegisterRoutes(g *routegroup.Bundle)
}

func NewRestApi(
	session SessionMiddleware,
	handlers ...Handler,
) core.ApiEndpointSetupFunc {
	return func() (core.ApiVersion, core.GroupSetupFn) {
		return "v0", func(group *routegroup.Bundle) {
			group.Use(session.LoadAndSave)

			for _, h := range handlers {
				h.RegisterRoutes(group)
			}
		}
	}
}

// NewValidator returns the struct validator used by the API endpoints.
// It validates against the binding tags of the model package.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}

// region handler-interfaces

type Authenticator interface {
	// LoggedIn checks if a user is logged in. If scopes are given, they are validated as well.
	LoggedIn(scopes ...Scope) func(next http.Handler) http.Handler
}

type Session interface {
	// SetData sets the session data for the given context.
	SetData(ctx context.Context, val SessionData)
	// GetData returns the session data for the given context. If no data is found, the default session data is returned.
	GetData(ctx context.Context) SessionData
	// DestroyData destroys the session data for the given context.
	DestroyData(ctx context.Context)
}

type Validator interface {
	// Struct validates the given struct.
	Struct(s any) error
}

// endregion handler-interfaces
