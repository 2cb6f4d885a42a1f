package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-pkgz/routegroup"

	"github.com/adralidus/lgl-portal/internal/app/api/core/request"
	"github.com/adralidus/lgl-portal/internal/app/api/core/respond"
	"github.com/adralidus/lgl-portal/internal/app/api/v0/model"
	"github.com/adralidus/lgl-portal/internal/app/export"
	"github.com/adralidus/lgl-portal/internal/domain"
)

type AuditService interface {
	// GetAll returns the audit trail, newest first.
	GetAll(ctx context.Context) ([]domain.AuditEntry, error)
	// Query returns audit entries within the given time window, optionally
	// filtered to one action verb. A zero window is unrestricted.
	Query(ctx context.Context, window time.Duration, action string) ([]domain.AuditEntry, error)
}

type AuditEndpoint struct {
	service       AuditService
	authenticator Authenticator
}

func NewAuditEndpoint(service AuditService, authenticator Authenticator) AuditEndpoint {
	return AuditEndpoint{
		service:       service,
		authenticator: authenticator,
	}
}

func (e AuditEndpoint) GetName() string {
	return "AuditEndpoint"
}

func (e AuditEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/audit")
	apiGroup.Use(e.authenticator.LoggedIn(ScopeAdmin))

	apiGroup.HandleFunc("GET /entries", e.handleEntriesGet())
	apiGroup.HandleFunc("GET /export", e.handleExportGet())
}

func (e AuditEndpoint) handleEntriesGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := e.queryEntries(r)
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewAuditEntries(entries))
	}
}

// handleExportGet streams the audit trail as a CSV attachment.
func (e AuditEndpoint) handleExportGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := e.queryEntries(r)
		if err != nil {
			respondError(w, err)
			return
		}

		data, err := export.AuditCSV(entries)
		if err != nil {
			respondError(w, err)
			return
		}

		filename := "audit_" + strconv.FormatInt(time.Now().Unix(), 10) + ".csv"
		respond.Attachment(w, http.StatusOK, filename, "text/csv", data)
	}
}

func (e AuditEndpoint) queryEntries(r *http.Request) ([]domain.AuditEntry, error) {
	windowHours, _ := strconv.Atoi(request.QueryDefault(r, "windowHours", "0"))
	action := request.Query(r, "action")

	if windowHours <= 0 && action == "" {
		return e.service.GetAll(r.Context())
	}

	return e.service.Query(r.Context(), time.Duration(windowHours)*time.Hour, action)
}
