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
	"github.com/adralidus/lgl-portal/internal/app/triage"
	"github.com/adralidus/lgl-portal/internal/domain"
)

type NotificationService interface {
	GetAll(ctx context.Context) ([]domain.EnrichedNotification, error)
	Get(ctx context.Context, id domain.NotificationIdentifier) (*domain.EnrichedNotification, error)
	Create(ctx context.Context, n *domain.Notification) (*domain.EnrichedNotification, error)
	Update(ctx context.Context, n *domain.Notification) (*domain.EnrichedNotification, error)
	Delete(ctx context.Context, id domain.NotificationIdentifier) error
	MarkRead(ctx context.Context, id domain.NotificationIdentifier) error
	MarkReadBatch(ctx context.Context, ids []domain.NotificationIdentifier) error
	DeleteBatch(ctx context.Context, ids []domain.NotificationIdentifier) error

	Refresh(ctx context.Context) error
	UpdateView(ctx context.Context, view triage.View) error
	Visible(ctx context.Context) ([]domain.EnrichedNotification, error)
	ToggleSelect(ctx context.Context, id domain.NotificationIdentifier) (bool, error)
	SelectAll(ctx context.Context) error
	Selected(ctx context.Context) ([]domain.NotificationIdentifier, error)
	OpenDetail(ctx context.Context, id domain.NotificationIdentifier) (*domain.EnrichedNotification, error)
	CloseDetail(ctx context.Context) error

	Export(ctx context.Context, ids []domain.NotificationIdentifier) ([]byte, error)
}

type NotificationEndpoint struct {
	service       NotificationService
	authenticator Authenticator
	validator     Validator
}

func NewNotificationEndpoint(
	service NotificationService,
	authenticator Authenticator,
	validator Validator,
) NotificationEndpoint {
	return NotificationEndpoint{
		service:       service,
		authenticator: authenticator,
		validator:     validator,
	}
}

func (e NotificationEndpoint) GetName() string {
	return "NotificationEndpoint"
}

func (e NotificationEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/notification")
	apiGroup.Use(e.authenticator.LoggedIn(ScopeAdmin))

	apiGroup.HandleFunc("GET /all", e.handleAllGet())
	apiGroup.HandleFunc("GET /visible", e.handleVisibleGet())
	apiGroup.HandleFunc("POST /view", e.handleViewPost())
	apiGroup.HandleFunc("POST /refresh", e.handleRefreshPost())
	apiGroup.HandleFunc("POST /new", e.handleCreatePost())
	apiGroup.HandleFunc("GET /export", e.handleExportGet())

	apiGroup.HandleFunc("POST /select/{id}", e.handleSelectPost())
	apiGroup.HandleFunc("POST /select-all", e.handleSelectAllPost())
	apiGroup.HandleFunc("GET /selected", e.handleSelectedGet())

	apiGroup.HandleFunc("POST /batch/read", e.handleBatchReadPost())
	apiGroup.HandleFunc("POST /batch/delete", e.handleBatchDeletePost())

	apiGroup.HandleFunc("GET /{id}", e.handleSingleGet())
	apiGroup.HandleFunc("PUT /{id}", e.handleUpdatePut())
	apiGroup.HandleFunc("DELETE /{id}", e.handleDelete())
	apiGroup.HandleFunc("POST /{id}/read", e.handleReadPost())
	apiGroup.HandleFunc("POST /{id}/open", e.handleOpenPost())
	apiGroup.HandleFunc("POST /close", e.handleClosePost())
}

func (e NotificationEndpoint) handleAllGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notifications, err := e.service.GetAll(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewNotifications(notifications))
	}
}

func (e NotificationEndpoint) handleVisibleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notifications, err := e.service.Visible(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewNotifications(notifications))
	}
}

// handleViewPost applies a new filter/search/sort configuration and returns
// the resulting visible set.
func (e NotificationEndpoint) handleViewPost() http.HandlerFunc {
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

		notifications, err := e.service.Visible(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewNotifications(notifications))
	}
}

func (e NotificationEndpoint) handleRefreshPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := e.service.Refresh(r.Context()); err != nil {
			respondError(w, err)
			return
		}

		notifications, err := e.service.Visible(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewNotifications(notifications))
	}
}

func (e NotificationEndpoint) handleCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var notification model.Notification
		if err := request.BodyJson(r, &notification); err != nil {
			respond.JSON(w, http.StatusBadRequest, model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}
		if err := e.validator.Struct(notification); err != nil {
			respond.JSON(w, http.StatusBadRequest, model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		created, err := e.service.Create(r.Context(), model.NewDomainNotification(&notification))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusCreated, model.NewNotification(created))
	}
}

func (e NotificationEndpoint) handleSingleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing notification id"})
			return
		}

		notification, err := e.service.Get(r.Context(), domain.NotificationIdentifier(id))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewNotification(notification))
	}
}

func (e NotificationEndpoint) handleUpdatePut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")

		var notification model.Notification
		if err := request.BodyJson(r, &notification); err != nil {
			respond.JSON(w, http.StatusBadRequest, model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}
		if err := e.validator.Struct(notification); err != nil {
			respond.JSON(w, http.StatusBadRequest, model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}
		if id != notification.Identifier {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "notification id mismatch"})
			return
		}

		updated, err := e.service.Update(r.Context(), model.NewDomainNotification(&notification))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewNotification(updated))
	}
}

func (e NotificationEndpoint) handleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing notification id"})
			return
		}

		if err := e.service.Delete(r.Context(), domain.NotificationIdentifier(id)); err != nil {
			respondError(w, err)
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}

func (e NotificationEndpoint) handleReadPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing notification id"})
			return
		}

		if err := e.service.MarkRead(r.Context(), domain.NotificationIdentifier(id)); err != nil {
			respondError(w, err)
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}

func (e NotificationEndpoint) handleOpenPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")

		notification, err := e.service.OpenDetail(r.Context(), domain.NotificationIdentifier(id))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewNotification(notification))
	}
}

func (e NotificationEndpoint) handleClosePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := e.service.CloseDetail(r.Context()); err != nil {
			respondError(w, err)
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}

func (e NotificationEndpoint) handleSelectPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")

		selected, err := e.service.ToggleSelect(r.Context(), domain.NotificationIdentifier(id))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, map[string]bool{"Selected": selected})
	}
}

func (e NotificationEndpoint) handleSelectAllPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := e.service.SelectAll(r.Context()); err != nil {
			respondError(w, err)
			return
		}

		selected, err := e.service.Selected(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, identifiersToStrings(selected))
	}
}

func (e NotificationEndpoint) handleSelectedGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		selected, err := e.service.Selected(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, identifiersToStrings(selected))
	}
}

type batchRequest struct {
	Ids []string `json:"Ids"`
}

func (e NotificationEndpoint) handleBatchReadPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req batchRequest
		if err := request.BodyJson(r, &req); err != nil {
			respond.JSON(w, http.StatusBadRequest, model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		if err := e.service.MarkReadBatch(r.Context(), stringsToIdentifiers(req.Ids)); err != nil {
			respondError(w, err)
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}

func (e NotificationEndpoint) handleBatchDeletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req batchRequest
		if err := request.BodyJson(r, &req); err != nil {
			respond.JSON(w, http.StatusBadRequest, model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		if err := e.service.DeleteBatch(r.Context(), stringsToIdentifiers(req.Ids)); err != nil {
			respondError(w, err)
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}

func (e NotificationEndpoint) handleExportGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids := stringsToIdentifiers(request.QuerySlice(r, "id"))

		data, err := e.service.Export(r.Context(), ids)
		if err != nil {
			respondError(w, err)
			return
		}

		filename := "notifications_" + strconv.FormatInt(time.Now().Unix(), 10) + ".json"
		respond.Attachment(w, http.StatusOK, filename, "application/json", data)
	}
}

func identifiersToStrings(ids []domain.NotificationIdentifier) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func stringsToIdentifiers(ids []string) []domain.NotificationIdentifier {
	out := make([]domain.NotificationIdentifier, len(ids))
	for i, id := range ids {
		out[i] = domain.NotificationIdentifier(id)
	}
	return out
}
