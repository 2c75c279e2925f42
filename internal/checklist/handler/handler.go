// Package handler wires checklist endpoints to the checklist service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quarters/internal/checklist"
	"quarters/internal/platform/metrics"
	"quarters/internal/platform/middleware"
	"quarters/internal/transport/http/shared"
	id "quarters/pkg/domain"
	dErrors "quarters/pkg/domain-errors"
)

// Service defines the interface for checklist operations.
type Service interface {
	Initialize(ctx context.Context, tenancyID id.TenancyID, checklistType checklist.Type) ([]*checklist.Item, error)
	CompleteItem(ctx context.Context, itemID id.ChecklistItemID, actorID id.UserID, role id.Role) (*checklist.Item, error)
	UncompleteItem(ctx context.Context, itemID id.ChecklistItemID, actorID id.UserID) (*checklist.Item, error)
	AddCustomItem(ctx context.Context, tenancyID id.TenancyID, checklistType checklist.Type, title, description string, isRequired bool) (*checklist.Item, error)
	RemoveItem(ctx context.Context, itemID id.ChecklistItemID) error
	List(ctx context.Context, tenancyID id.TenancyID, actorID id.UserID, role id.Role) ([]*checklist.Item, checklist.Progress, error)
}

// Handler wires checklist endpoints to the checklist service.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{service: service, logger: logger, metrics: metrics}
}

// Register mounts checklist endpoints. The router must already carry
// RequireAuth; admin-only routes add the role check here.
func (h *Handler) Register(r chi.Router) {
	admin := middleware.RequireRole(id.RoleAdmin, h.logger)

	r.With(admin).Post("/tenancies/{tenancyID}/checklists", h.HandleInitialize)
	r.Get("/tenancies/{tenancyID}/checklist", h.HandleList)
	r.Post("/checklist-items/{itemID}/complete", h.HandleCompleteItem)
	r.With(admin).Post("/checklist-items/{itemID}/uncomplete", h.HandleUncompleteItem)
	r.With(admin).Post("/tenancies/{tenancyID}/checklist-items", h.HandleAddCustomItem)
	r.With(admin).Delete("/checklist-items/{itemID}", h.HandleRemoveItem)
}

// HandleInitialize handles POST /tenancies/{tenancyID}/checklists.
func (h *Handler) HandleInitialize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenancyID, err := id.ParseTenancyID(chi.URLParam(r, "tenancyID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid tenancy id"))
		return
	}
	req, ok := shared.Decode[initializeRequest](w, r)
	if !ok {
		return
	}
	checklistType, err := checklist.ParseType(req.Type)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	items, err := h.service.Initialize(ctx, tenancyID, checklistType)
	if err != nil {
		h.logger.ErrorContext(ctx, "checklist initialization failed",
			"request_id", middleware.GetRequestID(ctx),
			"tenancy_id", tenancyID,
			"type", req.Type,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, fromItems(items))
}

// HandleList handles GET /tenancies/{tenancyID}/checklist.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenancyID, err := id.ParseTenancyID(chi.URLParam(r, "tenancyID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid tenancy id"))
		return
	}
	actorID, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	items, progress, err := h.service.List(ctx, tenancyID, actorID, middleware.GetRole(ctx))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, listResponse{
		Items:    fromItems(items),
		Progress: fromProgress(progress),
	})
}

// HandleCompleteItem handles POST /checklist-items/{itemID}/complete. The
// self-completion gate applies when the caller is a tenant.
func (h *Handler) HandleCompleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID, err := id.ParseChecklistItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid item id"))
		return
	}
	actorID, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	item, err := h.service.CompleteItem(ctx, itemID, actorID, middleware.GetRole(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "checklist item completion rejected",
			"request_id", middleware.GetRequestID(ctx),
			"item_id", itemID,
			"actor_id", actorID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	h.metrics.ItemsCompleted.Inc()
	shared.WriteJSON(w, http.StatusOK, fromItem(item))
}

// HandleUncompleteItem handles POST /checklist-items/{itemID}/uncomplete.
func (h *Handler) HandleUncompleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID, err := id.ParseChecklistItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid item id"))
		return
	}
	actorID, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	item, err := h.service.UncompleteItem(ctx, itemID, actorID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, fromItem(item))
}

// HandleAddCustomItem handles POST /tenancies/{tenancyID}/checklist-items.
func (h *Handler) HandleAddCustomItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenancyID, err := id.ParseTenancyID(chi.URLParam(r, "tenancyID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid tenancy id"))
		return
	}
	req, ok := shared.Decode[addItemRequest](w, r)
	if !ok {
		return
	}
	checklistType, err := checklist.ParseType(req.ChecklistType)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	item, err := h.service.AddCustomItem(ctx, tenancyID, checklistType, req.Title, req.Description, req.IsRequired)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, fromItem(item))
}

// HandleRemoveItem handles DELETE /checklist-items/{itemID}.
func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID, err := id.ParseChecklistItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid item id"))
		return
	}

	if err := h.service.RemoveItem(ctx, itemID); err != nil {
		shared.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
