// Package handler wires compliance endpoints to the compliance service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quarters/internal/compliance"
	"quarters/internal/platform/metrics"
	"quarters/internal/platform/middleware"
	"quarters/internal/transport/http/shared"
	id "quarters/pkg/domain"
	dErrors "quarters/pkg/domain-errors"
)

// Service defines the interface for compliance reads.
type Service interface {
	Snapshot(ctx context.Context, tenantID id.UserID) (*compliance.Snapshot, error)
}

// Handler wires compliance endpoints to the compliance service.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{service: service, logger: logger, metrics: metrics}
}

// Register mounts compliance endpoints. Tenants read their own standing;
// admins may read any tenant's.
func (h *Handler) Register(r chi.Router) {
	admin := middleware.RequireRole(id.RoleAdmin, h.logger)

	r.Get("/compliance/me", h.HandleOwnSnapshot)
	r.With(admin).Get("/tenants/{tenantID}/compliance", h.HandleTenantSnapshot)
}

// HandleOwnSnapshot handles GET /compliance/me.
func (h *Handler) HandleOwnSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	h.serve(w, r, tenantID)
}

// HandleTenantSnapshot handles GET /tenants/{tenantID}/compliance.
func (h *Handler) HandleTenantSnapshot(w http.ResponseWriter, r *http.Request) {
	tenantID, err := id.ParseUserID(chi.URLParam(r, "tenantID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid tenant id"))
		return
	}
	h.serve(w, r, tenantID)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, tenantID id.UserID) {
	ctx := r.Context()

	snapshot, err := h.service.Snapshot(ctx, tenantID)
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "compliance snapshot failed",
				"request_id", middleware.GetRequestID(ctx),
				"tenant_id", tenantID,
				"error", err,
			)
		}
		shared.WriteError(w, err)
		return
	}

	h.metrics.SnapshotsServed.Inc()
	shared.WriteJSON(w, http.StatusOK, snapshot)
}
