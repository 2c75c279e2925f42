// Package handler wires inspection endpoints to the inspection service.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quarters/internal/inspection"
	"quarters/internal/platform/metrics"
	"quarters/internal/platform/middleware"
	"quarters/internal/transport/http/shared"
	id "quarters/pkg/domain"
	dErrors "quarters/pkg/domain-errors"
)

// maxPhotoBytes caps a single photo upload at 10 MiB.
const maxPhotoBytes = 10 << 20

// Service defines the interface for inspection operations.
type Service interface {
	Initialize(ctx context.Context, tenancyID id.TenancyID, phase inspection.Phase) (*inspection.View, error)
	Get(ctx context.Context, tenancyID id.TenancyID, phase inspection.Phase, actorID id.UserID, role id.Role) (*inspection.View, error)
	UpdateItem(ctx context.Context, itemID id.InspectionItemID, condition *inspection.Condition, notes *string) (*inspection.Item, error)
	SetDamageReport(ctx context.Context, inspectionID id.InspectionID, damageFound bool, damageNotes string) error
	AddPhoto(ctx context.Context, itemID id.InspectionItemID, actorID id.UserID, filename, contentType, caption string, content []byte) (*inspection.Photo, error)
	GetPhotoContent(ctx context.Context, photoID id.PhotoID, actorID id.UserID, role id.Role) (*inspection.Photo, []byte, error)
	DeletePhoto(ctx context.Context, photoID id.PhotoID, actorID id.UserID) error
	Finalize(ctx context.Context, inspectionID id.InspectionID, actorID id.UserID) (*inspection.FinalizeResult, error)
	Reopen(ctx context.Context, inspectionID id.InspectionID, actorID id.UserID, reason string) (*inspection.Inspection, error)
}

// Handler wires inspection endpoints to the inspection service.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{service: service, logger: logger, metrics: metrics}
}

// Register mounts inspection endpoints. The router must already carry
// RequireAuth; all mutations are admin-only.
func (h *Handler) Register(r chi.Router) {
	admin := middleware.RequireRole(id.RoleAdmin, h.logger)

	r.With(admin).Post("/tenancies/{tenancyID}/inspections", h.HandleInitialize)
	r.Get("/tenancies/{tenancyID}/inspections/{phase}", h.HandleGet)
	r.With(admin).Patch("/inspection-items/{itemID}", h.HandleUpdateItem)
	r.With(admin).Put("/inspections/{inspectionID}/damage-report", h.HandleSetDamageReport)
	r.With(admin).Post("/inspection-items/{itemID}/photos", h.HandleAddPhoto)
	r.Get("/inspection-photos/{photoID}", h.HandleGetPhoto)
	r.With(admin).Delete("/inspection-photos/{photoID}", h.HandleDeletePhoto)
	r.With(admin).Post("/inspections/{inspectionID}/finalize", h.HandleFinalize)
	r.With(admin).Post("/inspections/{inspectionID}/reopen", h.HandleReopen)
}

// HandleInitialize handles POST /tenancies/{tenancyID}/inspections.
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
	phase, err := inspection.ParsePhase(req.Phase)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	view, err := h.service.Initialize(ctx, tenancyID, phase)
	if err != nil {
		h.logger.ErrorContext(ctx, "inspection initialization failed",
			"request_id", middleware.GetRequestID(ctx),
			"tenancy_id", tenancyID,
			"phase", req.Phase,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, fromView(view))
}

// HandleGet handles GET /tenancies/{tenancyID}/inspections/{phase}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenancyID, err := id.ParseTenancyID(chi.URLParam(r, "tenancyID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid tenancy id"))
		return
	}
	phase, err := inspection.ParsePhase(chi.URLParam(r, "phase"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	actorID, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	view, err := h.service.Get(ctx, tenancyID, phase, actorID, middleware.GetRole(ctx))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, fromView(view))
}

// HandleUpdateItem handles PATCH /inspection-items/{itemID}.
func (h *Handler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID, err := id.ParseInspectionItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid item id"))
		return
	}
	req, ok := shared.Decode[updateItemRequest](w, r)
	if !ok {
		return
	}
	var condition *inspection.Condition
	if req.Condition != nil {
		c, err := inspection.ParseCondition(*req.Condition)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		condition = &c
	}

	item, err := h.service.UpdateItem(ctx, itemID, condition, req.Notes)
	if err != nil {
		h.logger.WarnContext(ctx, "inspection item update rejected",
			"request_id", middleware.GetRequestID(ctx),
			"item_id", itemID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, fromInspectionItem(item))
}

// HandleSetDamageReport handles PUT /inspections/{inspectionID}/damage-report.
func (h *Handler) HandleSetDamageReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	inspectionID, err := id.ParseInspectionID(chi.URLParam(r, "inspectionID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid inspection id"))
		return
	}
	req, ok := shared.Decode[damageReportRequest](w, r)
	if !ok {
		return
	}

	if err := h.service.SetDamageReport(ctx, inspectionID, req.DamageFound, req.DamageNotes); err != nil {
		shared.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleAddPhoto handles POST /inspection-items/{itemID}/photos. Accepts a
// multipart form with a "photo" file part and an optional "caption" field.
func (h *Handler) HandleAddPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID, err := id.ParseInspectionItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid item id"))
		return
	}
	actorID, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "missing photo file"))
		return
	}
	defer file.Close()
	content, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "unreadable photo file"))
		return
	}

	photo, err := h.service.AddPhoto(ctx, itemID, actorID,
		header.Filename, header.Header.Get("Content-Type"), r.FormValue("caption"), content)
	if err != nil {
		h.logger.WarnContext(ctx, "photo upload rejected",
			"request_id", middleware.GetRequestID(ctx),
			"item_id", itemID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, fromPhoto(photo))
}

// HandleGetPhoto handles GET /inspection-photos/{photoID}, serving the binary.
func (h *Handler) HandleGetPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	photoID, err := id.ParsePhotoID(chi.URLParam(r, "photoID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid photo id"))
		return
	}
	actorID, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	photo, content, err := h.service.GetPhotoContent(ctx, photoID, actorID, middleware.GetRole(ctx))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(content))
	w.Header().Set("Content-Disposition", `inline; filename="`+photo.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// HandleDeletePhoto handles DELETE /inspection-photos/{photoID}.
func (h *Handler) HandleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	photoID, err := id.ParsePhotoID(chi.URLParam(r, "photoID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid photo id"))
		return
	}
	actorID, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	if err := h.service.DeletePhoto(ctx, photoID, actorID); err != nil {
		shared.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleFinalize handles POST /inspections/{inspectionID}/finalize.
func (h *Handler) HandleFinalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	inspectionID, err := id.ParseInspectionID(chi.URLParam(r, "inspectionID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid inspection id"))
		return
	}
	actorID, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	result, err := h.service.Finalize(ctx, inspectionID, actorID)
	if err != nil {
		h.logger.WarnContext(ctx, "inspection finalize rejected",
			"request_id", middleware.GetRequestID(ctx),
			"inspection_id", inspectionID,
			"actor_id", actorID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	h.metrics.InspectionsFinalized.Inc()
	h.logger.InfoContext(ctx, "inspection finalized",
		"request_id", middleware.GetRequestID(ctx),
		"inspection_id", inspectionID,
		"actor_id", actorID,
	)
	shared.WriteJSON(w, http.StatusOK, finalizeResponse{
		Inspection: fromInspection(result.Inspection),
		Warnings:   result.Warnings,
	})
}

// HandleReopen handles POST /inspections/{inspectionID}/reopen.
func (h *Handler) HandleReopen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	inspectionID, err := id.ParseInspectionID(chi.URLParam(r, "inspectionID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid inspection id"))
		return
	}
	actorID, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	req, ok := shared.Decode[reopenRequest](w, r)
	if !ok {
		return
	}

	insp, err := h.service.Reopen(ctx, inspectionID, actorID, req.Reason)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	h.metrics.InspectionsReopened.Inc()
	shared.WriteJSON(w, http.StatusOK, fromInspection(insp))
}
