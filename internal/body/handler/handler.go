package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"dvi/internal/body/models"
	"dvi/internal/body/service"
	"dvi/internal/location"
	id "dvi/pkg/domain"
	"dvi/pkg/platform/httputil"
	"dvi/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	Create(ctx context.Context, in service.CreateInput) (*models.Details, error)
	Get(ctx context.Context, bodyID id.BodyID) (*models.Details, error)
	Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error)
	UpdateObserved(ctx context.Context, bodyID id.BodyID, u models.ObservedUpdate) (*models.Body, error)
	UpdateRecoveryDetails(ctx context.Context, bodyID id.BodyID, u service.DetailsUpdate) (*models.Body, error)
	ReassignMorgue(ctx context.Context, bodyID id.BodyID, morgueID id.MorgueID, at time.Time) (*models.Body, error)
	Relabel(ctx context.Context, bodyID id.BodyID, label string) (*models.Body, error)
	UpdateChecklist(ctx context.Context, bodyID id.BodyID, op models.Operation, state id.TaskStatus) (*models.Checklist, error)
	RecordEffects(ctx context.Context, bodyID id.BodyID, e models.PersonalEffects) (*models.PersonalEffects, error)
	ClearEffects(ctx context.Context, bodyID id.BodyID) error
	Delete(ctx context.Context, bodyID id.BodyID) error
	LocationHistory(ctx context.Context, bodyID id.BodyID) ([]location.Presence, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the body routes. Routes are flat so other handlers can
// serve further /bodies/{id}/... paths on the same router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/bodies", h.handleCreate)
	r.Get("/bodies", h.handleSearch)
	r.Get("/bodies/{id}", h.handleGet)
	r.Patch("/bodies/{id}", h.handleUpdateDetails)
	r.Delete("/bodies/{id}", h.handleDelete)
	r.Patch("/bodies/{id}/observed", h.handleUpdateObserved)
	r.Post("/bodies/{id}/morgue", h.handleReassign)
	r.Post("/bodies/{id}/label", h.handleRelabel)
	r.Put("/bodies/{id}/checklist/{operation}", h.handleChecklist)
	r.Put("/bodies/{id}/effects", h.handleRecordEffects)
	r.Delete("/bodies/{id}/effects", h.handleClearEffects)
	r.Get("/bodies/{id}/locations", h.handleLocations)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[createRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	d, err := h.service.Create(ctx, req.input)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, d)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := models.SearchQuery{Query: r.URL.Query().Get("q")}
	var err error
	if q.Page, err = httputil.QueryInt(r, "page", 1); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if q.PageSize, err = httputil.QueryInt(r, "page_size", models.DefaultPageSize); err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := h.service.Search(r.Context(), q)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	bodyID, ok := h.bodyID(w, r)
	if !ok {
		return
	}
	d, err := h.service.Get(r.Context(), bodyID)
	respond(w, d, err)
}

func (h *Handler) handleUpdateDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bodyID, ok := h.bodyID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[detailsRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	b, err := h.service.UpdateRecoveryDetails(ctx, bodyID, req.update)
	respond(w, b, err)
}

func (h *Handler) handleUpdateObserved(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bodyID, ok := h.bodyID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[observedRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	b, err := h.service.UpdateObserved(ctx, bodyID, req.ObservedUpdate)
	respond(w, b, err)
}

func (h *Handler) handleReassign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bodyID, ok := h.bodyID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[reassignRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	b, err := h.service.ReassignMorgue(ctx, bodyID, req.morgueID, req.At)
	respond(w, b, err)
}

func (h *Handler) handleRelabel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bodyID, ok := h.bodyID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[relabelRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	b, err := h.service.Relabel(ctx, bodyID, req.Label)
	respond(w, b, err)
}

func (h *Handler) handleChecklist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bodyID, ok := h.bodyID(w, r)
	if !ok {
		return
	}
	op, err := models.ParseOperation(chi.URLParam(r, "operation"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[checklistRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	c, err := h.service.UpdateChecklist(ctx, bodyID, op, id.TaskStatus(req.Status))
	respond(w, c, err)
}

func (h *Handler) handleRecordEffects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bodyID, ok := h.bodyID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[effectsRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	e, err := h.service.RecordEffects(ctx, bodyID, req.effects())
	respond(w, e, err)
}

func (h *Handler) handleClearEffects(w http.ResponseWriter, r *http.Request) {
	bodyID, ok := h.bodyID(w, r)
	if !ok {
		return
	}
	if err := h.service.ClearEffects(r.Context(), bodyID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	bodyID, ok := h.bodyID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), bodyID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLocations(w http.ResponseWriter, r *http.Request) {
	bodyID, ok := h.bodyID(w, r)
	if !ok {
		return
	}
	history, err := h.service.LocationHistory(r.Context(), bodyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"locations": history})
}

func (h *Handler) bodyID(w http.ResponseWriter, r *http.Request) (id.BodyID, bool) {
	bodyID, err := id.ParseBodyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return bodyID, false
	}
	return bodyID, true
}

func respond[T any](w http.ResponseWriter, v *T, err error) {
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}
