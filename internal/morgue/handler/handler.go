package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"dvi/internal/morgue/models"
	"dvi/internal/morgue/service"
	id "dvi/pkg/domain"
	dErrors "dvi/pkg/domain-errors"
	"dvi/pkg/platform/httputil"
	"dvi/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	Create(ctx context.Context, in service.CreateInput) (*models.Morgue, error)
	Get(ctx context.Context, morgueID id.MorgueID) (*models.Morgue, error)
	List(ctx context.Context, includeRetired bool) ([]*models.Morgue, error)
	Update(ctx context.Context, morgueID id.MorgueID, u models.Update) (*models.Morgue, error)
	Retire(ctx context.Context, morgueID id.MorgueID) (*models.Morgue, error)
	Delete(ctx context.Context, morgueID id.MorgueID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/morgues", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Patch("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
		r.Post("/{id}/retire", h.handleRetire)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[createRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	m, err := h.service.Create(ctx, service.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Location:    id.LocationRef(req.Location),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	includeRetired := false
	if raw := r.URL.Query().Get("include_retired"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.NewField(dErrors.CodeInvalidInput, "include_retired", "include_retired must be a boolean"))
			return
		}
		includeRetired = v
	}
	out, err := h.service.List(r.Context(), includeRetired)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"morgues": out})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	morgueID, ok := h.morgueID(w, r)
	if !ok {
		return
	}
	m, err := h.service.Get(r.Context(), morgueID)
	h.respond(w, m, err)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	morgueID, ok := h.morgueID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[updateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	m, err := h.service.Update(ctx, morgueID, req.toUpdate())
	h.respond(w, m, err)
}

func (h *Handler) handleRetire(w http.ResponseWriter, r *http.Request) {
	morgueID, ok := h.morgueID(w, r)
	if !ok {
		return
	}
	m, err := h.service.Retire(r.Context(), morgueID)
	h.respond(w, m, err)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	morgueID, ok := h.morgueID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), morgueID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) morgueID(w http.ResponseWriter, r *http.Request) (id.MorgueID, bool) {
	morgueID, err := id.ParseMorgueID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return morgueID, false
	}
	return morgueID, true
}

func (h *Handler) respond(w http.ResponseWriter, m *models.Morgue, err error) {
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}
