package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dvi/internal/recovery/models"
	"dvi/internal/recovery/service"
	id "dvi/pkg/domain"
	"dvi/pkg/platform/httputil"
	"dvi/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service is the recovery request manager as seen by HTTP.
type Service interface {
	Create(ctx context.Context, in service.CreateInput) (*models.RecoveryRequest, error)
	Get(ctx context.Context, reqID id.RecoveryRequestID) (*models.RecoveryRequest, error)
	List(ctx context.Context, f models.Filter) ([]*models.RecoveryRequest, error)
	Assign(ctx context.Context, reqID id.RecoveryRequestID, assignee id.PersonRef) (*models.RecoveryRequest, error)
	Progress(ctx context.Context, reqID id.RecoveryRequestID) (*models.RecoveryRequest, error)
	Complete(ctx context.Context, reqID id.RecoveryRequestID, terminal id.TaskStatus) (*models.RecoveryRequest, error)
	SetRecovered(ctx context.Context, reqID id.RecoveryRequestID, n int) (*models.RecoveryRequest, error)
	SetFound(ctx context.Context, reqID id.RecoveryRequestID, n int) (*models.RecoveryRequest, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/recovery-requests", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Post("/{id}/assign", h.handleAssign)
		r.Post("/{id}/progress", h.handleProgress)
		r.Post("/{id}/complete", h.handleComplete)
		r.Post("/{id}/recovered", h.handleRecovered)
		r.Post("/{id}/found", h.handleFound)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[createRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	created, err := h.service.Create(ctx, service.CreateInput{
		Finder:      id.PersonRef(req.Finder),
		DateFound:   req.DateFound,
		Marker:      req.Marker,
		Location:    id.LocationRef(req.Location),
		BodiesFound: req.BodiesFound,
		Description: req.Description,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := h.service.List(r.Context(), f)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"recovery_requests": out})
}

func parseFilter(r *http.Request) (models.Filter, error) {
	var (
		f   models.Filter
		err error
	)
	if loc := r.URL.Query().Get("location"); loc != "" {
		f.Location = id.LocationRef(loc)
	}
	if f.From, err = httputil.QueryTime(r, "from"); err != nil {
		return f, err
	}
	if f.To, err = httputil.QueryTime(r, "to"); err != nil {
		return f, err
	}
	for _, raw := range httputil.QueryList(r, "status") {
		st, err := id.ParseTaskStatus(raw)
		if err != nil {
			return f, err
		}
		f.Statuses = append(f.Statuses, st)
	}
	if f.Limit, err = httputil.QueryInt(r, "limit", 0); err != nil {
		return f, err
	}
	if f.Offset, err = httputil.QueryInt(r, "offset", 0); err != nil {
		return f, err
	}
	f.Limit = max(f.Limit, 0)
	f.Offset = max(f.Offset, 0)
	return f, nil
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID, ok := h.requestID(w, r)
	if !ok {
		return
	}
	out, err := h.service.Get(r.Context(), reqID)
	h.respond(w, out, err)
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID, ok := h.requestID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[assignRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	out, err := h.service.Assign(ctx, reqID, id.PersonRef(req.AssignedTo))
	h.respond(w, out, err)
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	reqID, ok := h.requestID(w, r)
	if !ok {
		return
	}
	out, err := h.service.Progress(r.Context(), reqID)
	h.respond(w, out, err)
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID, ok := h.requestID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[completeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	out, err := h.service.Complete(ctx, reqID, id.TaskStatus(req.Status))
	h.respond(w, out, err)
}

func (h *Handler) handleRecovered(w http.ResponseWriter, r *http.Request) {
	h.handleCount(w, r, h.service.SetRecovered)
}

func (h *Handler) handleFound(w http.ResponseWriter, r *http.Request) {
	h.handleCount(w, r, h.service.SetFound)
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request,
	set func(context.Context, id.RecoveryRequestID, int) (*models.RecoveryRequest, error)) {
	ctx := r.Context()
	reqID, ok := h.requestID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[countRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	out, err := set(ctx, reqID, *req.Count)
	h.respond(w, out, err)
}

func (h *Handler) requestID(w http.ResponseWriter, r *http.Request) (id.RecoveryRequestID, bool) {
	reqID, err := id.ParseRecoveryRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return reqID, false
	}
	return reqID, true
}

func (h *Handler) respond(w http.ResponseWriter, req *models.RecoveryRequest, err error) {
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, req)
}
