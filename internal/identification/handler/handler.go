package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dvi/internal/identification/models"
	"dvi/internal/identification/service"
	id "dvi/pkg/domain"
	"dvi/pkg/platform/httputil"
	"dvi/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	Open(ctx context.Context, in service.OpenInput) (*models.Claim, error)
	Advance(ctx context.Context, claimID id.ClaimID, in service.AdvanceInput) (*models.Claim, error)
	Revoke(ctx context.Context, claimID id.ClaimID, reason string) (*models.Claim, error)
	Delete(ctx context.Context, claimID id.ClaimID) error
	Get(ctx context.Context, claimID id.ClaimID) (*models.Claim, error)
	ClaimsForBody(ctx context.Context, bodyID id.BodyID) ([]*models.Claim, error)
	ClaimsByIdentity(ctx context.Context, identity id.PersonRef) ([]*models.Claim, error)
	Identification(ctx context.Context, bodyID id.BodyID) (*models.BodyIdentification, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/claims", h.handleOpen)
	r.Get("/claims/{id}", h.handleGet)
	r.Delete("/claims/{id}", h.handleDelete)
	r.Post("/claims/{id}/advance", h.handleAdvance)
	r.Post("/claims/{id}/revoke", h.handleRevoke)
	r.Get("/persons/{ref}/claims", h.handleByIdentity)
	r.Get("/bodies/{id}/claims", h.handleForBody)
	r.Get("/bodies/{id}/identification", h.handleIdentification)
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[openRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	c, err := h.service.Open(ctx, req.input)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	claimID, ok := claimIDParam(w, r)
	if !ok {
		return
	}
	c, err := h.service.Get(r.Context(), claimID)
	respond(w, c, err)
}

func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claimID, ok := claimIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[advanceRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	c, err := h.service.Advance(ctx, claimID, req.input)
	respond(w, c, err)
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claimID, ok := claimIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[revokeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	c, err := h.service.Revoke(ctx, claimID, req.Reason)
	respond(w, c, err)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	claimID, ok := claimIDParam(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), claimID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleByIdentity(w http.ResponseWriter, r *http.Request) {
	claims, err := h.service.ClaimsByIdentity(r.Context(), id.PersonRef(chi.URLParam(r, "ref")))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"claims": claims})
}

func (h *Handler) handleForBody(w http.ResponseWriter, r *http.Request) {
	bodyID, ok := bodyIDParam(w, r)
	if !ok {
		return
	}
	claims, err := h.service.ClaimsForBody(r.Context(), bodyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"claims": claims})
}

func (h *Handler) handleIdentification(w http.ResponseWriter, r *http.Request) {
	bodyID, ok := bodyIDParam(w, r)
	if !ok {
		return
	}
	out, err := h.service.Identification(r.Context(), bodyID)
	respond(w, out, err)
}

func claimIDParam(w http.ResponseWriter, r *http.Request) (id.ClaimID, bool) {
	claimID, err := id.ParseClaimID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return claimID, false
	}
	return claimID, true
}

func bodyIDParam(w http.ResponseWriter, r *http.Request) (id.BodyID, bool) {
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
