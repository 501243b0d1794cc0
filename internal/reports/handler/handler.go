package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dvi/internal/reports/models"
	"dvi/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	BodiesByMorgue(ctx context.Context) (*models.MorgueCounts, error)
	BodiesByRequest(ctx context.Context) ([]models.RequestCount, error)
	Identification(ctx context.Context) (*models.Distribution, error)
	Summary(ctx context.Context) (*models.Summary, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/morgues", h.handleMorgues)
		r.Get("/recovery-requests", h.handleRequests)
		r.Get("/identification", h.handleIdentification)
		r.Get("/summary", h.handleSummary)
	})
}

func (h *Handler) handleMorgues(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.BodiesByMorgue(r.Context())
	respond(w, out, err)
}

func (h *Handler) handleRequests(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.BodiesByRequest(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"recovery_requests": out})
}

func (h *Handler) handleIdentification(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.Identification(r.Context())
	respond(w, out, err)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.Summary(r.Context())
	respond(w, out, err)
}

func respond[T any](w http.ResponseWriter, v *T, err error) {
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}
