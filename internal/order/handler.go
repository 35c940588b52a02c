package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"findr/backend/internal/auth"
	"findr/backend/internal/httpx"
)

// Handler exposes the order endpoints.
type Handler struct {
	svc *Service
	mw  *auth.Middleware
}

func NewHandler(svc *Service, mw *auth.Middleware) *Handler {
	return &Handler{svc: svc, mw: mw}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/orders", h.mw.RequireRole(auth.RoleJobseeker, h.create))
	mux.HandleFunc("GET /api/v1/orders", h.mw.RequireRole(auth.RoleJobseeker, h.list))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	o, err := h.svc.Create(r.Context(), id.ID, in)
	switch {
	case errors.Is(err, ErrInsufficientPoints):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnknownService), errors.Is(err, ErrInvalidPoints):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	case err != nil:
		httpx.Error(w, http.StatusInternalServerError, "could not place order")
	default:
		httpx.JSON(w, http.StatusCreated, o)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	history, err := h.svc.List(r.Context(), id.ID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "could not load orders")
		return
	}
	httpx.JSON(w, http.StatusOK, history)
}
