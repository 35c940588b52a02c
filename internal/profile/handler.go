package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"findr/backend/internal/auth"
	"findr/backend/internal/httpx"
	"findr/backend/internal/rewards"
)

// Handler exposes the jobseeker profile endpoints.
type Handler struct {
	svc     *Service
	rewards *rewards.Service
	mw      *auth.Middleware
}

func NewHandler(svc *Service, rw *rewards.Service, mw *auth.Middleware) *Handler {
	return &Handler{svc: svc, rewards: rw, mw: mw}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/profile", h.mw.RequireRole(auth.RoleJobseeker, h.details))
	mux.HandleFunc("PUT /api/v1/profile", h.mw.RequireRole(auth.RoleJobseeker, h.update))
	mux.HandleFunc("GET /api/v1/profile/eligibility", h.mw.RequireRole(auth.RoleJobseeker, h.eligibility))
	mux.HandleFunc("POST /api/v1/profile/follow", h.mw.RequireRole(auth.RoleJobseeker, h.follow))
}

func (h *Handler) details(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	details, err := h.svc.Details(r.Context(), id.ID)
	if errors.Is(err, ErrUserNotFound) {
		httpx.Error(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "could not load profile")
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var in UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	details, err := h.svc.Update(r.Context(), id.ID, in)
	if errors.Is(err, ErrUserNotFound) {
		httpx.Error(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "could not update profile")
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

func (h *Handler) eligibility(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	el, err := h.svc.Eligibility(r.Context(), id.ID)
	if errors.Is(err, ErrUserNotFound) {
		httpx.Error(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "could not check eligibility")
		return
	}
	httpx.JSON(w, http.StatusOK, el)
}

func (h *Handler) follow(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var in struct {
		Platform string `json:"platform"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	platform, err := rewards.ParsePlatform(in.Platform)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.rewards.Follow(r.Context(), id.ID, platform)
	if errors.Is(err, rewards.ErrUserNotFound) {
		httpx.Error(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "could not claim follow bonus")
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}
