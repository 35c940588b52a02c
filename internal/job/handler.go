package job

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"findr/backend/internal/auth"
	"findr/backend/internal/httpx"
)

// Handler exposes the job endpoints.
type Handler struct {
	svc *Service
	mw  *auth.Middleware
}

func NewHandler(svc *Service, mw *auth.Middleware) *Handler {
	return &Handler{svc: svc, mw: mw}
}

// RegisterRoutes mounts the job endpoints on mux. Listing and reading are
// public; a token changes behavior (view counting, recommendations).
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/jobs", h.mw.RequireRole(auth.RoleEmployer, h.create))
	mux.HandleFunc("GET /api/v1/jobs", h.list)
	mux.HandleFunc("GET /api/v1/jobs/recommendations", h.mw.RequireRole(auth.RoleJobseeker, h.recommendations))
	mux.HandleFunc("GET /api/v1/jobs/{id}", h.mw.Optional(h.get))
	mux.HandleFunc("PUT /api/v1/jobs/{id}", h.mw.RequireRole(auth.RoleEmployer, h.update))
	mux.HandleFunc("POST /api/v1/jobs/{id}/close", h.mw.RequireRole(auth.RoleEmployer, h.close))
	mux.HandleFunc("POST /api/v1/jobs/{id}/pause", h.mw.RequireRole(auth.RoleEmployer, h.pause))
	mux.HandleFunc("POST /api/v1/jobs/{id}/publish", h.mw.RequireRole(auth.RoleEmployer, h.publish))
	mux.HandleFunc("GET /api/v1/employer/jobs", h.mw.RequireRole(auth.RoleEmployer, h.listForEmployer))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrTitleRequired):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	default:
		httpx.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	job, err := h.svc.Create(r.Context(), id.ID, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, job)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	jobs, total, err := h.svc.List(r.Context(), ListOptions{
		Search:          q.Get("search"),
		Location:        q.Get("location"),
		JobType:         q.Get("jobType"),
		ExperienceLevel: q.Get("experienceLevel"),
		Page:            page,
		Limit:           limit,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"jobs": jobs, "total": total})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	viewerID := ""
	if id, ok := auth.FromContext(r.Context()); ok {
		viewerID = id.ID
	}
	job, err := h.svc.Get(r.Context(), r.PathValue("id"), viewerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var in UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	job, err := h.svc.Update(r.Context(), id.ID, r.PathValue("id"), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, "closed")
}

func (h *Handler) pause(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, "paused")
}

func (h *Handler) publish(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, "active")
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, status string) {
	id, _ := auth.FromContext(r.Context())
	job, err := h.svc.SetStatus(r.Context(), id.ID, r.PathValue("id"), status)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

func (h *Handler) listForEmployer(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	jobs, err := h.svc.ListForEmployer(r.Context(), id.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (h *Handler) recommendations(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recs, err := h.svc.Recommendations(r.Context(), id.ID, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"recommendations": recs})
}
