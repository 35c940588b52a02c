package application

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"findr/backend/internal/auth"
	"findr/backend/internal/httpx"
)

// Handler exposes the application lifecycle over HTTP.
type Handler struct {
	svc *Service
	mw  *auth.Middleware
}

func NewHandler(svc *Service, mw *auth.Middleware) *Handler {
	return &Handler{svc: svc, mw: mw}
}

// RegisterRoutes mounts the application endpoints on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/applications", h.mw.RequireRole(auth.RoleJobseeker, h.create))
	mux.HandleFunc("GET /api/v1/applications", h.mw.Require(h.list))
	mux.HandleFunc("GET /api/v1/applications/interviews", h.mw.Require(h.interviews))
	mux.HandleFunc("GET /api/v1/applications/{id}", h.mw.Require(h.get))
	mux.HandleFunc("PATCH /api/v1/applications/{id}/status", h.mw.RequireRole(auth.RoleEmployer, h.updateStatus))
	mux.HandleFunc("POST /api/v1/applications/{id}/withdraw", h.mw.RequireRole(auth.RoleJobseeker, h.withdraw))
	mux.HandleFunc("POST /api/v1/applications/{id}/rate", h.mw.RequireRole(auth.RoleEmployer, h.rate))
	mux.HandleFunc("GET /api/v1/jobs/{id}/applications", h.mw.RequireRole(auth.RoleEmployer, h.listForJob))
	mux.HandleFunc("POST /api/v1/referrals", h.mw.RequireRole(auth.RoleJobseeker, h.createReferral))
	mux.HandleFunc("GET /api/v1/employer/dashboard", h.mw.RequireRole(auth.RoleEmployer, h.dashboard))
}

// writeError maps service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrJobNotFound):
		httpx.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyApplied):
		httpx.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrJobClosed),
		errors.Is(err, ErrProfileIncomplete),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrCannotWithdraw),
		errors.Is(err, ErrInvalidRating),
		errors.Is(err, ErrSelfReferral):
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
	app, err := h.svc.Create(r.Context(), id.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, app)
}

func listOptions(r *http.Request) ListOptions {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return ListOptions{
		Status: q.Get("status"),
		JobID:  q.Get("jobId"),
		Page:   page,
		Limit:  limit,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	opts := listOptions(r)

	if id.Role == auth.RoleEmployer {
		apps, total, err := h.svc.ListForEmployer(r.Context(), id.ID, opts)
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{
			"applications": apps,
			"total":        total,
		})
		return
	}

	apps, stats, err := h.svc.ListForApplicant(r.Context(), id.ID, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"applications": apps,
		"stats":        stats,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	app, err := h.svc.Get(r.Context(), id.ID, id.Role, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, app)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var in StatusUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	app, err := h.svc.UpdateStatus(r.Context(), id.ID, r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, app)
}

func (h *Handler) withdraw(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	app, err := h.svc.Withdraw(r.Context(), id.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, app)
}

func (h *Handler) rate(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var in struct {
		Rating   int    `json:"rating"`
		Feedback string `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	app, err := h.svc.Rate(r.Context(), id.ID, r.PathValue("id"), in.Rating, in.Feedback)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, app)
}

func (h *Handler) interviews(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	apps, err := h.svc.Interviews(r.Context(), id.ID, id.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"interviews": apps})
}

func (h *Handler) listForJob(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	apps, err := h.svc.ListForJob(r.Context(), id.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"applications": apps})
}

func (h *Handler) createReferral(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var in ReferralInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	res, err := h.svc.CreateReferral(r.Context(), id.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	metrics, err := h.svc.Dashboard(r.Context(), id.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, metrics)
}
