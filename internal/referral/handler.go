package referral

import (
	"net/http"

	"findr/backend/internal/auth"
	"findr/backend/internal/httpx"
)

// Handler exposes the referral history endpoint. Referral creation lives
// with the application endpoints.
type Handler struct {
	svc *Service
	mw  *auth.Middleware
}

func NewHandler(svc *Service, mw *auth.Middleware) *Handler {
	return &Handler{svc: svc, mw: mw}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/referrals", h.mw.RequireRole(auth.RoleJobseeker, h.history))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	records, stats, err := h.svc.History(r.Context(), id.ID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "could not load referral history")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"referrals": records,
		"stats":     stats,
	})
}
