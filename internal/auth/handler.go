package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"findr/backend/internal/httpx"
)

// Handler exposes the account and employer-profile endpoints.
type Handler struct {
	svc *Service
	mw  *Middleware
}

func NewHandler(svc *Service, mw *Middleware) *Handler {
	return &Handler{svc: svc, mw: mw}
}

// RegisterRoutes mounts the auth endpoints on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/auth/signup", h.signup)
	mux.HandleFunc("POST /api/v1/auth/login", h.login)
	mux.HandleFunc("POST /api/v1/auth/forgot-password", h.forgotPassword)
	mux.HandleFunc("POST /api/v1/auth/validate-reset-token", h.validateResetToken)
	mux.HandleFunc("POST /api/v1/auth/reset-password", h.resetPassword)
	mux.HandleFunc("GET /api/v1/employer/profile", h.mw.RequireRole(RoleEmployer, h.employerProfile))
	mux.HandleFunc("PUT /api/v1/employer/profile", h.mw.RequireRole(RoleEmployer, h.updateEmployerProfile))
}

func (h *Handler) employerProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := FromContext(r.Context())
	e, err := h.svc.EmployerProfile(r.Context(), id.ID)
	if errors.Is(err, ErrEmployerNotFound) {
		httpx.Error(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "could not load employer profile")
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) updateEmployerProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := FromContext(r.Context())
	var in EmployerProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	e, err := h.svc.UpdateEmployerProfile(r.Context(), id.ID, in)
	if errors.Is(err, ErrEmployerNotFound) {
		httpx.Error(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "could not update employer profile")
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var in SignupInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	session, err := h.svc.Signup(r.Context(), in)
	if errors.Is(err, ErrEmailTaken) {
		httpx.Error(w, http.StatusConflict, err.Error())
		return
	}
	if errors.Is(err, ErrInvalidCredentials) {
		httpx.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "could not create account")
		return
	}
	httpx.JSON(w, http.StatusCreated, session)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	session, err := h.svc.Login(r.Context(), in)
	if errors.Is(err, ErrInvalidCredentials) {
		httpx.Error(w, http.StatusUnauthorized, err.Error())
		return
	}
	if errors.Is(err, ErrAccountBlocked) {
		httpx.Error(w, http.StatusForbidden, err.Error())
		return
	}
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "could not log in")
		return
	}
	httpx.JSON(w, http.StatusOK, session)
}

type resetRequest struct {
	Email       string `json:"email"`
	Role        string `json:"role"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (r resetRequest) role() string {
	if r.Role == "" {
		return RoleJobseeker
	}
	return r.Role
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var in resetRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.svc.ForgotPassword(r.Context(), in.Email, in.role()); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "could not process request")
		return
	}
	// Deliberately identical response whether or not the email exists.
	httpx.JSON(w, http.StatusOK, map[string]string{
		"message": "if an account exists for this email, a reset link has been sent",
	})
}

func (h *Handler) validateResetToken(w http.ResponseWriter, r *http.Request) {
	var in resetRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.svc.ValidateResetToken(r.Context(), in.Token, in.role()); err != nil {
		httpx.Error(w, http.StatusBadRequest, ErrInvalidResetToken.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var in resetRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	err := h.svc.ResetPassword(r.Context(), in.Token, in.role(), in.NewPassword)
	if errors.Is(err, ErrInvalidResetToken) {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if errors.Is(err, ErrInvalidCredentials) {
		httpx.Error(w, http.StatusBadRequest, "new password is required")
		return
	}
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "could not reset password")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}
