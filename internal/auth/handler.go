package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"

	"github.com/solstice-id/solstice/internal/account"
	"github.com/solstice-id/solstice/internal/observability"
	"github.com/solstice-id/solstice/internal/platform/httpx"
	"github.com/solstice-id/solstice/internal/shared"
)

// Handler wires HTTP endpoints for the authentication flows.
type Handler struct {
	logger  *slog.Logger
	service *Service
	mw      *Middleware
	metrics *observability.Metrics
}

// NewHandler constructs a Handler instance. metrics may be nil.
func NewHandler(logger *slog.Logger, service *Service, mw *Middleware, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, mw: mw, metrics: metrics}
}

// MountRoutes registers auth routes on the provided router. Credential-taking
// endpoints are rate limited per client IP.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/refresh", h.handleRefresh)
	r.Post("/reset-password", h.handleResetPassword)

	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		r.Post("/login", h.handleLogin)
		r.Post("/forgot-password", h.handleForgotPassword)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAuth)
		r.Get("/me", h.handleMe)
		r.Post("/change-password", h.handleChangePassword)
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var input RegisterInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body", "validation_failed")
		return
	}

	acc, err := h.service.Register(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, acc)
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Account *account.Account `json:"account"`
	Token   string           `json:"token"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body", "validation_failed")
		return
	}

	result, err := h.service.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		h.metrics.ObserveLogin("failure")
		httpx.RespondError(w, err)
		return
	}
	h.metrics.ObserveLogin("success")
	httpx.JSON(w, http.StatusOK, loginResponse{Account: result.Account, Token: result.Token})
}

type refreshRequest struct {
	Token string `json:"token"`
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body", "validation_failed")
		return
	}
	if req.Token == "" {
		req.Token = r.Header.Get("Authorization")
	}

	refreshed, err := h.service.RefreshToken(req.Token)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"token": refreshed})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Email == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "email is required", "validation_failed")
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		h.logger.Error("forgot password", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "", "internal")
		return
	}
	// Identical response whether or not the email is registered.
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "if the email is registered, a code has been sent"})
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body", "validation_failed")
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := shared.ClaimsFromContext(r.Context())
	publicID, err := uuid.Parse(claims.Subject)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid subject claim", "token_invalid")
		return
	}

	var req changePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body", "validation_failed")
		return
	}

	if err := h.service.ChangePassword(r.Context(), publicID, req.OldPassword, req.NewPassword); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := shared.ClaimsFromContext(r.Context())
	publicID, err := uuid.Parse(claims.Subject)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid subject claim", "token_invalid")
		return
	}

	acc, err := h.service.Account(r.Context(), publicID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, acc)
}
