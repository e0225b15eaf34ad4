package account

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/solstice-id/solstice/internal/platform/httpx"
	"github.com/solstice-id/solstice/internal/shared"
)

// Handler manages the administrative account endpoints. The auth and role
// middlewares are injected by the router to keep this package independent of
// the token layer.
type Handler struct {
	logger       *slog.Logger
	service      *Service
	requireAuth  func(http.Handler) http.Handler
	requireAdmin func(http.Handler) http.Handler
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, requireAuth, requireAdmin func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, service: service, requireAuth: requireAuth, requireAdmin: requireAdmin}
}

// MountRoutes registers account management routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Use(h.requireAdmin)

		r.Get("/", h.listAccounts)
		r.Get("/{publicID}", h.getAccount)
		r.Patch("/{publicID}", h.updateAccount)
		r.Post("/{publicID}/enable", h.enableAccount)
		r.Post("/{publicID}/disable", h.disableAccount)
		r.Delete("/{publicID}", h.deleteAccount)
	})
}

type listResponse struct {
	Accounts   []Account         `json:"accounts"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromRequest(r)
	accounts, meta, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if accounts == nil {
		accounts = []Account{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Accounts: accounts, Pagination: meta})
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	publicID, ok := h.parseID(w, r)
	if !ok {
		return
	}
	acc, err := h.service.Get(r.Context(), publicID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, acc)
}

type updateRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	publicID, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body", "validation_failed")
		return
	}

	acc, err := h.service.UpdateProfile(r.Context(), publicID, ProfileUpdate{FullName: req.FullName, Phone: req.Phone})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, acc)
}

func (h *Handler) enableAccount(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.Enable)
}

func (h *Handler) disableAccount(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.Disable)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id uuid.UUID) error) {
	publicID, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := action(r.Context(), publicID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	acc, err := h.service.Get(r.Context(), publicID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, acc)
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	publicID, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.SoftDelete(r.Context(), publicID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	publicID, err := uuid.Parse(chi.URLParam(r, "publicID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id", "validation_failed")
		return uuid.UUID{}, false
	}
	return publicID, true
}
