package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/andymarkow/pandero/internal/auth"
	"github.com/andymarkow/pandero/internal/errmsg"
	"github.com/andymarkow/pandero/internal/server/models"
)

// UserLogin issues a member token for an existing user id.
func (h *Handlers) UserLogin(w http.ResponseWriter, r *http.Request) {
	var payload models.UserLoginRequest

	if !h.decodeJSON(w, r, &payload) {
		return
	}

	usr, err := h.storage.GetUser(r.Context(), payload.ID)
	if err != nil {
		h.handleStorageError(w, "storage.GetUser()", err)

		return
	}

	h.issueToken(w, usr.ID, auth.RoleMember)
}

func (h *Handlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var payload models.AdminLoginRequest

	if !h.decodeJSON(w, r, &payload) {
		return
	}

	if h.admin == nil {
		h.log.Error("admin login attempted without credentials configured")
		handleError(w, errmsg.ErrAdminCredentialsInvalid)

		return
	}

	if err := h.admin.Verify(payload.Password); err != nil {
		h.log.Error("admin.Verify()", slog.Any("error", err))

		if errors.Is(err, auth.ErrAdminPasswordInvalid) {
			handleError(w, errmsg.ErrAdminCredentialsInvalid)

			return
		}

		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	h.issueToken(w, string(auth.RoleAdmin), auth.RoleAdmin)
}

func (h *Handlers) issueToken(w http.ResponseWriter, sub string, role auth.Role) {
	token, err := h.auth.CreateJWTString(sub, role)
	if err != nil {
		h.log.Error("auth.CreateJWTString()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	handleJSONResponse(w, http.StatusOK, models.TokenResponse{Token: token})
}
