package auth

import (
	"errors"
	"net/http"

	userdomain "happi-app-go/internal/domain/user"
	"happi-app-go/internal/transport/httpserver/flash"
	"happi-app-go/internal/transport/httpserver/handler/common"
	"happi-app-go/internal/validation"
)

const homePath = "/dashboard"

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
}

func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	common.Render(w, r, "Auth/Login", nil)
}

func (h *Handlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	common.Render(w, r, "Auth/Register", nil)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.InvalidJSON(w)
		return
	}
	if common.ValidationFailed(w, validation.Struct(req)) {
		return
	}

	user, err := h.Users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, userdomain.ErrInvalidCredentials) {
			h.log.BusinessError("auth.login: invalid credentials", err)
			common.WriteValidation(w, validation.Errors{"email": "These credentials do not match our records."})
			return
		}
		h.log.InternalError("auth.login: authenticate failed", err)
		common.Internal(w)
		return
	}

	if !h.startSession(w, user) {
		return
	}
	common.Redirect(w, r, homePath, flash.Flash{})
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req userdomain.RegisterInput
	if err := common.DecodeJSON(r, &req); err != nil {
		common.InvalidJSON(w)
		return
	}

	user, err := h.Users.Register(r.Context(), req)
	if err != nil {
		if common.ValidationFailed(w, err) {
			h.log.BusinessError("auth.register: validation failed", err)
			return
		}
		h.log.InternalError("auth.register: create user failed", err)
		common.Internal(w)
		return
	}

	h.log.Info("auth.register: user registered", "user_id", user.ID)
	if !h.startSession(w, user) {
		return
	}
	common.Redirect(w, r, homePath, flash.Success("Welcome to HappiCover!"))
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookie.Clear(w)
	common.Redirect(w, r, "/login", flash.Flash{})
}

func (h *Handlers) startSession(w http.ResponseWriter, user *userdomain.User) bool {
	token, expiresAt, err := h.Sessions.Issue(user.ID, user.Email)
	if err != nil {
		h.log.InternalError("auth.session: issue failed", err, "user_id", user.ID)
		common.Internal(w)
		return false
	}
	h.cookie.Set(w, token, expiresAt)
	return true
}
