package profile

import (
	"errors"
	"net/http"

	familydomain "happi-app-go/internal/domain/family"
	userdomain "happi-app-go/internal/domain/user"
	"happi-app-go/internal/transport/httpserver/flash"
	"happi-app-go/internal/transport/httpserver/handler/common"
	"happi-app-go/internal/transport/httpserver/middleware"
)

const recentEntries = 5

type deleteAccountRequest struct {
	Password string `json:"password"`
}

func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	authUser, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}
	ctx := r.Context()

	user, err := h.Users.Get(ctx, authUser.ID)
	if err != nil {
		h.internal(w, "profile.index: load user failed", err, authUser.ID)
		return
	}
	policies, err := h.Insurance.ListPolicies(ctx, user.ID)
	if err != nil {
		h.internal(w, "profile.index: list policies failed", err, user.ID)
		return
	}
	vehicles, err := h.Vehicles.List(ctx, user.ID)
	if err != nil {
		h.internal(w, "profile.index: list vehicles failed", err, user.ID)
		return
	}
	family, err := h.Families.Overview(ctx, user.ID)
	if err != nil {
		h.internal(w, "profile.index: family overview failed", err, user.ID)
		return
	}
	payments, err := h.Ledger.RecentPayments(ctx, user.ID, recentEntries)
	if err != nil {
		h.internal(w, "profile.index: recent payments failed", err, user.ID)
		return
	}
	coins, err := h.Ledger.RecentCoinEntries(ctx, user.ID, recentEntries)
	if err != nil {
		h.internal(w, "profile.index: recent coin entries failed", err, user.ID)
		return
	}

	groups := []familydomain.Group{}
	if family.Group != nil {
		groups = append(groups, *family.Group)
	}

	common.Render(w, r, "Profile/Index", common.Props{
		"user":              user,
		"insurances":        policies,
		"vehicles":          vehicles,
		"familyGroups":      groups,
		"familyMembers":     family.Members,
		"familyInvitations": family.PendingInvitations,
		"transactions":      payments,
		"coinTransactions":  coins,
	})
}

func (h *Handlers) Edit(w http.ResponseWriter, r *http.Request) {
	authUser, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}

	user, err := h.Users.Get(r.Context(), authUser.ID)
	if err != nil {
		h.internal(w, "profile.edit: load user failed", err, authUser.ID)
		return
	}

	common.Render(w, r, "Profile/Edit", common.Props{"user": user})
}

func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	authUser, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}

	var req userdomain.ProfileInput
	if err := common.DecodeJSON(r, &req); err != nil {
		common.InvalidJSON(w)
		return
	}

	if _, err := h.Users.UpdateProfile(r.Context(), authUser.ID, req); err != nil {
		if common.ValidationFailed(w, err) {
			h.log.BusinessError("profile.update: validation failed", err, "user_id", authUser.ID)
			return
		}
		h.internal(w, "profile.update: update failed", err, authUser.ID)
		return
	}

	common.Redirect(w, r, "/profile/edit", flash.Success("Profile updated successfully."))
}

func (h *Handlers) Destroy(w http.ResponseWriter, r *http.Request) {
	authUser, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}

	var req deleteAccountRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.InvalidJSON(w)
		return
	}

	if err := h.Users.DeleteAccount(r.Context(), authUser.ID, req.Password); err != nil {
		switch {
		case common.ValidationFailed(w, err):
			h.log.BusinessError("profile.destroy: password rejected", err, "user_id", authUser.ID)
		case errors.Is(err, userdomain.ErrUserNotFound):
			h.log.BusinessError("profile.destroy: user not found", err, "user_id", authUser.ID)
			h.cookie.Clear(w)
			common.Redirect(w, r, "/login", flash.Flash{})
		default:
			h.internal(w, "profile.destroy: delete failed", err, authUser.ID)
		}
		return
	}

	h.log.Info("profile.destroy: account deleted", "user_id", authUser.ID)
	h.cookie.Clear(w)
	common.Redirect(w, r, "/login", flash.Success("Your account has been deleted."))
}

func (h *Handlers) internal(w http.ResponseWriter, event string, err error, userID string) {
	h.log.InternalError(event, err, "user_id", userID)
	common.Internal(w)
}
