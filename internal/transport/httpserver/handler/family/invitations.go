package family

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	familydomain "happi-app-go/internal/domain/family"
	"happi-app-go/internal/transport/httpserver/flash"
	"happi-app-go/internal/transport/httpserver/handler/common"
	"happi-app-go/internal/transport/httpserver/middleware"
)

func (h *Handlers) InvitePage(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}

	group, err := h.Families.OwnedGroup(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, familydomain.ErrGroupNotFound) {
			h.log.BusinessError("family.invite_page: user owns no group", err, "user_id", user.ID)
			common.NotFound(w, "family_group_not_found", "family group not found")
			return
		}
		h.log.InternalError("family.invite_page: load group failed", err, "user_id", user.ID)
		common.Internal(w)
		return
	}

	common.Render(w, r, "Family/Invite", common.Props{"familyGroup": group})
}

func (h *Handlers) Invite(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}

	var req familydomain.InviteInput
	if err := common.DecodeJSON(r, &req); err != nil {
		common.InvalidJSON(w)
		return
	}

	invitation, err := h.Families.Invite(r.Context(), user.ID, req)
	if err != nil {
		switch {
		case common.ValidationFailed(w, err):
			h.log.BusinessError("family.invite: validation failed", err, "user_id", user.ID)
		case errors.Is(err, familydomain.ErrGroupNotFound):
			h.log.BusinessError("family.invite: user owns no group", err, "user_id", user.ID)
			common.NotFound(w, "family_group_not_found", "family group not found")
		case errors.Is(err, familydomain.ErrAlreadyMember):
			h.log.BusinessError("family.invite: already a member", err, "user_id", user.ID)
			common.Back(w, r, indexPath, flash.Error("This email is already a member of your family group."))
		case errors.Is(err, familydomain.ErrInvitationPending):
			h.log.BusinessError("family.invite: invitation pending", err, "user_id", user.ID)
			common.Back(w, r, indexPath, flash.Error("An invitation has already been sent to this email."))
		default:
			h.log.InternalError("family.invite: create invitation failed", err, "user_id", user.ID)
			common.Internal(w)
		}
		return
	}

	h.log.Info("family.invite: invitation sent", "user_id", user.ID, "invitation_id", invitation.ID)
	common.Redirect(w, r, indexPath, flash.Success("Invitation sent successfully."))
}

func (h *Handlers) CancelInvitation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.Families.CancelInvitation(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, familydomain.ErrGroupNotFound) || errors.Is(err, familydomain.ErrInvitationNotFound) {
			h.log.BusinessError("family.cancel_invitation: invitation not found", err, "user_id", user.ID, "invitation_id", id)
			common.NotFound(w, "invitation_not_found", "invitation not found")
			return
		}
		h.log.InternalError("family.cancel_invitation: cancel failed", err, "user_id", user.ID, "invitation_id", id)
		common.Internal(w)
		return
	}

	common.Back(w, r, indexPath, flash.Success("Invitation cancelled successfully."))
}

// Join is public; a signed in caller learns whether the invitation is theirs.
func (h *Handlers) Join(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	view, err := h.Families.Join(r.Context(), token, viewer(r))
	if err != nil {
		if errors.Is(err, familydomain.ErrInvitationNotFound) {
			h.log.BusinessError("family.join: invitation not found", err)
			common.NotFound(w, "invitation_not_found", "invitation not found")
			return
		}
		h.log.InternalError("family.join: load invitation failed", err)
		common.Internal(w)
		return
	}

	common.Render(w, r, "Family/Join", common.Props{
		"invitation":  view.Invitation,
		"familyGroup": view.Group,
		"userMatches": view.UserMatches,
	})
}

func (h *Handlers) Accept(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	caller := viewer(r)

	group, err := h.Families.Accept(r.Context(), token, caller)
	if err != nil {
		switch {
		case errors.Is(err, familydomain.ErrInvitationNotFound):
			h.log.BusinessError("family.accept: invitation not found", err)
			common.NotFound(w, "invitation_not_found", "invitation not found")
		case errors.Is(err, familydomain.ErrEmailMismatch):
			h.log.BusinessError("family.accept: email mismatch", err)
			common.Redirect(w, r, "/login", flash.Error("You must be logged in with the invited email address to accept this invitation."))
		case errors.Is(err, familydomain.ErrAlreadyInGroup):
			h.log.BusinessError("family.accept: user already in group", err, "user_id", caller.UserID)
			common.Redirect(w, r, indexPath, flash.Error("You already have or belong to a family group."))
		default:
			h.log.InternalError("family.accept: accept failed", err)
			common.Internal(w)
		}
		return
	}

	h.log.Info("family.accept: joined group", "user_id", caller.UserID, "family_group_id", group.ID)
	common.Redirect(w, r, indexPath, flash.Success("You have joined the family group successfully."))
}

func viewer(r *http.Request) *familydomain.Viewer {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return nil
	}
	return &familydomain.Viewer{UserID: user.ID, Email: user.Email}
}
