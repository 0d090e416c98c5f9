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

const indexPath = "/family"

func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}

	overview, err := h.Families.Overview(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("family.index: overview failed", err, "user_id", user.ID)
		common.Internal(w)
		return
	}

	common.Render(w, r, "Family/Index", overviewProps(overview))
}

func (h *Handlers) CreatePage(w http.ResponseWriter, r *http.Request) {
	common.Render(w, r, "Family/Create", nil)
}

func (h *Handlers) Store(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}

	var req familydomain.CreateGroupInput
	if err := common.DecodeJSON(r, &req); err != nil {
		common.InvalidJSON(w)
		return
	}

	group, err := h.Families.CreateGroup(r.Context(), user.ID, req)
	if err != nil {
		switch {
		case common.ValidationFailed(w, err):
			h.log.BusinessError("family.store: validation failed", err, "user_id", user.ID)
		case errors.Is(err, familydomain.ErrAlreadyInGroup):
			h.log.BusinessError("family.store: user already in group", err, "user_id", user.ID)
			common.Back(w, r, indexPath, flash.Error("You already have or belong to a family group."))
		default:
			h.log.InternalError("family.store: create group failed", err, "user_id", user.ID)
			common.Internal(w)
		}
		return
	}

	h.log.Info("family.store: group created", "user_id", user.ID, "family_group_id", group.ID)
	common.Redirect(w, r, indexPath, flash.Success("Family group created successfully."))
}

func (h *Handlers) Show(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")

	overview, err := h.Families.Show(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, familydomain.ErrGroupNotFound) {
			h.log.BusinessError("family.show: group not found", err, "user_id", user.ID, "family_group_id", id)
			common.NotFound(w, "family_group_not_found", "family group not found")
			return
		}
		h.log.InternalError("family.show: overview failed", err, "user_id", user.ID, "family_group_id", id)
		common.Internal(w)
		return
	}

	common.Render(w, r, "Family/Show", overviewProps(overview))
}

func (h *Handlers) UpdateMember(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")

	var req familydomain.UpdateMemberInput
	if err := common.DecodeJSON(r, &req); err != nil {
		common.InvalidJSON(w)
		return
	}

	if _, err := h.Families.UpdateMember(r.Context(), user.ID, id, req); err != nil {
		if common.ValidationFailed(w, err) {
			h.log.BusinessError("family.update_member: validation failed", err, "user_id", user.ID, "member_id", id)
			return
		}
		h.writeMemberError(w, r, "family.update_member", err, user.ID, id)
		return
	}

	common.Back(w, r, indexPath, flash.Success("Member updated successfully."))
}

func (h *Handlers) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.Families.RemoveMember(r.Context(), user.ID, id); err != nil {
		h.writeMemberError(w, r, "family.remove_member", err, user.ID, id)
		return
	}

	h.log.Info("family.remove_member: member removed", "user_id", user.ID, "member_id", id)
	common.Back(w, r, indexPath, flash.Success("Member removed successfully."))
}

func (h *Handlers) writeMemberError(w http.ResponseWriter, r *http.Request, event string, err error, userID, memberID string) {
	switch {
	case errors.Is(err, familydomain.ErrGroupNotFound), errors.Is(err, familydomain.ErrMemberNotFound):
		h.log.BusinessError(event+": member not found", err, "user_id", userID, "member_id", memberID)
		common.NotFound(w, "member_not_found", "member not found")
	case errors.Is(err, familydomain.ErrCannotChangeOwner):
		h.log.BusinessError(event+": owner row is fixed", err, "user_id", userID, "member_id", memberID)
		common.Back(w, r, indexPath, flash.Error("The family group owner cannot be changed or removed."))
	default:
		h.log.InternalError(event+": failed", err, "user_id", userID, "member_id", memberID)
		common.Internal(w)
	}
}

func overviewProps(overview *familydomain.Overview) common.Props {
	return common.Props{
		"familyGroup": overview.Group,
		"members":     overview.Members,
		"invitations": overview.PendingInvitations,
		"isOwner":     overview.IsOwner,
	}
}
