package dashboard

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	notificationsdomain "happi-app-go/internal/domain/notifications"
	"happi-app-go/internal/transport/httpserver/flash"
	"happi-app-go/internal/transport/httpserver/handler/common"
	"happi-app-go/internal/transport/httpserver/middleware"
)

const notificationsPath = "/notifications"

func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}

	page, err := h.Notifications.List(r.Context(), user.ID, common.PageParam(r))
	if err != nil {
		h.log.InternalError("notifications.list: list failed", err, "user_id", user.ID)
		common.Internal(w)
		return
	}

	unread, err := h.Notifications.UnreadCount(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("notifications.list: unread count failed", err, "user_id", user.ID)
		common.Internal(w)
		return
	}

	common.Render(w, r, "Notifications/Index", common.Props{
		"notifications": page,
		"unreadCount":   unread,
	})
}

func (h *Handlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.Notifications.MarkRead(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, notificationsdomain.ErrNotificationNotFound) {
			h.log.BusinessError("notifications.mark_read: notification not found", err, "user_id", user.ID, "notification_id", id)
			common.NotFound(w, "notification_not_found", "notification not found")
			return
		}
		h.log.InternalError("notifications.mark_read: update failed", err, "user_id", user.ID, "notification_id", id)
		common.Internal(w)
		return
	}

	common.Back(w, r, notificationsPath, flash.Success("Notification marked as read."))
}

func (h *Handlers) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}

	updated, err := h.Notifications.MarkAllRead(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("notifications.mark_all_read: update failed", err, "user_id", user.ID)
		common.Internal(w)
		return
	}

	h.log.Debug("notifications.mark_all_read: updated", "user_id", user.ID, "count", updated)
	common.Back(w, r, notificationsPath, flash.Success("All notifications marked as read."))
}
