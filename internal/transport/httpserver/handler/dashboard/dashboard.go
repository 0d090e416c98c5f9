package dashboard

import (
	"net/http"

	insurancedomain "happi-app-go/internal/domain/insurance"
	notificationsdomain "happi-app-go/internal/domain/notifications"
	"happi-app-go/internal/transport/httpserver/handler/common"
	"happi-app-go/internal/transport/httpserver/middleware"
)

const dashboardPolicies = 3

func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}

	policies, err := h.Insurance.ActivePolicies(r.Context(), user.ID, dashboardPolicies)
	if err != nil {
		h.log.InternalError("dashboard: active policies failed", err, "user_id", user.ID)
		common.Internal(w)
		return
	}

	expiring, err := h.Insurance.UpcomingExpirations(r.Context(), user.ID, insurancedomain.DefaultExpiryWindow)
	if err != nil {
		h.log.InternalError("dashboard: upcoming expirations failed", err, "user_id", user.ID)
		common.Internal(w)
		return
	}

	recent, err := h.Notifications.Recent(r.Context(), user.ID, notificationsdomain.RecentLimit)
	if err != nil {
		h.log.InternalError("dashboard: recent notifications failed", err, "user_id", user.ID)
		common.Internal(w)
		return
	}

	common.Render(w, r, "Dashboard", common.Props{
		"insurancePolicies":   policies,
		"upcomingExpirations": expiring,
		"notifications":       recent,
	})
}
