package membership

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	catalogdomain "happi-app-go/internal/domain/catalog"
	"happi-app-go/internal/domain/ledger"
	membershipdomain "happi-app-go/internal/domain/membership"
	"happi-app-go/internal/transport/httpserver/flash"
	"happi-app-go/internal/transport/httpserver/handler/common"
	"happi-app-go/internal/transport/httpserver/middleware"
)

type purchaseRequest struct {
	PlanID    string `json:"plan_id"`
	PromoCode string `json:"promo_code"`
	ledger.PaymentDetails
}

func (h *Handlers) Plans(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}

	overview, err := h.Membership.Overview(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("membership.plans: overview failed", err, "user_id", user.ID)
		common.Internal(w)
		return
	}

	common.Render(w, r, "Membership/Plans", common.Props{
		"plans":       overview.Plans,
		"currentPlan": overview.CurrentTier,
		"isActive":    overview.IsActive,
	})
}

func (h *Handlers) Details(w http.ResponseWriter, r *http.Request) {
	details, ok := h.details(w, r, "membership.details")
	if !ok {
		return
	}
	common.Render(w, r, "Membership/Details", common.Props{
		"plan":        details.Plan,
		"currentPlan": details.CurrentTier,
		"isCurrent":   details.IsCurrent,
	})
}

func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	details, ok := h.details(w, r, "membership.checkout")
	if !ok {
		return
	}
	common.Render(w, r, "Membership/Checkout", common.Props{
		"plan": details.Plan,
	})
}

func (h *Handlers) details(w http.ResponseWriter, r *http.Request, event string) (*membershipdomain.Details, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return nil, false
	}
	tier := chi.URLParam(r, "tier")

	details, err := h.Membership.Details(r.Context(), user.ID, tier)
	if err != nil {
		if errors.Is(err, catalogdomain.ErrPlanNotFound) {
			h.log.BusinessError(event+": plan not found", err, "user_id", user.ID, "tier", tier)
			common.NotFound(w, "plan_not_found", "membership plan not found")
			return nil, false
		}
		h.log.InternalError(event+": load plan failed", err, "user_id", user.ID, "tier", tier)
		common.Internal(w)
		return nil, false
	}
	return details, true
}

func (h *Handlers) Purchase(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}

	var req purchaseRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.InvalidJSON(w)
		return
	}

	result, err := h.Membership.Purchase(r.Context(), user.ID, req.PlanID, req.PromoCode, req.PaymentDetails)
	if err != nil {
		switch {
		case common.ValidationFailed(w, err):
			h.log.BusinessError("membership.purchase: validation failed", err, "user_id", user.ID)
		case errors.Is(err, catalogdomain.ErrPlanNotFound):
			h.log.BusinessError("membership.purchase: plan not found", err, "user_id", user.ID, "plan_id", req.PlanID)
			common.NotFound(w, "plan_not_found", "membership plan not found")
		default:
			h.log.InternalError("membership.purchase: purchase failed", err, "user_id", user.ID, "plan_id", req.PlanID)
			common.Internal(w)
		}
		return
	}

	h.log.Info("membership.purchase: membership updated",
		"user_id", user.ID,
		"tier", result.Plan.Tier,
		"amount", result.Payment.Amount.StringFixed(2),
		"coins", result.CoinsAwarded,
	)
	common.Redirect(w, r, "/profile", flash.Success("Membership purchased successfully."))
}
