package insurance

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	catalogdomain "happi-app-go/internal/domain/catalog"
	insurancedomain "happi-app-go/internal/domain/insurance"
	"happi-app-go/internal/domain/ledger"
	vehiclesdomain "happi-app-go/internal/domain/vehicles"
	"happi-app-go/internal/transport/httpserver/flash"
	"happi-app-go/internal/transport/httpserver/handler/common"
	"happi-app-go/internal/transport/httpserver/middleware"
)

const (
	indexPath   = "/insurance"
	profilePath = "/profile"
)

type purchaseRequest struct {
	ProductID string  `json:"product_id"`
	VehicleID *string `json:"vehicle_id"`
	ledger.PaymentDetails
}

func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Catalog.ListCategories(r.Context())
	if err != nil {
		h.log.InternalError("insurance.index: list categories failed", err)
		common.Internal(w)
		return
	}
	featured, err := h.Catalog.FeaturedProducts(r.Context())
	if err != nil {
		h.log.InternalError("insurance.index: featured products failed", err)
		common.Internal(w)
		return
	}

	common.Render(w, r, "Insurance/Index", common.Props{
		"categories":       categories,
		"featuredProducts": featured,
	})
}

func (h *Handlers) Category(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	category, err := h.Catalog.CategoryWithProducts(r.Context(), slug)
	if err != nil {
		h.writeLookupError(w, "insurance.category", err, "slug", slug)
		return
	}

	common.Render(w, r, "Insurance/Category", common.Props{
		"category": category,
		"products": category.Products,
	})
}

func (h *Handlers) Product(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")

	page, err := h.Insurance.ProductPage(r.Context(), user.ID, id)
	if err != nil {
		h.writeLookupError(w, "insurance.product", err, "user_id", user.ID, "product_id", id)
		return
	}

	common.Render(w, r, "Insurance/Product", common.Props{
		"product":  page.Product,
		"vehicles": page.Vehicles,
	})
}

func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")
	vehicleID := common.OptionalString(r.URL.Query().Get("vehicle"))

	page, err := h.Insurance.Checkout(r.Context(), user.ID, id, vehicleID)
	if err != nil {
		h.writeLookupError(w, "insurance.checkout", err, "user_id", user.ID, "product_id", id)
		return
	}

	common.Render(w, r, "Insurance/Checkout", common.Props{
		"product":  page.Product,
		"vehicle":  page.Vehicle,
		"vehicles": page.Vehicles,
	})
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

	result, err := h.Insurance.Purchase(r.Context(), user.ID, req.ProductID, req.VehicleID, req.PaymentDetails)
	if err != nil {
		h.writeWorkflowError(w, r, "insurance.purchase", err, "user_id", user.ID, "product_id", req.ProductID)
		return
	}

	h.log.Info("insurance.purchase: policy created",
		"user_id", user.ID,
		"policy_id", result.Policy.ID,
		"policy_number", result.Policy.PolicyNumber,
		"coins", result.CoinsAwarded,
	)
	common.Redirect(w, r, profilePath, flash.Success("Insurance policy purchased successfully."))
}

func (h *Handlers) RenewPage(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")

	policy, err := h.Insurance.RenewPage(r.Context(), user.ID, id)
	if err != nil {
		h.writeLookupError(w, "insurance.renew_page", err, "user_id", user.ID, "policy_id", id)
		return
	}

	common.Render(w, r, "Insurance/Renew", common.Props{
		"policy": policy,
	})
}

func (h *Handlers) Renew(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")

	var payment ledger.PaymentDetails
	if err := common.DecodeJSON(r, &payment); err != nil {
		common.InvalidJSON(w)
		return
	}

	result, err := h.Insurance.Renew(r.Context(), user.ID, id, payment)
	if err != nil {
		h.writeWorkflowError(w, r, "insurance.renew", err, "user_id", user.ID, "policy_id", id)
		return
	}

	h.log.Info("insurance.renew: policy renewed",
		"user_id", user.ID,
		"policy_id", result.Policy.ID,
		"expires_at", result.Policy.ExpiresAt,
		"coins", result.CoinsAwarded,
	)
	common.Redirect(w, r, profilePath, flash.Success("Insurance policy renewed successfully."))
}

func isNotFound(err error) bool {
	return errors.Is(err, catalogdomain.ErrCategoryNotFound) ||
		errors.Is(err, catalogdomain.ErrProductNotFound) ||
		errors.Is(err, vehiclesdomain.ErrVehicleNotFound) ||
		errors.Is(err, insurancedomain.ErrPolicyNotFound)
}

func (h *Handlers) writeLookupError(w http.ResponseWriter, event string, err error, kv ...any) {
	if isNotFound(err) {
		h.log.BusinessError(event+": not found", err, kv...)
		common.NotFound(w, "not_found", err.Error())
		return
	}
	h.log.InternalError(event+": lookup failed", err, kv...)
	common.Internal(w)
}

// writeWorkflowError maps purchase and renewal failures. Policy number
// collisions are reported back on the checkout page since nothing was stored.
func (h *Handlers) writeWorkflowError(w http.ResponseWriter, r *http.Request, event string, err error, kv ...any) {
	switch {
	case common.ValidationFailed(w, err):
		h.log.BusinessError(event+": validation failed", err, kv...)
	case isNotFound(err):
		h.log.BusinessError(event+": not found", err, kv...)
		common.NotFound(w, "not_found", err.Error())
	case errors.Is(err, insurancedomain.ErrPolicyNumberTaken), errors.Is(err, insurancedomain.ErrPolicyNumberExhausted):
		h.log.BusinessError(event+": policy number unavailable", err, kv...)
		common.Back(w, r, indexPath, flash.Error("We could not issue a policy number. Please try again."))
	default:
		h.log.InternalError(event+": failed", err, kv...)
		common.Internal(w)
	}
}
