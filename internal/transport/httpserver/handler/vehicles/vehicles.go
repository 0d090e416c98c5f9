package vehicles

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	vehiclesdomain "happi-app-go/internal/domain/vehicles"
	"happi-app-go/internal/transport/httpserver/flash"
	"happi-app-go/internal/transport/httpserver/handler/common"
	"happi-app-go/internal/transport/httpserver/middleware"
)

const indexPath = "/vehicles"

func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}

	list, err := h.Vehicles.List(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("vehicles.index: list failed", err, "user_id", user.ID)
		common.Internal(w)
		return
	}

	common.Render(w, r, "Vehicles/Index", common.Props{"vehicles": list})
}

func (h *Handlers) CreatePage(w http.ResponseWriter, r *http.Request) {
	common.Render(w, r, "Vehicles/Create", nil)
}

func (h *Handlers) Store(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}

	input, image, err := h.decodeVehicle(w, r)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	vehicle, err := h.Vehicles.Create(r.Context(), user.ID, input, image)
	if err != nil {
		if common.ValidationFailed(w, err) {
			h.log.BusinessError("vehicles.store: validation failed", err, "user_id", user.ID)
			return
		}
		h.log.InternalError("vehicles.store: create failed", err, "user_id", user.ID)
		common.Internal(w)
		return
	}

	h.log.Info("vehicles.store: vehicle added", "user_id", user.ID, "vehicle_id", vehicle.ID)
	common.Redirect(w, r, indexPath, flash.Success("Vehicle added successfully."))
}

func (h *Handlers) Show(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")

	detail, err := h.Vehicles.Get(r.Context(), user.ID, id)
	if err != nil {
		h.writeLookupError(w, "vehicles.show", err, user.ID, id)
		return
	}

	common.Render(w, r, "Vehicles/Show", common.Props{
		"vehicle":    detail.Vehicle,
		"insurances": detail.ActivePolicies,
	})
}

func (h *Handlers) Edit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")

	vehicle, err := h.Vehicles.Owned(r.Context(), user.ID, id)
	if err != nil {
		h.writeLookupError(w, "vehicles.edit", err, user.ID, id)
		return
	}

	common.Render(w, r, "Vehicles/Edit", common.Props{"vehicle": vehicle})
}

func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")

	input, image, err := h.decodeVehicle(w, r)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	if _, err := h.Vehicles.Update(r.Context(), user.ID, id, input, image); err != nil {
		if common.ValidationFailed(w, err) {
			h.log.BusinessError("vehicles.update: validation failed", err, "user_id", user.ID, "vehicle_id", id)
			return
		}
		h.writeLookupError(w, "vehicles.update", err, user.ID, id)
		return
	}

	common.Redirect(w, r, indexPath, flash.Success("Vehicle updated successfully."))
}

func (h *Handlers) Destroy(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.Vehicles.Delete(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, vehiclesdomain.ErrVehicleHasActivePolicy) {
			h.log.BusinessError("vehicles.destroy: vehicle has active policy", err, "user_id", user.ID, "vehicle_id", id)
			common.Back(w, r, indexPath, flash.Error("Cannot delete a vehicle with active insurance policies."))
			return
		}
		h.writeLookupError(w, "vehicles.destroy", err, user.ID, id)
		return
	}

	h.log.Info("vehicles.destroy: vehicle deleted", "user_id", user.ID, "vehicle_id", id)
	common.Redirect(w, r, indexPath, flash.Success("Vehicle deleted successfully."))
}

func (h *Handlers) writeLookupError(w http.ResponseWriter, event string, err error, userID, vehicleID string) {
	if errors.Is(err, vehiclesdomain.ErrVehicleNotFound) {
		h.log.BusinessError(event+": vehicle not found", err, "user_id", userID, "vehicle_id", vehicleID)
		common.NotFound(w, "vehicle_not_found", "vehicle not found")
		return
	}
	h.log.InternalError(event+": failed", err, "user_id", userID, "vehicle_id", vehicleID)
	common.Internal(w)
}
