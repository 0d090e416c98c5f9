package vehicles

import "errors"

var (
	ErrVehicleNotFound        = errors.New("vehicle not found")
	ErrVehicleHasActivePolicy = errors.New("vehicle has an active policy")
)
