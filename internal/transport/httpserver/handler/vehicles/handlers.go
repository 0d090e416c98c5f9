package vehicles

import (
	vehiclesdomain "happi-app-go/internal/domain/vehicles"
	"happi-app-go/pkg/logger"
)

type Handlers struct {
	Vehicles       *vehiclesdomain.Service
	maxUploadBytes int64
	log            logger.Logger
}

func New(vehicles *vehiclesdomain.Service, maxUploadBytes int64, log logger.Logger) *Handlers {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 5 * 1024 * 1024
	}
	return &Handlers{
		Vehicles:       vehicles,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}
