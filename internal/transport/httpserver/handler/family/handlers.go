package family

import (
	familydomain "happi-app-go/internal/domain/family"
	"happi-app-go/pkg/logger"
)

type Handlers struct {
	Families *familydomain.Service
	log      logger.Logger
}

func New(families *familydomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Families: families,
		log:      log,
	}
}
