package insurance

import (
	catalogdomain "happi-app-go/internal/domain/catalog"
	insurancedomain "happi-app-go/internal/domain/insurance"
	"happi-app-go/pkg/logger"
)

type Handlers struct {
	Catalog   *catalogdomain.Service
	Insurance *insurancedomain.Service
	log       logger.Logger
}

func New(catalog *catalogdomain.Service, insurance *insurancedomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Catalog:   catalog,
		Insurance: insurance,
		log:       log,
	}
}
