package membership

import (
	membershipdomain "happi-app-go/internal/domain/membership"
	"happi-app-go/pkg/logger"
)

type Handlers struct {
	Membership *membershipdomain.Service
	log        logger.Logger
}

func New(membership *membershipdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Membership: membership,
		log:        log,
	}
}
