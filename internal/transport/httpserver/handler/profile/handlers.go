package profile

import (
	familydomain "happi-app-go/internal/domain/family"
	insurancedomain "happi-app-go/internal/domain/insurance"
	ledgerdomain "happi-app-go/internal/domain/ledger"
	userdomain "happi-app-go/internal/domain/user"
	vehiclesdomain "happi-app-go/internal/domain/vehicles"
	"happi-app-go/internal/transport/httpserver/handler/common"
	"happi-app-go/pkg/logger"
)

type Handlers struct {
	Users     *userdomain.Service
	Insurance *insurancedomain.Service
	Vehicles  *vehiclesdomain.Service
	Families  *familydomain.Service
	Ledger    *ledgerdomain.Service
	cookie    common.SessionCookie
	log       logger.Logger
}

func New(
	users *userdomain.Service,
	insurance *insurancedomain.Service,
	vehicles *vehiclesdomain.Service,
	families *familydomain.Service,
	ledger *ledgerdomain.Service,
	cookie common.SessionCookie,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Users:     users,
		Insurance: insurance,
		Vehicles:  vehicles,
		Families:  families,
		Ledger:    ledger,
		cookie:    cookie,
		log:       log,
	}
}
