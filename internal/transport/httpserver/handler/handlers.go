package handler

import (
	authhandler "happi-app-go/internal/transport/httpserver/handler/auth"
	"happi-app-go/internal/transport/httpserver/handler/common"
	dashboardhandler "happi-app-go/internal/transport/httpserver/handler/dashboard"
	familyhandler "happi-app-go/internal/transport/httpserver/handler/family"
	insurancehandler "happi-app-go/internal/transport/httpserver/handler/insurance"
	membershiphandler "happi-app-go/internal/transport/httpserver/handler/membership"
	profilehandler "happi-app-go/internal/transport/httpserver/handler/profile"
	vehicleshandler "happi-app-go/internal/transport/httpserver/handler/vehicles"
)

type Handlers struct {
	Common     *common.Handlers
	Auth       *authhandler.Handlers
	Dashboard  *dashboardhandler.Handlers
	Insurance  *insurancehandler.Handlers
	Membership *membershiphandler.Handlers
	Profile    *profilehandler.Handlers
	Vehicles   *vehicleshandler.Handlers
	Family     *familyhandler.Handlers
}
