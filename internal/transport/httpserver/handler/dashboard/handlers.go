package dashboard

import (
	insurancedomain "happi-app-go/internal/domain/insurance"
	notificationsdomain "happi-app-go/internal/domain/notifications"
	"happi-app-go/pkg/logger"
)

type Handlers struct {
	Insurance     *insurancedomain.Service
	Notifications *notificationsdomain.Service
	log           logger.Logger
}

func New(insurance *insurancedomain.Service, notifications *notificationsdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Insurance:     insurance,
		Notifications: notifications,
		log:           log,
	}
}
