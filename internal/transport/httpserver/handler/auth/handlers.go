package auth

import (
	sessionauth "happi-app-go/internal/auth"
	userdomain "happi-app-go/internal/domain/user"
	"happi-app-go/internal/transport/httpserver/handler/common"
	"happi-app-go/pkg/logger"
)

type Handlers struct {
	Users    *userdomain.Service
	Sessions *sessionauth.Sessions
	cookie   common.SessionCookie
	log      logger.Logger
}

func New(users *userdomain.Service, sessions *sessionauth.Sessions, cookie common.SessionCookie, log logger.Logger) *Handlers {
	return &Handlers{
		Users:    users,
		Sessions: sessions,
		cookie:   cookie,
		log:      log,
	}
}
