package handler

import (
	"noticehub/internal/app/auth"
	"noticehub/internal/app/notice"
	"noticehub/internal/app/realtime"
	"noticehub/internal/app/relay"
	"noticehub/internal/app/user"
	"noticehub/internal/configs"
)

// AppDeps is everything the HTTP layer needs, built once in main.
type AppDeps struct {
	Config        *configs.AppConfig
	Users         user.Repository
	Notices       *notice.Store
	Authenticator *auth.Authenticator
	Authorizer    *auth.Authorizer
	Registry      *realtime.Registry
	Dispatcher    *relay.Dispatcher
}
