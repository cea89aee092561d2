package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"noticehub/internal/app/realtime"
	"noticehub/internal/pkg/errs"
	"noticehub/internal/pkg/limiter"
	"noticehub/internal/pkg/logx"
	"noticehub/internal/pkg/resp"
)

// HandleCable authorizes a subscription request and upgrades it to a WebSocket bound
// to the caller's notice channel. Browsers cannot set headers on WebSocket requests, so
// the token may also arrive as the "token" query parameter.
func HandleCable(deps *AppDeps, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)
		if !rateLimiter.Allow(ip) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			if token := r.URL.Query().Get("token"); token != "" {
				header = "Bearer " + token
			}
		}

		identity, err := deps.Authorizer.Identify(r.Context(), header)
		if err != nil {
			logx.Info("WebSocket connection rejected: unauthorized.", "kind", string(errs.KindOf(err)))
			resp.RespondError(w, r, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := realtime.NewClient(deps.Registry, conn, identity.User.ID, identity.ExpiresAt)
		client.Serve()
	}
}
