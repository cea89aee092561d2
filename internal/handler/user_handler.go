package handler

import (
	"errors"
	"net/http"

	"noticehub/internal/app/auth"
	"noticehub/internal/app/user"
	"noticehub/internal/pkg/errs"
	"noticehub/internal/pkg/logx"
	"noticehub/internal/pkg/resp"
)

// HandleGetMe returns the authenticated user.
func HandleGetMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingToken))
			return
		}

		resp.RespondSuccess(w, r, u)
	}
}

// HandleDeleteMe deletes the authenticated user along with every notice they sent or received.
// Tokens already issued to them stop authorizing immediately, and their sockets on this
// node are closed.
func HandleDeleteMe(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingToken))
			return
		}

		if err := deps.Users.DeleteUser(r.Context(), u.ID); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				err = errs.NewError(errs.ErrTokenUserNotFound).Wrap(err)
			}
			resp.RespondError(w, r, err)
			return
		}

		closed := deps.Registry.Disconnect(u.ID)
		logx.Info("Account deleted.", "user_id", u.ID, "closed_connections", closed)
		resp.RespondSuccess(w, r, nil)
	}
}
