package auth

import (
	"context"
	"net/http"

	"noticehub/internal/app/user"
	"noticehub/internal/pkg/errs"
	"noticehub/internal/pkg/logx"
	"noticehub/internal/pkg/resp"
)

type contextKey struct{}

// RequireUser rejects requests without a valid bearer token. On success the resolved
// user is stored in the request context; this middleware is the only writer of that value.
func RequireUser(authz *Authorizer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := authz.Authorize(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				if errs.KindOf(err) == errs.KindInternal {
					logx.Error(err, "authorization lookup failed")
				}
				resp.RespondError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), contextKey{}, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user set by RequireUser.
func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(contextKey{}).(*user.User)
	return u, ok && u != nil
}
