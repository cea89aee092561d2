/*
Package handler provides the HTTP handlers and routing setup for the notice server.
*/
package handler

import (
	"net/http"

	"noticehub/internal/app/user"
	"noticehub/internal/pkg/req"
	"noticehub/internal/pkg/resp"
)

type CredentialsInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthOutput struct {
	Token string     `json:"token"`
	User  *user.User `json:"user,omitempty"`
}

// HandleSignup creates an account and returns it with a token.
func HandleSignup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CredentialsInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		u, token, err := deps.Authenticator.Register(r.Context(), input.Email, input.Password)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondStatus(w, r, http.StatusCreated, AuthOutput{Token: token, User: u})
	}
}

// HandleLogin exchanges credentials for a token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CredentialsInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		token, err := deps.Authenticator.Authenticate(r.Context(), input.Email, input.Password)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, AuthOutput{Token: token})
	}
}
