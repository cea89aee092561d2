package handler

import (
	"net/http"

	"noticehub/internal/app/auth"
	"noticehub/internal/pkg/errs"
	"noticehub/internal/pkg/logx"
	"noticehub/internal/pkg/req"
	"noticehub/internal/pkg/resp"
)

type CreateNoticeInput struct {
	RecipientID int64  `json:"recipientId"`
	Body        string `json:"body"`
}

// HandleCreateNotice stores a notice from the authenticated user and, once stored,
// queues it for live delivery. A full relay queue does not fail the request.
func HandleCreateNotice(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sender, ok := auth.UserFromContext(r.Context())
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingToken))
			return
		}

		var input CreateNoticeInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		n, err := deps.Notices.Create(r.Context(), sender.ID, input.RecipientID, input.Body)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		if !deps.Dispatcher.Enqueue(*n) {
			logx.Warn("Notice stored but not queued for relay.", "notice_id", n.ID)
		}

		resp.RespondStatus(w, r, http.StatusCreated, n)
	}
}

// HandleListNotices returns the notices addressed to the authenticated user, newest first.
func HandleListNotices(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recipient, ok := auth.UserFromContext(r.Context())
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingToken))
			return
		}

		notices, err := deps.Notices.ListForRecipient(r.Context(), recipient.ID)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, notices)
	}
}
