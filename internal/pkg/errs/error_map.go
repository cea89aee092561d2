/*
Package errs provides the application error type and its code table.

This file maps every code to its template: category, client message and HTTP status.
*/
package errs

import "net/http"

// errorMap holds the template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx
	ErrInvalidParams:         {Code: ErrInvalidParams, Kind: KindRequest, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Kind: KindRequest, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Kind: KindRequest, Message: "Malformed JSON body.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Kind: KindRequest, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Kind: KindRequest, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Kind: KindRateLimited, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx
	ErrNoticeBodyEmpty:    {Code: ErrNoticeBodyEmpty, Kind: KindValidation, Message: "Body can't be blank", Status: http.StatusUnprocessableEntity, Field: "body"},
	ErrNoticeBodyTooLong:  {Code: ErrNoticeBodyTooLong, Kind: KindValidation, Message: "Body is too long (maximum is %d bytes)", Status: http.StatusUnprocessableEntity, Field: "body"},
	ErrUnknownParticipant: {Code: ErrUnknownParticipant, Kind: KindValidation, Message: "%s must exist", Status: http.StatusUnprocessableEntity, Entity: "user"},
	ErrInvalidEmail:       {Code: ErrInvalidEmail, Kind: KindValidation, Message: "Email is invalid", Status: http.StatusUnprocessableEntity, Field: "email"},
	ErrInvalidPassword:    {Code: ErrInvalidPassword, Kind: KindValidation, Message: "Password must be between %d and %d characters", Status: http.StatusUnprocessableEntity, Field: "password"},
	ErrUserAlreadyExists:  {Code: ErrUserAlreadyExists, Kind: KindConflict, Message: "Email has already been taken", Status: http.StatusConflict, Field: "email", Entity: "user"},

	// 3xxx
	ErrMissingToken:          {Code: ErrMissingToken, Kind: KindMissingToken, Message: "Missing token", Status: http.StatusUnauthorized},
	ErrTokenMalformed:        {Code: ErrTokenMalformed, Kind: KindInvalidToken, Message: "Invalid token: malformed", Status: http.StatusUnauthorized},
	ErrTokenSignatureInvalid: {Code: ErrTokenSignatureInvalid, Kind: KindInvalidToken, Message: "Invalid token: signature verification failed", Status: http.StatusUnauthorized},
	ErrTokenExpired:          {Code: ErrTokenExpired, Kind: KindInvalidToken, Message: "Invalid token: token has expired", Status: http.StatusUnauthorized},
	ErrTokenUserNotFound:     {Code: ErrTokenUserNotFound, Kind: KindInvalidToken, Message: "Invalid token: user not found", Status: http.StatusUnauthorized, Entity: "user"},
	ErrInvalidCredentials:    {Code: ErrInvalidCredentials, Kind: KindAuthentication, Message: "Invalid credentials", Status: http.StatusUnauthorized},

	// 5xxx
	ErrUnknown: {Code: ErrUnknown, Kind: KindInternal, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
