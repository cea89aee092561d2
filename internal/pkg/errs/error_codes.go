/*
Package errs provides the application error type and its code table.

Codes are grouped by range and are stable across releases so clients can key off them.
*/
package errs

// 1xxx: General request handling errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body is not valid JSON for the endpoint.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained data after the JSON value.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the caller exceeded the request rate limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Validation and conflict errors
const (
	// ErrNoticeBodyEmpty indicates a notice body that is blank.
	ErrNoticeBodyEmpty = 2001

	// ErrNoticeBodyTooLong indicates a notice body longer than the allowed size.
	ErrNoticeBodyTooLong = 2002

	// ErrUnknownParticipant indicates a sender or recipient id that does not resolve to a user.
	ErrUnknownParticipant = 2003

	// ErrInvalidEmail indicates a malformed email at signup.
	ErrInvalidEmail = 2101

	// ErrInvalidPassword indicates a password outside the accepted length at signup.
	ErrInvalidPassword = 2102

	// ErrUserAlreadyExists indicates a signup for an email that is already registered.
	ErrUserAlreadyExists = 2103
)

// 3xxx: Authentication and authorization errors
const (
	// ErrMissingToken indicates that no bearer token was presented.
	ErrMissingToken = 3001

	// ErrTokenMalformed indicates a token that could not be parsed or has an invalid payload.
	ErrTokenMalformed = 3002

	// ErrTokenSignatureInvalid indicates a token whose signature does not verify.
	ErrTokenSignatureInvalid = 3003

	// ErrTokenExpired indicates a token whose exp is not in the future.
	ErrTokenExpired = 3004

	// ErrTokenUserNotFound indicates a valid token naming a user that no longer exists.
	ErrTokenUserNotFound = 3005

	// ErrInvalidCredentials indicates a failed login. Unknown user and wrong password are not distinguished.
	ErrInvalidCredentials = 3101
)

// 5xxx: Internal system errors
const (
	// ErrUnknown represents an unclassified server error.
	ErrUnknown = 5000
)
