package auth

import "errors"

// Classified errors cross the service boundary with their own wire
// message; anything else is logged and collapsed into the operation's
// catch-all before leaving the service.
var (
	ErrInvalidEmailUsername      = errors.New("INVALID_EMAIL_USERNAME")
	ErrInvalidPassword           = errors.New("INVALID_PASSWORD")
	ErrLoginAttemptsLimitReached = errors.New("LOGIN_ATTEMPTS_LIMIT_REACHED")
	ErrLogin                     = errors.New("LOGIN_ERROR")
	ErrUserExists                = errors.New("USER_EXISTS")
	ErrSignup                    = errors.New("SIGNUP_ERROR")
	ErrLogoutNotAllowed          = errors.New("LOGOUT_NOT_ALLOWED")
	ErrLogoutSessionInvalid      = errors.New("LOGOUT_SESSION_INVALID")
	ErrTokenInvalid              = errors.New("TOKEN_INVALID")
)

var classifiedErrors = []error{
	ErrInvalidEmailUsername,
	ErrInvalidPassword,
	ErrLoginAttemptsLimitReached,
	ErrLogin,
	ErrUserExists,
	ErrSignup,
	ErrLogoutNotAllowed,
	ErrLogoutSessionInvalid,
	ErrTokenInvalid,
}

// IsClassified reports whether err carries one of the caller-visible
// error kinds.
func IsClassified(err error) bool {
	for _, classified := range classifiedErrors {
		if errors.Is(err, classified) {
			return true
		}
	}
	return false
}
