package api

import "errors"

var (
	InvalidCredentialsErr  = errors.New("invalid credentials")
	InvalidRefreshTokenErr = errors.New("invalid refresh token")
	OutOfStockErr          = errors.New("product out of stock")
	ValidationErr          = errors.New("request rejected by server validation")
	RemoteErr              = errors.New("remote service failure")
)

// IsAuthError reports whether err means the session cannot be established or
// continued, as opposed to a transient remote failure.
func IsAuthError(err error) bool {
	return errors.Is(err, InvalidCredentialsErr) || errors.Is(err, InvalidRefreshTokenErr)
}
