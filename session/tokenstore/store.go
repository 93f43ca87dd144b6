// Package tokenstore persists the access/refresh token pair between runs.
// Tokens are opaque strings; the store never inspects them.
package tokenstore

// Pair holds the two session credentials. An empty string means the token is
// absent.
type Pair struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// HasAccessToken reports whether an access token is stored.
func (p Pair) HasAccessToken() bool { return p.AccessToken != "" }

// HasRefreshToken reports whether a refresh token is stored.
func (p Pair) HasRefreshToken() bool { return p.RefreshToken != "" }

// Empty reports whether neither token is stored.
func (p Pair) Empty() bool { return p.AccessToken == "" && p.RefreshToken == "" }

// Store is the persisted holder of the token pair.
//
// Get never fails: a store that cannot read its backing storage returns the
// zero Pair, so callers treat unreadable storage as "no session". Set is an
// idempotent full replace of both tokens; Clear removes both unconditionally.
type Store interface {
	Get() Pair
	Set(accessToken, refreshToken string) error
	Clear() error
}
