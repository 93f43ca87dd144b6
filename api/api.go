// Package api defines the contracts of the remote storefront backend as seen
// by the client core. The session and cart stores depend only on these
// interfaces; httpapi provides the real implementation and apifake the test
// doubles.
package api

import (
	"context"

	"github.com/jrsteele09/go-storefront-client/users"
)

// Credentials are the login form inputs.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	User         *users.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

// RefreshResult is the payload of a successful refresh-token exchange.
// RefreshToken may be empty when the server does not rotate refresh tokens;
// the caller keeps the old one in that case.
type RefreshResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// ConfirmedLine is a cart line as the server recorded it. The server is
// authoritative for the final quantity and price.
type ConfirmedLine struct {
	LineID    string `json:"line_id"`
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"` // minor currency units
}

// AuthAPI is the remote authentication service.
type AuthAPI interface {
	// Login exchanges credentials for a user profile and token pair.
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)

	// RefreshTokenExchange trades a refresh token for a new access token
	// and, optionally, a rotated refresh token.
	RefreshTokenExchange(ctx context.Context, refreshToken string) (*RefreshResult, error)

	// LogoutRevoke revokes the refresh token server-side. Best effort;
	// callers tolerate failure.
	LogoutRevoke(ctx context.Context, refreshToken string) error
}

// CartAPI is the remote cart service.
type CartAPI interface {
	// CartAdd creates a new line on the server cart.
	CartAdd(ctx context.Context, productID, variantID string, quantity int) (*ConfirmedLine, error)

	// CartUpdate sets the quantity of an existing line. Quantity 0 removes
	// the line and returns a nil ConfirmedLine.
	CartUpdate(ctx context.Context, productID, variantID string, quantity int) (*ConfirmedLine, error)
}
