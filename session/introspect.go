package session

import (
	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/jrsteele09/go-storefront-client/internal/utils"
	"github.com/jrsteele09/go-storefront-client/users"
)

// accessTokenExpired inspects the token's exp claim without verifying the
// signature — the client holds no keys; the server re-validates every call.
// Opaque or claim-less tokens are never treated as expired, preserving the
// default behavior of trusting any present access token.
func (c *Controller) accessTokenExpired(rawToken string) bool {
	if !c.checkExpiry {
		return false
	}

	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return false
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return c.nowTime().After(exp.Time)
}

// profileFromAccessToken rebuilds a minimal user profile from the access
// token's claims so the route guard has role data after a reload, before any
// lazy profile fetch. Returns nil for opaque tokens; the profile is then
// fetched lazily by an external collaborator.
func profileFromAccessToken(rawToken string) *users.User {
	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil
	}

	user := &users.User{ID: sub}
	user.Email, _ = claims["email"].(string)
	user.Username, _ = claims["preferred_username"].(string)

	if rawRoles, ok := claims["roles"].([]any); ok {
		for _, role := range utils.ToStringSlice(rawRoles) {
			user.Roles = append(user.Roles, users.RoleType(role))
		}
	}

	return user
}
