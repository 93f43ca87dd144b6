// Package refresh performs the refresh-token exchange with single-flight
// semantics: concurrent callers attach to the one in-flight exchange instead
// of racing each other to rewrite the token store.
package refresh

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/go-storefront-client/api"
	"github.com/jrsteele09/go-storefront-client/session/tokenstore"
)

// All refresh attempts coalesce on one key; there is only one session.
const refreshKey = "refresh"

// Coordinator exchanges the stored refresh token for a new token pair.
// At most one exchange is in flight at a time; callers arriving while one is
// pending share its outcome. A call after a completed batch always issues a
// fresh request.
type Coordinator struct {
	store   tokenstore.Store
	authAPI api.AuthAPI
	log     zerolog.Logger
	group   singleflight.Group
}

// NewCoordinator creates a Coordinator. Both dependencies are required.
func NewCoordinator(store tokenstore.Store, authAPI api.AuthAPI, log zerolog.Logger) (*Coordinator, error) {
	if store == nil {
		return nil, errors.New("[NewCoordinator] token store is required")
	}
	if authAPI == nil {
		return nil, errors.New("[NewCoordinator] auth API is required")
	}
	return &Coordinator{store: store, authAPI: authAPI, log: log}, nil
}

// Refresh performs (or attaches to) a refresh-token exchange.
//
// On success the new pair has been written to the store and is returned. On
// failure the store has been cleared — a session that cannot be refreshed is
// no session — and the caller is expected to transition to unauthenticated.
// There is no automatic retry.
func (c *Coordinator) Refresh(ctx context.Context) (tokenstore.Pair, error) {
	result, err, shared := c.group.Do(refreshKey, func() (any, error) {
		return c.exchange(ctx)
	})
	if err != nil {
		return tokenstore.Pair{}, err
	}
	if shared {
		c.log.Debug().Msg("refresh attached to in-flight exchange")
	}
	return result.(tokenstore.Pair), nil
}

func (c *Coordinator) exchange(ctx context.Context) (any, error) {
	refreshToken := c.store.Get().RefreshToken
	if refreshToken == "" {
		return nil, errors.Wrap(api.InvalidRefreshTokenErr, "[Coordinator.exchange] no stored refresh token")
	}

	res, err := c.authAPI.RefreshTokenExchange(ctx, refreshToken)
	if err != nil {
		if clearErr := c.store.Clear(); clearErr != nil {
			c.log.Warn().Err(clearErr).Msg("failed to clear token store after refresh failure")
		}
		return nil, errors.Wrap(err, "[Coordinator.exchange] refresh token exchange")
	}

	// The server may not rotate the refresh token; keep the old one then.
	newRefresh := res.RefreshToken
	if newRefresh == "" {
		newRefresh = refreshToken
	}

	if err := c.store.Set(res.AccessToken, newRefresh); err != nil {
		return nil, errors.Wrap(err, "[Coordinator.exchange] store new token pair")
	}

	return tokenstore.Pair{AccessToken: res.AccessToken, RefreshToken: newRefresh}, nil
}
