// Package session owns the client-side authentication lifecycle: one
// controller holds the process-wide session state, coordinates startup
// restoration and refresh, and is the only writer of session transitions.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-storefront-client/api"
	"github.com/jrsteele09/go-storefront-client/session/refresh"
	"github.com/jrsteele09/go-storefront-client/session/tokenstore"
	"github.com/jrsteele09/go-storefront-client/users"
)

// Controller is the session state machine. The zero state is Uninitialized;
// Initialize moves it through Loading to a definitive Authenticated or
// Unauthenticated, after which it cycles between those two for the life of
// the process.
//
// Only the Controller transitions session state, and only the Controller and
// the refresh Coordinator write the token store.
type Controller struct {
	store       tokenstore.Store
	coordinator *refresh.Coordinator
	authAPI     api.AuthAPI
	log         zerolog.Logger
	checkExpiry bool
	nowTime     func() time.Time

	mu        sync.Mutex
	state     State
	user      *users.User
	observers map[int]func(Snapshot)
	nextObsID int
}

// ControllerOption modifies a Controller at construction time.
type ControllerOption func(*Controller)

// WithExpiryCheck makes Initialize inspect the stored access token's exp
// claim and treat an expired token as absent, forcing the refresh path.
// Off by default: a present access token is trusted as-is.
func WithExpiryCheck() ControllerOption {
	return func(c *Controller) {
		c.checkExpiry = true
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.nowTime = nowFunc
	}
}

// NewController creates a session Controller. All dependencies are required.
func NewController(
	store tokenstore.Store,
	coordinator *refresh.Coordinator,
	authAPI api.AuthAPI,
	log zerolog.Logger,
	options ...ControllerOption,
) (*Controller, error) {
	if store == nil {
		return nil, errors.New("[NewController] token store is required")
	}
	if coordinator == nil {
		return nil, errors.New("[NewController] refresh coordinator is required")
	}
	if authAPI == nil {
		return nil, errors.New("[NewController] auth API is required")
	}

	c := &Controller{
		store:       store,
		coordinator: coordinator,
		authAPI:     authAPI,
		log:         log,
		nowTime:     time.Now,
		state:       Uninitialized,
		observers:   make(map[int]func(Snapshot)),
	}

	for _, opt := range options {
		opt(c)
	}

	return c, nil
}

// Observe returns the current session snapshot.
func (c *Controller) Observe() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshotOf(c.state, c.user)
}

// Subscribe registers fn to be called with a snapshot after every state
// transition. The returned function cancels the subscription. Callbacks run
// outside the controller lock.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextObsID
	c.nextObsID++
	c.observers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// Initialize restores the session from the token store. Idempotent: any call
// after the first is a no-op.
//
// A stored access token authenticates immediately (the profile is rebuilt
// from its claims, or fetched lazily by the caller). With only a refresh
// token, one exchange is attempted through the coordinator; its failure
// leaves the machine Unauthenticated with the store cleared. With neither
// token the machine goes straight to Unauthenticated. The Loading window is
// bounded by the one exchange: it cannot persist past this call.
func (c *Controller) Initialize(ctx context.Context) {
	c.mu.Lock()
	if c.state != Uninitialized {
		c.mu.Unlock()
		return
	}
	c.state = Loading
	c.mu.Unlock()
	c.notify()

	pair := c.store.Get()

	if pair.HasAccessToken() && !c.accessTokenExpired(pair.AccessToken) {
		c.transition(Authenticated, profileFromAccessToken(pair.AccessToken))
		return
	}

	if pair.HasRefreshToken() {
		newPair, err := c.coordinator.Refresh(ctx)
		if err != nil {
			c.log.Info().Err(err).Msg("session restore failed, signing out")
			c.transition(Unauthenticated, nil)
			return
		}
		c.transition(Authenticated, profileFromAccessToken(newPair.AccessToken))
		return
	}

	// An expired access token with no refresh token cannot be recovered.
	if pair.HasAccessToken() {
		if err := c.store.Clear(); err != nil {
			c.log.Warn().Err(err).Msg("failed to clear expired token pair")
		}
	}
	c.transition(Unauthenticated, nil)
}

// Login exchanges credentials with the auth API and establishes the session.
func (c *Controller) Login(ctx context.Context, creds api.Credentials) error {
	res, err := c.authAPI.Login(ctx, creds)
	if err != nil {
		return errors.Wrap(err, "[Controller.Login] login")
	}
	c.SetAuthData(res.User, res.AccessToken, res.RefreshToken)
	return nil
}

// SetAuthData records a completed login: the token pair is persisted and the
// machine transitions to Authenticated synchronously. No network call. A
// storage write failure is logged, not propagated — the session still lives
// in memory for the rest of the process.
func (c *Controller) SetAuthData(user *users.User, accessToken, refreshToken string) {
	if err := c.store.Set(accessToken, refreshToken); err != nil {
		c.log.Warn().Err(err).Msg("failed to persist token pair, session will not survive restart")
	}
	c.transition(Authenticated, user)
}

// Logout signs the user out. Remote revocation of the refresh token is best
// effort: its failure is logged and swallowed, because the user's expressed
// intent to sign out takes priority over the server acknowledging it. The
// token store is cleared and the machine transitions to Unauthenticated
// regardless of the remote outcome.
func (c *Controller) Logout(ctx context.Context) {
	if refreshToken := c.store.Get().RefreshToken; refreshToken != "" {
		if err := c.authAPI.LogoutRevoke(ctx, refreshToken); err != nil {
			c.log.Warn().Err(err).Msg("refresh token revocation failed, signing out locally")
		}
	}

	if err := c.store.Clear(); err != nil {
		c.log.Warn().Err(err).Msg("failed to clear token store on logout")
	}
	c.transition(Unauthenticated, nil)
}

func (c *Controller) transition(state State, user *users.User) {
	c.mu.Lock()
	c.state = state
	c.user = user
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) notify() {
	c.mu.Lock()
	snap := snapshotOf(c.state, c.user)
	fns := make([]func(Snapshot), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
