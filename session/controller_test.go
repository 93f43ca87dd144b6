package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-storefront-client/api"
	"github.com/jrsteele09/go-storefront-client/api/apifake"
	"github.com/jrsteele09/go-storefront-client/session"
	"github.com/jrsteele09/go-storefront-client/session/refresh"
	"github.com/jrsteele09/go-storefront-client/session/tokenstore/repofake"
	"github.com/jrsteele09/go-storefront-client/users"
)

type testFixture struct {
	store      *repofake.FakeTokenStore
	authAPI    *apifake.FakeAuthAPI
	controller *session.Controller
}

func setupTestFixture(t *testing.T, options ...session.ControllerOption) *testFixture {
	t.Helper()

	store := repofake.NewFakeTokenStore()
	authAPI := apifake.NewFakeAuthAPI()

	coordinator, err := refresh.NewCoordinator(store, authAPI, zerolog.Nop())
	require.NoError(t, err)

	controller, err := session.NewController(store, coordinator, authAPI, zerolog.Nop(), options...)
	require.NoError(t, err)

	return &testFixture{
		store:      store,
		authAPI:    authAPI,
		controller: controller,
	}
}

func signedTestToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestInitializeWithAccessTokenAuthenticates(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Set("opaque-access", "refresh"))

	f.controller.Initialize(context.Background())

	snap := f.controller.Observe()
	require.Equal(t, session.Authenticated, snap.State)
	require.True(t, snap.IsAuthenticated)
	require.False(t, snap.IsLoading)
	require.Equal(t, 0, f.authAPI.RefreshCalls())
}

func TestInitializeRebuildsProfileFromTokenClaims(t *testing.T) {
	f := setupTestFixture(t)
	access := signedTestToken(t, jwtlib.MapClaims{
		"sub":   "user-1",
		"email": "jane@example.com",
		"roles": []any{"admin", "customer"},
	})
	require.NoError(t, f.store.Set(access, "refresh"))

	f.controller.Initialize(context.Background())

	snap := f.controller.Observe()
	require.True(t, snap.IsAuthenticated)
	require.NotNil(t, snap.User)
	require.Equal(t, "user-1", snap.User.ID)
	require.Equal(t, "jane@example.com", snap.User.Email)
	require.True(t, snap.User.IsAdmin())
}

func TestInitializeWithOnlyRefreshTokenRefreshes(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Set("", "refresh-token"))
	f.authAPI.RefreshFunc = func(ctx context.Context, refreshToken string) (*api.RefreshResult, error) {
		return &api.RefreshResult{AccessToken: "fresh-access", RefreshToken: "fresh-refresh"}, nil
	}

	f.controller.Initialize(context.Background())

	snap := f.controller.Observe()
	require.Equal(t, session.Authenticated, snap.State)
	require.Equal(t, "fresh-access", f.store.Get().AccessToken)
	require.Equal(t, 1, f.authAPI.RefreshCalls())
}

func TestInitializeRefreshFailureSignsOut(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Set("", "expired-refresh"))
	f.authAPI.RefreshFunc = func(ctx context.Context, refreshToken string) (*api.RefreshResult, error) {
		return nil, api.InvalidRefreshTokenErr
	}

	f.controller.Initialize(context.Background())

	snap := f.controller.Observe()
	require.Equal(t, session.Unauthenticated, snap.State)
	require.False(t, snap.IsAuthenticated)
	require.True(t, f.store.Get().Empty())
}

func TestInitializeWithoutTokensIsUnauthenticated(t *testing.T) {
	f := setupTestFixture(t)

	f.controller.Initialize(context.Background())

	snap := f.controller.Observe()
	require.Equal(t, session.Unauthenticated, snap.State)
	require.Equal(t, 0, f.authAPI.RefreshCalls())
}

func TestInitializeIsIdempotent(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Set("", "refresh-token"))
	f.authAPI.RefreshFunc = func(ctx context.Context, refreshToken string) (*api.RefreshResult, error) {
		return &api.RefreshResult{AccessToken: "access"}, nil
	}

	f.controller.Initialize(context.Background())
	f.controller.Initialize(context.Background())

	require.Equal(t, 1, f.authAPI.RefreshCalls())
	require.Equal(t, session.Authenticated, f.controller.Observe().State)
}

func TestConcurrentInitializePerformsAtMostOneRefresh(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Set("", "refresh-token"))
	f.authAPI.RefreshFunc = func(ctx context.Context, refreshToken string) (*api.RefreshResult, error) {
		time.Sleep(20 * time.Millisecond)
		return &api.RefreshResult{AccessToken: "access"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.controller.Initialize(context.Background())
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, f.authAPI.RefreshCalls(), 1)
}

func TestLoginEstablishesSession(t *testing.T) {
	f := setupTestFixture(t)
	f.controller.Initialize(context.Background())
	f.authAPI.LoginFunc = func(ctx context.Context, creds api.Credentials) (*api.LoginResult, error) {
		require.Equal(t, "jane@example.com", creds.Email)
		return &api.LoginResult{
			User:         &users.User{ID: "user-1", Email: creds.Email, Roles: []users.RoleType{users.RoleCustomer}},
			AccessToken:  "login-access",
			RefreshToken: "login-refresh",
		}, nil
	}

	err := f.controller.Login(context.Background(), api.Credentials{Email: "jane@example.com", Password: "pw"})
	require.NoError(t, err)

	snap := f.controller.Observe()
	require.Equal(t, session.Authenticated, snap.State)
	require.Equal(t, "user-1", snap.User.ID)
	require.Equal(t, "login-access", f.store.Get().AccessToken)
	require.Equal(t, "login-refresh", f.store.Get().RefreshToken)
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	f := setupTestFixture(t)
	f.controller.Initialize(context.Background())
	f.authAPI.LoginFunc = func(ctx context.Context, creds api.Credentials) (*api.LoginResult, error) {
		return nil, api.InvalidCredentialsErr
	}

	err := f.controller.Login(context.Background(), api.Credentials{Email: "x", Password: "y"})
	require.ErrorIs(t, err, api.InvalidCredentialsErr)
	require.Equal(t, session.Unauthenticated, f.controller.Observe().State)
	require.True(t, f.store.Get().Empty())
}

func TestSetAuthDataSurvivesStorageFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.store.FailSet(errors.New("storage unavailable"))

	f.controller.SetAuthData(&users.User{ID: "user-1"}, "access", "refresh")

	snap := f.controller.Observe()
	require.Equal(t, session.Authenticated, snap.State)
	require.Equal(t, "user-1", snap.User.ID)
}

func TestLogoutAlwaysClears(t *testing.T) {
	tests := []struct {
		name      string
		revokeErr error
	}{
		{name: "revocation succeeds"},
		{name: "revocation fails", revokeErr: api.RemoteErr},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t)
			require.NoError(t, f.store.Set("access", "refresh"))
			f.controller.Initialize(context.Background())
			f.authAPI.RevokeFunc = func(ctx context.Context, refreshToken string) error {
				require.Equal(t, "refresh", refreshToken)
				return tc.revokeErr
			}

			f.controller.Logout(context.Background())

			require.Equal(t, 1, f.authAPI.RevokeCalls())
			require.True(t, f.store.Get().Empty())
			snap := f.controller.Observe()
			require.Equal(t, session.Unauthenticated, snap.State)
			require.Nil(t, snap.User)
		})
	}
}

func TestLogoutWithoutRefreshTokenSkipsRevocation(t *testing.T) {
	f := setupTestFixture(t)
	f.controller.Initialize(context.Background())

	f.controller.Logout(context.Background())

	require.Equal(t, 0, f.authAPI.RevokeCalls())
	require.Equal(t, session.Unauthenticated, f.controller.Observe().State)
}

func TestObserversSeeLoadingBeforeDetermination(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Set("", "refresh-token"))
	f.authAPI.RefreshFunc = func(ctx context.Context, refreshToken string) (*api.RefreshResult, error) {
		return &api.RefreshResult{AccessToken: "access"}, nil
	}

	var mu sync.Mutex
	var states []session.State
	cancel := f.controller.Subscribe(func(snap session.Snapshot) {
		mu.Lock()
		states = append(states, snap.State)
		mu.Unlock()
	})
	defer cancel()

	f.controller.Initialize(context.Background())

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []session.State{session.Loading, session.Authenticated}, states)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	f := setupTestFixture(t)

	var mu sync.Mutex
	calls := 0
	cancel := f.controller.Subscribe(func(session.Snapshot) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	cancel()

	f.controller.Initialize(context.Background())

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 0, calls)
}

func TestExpiryCheckForcesRefreshPath(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	f := setupTestFixture(t, session.WithExpiryCheck(), session.WithNowTime(func() time.Time { return now }))

	expired := signedTestToken(t, jwtlib.MapClaims{
		"sub": "user-1",
		"exp": now.Add(-time.Hour).Unix(),
	})
	require.NoError(t, f.store.Set(expired, "refresh-token"))
	f.authAPI.RefreshFunc = func(ctx context.Context, refreshToken string) (*api.RefreshResult, error) {
		return &api.RefreshResult{AccessToken: "renewed-access"}, nil
	}

	f.controller.Initialize(context.Background())

	require.Equal(t, 1, f.authAPI.RefreshCalls())
	require.Equal(t, session.Authenticated, f.controller.Observe().State)
	require.Equal(t, "renewed-access", f.store.Get().AccessToken)
}

func TestExpiryCheckWithoutRefreshTokenSignsOut(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	f := setupTestFixture(t, session.WithExpiryCheck(), session.WithNowTime(func() time.Time { return now }))

	expired := signedTestToken(t, jwtlib.MapClaims{
		"sub": "user-1",
		"exp": now.Add(-time.Hour).Unix(),
	})
	require.NoError(t, f.store.Set(expired, ""))

	f.controller.Initialize(context.Background())

	require.Equal(t, session.Unauthenticated, f.controller.Observe().State)
	require.True(t, f.store.Get().Empty())
	require.Equal(t, 0, f.authAPI.RefreshCalls())
}

func TestExpiryCheckTrustsUnexpiredToken(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	f := setupTestFixture(t, session.WithExpiryCheck(), session.WithNowTime(func() time.Time { return now }))

	valid := signedTestToken(t, jwtlib.MapClaims{
		"sub": "user-1",
		"exp": now.Add(time.Hour).Unix(),
	})
	require.NoError(t, f.store.Set(valid, "refresh-token"))

	f.controller.Initialize(context.Background())

	require.Equal(t, session.Authenticated, f.controller.Observe().State)
	require.Equal(t, 0, f.authAPI.RefreshCalls())
}

func TestUnreadableStorageDegradesToNoSession(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Set("access", "refresh"))
	f.store.SetUnreadable(true)

	f.controller.Initialize(context.Background())

	require.Equal(t, session.Unauthenticated, f.controller.Observe().State)
}
