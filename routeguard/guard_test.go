package routeguard_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-storefront-client/routeguard"
	"github.com/jrsteele09/go-storefront-client/session"
	"github.com/jrsteele09/go-storefront-client/users"
)

func snapshot(state session.State, user *users.User) session.Snapshot {
	return session.Snapshot{
		User:            user,
		State:           state,
		IsAuthenticated: state == session.Authenticated,
		IsLoading:       state == session.Uninitialized || state == session.Loading,
	}
}

func TestEvaluate(t *testing.T) {
	customer := &users.User{ID: "u1", Roles: []users.RoleType{users.RoleCustomer}}
	admin := &users.User{ID: "u2", Roles: []users.RoleType{users.RoleAdmin}}

	tests := []struct {
		name       string
		snap       session.Snapshot
		req        routeguard.Requirement
		outcome    routeguard.Outcome
		returnPath string
	}{
		{
			name:    "uninitialized session holds rendering",
			snap:    snapshot(session.Uninitialized, nil),
			req:     routeguard.Requirement{Path: "/account"},
			outcome: routeguard.OutcomeHold,
		},
		{
			name:    "loading session holds rendering",
			snap:    snapshot(session.Loading, nil),
			req:     routeguard.Requirement{Path: "/account"},
			outcome: routeguard.OutcomeHold,
		},
		{
			name:       "unauthenticated visitor redirects with return path",
			snap:       snapshot(session.Unauthenticated, nil),
			req:        routeguard.Requirement{Path: "/account/orders"},
			outcome:    routeguard.OutcomeRedirectToLogin,
			returnPath: "/account/orders",
		},
		{
			name:    "authenticated user renders",
			snap:    snapshot(session.Authenticated, customer),
			req:     routeguard.Requirement{Path: "/account"},
			outcome: routeguard.OutcomeRender,
		},
		{
			name:    "admin renders admin view",
			snap:    snapshot(session.Authenticated, admin),
			req:     routeguard.Requirement{Path: "/admin", Role: users.RoleAdmin},
			outcome: routeguard.OutcomeRender,
		},
		{
			name:       "non-admin redirects from admin view like a stranger",
			snap:       snapshot(session.Authenticated, customer),
			req:        routeguard.Requirement{Path: "/admin", Role: users.RoleAdmin},
			outcome:    routeguard.OutcomeRedirectToLogin,
			returnPath: "/admin",
		},
		{
			name:       "authenticated session with nil profile fails role check",
			snap:       snapshot(session.Authenticated, nil),
			req:        routeguard.Requirement{Path: "/admin", Role: users.RoleAdmin},
			outcome:    routeguard.OutcomeRedirectToLogin,
			returnPath: "/admin",
		},
		{
			name:    "loading admin view holds even for admin requirement",
			snap:    snapshot(session.Loading, nil),
			req:     routeguard.Requirement{Path: "/admin", Role: users.RoleAdmin},
			outcome: routeguard.OutcomeHold,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision := routeguard.Evaluate(tc.snap, tc.req)
			require.Equal(t, tc.outcome, decision.Outcome)
			require.Equal(t, tc.returnPath, decision.ReturnPath)
		})
	}
}

func TestEvaluateNeverRendersBeforeDetermination(t *testing.T) {
	admin := &users.User{ID: "u1", Roles: []users.RoleType{users.RoleAdmin}}

	// Even a snapshot carrying a user profile must not render while the
	// state machine has not settled.
	for _, state := range []session.State{session.Uninitialized, session.Loading} {
		decision := routeguard.Evaluate(snapshot(state, admin), routeguard.Requirement{Path: "/account"})
		require.Equal(t, routeguard.OutcomeHold, decision.Outcome, "state %s", state)
	}
}
