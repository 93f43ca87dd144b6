// Package routeguard decides whether a protected view may render, as a pure
// function of a session snapshot. Keeping it free of storage reads and
// timing makes the no-premature-render property checkable in isolation.
package routeguard

import (
	"github.com/jrsteele09/go-storefront-client/session"
	"github.com/jrsteele09/go-storefront-client/users"
)

// Outcome is the guard's verdict for a view that is about to mount.
type Outcome int

const (
	// OutcomeHold means the session has no definitive determination yet;
	// the view must keep rendering nothing rather than flash protected
	// content.
	OutcomeHold Outcome = iota
	// OutcomeRender allows the protected view to mount.
	OutcomeRender
	// OutcomeRedirectToLogin sends the visitor to the login page.
	OutcomeRedirectToLogin
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHold:
		return "hold"
	case OutcomeRender:
		return "render"
	case OutcomeRedirectToLogin:
		return "redirect_to_login"
	}
	return "unknown"
}

// Requirement describes what the view being mounted demands. Path is the
// originally requested path, echoed back on redirect so login can return the
// visitor there. A zero Role admits any authenticated user.
type Requirement struct {
	Path string
	Role users.RoleType
}

// Decision is the guard's full answer. ReturnPath is set only on
// OutcomeRedirectToLogin.
type Decision struct {
	Outcome    Outcome
	ReturnPath string
}

// Evaluate produces the render-vs-redirect decision for req given the
// session snapshot.
//
// It never returns OutcomeRender while the session is still resolving: an
// Uninitialized or Loading snapshot yields OutcomeHold. An authenticated
// user missing a required role is redirected to login exactly like an
// unauthenticated visitor — admin content is never rendered to a non-admin,
// and no separate forbidden page exists to probe for.
func Evaluate(snap session.Snapshot, req Requirement) Decision {
	if snap.IsLoading {
		return Decision{Outcome: OutcomeHold}
	}

	if !snap.IsAuthenticated {
		return Decision{Outcome: OutcomeRedirectToLogin, ReturnPath: req.Path}
	}

	if req.Role != "" && !snap.User.HasRole(req.Role) {
		return Decision{Outcome: OutcomeRedirectToLogin, ReturnPath: req.Path}
	}

	return Decision{Outcome: OutcomeRender}
}
