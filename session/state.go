package session

import "github.com/jrsteele09/go-storefront-client/users"

// State is the lifecycle state of the session machine.
type State int

const (
	// Uninitialized is the only initial state, before Initialize has run.
	Uninitialized State = iota
	// Loading covers the bounded initialization/refresh window.
	Loading
	// Authenticated means a valid access token is currently believed to exist.
	Authenticated
	// Unauthenticated means no session exists.
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// Snapshot is a read-only view of the session handed to observers and the
// route guard. IsAuthenticated is true iff State is Authenticated; IsLoading
// is true while the machine has not yet reached a definitive determination.
type Snapshot struct {
	User            *users.User
	State           State
	IsAuthenticated bool
	IsLoading       bool
}

func snapshotOf(state State, user *users.User) Snapshot {
	return Snapshot{
		User:            user,
		State:           state,
		IsAuthenticated: state == Authenticated,
		IsLoading:       state == Uninitialized || state == Loading,
	}
}
