package repofake

import (
	"sync"

	"github.com/jrsteele09/go-storefront-client/session/tokenstore"
)

var _ tokenstore.Store = (*FakeTokenStore)(nil)

// FakeTokenStore is an in-memory token store for tests, with optional
// failure injection.
type FakeTokenStore struct {
	pair       tokenstore.Pair
	unreadable bool
	setErr     error
	clearErr   error
	lock       sync.RWMutex
}

func NewFakeTokenStore() *FakeTokenStore {
	return &FakeTokenStore{}
}

func (ts *FakeTokenStore) Get() tokenstore.Pair {
	ts.lock.RLock()
	defer ts.lock.RUnlock()
	if ts.unreadable {
		return tokenstore.Pair{}
	}
	return ts.pair
}

func (ts *FakeTokenStore) Set(accessToken, refreshToken string) error {
	ts.lock.Lock()
	defer ts.lock.Unlock()
	if ts.setErr != nil {
		return ts.setErr
	}
	ts.pair = tokenstore.Pair{AccessToken: accessToken, RefreshToken: refreshToken}
	return nil
}

func (ts *FakeTokenStore) Clear() error {
	ts.lock.Lock()
	defer ts.lock.Unlock()
	if ts.clearErr != nil {
		return ts.clearErr
	}
	ts.pair = tokenstore.Pair{}
	return nil
}

// SetUnreadable makes Get behave as if the backing storage cannot be read.
func (ts *FakeTokenStore) SetUnreadable(unreadable bool) {
	ts.lock.Lock()
	defer ts.lock.Unlock()
	ts.unreadable = unreadable
}

// FailSet makes subsequent Set calls return err.
func (ts *FakeTokenStore) FailSet(err error) {
	ts.lock.Lock()
	defer ts.lock.Unlock()
	ts.setErr = err
}

// FailClear makes subsequent Clear calls return err.
func (ts *FakeTokenStore) FailClear(err error) {
	ts.lock.Lock()
	defer ts.lock.Unlock()
	ts.clearErr = err
}
