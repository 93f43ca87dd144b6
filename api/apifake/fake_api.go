// Package apifake provides scriptable in-memory implementations of the api
// contracts for tests.
package apifake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-storefront-client/api"
)

var (
	_ api.AuthAPI = (*FakeAuthAPI)(nil)
	_ api.CartAPI = (*FakeCartAPI)(nil)
)

// FakeAuthAPI implements api.AuthAPI. Each behavior is a swappable func
// field; unset funcs succeed with zero-value results. Call counts are safe
// for concurrent use.
type FakeAuthAPI struct {
	LoginFunc   func(ctx context.Context, creds api.Credentials) (*api.LoginResult, error)
	RefreshFunc func(ctx context.Context, refreshToken string) (*api.RefreshResult, error)
	RevokeFunc  func(ctx context.Context, refreshToken string) error

	lock         sync.Mutex
	loginCalls   int
	refreshCalls int
	revokeCalls  int
}

func NewFakeAuthAPI() *FakeAuthAPI {
	return &FakeAuthAPI{}
}

func (f *FakeAuthAPI) Login(ctx context.Context, creds api.Credentials) (*api.LoginResult, error) {
	f.lock.Lock()
	f.loginCalls++
	f.lock.Unlock()
	if f.LoginFunc != nil {
		return f.LoginFunc(ctx, creds)
	}
	return &api.LoginResult{}, nil
}

func (f *FakeAuthAPI) RefreshTokenExchange(ctx context.Context, refreshToken string) (*api.RefreshResult, error) {
	f.lock.Lock()
	f.refreshCalls++
	f.lock.Unlock()
	if f.RefreshFunc != nil {
		return f.RefreshFunc(ctx, refreshToken)
	}
	return &api.RefreshResult{}, nil
}

func (f *FakeAuthAPI) LogoutRevoke(ctx context.Context, refreshToken string) error {
	f.lock.Lock()
	f.revokeCalls++
	f.lock.Unlock()
	if f.RevokeFunc != nil {
		return f.RevokeFunc(ctx, refreshToken)
	}
	return nil
}

func (f *FakeAuthAPI) LoginCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.loginCalls
}

func (f *FakeAuthAPI) RefreshCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.refreshCalls
}

func (f *FakeAuthAPI) RevokeCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.revokeCalls
}

// FakeCartAPI implements api.CartAPI with the same scriptable-func shape.
type FakeCartAPI struct {
	AddFunc    func(ctx context.Context, productID, variantID string, quantity int) (*api.ConfirmedLine, error)
	UpdateFunc func(ctx context.Context, productID, variantID string, quantity int) (*api.ConfirmedLine, error)

	lock        sync.Mutex
	addCalls    int
	updateCalls int
}

func NewFakeCartAPI() *FakeCartAPI {
	return &FakeCartAPI{}
}

func (f *FakeCartAPI) CartAdd(ctx context.Context, productID, variantID string, quantity int) (*api.ConfirmedLine, error) {
	f.lock.Lock()
	f.addCalls++
	f.lock.Unlock()
	if f.AddFunc != nil {
		return f.AddFunc(ctx, productID, variantID, quantity)
	}
	return &api.ConfirmedLine{ProductID: productID, VariantID: variantID, Quantity: quantity}, nil
}

func (f *FakeCartAPI) CartUpdate(ctx context.Context, productID, variantID string, quantity int) (*api.ConfirmedLine, error) {
	f.lock.Lock()
	f.updateCalls++
	f.lock.Unlock()
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, productID, variantID, quantity)
	}
	if quantity == 0 {
		return nil, nil
	}
	return &api.ConfirmedLine{ProductID: productID, VariantID: variantID, Quantity: quantity}, nil
}

func (f *FakeCartAPI) AddCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.addCalls
}

func (f *FakeCartAPI) UpdateCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.updateCalls
}
