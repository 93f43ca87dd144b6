// Package cart holds the client-side cart state and its optimistic mutation
// pipeline: the local line is updated first, the remote call confirms or
// rolls it back. The remote cart is authoritative; local state is a cache
// that may be optimistically ahead of it.
package cart

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-storefront-client/api"
)

// AddInput describes an add-to-cart request. RequiresVariant is supplied by
// the product page, which knows whether the product has variants.
type AddInput struct {
	ProductID       string
	VariantID       string
	Quantity        int
	RequiresVariant bool
}

// Store is the process-wide cart. Mutations are applied optimistically and
// reconciled against the server's confirmed line; on failure the pre-mutation
// state is restored wholesale — there is no partial application.
//
// At most one mutation per (ProductID, VariantID) may be in flight; further
// attempts are rejected rather than queued, which stops rapid repeated
// clicks from double-submitting.
type Store struct {
	cartAPI api.CartAPI
	log     zerolog.Logger

	mu        sync.Mutex
	lines     []Line
	pending   map[lineKey]struct{}
	observers map[int]func([]Line)
	nextObsID int
}

// NewStore creates a cart Store. The cart API is required.
func NewStore(cartAPI api.CartAPI, log zerolog.Logger) (*Store, error) {
	if cartAPI == nil {
		return nil, errors.New("[NewStore] cart API is required")
	}
	return &Store{
		cartAPI:   cartAPI,
		log:       log,
		pending:   make(map[lineKey]struct{}),
		observers: make(map[int]func([]Line)),
	}, nil
}

// Observe returns an ordered snapshot of the cart lines.
func (s *Store) Observe() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subtotal returns the sum of confirmed line prices, in minor currency units.
func (s *Store) Subtotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, l := range s.lines {
		total += l.UnitPrice * int64(l.Quantity)
	}
	return total
}

// Subscribe registers fn to be called with an ordered snapshot after every
// cart change. The returned function cancels the subscription. Callbacks run
// outside the store lock.
func (s *Store) Subscribe(fn func([]Line)) func() {
	s.mu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Add puts a product in the cart, or raises the quantity of its existing
// line. Validation failures and the in-flight guard resolve locally, before
// any network call and without touching shared state.
func (s *Store) Add(ctx context.Context, input AddInput) error {
	if input.RequiresVariant && input.VariantID == "" {
		return VariantRequiredErr
	}
	if input.Quantity < MinQuantity || input.Quantity > MaxQuantity {
		return QuantityOutOfBoundsErr
	}

	key := lineKey{productID: input.ProductID, variantID: input.VariantID}

	s.mu.Lock()
	if _, inFlight := s.pending[key]; inFlight {
		s.mu.Unlock()
		return MutationInFlightErr
	}

	idx, existed := s.findLocked(key)
	target := input.Quantity
	if existed {
		target += s.lines[idx].Quantity
		if target > MaxQuantity {
			s.mu.Unlock()
			return QuantityOutOfBoundsErr
		}
	}

	// Snapshot, then apply optimistically.
	var prev Line
	if existed {
		prev = s.lines[idx]
		s.lines[idx].Quantity = target
		s.lines[idx].Pending = true
	} else {
		s.lines = append(s.lines, Line{
			ProductID: input.ProductID,
			VariantID: input.VariantID,
			Quantity:  target,
			Pending:   true,
		})
	}
	s.pending[key] = struct{}{}
	s.mu.Unlock()
	s.notify()

	var confirmed *api.ConfirmedLine
	var err error
	if existed {
		confirmed, err = s.cartAPI.CartUpdate(ctx, input.ProductID, input.VariantID, target)
	} else {
		confirmed, err = s.cartAPI.CartAdd(ctx, input.ProductID, input.VariantID, target)
	}

	s.mu.Lock()
	delete(s.pending, key)
	if err != nil {
		s.rollbackLocked(key, prev, idx, existed)
		s.mu.Unlock()
		s.notify()
		return errors.Wrap(err, "[Store.Add] cart mutation")
	}
	s.commitLocked(key, confirmed)
	s.mu.Unlock()
	s.notify()
	return nil
}

// SetQuantity sets a line's quantity through the stepper/input edit path.
// Quantity 0 removes the line; it is never stored.
func (s *Store) SetQuantity(ctx context.Context, productID, variantID string, quantity int) error {
	if quantity < 0 || quantity > MaxQuantity {
		return QuantityOutOfBoundsErr
	}

	key := lineKey{productID: productID, variantID: variantID}

	s.mu.Lock()
	if _, inFlight := s.pending[key]; inFlight {
		s.mu.Unlock()
		return MutationInFlightErr
	}

	idx, existed := s.findLocked(key)
	if !existed {
		s.mu.Unlock()
		return LineNotFoundErr
	}

	prev := s.lines[idx]
	if quantity == 0 {
		s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	} else {
		s.lines[idx].Quantity = quantity
		s.lines[idx].Pending = true
	}
	s.pending[key] = struct{}{}
	s.mu.Unlock()
	s.notify()

	confirmed, err := s.cartAPI.CartUpdate(ctx, productID, variantID, quantity)

	s.mu.Lock()
	delete(s.pending, key)
	if err != nil {
		s.rollbackLocked(key, prev, idx, true)
		s.mu.Unlock()
		s.notify()
		return errors.Wrap(err, "[Store.SetQuantity] cart update")
	}
	s.commitLocked(key, confirmed)
	s.mu.Unlock()
	s.notify()
	return nil
}

// findLocked returns the index of the line for key. Caller holds s.mu.
func (s *Store) findLocked(key lineKey) (int, bool) {
	for i, l := range s.lines {
		if l.ProductID == key.productID && l.VariantID == key.variantID {
			return i, true
		}
	}
	return 0, false
}

// rollbackLocked restores the pre-mutation state of key's line, preserving
// its original position prevIdx. Caller holds s.mu.
func (s *Store) rollbackLocked(key lineKey, prev Line, prevIdx int, existed bool) {
	idx, present := s.findLocked(key)
	switch {
	case existed && present:
		s.lines[idx] = prev
	case existed && !present:
		// The optimistic mutation removed the line; put it back where it was.
		if prevIdx > len(s.lines) {
			prevIdx = len(s.lines)
		}
		s.lines = append(s.lines[:prevIdx], append([]Line{prev}, s.lines[prevIdx:]...)...)
	case !existed && present:
		s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	}
}

// commitLocked replaces key's line with the server-confirmed one. A nil
// confirmed line means the server removed it. Caller holds s.mu.
func (s *Store) commitLocked(key lineKey, confirmed *api.ConfirmedLine) {
	idx, present := s.findLocked(key)
	if confirmed == nil {
		if present {
			s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
		}
		return
	}
	line := confirmedToLine(confirmed)
	if present {
		s.lines[idx] = line
	} else {
		s.lines = append(s.lines, line)
	}
}

func (s *Store) snapshotLocked() []Line {
	snap := make([]Line, len(s.lines))
	copy(snap, s.lines)
	return snap
}

func (s *Store) notify() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	fns := make([]func([]Line), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
