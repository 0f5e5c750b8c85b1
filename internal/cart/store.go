// Package cart mirrors the server-held cart of the current session.
//
// Every accepted mutation except ClearCart ends by re-reading the whole cart,
// so the snapshot held here is always one the server produced. The client
// does no pricing, tax or stock arithmetic.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/leavalz/Natural-Triade-Shop/internal/commerce"
	"github.com/leavalz/Natural-Triade-Shop/internal/logger"
	"github.com/leavalz/Natural-Triade-Shop/internal/metrics"
	"github.com/leavalz/Natural-Triade-Shop/internal/notify"
	"github.com/leavalz/Natural-Triade-Shop/internal/remote"
)

var ErrInvalidQuantity = errors.New("cart: quantity must be positive")

const (
	opFetch  = "fetch"
	opAdd    = "add"
	opUpdate = "update"
	opRemove = "remove"
	opClear  = "clear"
)

const (
	msgAdded        = "Product added to cart"
	msgAddFailed    = "Could not add product to cart"
	msgUpdateFailed = "Could not update quantity"
	msgRemoved      = "Product removed"
	msgRemoveFailed = "Could not remove product"
	msgCleared      = "Cart emptied"
	msgClearFailed  = "Could not empty cart"
)

// Remote is the slice of the commerce API the cart needs. Every call is made
// on behalf of the session credential; the cart never names its owner.
type Remote interface {
	GetCart(ctx context.Context) (*commerce.Cart, error)
	AddItem(ctx context.Context, productID commerce.ID, quantity int) error
	UpdateItem(ctx context.Context, itemID commerce.ID, quantity int) error
	RemoveItem(ctx context.Context, itemID commerce.ID) error
	ClearCart(ctx context.Context) error
}

type Store struct {
	remote   Remote
	notifier notify.Notifier

	mu      sync.RWMutex
	cart    *commerce.Cart
	loading int
	// epoch advances on Reset and ClearCart; fetches started before it are
	// discarded.
	epoch uint64
}

func New(r Remote, n notify.Notifier) *Store {
	if n == nil {
		n = notify.Discard{}
	}
	return &Store{remote: r, notifier: n}
}

// Cart returns a copy of the current snapshot, or nil before the first fetch.
func (s *Store) Cart() *commerce.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

// TotalItems sums line quantities. Zero when no cart is loaded.
func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.TotalQuantity()
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// Reset drops the local snapshot without contacting the server. Used when the
// session ends so the next session never sees a previous owner's cart.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = nil
	s.epoch++
}

// FetchCart replaces the snapshot with the server's. A failure leaves the
// previous snapshot in place and is logged, never notified.
func (s *Store) FetchCart(ctx context.Context) error {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading--
		s.mu.Unlock()
	}()

	if err := s.refresh(ctx, opFetch); err != nil {
		return err
	}
	metrics.ObserveCartOp(opFetch, metrics.OutcomeSuccess)
	return nil
}

// refresh runs unsynchronized with other fetches; whichever resolves last
// wins.
func (s *Store) refresh(ctx context.Context, op string) error {
	s.mu.RLock()
	epoch := s.epoch
	s.mu.RUnlock()

	cart, err := s.remote.GetCart(ctx)
	if err != nil {
		metrics.ObserveFetchFailure()
		metrics.ObserveCartOp(opFetch, metrics.OutcomeFailure)
		logger.Error("cart fetch failed", map[string]any{
			"after": op,
			"error": err.Error(),
		})
		return fmt.Errorf("cart: fetch: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		logger.Debug("discarding cart fetched before reset or clear", nil)
		return nil
	}
	s.cart = cart
	return nil
}

// refetch follows an accepted mutation. Its failure does not fail the
// mutation.
func (s *Store) refetch(ctx context.Context, op string) {
	_ = s.refresh(ctx, op)
}

func (s *Store) rejectQuantity(op string, quantity int) error {
	metrics.ObserveCartOp(op, metrics.OutcomeRejected)
	logger.Warn("cart quantity rejected", map[string]any{
		"op":       op,
		"quantity": quantity,
	})
	return fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
}

// failed reports a rejected mutation. msg is shown to the user as is.
func (s *Store) failed(op string, err error, msg string) error {
	metrics.ObserveCartOp(op, metrics.OutcomeFailure)
	logger.Warn("cart mutation failed", map[string]any{
		"op":    op,
		"error": err.Error(),
	})
	s.notifier.Error(msg)
	return fmt.Errorf("cart: %s: %w", op, err)
}

// AddToCart adds productID, or increments its line when already present.
func (s *Store) AddToCart(ctx context.Context, productID commerce.ID, quantity int) error {
	if quantity <= 0 {
		return s.rejectQuantity(opAdd, quantity)
	}

	if err := s.remote.AddItem(ctx, productID, quantity); err != nil {
		return s.failed(opAdd, err, remote.Detail(err, msgAddFailed))
	}

	metrics.ObserveCartOp(opAdd, metrics.OutcomeSuccess)
	logger.Info("product added to cart", map[string]any{
		"product_id": productID.String(),
		"quantity":   quantity,
	})
	s.notifier.Success(msgAdded)
	s.refetch(ctx, opAdd)
	return nil
}

// UpdateQuantity sets the quantity of a line. Quantities below one are
// rejected before any remote call; removal goes through RemoveFromCart.
func (s *Store) UpdateQuantity(ctx context.Context, itemID commerce.ID, quantity int) error {
	if quantity <= 0 {
		return s.rejectQuantity(opUpdate, quantity)
	}

	if err := s.remote.UpdateItem(ctx, itemID, quantity); err != nil {
		return s.failed(opUpdate, err, remote.Detail(err, msgUpdateFailed))
	}

	metrics.ObserveCartOp(opUpdate, metrics.OutcomeSuccess)
	s.refetch(ctx, opUpdate)
	return nil
}

// RemoveFromCart deletes a line. Failures carry a fixed message, not the
// server's detail.
func (s *Store) RemoveFromCart(ctx context.Context, itemID commerce.ID) error {
	if err := s.remote.RemoveItem(ctx, itemID); err != nil {
		return s.failed(opRemove, err, msgRemoveFailed)
	}

	metrics.ObserveCartOp(opRemove, metrics.OutcomeSuccess)
	s.notifier.Success(msgRemoved)
	s.refetch(ctx, opRemove)
	return nil
}

// ClearCart empties the cart server-side. The local snapshot becomes nil
// without a re-fetch, and a fetch still in flight is discarded when it lands
// so it cannot bring the old lines back. Failures carry a fixed message.
func (s *Store) ClearCart(ctx context.Context) error {
	if err := s.remote.ClearCart(ctx); err != nil {
		return s.failed(opClear, err, msgClearFailed)
	}

	s.mu.Lock()
	s.cart = nil
	s.epoch++
	s.mu.Unlock()

	metrics.ObserveCartOp(opClear, metrics.OutcomeSuccess)
	s.notifier.Success(msgCleared)
	return nil
}
