package cart_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leavalz/Natural-Triade-Shop/internal/cart"
	"github.com/leavalz/Natural-Triade-Shop/internal/commerce"
	"github.com/leavalz/Natural-Triade-Shop/internal/commercetest"
	"github.com/leavalz/Natural-Triade-Shop/internal/notify"
	"github.com/leavalz/Natural-Triade-Shop/internal/remote"
)

type tokenHolder struct{ token string }

func (h *tokenHolder) Credential() (string, bool) { return h.token, h.token != "" }

func setup(t *testing.T) (*commercetest.Server, *cart.Store, *notify.Feed) {
	t.Helper()

	api := commercetest.New()
	t.Cleanup(api.Close)

	api.AddUser("ana", "ana@example.com", "secret", commerce.RoleUser)
	api.AddProduct(commerce.Product{ID: "1", Name: "Jabón de avena", Price: 12.5, Stock: 10, IsActive: true})
	api.AddProduct(commerce.Product{ID: "2", Name: "Aceite de coco", Price: 20, Stock: 2, IsActive: true})

	client, err := remote.New(remote.Config{BaseURL: api.URL})
	require.NoError(t, err)

	token, err := client.Login(context.Background(), "ana", "secret")
	require.NoError(t, err)
	client.UseCredentials(&tokenHolder{token: token})

	feed := notify.NewFeed(20)
	return api, cart.New(client, feed), feed
}

func TestAddToEmptyCart(t *testing.T) {
	api, store, _ := setup(t)
	require.Nil(t, store.Cart())

	require.NoError(t, store.AddToCart(context.Background(), "1", 1))

	got := store.Cart()
	require.NotNil(t, got)
	_, ok := got.Find("1")
	assert.True(t, ok)
	assert.Equal(t, api.CartOf("ana"), got)
}

func TestMutationsMirrorServerSnapshot(t *testing.T) {
	ctx := context.Background()
	api, store, _ := setup(t)

	require.NoError(t, store.AddToCart(ctx, "1", 2))
	assert.Equal(t, api.CartOf("ana"), store.Cart())

	require.NoError(t, store.AddToCart(ctx, "2", 1))
	assert.Equal(t, api.CartOf("ana"), store.Cart())
	assert.Equal(t, 3, store.TotalItems())

	line, ok := store.Cart().Find("1")
	require.True(t, ok)
	require.NoError(t, store.UpdateQuantity(ctx, line.ID, 5))
	assert.Equal(t, api.CartOf("ana"), store.Cart())
	assert.Equal(t, 6, store.TotalItems())

	require.NoError(t, store.RemoveFromCart(ctx, line.ID))
	assert.Equal(t, api.CartOf("ana"), store.Cart())
	assert.Equal(t, 1, store.TotalItems())
}

func TestStockRejectionKeepsLastSnapshot(t *testing.T) {
	ctx := context.Background()
	_, store, feed := setup(t)

	require.NoError(t, store.AddToCart(ctx, "2", 2))
	before := store.Cart()
	feed.Drain()

	require.Error(t, store.AddToCart(ctx, "2", 1))

	assert.Equal(t, before, store.Cart())
	notes := feed.Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, "Insufficient stock. Available: 2, in cart: 2", notes[0].Message)
}

func TestUpdateToZeroMakesNoCall(t *testing.T) {
	ctx := context.Background()
	api, store, _ := setup(t)

	require.NoError(t, store.AddToCart(ctx, "1", 1))
	line, _ := store.Cart().Find("1")

	err := store.UpdateQuantity(ctx, line.ID, 0)
	require.ErrorIs(t, err, cart.ErrInvalidQuantity)
	assert.Zero(t, api.Calls(http.MethodPut, "/cart/items/:id"))
	assert.Equal(t, 1, store.TotalItems())
}

func TestClearCartAgainstCommerceAPI(t *testing.T) {
	ctx := context.Background()
	api, store, _ := setup(t)

	require.NoError(t, store.AddToCart(ctx, "1", 3))
	fetches := api.Calls(http.MethodGet, "/cart/")

	require.NoError(t, store.ClearCart(ctx))

	assert.Nil(t, store.Cart())
	assert.Empty(t, api.CartOf("ana").Items)
	assert.Equal(t, fetches, api.Calls(http.MethodGet, "/cart/"))
}
