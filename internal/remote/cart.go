package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/leavalz/Natural-Triade-Shop/internal/commerce"
)

type addItemRequest struct {
	ProductID commerce.ID `json:"product_id"`
	Quantity  int         `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func itemPath(itemID commerce.ID) string {
	return "/cart/items/" + url.PathEscape(itemID.String())
}

// GetCart returns the cart of the principal behind the session credential.
func (c *Client) GetCart(ctx context.Context) (*commerce.Cart, error) {
	r := request{op: "get_cart", method: http.MethodGet, path: "/cart/", auth: authSession}

	var cart commerce.Cart
	if err := c.do(ctx, r, &cart); err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []commerce.CartItem{}
	}
	return &cart, nil
}

// AddItem adds productID or increments its existing line server-side.
func (c *Client) AddItem(ctx context.Context, productID commerce.ID, quantity int) error {
	r, err := jsonRequest("add_item", http.MethodPost, "/cart/items",
		addItemRequest{ProductID: productID, Quantity: quantity}, authSession)
	if err != nil {
		return err
	}
	return c.do(ctx, r, nil)
}

func (c *Client) UpdateItem(ctx context.Context, itemID commerce.ID, quantity int) error {
	r, err := jsonRequest("update_item", http.MethodPut, itemPath(itemID),
		updateItemRequest{Quantity: quantity}, authSession)
	if err != nil {
		return err
	}
	return c.do(ctx, r, nil)
}

func (c *Client) RemoveItem(ctx context.Context, itemID commerce.ID) error {
	r := request{op: "remove_item", method: http.MethodDelete, path: itemPath(itemID), auth: authSession}
	return c.do(ctx, r, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	r := request{op: "clear_cart", method: http.MethodDelete, path: "/cart/", auth: authSession}
	return c.do(ctx, r, nil)
}
