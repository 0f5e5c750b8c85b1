package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/leavalz/Natural-Triade-Shop/internal/commerce"
)

// ListProducts returns active products, optionally narrowed to one category.
func (c *Client) ListProducts(ctx context.Context, category string) ([]commerce.Product, error) {
	path := "/products/"
	if category != "" {
		path += "?" + url.Values{"category": {category}}.Encode()
	}

	var products []commerce.Product
	if err := c.do(ctx, request{op: "list_products", method: http.MethodGet, path: path}, &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []commerce.Product{}
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id commerce.ID) (*commerce.Product, error) {
	r := request{op: "get_product", method: http.MethodGet, path: "/products/" + url.PathEscape(id.String())}

	var product commerce.Product
	if err := c.do(ctx, r, &product); err != nil {
		return nil, err
	}
	return &product, nil
}
