package commerce

// CartItem is one line of the server-held cart.
type CartItem struct {
	ID              ID      `json:"id"`
	ProductID       ID      `json:"product_id"`
	ProductName     string  `json:"product_name"`
	ProductPrice    float64 `json:"product_price"`
	ProductImageURL *string `json:"product_image_url"`
	Quantity        int     `json:"quantity"`
	PriceAtAddition float64 `json:"price_at_addition"`
	Subtotal        float64 `json:"subtotal"`
}

// Cart is a full snapshot as computed by the server. Aggregates are trusted
// verbatim; the client never recomputes prices or tax.
type Cart struct {
	Items      []CartItem `json:"items"`
	Subtotal   float64    `json:"subtotal"`
	Tax        float64    `json:"tax"`
	Total      float64    `json:"total"`
	ItemsCount int        `json:"items_count"`
}

// TotalQuantity sums item quantities. A nil cart has zero items.
func (c *Cart) TotalQuantity() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Clone returns a deep copy so callers cannot mutate store state.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	cp := *c
	if c.Items != nil {
		cp.Items = make([]CartItem, len(c.Items))
		copy(cp.Items, c.Items)
	}
	return &cp
}

// Find returns the line item referencing productID, if any.
func (c *Cart) Find(productID ID) (CartItem, bool) {
	if c == nil {
		return CartItem{}, false
	}
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}
