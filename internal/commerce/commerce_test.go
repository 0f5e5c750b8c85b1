package commerce

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var item CartItem
	require.NoError(t, json.Unmarshal([]byte(`{"id": 12, "product_id": "p1", "quantity": 2}`), &item))

	assert.Equal(t, ID("12"), item.ID)
	assert.Equal(t, ID("p1"), item.ProductID)
}

func TestIDMarshalKeepsNumericIDsNumeric(t *testing.T) {
	body, err := json.Marshal(map[string]ID{"product_id": "42", "sku": "p1"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"product_id": 42, "sku": "p1"}`, string(body))
}

func TestIDNonCanonicalNumbersStayStrings(t *testing.T) {
	for _, raw := range []ID{"007", "+5", "-0", "99999999999999999999"} {
		body, err := json.Marshal(struct {
			ID ID `json:"id"`
		}{raw})
		require.NoError(t, err, "id %q", raw)

		var back struct {
			ID ID `json:"id"`
		}
		require.NoError(t, json.Unmarshal(body, &back))
		assert.Equal(t, raw, back.ID)
	}

	body, err := json.Marshal(ID("-12"))
	require.NoError(t, err)
	assert.Equal(t, "-12", string(body))
}

func TestIdentityWithPaddedIDRoundTrips(t *testing.T) {
	var identity Identity
	require.NoError(t, json.Unmarshal([]byte(`{"id":"007","username":"ana"}`), &identity))

	body, err := json.Marshal(identity)
	require.NoError(t, err)

	var back Identity
	require.NoError(t, json.Unmarshal(body, &back))
	assert.Equal(t, ID("007"), back.ID)
}

func TestIDNullIsZero(t *testing.T) {
	var id ID = "7"
	require.NoError(t, json.Unmarshal([]byte(`null`), &id))
	assert.True(t, id.IsZero())
}

func TestIdentityIsAdmin(t *testing.T) {
	var anonymous *Identity
	assert.False(t, anonymous.IsAdmin())
	assert.False(t, (&Identity{Role: RoleUser}).IsAdmin())
	assert.True(t, (&Identity{Role: RoleAdmin}).IsAdmin())
}

func TestCartTotalQuantity(t *testing.T) {
	var absent *Cart
	assert.Equal(t, 0, absent.TotalQuantity())

	cart := &Cart{Items: []CartItem{{Quantity: 2}, {Quantity: 3}}}
	assert.Equal(t, 5, cart.TotalQuantity())
}

func TestCartCloneIsIndependent(t *testing.T) {
	cart := &Cart{Items: []CartItem{{ID: "1", Quantity: 1}}, Total: 10}

	cp := cart.Clone()
	cp.Items[0].Quantity = 9

	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.Nil(t, (*Cart)(nil).Clone())
}

func TestCartFind(t *testing.T) {
	cart := &Cart{Items: []CartItem{{ID: "1", ProductID: "p1"}, {ID: "2", ProductID: "p2"}}}

	item, ok := cart.Find("p2")
	require.True(t, ok)
	assert.Equal(t, ID("2"), item.ID)

	_, ok = cart.Find("p3")
	assert.False(t, ok)
}
