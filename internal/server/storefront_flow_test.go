package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gros-dev/gros/internal/models"
)

// Walks the whole storefront journey through the HTTP surface: register,
// log in, browse, fill a cart, place the order, check history, log out.
func TestStorefrontFlow(t *testing.T) {
	s := newTestServer(t)
	admin := createCustomer(t, s, "admin@example.com", "adminpass", models.RoleAdmin)
	adminToken := tokenFor(t, admin)

	// Admin stocks the catalog
	w := doRequest(t, s, http.MethodPost, "/api/products", adminToken, map[string]interface{}{
		"name": "Olive Oil", "description": "Extra virgin", "price": 8.00, "stock": 12,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product models.Product
	decodeJSON(t, w, &product)

	// New customer registers and logs in
	w = doRequest(t, s, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "Grace", "email": "grace@example.com", "password": "gracepass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(t, s, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "grace@example.com", "password": "gracepass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login LoginResponse
	decodeJSON(t, w, &login)
	require.NotEmpty(t, login.Token)
	require.Equal(t, models.RoleCustomer, login.UserRole)
	require.False(t, login.IsAdmin)

	// Browse and fill the cart
	w = doRequest(t, s, http.MethodGet, "/api/products?q=Olive", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list ProductListResponse
	decodeJSON(t, w, &list)
	require.Len(t, list.Products, 1)

	w = doRequest(t, s, http.MethodPost, "/api/cart", login.Token, map[string]interface{}{
		"customerId": login.CustomerID, "productId": product.ID, "quantity": 3,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Place the order
	w = doRequest(t, s, http.MethodPost, "/api/orders/place-order", login.Token, map[string]int64{
		"customerId": login.CustomerID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order models.Order
	decodeJSON(t, w, &order)
	require.Equal(t, models.OrderStatusPlaced, order.Status)
	require.InDelta(t, 24.00, order.Total, 0.001)

	// Order shows up in history
	w = doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/orders/history/%d", login.CustomerID), login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []models.Order
	decodeJSON(t, w, &history)
	require.Len(t, history, 1)
	require.Equal(t, order.ID, history[0].ID)

	// Logout notification succeeds even with the queue unreachable
	w = doRequest(t, s, http.MethodPost, "/api/users/logout?email=grace@example.com", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
}
