// Package client is the HTTP client for the gros storefront API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gros-dev/gros/internal/cli/auth"
	"github.com/gros-dev/gros/internal/cli/session"
)

// Client represents an HTTP client for the gros API
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     auth.TokenStore
	store      session.Store
}

// New creates a new API client. store provides the legacy Basic credentials
// sent when no JWT is available; it may be nil.
func New(baseURL string, store session.Store) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens: auth.DefaultTokens,
		store:  store,
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// SetTokenStore sets a custom token store (used in tests)
func (c *Client) SetTokenStore(tokens auth.TokenStore) {
	c.tokens = tokens
}

// BaseURL returns the server base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// setAuthHeaders attaches the JWT bearer token, or falls back to the legacy
// Basic credentials still held in the session store for endpoints that
// predate token auth.
func (c *Client) setAuthHeaders(req *http.Request) {
	if token, err := c.tokens.LoadToken(c.baseURL); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
		return
	}

	if c.store == nil {
		return
	}
	username, hasUser := c.store.Get(session.KeyUsername)
	password, hasPass := c.store.Get(session.KeyPassword)
	if hasUser && hasPass {
		req.SetBasicAuth(username, password)
	}
}

// do sends a JSON request and decodes the JSON response into out (when out
// is non-nil). Non-2xx responses become errors carrying the status and body.
func (c *Client) do(method, path string, body, out interface{}, authenticated bool) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		c.setAuthHeaders(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a login response. Field presence varies between
// the user and admin login flows, so everything past the token is optional.
type LoginResponse struct {
	Token        string `json:"token"`
	CustomerID   *int64 `json:"customerId,omitempty"`
	Email        string `json:"email,omitempty"`
	UserRole     string `json:"userRole,omitempty"`
	CustomerName string `json:"customerName,omitempty"`
	IsAdmin      bool   `json:"isAdmin,omitempty"`
}

// Login authenticates a customer
func (c *Client) Login(email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(http.MethodPost, "/api/users/login", LoginRequest{Email: email, Password: password}, &resp, false); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return &resp, nil
}

// AdminLogin authenticates an administrator
func (c *Client) AdminLogin(email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(http.MethodPost, "/api/users/admin/login", LoginRequest{Email: email, Password: password}, &resp, false); err != nil {
		return nil, fmt.Errorf("admin login failed: %w", err)
	}
	return &resp, nil
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse represents a registration response
type RegisterResponse struct {
	CustomerID   int64  `json:"customerId"`
	Email        string `json:"email"`
	CustomerName string `json:"customerName"`
}

// Register creates a new customer account
func (c *Client) Register(name, email, password string) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.do(http.MethodPost, "/api/users/register", RegisterRequest{Name: name, Email: email, Password: password}, &resp, false); err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	return &resp, nil
}

// NotifyLogout tells the backend the user logged out. Implements
// auth.LogoutNotifier.
func (c *Client) NotifyLogout(email string) error {
	path := fmt.Sprintf("/api/users/logout?email=%s", url.QueryEscape(email))
	return c.do(http.MethodPost, path, nil, nil, true)
}

// Product represents a catalog product
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"image_url"`
}

// ProductList is a page of products
type ProductList struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Size     int       `json:"size"`
}

// ListProducts fetches a page of the catalog, optionally filtered by a
// search query.
func (c *Client) ListProducts(page, size int, query string) (*ProductList, error) {
	path := fmt.Sprintf("/api/products?page=%d&size=%d", page, size)
	if query != "" {
		path += "&q=" + url.QueryEscape(query)
	}

	var resp ProductList
	if err := c.do(http.MethodGet, path, nil, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProduct fetches a single product
func (c *Client) GetProduct(id string) (*Product, error) {
	var resp Product
	if err := c.do(http.MethodGet, "/api/products/"+id, nil, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProductRequest is the payload for product create/update
type ProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"image_url"`
}

// CreateProduct adds a product to the catalog (admin only)
func (c *Client) CreateProduct(req ProductRequest) (*Product, error) {
	var resp Product
	if err := c.do(http.MethodPost, "/api/products", req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateProduct updates a product (admin only)
func (c *Client) UpdateProduct(id string, req ProductRequest) (*Product, error) {
	var resp Product
	if err := c.do(http.MethodPut, "/api/products/"+id, req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteProduct removes a product (admin only)
func (c *Client) DeleteProduct(id string) error {
	return c.do(http.MethodDelete, "/api/products/"+id, nil, nil, true)
}

// CartItem represents an item in a customer's cart
type CartItem struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// Cart is a customer's cart contents
type Cart struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
}

// GetCart fetches the customer's cart
func (c *Client) GetCart(customerID int64) (*Cart, error) {
	var resp Cart
	if err := c.do(http.MethodGet, fmt.Sprintf("/api/cart/%d", customerID), nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddToCartRequest is the payload for adding a product to a cart
type AddToCartRequest struct {
	CustomerID int64  `json:"customerId"`
	ProductID  string `json:"productId"`
	Quantity   int    `json:"quantity"`
}

// AddToCart adds a product to the customer's cart
func (c *Client) AddToCart(customerID int64, productID string, quantity int) (*CartItem, error) {
	var resp CartItem
	req := AddToCartRequest{CustomerID: customerID, ProductID: productID, Quantity: quantity}
	if err := c.do(http.MethodPost, "/api/cart", req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateCartItem changes the quantity of a cart item
func (c *Client) UpdateCartItem(itemID string, quantity int) (*CartItem, error) {
	var resp CartItem
	req := struct {
		Quantity int `json:"quantity"`
	}{Quantity: quantity}
	if err := c.do(http.MethodPut, "/api/cart/items/"+itemID, req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RemoveCartItem deletes a cart item
func (c *Client) RemoveCartItem(itemID string) error {
	return c.do(http.MethodDelete, "/api/cart/items/"+itemID, nil, nil, true)
}

// Order represents a placed order
type Order struct {
	ID         string      `json:"id"`
	CustomerID int64       `json:"customer_id"`
	Status     string      `json:"status"`
	Total      float64     `json:"total"`
	PlacedAt   time.Time   `json:"placed_at"`
	Items      []OrderItem `json:"items"`
}

// OrderItem is a line of an order
type OrderItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// PlaceOrder converts the customer's cart into an order
func (c *Client) PlaceOrder(customerID int64) (*Order, error) {
	var resp Order
	req := struct {
		CustomerID int64 `json:"customerId"`
	}{CustomerID: customerID}
	if err := c.do(http.MethodPost, "/api/orders/place-order", req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// OrderHistory fetches a customer's past orders
func (c *Client) OrderHistory(customerID int64) ([]Order, error) {
	var resp []Order
	if err := c.do(http.MethodGet, fmt.Sprintf("/api/orders/history/%d", customerID), nil, &resp, true); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListOrders fetches all orders (admin only)
func (c *Client) ListOrders() ([]Order, error) {
	var resp []Order
	if err := c.do(http.MethodGet, "/api/orders", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp, nil
}

// CustomerDetail represents customer profile information
type CustomerDetail struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// GetProfile fetches a customer's profile
func (c *Client) GetProfile(customerID int64) (*CustomerDetail, error) {
	var resp CustomerDetail
	if err := c.do(http.MethodGet, fmt.Sprintf("/api/users/me/%d", customerID), nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateProfileRequest is the payload for profile updates
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateProfile updates a customer's profile
func (c *Client) UpdateProfile(customerID int64, req UpdateProfileRequest) (*CustomerDetail, error) {
	var resp CustomerDetail
	if err := c.do(http.MethodPut, fmt.Sprintf("/api/users/me/%d", customerID), req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChangePassword updates a customer's password
func (c *Client) ChangePassword(customerID int64, oldPassword, newPassword string) error {
	req := struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}{OldPassword: oldPassword, NewPassword: newPassword}
	return c.do(http.MethodPut, fmt.Sprintf("/api/users/me/%d/password", customerID), req, nil, true)
}

// ListCustomers fetches all customers (admin only)
func (c *Client) ListCustomers() ([]CustomerDetail, error) {
	var resp []CustomerDetail
	if err := c.do(http.MethodGet, "/api/users", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp, nil
}

// DeleteCustomer removes a customer account (admin only)
func (c *Client) DeleteCustomer(customerID int64) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", customerID), nil, nil, true)
}
