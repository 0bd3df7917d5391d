package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gros-dev/gros/internal/auth"
	"github.com/gros-dev/gros/internal/config"
	"github.com/gros-dev/gros/internal/models"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	auth.InitializeJWT("test-secret")

	cfg := &config.Config{
		Redis:  config.RedisConfig{Address: "localhost:6379"},
		Worker: config.WorkerConfig{CartMaxAgeHours: 72},
	}

	s := &Server{
		db:        db,
		config:    cfg,
		logger:    zerolog.Nop(),
		validator: validator.New(),
		// Enqueue failures are tolerated by every handler that uses this,
		// so tests run without Redis.
		asynqClient: asynq.NewClient(asynq.RedisClientOpt{Addr: "localhost:1"}),
		version:     "test",
	}
	s.setupRouter()
	return s
}

func createCustomer(t *testing.T, s *Server, email, password, role string) *models.Customer {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	customer := &models.Customer{
		Email:        email,
		PasswordHash: hash,
		Name:         "Test User",
		Role:         role,
	}
	if err := s.db.Create(customer).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return customer
}

func tokenFor(t *testing.T, c *models.Customer) string {
	t.Helper()

	token, err := auth.GenerateToken(c.ID, c.Email, c.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func doRequest(t *testing.T, s *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodPost, "/api/users/register", "", map[string]string{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": "secret123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}

	// Duplicate email
	w = doRequest(t, s, http.MethodPost, "/api/users/register", "", map[string]string{
		"name":     "Ada Again",
		"email":    "ada@example.com",
		"password": "secret123",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", w.Code)
	}

	w = doRequest(t, s, http.MethodPost, "/api/users/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}

	var resp LoginResponse
	decodeJSON(t, w, &resp)
	if resp.Token == "" {
		t.Error("login response missing token")
	}
	if resp.CustomerID == 0 {
		t.Error("login response missing customerId")
	}
	if resp.Email != "ada@example.com" {
		t.Errorf("email = %q", resp.Email)
	}
	if resp.UserRole != models.RoleCustomer {
		t.Errorf("userRole = %q, want CUSTOMER", resp.UserRole)
	}
	if resp.CustomerName != "Ada" {
		t.Errorf("customerName = %q", resp.CustomerName)
	}
	if resp.IsAdmin {
		t.Error("customer login should not set isAdmin")
	}

	// Wrong password
	w = doRequest(t, s, http.MethodPost, "/api/users/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", w.Code)
	}
}

func TestAdminLogin(t *testing.T) {
	s := newTestServer(t)
	createCustomer(t, s, "admin@example.com", "adminpass", models.RoleAdmin)
	createCustomer(t, s, "user@example.com", "userpass", models.RoleCustomer)

	w := doRequest(t, s, http.MethodPost, "/api/users/admin/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "adminpass",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("admin login status = %d, body %s", w.Code, w.Body.String())
	}
	var resp LoginResponse
	decodeJSON(t, w, &resp)
	if !resp.IsAdmin {
		t.Error("admin login response should set isAdmin")
	}
	if resp.UserRole != models.RoleAdmin {
		t.Errorf("userRole = %q, want ADMIN", resp.UserRole)
	}

	// Customer on the admin endpoint
	w = doRequest(t, s, http.MethodPost, "/api/users/admin/login", "", map[string]string{
		"email":    "user@example.com",
		"password": "userpass",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("customer admin login status = %d, want 403", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t)
	customer := createCustomer(t, s, "bob@example.com", "bobpass", models.RoleCustomer)

	// No credentials
	w := doRequest(t, s, http.MethodPost, "/api/users/logout", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no auth status = %d, want 401", w.Code)
	}

	// Bearer token
	w = doRequest(t, s, http.MethodPost, "/api/users/logout?email=bob@example.com", tokenFor(t, customer), nil)
	if w.Code != http.StatusOK {
		t.Errorf("bearer status = %d, body %s", w.Code, w.Body.String())
	}

	// Legacy basic auth
	req := httptest.NewRequest(http.MethodPost, "/api/users/logout", nil)
	req.SetBasicAuth("bob@example.com", "bobpass")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("basic auth status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Basic auth with wrong password
	req = httptest.NewRequest(http.MethodPost, "/api/users/logout", nil)
	req.SetBasicAuth("bob@example.com", "wrong")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad basic auth status = %d, want 401", rec.Code)
	}
}

func TestProductHandlers(t *testing.T) {
	s := newTestServer(t)
	admin := createCustomer(t, s, "admin@example.com", "adminpass", models.RoleAdmin)
	customer := createCustomer(t, s, "user@example.com", "userpass", models.RoleCustomer)
	adminToken := tokenFor(t, admin)

	// Customers may not create products
	w := doRequest(t, s, http.MethodPost, "/api/products", tokenFor(t, customer), map[string]interface{}{
		"name": "Wine", "price": 9.99, "stock": 10,
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("customer create status = %d, want 403", w.Code)
	}

	w = doRequest(t, s, http.MethodPost, "/api/products", adminToken, map[string]interface{}{
		"name": "Wine", "description": "Red", "price": 9.99, "stock": 10,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	var created models.Product
	decodeJSON(t, w, &created)
	if created.ID == "" {
		t.Fatal("created product missing id")
	}

	// Listing is public
	w = doRequest(t, s, http.MethodGet, "/api/products?q=Win", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list ProductListResponse
	decodeJSON(t, w, &list)
	if list.Total != 1 || len(list.Products) != 1 {
		t.Errorf("list total = %d, items = %d, want 1/1", list.Total, len(list.Products))
	}

	// Filter that matches nothing
	w = doRequest(t, s, http.MethodGet, "/api/products?q=Cheese", "", nil)
	decodeJSON(t, w, &list)
	if list.Total != 0 {
		t.Errorf("filtered total = %d, want 0", list.Total)
	}

	w = doRequest(t, s, http.MethodPut, "/api/products/"+created.ID, adminToken, map[string]interface{}{
		"name": "Wine", "price": 12.50, "stock": 5,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", w.Code, w.Body.String())
	}
	var updated models.Product
	decodeJSON(t, w, &updated)
	if updated.Price != 12.50 || updated.Stock != 5 {
		t.Errorf("updated price/stock = %v/%d", updated.Price, updated.Stock)
	}

	w = doRequest(t, s, http.MethodDelete, "/api/products/"+created.ID, adminToken, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", w.Code)
	}

	w = doRequest(t, s, http.MethodGet, "/api/products/"+created.ID, "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get deleted status = %d, want 404", w.Code)
	}
}

func TestCartHandlers(t *testing.T) {
	s := newTestServer(t)
	customer := createCustomer(t, s, "user@example.com", "userpass", models.RoleCustomer)
	other := createCustomer(t, s, "other@example.com", "otherpass", models.RoleCustomer)
	token := tokenFor(t, customer)

	product := &models.Product{Name: "Cheese", Price: 4.50, Stock: 20}
	if err := s.db.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}

	add := map[string]interface{}{
		"customerId": customer.ID, "productId": product.ID, "quantity": 2,
	}
	w := doRequest(t, s, http.MethodPost, "/api/cart", token, add)
	if w.Code != http.StatusOK {
		t.Fatalf("add status = %d, body %s", w.Code, w.Body.String())
	}

	// Same product again merges into the existing line
	w = doRequest(t, s, http.MethodPost, "/api/cart", token, add)
	if w.Code != http.StatusOK {
		t.Fatalf("re-add status = %d", w.Code)
	}
	var line CartItemDetail
	decodeJSON(t, w, &line)
	if line.Quantity != 4 {
		t.Errorf("merged quantity = %d, want 4", line.Quantity)
	}

	cartPath := fmt.Sprintf("/api/cart/%d", customer.ID)
	w = doRequest(t, s, http.MethodGet, cartPath, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get cart status = %d", w.Code)
	}
	var cart CartResponse
	decodeJSON(t, w, &cart)
	if len(cart.Items) != 1 {
		t.Fatalf("cart items = %d, want 1", len(cart.Items))
	}
	if cart.Total != 18.0 {
		t.Errorf("cart total = %v, want 18.0", cart.Total)
	}

	// Another customer may not read this cart
	w = doRequest(t, s, http.MethodGet, cartPath, tokenFor(t, other), nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("other customer cart status = %d, want 403", w.Code)
	}

	w = doRequest(t, s, http.MethodPut, "/api/cart/items/"+line.ID, token, map[string]int{"quantity": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("update item status = %d, body %s", w.Code, w.Body.String())
	}
	decodeJSON(t, w, &line)
	if line.Quantity != 1 {
		t.Errorf("updated quantity = %d, want 1", line.Quantity)
	}

	w = doRequest(t, s, http.MethodDelete, "/api/cart/items/"+line.ID, token, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("remove item status = %d", w.Code)
	}

	w = doRequest(t, s, http.MethodGet, cartPath, token, nil)
	decodeJSON(t, w, &cart)
	if len(cart.Items) != 0 {
		t.Errorf("cart items after remove = %d, want 0", len(cart.Items))
	}
}

func TestPlaceOrder(t *testing.T) {
	s := newTestServer(t)
	customer := createCustomer(t, s, "user@example.com", "userpass", models.RoleCustomer)
	admin := createCustomer(t, s, "admin@example.com", "adminpass", models.RoleAdmin)
	token := tokenFor(t, customer)

	product := &models.Product{Name: "Bread", Price: 2.00, Stock: 3}
	if err := s.db.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}

	// Empty cart
	w := doRequest(t, s, http.MethodPost, "/api/orders/place-order", token, map[string]int64{"customerId": customer.ID})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty cart status = %d, want 400", w.Code)
	}

	cartItem := &models.CartItem{CustomerID: customer.ID, ProductID: product.ID, Quantity: 2}
	if err := s.db.Create(cartItem).Error; err != nil {
		t.Fatalf("create cart item: %v", err)
	}

	w = doRequest(t, s, http.MethodPost, "/api/orders/place-order", token, map[string]int64{"customerId": customer.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("place order status = %d, body %s", w.Code, w.Body.String())
	}
	var order models.Order
	decodeJSON(t, w, &order)
	if order.Status != models.OrderStatusPlaced {
		t.Errorf("order status = %q, want PLACED", order.Status)
	}
	if order.Total != 4.00 {
		t.Errorf("order total = %v, want 4.00", order.Total)
	}
	if len(order.Items) != 1 || order.Items[0].ProductName != "Bread" {
		t.Errorf("order items = %+v", order.Items)
	}

	// Cart emptied, stock decremented
	var remaining int64
	s.db.Model(&models.CartItem{}).Where("customer_id = ?", customer.ID).Count(&remaining)
	if remaining != 0 {
		t.Errorf("cart items after order = %d, want 0", remaining)
	}
	var reloaded models.Product
	if err := models.FindByID(s.db, product.ID, &reloaded); err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 1 {
		t.Errorf("stock after order = %d, want 1", reloaded.Stock)
	}

	// Insufficient stock
	if err := s.db.Create(&models.CartItem{CustomerID: customer.ID, ProductID: product.ID, Quantity: 5}).Error; err != nil {
		t.Fatalf("create cart item: %v", err)
	}
	w = doRequest(t, s, http.MethodPost, "/api/orders/place-order", token, map[string]int64{"customerId": customer.ID})
	if w.Code != http.StatusConflict {
		t.Errorf("insufficient stock status = %d, want 409", w.Code)
	}

	// History, newest first
	w = doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/orders/history/%d", customer.ID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history status = %d", w.Code)
	}
	var history []models.Order
	decodeJSON(t, w, &history)
	if len(history) != 1 {
		t.Errorf("history length = %d, want 1", len(history))
	}

	// Admin order listing; customers are rejected
	w = doRequest(t, s, http.MethodGet, "/api/orders", token, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("customer list orders status = %d, want 403", w.Code)
	}
	w = doRequest(t, s, http.MethodGet, "/api/orders", tokenFor(t, admin), nil)
	if w.Code != http.StatusOK {
		t.Errorf("admin list orders status = %d", w.Code)
	}
}

func TestProfileHandlers(t *testing.T) {
	s := newTestServer(t)
	customer := createCustomer(t, s, "user@example.com", "userpass", models.RoleCustomer)
	other := createCustomer(t, s, "other@example.com", "otherpass", models.RoleCustomer)
	admin := createCustomer(t, s, "admin@example.com", "adminpass", models.RoleAdmin)
	token := tokenFor(t, customer)

	path := fmt.Sprintf("/api/users/me/%d", customer.ID)

	w := doRequest(t, s, http.MethodGet, path, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get profile status = %d", w.Code)
	}
	var detail CustomerDetail
	decodeJSON(t, w, &detail)
	if detail.Email != "user@example.com" {
		t.Errorf("profile email = %q", detail.Email)
	}

	// Another customer may not read it, but an admin may
	w = doRequest(t, s, http.MethodGet, path, tokenFor(t, other), nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("other profile status = %d, want 403", w.Code)
	}
	w = doRequest(t, s, http.MethodGet, path, tokenFor(t, admin), nil)
	if w.Code != http.StatusOK {
		t.Errorf("admin profile status = %d", w.Code)
	}

	w = doRequest(t, s, http.MethodPut, path, token, map[string]string{"name": "Renamed"})
	if w.Code != http.StatusOK {
		t.Fatalf("update profile status = %d, body %s", w.Code, w.Body.String())
	}
	decodeJSON(t, w, &detail)
	if detail.Name != "Renamed" {
		t.Errorf("updated name = %q", detail.Name)
	}

	// Wrong current password
	w = doRequest(t, s, http.MethodPut, path+"/password", token, map[string]string{
		"old_password": "wrong", "new_password": "newpass123",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong old password status = %d, want 401", w.Code)
	}

	w = doRequest(t, s, http.MethodPut, path+"/password", token, map[string]string{
		"old_password": "userpass", "new_password": "newpass123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("change password status = %d, body %s", w.Code, w.Body.String())
	}

	// New password works for login
	w = doRequest(t, s, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "user@example.com", "password": "newpass123",
	})
	if w.Code != http.StatusOK {
		t.Errorf("login with new password status = %d", w.Code)
	}
}

func TestCustomerAdmin(t *testing.T) {
	s := newTestServer(t)
	admin := createCustomer(t, s, "admin@example.com", "adminpass", models.RoleAdmin)
	customer := createCustomer(t, s, "user@example.com", "userpass", models.RoleCustomer)
	adminToken := tokenFor(t, admin)

	w := doRequest(t, s, http.MethodGet, "/api/users", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list customers status = %d", w.Code)
	}
	var customers []CustomerDetail
	decodeJSON(t, w, &customers)
	if len(customers) != 2 {
		t.Errorf("customers = %d, want 2", len(customers))
	}

	// Admins cannot delete themselves
	w = doRequest(t, s, http.MethodDelete, fmt.Sprintf("/api/users/%d", admin.ID), adminToken, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("self delete status = %d, want 400", w.Code)
	}

	w = doRequest(t, s, http.MethodDelete, fmt.Sprintf("/api/users/%d", customer.ID), adminToken, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete customer status = %d", w.Code)
	}

	var count int64
	s.db.Model(&models.Customer{}).Count(&count)
	if count != 1 {
		t.Errorf("customers after delete = %d, want 1", count)
	}
}
