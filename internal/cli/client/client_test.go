package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gros-dev/gros/internal/cli/session"
)

// memTokens is an in-memory TokenStore for tests
type memTokens struct {
	tokens map[string]string
}

func newMemTokens() *memTokens {
	return &memTokens{tokens: make(map[string]string)}
}

func (m *memTokens) SaveToken(serverURL, token string) error {
	m.tokens[serverURL] = token
	return nil
}

func (m *memTokens) LoadToken(serverURL string) (string, error) {
	return m.tokens[serverURL], nil
}

func (m *memTokens) DeleteToken(serverURL string) error {
	delete(m.tokens, serverURL)
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *memTokens) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokens := newMemTokens()
	c := New(srv.URL, session.NewMemStore())
	c.SetTokenStore(tokens)
	return c, tokens
}

func TestLogin_DecodesOptionalFields(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token":      "tok",
			"customerId": 42,
			"email":      "a@b.com",
		})
	})

	resp, err := c.Login("a@b.com", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Token != "tok" {
		t.Errorf("Token = %q", resp.Token)
	}
	if resp.CustomerID == nil || *resp.CustomerID != 42 {
		t.Errorf("CustomerID = %v, want 42", resp.CustomerID)
	}
	if resp.UserRole != "" {
		t.Errorf("UserRole = %q, want absent", resp.UserRole)
	}
}

func TestLogin_ErrorCarriesStatusAndBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Invalid email or password"}`))
	})

	if _, err := c.Login("a@b.com", "wrong"); err == nil {
		t.Fatal("expected error")
	}
}

func TestNotifyLogout_SendsEmailQueryParam(t *testing.T) {
	var gotPath, gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("email")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	})

	if err := c.NotifyLogout("a+b@b.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/users/logout" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "a+b@b.com" {
		t.Errorf("email = %q, want a+b@b.com", gotQuery)
	}
}

func TestAuthenticatedRequest_SendsBearerToken(t *testing.T) {
	var gotAuth string
	c, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(Cart{})
	})
	tokens.SaveToken(c.BaseURL(), "tok-123")

	if _, err := c.GetCart(7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
}

func TestAuthenticatedRequest_FallsBackToBasicAuth(t *testing.T) {
	store := session.NewMemStore()
	store.Set(session.KeyUsername, "legacy")
	store.Set(session.KeyPassword, "creds")

	var gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		json.NewEncoder(w).Encode(Cart{})
	}))
	defer srv.Close()

	c := New(srv.URL, store)
	c.SetTokenStore(newMemTokens()) // empty: no JWT available

	if _, err := c.GetCart(7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUser != "legacy" || gotPass != "creds" {
		t.Errorf("basic auth = %q/%q, want legacy/creds", gotUser, gotPass)
	}
}

func TestListProducts_BuildsQuery(t *testing.T) {
	var gotURL string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		json.NewEncoder(w).Encode(ProductList{Page: 2, Size: 10})
	})

	list, err := c.ListProducts(2, 10, "wine & cheese")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Page != 2 {
		t.Errorf("Page = %d", list.Page)
	}
	if gotURL != "/api/products?page=2&size=10&q=wine+%26+cheese" {
		t.Errorf("url = %q", gotURL)
	}
}
