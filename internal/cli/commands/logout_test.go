package commands

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/gros-dev/gros/internal/cli/auth"
	"github.com/gros-dev/gros/internal/cli/client"
	"github.com/gros-dev/gros/internal/cli/guard"
	"github.com/gros-dev/gros/internal/cli/session"
)

// memTokenStore is an in-memory TokenStore for tests
type memTokenStore struct {
	tokens map[string]string
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: map[string]string{}}
}

func (m *memTokenStore) SaveToken(serverURL, token string) error {
	m.tokens[serverURL] = token
	return nil
}

func (m *memTokenStore) LoadToken(serverURL string) (string, error) {
	return m.tokens[serverURL], nil
}

func (m *memTokenStore) DeleteToken(serverURL string) error {
	delete(m.tokens, serverURL)
	return nil
}

func newTestEnv(store session.Store) *env {
	log := zerolog.Nop()
	nav := printNavigator{}
	service := auth.NewService(store, auth.NoopNotifier{}, nav, log)
	api := client.New("http://localhost:8080", store)

	return &env{
		store:   store,
		service: service,
		guard:   guard.New(service, store, nav, log),
		api:     api,
		tokens:  newMemTokenStore(),
	}
}

func loggedIn() session.Store {
	store := session.NewMemStore()
	store.Set(session.KeyCustomerID, "7")
	store.Set(session.KeyEmail, "a@b.com")
	return store
}

func TestRunLogout_ConfirmClearsSessionAndToken(t *testing.T) {
	store := loggedIn()
	e := newTestEnv(store)
	e.tokens.SaveToken("http://localhost:8080", "tok")

	err := runLogout(e, false, func() (bool, error) { return true, nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if e.service.IsLoggedIn() {
		t.Error("expected session to be cleared")
	}
	if token, _ := e.tokens.LoadToken("http://localhost:8080"); token != "" {
		t.Error("expected token to be deleted")
	}
}

func TestRunLogout_CancelKeepsSession(t *testing.T) {
	store := loggedIn()
	e := newTestEnv(store)
	e.tokens.SaveToken("http://localhost:8080", "tok")

	err := runLogout(e, false, func() (bool, error) { return false, nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !e.service.IsLoggedIn() {
		t.Error("cancelled logout must not clear the session")
	}
	if token, _ := e.tokens.LoadToken("http://localhost:8080"); token != "tok" {
		t.Error("cancelled logout must keep the token")
	}
}

func TestRunLogout_ForceSkipsPrompt(t *testing.T) {
	store := loggedIn()
	e := newTestEnv(store)

	prompted := false
	err := runLogout(e, true, func() (bool, error) {
		prompted = true
		return false, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if prompted {
		t.Error("--force must not prompt")
	}
	if e.service.IsLoggedIn() {
		t.Error("expected session to be cleared")
	}
}

func TestRunLogout_NotLoggedInIsNoop(t *testing.T) {
	e := newTestEnv(session.NewMemStore())

	err := runLogout(e, false, func() (bool, error) {
		t.Error("must not prompt when not logged in")
		return false, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
