// Package auth holds the client-side session service: identity lookups over
// the session store, login-data ingestion, and the logout confirmation
// handshake between whichever page is mounted and the service.
package auth

import (
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gros-dev/gros/internal/cli/session"
)

// DefaultDisplayName is returned when no customer name is stored
const DefaultDisplayName = "User"

// HomeRoute is where a confirmed logout navigates to
const HomeRoute = "/"

// LogoutNotifier tells the backend that a user logged out. Failures are
// logged and swallowed; the client-side logout never depends on it.
type LogoutNotifier interface {
	NotifyLogout(email string) error
}

// Navigator performs route navigation on behalf of the service
type Navigator interface {
	Navigate(route string)
}

// LoginData is the shape of a backend login response consumed by
// SetLoginData. Fields are independently optional; absent fields are left
// untouched in the store.
type LoginData struct {
	CustomerID   *int64 `json:"customerId,omitempty"`
	Email        string `json:"email,omitempty"`
	UserRole     string `json:"userRole,omitempty"`
	CustomerName string `json:"customerName,omitempty"`
}

// Service coordinates session state, the logout handshake, and best-effort
// backend logout notification. The session store is the source of truth;
// the service itself keeps no identity state.
type Service struct {
	store    session.Store
	notifier LogoutNotifier
	nav      Navigator
	log      zerolog.Logger

	mu      sync.Mutex
	subs    []subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func(confirm bool)
}

// NewService creates the session service. notifier and nav may not be nil;
// use a no-op implementation when the caller has nothing to wire.
func NewService(store session.Store, notifier LogoutNotifier, nav Navigator, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		nav:      nav,
		log:      log,
	}
}

// IsLoggedIn reports whether both customerId and email are present
func (s *Service) IsLoggedIn() bool {
	_, hasID := s.store.Get(session.KeyCustomerID)
	_, hasEmail := s.store.Get(session.KeyEmail)
	return hasID && hasEmail
}

// CustomerID returns the stored customer id, or false when absent or not
// numeric.
func (s *Service) CustomerID() (int64, bool) {
	raw, ok := s.store.Get(session.KeyCustomerID)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Email returns the stored email, or false when absent
func (s *Service) Email() (string, bool) {
	return s.store.Get(session.KeyEmail)
}

// UserRole returns the stored role, or false when absent
func (s *Service) UserRole() (string, bool) {
	return s.store.Get(session.KeyUserRole)
}

// HasRole reports whether the stored role exactly matches required
func (s *Service) HasRole(required string) bool {
	role, ok := s.store.Get(session.KeyUserRole)
	return ok && role == required
}

// DisplayName returns the stored customer name, or a placeholder
func (s *Service) DisplayName() string {
	name, ok := s.store.Get(session.KeyCustomerName)
	if !ok || name == "" {
		return DefaultDisplayName
	}
	return name
}

// SetLoginData copies the login response into the session store. Each field
// is written only when present; fields absent from the payload keep their
// previously stored values.
func (s *Service) SetLoginData(data LoginData) {
	if data.CustomerID != nil {
		s.store.Set(session.KeyCustomerID, strconv.FormatInt(*data.CustomerID, 10))
	}
	if data.Email != "" {
		s.store.Set(session.KeyEmail, data.Email)
	}
	if data.UserRole != "" {
		s.store.Set(session.KeyUserRole, data.UserRole)
	}
	if data.CustomerName != "" {
		s.store.Set(session.KeyCustomerName, data.CustomerName)
	}
}

// Subscribe registers fn to receive logout confirmation requests. The
// returned function unsubscribes. Delivery is synchronous, in registration
// order; a request fired with no subscribers is dropped.
func (s *Service) Subscribe(fn func(confirm bool)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// RequestLogout broadcasts a confirmation request to all subscribers and
// returns how many were notified. The session is not mutated.
func (s *Service) RequestLogout() int {
	return s.broadcast(true)
}

// CancelLogout broadcasts a cancellation to all subscribers. The session is
// not mutated.
func (s *Service) CancelLogout() int {
	return s.broadcast(false)
}

// Logout is a legacy alias for RequestLogout, kept for older call sites
func (s *Service) Logout() int {
	return s.RequestLogout()
}

func (s *Service) broadcast(confirm bool) int {
	s.mu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	if len(subs) == 0 {
		s.log.Debug().Bool("confirm", confirm).Msg("Logout signal dropped, no subscribers")
		return 0
	}

	for _, sub := range subs {
		sub.fn(confirm)
	}
	return len(subs)
}

// ConfirmLogout clears every known session key, notifies the backend of the
// logout without waiting for it, and navigates home. Idempotent: a second
// call on an already-cleared session clears nothing and still navigates.
// Legal without a prior RequestLogout; several call sites log out directly.
func (s *Service) ConfirmLogout() {
	email, hadEmail := s.store.Get(session.KeyEmail)

	// The clear must complete before navigation
	for _, key := range session.KnownKeys {
		s.store.Remove(key)
	}

	// Fire and forget: the outcome is only ever logged
	if hadEmail && email != "" {
		go func() {
			if err := s.notifier.NotifyLogout(email); err != nil {
				s.log.Error().Err(err).Msg("Backend logout failed")
				return
			}
			s.log.Info().Msg("Backend logout successful")
		}()
	}

	s.nav.Navigate(HomeRoute)
}
