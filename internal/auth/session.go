package auth

// SessionData represents the authenticated session context for a request
type SessionData struct {
	CustomerID int64  `json:"customer_id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	AuthMethod string `json:"auth_method"` // "jwt", "basic"
}

// IsAdmin reports whether the session carries the admin role
func (s *SessionData) IsAdmin() bool {
	return s.Role == "ADMIN"
}
