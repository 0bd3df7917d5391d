package session

// Keys written by the various login flows. The admin login historically
// wrote isAdmin and role while the user login wrote userRole; all of them
// must stay readable.
const (
	KeyCustomerID   = "customerId"
	KeyEmail        = "email"
	KeyUserRole     = "userRole"
	KeyCustomerName = "customerName"
	KeyUsername     = "username"
	KeyPassword     = "password"
	KeyIsAdmin      = "isAdmin"
	KeyRole         = "role"
)

// KnownKeys lists every key a logout must clear, in the order they are
// removed. The order is fixed so a partial clear is observable and
// reproducible.
var KnownKeys = []string{
	KeyCustomerID,
	KeyEmail,
	KeyUserRole,
	KeyCustomerName,
	KeyUsername,
	KeyPassword,
	KeyIsAdmin,
	KeyRole,
}

// Store is the client-held session state. Keys are written and removed
// independently; there is no atomicity across multi-key operations and
// concurrent writers are not coordinated (last write wins).
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
	Clear()
}
