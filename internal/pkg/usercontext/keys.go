package usercontext

// Shared Locals/session keys used across controllers and middlewares.
// The string values must match the constants in app/controllers, which
// UserContextMiddleware writes into Locals for session requests.
const (
	AuthKey          = "authenticated"
	KeyUserID        = "user_id"
	KeyUsername      = "username"
	KeyIsAdmin       = "isAdmin"
	KeyFromProtected = "fromProtected"
)
