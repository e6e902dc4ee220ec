package middlewares

// Keys under which the authentication middleware stores the resolved
// caller in the gin context.
const (
	CtxUserIDKey    = "auth.userID"
	CtxUserEmailKey = "auth.userEmail"
	CtxUserRoleKey  = "auth.userRole"
)
