package auth

const (
	RoleUser   = "user"
	RoleHRLead = "hr-lead"
	RoleHR     = "hr"
	RoleAdmin  = "admin"
)

// DefaultRole is assigned on signup when no role is requested.
const DefaultRole = RoleUser

func IsValidRole(role string) bool {
	switch role {
	case RoleUser, RoleHRLead, RoleHR, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsAllowed is the whole access-control policy: a pure role check,
// evaluated after identity has been resolved.
func IsAllowed(role string, allowed ...string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}

	return false
}
