package model

import "strings"

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// ParseRole maps a token claim onto the closed role set.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleBuyer, RoleSeller:
		return r, true
	default:
		return "", false
	}
}

// Authenticated caller as resolved by the auth middleware.
type Identity struct {
	UserID int64
	Role   Role
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
