package users

import "github.com/dmitrijs2005/insight/internal/common"

// Role is the closed set of user roles used for authorization decisions.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a wire value onto the Role enumeration. An empty value
// defaults to RoleUser; anything else is a validation error.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case "":
		return RoleUser, nil
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", common.ErrValidation
	}
}

// User is the public user projection returned by the API.
type User struct {
	Username string
	Email    string
	Age      int
}

// InternalUser is the store-owned record: the public fields plus the password
// digest and role. It is never serialized to API responses directly; handlers
// go through Public(), which drops the digest.
type InternalUser struct {
	User
	HashedPassword string
	Role           Role
}

// Public returns the presentation-safe projection of the user.
func (u *InternalUser) Public() User {
	return u.User
}
