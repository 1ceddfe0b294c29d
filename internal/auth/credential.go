package auth

import "interiors-erp/internal/models"

// Credential is what the auth middleware resolved the bearer token to.
// Exactly one of the concrete types below is stored per request and all
// authorization decisions switch on that type.
type Credential interface {
	credential()
}

// UserCredential comes from a verified JWT issued to a company user.
type UserCredential struct {
	UserID    uint
	Email     string
	Role      models.UserRole
	CompanyID uint
}

// SuperAdminCredential comes from an opaque console token backed by a
// SuperAdminSession row.
type SuperAdminCredential struct {
	SessionID uint
	Email     string
}

func (UserCredential) credential()       {}
func (SuperAdminCredential) credential() {}

func (u UserCredential) IsAdmin() bool {
	return u.Role == models.RoleAdmin
}
