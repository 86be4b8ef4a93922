package domain

import "github.com/google/uuid"

// Identity is the verified caller behind a session token. It is resolved once
// per request and treated as immutable afterwards.
type Identity struct {
	UserID   uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
}

func (i *Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Username
}

// HasAdminRole reports whether the stored role grants admin access. The
// configured super username is handled by AdminPolicy.
func (i *Identity) HasAdminRole() bool {
	return i.Role == RoleAdmin || i.Role == RoleSuperAdmin
}

// AdminPolicy decides elevated access. The super username is always treated
// as an administrator, whatever role is stored for it.
type AdminPolicy struct {
	SuperUsername string
}

func (p AdminPolicy) IsAdmin(id *Identity) bool {
	if id == nil {
		return false
	}
	return id.HasAdminRole() || p.isSuper(id)
}

// IsSuperAdmin gates role assignment and account deletion.
func (p AdminPolicy) IsSuperAdmin(id *Identity) bool {
	if id == nil {
		return false
	}
	return id.Role == RoleSuperAdmin || p.isSuper(id)
}

func (p AdminPolicy) isSuper(id *Identity) bool {
	return p.SuperUsername != "" && id.Username == p.SuperUsername
}
