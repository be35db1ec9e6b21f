// Package identity resolves who is making a request and issues session tokens.
package identity

import "cookconnect/internal/models"

// Viewer is the requesting party: either anonymous or a verified user.
// The zero value is anonymous.
type Viewer struct {
	id   uint
	role models.UserRole
}

// Anonymous returns the viewer used when no valid credential was presented.
func Anonymous() Viewer {
	return Viewer{}
}

// Verified returns a viewer for an authenticated user.
func Verified(id uint, role models.UserRole) Viewer {
	if id == 0 {
		return Viewer{}
	}
	if role == "" {
		role = models.RoleUser
	}
	return Viewer{id: id, role: role}
}

// Authenticated reports whether the viewer carries a verified subject.
func (v Viewer) Authenticated() bool {
	return v.id != 0
}

// UserID is 0 for anonymous viewers.
func (v Viewer) UserID() uint {
	return v.id
}

func (v Viewer) Role() models.UserRole {
	return v.role
}

func (v Viewer) IsAdmin() bool {
	return v.id != 0 && v.role == models.RoleAdmin
}

// CanModify reports whether the viewer owns ownerID's content or is an admin.
func (v Viewer) CanModify(ownerID uint) bool {
	if !v.Authenticated() {
		return false
	}
	return v.id == ownerID || v.IsAdmin()
}
