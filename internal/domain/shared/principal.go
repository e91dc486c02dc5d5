package shared

import "github.com/google/uuid"

// Principal is the acting user supplied by the identity collaborator.
// It is only used to stamp audit fields; no authorization decision is made here.
type Principal struct {
	UserID uuid.UUID
	Role   string
}

// NewPrincipal creates a principal for the given user and role
func NewPrincipal(userID uuid.UUID, role string) Principal {
	return Principal{UserID: userID, Role: role}
}

// SystemPrincipal is used for mutations performed by background jobs
var SystemPrincipal = Principal{Role: "system"}

// IsAnonymous returns true if no user is attached
func (p Principal) IsAnonymous() bool {
	return p.UserID == uuid.Nil
}

// UserIDPtr returns a pointer to the user ID, or nil for anonymous principals
func (p Principal) UserIDPtr() *uuid.UUID {
	if p.IsAnonymous() {
		return nil
	}
	id := p.UserID
	return &id
}
