package models

import "github.com/google/uuid"

// IdentityKind tags how the acting principal was established. Downstream
// authorization code switches on the tag, never on which credential was
// present in the request.
type IdentityKind string

const (
	IdentityAnonymous     IdentityKind = "anonymous"
	IdentityAuthenticated IdentityKind = "user"
	IdentityAdminByKey    IdentityKind = "adminByKey"
)

// Identity is the resolved acting principal for one request. It is built
// fresh per request and never persisted.
//
// UserID is nil for Anonymous and for a key-granted admin with no backing
// account ("synthetic admin"). A synthetic admin passes admin gates but can
// never satisfy an ownership check, since a nil id matches no author.
type Identity struct {
	Kind     IdentityKind
	UserID   *uuid.UUID
	Username string
	Role     Role
}

// Anonymous is the identity used when no credentials were supplied.
func Anonymous() Identity {
	return Identity{Kind: IdentityAnonymous, Role: RoleUser}
}

// IsAnonymous reports whether the identity carries no principal at all.
func (id Identity) IsAnonymous() bool {
	return id.Kind == IdentityAnonymous
}

// UserIDString returns the normalized user id, or "" when there is none.
func (id Identity) UserIDString() string {
	if id.UserID == nil {
		return ""
	}
	return id.UserID.String()
}

// Ownable is anything that exposes a normalized author id for
// ownership-based authorization. Post and Comment both qualify.
type Ownable interface {
	Owner() string
}
